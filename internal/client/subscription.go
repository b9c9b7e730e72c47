package client

import (
	"context"
	"encoding/json"
	"net/url"
	"sync"

	gorillaws "github.com/gorilla/websocket"

	ws "playfolio/internal/infrastructure/websocket"
	"playfolio/pkg/errors"
	"playfolio/pkg/logger"
)

// Subscription is a live attachment to one conversation's event
// stream. Events arrive on the channel until Close tears the
// subscription down; the channel closes when the stream ends.
type Subscription struct {
	Events <-chan ws.Envelope

	conn           *gorillaws.Conn
	conversationID string
	closeOnce      sync.Once
}

// Subscribe dials the realtime endpoint, authenticates with the
// token, and joins the conversation's room.
func Subscribe(ctx context.Context, wsURL, token, conversationID string) (*Subscription, error) {
	endpoint, err := url.Parse(wsURL)
	if err != nil {
		return nil, errors.BadRequest("Invalid websocket URL", err)
	}
	query := endpoint.Query()
	query.Set("token", token)
	endpoint.RawQuery = query.Encode()

	conn, _, err := gorillaws.DefaultDialer.DialContext(ctx, endpoint.String(), nil)
	if err != nil {
		return nil, errors.Internal("Failed to connect", err)
	}

	subscribe := ws.Envelope{Type: ws.CommandSubscribe, ConversationID: conversationID}
	if err := conn.WriteJSON(subscribe); err != nil {
		conn.Close()
		return nil, errors.Internal("Failed to subscribe", err)
	}

	events := make(chan ws.Envelope, 16)
	sub := &Subscription{
		Events:         events,
		conn:           conn,
		conversationID: conversationID,
	}

	go sub.readLoop(events)
	return sub, nil
}

func (s *Subscription) readLoop(events chan<- ws.Envelope) {
	defer close(events)
	for {
		_, payload, err := s.conn.ReadMessage()
		if err != nil {
			if gorillaws.IsUnexpectedCloseError(err, gorillaws.CloseGoingAway, gorillaws.CloseNormalClosure) {
				logger.Warn("subscription: read error: %v", err)
			}
			return
		}

		var frame ws.Envelope
		if err := json.Unmarshal(payload, &frame); err != nil {
			logger.Warn("subscription: malformed frame: %v", err)
			continue
		}
		events <- frame
	}
}

// Close unsubscribes and releases the connection. Safe to call more
// than once.
func (s *Subscription) Close() error {
	var err error
	s.closeOnce.Do(func() {
		unsubscribe := ws.Envelope{Type: ws.CommandUnsubscribe, ConversationID: s.conversationID}
		if writeErr := s.conn.WriteJSON(unsubscribe); writeErr != nil {
			logger.Debug("subscription: unsubscribe write failed: %v", writeErr)
		}
		s.conn.WriteMessage(gorillaws.CloseMessage, gorillaws.FormatCloseMessage(gorillaws.CloseNormalClosure, ""))
		err = s.conn.Close()
	})
	return err
}
