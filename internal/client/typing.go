package client

import (
	"context"
	"sync"
	"time"

	"playfolio/pkg/logger"
)

// TypingNotifier signals typing on every keystroke and debounces only
// the trailing stop. The server measures staleness from the most
// recent signal, so a long burst must keep refreshing the stamp or
// the indicator drops while the user is still composing. The stop
// fires once the user pauses for the debounce window, and every
// further keystroke pushes it out.
type TypingNotifier struct {
	api            MessagingAPI
	conversationID string
	debounce       time.Duration

	mu     sync.Mutex
	active bool
	timer  *time.Timer
}

func NewTypingNotifier(api MessagingAPI, conversationID string, debounce time.Duration) *TypingNotifier {
	return &TypingNotifier{
		api:            api,
		conversationID: conversationID,
		debounce:       debounce,
	}
}

// Keystroke records input activity and refreshes the server stamp.
func (t *TypingNotifier) Keystroke(ctx context.Context) {
	t.mu.Lock()
	t.active = true
	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = time.AfterFunc(t.debounce, func() {
		t.stop(context.Background())
	})
	t.mu.Unlock()

	if err := t.api.SetTyping(ctx, t.conversationID, true); err != nil {
		logger.Warn("typing: failed to signal start: %v", err)
	}
}

// Flush stops typing immediately, used when a message is sent so the
// indicator never outlives the send.
func (t *TypingNotifier) Flush(ctx context.Context) {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.mu.Unlock()
	t.stop(ctx)
}

func (t *TypingNotifier) stop(ctx context.Context) {
	t.mu.Lock()
	if !t.active {
		t.mu.Unlock()
		return
	}
	t.active = false
	t.mu.Unlock()

	if err := t.api.SetTyping(ctx, t.conversationID, false); err != nil {
		logger.Warn("typing: failed to signal stop: %v", err)
	}
}
