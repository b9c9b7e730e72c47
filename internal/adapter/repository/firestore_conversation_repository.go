package repository

import (
	"context"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"playfolio/internal/domain/entity"
	"playfolio/internal/domain/repository"
	"playfolio/pkg/errors"
)

type firestoreConversationRepository struct {
	client *firestore.Client
}

func NewFirestoreConversationRepository(client *firestore.Client) repository.ConversationRepository {
	return &firestoreConversationRepository{
		client: client,
	}
}

func (r *firestoreConversationRepository) Create(ctx context.Context, conversation *entity.Conversation) error {
	if conversation.ID == "" {
		conversation.ID = uuid.New().String()
	}
	if len(conversation.Participants) == 2 {
		conversation.PairKey = entity.PairKeyFor(conversation.Participants[0], conversation.Participants[1])
	}

	now := time.Now()
	conversation.CreatedAt = now
	conversation.UpdatedAt = now

	_, err := r.client.Collection("conversations").Doc(conversation.ID).Set(ctx, conversation)
	if err != nil {
		return errors.Internal("Failed to create conversation", err)
	}

	return nil
}

func (r *firestoreConversationRepository) GetByID(ctx context.Context, id string) (*entity.Conversation, error) {
	doc, err := r.client.Collection("conversations").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Conversation", err)
		}
		return nil, errors.Internal("Failed to get conversation", err)
	}

	var conversation entity.Conversation
	if err := doc.DataTo(&conversation); err != nil {
		return nil, errors.Internal("Failed to parse conversation data", err)
	}

	return &conversation, nil
}

func (r *firestoreConversationRepository) GetByPairKey(ctx context.Context, pairKey string) (*entity.Conversation, error) {
	query := r.client.Collection("conversations").Where("pairKey", "==", pairKey).Limit(1)
	iter := query.Documents(ctx)
	doc, err := iter.Next()
	if err != nil {
		if err == iterator.Done {
			return nil, errors.NotFound("Conversation", nil)
		}
		return nil, errors.Internal("Failed to query conversation by pair key", err)
	}

	var conversation entity.Conversation
	if err := doc.DataTo(&conversation); err != nil {
		return nil, errors.Internal("Failed to parse conversation data", err)
	}

	return &conversation, nil
}

func (r *firestoreConversationRepository) ListByParticipant(ctx context.Context, userID string) ([]*entity.Conversation, error) {
	query := r.client.Collection("conversations").Where("participants", "array-contains", userID)

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		log.Printf("Firestore error while fetching conversations for user %s: %v", userID, err)
		return nil, errors.Internal("Failed to fetch conversations", err)
	}

	var conversations []*entity.Conversation
	for _, doc := range docs {
		var conversation entity.Conversation
		if err := doc.DataTo(&conversation); err != nil {
			log.Printf("Error parsing conversation data for user %s: %v", userID, err)
			continue
		}
		conversations = append(conversations, &conversation)
	}

	return conversations, nil
}

func (r *firestoreConversationRepository) UpdateSummary(ctx context.Context, id string, lastMessage string, lastMessageAt time.Time) error {
	updates := []firestore.Update{
		{Path: "updatedAt", Value: time.Now()},
	}
	if lastMessageAt.IsZero() {
		updates = append(updates,
			firestore.Update{Path: "lastMessage", Value: firestore.Delete},
			firestore.Update{Path: "lastMessageAt", Value: time.Time{}},
		)
	} else {
		updates = append(updates,
			firestore.Update{Path: "lastMessage", Value: lastMessage},
			firestore.Update{Path: "lastMessageAt", Value: lastMessageAt},
		)
	}

	_, err := r.client.Collection("conversations").Doc(id).Update(ctx, updates)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Conversation", err)
		}
		return errors.Internal("Failed to update conversation summary", err)
	}

	return nil
}

// SetTyping writes only the caller's own entry in the typing map, so
// concurrent signals from different participants never conflict.
func (r *firestoreConversationRepository) SetTyping(ctx context.Context, id, userID string, at time.Time) error {
	_, err := r.client.Collection("conversations").Doc(id).Update(ctx, []firestore.Update{
		{FieldPath: firestore.FieldPath{"typing", userID}, Value: at},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Conversation", err)
		}
		return errors.Internal("Failed to set typing status", err)
	}

	return nil
}

func (r *firestoreConversationRepository) ClearTyping(ctx context.Context, id, userID string) error {
	_, err := r.client.Collection("conversations").Doc(id).Update(ctx, []firestore.Update{
		{FieldPath: firestore.FieldPath{"typing", userID}, Value: firestore.Delete},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Conversation", err)
		}
		return errors.Internal("Failed to clear typing status", err)
	}

	return nil
}
