package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"playfolio/internal/domain/entity"
	ws "playfolio/internal/infrastructure/websocket"
	"playfolio/pkg/errors"
)

func newNotificationFixture() (*NotificationUseCase, *fakeNotificationRepo, *fakeMailer, *time.Time) {
	users := newFakeUserRepo(
		&entity.User{ID: "alice", Email: "alice@example.com", Username: "alice"},
		&entity.User{ID: "bob", Email: "bob@example.com", Username: "bob", DisplayName: "Bob"},
	)
	notifications := newFakeNotificationRepo()
	mailer := &fakeMailer{}

	uc := NewNotificationUseCase(notifications, users, ws.NewManager(), mailer, 15*time.Minute)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	uc.clock = func() time.Time { return now }

	return uc, notifications, mailer, &now
}

func TestTriggerPersistsRecord(t *testing.T) {
	uc, notifications, _, _ := newNotificationFixture()
	ctx := context.Background()

	err := uc.Trigger(ctx, TriggerInput{
		RecipientID: "bob",
		SenderID:    "alice",
		Type:        entity.NotificationMessage,
		RelatedID:   "conv-1",
	})
	require.NoError(t, err)

	listed, err := notifications.ListByRecipient(ctx, "bob", true)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "alice", listed[0].SenderID)
	assert.Equal(t, "conv-1", listed[0].RelatedID)
	assert.False(t, listed[0].Read)
}

func TestTriggerRequiresRecipientAndType(t *testing.T) {
	uc, _, _, _ := newNotificationFixture()

	err := uc.Trigger(context.Background(), TriggerInput{SenderID: "alice"})
	assert.True(t, errors.Is(err, "BAD_REQUEST"))
}

func TestTriggerDebouncesEmailPerSenderAndType(t *testing.T) {
	uc, _, mailer, now := newNotificationFixture()
	ctx := context.Background()

	input := TriggerInput{
		RecipientID: "bob",
		SenderID:    "alice",
		Type:        entity.NotificationMessage,
		RelatedID:   "conv-1",
	}

	require.NoError(t, uc.Trigger(ctx, input))
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "bob@example.com", mailer.sent[0].to)

	// A second message inside the window stores a record but sends no
	// second email.
	*now = now.Add(5 * time.Minute)
	require.NoError(t, uc.Trigger(ctx, input))
	assert.Len(t, mailer.sent, 1)

	// After the window lapses the next one goes out.
	*now = now.Add(15 * time.Minute)
	require.NoError(t, uc.Trigger(ctx, input))
	assert.Len(t, mailer.sent, 2)
}

func TestTriggerEmailWindowIsPerKey(t *testing.T) {
	uc, _, mailer, _ := newNotificationFixture()
	ctx := context.Background()

	require.NoError(t, uc.Trigger(ctx, TriggerInput{
		RecipientID: "bob", SenderID: "alice", Type: entity.NotificationMessage, RelatedID: "conv-1",
	}))
	// Different type from the same sender is its own window.
	require.NoError(t, uc.Trigger(ctx, TriggerInput{
		RecipientID: "bob", SenderID: "alice", Type: entity.NotificationFollow,
	}))

	assert.Len(t, mailer.sent, 2)
}

func TestMarkReadIsOwnerOnly(t *testing.T) {
	uc, notifications, _, _ := newNotificationFixture()
	ctx := context.Background()

	require.NoError(t, uc.Trigger(ctx, TriggerInput{
		RecipientID: "bob", SenderID: "alice", Type: entity.NotificationMessage, RelatedID: "conv-1",
	}))

	listed, err := notifications.ListByRecipient(ctx, "bob", false)
	require.NoError(t, err)
	require.Len(t, listed, 1)

	err = uc.MarkRead(ctx, "alice", listed[0].ID)
	assert.True(t, errors.Is(err, "FORBIDDEN"))

	require.NoError(t, uc.MarkRead(ctx, "bob", listed[0].ID))
	unread, err := notifications.ListByRecipient(ctx, "bob", true)
	require.NoError(t, err)
	assert.Empty(t, unread)
}

func TestMarkAllRead(t *testing.T) {
	uc, notifications, _, _ := newNotificationFixture()
	ctx := context.Background()

	for _, related := range []string{"conv-1", "conv-2"} {
		require.NoError(t, uc.Trigger(ctx, TriggerInput{
			RecipientID: "bob", SenderID: "alice", Type: entity.NotificationMessage, RelatedID: related,
		}))
	}

	require.NoError(t, uc.MarkAllRead(ctx, "bob"))

	unread, err := notifications.ListByRecipient(ctx, "bob", true)
	require.NoError(t, err)
	assert.Empty(t, unread)
}
