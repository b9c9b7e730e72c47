package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"playfolio/internal/domain/entity"
)

// Walks a full exchange between two users: open a conversation, trade
// messages, watch unread badges move, and read them back down to zero.
func TestTwoUserExchange(t *testing.T) {
	f := newMessagingFixture()
	ctx := context.Background()

	// Alice opens a conversation with Bob and says hello.
	conv, err := f.uc.StartConversation(ctx, "alice", "bob")
	require.NoError(t, err)
	convID := conv.Conversation.ID

	_, err = f.uc.SendMessage(ctx, "alice", SendMessageInput{ConversationID: convID, Text: "hey Bob"})
	require.NoError(t, err)

	// Bob's conversation list shows the thread with one unread and the
	// summary line.
	bobList, err := f.uc.ListConversations(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, bobList, 1)
	assert.Equal(t, 1, bobList[0].UnreadCount)
	assert.Equal(t, "hey Bob", bobList[0].Conversation.LastMessage)
	assert.Equal(t, "alice", bobList[0].OtherUser.Username)

	// Bob opens the thread and reads it.
	require.NoError(t, f.uc.MarkConversationRead(ctx, "bob", convID))
	opened, err := f.uc.GetConversation(ctx, "bob", convID)
	require.NoError(t, err)
	assert.Equal(t, 0, opened.UnreadCount)

	// Bob starts typing; Alice sees the indicator, Bob does not.
	require.NoError(t, f.uc.SetTyping(ctx, "bob", convID, true))
	aliceView, err := f.uc.GetConversation(ctx, "alice", convID)
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, aliceView.TypingUsers)

	// Bob replies; his typing entry clears and Alice's badge moves.
	_, err = f.uc.SendMessage(ctx, "bob", SendMessageInput{ConversationID: convID, Text: "hey Alice"})
	require.NoError(t, err)

	aliceView, err = f.uc.GetConversation(ctx, "alice", convID)
	require.NoError(t, err)
	assert.Empty(t, aliceView.TypingUsers)
	assert.Equal(t, 1, aliceView.UnreadCount)
	assert.Equal(t, "hey Alice", aliceView.Conversation.LastMessage)

	// The transcript reads in order for both of them.
	messages, err := f.uc.ListMessages(ctx, "alice", convID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "hey Bob", messages[0].Message.Text)
	assert.Equal(t, "hey Alice", messages[1].Message.Text)

	// Alice catches up; every badge is back to zero.
	require.NoError(t, f.uc.MarkConversationRead(ctx, "alice", convID))
	for _, userID := range []string{"alice", "bob"} {
		unread, err := f.notifications.CountUnread(ctx, userID, entity.NotificationMessage, convID)
		require.NoError(t, err)
		assert.Zero(t, unread)
	}
}
