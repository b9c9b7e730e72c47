package websocket

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndSendToUser(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := NewManager()
	m.Start(ctx)

	client := NewClient("alice", nil)
	m.Register <- client

	assert.Eventually(t, func() bool {
		m.SendToUser("alice", []byte("hello"))
		return len(client.Send) > 0
	}, time.Second, 5*time.Millisecond)
}

func TestSendToRoomHonorsExclusion(t *testing.T) {
	m := NewManager()

	alice := NewClient("alice", nil)
	bob := NewClient("bob", nil)
	m.JoinRoom("conv-1", alice)
	m.JoinRoom("conv-1", bob)

	m.SendToRoom("conv-1", []byte("frame"), "alice")
	assert.Empty(t, alice.Send)
	require.Len(t, bob.Send, 1)

	// No exclusion delivers to everyone in the room.
	m.SendToRoom("conv-1", []byte("frame"), "")
	assert.Len(t, alice.Send, 1)
	assert.Len(t, bob.Send, 2)
}

func TestReleaseDoesNotBlockAfterShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	m := NewManager()
	m.Start(ctx)
	cancel()

	client := NewClient("alice", nil)

	released := make(chan struct{})
	go func() {
		m.release(client)
		close(released)
	}()

	select {
	case <-released:
	case <-time.After(time.Second):
		t.Fatal("release blocked after the manager shut down")
	}
}
