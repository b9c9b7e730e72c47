package ratelimit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowExhaustsBurst(t *testing.T) {
	rl := NewRateLimiter()

	for i := 0; i < 5; i++ {
		allowed, _ := rl.Allow("alice", "start_conversation")
		assert.True(t, allowed, "request %d should pass", i)
	}

	allowed, wait := rl.Allow("alice", "start_conversation")
	assert.False(t, allowed)
	assert.Greater(t, wait.Nanoseconds(), int64(0))
}

func TestBucketsArePerUser(t *testing.T) {
	rl := NewRateLimiter()

	for i := 0; i < 5; i++ {
		rl.Allow("alice", "start_conversation")
	}
	allowed, _ := rl.Allow("alice", "start_conversation")
	assert.False(t, allowed)

	allowed, _ = rl.Allow("bob", "start_conversation")
	assert.True(t, allowed)
}

func TestBucketsArePerAction(t *testing.T) {
	rl := NewRateLimiter()

	for i := 0; i < 5; i++ {
		rl.Allow("alice", "start_conversation")
	}
	allowed, _ := rl.Allow("alice", "start_conversation")
	assert.False(t, allowed)

	allowed, _ = rl.Allow("alice", "send_message")
	assert.True(t, allowed)
}

func TestUnknownActionUsesDefaultLimit(t *testing.T) {
	rl := NewRateLimiter()

	for i := 0; i < defaultLimit.maxTokens; i++ {
		allowed, _ := rl.Allow("alice", "mystery")
		assert.True(t, allowed)
	}

	allowed, _ := rl.Allow("alice", "mystery")
	assert.False(t, allowed)
}
