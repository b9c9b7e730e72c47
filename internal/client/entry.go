package client

import (
	"sort"
	"time"

	"playfolio/internal/domain/entity"
)

// Entry is one item on a rendered conversation timeline. It is either
// a message the server has committed or one the local user staged
// optimistically and the server has not acknowledged on the
// subscription yet.
type Entry interface {
	EntryID() string
	OccurredAt() time.Time
	IsPending() bool
}

// CommittedEntry wraps a server-acknowledged message.
type CommittedEntry struct {
	Message *entity.Message
}

func (e CommittedEntry) EntryID() string       { return e.Message.ID }
func (e CommittedEntry) OccurredAt() time.Time { return e.Message.CreatedAt }
func (e CommittedEntry) IsPending() bool       { return false }

// PendingEntry is an optimistic message. StagedAt comes from the
// client clock and is display-only; the server assigns the
// authoritative timestamp when the message commits.
type PendingEntry struct {
	TempID           string
	Text             string
	ImageObject      string
	AttachmentObject string
	AttachmentName   string
	StagedAt         time.Time

	// CommittedID is set once the send call returns, so the merge can
	// drop this entry as soon as the committed message shows up.
	CommittedID string
}

func (e *PendingEntry) EntryID() string       { return e.TempID }
func (e *PendingEntry) OccurredAt() time.Time { return e.StagedAt }
func (e *PendingEntry) IsPending() bool       { return true }

// Merge combines committed messages with pending entries into one
// timeline sorted ascending by timestamp. Pending entries whose
// committed counterpart is already present are dropped rather than
// shown twice.
func Merge(committed []*entity.Message, pending []*PendingEntry) []Entry {
	seen := make(map[string]bool, len(committed))
	entries := make([]Entry, 0, len(committed)+len(pending))
	for _, msg := range committed {
		seen[msg.ID] = true
		entries = append(entries, CommittedEntry{Message: msg})
	}
	for _, p := range pending {
		if p.CommittedID != "" && seen[p.CommittedID] {
			continue
		}
		entries = append(entries, p)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].OccurredAt().Before(entries[j].OccurredAt())
	})
	return entries
}
