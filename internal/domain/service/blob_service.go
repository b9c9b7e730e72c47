package service

import (
	"context"
	"time"
)

// UploadTicket is the first half of the two-phase upload contract: the
// client PUTs the binary to URL, then references ObjectName on the
// message it sends.
type UploadTicket struct {
	URL        string    `json:"url"`
	ObjectName string    `json:"object_name"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// BlobService is the external blob-store collaborator. The messaging
// core stores opaque object names and resolves them to fetchable URLs
// when serving listings.
type BlobService interface {
	GenerateUploadTicket(ctx context.Context, contentType, folder string) (*UploadTicket, error)
	SignedReadURL(ctx context.Context, objectName string) (string, error)
	Delete(ctx context.Context, objectName string) error
}
