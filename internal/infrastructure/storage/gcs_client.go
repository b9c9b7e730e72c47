package storage

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"playfolio/internal/domain/service"
)

type CloudStorageClient struct {
	client     *storage.Client
	bucketName string

	uploadTTL time.Duration
	readTTL   time.Duration
}

func NewCloudStorageClient(ctx context.Context, bucketName, credentialsPath string) (*CloudStorageClient, error) {
	var opts []option.ClientOption
	if credentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsPath))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %v", err)
	}

	return &CloudStorageClient{
		client:     client,
		bucketName: bucketName,
		uploadTTL:  15 * time.Minute,
		readTTL:    1 * time.Hour,
	}, nil
}

func objectName(contentType, folder string) string {
	name := fmt.Sprintf("%s/%s-%s", folder, uuid.New().String(), time.Now().Format("20060102150405"))

	switch contentType {
	case "image/jpeg", "image/jpg":
		name += ".jpg"
	case "image/png":
		name += ".png"
	case "image/gif":
		name += ".gif"
	case "application/pdf":
		name += ".pdf"
	case "application/zip":
		name += ".zip"
	default:
		name += ".bin"
	}

	return name
}

// GenerateUploadTicket returns a write-once signed PUT URL plus the
// object name the caller should reference once the upload completes.
func (c *CloudStorageClient) GenerateUploadTicket(ctx context.Context, contentType, folder string) (*service.UploadTicket, error) {
	name := objectName(contentType, folder)
	expires := time.Now().Add(c.uploadTTL)

	url, err := c.client.Bucket(c.bucketName).SignedURL(name, &storage.SignedURLOptions{
		Method:      http.MethodPut,
		ContentType: contentType,
		Expires:     expires,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate signed upload URL: %v", err)
	}

	return &service.UploadTicket{
		URL:        url,
		ObjectName: name,
		ExpiresAt:  expires,
	}, nil
}

func (c *CloudStorageClient) SignedReadURL(ctx context.Context, object string) (string, error) {
	url, err := c.client.Bucket(c.bucketName).SignedURL(object, &storage.SignedURLOptions{
		Method:  http.MethodGet,
		Expires: time.Now().Add(c.readTTL),
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate signed read URL: %v", err)
	}

	return url, nil
}

func (c *CloudStorageClient) Delete(ctx context.Context, object string) error {
	if err := c.client.Bucket(c.bucketName).Object(object).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete object: %v", err)
	}

	return nil
}

func (c *CloudStorageClient) Close() error {
	return c.client.Close()
}
