package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"playfolio/internal/domain/entity"
	"playfolio/internal/domain/service"
	"playfolio/pkg/errors"
)

// SendInput mirrors the message payload of the send endpoint.
type SendInput struct {
	Text             string `json:"text"`
	ImageObject      string `json:"image_object,omitempty"`
	AttachmentObject string `json:"attachment_object,omitempty"`
	AttachmentName   string `json:"attachment_name,omitempty"`
}

// MessagingAPI is the slice of the server surface the reconciliation
// layer needs. The HTTP client implements it for real use; tests
// substitute fakes.
type MessagingAPI interface {
	SendMessage(ctx context.Context, conversationID string, input SendInput) (*entity.Message, error)
	EditMessage(ctx context.Context, conversationID, messageID, text string) (*entity.Message, error)
	DeleteMessage(ctx context.Context, conversationID, messageID string) error
	SetTyping(ctx context.Context, conversationID string, isTyping bool) error
	CreateUploadTicket(ctx context.Context, contentType string) (*service.UploadTicket, error)
	AbandonUpload(ctx context.Context, objectName string) error
}

// HTTPMessagingAPI talks to the playfolio REST surface with a bearer
// token.
type HTTPMessagingAPI struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewHTTPMessagingAPI(baseURL, token string) *HTTPMessagingAPI {
	return &HTTPMessagingAPI{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// envelope matches the server's response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (a *HTTPMessagingAPI) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.Internal("Failed to encode request", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return errors.Internal("Failed to build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return errors.Internal("Request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return errors.Internal("Failed to decode response", err)
	}
	if !env.Success {
		code := "INTERNAL_ERROR"
		message := "Request failed"
		if env.Error != nil {
			code = env.Error.Code
			message = env.Error.Message
		}
		return &errors.AppError{Code: code, Message: message, Status: resp.StatusCode}
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return errors.Internal("Failed to decode response data", err)
		}
	}
	return nil
}

func (a *HTTPMessagingAPI) SendMessage(ctx context.Context, conversationID string, input SendInput) (*entity.Message, error) {
	var msg entity.Message
	path := fmt.Sprintf("/v1/conversations/%s/messages", conversationID)
	if err := a.do(ctx, http.MethodPost, path, input, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (a *HTTPMessagingAPI) EditMessage(ctx context.Context, conversationID, messageID, text string) (*entity.Message, error) {
	var msg entity.Message
	path := fmt.Sprintf("/v1/conversations/%s/messages/%s", conversationID, messageID)
	body := map[string]string{"text": text}
	if err := a.do(ctx, http.MethodPut, path, body, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (a *HTTPMessagingAPI) DeleteMessage(ctx context.Context, conversationID, messageID string) error {
	path := fmt.Sprintf("/v1/conversations/%s/messages/%s", conversationID, messageID)
	return a.do(ctx, http.MethodDelete, path, nil, nil)
}

func (a *HTTPMessagingAPI) SetTyping(ctx context.Context, conversationID string, isTyping bool) error {
	path := fmt.Sprintf("/v1/conversations/%s/typing", conversationID)
	body := map[string]bool{"is_typing": isTyping}
	return a.do(ctx, http.MethodPut, path, body, nil)
}

func (a *HTTPMessagingAPI) CreateUploadTicket(ctx context.Context, contentType string) (*service.UploadTicket, error) {
	var ticket service.UploadTicket
	body := map[string]string{"content_type": contentType}
	if err := a.do(ctx, http.MethodPost, "/v1/uploads", body, &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (a *HTTPMessagingAPI) AbandonUpload(ctx context.Context, objectName string) error {
	path := "/v1/uploads?object=" + url.QueryEscape(objectName)
	return a.do(ctx, http.MethodDelete, path, nil, nil)
}

// UploadFile PUTs a local file to a signed upload URL. The ticket's
// object name becomes the message's attachment reference.
func (a *HTTPMessagingAPI) UploadFile(ctx context.Context, ticket *service.UploadTicket, filePath, contentType string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return errors.BadRequest("Cannot read file", err)
	}
	defer file.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, ticket.URL, file)
	if err != nil {
		return errors.Internal("Failed to build upload request", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return errors.Internal("Upload failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return errors.Internal(fmt.Sprintf("Upload rejected with status %d", resp.StatusCode), nil)
	}
	return nil
}
