package handler

import (
	"strings"

	"github.com/labstack/echo/v4"

	"playfolio/internal/domain/service"
	"playfolio/pkg/errors"
	"playfolio/pkg/response"
)

// UploadHandler issues write-once signed URLs for the two-phase blob
// upload: the client requests a ticket, PUTs the binary, then
// references the object name on the message it sends.
type UploadHandler struct {
	blob service.BlobService
}

func NewUploadHandler(blob service.BlobService) *UploadHandler {
	return &UploadHandler{
		blob: blob,
	}
}

type uploadTicketRequest struct {
	ContentType string `json:"content_type" validate:"required"`
}

var allowedContentTypes = map[string]string{
	"image/jpeg":      "images",
	"image/jpg":       "images",
	"image/png":       "images",
	"image/gif":       "images",
	"application/pdf": "attachments",
	"application/zip": "attachments",
}

func (h *UploadHandler) CreateUploadTicket(c echo.Context) error {
	var req uploadTicketRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	folder, ok := allowedContentTypes[req.ContentType]
	if !ok {
		return response.Error(c, errors.BadRequest("File type not supported", nil))
	}

	ticket, err := h.blob.GenerateUploadTicket(c.Request().Context(), req.ContentType, folder)
	if err != nil {
		return response.Error(c, errors.Internal("Failed to create upload ticket", err))
	}

	return response.Created(c, ticket)
}

// AbandonUpload removes an uploaded object that never got referenced
// by a message, so a failed send leaves no orphan blob behind. Only
// objects under the ticket folders can be deleted this way.
func (h *UploadHandler) AbandonUpload(c echo.Context) error {
	object := c.QueryParam("object")
	if object == "" {
		return response.Error(c, errors.BadRequest("Missing object name", nil))
	}
	if !strings.HasPrefix(object, "images/") && !strings.HasPrefix(object, "attachments/") {
		return response.Error(c, errors.Forbidden("Object is not an upload", nil))
	}

	if err := h.blob.Delete(c.Request().Context(), object); err != nil {
		return response.Error(c, err)
	}

	return response.NoContent(c)
}
