package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/welldanyogia/webrana-inbox-viewer/internal/auth"
	apperrors "github.com/welldanyogia/webrana-inbox-viewer/internal/errors"
)

// AttachmentHandler proxies attachment downloads from the backend so the
// browser never needs the backend credentials
type AttachmentHandler struct {
	site
	inbox  Inbox
	logger *slog.Logger
}

// NewAttachmentHandler creates a new AttachmentHandler
func NewAttachmentHandler(inbox Inbox, store *auth.Store, prefix string, logger *slog.Logger) *AttachmentHandler {
	return &AttachmentHandler{
		site:   site{prefix: prefix, store: store},
		inbox:  inbox,
		logger: logger,
	}
}

// Download handles GET /emails/:id/attachments/:attachmentId
func (h *AttachmentHandler) Download(c echo.Context) error {
	emailID := c.Param("id")
	attachmentID := c.Param("attachmentId")

	att, err := h.inbox.OpenAttachment(c.Request().Context(), emailID, attachmentID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return h.renderError(c, http.StatusNotFound, "Attachment not found.")
		}
		return h.renderError(c, apperrors.HTTPStatus(err), err.Error())
	}
	defer att.Body.Close()

	contentType := att.ContentType
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}

	// Set headers for download
	header := c.Response().Header()
	header.Set(echo.HeaderContentType, contentType)
	if att.Disposition != "" {
		header.Set(echo.HeaderContentDisposition, att.Disposition)
	} else {
		header.Set(echo.HeaderContentDisposition, "attachment")
	}
	if att.ContentLength > 0 {
		header.Set(echo.HeaderContentLength, strconv.FormatInt(att.ContentLength, 10))
	}
	c.Response().WriteHeader(http.StatusOK)

	// Stream file to response; the status is already sent
	if _, err := io.Copy(c.Response(), att.Body); err != nil {
		h.logger.Warn("attachment download interrupted",
			slog.String("email_id", emailID),
			slog.String("attachment_id", attachmentID),
			slog.Any("error", err),
		)
	}
	return nil
}
