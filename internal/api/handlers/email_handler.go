package handlers

import (
	"github.com/labstack/echo/v4"

	"github.com/welldanyogia/webrana-inbox-viewer/internal/api/response"
	"github.com/welldanyogia/webrana-inbox-viewer/internal/models"
	"github.com/welldanyogia/webrana-inbox-viewer/internal/pager"
)

// EmailHandler serves the JSON view of the inbox
type EmailHandler struct {
	inbox Inbox
}

// NewEmailHandler creates a new EmailHandler
func NewEmailHandler(inbox Inbox) *EmailHandler {
	return &EmailHandler{inbox: inbox}
}

// List handles GET /api/emails
func (h *EmailHandler) List(c echo.Context) error {
	st := pager.Parse(c.QueryParams())

	page, err := h.inbox.ListEmails(c.Request().Context(), st.Page, st.Size)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Page(c, page)
}

// Search handles POST /api/emails/search
func (h *EmailHandler) Search(c echo.Context) error {
	var req models.SearchRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid search request")
	}

	if req.Size <= 0 {
		req.Size = pager.DefaultSize
	}
	if req.Size > pager.MaxSize {
		req.Size = pager.MaxSize
	}
	if req.Page < 0 {
		req.Page = 0
	}

	page, err := h.inbox.SearchEmails(c.Request().Context(), req)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Page(c, page)
}

// Get handles GET /api/emails/:id
func (h *EmailHandler) Get(c echo.Context) error {
	email, err := h.inbox.GetEmail(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, email)
}

// Delete handles DELETE /api/emails/:id
func (h *EmailHandler) Delete(c echo.Context) error {
	result, err := h.inbox.DeleteEmail(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessWithMessage(c, result, "email deleted")
}

// DeleteAll handles DELETE /api/emails
func (h *EmailHandler) DeleteAll(c echo.Context) error {
	result, err := h.inbox.DeleteAllEmails(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessWithMessage(c, result, "all emails deleted")
}
