package handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/welldanyogia/webrana-inbox-viewer/internal/api/views"
	"github.com/welldanyogia/webrana-inbox-viewer/internal/auth"
	apperrors "github.com/welldanyogia/webrana-inbox-viewer/internal/errors"
	"github.com/welldanyogia/webrana-inbox-viewer/internal/pager"
)

// PageHandler serves the inbox and email pages
type PageHandler struct {
	site
	inbox  Inbox
	pager  *pager.Controller
	logger *slog.Logger
}

// NewPageHandler creates a new PageHandler
func NewPageHandler(inbox Inbox, store *auth.Store, prefix string, logger *slog.Logger) *PageHandler {
	return &PageHandler{
		site:   site{prefix: prefix, store: store},
		inbox:  inbox,
		pager:  pager.NewController(inbox),
		logger: logger,
	}
}

// List handles GET /
func (h *PageHandler) List(c echo.Context) error {
	q := c.QueryParams()

	view, err := h.pager.Load(c.Request().Context(), q)
	if err != nil {
		if apperrors.IsUnauthorized(err) {
			return h.relogin(c)
		}
		st := pager.Parse(q)
		return h.render(c, apperrors.HTTPStatus(err), views.PageList, "Inbox", views.List{
			Page:        st.Page,
			Size:        st.Size,
			SizeOptions: st.SizeOptions,
			Error:       err.Error(),
		})
	}

	list := views.List{
		Page:          view.State.Page,
		Size:          view.State.Size,
		TotalPages:    view.Page.TotalPages,
		TotalElements: view.Page.TotalElements,
		SizeOptions:   view.State.SizeOptions,
	}
	if view.HasPrev() {
		list.PrevURL = h.home(view.PageValues(view.State.Page - 1))
	}
	if view.HasNext() {
		list.NextURL = h.home(view.PageValues(view.State.Page + 1))
	}

	for i := range view.Page.Content {
		email := &view.Page.Content[i]
		id := email.IDString()
		list.Rows = append(list.Rows, views.Row{
			ID:        id,
			From:      email.FromAddress,
			To:        email.ToAddress,
			Subject:   email.Subject,
			Received:  email.ReceivedOn.Format(receivedLayout),
			SelectURL: h.home(view.SelectValues(id)),
			DetailURL: h.email(id, nil),
			Selected:  id == view.State.Selected,
		})
	}

	if selErr := view.SelectionError(); selErr != nil {
		list.SelectionError = selErr.Error()
	} else if email, ok := view.Selected(); ok {
		list.Selected = h.detail(email, c.QueryParam("tab"), q)
		list.Selected.DeleteURL += "?" + view.PageValues(view.State.Page).Encode()
	}

	return h.render(c, http.StatusOK, views.PageList, "Inbox", list)
}

// Show handles GET /emails/:id
func (h *PageHandler) Show(c echo.Context) error {
	id := c.Param("id")

	email, err := h.inbox.GetEmail(c.Request().Context(), id)
	if err != nil {
		if apperrors.IsUnauthorized(err) {
			return h.relogin(c)
		}
		if apperrors.IsNotFound(err) {
			return h.render(c, http.StatusNotFound, views.PageEmail, "Not found", views.Detail{
				ID:    id,
				Error: apperrors.EmailMissing(id).Error(),
			})
		}
		return h.render(c, apperrors.HTTPStatus(err), views.PageEmail, "Error", views.Detail{ID: id, Error: err.Error()})
	}

	return h.render(c, http.StatusOK, views.PageEmail, email.Subject, h.detail(email, c.QueryParam("tab"), c.QueryParams()))
}

// Delete handles POST /emails/:id/delete. Deleting an email that is already
// gone still lands back on the list.
func (h *PageHandler) Delete(c echo.Context) error {
	id := c.Param("id")

	_, err := h.inbox.DeleteEmail(c.Request().Context(), id)
	if err != nil && !apperrors.IsNotFound(err) {
		if apperrors.IsUnauthorized(err) {
			return h.relogin(c)
		}
		h.logger.Error("delete email failed", slog.String("id", id), slog.Any("error", err))
		return h.renderError(c, apperrors.HTTPStatus(err), err.Error())
	}

	return c.Redirect(http.StatusSeeOther, h.returnTo(c))
}

// DeleteAll handles POST /emails/delete
func (h *PageHandler) DeleteAll(c echo.Context) error {
	if _, err := h.inbox.DeleteAllEmails(c.Request().Context()); err != nil {
		if apperrors.IsUnauthorized(err) {
			return h.relogin(c)
		}
		h.logger.Error("delete all emails failed", slog.Any("error", err))
		return h.renderError(c, apperrors.HTTPStatus(err), err.Error())
	}

	return c.Redirect(http.StatusSeeOther, h.home(nil))
}

// returnTo is the list page the mutation came from, without its selection
func (h *PageHandler) returnTo(c echo.Context) string {
	q := c.QueryParams()
	if q.Get(pager.ParamPage) == "" && q.Get(pager.ParamPageSize) == "" && q.Get(pager.ParamSize) == "" {
		return h.home(nil)
	}
	st := pager.Parse(q)
	st.Selected = ""
	return h.home(st.Values())
}

// relogin handles a backend that refused the held credentials by dropping
// them and sending the visitor to the login page
func (h *PageHandler) relogin(c echo.Context) error {
	h.store.SetAuthError(apperrors.MessageInvalidCredentials)
	return c.Redirect(http.StatusSeeOther, h.login())
}
