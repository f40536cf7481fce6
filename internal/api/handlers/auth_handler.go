package handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/welldanyogia/webrana-inbox-viewer/internal/api/views"
	"github.com/welldanyogia/webrana-inbox-viewer/internal/auth"
	apperrors "github.com/welldanyogia/webrana-inbox-viewer/internal/errors"
	"github.com/welldanyogia/webrana-inbox-viewer/internal/logger"
	"github.com/welldanyogia/webrana-inbox-viewer/internal/models"
	"github.com/welldanyogia/webrana-inbox-viewer/internal/validator"
)

const maxUsernameLength = 256

// CredentialSaver persists credentials across restarts.
// *auth.KeyringStore implements it.
type CredentialSaver interface {
	Save(models.Credentials) error
	Delete() error
}

// AuthHandler handles login and logout
type AuthHandler struct {
	site
	inbox    Inbox
	saver    CredentialSaver
	security *logger.Logger
	logger   *slog.Logger
}

// NewAuthHandler creates a new AuthHandler. saver may be nil.
func NewAuthHandler(inbox Inbox, store *auth.Store, saver CredentialSaver, prefix string, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		site:     site{prefix: prefix, store: store},
		inbox:    inbox,
		saver:    saver,
		security: log,
		logger:   log.Slog(),
	}
}

// LoginForm handles GET /login
func (h *AuthHandler) LoginForm(c echo.Context) error {
	st := h.store.State()
	form := views.Login{Next: c.QueryParam("next"), Error: st.Error}
	if st.Credentials != nil {
		form.Username = st.Credentials.Username
	}
	return h.render(c, http.StatusOK, views.PageLogin, "Log in", form)
}

// Login handles POST /login. The credentials are checked against the
// backend and only stored when accepted.
func (h *AuthHandler) Login(c echo.Context) error {
	creds := models.Credentials{
		Username: validator.SanitizeString(c.FormValue("username"), maxUsernameLength),
		Password: c.FormValue("password"),
	}
	next := c.FormValue("next")

	if creds.Username == "" || creds.Password == "" {
		return h.render(c, http.StatusBadRequest, views.PageLogin, "Log in", views.Login{
			Username: creds.Username,
			Next:     next,
			Error:    "Username and password are required.",
		})
	}

	if err := h.inbox.Login(c.Request().Context(), creds); err != nil {
		status := apperrors.HTTPStatus(err)
		msg := err.Error()
		if apperrors.IsUnauthorized(err) {
			msg = apperrors.MessageInvalidCredentials
			h.store.SetAuthError(msg)
			h.security.LoginFailure(c.RealIP(), "credentials rejected by backend")
		}
		return h.render(c, status, views.PageLogin, "Log in", views.Login{
			Username: creds.Username,
			Next:     next,
			Error:    msg,
		})
	}

	h.store.SetCredentials(creds)
	if h.saver != nil {
		if err := h.saver.Save(creds); err != nil {
			h.logger.Warn("could not persist credentials", slog.Any("error", err))
		}
	}

	return c.Redirect(http.StatusSeeOther, h.safeNext(next))
}

// Logout handles POST /logout
func (h *AuthHandler) Logout(c echo.Context) error {
	h.store.ClearCredentials()
	if h.saver != nil {
		if err := h.saver.Delete(); err != nil {
			h.logger.Warn("could not remove saved credentials", slog.Any("error", err))
		}
	}
	return c.Redirect(http.StatusSeeOther, h.login())
}
