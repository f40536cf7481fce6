// Package handlers serves the viewer's pages, its JSON API, and the
// websocket endpoint.
package handlers

import (
	"context"
	"html/template"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/welldanyogia/webrana-inbox-viewer/internal/api/middleware"
	"github.com/welldanyogia/webrana-inbox-viewer/internal/api/views"
	"github.com/welldanyogia/webrana-inbox-viewer/internal/auth"
	"github.com/welldanyogia/webrana-inbox-viewer/internal/client"
	"github.com/welldanyogia/webrana-inbox-viewer/internal/models"
	"github.com/welldanyogia/webrana-inbox-viewer/internal/pager"
	"github.com/welldanyogia/webrana-inbox-viewer/internal/render"
)

// Inbox is the query layer the handlers read and mutate through.
// *client.Client implements it.
type Inbox interface {
	pager.Lister
	GetEmail(ctx context.Context, id string) (*models.Email, error)
	DeleteEmail(ctx context.Context, id string) (*models.DeleteResult, error)
	DeleteAllEmails(ctx context.Context) (*models.DeleteResult, error)
	SearchEmails(ctx context.Context, req models.SearchRequest) (*models.EmailPage, error)
	GetMetaData(ctx context.Context) (*models.MetaData, error)
	Login(ctx context.Context, creds models.Credentials) error
	OpenAttachment(ctx context.Context, emailID, attachmentID string) (*client.Attachment, error)
}

const receivedLayout = "2006-01-02 15:04:05"

// site builds the addresses of the viewer's pages under a prefix
type site struct {
	prefix string
	store  *auth.Store
}

func (s site) home(q url.Values) string {
	if len(q) == 0 {
		return s.prefix + "/"
	}
	return s.prefix + "/?" + q.Encode()
}

func (s site) email(id string, q url.Values) string {
	u := s.prefix + "/emails/" + url.PathEscape(id)
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

func (s site) attachment(emailID, attachmentID string) string {
	return s.prefix + "/emails/" + url.PathEscape(emailID) + "/attachments/" + url.PathEscape(attachmentID)
}

func (s site) login() string {
	return s.prefix + "/login"
}

// safeNext returns next when it is a local address under the prefix
func (s site) safeNext(next string) string {
	if next == "" || strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return s.home(nil)
	}
	u, err := url.Parse(next)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, s.prefix+"/") {
		return s.home(nil)
	}
	return next
}

func (s site) layout(c echo.Context, title string, content any) views.Layout {
	l := views.Layout{
		Prefix:         s.prefix,
		Title:          title,
		BackendVersion: middleware.GetBackendVersion(c),
		Content:        content,
	}
	if s.store != nil {
		st := s.store.State()
		if st.IsAuthenticated && st.Credentials != nil {
			l.Authenticated = true
			l.Username = st.Credentials.Username
		}
	}
	return l
}

func (s site) render(c echo.Context, status int, page, title string, content any) error {
	return c.Render(status, page, s.layout(c, title, content))
}

func (s site) renderError(c echo.Context, status int, message string) error {
	return s.render(c, status, views.PageError, "Error", views.Error{Status: status, Message: message})
}

// detail renders email in the representation tab names
func (s site) detail(email *models.Email, tab string, q url.Values) *views.Detail {
	id := email.IDString()
	active := render.ActiveTab(email, tab)

	d := &views.Detail{
		ID:        id,
		From:      email.FromAddress,
		To:        email.ToAddress,
		Subject:   email.Subject,
		Received:  email.ReceivedOn.Format(receivedLayout),
		Active:    active,
		DetailURL: s.email(id, nil),
		DeleteURL: s.email(id, nil) + "/delete",
	}

	for _, t := range render.Tabs(email) {
		tq := url.Values{}
		for k, v := range q {
			tq[k] = v
		}
		tq.Set("tab", t.Name)
		d.Tabs = append(d.Tabs, views.TabLink{Tab: t, URL: "?" + tq.Encode(), Active: t.Name == active})
	}

	switch active {
	case models.ContentTypeHTML:
		d.HTML = template.HTML(render.HTML(email))
	case models.ContentTypePlain:
		d.Plain = render.Plain(email)
	default:
		d.Raw = render.Raw(email)
		// a raw message enmime cannot parse is still shown as text
		d.Headers, _ = render.Headers(email)
	}

	for _, a := range email.Attachments {
		aid := strconv.FormatInt(a.ID, 10)
		d.Attachments = append(d.Attachments, views.AttachmentLink{Filename: a.Filename, URL: s.attachment(id, aid)})
	}
	return d
}
