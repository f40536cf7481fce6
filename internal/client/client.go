// Package client is the query/cache layer over the mail-capture REST API.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/welldanyogia/webrana-inbox-viewer/internal/basepath"
	apperrors "github.com/welldanyogia/webrana-inbox-viewer/internal/errors"
	"github.com/welldanyogia/webrana-inbox-viewer/internal/models"
)

// Authorizer supplies the Authorization header while authenticated
type Authorizer interface {
	Authorization() (string, bool)
}

// Options configures a Client
type Options struct {
	// BackendURL is the backend origin, e.g. http://localhost:8080
	BackendURL string
	BasePath   *basepath.Resolver
	HTTPClient *http.Client
	Auth       Authorizer
	Logger     *slog.Logger
}

// Client exposes the inbox operations with tag-based caching
type Client struct {
	backendURL string
	basePath   *basepath.Resolver
	http       *http.Client
	auth       Authorizer
	cache      *Cache
	logger     *slog.Logger
}

// New creates a Client
func New(opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	bp := opts.BasePath
	if bp == nil {
		bp = basepath.New(basepath.Static(""))
	}
	return &Client{
		backendURL: strings.TrimSuffix(opts.BackendURL, "/"),
		basePath:   bp,
		http:       httpClient,
		auth:       opts.Auth,
		cache:      NewCache(logger),
		logger:     logger,
	}
}

// Cache returns the shared cache
func (c *Client) Cache() *Cache {
	return c.cache
}

// ListEmails fetches one page of emails
func (c *Client) ListEmails(ctx context.Context, page, size uint) (*models.EmailPage, error) {
	v, err := c.cache.Query(ctx, listKey(page, size), provides(OpListEmails, ""), c.listFetcher(page, size))
	if err != nil {
		return nil, err
	}
	return v.(*models.EmailPage), nil
}

// WatchList calls onChange whenever the cached page (page, size) is refetched
func (c *Client) WatchList(page, size uint, onChange func()) func() {
	return c.cache.Watch(listKey(page, size), provides(OpListEmails, ""), c.listFetcher(page, size), onChange)
}

func (c *Client) listFetcher(page, size uint) Fetcher {
	return func(ctx context.Context) (any, []Tag, error) {
		var p models.EmailPage
		err := c.do(ctx, request{
			method: http.MethodGet,
			path:   "/emails",
			query:  pageQuery(page, size),
		}, &p)
		if err != nil {
			return nil, nil, err
		}
		return &p, pageTags(&p), nil
	}
}

// SearchEmails runs a backend search. Results are tagged like list pages.
func (c *Client) SearchEmails(ctx context.Context, req models.SearchRequest) (*models.EmailPage, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
	}
	key := fmt.Sprintf("%s(%s)", OpSearchEmails, body)
	v, err := c.cache.Query(ctx, key, provides(OpSearchEmails, ""), func(ctx context.Context) (any, []Tag, error) {
		var p models.EmailPage
		if err := c.do(ctx, request{method: http.MethodPost, path: "/emails/search", body: req}, &p); err != nil {
			return nil, nil, err
		}
		return &p, pageTags(&p), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.EmailPage), nil
}

// GetEmail fetches a single email. A missing email yields ErrNotFound.
func (c *Client) GetEmail(ctx context.Context, id string) (*models.Email, error) {
	v, err := c.cache.Query(ctx, emailKey(id), provides(OpGetEmail, id), func(ctx context.Context) (any, []Tag, error) {
		var email models.Email
		if err := c.do(ctx, request{method: http.MethodGet, path: "/emails/" + url.PathEscape(id)}, &email); err != nil {
			return nil, nil, err
		}
		return &email, []Tag{EmailTag(id)}, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Email), nil
}

// DeleteEmail removes one email and invalidates its tag
func (c *Client) DeleteEmail(ctx context.Context, id string) (*models.DeleteResult, error) {
	result := &models.DeleteResult{Success: true, ID: id}
	err := c.do(ctx, request{method: http.MethodDelete, path: "/emails/" + url.PathEscape(id)}, result)
	if err != nil && !apperrors.IsNotFound(err) {
		return nil, err
	}
	c.cache.Invalidate(invalidates(OpDeleteEmail, id)...)
	if err != nil {
		return nil, err
	}
	if result.ID == "" {
		result.ID = id
	}
	return result, nil
}

// DeleteAllEmails removes every email and invalidates every Emails tag,
// list pages and single-email entries alike
func (c *Client) DeleteAllEmails(ctx context.Context) (*models.DeleteResult, error) {
	result := &models.DeleteResult{Success: true}
	if err := c.do(ctx, request{method: http.MethodDelete, path: "/emails"}, result); err != nil {
		return nil, err
	}
	c.cache.Invalidate(invalidates(OpDeleteAllEmails, "")...)
	return result, nil
}

// GetMetaData fetches the backend metadata once; it is never invalidated
func (c *Client) GetMetaData(ctx context.Context) (*models.MetaData, error) {
	v, err := c.cache.Query(ctx, string(OpGetMetaData), provides(OpGetMetaData, ""), func(ctx context.Context) (any, []Tag, error) {
		var meta models.MetaData
		if err := c.do(ctx, request{method: http.MethodGet, path: "/meta-data"}, &meta); err != nil {
			return nil, nil, err
		}
		return &meta, nil, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.MetaData), nil
}

// Login validates creds with a one-item list request. It neither caches the
// result nor updates any auth state; callers persist creds on success.
func (c *Client) Login(ctx context.Context, creds models.Credentials) error {
	err := c.do(ctx, request{
		method:        http.MethodGet,
		path:          "/emails",
		query:         pageQuery(0, 1),
		authorization: creds.BasicAuth(),
	}, nil)
	if apperrors.IsUnauthorized(err) {
		return apperrors.NewAppError(err, apperrors.MessageInvalidCredentials, apperrors.CodeUnauthorized)
	}
	return err
}

// InvalidateList marks every list page stale, as a new arrival does
func (c *Client) InvalidateList() {
	c.cache.Invalidate(ListTag())
}

// ListStatus reports the loading state of a list page
func (c *Client) ListStatus(page, size uint) Status {
	return c.cache.Status(listKey(page, size))
}

// EventsURL is the address of the live-update stream
func (c *Client) EventsURL() string {
	return c.endpoint("/emails/events")
}

// AttachmentURL is the direct download address of an attachment
func (c *Client) AttachmentURL(emailID, attachmentID string) string {
	return c.endpoint("/emails/" + url.PathEscape(emailID) + "/attachments/" + url.PathEscape(attachmentID))
}

// Attachment is an open attachment download
type Attachment struct {
	Body          io.ReadCloser
	ContentType   string
	Disposition   string
	ContentLength int64
}

// OpenAttachment streams an attachment. It bypasses the cache.
// The caller must close Body.
func (c *Client) OpenAttachment(ctx context.Context, emailID, attachmentID string) (*Attachment, error) {
	u := c.AttachmentURL(emailID, attachmentID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
	}
	c.authorize(req, "")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperrors.Transport(err)
	}
	if statusErr := apperrors.FromStatus(http.MethodGet, u, resp.StatusCode); statusErr != nil {
		resp.Body.Close()
		if apperrors.IsNotFound(statusErr) {
			return nil, apperrors.Wrap(apperrors.ErrAttachmentNotFound, u)
		}
		return nil, statusErr
	}
	return &Attachment{
		Body:          resp.Body,
		ContentType:   resp.Header.Get("Content-Type"),
		Disposition:   resp.Header.Get("Content-Disposition"),
		ContentLength: resp.ContentLength,
	}, nil
}

func pageQuery(page, size uint) url.Values {
	q := url.Values{}
	q.Set("page", strconv.FormatUint(uint64(page), 10))
	q.Set("size", strconv.FormatUint(uint64(size), 10))
	return q
}

func pageTags(p *models.EmailPage) []Tag {
	tags := make([]Tag, 0, len(p.Content)+1)
	for i := range p.Content {
		tags = append(tags, EmailTag(p.Content[i].IDString()))
	}
	return append(tags, ListTag())
}
