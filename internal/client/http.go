package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	apperrors "github.com/welldanyogia/webrana-inbox-viewer/internal/errors"
)

// maxErrorBody bounds how much of an error response is read for logging
const maxErrorBody = 4 << 10

type request struct {
	method string
	path   string
	query  url.Values
	body   any
	// authorization overrides the header derived from the auth store
	authorization string
}

// do performs req and decodes a JSON response into out when out is non-nil.
// An empty 2xx body leaves out untouched.
func (c *Client) do(ctx context.Context, req request, out any) error {
	u := c.endpoint(req.path)
	if len(req.query) > 0 {
		u += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		data, err := json.Marshal(req.body)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInvalidInput, fmt.Sprintf("encoding request body: %v", err))
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u, body)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	c.authorize(httpReq, req.authorization)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Warn("backend request failed",
			slog.String("method", req.method),
			slog.String("path", req.path),
			slog.Any("error", err))
		return apperrors.Transport(err)
	}
	defer resp.Body.Close()

	if statusErr := apperrors.FromStatus(req.method, u, resp.StatusCode); statusErr != nil {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Debug("backend rejected request",
			slog.String("method", req.method),
			slog.String("path", req.path),
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(detail)))
		return statusErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.Transport(err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, fmt.Sprintf("decoding %s %s: %v", req.method, req.path, err))
	}
	return nil
}

func (c *Client) authorize(req *http.Request, override string) {
	if override != "" {
		req.Header.Set("Authorization", override)
		return
	}
	if c.auth == nil {
		return
	}
	if header, ok := c.auth.Authorization(); ok {
		req.Header.Set("Authorization", header)
	}
}

// endpoint joins the backend origin, the base path and an /api path
func (c *Client) endpoint(path string) string {
	return c.backendURL + c.basePath.Prefix() + "/api" + path
}
