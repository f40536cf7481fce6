// Package mockapi is an in-memory stand-in for the mail-capture backend.
// It serves the REST API and the event stream so the inbox client can be
// exercised end to end in tests.
package mockapi

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/welldanyogia/webrana-inbox-viewer/internal/models"
)

// Option configures a Server
type Option func(*Server)

// WithCredentials enables Basic authentication on every endpoint except
// the metadata endpoint
func WithCredentials(username, password string) Option {
	return func(s *Server) {
		s.creds = &models.Credentials{Username: username, Password: password}
	}
}

// WithBasePath mounts the API under prefix
func WithBasePath(prefix string) Option {
	return func(s *Server) {
		s.basePath = strings.TrimSuffix(prefix, "/")
	}
}

// WithVersion sets the reported backend version
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = v
	}
}

type attachment struct {
	models.EmailAttachment
	contentType string
	data        []byte
}

type stream struct {
	events chan event
	done   chan struct{}
}

type event struct {
	name string
	data string
}

// Server is the fake backend
type Server struct {
	mu          sync.Mutex
	emails      []models.Email
	attachments map[int64][]attachment
	nextID      int64
	nextAttID   int64
	creds       *models.Credentials
	basePath    string
	version     string
	streams     map[*stream]struct{}
	rejectSSE   bool
	requests    map[string]int
	delay       time.Duration

	echo *echo.Echo
	ts   *httptest.Server
}

// New starts a fake backend
func New(opts ...Option) *Server {
	s := &Server{
		attachments: make(map[int64][]attachment),
		nextID:      1,
		nextAttID:   1,
		version:     "test",
		streams:     make(map[*stream]struct{}),
		requests:    make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(s.countRequests)

	api := e.Group(s.basePath + "/api")
	if s.creds != nil {
		api.Use(middleware.BasicAuthWithConfig(middleware.BasicAuthConfig{
			Skipper: func(c echo.Context) bool {
				return strings.HasSuffix(c.Path(), "/meta-data")
			},
			Validator: func(user, pass string, c echo.Context) (bool, error) {
				return user == s.creds.Username && pass == s.creds.Password, nil
			},
		}))
	}

	api.GET("/meta-data", s.metaData)
	api.GET("/emails", s.list)
	api.POST("/emails/search", s.search)
	api.GET("/emails/events", s.events)
	api.GET("/emails/:id", s.get)
	api.DELETE("/emails/:id", s.delete)
	api.DELETE("/emails", s.deleteAll)
	api.GET("/emails/:id/attachments/:attachmentId", s.attachment)

	s.echo = e
	s.ts = httptest.NewServer(e)
	return s
}

// URL is the backend origin
func (s *Server) URL() string {
	return s.ts.URL
}

// Close stops the server and its streams
func (s *Server) Close() {
	s.CloseStreams()
	s.ts.Close()
}

// Requests returns how many requests hit the given route path,
// e.g. "/api/emails/:id"
func (s *Server) Requests(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[s.basePath+route]
}

// SetDelay slows every REST response down, to widen in-flight windows
func (s *Server) SetDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

// RejectEvents makes the event stream answer 503
func (s *Server) RejectEvents(reject bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejectSSE = reject
}

// StreamCount returns the number of connected event streams
func (s *Server) StreamCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.streams)
}

// CloseStreams disconnects every event stream
func (s *Server) CloseStreams() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for st := range s.streams {
		close(st.done)
		delete(s.streams, st)
	}
}

// AddEmail stores email, assigning id and timestamp when unset, and
// announces it on every event stream
func (s *Server) AddEmail(email models.Email) models.Email {
	s.mu.Lock()
	email = s.insertLocked(email, nil)
	s.mu.Unlock()

	s.Broadcast("email-received", strconv.FormatInt(email.ID, 10))
	return email
}

// AddRaw parses a raw RFC 5322 message and stores it
func (s *Server) AddRaw(raw string) (models.Email, error) {
	email, parts, err := fromRaw(raw)
	if err != nil {
		return models.Email{}, err
	}

	s.mu.Lock()
	email = s.insertLocked(email, parts)
	s.mu.Unlock()

	s.Broadcast("email-received", strconv.FormatInt(email.ID, 10))
	return email, nil
}

// Remove deletes an email without going through the API
func (s *Server) Remove(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(id)
}

func (s *Server) insertLocked(email models.Email, parts []attachment) models.Email {
	email.ID = s.nextID
	s.nextID++
	if email.ReceivedOn.IsZero() {
		email.ReceivedOn = models.NewTimestamp(time.Now().UTC())
	}
	if email.Contents == nil {
		email.Contents = []models.EmailContent{}
	}
	if email.Attachments == nil {
		email.Attachments = []models.EmailAttachment{}
	}
	if email.InlineImages == nil {
		email.InlineImages = []models.InlineImage{}
	}
	for _, p := range parts {
		p.ID = s.nextAttID
		s.nextAttID++
		email.Attachments = append(email.Attachments, p.EmailAttachment)
		s.attachments[email.ID] = append(s.attachments[email.ID], p)
	}
	s.emails = append(s.emails, email)
	return email
}

func (s *Server) removeLocked(id int64) bool {
	for i, email := range s.emails {
		if email.ID == id {
			s.emails = append(s.emails[:i], s.emails[i+1:]...)
			delete(s.attachments, id)
			return true
		}
	}
	return false
}

// Broadcast sends a named event to every connected stream
func (s *Server) Broadcast(name, data string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for st := range s.streams {
		select {
		case st.events <- event{name: name, data: data}:
		default:
		}
	}
}

func (s *Server) countRequests(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		s.mu.Lock()
		s.requests[c.Path()]++
		delay := s.delay
		s.mu.Unlock()
		if delay > 0 && !strings.HasSuffix(c.Path(), "/events") {
			time.Sleep(delay)
		}
		return next(c)
	}
}

func (s *Server) metaData(c echo.Context) error {
	return c.JSON(http.StatusOK, models.MetaData{
		Version:               s.version,
		AuthenticationEnabled: s.creds != nil,
	})
}

func (s *Server) list(c echo.Context) error {
	page := intParam(c.QueryParam("page"), 0)
	size := intParam(c.QueryParam("size"), 20)
	if page < 0 || size <= 0 {
		return c.NoContent(http.StatusBadRequest)
	}
	return c.JSON(http.StatusOK, models.NewPage(s.sorted(), page, size))
}

func (s *Server) search(c echo.Context) error {
	var req models.SearchRequest
	if err := c.Bind(&req); err != nil {
		return c.NoContent(http.StatusBadRequest)
	}
	if req.Size <= 0 {
		req.Size = 20
	}
	var matched []models.Email
	for _, email := range s.sorted() {
		if matches(email, req) {
			matched = append(matched, email)
		}
	}
	return c.JSON(http.StatusOK, models.NewPage(matched, req.Page, req.Size))
}

func (s *Server) get(c echo.Context) error {
	email, ok := s.find(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Could not find email " + c.Param("id")})
	}
	return c.JSON(http.StatusOK, email)
}

func (s *Server) delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}
	s.mu.Lock()
	removed := s.removeLocked(id)
	s.mu.Unlock()
	if !removed {
		return c.NoContent(http.StatusNotFound)
	}
	return c.NoContent(http.StatusOK)
}

func (s *Server) deleteAll(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emails = nil
	s.attachments = make(map[int64][]attachment)
	return c.NoContent(http.StatusOK)
}

func (s *Server) attachment(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}
	attID, err := strconv.ParseInt(c.Param("attachmentId"), 10, 64)
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}
	s.mu.Lock()
	parts := s.attachments[id]
	s.mu.Unlock()
	for _, p := range parts {
		if p.ID == attID {
			c.Response().Header().Set(echo.HeaderContentDisposition, "attachment;filename="+p.Filename)
			return c.Blob(http.StatusOK, p.contentType, p.data)
		}
	}
	return c.NoContent(http.StatusNotFound)
}

func (s *Server) events(c echo.Context) error {
	s.mu.Lock()
	if s.rejectSSE {
		s.mu.Unlock()
		return c.NoContent(http.StatusServiceUnavailable)
	}
	st := &stream{events: make(chan event, 16), done: make(chan struct{})}
	s.streams[st] = struct{}{}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.streams, st)
		s.mu.Unlock()
	}()

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.WriteHeader(http.StatusOK)

	write := func(ev event) error {
		if _, err := fmt.Fprintf(res, "event:%s\ndata:%s\n\n", ev.name, ev.data); err != nil {
			return err
		}
		res.Flush()
		return nil
	}

	if err := write(event{name: "connection-established", data: "connected"}); err != nil {
		return nil
	}

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-st.done:
			return nil
		case ev := <-st.events:
			if err := write(ev); err != nil {
				return nil
			}
		}
	}
}

func (s *Server) find(rawID string) (models.Email, bool) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return models.Email{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, email := range s.emails {
		if email.ID == id {
			return email, true
		}
	}
	return models.Email{}, false
}

// sorted returns emails newest first, ties broken by id
func (s *Server) sorted() []models.Email {
	s.mu.Lock()
	out := make([]models.Email, len(s.emails))
	copy(out, s.emails)
	s.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ReceivedOn.Equal(out[j].ReceivedOn.Time) {
			return out[i].ID > out[j].ID
		}
		return out[i].ReceivedOn.After(out[j].ReceivedOn.Time)
	})
	return out
}

func intParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return -1
	}
	return v
}

func matches(email models.Email, req models.SearchRequest) bool {
	if len(req.Filters) == 0 {
		return true
	}
	or := strings.EqualFold(req.LogicalOperator, "OR")
	for _, f := range req.Filters {
		ok := filterMatches(email, f)
		if or && ok {
			return true
		}
		if !or && !ok {
			return false
		}
	}
	return !or
}

func filterMatches(email models.Email, f models.SearchFilter) bool {
	var field string
	switch f.Key {
	case "fromAddress":
		field = email.FromAddress
	case "toAddress":
		field = email.ToAddress
	case "subject":
		field = email.Subject
	default:
		return false
	}
	value := fmt.Sprint(f.Value)
	switch f.Operator {
	case models.OperatorEqual:
		return field == value
	case models.OperatorNotEqual:
		return field != value
	case models.OperatorLike:
		return strings.Contains(strings.ToUpper(field), strings.ToUpper(value))
	default:
		return false
	}
}
