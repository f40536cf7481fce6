// Package views holds the HTML templates and static assets of the viewer.
package views

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"

	"github.com/labstack/echo/v4"

	"github.com/welldanyogia/webrana-inbox-viewer/internal/render"
)

// Template names
const (
	PageList  = "list"
	PageEmail = "email"
	PageLogin = "login"
	PageError = "error"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Layout is the data every page is rendered with
type Layout struct {
	Prefix         string
	Title          string
	Username       string
	Authenticated  bool
	BackendVersion string
	Content        any
}

// Row is one line of the inbox table
type Row struct {
	ID        string
	From      string
	To        string
	Subject   string
	Received  string
	SelectURL string
	DetailURL string
	Selected  bool
}

// List is the inbox page
type List struct {
	Rows           []Row
	Page           uint
	Size           uint
	TotalPages     int
	TotalElements  int64
	SizeOptions    []uint
	PrevURL        string
	NextURL        string
	Selected       *Detail
	SelectionError string
	Error          string
}

// TabLink is a representation tab with its address
type TabLink struct {
	render.Tab
	URL    string
	Active bool
}

// AttachmentLink is a downloadable attachment
type AttachmentLink struct {
	Filename string
	URL      string
}

// Detail is one email, rendered in its active representation
type Detail struct {
	ID          string
	From        string
	To          string
	Subject     string
	Received    string
	Tabs        []TabLink
	Active      string
	HTML        template.HTML
	Plain       []string
	Raw         string
	Headers     []render.Header
	Attachments []AttachmentLink
	DetailURL   string
	DeleteURL   string
	Error       string
}

// Login is the login form
type Login struct {
	Username string
	Next     string
	Error    string
}

// Error is a full-page error
type Error struct {
	Status  int
	Message string
}

// Renderer renders the viewer's pages for echo
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses every page against the shared layout
func NewRenderer() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, name := range []string{PageList, PageEmail, PageLogin, PageError} {
		t, err := template.New(name).ParseFS(templateFS,
			"templates/layout.html", "templates/detail.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render implements echo.Renderer
func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown template %q", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}

// Static returns the static assets, rooted at the static directory
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
