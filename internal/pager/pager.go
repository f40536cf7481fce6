// Package pager derives the inbox list state from URL query parameters
// and loads the matching page.
package pager

import (
	"context"
	"net/url"
	"slices"
	"strconv"

	apperrors "github.com/welldanyogia/webrana-inbox-viewer/internal/errors"
	"github.com/welldanyogia/webrana-inbox-viewer/internal/models"
)

// Query parameter names
const (
	ParamPage     = "page"
	ParamPageSize = "pageSize"
	ParamSize     = "size"
	ParamSelected = "selected"
)

const (
	DefaultPage = 0
	DefaultSize = 10
	MaxSize     = 100
)

// DefaultSizeOptions are the page sizes always offered
var DefaultSizeOptions = []uint{10, 25, 50, 100}

// State is the list state encoded in the URL
type State struct {
	Page        uint
	Size        uint
	Selected    string
	SizeOptions []uint
}

// Parse reads page, pageSize (or size) and selected from q. Malformed
// values fall back to the defaults silently.
func Parse(q url.Values) State {
	st := State{
		Page:     parseUint(q.Get(ParamPage), DefaultPage),
		Selected: q.Get(ParamSelected),
	}

	raw := q.Get(ParamPageSize)
	if raw == "" {
		raw = q.Get(ParamSize)
	}
	st.Size = parseUint(raw, DefaultSize)
	if st.Size == 0 {
		st.Size = DefaultSize
	}
	if st.Size > MaxSize {
		st.Size = MaxSize
	}

	st.SizeOptions = SizeOptions(st.Size)
	return st
}

// SizeOptions returns the offered sizes including size, sorted ascending
func SizeOptions(size uint) []uint {
	opts := slices.Clone(DefaultSizeOptions)
	if !slices.Contains(opts, size) {
		opts = append(opts, size)
		slices.Sort(opts)
	}
	return opts
}

// Values encodes the state as query parameters
func (s State) Values() url.Values {
	q := url.Values{}
	q.Set(ParamPage, strconv.FormatUint(uint64(s.Page), 10))
	q.Set(ParamPageSize, strconv.FormatUint(uint64(s.Size), 10))
	if s.Selected != "" {
		q.Set(ParamSelected, s.Selected)
	}
	return q
}

// Navigate returns the query parameters for (page, size). It reports
// false when they equal the current ones, in which case nothing should be
// written. The selection is carried over unchanged.
func Navigate(current State, page, size uint) (url.Values, bool) {
	if size == 0 {
		size = DefaultSize
	}
	if size > MaxSize {
		size = MaxSize
	}
	if page == current.Page && size == current.Size {
		return nil, false
	}
	next := current
	next.Page = page
	next.Size = size
	return next.Values(), true
}

// Lister fetches one list page
type Lister interface {
	ListEmails(ctx context.Context, page, size uint) (*models.EmailPage, error)
}

// Controller loads the page the URL asks for
type Controller struct {
	lister Lister
}

// NewController creates a Controller over l
func NewController(l Lister) *Controller {
	return &Controller{lister: l}
}

// Load parses q and fetches the page it names. Pages past the end come
// back empty; there is no rebalancing to an earlier page.
func (c *Controller) Load(ctx context.Context, q url.Values) (*View, error) {
	st := Parse(q)
	p, err := c.lister.ListEmails(ctx, st.Page, st.Size)
	if err != nil {
		return nil, err
	}
	return &View{State: st, Page: p}, nil
}

// View is a loaded list page
type View struct {
	State
	Page *models.EmailPage
}

// Empty reports whether there are no rows to show
func (v *View) Empty() bool {
	return v.Page == nil || v.Page.Empty()
}

// Selected looks the selected id up on the current page. An id that is
// not on the page is a miss, not an error.
func (v *View) Selected() (*models.Email, bool) {
	if v.State.Selected == "" || v.Page == nil {
		return nil, false
	}
	for i := range v.Page.Content {
		if v.Page.Content[i].IDString() == v.State.Selected {
			return &v.Page.Content[i], true
		}
	}
	return nil, false
}

// SelectionError is the message shown for a selection miss
func (v *View) SelectionError() error {
	if v.State.Selected == "" {
		return nil
	}
	if _, ok := v.Selected(); ok {
		return nil
	}
	return apperrors.NewAppError(apperrors.ErrEmailNotFound, apperrors.MessageEmailNotFound, apperrors.CodeNotFound)
}

// HasPrev reports whether an earlier page exists
func (v *View) HasPrev() bool {
	return v.State.Page > 0
}

// HasNext reports whether a later page exists
func (v *View) HasNext() bool {
	return v.Page != nil && int(v.State.Page)+1 < v.Page.TotalPages
}

// PageValues returns the query for page at the current size, dropping
// the selection
func (v *View) PageValues(page uint) url.Values {
	st := v.State
	st.Page = page
	st.Selected = ""
	return st.Values()
}

// SelectValues returns the query selecting id on the current page
func (v *View) SelectValues(id string) url.Values {
	st := v.State
	st.Selected = id
	return st.Values()
}

func parseUint(raw string, fallback uint) uint {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return uint(n)
}
