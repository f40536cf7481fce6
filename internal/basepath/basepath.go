// Package basepath resolves the deployment-relative URL prefix that every
// outbound backend URL is joined with.
package basepath

import (
	"io"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/net/html"
)

// MetaName is the name of the page-level marker carrying the prefix
const MetaName = "base-path"

// maxPageSize bounds how much of an index page is scanned for the marker
const maxPageSize = 1 << 20

// Source produces the raw, unnormalised prefix
type Source func() string

// Resolver memoizes the prefix for the lifetime of the process.
// The first call to Resolve wins; the source is never consulted again.
type Resolver struct {
	source Source
	once   sync.Once
	path   string
	ok     bool
}

// New creates a Resolver reading from source
func New(source Source) *Resolver {
	return &Resolver{source: source}
}

// Static returns a Source yielding a fixed value, such as BASE_PATH
func Static(prefix string) Source {
	return func() string { return prefix }
}

// MetaTag returns a Source reading <meta name="base-path" content="..."> from
// an HTML document. Read or parse failures yield an absent prefix.
func MetaTag(r io.Reader) Source {
	return func() string {
		return findMeta(r)
	}
}

// Page returns a Source reading the marker from the HTML page at pageURL.
// The page is fetched when the Source is first consulted; fetch failures
// and non-200 answers yield an absent prefix.
func Page(client *http.Client, pageURL string) Source {
	if client == nil {
		client = http.DefaultClient
	}
	return func() string {
		req, err := http.NewRequest(http.MethodGet, pageURL, nil)
		if err != nil {
			return ""
		}
		req.Header.Set("Accept", "text/html")
		resp, err := client.Do(req)
		if err != nil {
			return ""
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return ""
		}
		return findMeta(io.LimitReader(resp.Body, maxPageSize))
	}
}

// Configured uses an explicit prefix such as BASE_PATH when one is given
// and otherwise falls back to the marker on the backend's index page
func Configured(prefix string, client *http.Client, backendURL string) Source {
	if strings.TrimSpace(prefix) != "" {
		return Static(prefix)
	}
	return Page(client, strings.TrimSuffix(backendURL, "/")+"/")
}

// Resolve returns the normalised prefix and whether one is set
func (r *Resolver) Resolve() (string, bool) {
	r.once.Do(func() {
		if r.source == nil {
			return
		}
		r.path, r.ok = Normalize(r.source())
	})
	return r.path, r.ok
}

// Prefix returns the prefix, or "" when absent
func (r *Resolver) Prefix() string {
	p, _ := r.Resolve()
	return p
}

// Normalize strips one trailing slash; an empty result means absent
func Normalize(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimSuffix(raw, "/")
	if raw == "" {
		return "", false
	}
	return raw, true
}

func findMeta(r io.Reader) string {
	z := html.NewTokenizer(r)
	for {
		switch z.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			if tok.Data != "meta" {
				continue
			}
			var name, content string
			for _, a := range tok.Attr {
				switch strings.ToLower(a.Key) {
				case "name":
					name = a.Val
				case "content":
					content = a.Val
				}
			}
			if name == MetaName {
				return content
			}
		}
	}
}
