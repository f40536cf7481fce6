package basepath

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		raw    string
		want   string
		wantOK bool
	}{
		{"/fakesmtp/", "/fakesmtp", true},
		{"/fakesmtp", "/fakesmtp", true},
		{"/", "", false},
		{"", "", false},
		{"  /mail/ ", "/mail", true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := Normalize(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestResolver_MemoizesFirstResult(t *testing.T) {
	calls := 0
	values := []string{"/first/", "/second"}
	r := New(func() string {
		v := values[calls]
		calls++
		return v
	})

	p, ok := r.Resolve()
	assert.True(t, ok)
	assert.Equal(t, "/first", p)

	p, _ = r.Resolve()
	assert.Equal(t, "/first", p)
	assert.Equal(t, "/first", r.Prefix())
	assert.Equal(t, 1, calls)
}

func TestResolver_AbsentDefaultsToEmpty(t *testing.T) {
	r := New(Static(""))

	_, ok := r.Resolve()
	assert.False(t, ok)
	assert.Equal(t, "", r.Prefix())

	var nilSource Resolver
	assert.Equal(t, "", nilSource.Prefix())
}

func TestMetaTag_ReadsMarker(t *testing.T) {
	page := `<!doctype html><html><head>
		<meta charset="utf-8">
		<meta name="base-path" content="/fakesmtp/">
	</head><body></body></html>`

	r := New(MetaTag(strings.NewReader(page)))
	assert.Equal(t, "/fakesmtp", r.Prefix())
}

func TestMetaTag_MissingMarker(t *testing.T) {
	r := New(MetaTag(strings.NewReader(`<html><head><title>x</title></head></html>`)))

	_, ok := r.Resolve()
	assert.False(t, ok)
}

func indexServer(t *testing.T, status int, page string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		fmt.Fprint(w, page)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestPage_FetchesMarkerOnce(t *testing.T) {
	srv, hits := indexServer(t, http.StatusOK, `<html><head><meta name="base-path" content="/fakesmtp/"></head></html>`)

	r := New(Page(srv.Client(), srv.URL+"/"))
	assert.Equal(t, int32(0), hits.Load())

	assert.Equal(t, "/fakesmtp", r.Prefix())
	assert.Equal(t, "/fakesmtp", r.Prefix())
	assert.Equal(t, int32(1), hits.Load())
}

func TestPage_FailuresAreAbsent(t *testing.T) {
	srv, _ := indexServer(t, http.StatusInternalServerError, `<meta name="base-path" content="/fakesmtp">`)

	_, ok := New(Page(srv.Client(), srv.URL+"/")).Resolve()
	assert.False(t, ok)

	_, ok = New(Page(nil, "http://127.0.0.1:0/")).Resolve()
	assert.False(t, ok)
}

func TestConfigured(t *testing.T) {
	srv, hits := indexServer(t, http.StatusOK, `<meta name="base-path" content="/from-page">`)

	assert.Equal(t, "/explicit", New(Configured("/explicit/", srv.Client(), srv.URL)).Prefix())
	assert.Equal(t, int32(0), hits.Load())

	assert.Equal(t, "/from-page", New(Configured("", srv.Client(), srv.URL+"/")).Prefix())
	assert.Equal(t, int32(1), hits.Load())
}
