package client

import (
	"context"
	"log/slog"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Status is the lifecycle of a cache entry
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Fetcher performs the network call for one key and returns the tags
// derived from the result
type Fetcher func(ctx context.Context) (any, []Tag, error)

type entry struct {
	value    any
	err      error
	base     []Tag
	tags     []Tag
	status   Status
	stale    bool
	gen      uint64
	fetch    Fetcher
	watchers map[int]func()
}

func (e *entry) providesAny(tags []Tag) bool {
	for _, inv := range tags {
		for _, t := range e.base {
			if inv.Matches(t) {
				return true
			}
		}
		for _, t := range e.tags {
			if inv.Matches(t) {
				return true
			}
		}
	}
	return false
}

// Cache is a tag-invalidated result cache shared by every view.
// Identical keys share one in-flight call. Invalidation is its only writer
// besides fetch completion; cached payloads are never edited in place.
// Generations come from one counter that only grows, so a recreated key
// never joins a flight started for an evicted one.
type Cache struct {
	mu        sync.Mutex
	entries   map[string]*entry
	group     singleflight.Group
	nextWatch int
	seq       uint64
	logger    *slog.Logger
}

// NewCache creates an empty cache
func NewCache(logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		entries: make(map[string]*entry),
		logger:  logger,
	}
}

// Query returns the cached value for key or fetches it. base lists the
// tags the key holds regardless of its result. A caller whose ctx ends
// stops waiting; the shared fetch still completes and fills the cache.
func (c *Cache) Query(ctx context.Context, key string, base []Tag, fetch Fetcher) (any, error) {
	c.mu.Lock()
	e := c.entries[key]
	if e != nil && e.status == StatusReady && !e.stale {
		v := e.value
		c.mu.Unlock()
		return v, nil
	}
	if e == nil {
		e = c.newEntry(base)
		c.entries[key] = e
	}
	e.fetch = fetch
	if e.status != StatusReady {
		e.status = StatusLoading
	}
	gen := e.gen
	c.mu.Unlock()

	ch := c.group.DoChan(flightKey(key, gen), func() (any, error) {
		return c.run(context.WithoutCancel(ctx), key, gen, fetch)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.Val, res.Err
	}
}

// Watch registers onChange for key. onChange runs each time the entry
// settles after a fetch. The returned function removes the watcher.
func (c *Cache) Watch(key string, base []Tag, fetch Fetcher, onChange func()) func() {
	c.mu.Lock()
	e := c.entries[key]
	if e == nil {
		e = c.newEntry(base)
		c.entries[key] = e
	}
	if e.fetch == nil {
		e.fetch = fetch
	}
	id := c.nextWatch
	c.nextWatch++
	e.watchers[id] = onChange
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		cur := c.entries[key]
		if cur == nil {
			return
		}
		delete(cur.watchers, id)
		if len(cur.watchers) == 0 && cur.stale {
			delete(c.entries, key)
		}
	}
}

// Invalidate marks every entry providing one of tags stale. Watched
// entries are refetched in the background; the rest are evicted.
func (c *Cache) Invalidate(tags ...Tag) {
	type job struct {
		key   string
		gen   uint64
		fetch Fetcher
	}

	c.mu.Lock()
	var jobs []job
	for key, e := range c.entries {
		if !e.providesAny(tags) {
			continue
		}
		c.seq++
		e.gen = c.seq
		if len(e.watchers) == 0 || e.fetch == nil {
			delete(c.entries, key)
			continue
		}
		e.stale = true
		jobs = append(jobs, job{key: key, gen: e.gen, fetch: e.fetch})
	}
	c.mu.Unlock()

	c.logger.Debug("cache invalidated",
		slog.Any("tags", tagStrings(tags)),
		slog.Int("refetching", len(jobs)))

	for _, j := range jobs {
		go c.group.Do(flightKey(j.key, j.gen), func() (any, error) {
			return c.run(context.Background(), j.key, j.gen, j.fetch)
		})
	}
}

// newEntry must be called with mu held
func (c *Cache) newEntry(base []Tag) *entry {
	c.seq++
	return &entry{base: base, gen: c.seq, watchers: make(map[int]func())}
}

// Status reports the lifecycle state of key
func (c *Cache) Status(key string) Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		return e.status
	}
	return StatusIdle
}

// Stale reports whether key is cached but awaiting a refetch
func (c *Cache) Stale(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	return ok && e.stale
}

// Len returns the number of cached keys
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// run performs fetch and stores the result if no newer invalidation
// superseded it
func (c *Cache) run(ctx context.Context, key string, gen uint64, fetch Fetcher) (any, error) {
	value, tags, err := fetch(ctx)

	c.mu.Lock()
	e := c.entries[key]
	if e == nil || e.gen != gen {
		c.mu.Unlock()
		return value, err
	}
	if err != nil {
		e.err = err
		e.status = StatusFailed
		e.stale = false
	} else {
		e.value = value
		e.tags = tags
		e.err = nil
		e.status = StatusReady
		e.stale = false
	}
	watchers := make([]func(), 0, len(e.watchers))
	for _, w := range e.watchers {
		watchers = append(watchers, w)
	}
	if err != nil && len(e.watchers) == 0 {
		delete(c.entries, key)
	}
	c.mu.Unlock()

	for _, w := range watchers {
		w()
	}
	return value, err
}

func flightKey(key string, gen uint64) string {
	return key + "#" + strconv.FormatUint(gen, 10)
}

func tagStrings(tags []Tag) []string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = t.String()
	}
	return out
}
