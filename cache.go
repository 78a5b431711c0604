package postengine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sync"
	"time"

	"github.com/silicogen/postengine/content"
	"github.com/silicogen/postengine/search"
)

// ErrNotFound is returned when a requested post does not exist.
var ErrNotFound = errors.New("postengine: not found")

// Snapshot is one immutable load of the content directory. Readers share it
// and must not modify it.
type Snapshot struct {
	Posts      []content.Post
	Tags       []string
	Index      *search.Index
	Collisions []content.SlugCollision
	LoadedAt   time.Time
}

// SnapshotCache serves the current Snapshot and rebuilds it from disk once
// the TTL has passed or after Invalidate.
type SnapshotCache struct {
	mu      sync.RWMutex
	snap    *Snapshot
	ttl     time.Duration
	fsys    fs.FS
	dir     string
	builder content.Builder

	// OnLoad, when set, is called with every freshly built snapshot.
	OnLoad func(*Snapshot)
}

// NewSnapshotCache creates a SnapshotCache reading dir inside fsys.
func NewSnapshotCache(fsys fs.FS, dir string, builder content.Builder, ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{fsys: fsys, dir: dir, builder: builder, ttl: ttl}
}

func (c *SnapshotCache) valid() bool {
	return c.snap != nil && time.Since(c.snap.LoadedAt) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *SnapshotCache) Invalidate() {
	c.mu.Lock()
	c.snap = nil
	c.mu.Unlock()
}

func (c *SnapshotCache) load(ctx context.Context) error {
	if c.valid() {
		return nil
	}
	docs, err := content.LoadDirWithContext(ctx, c.fsys, c.dir)
	if err != nil {
		return err
	}
	posts := c.builder.Build(docs)
	idx, err := search.Build(posts)
	if err != nil {
		return err
	}
	c.snap = &Snapshot{
		Posts:      posts,
		Tags:       content.Tags(posts),
		Index:      idx,
		Collisions: content.DuplicateSlugs(posts),
		LoadedAt:   time.Now(),
	}
	if c.OnLoad != nil {
		c.OnLoad(c.snap)
	}
	return nil
}

// Snapshot returns the current snapshot after ensuring it is fresh.
// It tries a read lock first; only takes a write lock if a reload is needed.
func (c *SnapshotCache) Snapshot(ctx context.Context) (*Snapshot, error) {
	c.mu.RLock()
	if c.valid() {
		snap := c.snap
		c.mu.RUnlock()
		return snap, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(ctx); err != nil {
		return nil, fmt.Errorf("postengine: load snapshot: %w", err)
	}
	return c.snap, nil
}

// Posts returns the catalog, optionally filtered by tag.
func (c *SnapshotCache) Posts(ctx context.Context, tag string) ([]content.Post, error) {
	snap, err := c.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return content.FilterByTag(snap.Posts, tag), nil
}

// Tags returns all unique tags in the catalog.
func (c *SnapshotCache) Tags(ctx context.Context) ([]string, error) {
	snap, err := c.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Tags, nil
}

// Post returns a single post by slug, or ErrNotFound.
func (c *SnapshotCache) Post(ctx context.Context, slug string) (content.Post, error) {
	snap, err := c.Snapshot(ctx)
	if err != nil {
		return content.Post{}, err
	}
	p, ok := content.GetBySlug(snap.Posts, slug)
	if !ok {
		return content.Post{}, ErrNotFound
	}
	return p, nil
}

// Search runs q against the snapshot index and resolves hits to posts.
func (c *SnapshotCache) Search(ctx context.Context, q string) ([]SearchResult, error) {
	snap, err := c.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	hits, err := snap.Index.Search(q, search.DefaultLimit)
	if err != nil {
		return nil, err
	}
	results := make([]SearchResult, 0, len(hits))
	for _, h := range hits {
		p, ok := content.GetBySlug(snap.Posts, h.Slug)
		if !ok {
			continue
		}
		results = append(results, SearchResult{Post: p, Snippet: h.Snippet})
	}
	return results, nil
}
