package postengine

import (
	"time"

	"github.com/a-h/templ"

	"github.com/silicogen/postengine/content"
)

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string
}

// ListPage is the data for the post listing.
type ListPage struct {
	Site      SiteConfig
	Meta      PageMeta
	Posts     []content.Post
	Tags      []string
	ActiveTag string
}

// PostPage is the data for a single post.
type PostPage struct {
	Site    SiteConfig
	Meta    PageMeta
	Post    content.Post
	Body    templ.Component
	Related []content.Post
}

// SearchResult pairs a post with a highlighted HTML snippet.
type SearchResult struct {
	Post    content.Post
	Snippet string
}

// SearchPage is the data for the search page.
type SearchPage struct {
	Site    SiteConfig
	Meta    PageMeta
	Query   string
	Results []SearchResult
}

// DashboardRow is one post on the admin dashboard.
type DashboardRow struct {
	Post  content.Post
	Views int
}

// DashboardPage is the data for the admin dashboard.
type DashboardPage struct {
	Rows             []DashboardRow
	Collisions       []content.SlugCollision
	LoadedAt         time.Time
	AnalyticsEnabled bool
	Message          string
	CSRFToken        string
}

// Image is an uploaded image tracked in the Store. UsedBy is not stored; it
// lists the slugs of the current posts that link to the file.
type Image struct {
	Filename     string
	OriginalName string
	Width        int
	Height       int
	Size         int
	UploadedAt   string
	UsedBy       []string
}
