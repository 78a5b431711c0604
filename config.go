package postengine

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/labstack/gommon/log"

	"github.com/silicogen/postengine/content"
	"github.com/silicogen/postengine/markdown"
)

// SiteConfig holds all configuration for a postengine site.
type SiteConfig struct {
	Name        string // Site name (default "Blog")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Site description for RSS and meta tags
	Author      string // Author name for JSON-LD

	ContentDir      string // Directory of Markdown posts (default "content/blog")
	FallbackAuthor  string // Author of posts without one (default content.DefaultAuthor)
	FrontmatterMode string // "tolerant" or "yaml" (default "tolerant")
	CodeStyle       string // Chroma style for code blocks (default "onedark")

	Addr         string // Listen address (default ":3000")
	DatabasePath string // SQLite path for image metadata (default "data/site.db")

	AnalyticsEnabled      bool   // Count post views
	AnalyticsDatabasePath string // Analytics SQLite path (default "data/analytics.db")

	AdminPassword string // Required: admin login password
	SessionSecret string // Required: session encryption secret
	CookieSecure  bool   // Set true for HTTPS

	SnapshotTTL  time.Duration // How long a content snapshot is served before reloading (default 5min)
	WatchContent bool          // Reload as soon as files under ContentDir change (ignored with WithContentFS)
	LogLevel     string        // debug, info, warn, error, off (default "info")
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.ContentDir == "" {
		c.ContentDir = "content/blog"
	}
	if c.FallbackAuthor == "" {
		c.FallbackAuthor = content.DefaultAuthor
	}
	if c.FrontmatterMode == "" {
		c.FrontmatterMode = content.ModeTolerant
	}
	if c.CodeStyle == "" {
		c.CodeStyle = markdown.DefaultCodeStyle
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/site.db"
	}
	if c.AnalyticsDatabasePath == "" {
		c.AnalyticsDatabasePath = "data/analytics.db"
	}
	if c.SnapshotTTL == 0 {
		c.SnapshotTTL = 5 * time.Minute
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate reports every missing or malformed setting at once.
func (c SiteConfig) Validate() error {
	var errs []error
	if c.AdminPassword == "" {
		errs = append(errs, errors.New("AdminPassword is required"))
	}
	if c.SessionSecret == "" {
		errs = append(errs, errors.New("SessionSecret is required"))
	}
	switch c.FrontmatterMode {
	case "", content.ModeTolerant, content.ModeYAML:
	default:
		errs = append(errs, fmt.Errorf("unknown FrontmatterMode %q", c.FrontmatterMode))
	}
	if _, ok := parseLogLevel(c.LogLevel); !ok {
		errs = append(errs, fmt.Errorf("unknown LogLevel %q", c.LogLevel))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("postengine: invalid config: %w", err)
	}
	return nil
}

func parseLogLevel(level string) (log.Lvl, bool) {
	switch strings.ToLower(level) {
	case "debug":
		return log.DEBUG, true
	case "", "info":
		return log.INFO, true
	case "warn", "warning":
		return log.WARN, true
	case "error":
		return log.ERROR, true
	case "off":
		return log.OFF, true
	}
	return log.INFO, false
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the Echo instance before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithContentFS reads posts from fsys instead of the ContentDir on disk.
// ContentDir is then resolved inside fsys.
func WithContentFS(fsys fs.FS) Option {
	return func(a *App) {
		a.contentFS = fsys
	}
}
