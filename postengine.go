// Package postengine serves a blog whose posts are Markdown files on disk.
// It loads the content directory into an immutable snapshot, renders posts
// with the markdown package, and adds search, RSS, a sitemap, view counts and
// a small admin area.
//
// Pages are rendered through the ViewFuncs struct, so sites can supply their
// own templ components; the views package provides defaults.
package postengine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/silicogen/postengine/analytics"
	"github.com/silicogen/postengine/content"
	"github.com/silicogen/postengine/markdown"
)

// ViewFuncs holds the templ components the app calls when rendering pages.
type ViewFuncs struct {
	Home           func(page ListPage) templ.Component
	PostList       func(page ListPage) templ.Component
	Post           func(page PostPage) templ.Component
	Search         func(page SearchPage) templ.Component
	AdminLogin     func(showError bool, csrfToken string) templ.Component
	AdminDashboard func(page DashboardPage) templ.Component
	AdminImages    func(images []Image, csrfToken string) templ.Component
	NotFound       func() templ.Component
	ServerError    func() templ.Component
}

// App is the central application. It wires together the snapshot cache,
// renderer, stores, handlers, middleware, and views.
type App struct {
	Config   SiteConfig
	Echo     *echo.Echo
	Store    *Store
	Cache    *SnapshotCache
	Markdown *markdown.Renderer
	Views    ViewFuncs

	loginLimiter   *RateLimiter
	searchLimiter  *RateLimiter
	analyticsStore *analytics.Store
	stopCleanup    func()
	stopWatch      func()
	customRoutes   []func(*App)
	staticDir      string
	contentFS      fs.FS
}

// New creates a new App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     views,
		staticDir: "public",
	}
	a.Echo.HideBanner = true

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Setup opens the stores, loads the first content snapshot, and registers
// middleware and routes. Start calls it; tests call it directly.
func (a *App) Setup() error {
	if err := a.Config.Validate(); err != nil {
		return err
	}
	if lvl, ok := parseLogLevel(a.Config.LogLevel); ok {
		a.Echo.Logger.SetLevel(lvl)
	}

	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("postengine: init store: %w", err)
	}
	a.Store = store

	a.Markdown = markdown.New(markdown.WithCodeStyle(a.Config.CodeStyle))

	parse, err := content.NewParser(a.Config.FrontmatterMode, func(err error) {
		a.Echo.Logger.Warnf("frontmatter: %v; using tolerant parser", err)
	})
	if err != nil {
		return fmt.Errorf("postengine: %w", err)
	}
	fsys, dir := a.contentFS, a.Config.ContentDir
	if fsys == nil {
		fsys, dir = os.DirFS(a.Config.ContentDir), "."
	}
	a.Cache = NewSnapshotCache(fsys, dir, content.Builder{
		FallbackAuthor: a.Config.FallbackAuthor,
		Parse:          parse,
	}, a.Config.SnapshotTTL)
	a.Cache.OnLoad = a.logSnapshot
	if _, err := a.Cache.Snapshot(context.Background()); err != nil {
		return err
	}

	if a.Config.WatchContent && a.contentFS == nil {
		stop, err := a.watchContent(a.Config.ContentDir)
		if err != nil {
			return fmt.Errorf("postengine: watch content: %w", err)
		}
		a.stopWatch = stop
	}

	a.loginLimiter = NewRateLimiter(5, time.Minute)
	a.searchLimiter = NewRateLimiter(30, time.Minute)

	if a.Config.AnalyticsEnabled {
		analyticsStore, err := analytics.NewStore(a.Config.AnalyticsDatabasePath)
		if err != nil {
			return fmt.Errorf("postengine: init analytics: %w", err)
		}
		a.analyticsStore = analyticsStore
		a.stopCleanup = analyticsStore.StartCleanupScheduler(365, 24*time.Hour, a.Echo.Logger)
	}

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

// Start sets the app up and serves HTTP until the server is closed.
func (a *App) Start() error {
	if err := a.Setup(); err != nil {
		return err
	}
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// logSnapshot reports slug collisions; the first post in catalog order wins.
func (a *App) logSnapshot(snap *Snapshot) {
	a.Echo.Logger.Infof("loaded %d posts, %d tags", len(snap.Posts), len(snap.Tags))
	for _, col := range snap.Collisions {
		a.Echo.Logger.Warnf("slug %q is used by %d files %v; serving %s", col.Slug, len(col.Sources), col.Sources, col.Sources[0])
	}
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Framework stylesheet, then the user's static assets.
	e.GET("/public/site.css", a.handleSiteCSS)
	e.Static("/public", a.staticDir)
	e.GET("/favicon.svg", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobots)

	// Public routes
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/", a.handleHome)
	e.GET("/blog/", a.handleHome)
	e.GET("/blog/:slug/", a.handlePost)
	e.GET("/embed/:id/play/", a.handleVideoPlay)
	e.GET("/search/", a.handleSearch)

	// Admin routes
	e.GET("/admin/", a.handleAdmin)
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", handleAdminLogout)
	e.POST("/admin/reload/", a.handleAdminReload)
	e.GET("/admin/images/", a.handleImageList)
	e.POST("/admin/images/upload/", a.handleImageUpload)
	e.DELETE("/admin/images/:filename/", a.handleImageDelete)

	if a.analyticsStore != nil {
		analytics.NewHandler(a.analyticsStore).RegisterRoutes(e, requireAdmin)
	}
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.stopCleanup != nil {
		a.stopCleanup()
	}
	if a.stopWatch != nil {
		a.stopWatch()
	}
	if a.loginLimiter != nil {
		a.loginLimiter.Stop()
	}
	if a.searchLimiter != nil {
		a.searchLimiter.Stop()
	}
	var errs []error
	if a.Store != nil {
		errs = append(errs, a.Store.Close())
	}
	if a.analyticsStore != nil {
		errs = append(errs, a.analyticsStore.Close())
	}
	return errors.Join(errs...)
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
// This is a convenience function for use in scaffolded main.go files.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or fatally exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("postengine: required environment variable %s is not set", key)
	}
	return v
}
