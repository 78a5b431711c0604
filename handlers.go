package postengine

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/silicogen/postengine/analytics"
	"github.com/silicogen/postengine/content"
)

func isHTMX(c echo.Context) bool {
	return c.Request().Header.Get("HX-Request") == "true"
}

func (a *App) handleHome(c echo.Context) error {
	ctx := c.Request().Context()
	tag := c.QueryParam("tag")
	posts, err := a.Cache.Posts(ctx, tag)
	if err != nil {
		return err
	}
	tags, err := a.Cache.Tags(ctx)
	if err != nil {
		return err
	}
	page := ListPage{
		Site:      a.Config,
		Posts:     posts,
		Tags:      tags,
		ActiveTag: tag,
		Meta: PageMeta{
			Title:       a.Config.Name,
			Description: a.Config.Description,
			URL:         BuildURL(a.Config.URL, "blog"),
			OGType:      "website",
		},
	}
	if isHTMX(c) && c.QueryParam("partial") == "list" {
		return Render(c, a.Views.PostList(page))
	}
	return Render(c, a.Views.Home(page))
}

func (a *App) handlePost(c echo.Context) error {
	ctx := c.Request().Context()
	slug := c.Param("slug")
	post, err := a.Cache.Post(ctx, slug)
	if errors.Is(err, ErrNotFound) {
		return c.Redirect(http.StatusSeeOther, "/blog/")
	}
	if err != nil {
		return err
	}
	posts, err := a.Cache.Posts(ctx, "")
	if err != nil {
		return err
	}
	a.recordView(c, post.Slug)

	return Render(c, a.Views.Post(PostPage{
		Site:    a.Config,
		Post:    post,
		Body:    a.Markdown.Component(post.Content),
		Related: content.Related(post, posts),
		Meta: PageMeta{
			Title:       post.Title,
			Description: post.Description,
			URL:         BuildURL(a.Config.URL, "blog", post.Slug),
			OGType:      "article",
			Image:       post.Thumbnail,
		},
	}))
}

// recordView counts a human page view. Failures are logged, never shown.
func (a *App) recordView(c echo.Context, slug string) {
	if a.analyticsStore == nil || c.Request().Header.Get("DNT") == "1" {
		return
	}
	ua := c.Request().UserAgent()
	if analytics.IsBot(ua) {
		return
	}
	if err := a.analyticsStore.RecordView(c.Request().Context(), slug, c.RealIP(), ua); err != nil {
		c.Logger().Errorf("record view: %v", err)
	}
}

// handleVideoPlay answers the htmx request from a Ready video embed with the
// same widget in its Playing state.
func (a *App) handleVideoPlay(c echo.Context) error {
	id := c.Param("id")
	if !content.IsVideoID(id) {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	v := a.Markdown.Video(id)
	v.Play()
	return Render(c, v.Component())
}

func (a *App) handleSearch(c echo.Context) error {
	if !a.searchLimiter.Allow(c.RealIP()) {
		return c.String(http.StatusTooManyRequests, "Too many searches. Try again later.")
	}
	q := strings.TrimSpace(c.QueryParam("q"))
	results, err := a.Cache.Search(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return Render(c, a.Views.Search(SearchPage{
		Site:    a.Config,
		Query:   q,
		Results: results,
		Meta: PageMeta{
			Title:  "Search · " + a.Config.Name,
			URL:    BuildURL(a.Config.URL, "search"),
			OGType: "website",
		},
	}))
}

func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.Cache.Posts(c.Request().Context(), "")
	if err != nil {
		return err
	}
	return a.renderSitemap(c, posts)
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Cache.Posts(c.Request().Context(), "")
	if err != nil {
		return err
	}
	return a.renderRSS(c, posts)
}

func (a *App) handleFavicon(c echo.Context) error {
	return c.File(a.staticDir + "/favicon.svg")
}

func (a *App) handleRobots(c echo.Context) error {
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	b.WriteString("Disallow: /admin/\n")
	b.WriteString("Disallow: /search/\n")
	b.WriteString("Disallow: /embed/\n")
	b.WriteString("\nSitemap: " + strings.TrimRight(a.Config.URL, "/") + "/sitemap.xml\n")
	return c.String(http.StatusOK, b.String())
}

func (a *App) handleSiteCSS(c echo.Context) error {
	data, err := EmbeddedAssets.ReadFile("embedded/site.css")
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "text/css; charset=utf-8", data)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	ok := errors.As(err, &he)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		_ = RenderStatus(c, code, a.Views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
