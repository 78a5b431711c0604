package postengine

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/a-h/templ"
)

const helloPost = `---
title: Hello
tags: [go, intro]
description: The first post
---
Hello gopher, welcome.

https://www.youtube.com/watch?v=dQw4w9WgXcQ

## Next
`

const secondPost = `---
title: Second
tags: [web]
---
Plain text only.
`

func text(format string, args ...any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, format, args...)
		return err
	})
}

func stubViews() ViewFuncs {
	return ViewFuncs{
		Home:     func(p ListPage) templ.Component { return text("home:%d", len(p.Posts)) },
		PostList: func(p ListPage) templ.Component { return text("list:%d:%s", len(p.Posts), p.ActiveTag) },
		Post: func(p PostPage) templ.Component {
			return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
				fmt.Fprintf(w, "post:%s:related=%d\n", p.Post.Slug, len(p.Related))
				return p.Body.Render(ctx, w)
			})
		},
		Search: func(p SearchPage) templ.Component {
			slugs := make([]string, len(p.Results))
			for i, r := range p.Results {
				slugs[i] = r.Post.Slug
			}
			return text("search:%s:%s", p.Query, strings.Join(slugs, ","))
		},
		AdminLogin:     func(showError bool, _ string) templ.Component { return text("login:%t", showError) },
		AdminDashboard: func(p DashboardPage) templ.Component { return text("dashboard:%d", len(p.Rows)) },
		AdminImages: func(images []Image, _ string) templ.Component {
			var b strings.Builder
			fmt.Fprintf(&b, "images:%d", len(images))
			for _, img := range images {
				fmt.Fprintf(&b, " %s=%s", img.Filename, strings.Join(img.UsedBy, ","))
			}
			return text("%s", b.String())
		},
		NotFound:       func() templ.Component { return text("notfound") },
		ServerError:    func() templ.Component { return text("servererror") },
	}
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	return newTestAppWith(t, fstest.MapFS{
		"content/blog/2024-01-02_Hello.md":  {Data: []byte(helloPost)},
		"content/blog/2024-02-03_Second.md": {Data: []byte(secondPost)},
		"content/blog/notes.txt":            {Data: []byte("ignored")},
	})
}

func newTestAppWith(t *testing.T, fsys fstest.MapFS) *App {
	t.Helper()
	dir := t.TempDir()
	a := New(SiteConfig{
		Name:                  "Test",
		URL:                   "https://example.com",
		AdminPassword:         "secret",
		SessionSecret:         "session-secret",
		DatabasePath:          filepath.Join(dir, "site.db"),
		AnalyticsEnabled:      true,
		AnalyticsDatabasePath: filepath.Join(dir, "analytics.db"),
		LogLevel:              "off",
	}, stubViews(), WithContentFS(fsys), WithStaticDir(dir))
	if err := a.Setup(); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

// adminHeader signs in through the login form and returns the headers an
// authenticated htmx request carries.
func adminHeader(t *testing.T, a *App) http.Header {
	t.Helper()
	var csrf *http.Cookie
	for _, ck := range do(a, http.MethodGet, "/admin/", nil).Result().Cookies() {
		if ck.Name == "_csrf" {
			csrf = ck
		}
	}
	if csrf == nil {
		t.Fatal("GET /admin/ set no _csrf cookie")
	}

	req := httptest.NewRequest(http.MethodPost, "/admin/login/", strings.NewReader("password=secret"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-CSRF-Token", csrf.Value)
	req.Header.Set("Sec-Fetch-Site", "same-origin")
	req.AddCookie(csrf)
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("login status = %d, want %d: %s", rec.Code, http.StatusSeeOther, rec.Body)
	}

	cookies := []string{csrf.Name + "=" + csrf.Value}
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == sessionName {
			cookies = append(cookies, ck.Name+"="+ck.Value)
		}
	}
	if len(cookies) != 2 {
		t.Fatal("login set no session cookie")
	}
	h := http.Header{}
	h.Set("Cookie", strings.Join(cookies, "; "))
	h.Set("X-CSRF-Token", csrf.Value)
	h.Set("Sec-Fetch-Site", "same-origin")
	return h
}

func do(a *App, method, target string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) Firefox/120.0")
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	return rec
}

func TestPublicRoutes(t *testing.T) {
	a := newTestApp(t)

	tests := []struct {
		name       string
		target     string
		header     http.Header
		wantStatus int
		wantBody   []string
	}{
		{"home", "/", nil, http.StatusOK, []string{"home:2"}},
		{"listing", "/blog/", nil, http.StatusOK, []string{"home:2"}},
		{"tag partial", "/blog/?tag=GO&partial=list", http.Header{"Hx-Request": {"true"}}, http.StatusOK, []string{"list:1:GO"}},
		{"partial needs htmx", "/blog/?partial=list", nil, http.StatusOK, []string{"home:2"}},
		{"post", "/blog/hello/", nil, http.StatusOK, []string{
			"post:hello:related=0",
			`data-video-id="dQw4w9WgXcQ"`,
			`data-state="ready"`,
			`<h2 class="post-h2" id="next">Next</h2>`,
		}},
		{"play", "/embed/dQw4w9WgXcQ/play/", nil, http.StatusOK, []string{`data-state="playing"`, "<iframe"}},
		{"play bad id", "/embed/short/play/", nil, http.StatusNotFound, []string{"notfound"}},
		{"search", "/search/?q=gopher", nil, http.StatusOK, []string{"search:gopher:hello"}},
		{"search blank", "/search/", nil, http.StatusOK, []string{"search::"}},
		{"feed", "/feed.xml", nil, http.StatusOK, []string{"<rss", "<title>Hello</title>", "https://example.com/blog/hello/"}},
		{"sitemap", "/sitemap.xml", nil, http.StatusOK, []string{"https://example.com/blog/second/"}},
		{"robots", "/robots.txt", nil, http.StatusOK, []string{"Disallow: /admin/", "Sitemap: https://example.com/sitemap.xml"}},
		{"site css", "/public/site.css", nil, http.StatusOK, []string{".video-embed"}},
		{"unknown route", "/nope/", nil, http.StatusNotFound, []string{"notfound"}},
		{"admin login", "/admin/", nil, http.StatusOK, []string{"login:false"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(a, http.MethodGet, tt.target, tt.header)
			if rec.Code != tt.wantStatus {
				t.Fatalf("GET %s status = %d, want %d", tt.target, rec.Code, tt.wantStatus)
			}
			for _, want := range tt.wantBody {
				if !strings.Contains(rec.Body.String(), want) {
					t.Errorf("GET %s body missing %q\n%s", tt.target, want, rec.Body.String())
				}
			}
		})
	}
}

func TestUnknownSlugRedirects(t *testing.T) {
	a := newTestApp(t)
	rec := do(a, http.MethodGet, "/blog/missing/", nil)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/blog/" {
		t.Errorf("Location = %q, want %q", loc, "/blog/")
	}
}

func TestCacheControl(t *testing.T) {
	a := newTestApp(t)
	tests := []struct {
		target string
		want   string
	}{
		{"/blog/hello/", "public, max-age=3600"},
		{"/embed/dQw4w9WgXcQ/play/", "public, max-age=86400"},
		{"/search/?q=go", "no-store"},
		{"/admin/", "no-store"},
	}
	for _, tt := range tests {
		rec := do(a, http.MethodGet, tt.target, nil)
		if got := rec.Header().Get("Cache-Control"); got != tt.want {
			t.Errorf("GET %s Cache-Control = %q, want %q", tt.target, got, tt.want)
		}
	}
}

func TestRecordView(t *testing.T) {
	a := newTestApp(t)

	do(a, http.MethodGet, "/blog/hello/", nil)
	do(a, http.MethodGet, "/blog/hello/", nil) // same visitor, same day
	do(a, http.MethodGet, "/blog/hello/", http.Header{"User-Agent": {"Googlebot/2.1"}})
	do(a, http.MethodGet, "/blog/hello/", http.Header{"Dnt": {"1"}, "User-Agent": {"Mozilla/5.0 Safari/605.1"}})
	do(a, http.MethodGet, "/blog/missing/", nil)

	counts, err := a.analyticsStore.ViewCounts(context.Background(), 1)
	if err != nil {
		t.Fatalf("ViewCounts failed: %v", err)
	}
	if counts["hello"] != 1 || len(counts) != 1 {
		t.Errorf("ViewCounts = %v, want map[hello:1]", counts)
	}
}

func TestSearchRateLimit(t *testing.T) {
	a := newTestApp(t)
	a.searchLimiter.Stop()
	a.searchLimiter = NewRateLimiter(2, time.Minute)

	for i := 0; i < 2; i++ {
		if rec := do(a, http.MethodGet, "/search/?q=go", nil); rec.Code != http.StatusOK {
			t.Fatalf("search %d status = %d, want 200", i, rec.Code)
		}
	}
	if rec := do(a, http.MethodGet, "/search/?q=go", nil); rec.Code != http.StatusTooManyRequests {
		t.Errorf("third search status = %d, want %d", rec.Code, http.StatusTooManyRequests)
	}
}

func TestSetupRejectsInvalidConfig(t *testing.T) {
	a := New(SiteConfig{FrontmatterMode: "toml"}, stubViews())
	err := a.Setup()
	if err == nil {
		t.Fatal("Setup should fail without secrets and with an unknown frontmatter mode")
	}
	for _, want := range []string{"AdminPassword", "SessionSecret", `"toml"`} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}
