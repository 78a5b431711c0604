// Package views provides the default pages for a postengine site. Pages are
// html/template files embedded in the binary and exposed as templ components,
// so a site can replace any of them with its own templ code.
package views

import (
	"context"
	"embed"
	"html/template"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/silicogen/postengine"
	"github.com/silicogen/postengine/content"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcs = template.FuncMap{
	"formatDate":  content.FormatDate,
	"readTime":    postengine.ReadTimeLabel,
	"pathEscape":  postengine.PathEscape,
	"queryEscape": url.QueryEscape,
	"joinTags":    postengine.JoinTags,
	"lower":       strings.ToLower,
	"year":        func() int { return time.Now().Year() },
	"kb":          func(size int) int { return (size + 1023) / 1024 },
}

var templates = template.Must(template.New("views").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))

// page is the data every template receives. The layout reads Site, Meta and
// JSONLD; the page body reads the rest.
type page struct {
	Site   postengine.SiteConfig
	Meta   postengine.PageMeta
	JSONLD []template.JS
	Admin  bool
	CSRF   string

	List      postengine.ListPage
	Post      postengine.PostPage
	Body      template.HTML
	Search    postengine.SearchPage
	Snippets  []template.HTML
	Dashboard postengine.DashboardPage
	Images    []postengine.Image
	ShowError bool
}

func render(name string, data page) templ.Component {
	return templ.FromGoHTML(templates.Lookup(name), data)
}

// Default returns the built-in pages.
func Default() postengine.ViewFuncs {
	return postengine.ViewFuncs{
		Home:           Home,
		PostList:       PostList,
		Post:           Post,
		Search:         Search,
		AdminLogin:     AdminLogin,
		AdminDashboard: AdminDashboard,
		AdminImages:    AdminImages,
		NotFound:       NotFound,
		ServerError:    ServerError,
	}
}

// Home renders the full listing page.
func Home(p postengine.ListPage) templ.Component {
	return render("home.html", page{
		Site:   p.Site,
		Meta:   p.Meta,
		JSONLD: []template.JS{template.JS(postengine.WebsiteJsonLD(p.Site))},
		List:   p,
	})
}

// PostList renders only the listing fragment, for htmx tag filtering.
func PostList(p postengine.ListPage) templ.Component {
	return render("post-list", page{Site: p.Site, List: p})
}

// Post renders a single post. The body component is rendered first and
// inlined as trusted HTML.
func Post(p postengine.PostPage) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var body template.HTML
		if p.Body != nil {
			var err error
			if body, err = templ.ToGoHTML(ctx, p.Body); err != nil {
				return err
			}
		}
		return render("post.html", page{
			Site:   p.Site,
			Meta:   p.Meta,
			JSONLD: []template.JS{template.JS(postengine.BlogPostingJsonLD(p.Post, p.Site))},
			Post:   p,
			Body:   body,
		}).Render(ctx, w)
	})
}

// Search renders the search form and results.
func Search(p postengine.SearchPage) templ.Component {
	snippets := make([]template.HTML, len(p.Results))
	for i, r := range p.Results {
		// Snippets are escaped by the search index apart from <mark>.
		snippets[i] = template.HTML(r.Snippet)
	}
	return render("search.html", page{
		Site:     p.Site,
		Meta:     p.Meta,
		Search:   p,
		Snippets: snippets,
	})
}

// AdminLogin renders the password form.
func AdminLogin(showError bool, csrfToken string) templ.Component {
	return render("admin-login.html", page{
		Meta:      postengine.PageMeta{Title: "Admin"},
		Admin:     true,
		CSRF:      csrfToken,
		ShowError: showError,
	})
}

// AdminDashboard renders the post table, slug collisions and reload button.
func AdminDashboard(p postengine.DashboardPage) templ.Component {
	return render("admin-dashboard.html", page{
		Meta:      postengine.PageMeta{Title: "Dashboard"},
		Admin:     true,
		CSRF:      p.CSRFToken,
		Dashboard: p,
	})
}

// AdminImages renders the image manager. Upload and delete swap it in place.
func AdminImages(images []postengine.Image, csrfToken string) templ.Component {
	return render("admin-images.html", page{
		Meta:   postengine.PageMeta{Title: "Images"},
		Admin:  true,
		CSRF:   csrfToken,
		Images: images,
	})
}

// NotFound renders the 404 page.
func NotFound() templ.Component {
	return render("not-found.html", page{Meta: postengine.PageMeta{Title: "Not found"}})
}

// ServerError renders the 500 page.
func ServerError() templ.Component {
	return render("server-error.html", page{Meta: postengine.PageMeta{Title: "Something went wrong"}})
}
