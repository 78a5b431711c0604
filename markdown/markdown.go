// Package markdown renders post bodies to HTML with goldmark, replacing the
// default output for the node kinds the site styles itself.
package markdown

import (
	"bytes"
	"context"
	"html"
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/a-h/templ"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

// DefaultCodeStyle is the chroma style used for highlighted code blocks.
const DefaultCodeStyle = "onedark"

// overridePriority places the overrides ahead of goldmark's HTML renderer
// (1000) and the GFM extension renderers (500); lower values win.
const overridePriority = 100

// Options configure a Renderer.
type Options struct {
	// CodeStyle names the chroma style for fenced code with a language.
	CodeStyle string
	// PlayURL builds the htmx endpoint that swaps a video embed into its
	// playing state.
	PlayURL func(id string) string
}

// Option mutates Options.
type Option func(*Options)

// WithCodeStyle sets the chroma style name.
func WithCodeStyle(style string) Option {
	return func(o *Options) {
		if style != "" {
			o.CodeStyle = style
		}
	}
}

// WithPlayURL sets the video play endpoint builder.
func WithPlayURL(fn func(id string) string) Option {
	return func(o *Options) {
		if fn != nil {
			o.PlayURL = fn
		}
	}
}

// DefaultPlayURL returns /embed/<id>/play/.
func DefaultPlayURL(id string) string {
	return "/embed/" + url.PathEscape(id) + "/play/"
}

// Renderer converts Markdown to HTML. It holds no per-call state and is safe
// for concurrent use.
type Renderer struct {
	md   goldmark.Markdown
	opts Options
}

// New builds a Renderer with GFM tables, strikethrough, autolinks and task
// lists, automatic heading ids, and the site's node overrides.
func New(opts ...Option) *Renderer {
	o := Options{CodeStyle: DefaultCodeStyle, PlayURL: DefaultPlayURL}
	for _, opt := range opts {
		opt(&o)
	}
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(
			renderer.WithNodeRenderers(util.Prioritized(newOverrides(o), overridePriority)),
		),
	)
	return &Renderer{md: md, opts: o}
}

// Render writes the HTML for source to w.
func (r *Renderer) Render(w io.Writer, source string) error {
	return r.md.Convert([]byte(source), w)
}

// Component returns a templ.Component that renders source.
func (r *Renderer) Component(source string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		if err := r.Render(&buf, source); err != nil {
			return err
		}
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// Video returns the embed widget for id wired to this renderer's play URL.
func (r *Renderer) Video(id string) *VideoEmbed {
	return &VideoEmbed{ID: id, PlayURL: r.opts.PlayURL(id)}
}

var defaultRenderer = sync.OnceValue(func() *Renderer { return New() })

// Markdown returns a templ.Component that renders md as HTML.
func Markdown(content string) templ.Component {
	return defaultRenderer().Component(content)
}

// RenderMarkdown writes the HTML representation of md to buf.
func RenderMarkdown(buf *bytes.Buffer, md string) error {
	return defaultRenderer().Render(buf, md)
}

// SafeURL validates and sanitizes a URL for use in HTML attributes.
func SafeURL(raw string) string {
	val := strings.TrimSpace(html.UnescapeString(raw))
	if val == "" {
		return ""
	}
	if strings.HasPrefix(val, "/") || strings.HasPrefix(val, "#") {
		return html.EscapeString(val)
	}
	parsed, err := url.Parse(val)
	if err != nil {
		return ""
	}
	if parsed.Scheme == "" {
		// relative path such as "other-post/" or "../img.png"
		return html.EscapeString(val)
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https", "mailto", "tel":
		return html.EscapeString(val)
	default:
		return ""
	}
}

func isExternal(href string) bool {
	lower := strings.ToLower(href)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
