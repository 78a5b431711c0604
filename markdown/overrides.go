package markdown

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/silicogen/postengine/content"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// overrides is a renderer.NodeRenderer built from a table of per-kind
// functions. Kinds missing from the table fall through to goldmark.
type overrides struct {
	opts      Options
	highlight renderer.NodeRendererFunc
	funcs     map[ast.NodeKind]renderer.NodeRendererFunc
}

func newOverrides(opts Options) *overrides {
	o := &overrides{opts: opts, highlight: highlighter(opts.CodeStyle)}
	o.funcs = map[ast.NodeKind]renderer.NodeRendererFunc{
		ast.KindParagraph:       o.renderParagraph,
		ast.KindFencedCodeBlock: o.renderFencedCode,
		ast.KindCodeBlock:       renderCodeBlock,
		ast.KindCodeSpan:        renderCodeSpan,
		ast.KindLink:            renderLink,
		ast.KindAutoLink:        renderAutoLink,
		ast.KindHeading:         renderHeading,
		ast.KindBlockquote:      renderBlockquote,
		ast.KindThematicBreak:   renderThematicBreak,
		east.KindTable:          renderTable,
		east.KindTableCell:      renderTableCell,
	}
	return o
}

// RegisterFuncs implements renderer.NodeRenderer.
func (o *overrides) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	for kind, fn := range o.funcs {
		reg.Register(kind, fn)
	}
}

// funcCapture records registrations instead of installing them, which lets
// us borrow goldmark-highlighting's fenced code function.
type funcCapture map[ast.NodeKind]renderer.NodeRendererFunc

func (c funcCapture) Register(kind ast.NodeKind, fn renderer.NodeRendererFunc) {
	c[kind] = fn
}

func highlighter(style string) renderer.NodeRendererFunc {
	c := funcCapture{}
	highlighting.NewHTMLRenderer(
		highlighting.WithStyle(style),
		highlighting.WithWrapperRenderer(codeWrapper),
	).RegisterFuncs(c)
	return c[ast.KindFencedCodeBlock]
}

// codeWrapper surrounds highlighted code with a language badge.
func codeWrapper(w util.BufWriter, ctx highlighting.CodeBlockContext, entering bool) {
	if !entering {
		_, _ = w.WriteString("</div>\n")
		return
	}
	lang, _ := ctx.Language()
	escaped := string(util.EscapeHTML(lang))
	_, _ = w.WriteString(`<div class="code-block-wrapper"><span class="code-lang code-lang-` + escaped + `">` + escaped + `</span>`)
}

func (o *overrides) renderParagraph(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if id, ok := paragraphVideoID(n, source); ok {
		if entering {
			v := &VideoEmbed{ID: id, PlayURL: o.opts.PlayURL(id)}
			if err := v.Render(w); err != nil {
				return ast.WalkStop, err
			}
		}
		return ast.WalkSkipChildren, nil
	}
	if entering {
		_, _ = w.WriteString("<p")
		if n.Attributes() != nil {
			html.RenderAttributes(w, n, html.ParagraphAttributeFilter)
		}
		_ = w.WriteByte('>')
	} else {
		_, _ = w.WriteString("</p>\n")
	}
	return ast.WalkContinue, nil
}

// paragraphVideoID reports whether a paragraph is nothing but a YouTube
// link. Either a single link or autolink carries the URL, or the paragraph
// is plain text that trims to one URL token. Adjacent text nodes are joined
// because the parser may split a single run of text.
func paragraphVideoID(n ast.Node, source []byte) (string, bool) {
	first := n.FirstChild()
	if first == nil {
		return "", false
	}
	if first == n.LastChild() {
		switch c := first.(type) {
		case *ast.Link:
			return content.VideoIDFromURL(string(c.Destination))
		case *ast.AutoLink:
			return content.VideoIDFromURL(string(c.URL(source)))
		}
	}
	var b strings.Builder
	for c := first; c != nil; c = c.NextSibling() {
		t, ok := c.(*ast.Text)
		if !ok {
			return "", false
		}
		b.Write(t.Segment.Value(source))
		if t.SoftLineBreak() || t.HardLineBreak() {
			b.WriteByte('\n')
		}
	}
	token := strings.TrimSpace(b.String())
	if token == "" || strings.ContainsAny(token, " \t\r\n") {
		return "", false
	}
	return content.VideoIDFromURL(token)
}

func (o *overrides) renderFencedCode(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if o.highlight != nil && n.(*ast.FencedCodeBlock).Language(source) != nil {
		return o.highlight(w, source, n, entering)
	}
	return renderCodeBlock(w, source, n, entering)
}

// renderCodeBlock writes unhighlighted code for indented blocks and fences
// without a language.
func renderCodeBlock(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		_, _ = w.WriteString("</code></pre>\n")
		return ast.WalkContinue, nil
	}
	_, _ = w.WriteString(`<pre class="code-block"><code>`)
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		html.DefaultWriter.RawWrite(w, line.Value(source))
	}
	return ast.WalkContinue, nil
}

func renderCodeSpan(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		_, _ = w.WriteString("</code>")
		return ast.WalkContinue, nil
	}
	_, _ = w.WriteString(`<code class="inline-code">`)
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		t, ok := c.(*ast.Text)
		if !ok {
			continue
		}
		value := t.Segment.Value(source)
		if bytes.HasSuffix(value, []byte("\n")) {
			html.DefaultWriter.RawWrite(w, value[:len(value)-1])
			_ = w.WriteByte(' ')
			continue
		}
		html.DefaultWriter.RawWrite(w, value)
	}
	return ast.WalkSkipChildren, nil
}

// writeLinkOpen writes an anchor start tag for an already sanitised href.
func writeLinkOpen(w util.BufWriter, href string, title []byte) {
	_, _ = w.WriteString(`<a class="post-link" href="` + href + `"`)
	if len(title) > 0 {
		_, _ = w.WriteString(` title="`)
		html.DefaultWriter.Write(w, title)
		_ = w.WriteByte('"')
	}
	if isExternal(href) {
		_, _ = w.WriteString(` target="_blank" rel="noopener noreferrer"`)
	}
	_ = w.WriteByte('>')
}

// renderLink drops the anchor and keeps the link text when the destination
// is not a safe URL.
func renderLink(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	link := n.(*ast.Link)
	href := SafeURL(string(link.Destination))
	if href == "" {
		return ast.WalkContinue, nil
	}
	if entering {
		writeLinkOpen(w, href, link.Title)
	} else {
		_, _ = w.WriteString("</a>")
	}
	return ast.WalkContinue, nil
}

func renderAutoLink(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	al := n.(*ast.AutoLink)
	dest := string(al.URL(source))
	if al.AutoLinkType == ast.AutoLinkEmail && !strings.HasPrefix(strings.ToLower(dest), "mailto:") {
		dest = "mailto:" + dest
	}
	label := al.Label(source)
	href := SafeURL(dest)
	if href == "" {
		html.DefaultWriter.RawWrite(w, label)
		return ast.WalkContinue, nil
	}
	writeLinkOpen(w, href, nil)
	html.DefaultWriter.RawWrite(w, label)
	_, _ = w.WriteString("</a>")
	return ast.WalkContinue, nil
}

var headingClasses = map[int]string{
	1: "post-h1",
	2: "post-h2",
	3: "post-h3",
	4: "post-h4",
}

func renderHeading(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	h := n.(*ast.Heading)
	tag := "h" + strconv.Itoa(h.Level)
	if !entering {
		_, _ = w.WriteString("</" + tag + ">\n")
		return ast.WalkContinue, nil
	}
	_, _ = w.WriteString("<" + tag)
	if class, ok := headingClasses[h.Level]; ok {
		_, _ = w.WriteString(` class="` + class + `"`)
	}
	if n.Attributes() != nil {
		html.RenderAttributes(w, n, html.HeadingAttributeFilter)
	}
	_ = w.WriteByte('>')
	return ast.WalkContinue, nil
}

func renderBlockquote(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString("<blockquote class=\"post-quote\">\n")
	} else {
		_, _ = w.WriteString("</blockquote>\n")
	}
	return ast.WalkContinue, nil
}

func renderThematicBreak(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString("<hr class=\"post-rule\">\n")
	}
	return ast.WalkContinue, nil
}

// renderTable wraps tables in a horizontally scrolling container. Header
// and row markup come from the GFM table renderer.
func renderTable(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString("<div class=\"table-scroll\"><table class=\"post-table\">\n")
	} else {
		_, _ = w.WriteString("</table></div>\n")
	}
	return ast.WalkContinue, nil
}

func renderTableCell(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	cell := n.(*east.TableCell)
	tag, class := "td", "post-td"
	if n.Parent() != nil && n.Parent().Kind() == east.KindTableHeader {
		tag, class = "th", "post-th"
	}
	if !entering {
		_, _ = w.WriteString("</" + tag + ">\n")
		return ast.WalkContinue, nil
	}
	_, _ = w.WriteString("<" + tag + ` class="` + class + `"`)
	if cell.Alignment != east.AlignNone {
		_, _ = w.WriteString(` style="text-align:` + cell.Alignment.String() + `"`)
	}
	_ = w.WriteByte('>')
	return ast.WalkContinue, nil
}
