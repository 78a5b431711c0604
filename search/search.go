// Package search keeps an in-memory full-text index over a catalog of posts.
package search

import (
	"fmt"
	"html"
	"strings"

	"github.com/blevesearch/bleve"
	"github.com/blevesearch/bleve/mapping"
	stripMarkdown "github.com/writeas/go-strip-markdown"

	"github.com/silicogen/postengine/content"
)

// DefaultLimit caps the number of hits returned when no limit is given.
const DefaultLimit = 20

const snippetRunes = 160

// Hit is one search result.
type Hit struct {
	Slug    string
	Title   string
	Score   float64
	Snippet string // HTML, matched terms wrapped in <mark>
}

// indexRecord is the document stored for each post.
type indexRecord struct {
	Title       string
	Description string
	Tags        string
	Body        string
}

// Index is an immutable search index built from one catalog snapshot.
type Index struct {
	bleve  bleve.Index
	titles map[string]string
	plain  map[string]string
}

func newMapping() mapping.IndexMapping {
	textFieldMapping := bleve.NewTextFieldMapping()

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("Title", textFieldMapping)
	doc.AddFieldMappingsAt("Description", textFieldMapping)
	doc.AddFieldMappingsAt("Tags", textFieldMapping)
	doc.AddFieldMappingsAt("Body", textFieldMapping)

	indexMap := bleve.NewIndexMapping()
	indexMap.DefaultMapping = doc
	return indexMap
}

// Build indexes posts in memory. When several posts share a slug only the
// first is indexed, matching content.GetBySlug.
func Build(posts []content.Post) (*Index, error) {
	blv, err := bleve.NewMemOnly(newMapping())
	if err != nil {
		return nil, fmt.Errorf("search: create index: %w", err)
	}
	idx := &Index{
		bleve:  blv,
		titles: make(map[string]string, len(posts)),
		plain:  make(map[string]string, len(posts)),
	}

	batch := blv.NewBatch()
	for _, p := range posts {
		if _, seen := idx.titles[p.Slug]; seen {
			continue
		}
		body := stripMarkdown.Strip(p.Content)
		idx.titles[p.Slug] = p.Title
		idx.plain[p.Slug] = body
		rec := indexRecord{
			Title:       p.Title,
			Description: p.Description,
			Tags:        strings.Join(p.Tags, " "),
			Body:        body,
		}
		if err := batch.Index(p.Slug, rec); err != nil {
			return nil, fmt.Errorf("search: index %s: %w", p.Slug, err)
		}
	}
	if err := blv.Batch(batch); err != nil {
		return nil, fmt.Errorf("search: index batch: %w", err)
	}
	return idx, nil
}

// Len returns the number of indexed posts.
func (i *Index) Len() int { return len(i.titles) }

// Search runs q as a query string ("+go -rust title:intro") and falls back
// to a plain match query when q does not parse. A blank query has no hits.
func (i *Index) Search(q string, limit int) ([]Hit, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	request := bleve.NewSearchRequestOptions(bleve.NewQueryStringQuery(q), limit, 0, false)
	request.Highlight = bleve.NewHighlightWithStyle("html")
	request.Highlight.AddField("Body")
	result, err := i.bleve.Search(request)
	if err != nil {
		request.Query = bleve.NewMatchQuery(q)
		result, err = i.bleve.Search(request)
		if err != nil {
			return nil, fmt.Errorf("search: query %q: %w", q, err)
		}
	}

	hits := make([]Hit, 0, len(result.Hits))
	for _, match := range result.Hits {
		hit := Hit{
			Slug:  match.ID,
			Title: i.titles[match.ID],
			Score: match.Score,
		}
		if frags := match.Fragments["Body"]; len(frags) > 0 {
			hit.Snippet = safeFragment(frags[0])
		} else {
			hit.Snippet = leadSnippet(i.plain[match.ID])
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// Close releases the index.
func (i *Index) Close() error {
	return i.bleve.Close()
}

// safeFragment escapes a highlighted fragment, keeping only the <mark> tags
// the highlighter added.
func safeFragment(frag string) string {
	var b strings.Builder
	for i, part := range strings.Split(html.UnescapeString(frag), "<mark>") {
		if i > 0 {
			b.WriteString("<mark>")
		}
		marked, rest, found := strings.Cut(part, "</mark>")
		if !found {
			b.WriteString(html.EscapeString(part))
			continue
		}
		b.WriteString(html.EscapeString(marked) + "</mark>" + html.EscapeString(rest))
	}
	return b.String()
}

// leadSnippet returns the escaped opening text of a body, for hits that
// matched outside the body.
func leadSnippet(body string) string {
	r := []rune(strings.Join(strings.Fields(body), " "))
	if len(r) > snippetRunes {
		r = append(r[:snippetRunes], '…')
	}
	return html.EscapeString(string(r))
}
