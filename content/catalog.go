// Package content turns a folder of Markdown documents with optional
// frontmatter into a sorted catalog of posts.
//
// Everything here except LoadDir is pure: the same documents always produce
// the same catalog, nothing is cached, and nothing returns an error. Callers
// that want a stable view across requests memoize the result themselves.
package content

import (
	"sort"
	"strings"
)

// DefaultAuthor is credited on posts whose frontmatter names no author.
const DefaultAuthor = "SilicogenAI"

// Document is one source file: its path and raw text.
type Document struct {
	Path string
	Raw  string
}

// Post is the normalized record derived from one Document.
type Post struct {
	Slug        string   `json:"slug" yaml:"slug"`
	Title       string   `json:"title" yaml:"title"`
	Date        string   `json:"date" yaml:"date"`
	Description string   `json:"description" yaml:"description"`
	Author      string   `json:"author" yaml:"author"`
	Tags        []string `json:"tags" yaml:"tags"`
	Content     string   `json:"content" yaml:"content"`
	ReadTime    int      `json:"readTime" yaml:"readTime"`
	Thumbnail   string   `json:"thumbnail,omitempty" yaml:"thumbnail,omitempty"`
	Source      string   `json:"source" yaml:"source"`
}

// ParseFunc splits a raw document into metadata and body.
type ParseFunc func(raw string) (Metadata, string)

// Builder builds catalogs. The zero value uses ParseFrontmatter and
// DefaultAuthor.
type Builder struct {
	FallbackAuthor string
	Parse          ParseFunc
}

// BuildCatalog builds a catalog with the default Builder.
func BuildCatalog(docs []Document) []Post {
	return Builder{}.Build(docs)
}

// Build derives one Post per document and sorts them newest first. Posts
// without a date sort after every dated post; ties keep input order.
func (b Builder) Build(docs []Document) []Post {
	posts := make([]Post, 0, len(docs))
	for _, doc := range docs {
		posts = append(posts, b.post(doc))
	}
	sort.SliceStable(posts, func(i, j int) bool {
		a, c := posts[i].Date, posts[j].Date
		if a == "" || c == "" {
			return a != "" && c == ""
		}
		return a > c
	})
	return posts
}

// UntitledSlug is the slug of a post whose metadata and file name yield none.
const UntitledSlug = "untitled"

func (b Builder) post(doc Document) Post {
	parse := b.Parse
	if parse == nil {
		parse = ParseFrontmatter
	}
	author := b.FallbackAuthor
	if author == "" {
		author = DefaultAuthor
	}

	meta, body := parse(doc.Raw)
	fileDate, fileSlug := DeriveFromFilename(doc.Path)

	p := Post{
		Slug:        firstNonBlank(scalar(meta, "slug"), strings.TrimSpace(fileSlug), UntitledSlug),
		Title:       scalar(meta, "title"),
		Date:        firstNonBlank(normalizeDate(scalar(meta, "date")), fileDate),
		Description: scalar(meta, "description"),
		Author:      firstNonBlank(scalar(meta, "author"), author),
		Tags:        []string{},
		Content:     body,
		ReadTime:    EstimateReadTime(body),
		Source:      doc.Path,
	}
	if tags, ok := meta.Strings("tags"); ok && tags != nil {
		p.Tags = tags
	}
	p.Thumbnail, _ = ExtractThumbnail(body, scalar(meta, "image"))
	return p
}

// scalar reads a trimmed scalar; lists and missing keys read as "".
func scalar(meta Metadata, key string) string {
	s, _ := meta.String(key)
	return strings.TrimSpace(s)
}

func firstNonBlank(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// GetBySlug returns the first post whose slug equals slug.
func GetBySlug(posts []Post, slug string) (Post, bool) {
	for _, p := range posts {
		if p.Slug == slug {
			return p, true
		}
	}
	return Post{}, false
}

// SlugCollision names a slug claimed by more than one document. Sources are
// listed in catalog order; GetBySlug resolves to the first.
type SlugCollision struct {
	Slug    string
	Sources []string
}

// DuplicateSlugs reports every slug shared by two or more posts, in order of
// first appearance.
func DuplicateSlugs(posts []Post) []SlugCollision {
	sources := make(map[string][]string)
	var order []string
	for _, p := range posts {
		if _, ok := sources[p.Slug]; !ok {
			order = append(order, p.Slug)
		}
		sources[p.Slug] = append(sources[p.Slug], p.Source)
	}
	var out []SlugCollision
	for _, slug := range order {
		if len(sources[slug]) > 1 {
			out = append(out, SlugCollision{Slug: slug, Sources: sources[slug]})
		}
	}
	return out
}

// Tags returns the distinct tags of posts, lowercased and sorted.
func Tags(posts []Post) []string {
	set := make(map[string]struct{})
	for _, p := range posts {
		for _, t := range p.Tags {
			if tag := normalizeTag(t); tag != "" {
				set[tag] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// FilterByTag returns the posts carrying tag, compared case-insensitively.
// An empty tag returns posts unchanged.
func FilterByTag(posts []Post, tag string) []Post {
	if tag == "" {
		return posts
	}
	want := normalizeTag(tag)
	var out []Post
	for _, p := range posts {
		for _, t := range p.Tags {
			if normalizeTag(t) == want {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

// Related returns the other posts sharing at least one tag with current.
func Related(current Post, posts []Post) []Post {
	tagSet := make(map[string]struct{})
	for _, t := range current.Tags {
		if tag := normalizeTag(t); tag != "" {
			tagSet[tag] = struct{}{}
		}
	}
	var related []Post
	for _, p := range posts {
		if p.Slug == current.Slug {
			continue
		}
		for _, t := range p.Tags {
			if _, ok := tagSet[normalizeTag(t)]; ok {
				related = append(related, p)
				break
			}
		}
	}
	return related
}

func normalizeTag(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}
