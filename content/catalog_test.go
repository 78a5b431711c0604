package content

import (
	"reflect"
	"testing"
)

func TestBuildCatalogOrdering(t *testing.T) {
	docs := []Document{
		{Path: "undated.md", Raw: "no frontmatter"},
		{Path: "2025-01-01_Old.md", Raw: "old"},
		{Path: "2026-05-05_New.md", Raw: "new"},
		{Path: "also-undated.md", Raw: "x"},
	}
	posts := BuildCatalog(docs)
	var got []string
	for _, p := range posts {
		got = append(got, p.Slug)
	}
	want := []string{"new", "old", "undated", "also-undated"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("order = %q, want %q", got, want)
	}
	if posts[0].Date != "2026-05-05" || posts[2].Date != "" {
		t.Errorf("dates = %q, %q", posts[0].Date, posts[2].Date)
	}
}

func TestBuildCatalogMetadataOverridesFilename(t *testing.T) {
	raw := "---\ntitle: Hello World\nslug: custom-slug\ndate: 2026-03-01T10:00:00Z\ndescription: A greeting\nauthor: Ada\ntags: [go, web]\nimage: /img/cover.png\n---\nhttps://youtu.be/dQw4w9WgXcQ\n"
	posts := BuildCatalog([]Document{{Path: "content/blog/2025-01-01_Hello.md", Raw: raw}})
	p := posts[0]

	want := Post{
		Slug:        "custom-slug",
		Title:       "Hello World",
		Date:        "2026-03-01",
		Description: "A greeting",
		Author:      "Ada",
		Tags:        []string{"go", "web"},
		Content:     "https://youtu.be/dQw4w9WgXcQ\n",
		ReadTime:    1,
		Thumbnail:   "/img/cover.png",
		Source:      "content/blog/2025-01-01_Hello.md",
	}
	if !reflect.DeepEqual(p, want) {
		t.Errorf("post = %+v\nwant %+v", p, want)
	}
}

func TestBuildCatalogDefaults(t *testing.T) {
	raw := "---\ntitle: \"\"\nslug:   \ndate: someday\n---\nwatch https://www.youtube.com/watch?v=dQw4w9WgXcQ"
	p := BuildCatalog([]Document{{Path: "2024-07-04_Fallbacks.md", Raw: raw}})[0]

	if p.Slug != "fallbacks" {
		t.Errorf("Slug = %q, want fallbacks", p.Slug)
	}
	if p.Date != "2024-07-04" {
		t.Errorf("Date = %q, want filename date", p.Date)
	}
	if p.Title != "" {
		t.Errorf("Title = %q, want empty", p.Title)
	}
	if p.Author != DefaultAuthor {
		t.Errorf("Author = %q, want %q", p.Author, DefaultAuthor)
	}
	if p.Tags == nil || len(p.Tags) != 0 {
		t.Errorf("Tags = %#v, want empty non-nil slice", p.Tags)
	}
	if p.Thumbnail != VideoThumbnailURL("dQw4w9WgXcQ") {
		t.Errorf("Thumbnail = %q", p.Thumbnail)
	}
}

func TestBuildCatalogNeverYieldsEmptySlug(t *testing.T) {
	tests := []struct {
		doc  Document
		want string
	}{
		{Document{Path: "blog/.md"}, UntitledSlug},
		{Document{Path: "blog/ .markdown", Raw: "body"}, UntitledSlug},
		{Document{Path: "blog/.md", Raw: "---\nslug: named\n---\nbody"}, "named"},
		{Document{Path: "blog/x.md", Raw: "---\nslug: \"  \"\n---\nbody"}, "x"},
	}
	for _, tt := range tests {
		posts := BuildCatalog([]Document{tt.doc})
		if got := posts[0].Slug; got != tt.want {
			t.Errorf("BuildCatalog(%q).Slug = %q, want %q", tt.doc.Path, got, tt.want)
		}
	}
}

func TestBuilderFallbackAuthorAndParser(t *testing.T) {
	b := Builder{
		FallbackAuthor: "Site Owner",
		Parse: func(raw string) (Metadata, string) {
			var m Metadata
			m.Set("title", ScalarValue("from parser"))
			return m, raw
		},
	}
	p := b.Build([]Document{{Path: "a.md", Raw: "body"}})[0]
	if p.Author != "Site Owner" || p.Title != "from parser" {
		t.Errorf("got author %q title %q", p.Author, p.Title)
	}
}

func TestGetBySlug(t *testing.T) {
	if _, ok := GetBySlug(nil, "anything"); ok {
		t.Errorf("GetBySlug on empty catalog should miss")
	}

	posts := BuildCatalog([]Document{
		{Path: "2026-01-02_Dup.md", Raw: "newer"},
		{Path: "2025-01-02_Dup.md", Raw: "older"},
		{Path: "other.md", Raw: "x"},
	})
	p, ok := GetBySlug(posts, "dup")
	if !ok || p.Content != "newer" {
		t.Errorf("GetBySlug(dup) = %q, %v, want first in catalog order", p.Content, ok)
	}
	if _, ok := GetBySlug(posts, "missing"); ok {
		t.Errorf("GetBySlug(missing) should miss")
	}
}

func TestDuplicateSlugs(t *testing.T) {
	posts := []Post{
		{Slug: "a", Source: "a1.md"},
		{Slug: "b", Source: "b.md"},
		{Slug: "a", Source: "a2.md"},
		{Slug: "c", Source: "c1.md"},
		{Slug: "c", Source: "c2.md"},
		{Slug: "a", Source: "a3.md"},
	}
	got := DuplicateSlugs(posts)
	want := []SlugCollision{
		{Slug: "a", Sources: []string{"a1.md", "a2.md", "a3.md"}},
		{Slug: "c", Sources: []string{"c1.md", "c2.md"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DuplicateSlugs = %+v, want %+v", got, want)
	}
	if got := DuplicateSlugs(posts[:2]); got != nil {
		t.Errorf("DuplicateSlugs without duplicates = %+v, want nil", got)
	}
}

func TestTags(t *testing.T) {
	posts := []Post{
		{Tags: []string{"Go", "web"}},
		{Tags: []string{" go ", "htmx", ""}},
		{Tags: []string{}},
	}
	want := []string{"go", "htmx", "web"}
	if got := Tags(posts); !reflect.DeepEqual(got, want) {
		t.Errorf("Tags = %q, want %q", got, want)
	}
}

func TestFilterByTag(t *testing.T) {
	posts := []Post{
		{Slug: "a", Tags: []string{"Go"}},
		{Slug: "b", Tags: []string{"rust"}},
		{Slug: "c", Tags: []string{"web", "go"}},
	}
	tests := []struct {
		tag  string
		want []string
	}{
		{"go", []string{"a", "c"}},
		{"GO", []string{"a", "c"}},
		{"rust", []string{"b"}},
		{"none", nil},
		{"", []string{"a", "b", "c"}},
	}
	for _, tt := range tests {
		var got []string
		for _, p := range FilterByTag(posts, tt.tag) {
			got = append(got, p.Slug)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("FilterByTag(%q) = %q, want %q", tt.tag, got, tt.want)
		}
	}
}

func TestRelated(t *testing.T) {
	current := Post{Slug: "current", Tags: []string{"go", "web"}}
	posts := []Post{
		current,
		{Slug: "shares-go", Tags: []string{"Go"}},
		{Slug: "unrelated", Tags: []string{"rust"}},
		{Slug: "shares-web", Tags: []string{"web", "css"}},
	}
	var got []string
	for _, p := range Related(current, posts) {
		got = append(got, p.Slug)
	}
	want := []string{"shares-go", "shares-web"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Related = %q, want %q", got, want)
	}
}
