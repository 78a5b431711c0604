package content

import (
	"context"
	"errors"
	"io/fs"
	"testing"
	"testing/fstest"
)

func TestLoadDir(t *testing.T) {
	fsys := fstest.MapFS{
		"blog/b.md":             {Data: []byte("bee")},
		"blog/a.markdown":       {Data: []byte("ay")},
		"blog/notes.txt":        {Data: []byte("skip")},
		"blog/drafts/hidden.md": {Data: []byte("nested")},
		"other/c.md":            {Data: []byte("elsewhere")},
	}
	docs, err := LoadDir(fsys, "blog")
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("got %d documents, want 2", len(docs))
	}
	if docs[0].Path != "blog/a.markdown" || docs[0].Raw != "ay" {
		t.Errorf("docs[0] = %+v", docs[0])
	}
	if docs[1].Path != "blog/b.md" || docs[1].Raw != "bee" {
		t.Errorf("docs[1] = %+v", docs[1])
	}
}

func TestLoadDirMissing(t *testing.T) {
	_, err := LoadDir(fstest.MapFS{}, "nope")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("LoadDir(missing) error = %v, want fs.ErrNotExist", err)
	}
}

func TestLoadDirWithContextCanceled(t *testing.T) {
	fsys := fstest.MapFS{"a.md": {Data: []byte("a")}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := LoadDirWithContext(ctx, fsys, ""); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestLoadDirFeedsCatalog(t *testing.T) {
	fsys := fstest.MapFS{
		"2026-02-14_My_First_Post.md": {Data: []byte("---\ntitle: First\n---\nHello")},
	}
	docs, err := LoadDir(fsys, ".")
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	p, ok := GetBySlug(BuildCatalog(docs), "my-first-post")
	if !ok || p.Title != "First" || p.Date != "2026-02-14" {
		t.Errorf("GetBySlug = %+v, %v", p, ok)
	}
}

func TestLoadDirSkipsStemlessFiles(t *testing.T) {
	fsys := fstest.MapFS{
		"blog/.md":       {Data: []byte("---\ntitle: Ghost\n---\n")},
		"blog/.markdown": {Data: []byte("ghost")},
		"blog/real.md":   {Data: []byte("real")},
	}
	docs, err := LoadDir(fsys, "blog")
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if len(docs) != 1 || docs[0].Path != "blog/real.md" {
		t.Errorf("LoadDir = %+v, want only blog/real.md", docs)
	}
}
