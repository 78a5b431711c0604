package content

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
)

// LoadDir reads every Markdown file directly inside dir of fsys and returns
// them sorted by path. Subdirectories are not traversed.
func LoadDir(fsys fs.FS, dir string) ([]Document, error) {
	return LoadDirWithContext(context.Background(), fsys, dir)
}

// LoadDirWithContext is LoadDir with cancellation checked between files.
func LoadDirWithContext(ctx context.Context, fsys fs.FS, dir string) ([]Document, error) {
	if dir == "" {
		dir = "."
	}
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("content: read dir %s: %w", dir, err)
	}

	var docs []Document
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() || !isMarkdownFile(entry.Name()) {
			continue
		}
		p := path.Join(dir, entry.Name())
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("content: load %s: %w", p, err)
		}
		docs = append(docs, Document{Path: p, Raw: string(data)})
	}

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].Path < docs[j].Path
	})
	return docs, nil
}
