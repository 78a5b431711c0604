package content

import (
	"regexp"
	"strings"
)

var reDatedStem = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})_(.+)$`)

// DeriveFromFilename extracts a default date and slug from a file name of
// the form YYYY-MM-DD_Post_Title.md. Files without a date prefix get an
// empty date and the whole stem as slug. Only the path is inspected.
func DeriveFromFilename(path string) (date, slug string) {
	stem := path
	if i := strings.LastIndexAny(stem, `/\`); i >= 0 {
		stem = stem[i+1:]
	}
	stem = trimMarkdownExt(stem)

	if m := reDatedStem.FindStringSubmatch(stem); m != nil {
		return m[1], slugify(m[2])
	}
	return "", slugify(stem)
}

func slugify(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), "_", "-")
}

func trimMarkdownExt(name string) string {
	lower := strings.ToLower(name)
	for _, ext := range markdownExts {
		if strings.HasSuffix(lower, ext) {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}

var markdownExts = []string{".md", ".markdown"}

// isMarkdownFile reports whether name is a markdown file with a usable stem.
// Dotfiles such as ".md" are not posts.
func isMarkdownFile(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	stem := trimMarkdownExt(name)
	return stem != name && strings.TrimSpace(stem) != ""
}
