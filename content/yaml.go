package content

import (
	"fmt"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"
)

// yamlFormat restricts ParseFrontmatterYAML to "---" blocks; TOML and JSON
// delimiters are left in the body.
var yamlFormat = frontmatter.NewFormat("---", "---", yaml.Unmarshal)

// ParseFrontmatterYAML is the strict alternative to ParseFrontmatter: the
// block is decoded as full YAML. Keys keep document order. Scalars of any
// type are stringified, sequences become lists, and nested mappings are
// skipped. A document without a block returns empty metadata and raw
// unchanged.
func ParseFrontmatterYAML(raw string) (Metadata, string, error) {
	var doc yaml.Node
	body, err := frontmatter.Parse(strings.NewReader(raw), &doc, yamlFormat)
	if err != nil {
		return Metadata{}, "", fmt.Errorf("content: parse yaml frontmatter: %w", err)
	}

	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	var meta Metadata
	if root.Kind != yaml.MappingNode {
		return meta, string(body), nil
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i].Value, root.Content[i+1]
		if val.Kind == yaml.AliasNode && val.Alias != nil {
			val = val.Alias
		}
		switch val.Kind {
		case yaml.ScalarNode:
			var v any
			if err := val.Decode(&v); err != nil {
				return Metadata{}, "", fmt.Errorf("content: parse yaml frontmatter: %s: %w", key, err)
			}
			if v == nil {
				meta.Set(key, ScalarValue(""))
			} else if s, ok := yamlScalar(v); ok {
				meta.Set(key, ScalarValue(s))
			}
		case yaml.SequenceNode:
			var v []any
			if err := val.Decode(&v); err != nil {
				return Metadata{}, "", fmt.Errorf("content: parse yaml frontmatter: %s: %w", key, err)
			}
			items := make([]string, 0, len(v))
			for _, item := range v {
				if s, ok := yamlScalar(item); ok && s != "" {
					items = append(items, s)
				}
			}
			meta.Set(key, ListValue(items...))
		}
	}
	return meta, string(body), nil
}

func yamlScalar(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case time.Time:
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
			return t.Format(dateLayout), true
		}
		return t.Format(time.RFC3339), true
	case bool, int, int64, uint64, float64:
		return fmt.Sprint(t), true
	}
	return "", false
}

// Frontmatter modes accepted by NewParser.
const (
	ModeTolerant = "tolerant"
	ModeYAML     = "yaml"
)

// NewParser returns the ParseFunc for mode. In yaml mode a document whose
// block fails to decode is reported to onError, when set, and read with the
// tolerant parser instead, so one bad file never empties the catalog.
func NewParser(mode string, onError func(error)) (ParseFunc, error) {
	switch mode {
	case "", ModeTolerant:
		return ParseFrontmatter, nil
	case ModeYAML:
		return func(raw string) (Metadata, string) {
			meta, body, err := ParseFrontmatterYAML(raw)
			if err != nil {
				if onError != nil {
					onError(err)
				}
				return ParseFrontmatter(raw)
			}
			return meta, body
		}, nil
	}
	return nil, fmt.Errorf("content: unknown frontmatter mode %q", mode)
}
