package content

import (
	"strings"
)

const delimiter = "---"

// Kind tags the two shapes a frontmatter value can take.
type Kind int

const (
	Scalar Kind = iota
	List
)

// Value is a frontmatter value: either a scalar string or an ordered list of strings.
type Value struct {
	kind   Kind
	scalar string
	list   []string
}

// ScalarValue returns a scalar Value holding s.
func ScalarValue(s string) Value {
	return Value{kind: Scalar, scalar: s}
}

// ListValue returns a list Value holding a copy of items.
func ListValue(items ...string) Value {
	return Value{kind: List, list: append([]string{}, items...)}
}

// Kind reports whether v is a Scalar or a List.
func (v Value) Kind() Kind { return v.kind }

// Scalar returns the scalar string and true, or "" and false for a list.
func (v Value) Scalar() (string, bool) {
	if v.kind != Scalar {
		return "", false
	}
	return v.scalar, true
}

// List returns a copy of the list items and true, or nil and false for a scalar.
func (v Value) List() ([]string, bool) {
	if v.kind != List {
		return nil, false
	}
	return append([]string{}, v.list...), true
}

// Metadata is the parsed frontmatter block: string keys mapped to values,
// remembering the order in which keys first appeared.
type Metadata struct {
	keys   []string
	values map[string]Value
}

// Set stores v under key. A new key is appended to the key order.
func (m *Metadata) Set(key string, v Value) {
	if m.values == nil {
		m.values = make(map[string]Value)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

// Get returns the raw value for key.
func (m Metadata) Get(key string) (Value, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Keys returns the keys in first-seen order.
func (m Metadata) Keys() []string {
	return append([]string{}, m.keys...)
}

// Len returns the number of keys.
func (m Metadata) Len() int { return len(m.keys) }

// String returns the scalar stored under key. Lists are not coerced.
func (m Metadata) String(key string) (string, bool) {
	v, ok := m.values[key]
	if !ok {
		return "", false
	}
	return v.Scalar()
}

// Strings returns the list stored under key. A scalar is split on commas so
// that "tags: go, web" and "tags: [go, web]" read the same.
func (m Metadata) Strings(key string) ([]string, bool) {
	v, ok := m.values[key]
	if !ok {
		return nil, false
	}
	if items, ok := v.List(); ok {
		return items, true
	}
	var out []string
	for _, part := range strings.Split(v.scalar, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out, true
}

// ParseFrontmatter splits raw into its leading metadata block and the body.
// Without a well-formed block at the very start, it returns empty metadata
// and raw unchanged. It never fails.
func ParseFrontmatter(raw string) (Metadata, string) {
	block, body, ok := splitBlock(raw)
	if !ok {
		return Metadata{}, raw
	}
	var meta Metadata
	for _, line := range block {
		key, val, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		meta.Set(key, parseValue(strings.TrimSpace(val)))
	}
	return meta, body
}

// splitBlock returns the lines between the opening and closing delimiter and
// everything after the closing delimiter line. A block holds at least one
// line, so the line right after the opening delimiter never closes it.
func splitBlock(raw string) ([]string, string, bool) {
	rest, ok := cutDelimiterLine(raw)
	if !ok {
		return nil, "", false
	}
	var lines []string
	for {
		if len(lines) > 0 {
			if closing, ok := cutDelimiterLine(rest); ok {
				return lines, closing, true
			}
			if isBareDelimiter(rest) {
				return lines, "", true
			}
		}
		nl := strings.IndexByte(rest, '\n')
		if nl < 0 {
			// no closing delimiter
			return nil, "", false
		}
		lines = append(lines, strings.TrimSuffix(rest[:nl], "\r"))
		rest = rest[nl+1:]
	}
}

// cutDelimiterLine reports whether s starts with a "---" line terminated by
// a newline and returns what follows it.
func cutDelimiterLine(s string) (string, bool) {
	if !strings.HasPrefix(s, delimiter) {
		return "", false
	}
	after := s[len(delimiter):]
	switch {
	case strings.HasPrefix(after, "\r\n"):
		return after[2:], true
	case strings.HasPrefix(after, "\n"):
		return after[1:], true
	}
	return "", false
}

// isBareDelimiter matches a closing "---" that ends the input.
func isBareDelimiter(s string) bool {
	return s == delimiter || s == delimiter+"\r"
}

func parseValue(val string) Value {
	if !strings.HasPrefix(val, "[") {
		return ScalarValue(unquote(val))
	}
	inner := val[1:]
	if end := strings.LastIndex(inner, "]"); end >= 0 {
		inner = inner[:end]
	}
	items := []string{}
	for _, part := range strings.Split(inner, ",") {
		if s := unquote(strings.TrimSpace(part)); s != "" {
			items = append(items, s)
		}
	}
	return ListValue(items...)
}

// unquote strips one layer of matching single or double quotes.
func unquote(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first == last && (first == '"' || first == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// FormatFrontmatter renders meta as a delimiter block followed by body.
// Values are double-quoted when they would not survive a parse unquoted.
// List items must not contain commas.
func FormatFrontmatter(meta Metadata, body string) string {
	if meta.Len() == 0 {
		return body
	}
	var b strings.Builder
	b.WriteString(delimiter + "\n")
	for _, key := range meta.keys {
		v := meta.values[key]
		b.WriteString(key)
		b.WriteString(": ")
		if items, ok := v.List(); ok {
			quoted := make([]string, len(items))
			for i, item := range items {
				quoted[i] = quoteIfNeeded(item)
			}
			b.WriteString("[" + strings.Join(quoted, ", ") + "]")
		} else {
			b.WriteString(quoteIfNeeded(v.scalar))
		}
		b.WriteString("\n")
	}
	b.WriteString(delimiter + "\n")
	b.WriteString(body)
	return b.String()
}

func quoteIfNeeded(s string) string {
	needs := s != strings.TrimSpace(s) ||
		strings.HasPrefix(s, "[") ||
		(len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[0] == s[len(s)-1])
	if !needs {
		return s
	}
	return `"` + s + `"`
}
