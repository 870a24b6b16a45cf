// Package frontmatter parses the front-matter convention used by post files:
// a leading "---" fence, YAML key/value metadata, a closing "---" fence, and
// the Markdown body. Typed keys (title, date, draft, description, tags, slug)
// are extracted into fields; everything else is preserved in a metadata map.
package frontmatter

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const fence = "---"

// Parsed holds the result of splitting a post file into metadata and body.
type Parsed struct {
	// Title is the post title, empty when absent
	Title string
	// Date is the publication timestamp, zero when absent or unparseable
	Date time.Time
	// DateRaw is the raw date string as authored, kept for lint diagnostics
	DateRaw string
	// Draft marks the post as unpublished; absent means false
	Draft bool
	// Description is an optional summary line
	Description string
	// Tags lists optional post tags
	Tags []string
	// Slug overrides the file-derived slug when set
	Slug string
	// Metadata preserves keys without a typed field
	Metadata map[string]interface{}
	// Body is the Markdown content following the closing fence
	Body string
	// HasFrontMatter reports whether an opening fence was found at all
	HasFrontMatter bool
	// BodyLine is the 1-based line number where the body starts, for
	// translating body-relative lint positions into file positions
	BodyLine int
}

// dateFormats are the accepted ISO-8601 shapes, tried in order. Front matter
// in the wild mixes full timestamps and bare dates.
var dateFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Parse splits content into front matter and body. A file without an opening
// fence is all body. An opening fence without a closing fence is an error.
func Parse(content string) (*Parsed, error) {
	content = normalize(content)

	p := &Parsed{
		Metadata: make(map[string]interface{}),
		BodyLine: 1,
	}

	if !strings.HasPrefix(content, fence+"\n") && content != fence {
		p.Body = content
		return p, nil
	}

	rest := strings.TrimPrefix(content, fence+"\n")
	end := findClosingFence(rest)
	if end < 0 {
		return nil, fmt.Errorf("unterminated front-matter fence")
	}

	block := rest[:end]
	body := rest[end:]
	// Skip the closing fence line itself.
	if idx := strings.Index(body, "\n"); idx >= 0 {
		body = body[idx+1:]
	} else {
		body = ""
	}

	p.HasFrontMatter = true
	p.Body = body
	p.BodyLine = strings.Count(block, "\n") + 3 // opening fence + block + closing fence

	raw := make(map[string]interface{})
	if err := yaml.Unmarshal([]byte(block), &raw); err != nil {
		return nil, fmt.Errorf("parsing front matter: %w", err)
	}

	if err := p.extract(raw); err != nil {
		return nil, err
	}
	return p, nil
}

// findClosingFence returns the byte offset of the closing fence line within
// rest, or -1 when no closing fence exists.
func findClosingFence(rest string) int {
	if strings.HasPrefix(rest, fence+"\n") || rest == fence {
		return 0
	}
	for _, marker := range []string{"\n" + fence + "\n", "\n" + fence} {
		idx := strings.Index(rest, marker)
		if idx < 0 {
			continue
		}
		// Reject longer runs of dashes ("----") and require the marker to
		// terminate the string when it has no trailing newline.
		if marker == "\n"+fence && idx+len(marker) != len(rest) {
			continue
		}
		return idx + 1
	}
	return -1
}

// extract pulls typed keys out of the raw metadata map, leaving the remainder
// in p.Metadata.
func (p *Parsed) extract(raw map[string]interface{}) error {
	for key, value := range raw {
		switch strings.ToLower(key) {
		case "title":
			p.Title = asString(value)
		case "date":
			p.DateRaw = asString(value)
			if t, ok := value.(time.Time); ok {
				p.Date = t
			} else if p.DateRaw != "" {
				p.Date, _ = ParseDate(p.DateRaw)
			}
		case "draft":
			b, ok := value.(bool)
			if !ok && value != nil {
				return fmt.Errorf("front-matter key %q: expected bool, got %T", key, value)
			}
			p.Draft = b
		case "description", "summary":
			p.Description = asString(value)
		case "slug":
			p.Slug = asString(value)
		case "tags":
			tags, err := asStringSlice(value)
			if err != nil {
				return fmt.Errorf("front-matter key %q: %w", key, err)
			}
			p.Tags = tags
		default:
			p.Metadata[key] = value
		}
	}
	return nil
}

// ParseDate parses an ISO-8601 date string in any accepted shape.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, format := range dateFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// Encode renders a Parsed back into a front-matter file. Used by the "new"
// command when scaffolding posts.
func Encode(p *Parsed) (string, error) {
	meta := make(map[string]interface{}, len(p.Metadata)+4)
	for k, v := range p.Metadata {
		meta[k] = v
	}
	meta["title"] = p.Title
	if !p.Date.IsZero() {
		meta["date"] = p.Date.Format(time.RFC3339)
	}
	if p.Draft {
		meta["draft"] = true
	}
	if p.Description != "" {
		meta["description"] = p.Description
	}
	if len(p.Tags) > 0 {
		meta["tags"] = p.Tags
	}
	if p.Slug != "" {
		meta["slug"] = p.Slug
	}

	encoded, err := yaml.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("encoding front matter: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(fence + "\n")
	sb.Write(encoded)
	sb.WriteString(fence + "\n")
	if p.Body != "" {
		sb.WriteString("\n")
		sb.WriteString(p.Body)
	}
	return sb.String(), nil
}

// normalize strips a UTF-8 BOM and converts CRLF line endings.
func normalize(content string) string {
	content = strings.TrimPrefix(content, "\ufeff")
	return strings.ReplaceAll(content, "\r\n", "\n")
}

func asString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	case time.Time:
		return s.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func asStringSlice(v interface{}) ([]string, error) {
	switch items := v.(type) {
	case nil:
		return nil, nil
	case []interface{}:
		out := make([]string, 0, len(items))
		for _, item := range items {
			out = append(out, asString(item))
		}
		return out, nil
	case []string:
		return items, nil
	case string:
		return []string{items}, nil
	default:
		return nil, fmt.Errorf("expected list, got %T", v)
	}
}
