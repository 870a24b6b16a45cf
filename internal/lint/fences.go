package lint

import (
	"context"
	"fmt"
	"strings"

	"github.com/quillmark/quill/internal/errors"
	"github.com/quillmark/quill/internal/types"
)

// FenceRule checks that every fenced block has a closing fence and that code
// fences carry a language tag for syntax highlighting. Diagram fences
// ("mermaid") satisfy the language requirement like any other tag.
type FenceRule struct{}

// Name implements Rule.
func (r *FenceRule) Name() string { return "fence-closed" }

// fenceInfo records an open fence while scanning.
type fenceInfo struct {
	marker string // "```" or "~~~", possibly longer
	lang   string
	line   int // body-relative, 1-based
}

// Check implements Rule.
func (r *FenceRule) Check(_ context.Context, post *types.PostInfo, collector *errors.Collector) {
	var open *fenceInfo

	lines := strings.Split(post.Body, "\n")
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " ")
		marker := fenceMarker(trimmed)
		if marker == "" {
			continue
		}

		if open == nil {
			open = &fenceInfo{
				marker: marker,
				lang:   strings.TrimSpace(strings.TrimPrefix(trimmed, marker)),
				line:   i + 1,
			}
			if open.lang == "" {
				collector.Add(errors.Diagnostic{
					Rule:     "fence-language",
					Slug:     post.Slug,
					File:     post.FilePath,
					Line:     r.fileLine(post, i+1),
					Message:  "fenced code block has no language tag",
					Severity: errors.SeverityWarning,
				})
			}
			continue
		}

		// A closing fence uses the same character, at least as long, with no
		// info string.
		if marker[0] == open.marker[0] && len(marker) >= len(open.marker) &&
			strings.TrimSpace(strings.TrimPrefix(trimmed, marker)) == "" {
			open = nil
		}
	}

	if open != nil {
		collector.Add(errors.Diagnostic{
			Rule:     r.Name(),
			Slug:     post.Slug,
			File:     post.FilePath,
			Line:     r.fileLine(post, open.line),
			Message:  fmt.Sprintf("fenced block opened with %q has no closing fence", open.marker),
			Severity: errors.SeverityError,
		})
	}
}

// fileLine translates a body-relative line number into a file line number.
func (r *FenceRule) fileLine(post *types.PostInfo, bodyLine int) int {
	if post.BodyLine > 1 {
		return post.BodyLine + bodyLine - 1
	}
	return bodyLine
}

// fenceMarker returns the leading fence marker of a line, or "" when the line
// does not start a fence.
func fenceMarker(trimmed string) string {
	for _, ch := range []byte{'`', '~'} {
		n := 0
		for n < len(trimmed) && trimmed[n] == ch {
			n++
		}
		if n >= 3 {
			return trimmed[:n]
		}
	}
	return ""
}
