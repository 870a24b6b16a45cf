package lint

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	"github.com/quillmark/quill/internal/errors"
	"github.com/quillmark/quill/internal/types"
)

// LinkResolver resolves link targets found in rendered post bodies. It never
// dials out: external links are checked for URL shape only.
type LinkResolver struct {
	// render converts a Markdown body to HTML for link extraction
	render func(body string) ([]byte, error)
	// slugExists reports whether a post slug is registered
	slugExists func(slug string) bool
}

// NewLinkResolver creates a resolver over the given render and slug-lookup
// functions.
func NewLinkResolver(render func(string) ([]byte, error), slugExists func(string) bool) *LinkResolver {
	return &LinkResolver{render: render, slugExists: slugExists}
}

// LinkRule checks that every link in a post resolves: relative links point at
// existing files, internal post links point at known slugs, and all URLs are
// well formed.
type LinkRule struct {
	resolver *LinkResolver
}

// Name implements Rule.
func (r *LinkRule) Name() string { return "link-resolves" }

// Check implements Rule.
func (r *LinkRule) Check(_ context.Context, post *types.PostInfo, collector *errors.Collector) {
	if r.resolver == nil || r.resolver.render == nil {
		return
	}

	rendered, err := r.resolver.render(post.Body)
	if err != nil {
		collector.Add(errors.Diagnostic{
			Rule:     r.Name(),
			Slug:     post.Slug,
			File:     post.FilePath,
			Message:  fmt.Sprintf("body does not render: %v", err),
			Severity: errors.SeverityError,
		})
		return
	}

	for _, target := range extractLinks(rendered) {
		if diag := r.checkTarget(post, target); diag != nil {
			collector.Add(*diag)
		}
	}
}

// checkTarget validates one link target, returning a diagnostic when it does
// not resolve.
func (r *LinkRule) checkTarget(post *types.PostInfo, target string) *errors.Diagnostic {
	if target == "" || strings.HasPrefix(target, "#") {
		return nil
	}

	u, err := url.Parse(target)
	if err != nil {
		return &errors.Diagnostic{
			Rule:     r.Name(),
			Slug:     post.Slug,
			File:     post.FilePath,
			Message:  fmt.Sprintf("malformed link %q: %v", target, err),
			Severity: errors.SeverityError,
		}
	}

	switch u.Scheme {
	case "http", "https", "mailto":
		if u.Scheme != "mailto" && u.Host == "" {
			return &errors.Diagnostic{
				Rule:     r.Name(),
				Slug:     post.Slug,
				File:     post.FilePath,
				Message:  fmt.Sprintf("link %q has a scheme but no host", target),
				Severity: errors.SeverityError,
			}
		}
		return nil
	case "":
		// Site-relative or file-relative.
	default:
		return &errors.Diagnostic{
			Rule:     r.Name(),
			Slug:     post.Slug,
			File:     post.FilePath,
			Message:  fmt.Sprintf("link %q uses unsupported scheme %q", target, u.Scheme),
			Severity: errors.SeverityWarning,
		}
	}

	path := u.Path
	if path == "" {
		return nil
	}

	if strings.HasPrefix(path, "/") {
		return r.checkSitePath(post, target, path)
	}

	// File-relative link: resolve against the post's directory.
	resolved := filepath.Join(filepath.Dir(post.FilePath), filepath.FromSlash(path))
	if _, err := os.Stat(resolved); err != nil {
		return &errors.Diagnostic{
			Rule:     r.Name(),
			Slug:     post.Slug,
			File:     post.FilePath,
			Message:  fmt.Sprintf("link %q does not resolve: %s not found", target, resolved),
			Severity: errors.SeverityError,
		}
	}
	return nil
}

// checkSitePath validates a site-absolute path such as /posts/<slug>/.
func (r *LinkRule) checkSitePath(post *types.PostInfo, target, path string) *errors.Diagnostic {
	trimmed := strings.Trim(path, "/")
	parts := strings.Split(trimmed, "/")
	if len(parts) == 2 && parts[0] == "posts" && r.resolver.slugExists != nil {
		if !r.resolver.slugExists(parts[1]) {
			return &errors.Diagnostic{
				Rule:     r.Name(),
				Slug:     post.Slug,
				File:     post.FilePath,
				Message:  fmt.Sprintf("link %q points at unknown post %q", target, parts[1]),
				Severity: errors.SeverityError,
			}
		}
	}
	// Other site-absolute paths (assets, index) are left to the build output.
	return nil
}

// extractLinks returns the href/src targets of anchors and images in an HTML
// fragment.
func extractLinks(fragment []byte) []string {
	var targets []string

	doc, err := html.Parse(bytes.NewReader(fragment))
	if err != nil {
		return targets
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			var attr string
			switch n.Data {
			case "a":
				attr = "href"
			case "img":
				attr = "src"
			}
			if attr != "" {
				for _, a := range n.Attr {
					if a.Key == attr {
						targets = append(targets, a.Val)
						break
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return targets
}
