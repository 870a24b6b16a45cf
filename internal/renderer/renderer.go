// Package renderer converts post Markdown to HTML and assembles full pages.
//
// Markdown is rendered with goldmark (GFM tables, strikethrough, autolinks).
// Fenced code blocks are emitted with language-<tag> classes for client-side
// syntax highlighting; "mermaid" fences are emitted as <pre class="mermaid">
// blocks for client-side flowchart rendering instead of code listings.
package renderer

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"

	"github.com/quillmark/quill/internal/types"
)

// Renderer renders posts and index pages.
type Renderer struct {
	markdown  goldmark.Markdown
	postTmpl  *template.Template
	indexTmpl *template.Template
	siteTitle string
	baseURL   string
}

// Options configures page rendering.
type Options struct {
	// SiteTitle appears in page headers and the index title
	SiteTitle string
	// BaseURL prefixes absolute links in generated pages
	BaseURL string
	// PostTemplate overrides the built-in post layout when non-empty
	PostTemplate string
	// IndexTemplate overrides the built-in index layout when non-empty
	IndexTemplate string
}

// New creates a renderer with the given options.
func New(opts Options) (*Renderer, error) {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.Table,
			extension.Strikethrough,
			extension.Linkify,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			renderer.WithNodeRenderers(
				util.Prioritized(&fencedBlockRenderer{}, 100),
			),
		),
	)

	postSrc := opts.PostTemplate
	if postSrc == "" {
		postSrc = defaultPostTemplate
	}
	postTmpl, err := template.New("post").Parse(postSrc)
	if err != nil {
		return nil, fmt.Errorf("parsing post template: %w", err)
	}

	indexSrc := opts.IndexTemplate
	if indexSrc == "" {
		indexSrc = defaultIndexTemplate
	}
	indexTmpl, err := template.New("index").Parse(indexSrc)
	if err != nil {
		return nil, fmt.Errorf("parsing index template: %w", err)
	}

	siteTitle := opts.SiteTitle
	if siteTitle == "" {
		siteTitle = "Quill Site"
	}

	return &Renderer{
		markdown:  md,
		postTmpl:  postTmpl,
		indexTmpl: indexTmpl,
		siteTitle: siteTitle,
		baseURL:   opts.BaseURL,
	}, nil
}

// RenderMarkdown converts Markdown body text to an HTML fragment.
func (r *Renderer) RenderMarkdown(body string) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(body), &buf); err != nil {
		return nil, fmt.Errorf("converting markdown: %w", err)
	}
	return buf.Bytes(), nil
}

// PostPage holds the data passed to the post layout.
type PostPage struct {
	SiteTitle   string
	Title       string
	Date        time.Time
	Draft       bool
	Description string
	Tags        []string
	Content     template.HTML
	HasMermaid  bool
}

// RenderPost renders a complete HTML page for one post.
func (r *Renderer) RenderPost(post *types.PostInfo) ([]byte, error) {
	content, err := r.RenderMarkdown(post.Body)
	if err != nil {
		return nil, fmt.Errorf("rendering %s: %w", post.Slug, err)
	}

	page := PostPage{
		SiteTitle:   r.siteTitle,
		Title:       post.Title,
		Date:        post.Date,
		Draft:       post.Draft,
		Description: post.Description,
		Tags:        post.Tags,
		Content:     template.HTML(content),
		HasMermaid:  bytes.Contains(content, []byte(`<pre class="mermaid">`)),
	}

	var buf bytes.Buffer
	if err := r.postTmpl.Execute(&buf, page); err != nil {
		return nil, fmt.Errorf("executing post template for %s: %w", post.Slug, err)
	}
	return buf.Bytes(), nil
}

// IndexEntry is one row of the index page listing.
type IndexEntry struct {
	Slug        string
	Title       string
	Date        time.Time
	Description string
	Draft       bool
}

// IndexPage holds the data passed to the index layout.
type IndexPage struct {
	SiteTitle string
	Posts     []IndexEntry
}

// RenderIndex renders the index page for the given posts. Callers pass posts
// already ordered newest first.
func (r *Renderer) RenderIndex(posts []*types.PostInfo) ([]byte, error) {
	page := IndexPage{SiteTitle: r.siteTitle}
	for _, post := range posts {
		page.Posts = append(page.Posts, IndexEntry{
			Slug:        post.Slug,
			Title:       post.Title,
			Date:        post.Date,
			Description: post.Description,
			Draft:       post.Draft,
		})
	}

	var buf bytes.Buffer
	if err := r.indexTmpl.Execute(&buf, page); err != nil {
		return nil, fmt.Errorf("executing index template: %w", err)
	}
	return buf.Bytes(), nil
}

// fencedBlockRenderer overrides goldmark's fenced code block output so code
// fences carry language-<tag> classes and mermaid fences become diagram
// containers.
type fencedBlockRenderer struct{}

// RegisterFuncs registers the fenced code block handler.
func (r *fencedBlockRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCodeBlock)
}

func (r *fencedBlockRenderer) renderFencedCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.FencedCodeBlock)
	lang := string(n.Language(source))

	if lang == "mermaid" {
		if entering {
			_, _ = w.WriteString(`<pre class="mermaid">`)
			r.writeLines(w, source, n)
		} else {
			_, _ = w.WriteString("</pre>\n")
		}
		return ast.WalkContinue, nil
	}

	if entering {
		if lang != "" {
			fmt.Fprintf(w, `<pre><code class="language-%s">`, html.EscapeString(lang))
		} else {
			_, _ = w.WriteString("<pre><code>")
		}
		r.writeLines(w, source, n)
	} else {
		_, _ = w.WriteString("</code></pre>\n")
	}
	return ast.WalkContinue, nil
}

func (r *fencedBlockRenderer) writeLines(w util.BufWriter, source []byte, n *ast.FencedCodeBlock) {
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		_, _ = w.WriteString(html.EscapeString(string(line.Value(source))))
	}
}

const defaultPostTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}} — {{.SiteTitle}}</title>
{{if .Description}}<meta name="description" content="{{.Description}}">{{end}}
<link rel="stylesheet" href="/assets/style.css">
</head>
<body>
<header><a href="/">{{.SiteTitle}}</a></header>
<main>
<article>
<h1>{{.Title}}</h1>
<p class="meta"><time datetime="{{.Date.Format "2006-01-02"}}">{{.Date.Format "January 2, 2006"}}</time>{{if .Draft}} <span class="draft">draft</span>{{end}}</p>
{{.Content}}
{{if .Tags}}<p class="tags">{{range .Tags}}<span class="tag">{{.}}</span> {{end}}</p>{{end}}
</article>
</main>
{{if .HasMermaid}}<script type="module">
import mermaid from "https://cdn.jsdelivr.net/npm/mermaid@10/dist/mermaid.esm.min.mjs";
mermaid.initialize({ startOnLoad: true });
</script>{{end}}
</body>
</html>
`

const defaultIndexTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.SiteTitle}}</title>
<link rel="stylesheet" href="/assets/style.css">
</head>
<body>
<header><a href="/">{{.SiteTitle}}</a></header>
<main>
<ul class="posts">
{{range .Posts}}<li><time datetime="{{.Date.Format "2006-01-02"}}">{{.Date.Format "2006-01-02"}}</time> <a href="/posts/{{.Slug}}/">{{.Title}}</a>{{if .Draft}} <span class="draft">draft</span>{{end}}{{if .Description}}<p>{{.Description}}</p>{{end}}</li>
{{end}}</ul>
</main>
</body>
</html>
`
