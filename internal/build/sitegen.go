package build

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/quillmark/quill/internal/types"
)

// SiteWriter writes the generated site tree: post pages under
// <output>/posts/<slug>/index.html, the index page, an RSS feed, a sitemap,
// and static assets.
type SiteWriter struct {
	outputDir string
	baseURL   string
	siteTitle string
}

// NewSiteWriter creates a writer rooted at outputDir.
func NewSiteWriter(outputDir, baseURL, siteTitle string) *SiteWriter {
	return &SiteWriter{
		outputDir: outputDir,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		siteTitle: siteTitle,
	}
}

// WritePost writes one rendered post page.
func (w *SiteWriter) WritePost(slug string, html []byte) error {
	dir := filepath.Join(w.outputDir, "posts", slug)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	path := filepath.Join(dir, "index.html")
	if err := os.WriteFile(path, html, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// WriteIndex writes the site index page.
func (w *SiteWriter) WriteIndex(html []byte) error {
	if err := os.MkdirAll(w.outputDir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", w.outputDir, err)
	}
	path := filepath.Join(w.outputDir, "index.html")
	if err := os.WriteFile(path, html, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// rssFeed is the RSS 2.0 document shape.
type rssFeed struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	LastBuildDate string    `xml:"lastBuildDate"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	GUID        string `xml:"guid"`
	PubDate     string `xml:"pubDate"`
	Description string `xml:"description,omitempty"`
}

// WriteFeed writes feed.xml for the given posts, newest first. Draft posts
// are the caller's responsibility to exclude.
func (w *SiteWriter) WriteFeed(posts []*types.PostInfo) error {
	feed := rssFeed{
		Version: "2.0",
		Channel: rssChannel{
			Title:         w.siteTitle,
			Link:          w.baseURL + "/",
			Description:   w.siteTitle,
			LastBuildDate: time.Now().UTC().Format(time.RFC1123Z),
		},
	}

	for _, post := range posts {
		if post.Draft {
			continue
		}
		link := fmt.Sprintf("%s/posts/%s/", w.baseURL, post.Slug)
		feed.Channel.Items = append(feed.Channel.Items, rssItem{
			Title:       post.Title,
			Link:        link,
			GUID:        link,
			PubDate:     post.Date.UTC().Format(time.RFC1123Z),
			Description: post.Description,
		})
	}

	return w.writeXML("feed.xml", feed)
}

// urlSet is the sitemap document shape.
type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// WriteSitemap writes sitemap.xml covering the index and all post pages.
func (w *SiteWriter) WriteSitemap(posts []*types.PostInfo) error {
	set := urlSet{
		Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  []sitemapURL{{Loc: w.baseURL + "/"}},
	}

	for _, post := range posts {
		if post.Draft {
			continue
		}
		set.URLs = append(set.URLs, sitemapURL{
			Loc:     fmt.Sprintf("%s/posts/%s/", w.baseURL, post.Slug),
			LastMod: post.LastMod.UTC().Format("2006-01-02"),
		})
	}

	return w.writeXML("sitemap.xml", set)
}

// WriteAssets writes the default stylesheet.
func (w *SiteWriter) WriteAssets() error {
	dir := filepath.Join(w.outputDir, "assets")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	path := filepath.Join(dir, "style.css")
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return os.WriteFile(path, []byte(defaultStylesheet), 0644)
}

func (w *SiteWriter) writeXML(name string, doc interface{}) error {
	if err := os.MkdirAll(w.outputDir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", w.outputDir, err)
	}

	encoded, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}

	path := filepath.Join(w.outputDir, name)
	content := append([]byte(xml.Header), encoded...)
	content = append(content, '\n')
	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// DefaultStylesheet returns the built-in stylesheet, also served directly by
// the development server.
func DefaultStylesheet() string {
	return defaultStylesheet
}

const defaultStylesheet = `body {
  max-width: 42rem;
  margin: 0 auto;
  padding: 1rem;
  font-family: system-ui, sans-serif;
  line-height: 1.6;
}
header a { font-weight: 600; text-decoration: none; color: inherit; }
.meta, .tags, time { color: #666; font-size: 0.9rem; }
.draft { color: #b45309; border: 1px solid #b45309; border-radius: 3px; padding: 0 0.3rem; }
pre { overflow-x: auto; padding: 0.75rem; background: #f6f8fa; border-radius: 6px; }
code { font-family: ui-monospace, monospace; }
ul.posts { list-style: none; padding: 0; }
ul.posts li { margin-bottom: 1rem; }
blockquote { border-left: 3px solid #ddd; margin-left: 0; padding-left: 1rem; color: #555; }
`
