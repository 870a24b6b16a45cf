package build

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillmark/quill/internal/registry"
	"github.com/quillmark/quill/internal/renderer"
	"github.com/quillmark/quill/internal/types"
)

func testRenderer(t *testing.T) *renderer.Renderer {
	t.Helper()
	r, err := renderer.New(renderer.Options{SiteTitle: "Test Site", BaseURL: "https://example.com"})
	require.NoError(t, err)
	return r
}

func seedRegistry(posts ...*types.PostInfo) *registry.PostRegistry {
	reg := registry.NewPostRegistry()
	for _, p := range posts {
		reg.Register(p)
	}
	return reg
}

func publishedPost(slug, hash string) *types.PostInfo {
	return &types.PostInfo{
		Slug:    slug,
		Title:   slug,
		Date:    time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		LastMod: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		Hash:    hash,
		Body:    "Some **content** here.\n",
	}
}

func readOutput(t *testing.T, dir string, parts ...string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(append([]string{dir}, parts...)...))
	require.NoError(t, err)
	return string(data)
}

func TestBuildWritesCompleteSite(t *testing.T) {
	out := t.TempDir()
	reg := seedRegistry(
		publishedPost("alpha", "h1"),
		publishedPost("beta", "h2"),
	)

	pipeline := NewPipeline(2, reg, testRenderer(t), nil)
	results, err := pipeline.Build(context.Background(), Options{
		OutputDir: out,
		BaseURL:   "https://example.com",
		SiteTitle: "Test Site",
	})
	require.NoError(t, err)
	assert.Len(t, results, 2)

	page := readOutput(t, out, "posts", "alpha", "index.html")
	assert.Contains(t, page, "<strong>content</strong>")

	index := readOutput(t, out, "index.html")
	assert.Contains(t, index, `/posts/alpha/`)
	assert.Contains(t, index, `/posts/beta/`)

	feed := readOutput(t, out, "feed.xml")
	assert.Contains(t, feed, `<rss version="2.0">`)
	assert.Contains(t, feed, "https://example.com/posts/alpha/")

	sitemap := readOutput(t, out, "sitemap.xml")
	assert.Contains(t, sitemap, "http://www.sitemaps.org/schemas/sitemap/0.9")
	assert.Contains(t, sitemap, "<lastmod>2024-02-01</lastmod>")

	css := readOutput(t, out, "assets", "style.css")
	assert.Contains(t, css, "max-width")
}

func TestBuildExcludesDraftsByDefault(t *testing.T) {
	out := t.TempDir()
	draft := publishedPost("wip", "h3")
	draft.Draft = true
	reg := seedRegistry(publishedPost("done", "h1"), draft)

	pipeline := NewPipeline(1, reg, testRenderer(t), nil)
	results, err := pipeline.Build(context.Background(), Options{OutputDir: out, BaseURL: "https://example.com"})
	require.NoError(t, err)
	assert.Len(t, results, 1)

	_, statErr := os.Stat(filepath.Join(out, "posts", "wip"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestBuildIncludeDrafts(t *testing.T) {
	out := t.TempDir()
	draft := publishedPost("wip", "h3")
	draft.Draft = true
	reg := seedRegistry(draft)

	pipeline := NewPipeline(1, reg, testRenderer(t), nil)
	results, err := pipeline.Build(context.Background(), Options{
		IncludeDrafts: true,
		OutputDir:     out,
		BaseURL:       "https://example.com",
	})
	require.NoError(t, err)
	assert.Len(t, results, 1)

	_, statErr := os.Stat(filepath.Join(out, "posts", "wip", "index.html"))
	assert.NoError(t, statErr)

	// Drafts never appear in the feed or sitemap even when rendered
	feed := readOutput(t, out, "feed.xml")
	assert.NotContains(t, feed, "/posts/wip/")
	sitemap := readOutput(t, out, "sitemap.xml")
	assert.NotContains(t, sitemap, "/posts/wip/")
}

func TestBuildCacheHitOnRebuild(t *testing.T) {
	out := t.TempDir()
	reg := seedRegistry(publishedPost("alpha", "stable-hash"))

	pipeline := NewPipeline(1, reg, testRenderer(t), nil)

	_, err := pipeline.Build(context.Background(), Options{OutputDir: out, BaseURL: "https://example.com"})
	require.NoError(t, err)

	results, err := pipeline.Build(context.Background(), Options{OutputDir: out, BaseURL: "https://example.com"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].CacheHit)

	snapshot := pipeline.Metrics().Snapshot()
	assert.Equal(t, int64(2), snapshot.TotalBuilds)
	assert.Equal(t, int64(1), snapshot.CacheHits)
	assert.Equal(t, int64(0), snapshot.FailedBuilds)
}

func TestBuildCallbacks(t *testing.T) {
	out := t.TempDir()
	reg := seedRegistry(publishedPost("alpha", "h1"))

	pipeline := NewPipeline(1, reg, testRenderer(t), nil)
	var seen []string
	pipeline.AddCallback(func(result Result) {
		seen = append(seen, result.Post.Slug)
	})

	_, err := pipeline.Build(context.Background(), Options{OutputDir: out, BaseURL: "https://example.com"})
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha"}, seen)
}

func TestBuildCancelledContext(t *testing.T) {
	reg := seedRegistry(publishedPost("alpha", "h1"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pipeline := NewPipeline(1, reg, testRenderer(t), nil)
	_, err := pipeline.Build(ctx, Options{OutputDir: t.TempDir(), BaseURL: "https://example.com"})
	assert.Error(t, err)
}

func TestMetricsRecord(t *testing.T) {
	m := NewMetrics()

	m.Record(Result{Duration: 10 * time.Millisecond})
	m.Record(Result{Duration: 20 * time.Millisecond, CacheHit: true})
	m.Record(Result{Error: context.Canceled})

	snapshot := m.Snapshot()
	assert.Equal(t, int64(3), snapshot.TotalBuilds)
	assert.Equal(t, int64(2), snapshot.SuccessfulBuilds)
	assert.Equal(t, int64(1), snapshot.FailedBuilds)
	assert.Equal(t, int64(1), snapshot.CacheHits)
	assert.Equal(t, 10*time.Millisecond, m.AverageDuration())
}

func TestMetricsAverageDurationEmpty(t *testing.T) {
	assert.Equal(t, time.Duration(0), NewMetrics().AverageDuration())
}
