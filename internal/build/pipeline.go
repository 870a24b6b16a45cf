// Package build renders posts to a static site through a concurrent pipeline
// with content-hash caching and build metrics, and writes the output tree
// (post pages, index, feed, sitemap, assets).
package build

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/quillmark/quill/internal/logging"
	"github.com/quillmark/quill/internal/registry"
	"github.com/quillmark/quill/internal/renderer"
	"github.com/quillmark/quill/internal/types"
)

// Pipeline manages the build process for posts
type Pipeline struct {
	renderer  *renderer.Renderer
	cache     *Cache
	registry  *registry.PostRegistry
	workers   int
	metrics   *Metrics
	callbacks []Callback
	logger    logging.Logger
	mutex     sync.Mutex
}

// Task represents a build task
type Task struct {
	Post      *types.PostInfo
	Timestamp time.Time
}

// Result represents the result of building one post
type Result struct {
	Post     *types.PostInfo
	Output   []byte
	Error    error
	Duration time.Duration
	CacheHit bool
}

// Callback is called when a post build completes
type Callback func(result Result)

// Options configures a site build.
type Options struct {
	// IncludeDrafts renders draft posts into the output
	IncludeDrafts bool
	// OutputDir is the directory receiving the generated site
	OutputDir string
	// BaseURL is the site's public URL, used in feed and sitemap
	BaseURL string
	// SiteTitle names the site in the feed
	SiteTitle string
}

// NewPipeline creates a build pipeline.
func NewPipeline(workers int, reg *registry.PostRegistry, rend *renderer.Renderer, logger logging.Logger) *Pipeline {
	if workers < 1 {
		workers = 1
	}
	return &Pipeline{
		renderer:  rend,
		cache:     NewCache(50*1024*1024, time.Hour),
		registry:  reg,
		workers:   workers,
		metrics:   NewMetrics(),
		callbacks: make([]Callback, 0),
		logger:    logger,
	}
}

// AddCallback registers a completion callback.
func (p *Pipeline) AddCallback(cb Callback) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.callbacks = append(p.callbacks, cb)
}

// Metrics returns the pipeline's metrics recorder.
func (p *Pipeline) Metrics() *Metrics {
	return p.metrics
}

// Build renders the selected posts and writes the complete site. It returns
// the rendered results; an error is returned when any post fails or output
// cannot be written.
func (p *Pipeline) Build(ctx context.Context, opts Options) ([]Result, error) {
	posts := p.registry.Published()
	if opts.IncludeDrafts {
		posts = p.registry.All()
	}

	results := p.renderAll(ctx, posts)

	var failed int
	for _, result := range results {
		if result.Error != nil {
			failed++
			if p.logger != nil {
				p.logger.Error(ctx, result.Error, "Post build failed", "slug", result.Post.Slug)
			}
		}
	}
	if failed > 0 {
		return results, fmt.Errorf("%d of %d post(s) failed to build", failed, len(results))
	}

	writer := NewSiteWriter(opts.OutputDir, opts.BaseURL, opts.SiteTitle)
	for _, result := range results {
		if err := writer.WritePost(result.Post.Slug, result.Output); err != nil {
			return results, err
		}
	}

	indexHTML, err := p.renderer.RenderIndex(posts)
	if err != nil {
		return results, err
	}
	if err := writer.WriteIndex(indexHTML); err != nil {
		return results, err
	}
	if err := writer.WriteFeed(posts); err != nil {
		return results, err
	}
	if err := writer.WriteSitemap(posts); err != nil {
		return results, err
	}
	if err := writer.WriteAssets(); err != nil {
		return results, err
	}

	if p.logger != nil {
		snapshot := p.metrics.Snapshot()
		p.logger.Info(ctx, "Site build completed",
			"posts", len(results),
			"cache_hits", snapshot.CacheHits,
			"output", opts.OutputDir,
		)
	}
	return results, nil
}

// renderAll renders posts concurrently through the worker pool.
func (p *Pipeline) renderAll(ctx context.Context, posts []*types.PostInfo) []Result {
	tasks := make(chan Task, len(posts))
	out := make(chan Result, len(posts))

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range tasks {
				select {
				case <-ctx.Done():
					out <- Result{Post: task.Post, Error: ctx.Err()}
					continue
				default:
				}
				out <- p.renderOne(task)
			}
		}()
	}

	for _, post := range posts {
		tasks <- Task{Post: post, Timestamp: time.Now()}
	}
	close(tasks)
	wg.Wait()
	close(out)

	results := make([]Result, 0, len(posts))
	for result := range out {
		p.metrics.Record(result)
		p.mutex.Lock()
		callbacks := p.callbacks
		p.mutex.Unlock()
		for _, cb := range callbacks {
			cb(result)
		}
		results = append(results, result)
	}
	return results
}

// renderOne renders a single post, consulting the content-hash cache first.
func (p *Pipeline) renderOne(task Task) Result {
	start := time.Now()
	post := task.Post

	if cached, ok := p.cache.Get(post.Hash); ok {
		return Result{
			Post:     post,
			Output:   cached,
			Duration: time.Since(start),
			CacheHit: true,
		}
	}

	output, err := p.renderer.RenderPost(post)
	if err != nil {
		return Result{Post: post, Error: err, Duration: time.Since(start)}
	}

	p.cache.Set(post.Hash, output)
	return Result{
		Post:     post,
		Output:   output,
		Duration: time.Since(start),
	}
}
