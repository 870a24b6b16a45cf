// Package scanner provides post discovery and parsing for Markdown content.
//
// The scanner traverses content roots to find Markdown files, splits their
// front matter, and registers the resulting posts with the registry, which
// broadcasts change events. Scanning runs concurrently via a worker pool and
// uses CRC32 hashing for change detection so unchanged files are skipped on
// rescan.
package scanner

import (
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"unicode"

	"github.com/quillmark/quill/internal/frontmatter"
	"github.com/quillmark/quill/internal/registry"
	"github.com/quillmark/quill/internal/types"
)

// markdownExtensions are the file extensions recognized as posts.
var markdownExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
}

// ScanJob represents a scanning job for the worker pool containing the file
// path to scan and a result channel for asynchronous communication.
type ScanJob struct {
	// filePath is the path to the Markdown file to be scanned
	filePath string
	// result channel receives the scan result or error asynchronously
	result chan<- ScanResult
}

// ScanResult represents the result of a scanning operation, containing either
// success status or error information for a specific file.
type ScanResult struct {
	// filePath is the path that was scanned
	filePath string
	// err contains any error that occurred during scanning, nil on success
	err error
}

// WorkerPool manages persistent scanning workers so repeated rescans during
// development do not pay goroutine startup costs.
type WorkerPool struct {
	// jobQueue buffers scanning jobs for worker distribution
	jobQueue chan ScanJob
	// workerCount defines the number of concurrent workers (typically NumCPU)
	workerCount int
	// scanner is the shared post scanner instance
	scanner *PostScanner
	// stop signals all workers to terminate gracefully
	stop chan struct{}
	// stopped tracks pool shutdown state
	stopped bool
	// mu protects concurrent access to pool state
	mu sync.RWMutex
}

// PostScanner discovers and parses Markdown posts.
//
// The scanner provides:
// - Recursive content-root traversal with exclude patterns
// - Front-matter extraction via the frontmatter package
// - Concurrent processing via a worker pool
// - Integration with the post registry for event broadcasting
// - File change detection using CRC32 hashing
type PostScanner struct {
	// registry receives discovered posts and broadcasts change events
	registry *registry.PostRegistry
	// excludePatterns holds glob patterns matched against base names
	excludePatterns []string
	// workerPool manages concurrent scanning operations
	workerPool *WorkerPool
}

// NewPostScanner creates a new post scanner backed by a worker pool.
func NewPostScanner(reg *registry.PostRegistry, excludePatterns []string) *PostScanner {
	scanner := &PostScanner{
		registry:        reg,
		excludePatterns: excludePatterns,
	}

	workerCount := runtime.NumCPU()
	if workerCount > 8 {
		workerCount = 8 // Diminishing returns beyond this for file parsing
	}

	scanner.workerPool = newWorkerPool(workerCount, scanner)
	return scanner
}

func newWorkerPool(workerCount int, scanner *PostScanner) *WorkerPool {
	pool := &WorkerPool{
		jobQueue:    make(chan ScanJob, workerCount*2),
		workerCount: workerCount,
		scanner:     scanner,
		stop:        make(chan struct{}),
	}

	for i := 0; i < workerCount; i++ {
		go pool.worker()
	}
	return pool
}

func (wp *WorkerPool) worker() {
	for {
		select {
		case job := <-wp.jobQueue:
			err := wp.scanner.ScanFile(job.filePath)
			job.result <- ScanResult{filePath: job.filePath, err: err}
		case <-wp.stop:
			return
		}
	}
}

// submit queues a job, falling back to synchronous scanning when the pool is
// saturated or shut down.
func (wp *WorkerPool) submit(job ScanJob) {
	wp.mu.RLock()
	stopped := wp.stopped
	wp.mu.RUnlock()

	if stopped {
		err := wp.scanner.ScanFile(job.filePath)
		job.result <- ScanResult{filePath: job.filePath, err: err}
		return
	}

	select {
	case wp.jobQueue <- job:
	default:
		err := wp.scanner.ScanFile(job.filePath)
		job.result <- ScanResult{filePath: job.filePath, err: err}
	}
}

// Shutdown stops all workers gracefully.
func (wp *WorkerPool) Shutdown() {
	wp.mu.Lock()
	defer wp.mu.Unlock()
	if wp.stopped {
		return
	}
	wp.stopped = true
	close(wp.stop)
}

// Close shuts down the scanner's worker pool.
func (s *PostScanner) Close() {
	s.workerPool.Shutdown()
}

// Registry returns the registry this scanner feeds.
func (s *PostScanner) Registry() *registry.PostRegistry {
	return s.registry
}

// ScanDirectory recursively scans a content root for Markdown posts.
func (s *PostScanner) ScanDirectory(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("scanning %s: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("scanning %s: not a directory", root)
	}

	var files []string
	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if s.excluded(info.Name()) && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if !markdownExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		if s.excluded(info.Name()) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return fmt.Errorf("walking %s: %w", root, err)
	}

	return s.scanFiles(files)
}

// scanFiles distributes files across the worker pool and collects results.
func (s *PostScanner) scanFiles(files []string) error {
	if len(files) == 0 {
		return nil
	}

	results := make(chan ScanResult, len(files))
	for _, file := range files {
		go s.workerPool.submit(ScanJob{filePath: file, result: results})
	}

	var scanErrors []string
	for range files {
		result := <-results
		if result.err != nil {
			scanErrors = append(scanErrors, fmt.Sprintf("%s: %v", result.filePath, result.err))
		}
	}

	if len(scanErrors) > 0 {
		return fmt.Errorf("scan failed for %d file(s):\n%s", len(scanErrors), strings.Join(scanErrors, "\n"))
	}
	return nil
}

// ScanFile parses a single Markdown file and registers the post. Files whose
// content hash is unchanged are skipped.
func (s *PostScanner) ScanFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat file: %w", err)
	}

	hash := fmt.Sprintf("%08x", crc32.ChecksumIEEE(content))
	if existing, ok := s.registry.GetByPath(path); ok && existing.Hash == hash {
		return nil
	}

	parsed, err := frontmatter.Parse(string(content))
	if err != nil {
		return fmt.Errorf("parsing front matter: %w", err)
	}

	slug := parsed.Slug
	if slug == "" {
		slug = Slugify(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	}

	post := &types.PostInfo{
		Slug:        slug,
		Title:       parsed.Title,
		Date:        parsed.Date,
		Draft:       parsed.Draft,
		Description: parsed.Description,
		Tags:        parsed.Tags,
		FilePath:    path,
		Body:        parsed.Body,
		Metadata:    parsed.Metadata,
		LastMod:     info.ModTime(),
		Hash:        hash,
		WordCount:   len(strings.Fields(parsed.Body)),
		BodyLine:    parsed.BodyLine,
	}

	s.registry.Register(post)
	return nil
}

// excluded matches a base name against the configured exclude patterns.
func (s *PostScanner) excluded(name string) bool {
	for _, pattern := range s.excludePatterns {
		if matched, err := filepath.Match(pattern, name); err == nil && matched {
			return true
		}
	}
	return strings.HasPrefix(name, ".")
}

// Slugify derives a URL slug from a file stem or title: lowercase, spaces and
// underscores collapse to hyphens, everything outside [a-z0-9-] is dropped.
func Slugify(s string) string {
	var b strings.Builder
	lastHyphen := false
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		case r == ' ' || r == '_' || r == '-' || r == '.':
			if !lastHyphen && b.Len() > 0 {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
