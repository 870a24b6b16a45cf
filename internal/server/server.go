// Package server implements the development server: it serves rendered posts
// directly from the registry (drafts included), watches content for changes,
// and pushes reload notifications to connected browsers over WebSocket.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/quillmark/quill/internal/build"
	"github.com/quillmark/quill/internal/config"
	"github.com/quillmark/quill/internal/lint"
	"github.com/quillmark/quill/internal/logging"
	"github.com/quillmark/quill/internal/registry"
	"github.com/quillmark/quill/internal/renderer"
	"github.com/quillmark/quill/internal/scanner"
	"github.com/quillmark/quill/internal/types"
	"github.com/quillmark/quill/internal/watcher"
)

// DevServer serves posts during authoring with live reload.
type DevServer struct {
	config   *config.Config
	registry *registry.PostRegistry
	scanner  *scanner.PostScanner
	renderer *renderer.Renderer
	watcher  *watcher.FileWatcher
	linter   *lint.Runner
	logger   logging.Logger

	httpServer *http.Server

	register     chan *client
	unregister   chan *websocket.Conn
	clients      map[*websocket.Conn]*client
	clientsMutex sync.RWMutex
}

// New creates a development server.
func New(cfg *config.Config, scan *scanner.PostScanner, rend *renderer.Renderer, logger logging.Logger) (*DevServer, error) {
	debounce := time.Duration(cfg.Development.DebounceMs) * time.Millisecond
	fw, err := watcher.NewFileWatcher(debounce)
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	s := &DevServer{
		config:     cfg,
		registry:   scan.Registry(),
		scanner:    scan,
		renderer:   rend,
		watcher:    fw,
		logger:     logger.WithComponent("server"),
		register:   make(chan *client),
		unregister: make(chan *websocket.Conn),
		clients:    make(map[*websocket.Conn]*client),
	}

	fw.AddFilter(watcher.MarkdownFilter)
	fw.AddFilter(watcher.NoHiddenFilter)
	fw.AddFilter(watcher.NoOutputFilter(cfg.Build.OutputDir))
	fw.AddHandler(s.handleFileChanges)

	if cfg.Development.LintOnReload {
		resolver := lint.NewLinkResolver(rend.RenderMarkdown, func(slug string) bool {
			_, ok := s.registry.Get(slug)
			return ok
		})
		s.linter = lint.NewRunner(s.registry, resolver, s.logger)
	}

	return s, nil
}

// Start runs the server until the context is cancelled.
func (s *DevServer) Start(ctx context.Context) error {
	for _, dir := range s.config.Content.Dirs {
		if err := s.scanner.ScanDirectory(dir); err != nil {
			s.logger.Warn(ctx, err, "Initial scan reported errors", "dir", dir)
		}
		if err := s.watcher.AddRecursive(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}

	if err := s.watcher.Start(ctx); err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	go s.runHub(ctx)
	go s.watchPosts(ctx, s.registry.Watch())

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/posts/", s.handlePost)
	mux.HandleFunc("/assets/style.css", s.handleStylesheet)
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           chain(mux, s.loggingMiddleware, securityHeadersMiddleware),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Development server listening", "addr", "http://"+addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.watcher.Stop()
	return s.httpServer.Shutdown(shutdownCtx)
}

// handleFileChanges rescans changed files. Registry events raised by the
// rescan drive the reload broadcast via watchPosts.
func (s *DevServer) handleFileChanges(events []watcher.ChangeEvent) error {
	ctx := context.Background()
	for _, event := range events {
		switch event.Type {
		case watcher.EventTypeDeleted, watcher.EventTypeRenamed:
			s.registry.RemoveByPath(event.Path)
		default:
			if err := s.scanner.ScanFile(event.Path); err != nil {
				s.logger.Warn(ctx, err, "Rescan failed", "path", event.Path)
			}
		}
	}
	s.logger.Debug(ctx, "Content changed", "events", len(events))

	if s.linter != nil {
		collector := s.linter.Run(ctx)
		for _, diag := range collector.Diagnostics() {
			d := diag
			s.logger.Warn(ctx, &d, "Lint finding", "rule", d.Rule)
		}
	}
	return nil
}

// watchPosts forwards registry change events to connected browsers as reload
// notifications until the context is cancelled.
func (s *DevServer) watchPosts(ctx context.Context, events <-chan types.PostEvent) {
	defer s.registry.UnWatch(events)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			s.logger.Debug(ctx, "Post changed", "slug", event.Post.Slug, "type", string(event.Type))
			s.broadcast([]byte(`{"type":"reload"}`))
		}
	}
}

func (s *DevServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	posts := s.registry.Published()
	if s.config.Development.ShowDrafts {
		posts = s.registry.All()
	}

	html, err := s.renderer.RenderIndex(posts)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeHTML(w, html)
}

func (s *DevServer) handlePost(w http.ResponseWriter, r *http.Request) {
	slug := strings.Trim(strings.TrimPrefix(r.URL.Path, "/posts/"), "/")
	if slug == "" || strings.Contains(slug, "/") {
		http.NotFound(w, r)
		return
	}

	post, ok := s.registry.Get(slug)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if post.Draft && !s.config.Development.ShowDrafts {
		http.NotFound(w, r)
		return
	}

	html, err := s.renderer.RenderPost(post)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeHTML(w, html)
}

func (s *DevServer) handleStylesheet(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	_, _ = w.Write([]byte(build.DefaultStylesheet()))
}

func (s *DevServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status":"ok","posts":%d}`, s.registry.Count())
}

// writeHTML writes a rendered page with the live reload script injected.
func (s *DevServer) writeHTML(w http.ResponseWriter, html []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if s.config.Development.LiveReload {
		html = injectReloadScript(html)
	}
	_, _ = w.Write(html)
}

// injectReloadScript adds the reload listener before </body>.
func injectReloadScript(html []byte) []byte {
	const script = `<script>
(function() {
  var proto = location.protocol === "https:" ? "wss://" : "ws://";
  var ws = new WebSocket(proto + location.host + "/ws");
  ws.onmessage = function(ev) {
    try { if (JSON.parse(ev.data).type === "reload") location.reload(); } catch (e) {}
  };
})();
</script>`
	idx := strings.LastIndex(string(html), "</body>")
	if idx < 0 {
		return append(html, []byte(script)...)
	}
	out := make([]byte, 0, len(html)+len(script))
	out = append(out, html[:idx]...)
	out = append(out, []byte(script)...)
	out = append(out, html[idx:]...)
	return out
}
