// Package lint implements document-hygiene checks for post files: required
// titles, valid publication dates, balanced fenced blocks, resolvable links,
// and slug uniqueness. Each rule produces file-addressed diagnostics; the
// runner aggregates them through a shared collector.
package lint

import (
	"context"
	"fmt"
	"time"

	"github.com/quillmark/quill/internal/errors"
	"github.com/quillmark/quill/internal/logging"
	"github.com/quillmark/quill/internal/registry"
	"github.com/quillmark/quill/internal/types"
)

// Rule checks one post and reports diagnostics to the collector.
type Rule interface {
	// Name identifies the rule in diagnostics (e.g., "fence-closed")
	Name() string
	// Check inspects a post and adds any findings to the collector
	Check(ctx context.Context, post *types.PostInfo, collector *errors.Collector)
}

// Runner runs all configured rules over the registry's posts.
type Runner struct {
	registry *registry.PostRegistry
	rules    []Rule
	logger   logging.Logger
	now      func() time.Time
}

// NewRunner creates a lint runner with the default rule set.
func NewRunner(reg *registry.PostRegistry, linkResolver *LinkResolver, logger logging.Logger) *Runner {
	r := &Runner{
		registry: reg,
		logger:   logger,
		now:      time.Now,
	}
	r.rules = []Rule{
		&TitleRule{},
		&DateRule{now: r.nowFunc},
		&FenceRule{},
		&LinkRule{resolver: linkResolver},
	}
	return r
}

func (r *Runner) nowFunc() time.Time {
	return r.now()
}

// AddRule appends a custom rule to the runner.
func (r *Runner) AddRule(rule Rule) {
	r.rules = append(r.rules, rule)
}

// Run checks every registered post and cross-post invariants, returning the
// collected diagnostics. The returned collector's HasErrors result drives the
// lint command's exit code.
func (r *Runner) Run(ctx context.Context) *errors.Collector {
	collector := errors.NewCollector()
	posts := r.registry.All()

	for _, post := range posts {
		select {
		case <-ctx.Done():
			collector.AddError(ctx.Err())
			return collector
		default:
		}
		for _, rule := range r.rules {
			rule.Check(ctx, post, collector)
		}
	}

	r.checkDuplicateSlugs(posts, collector)

	if r.logger != nil {
		r.logger.Info(ctx, "Lint completed",
			"posts", len(posts),
			"diagnostics", collector.Count(),
		)
	}
	return collector
}

// checkDuplicateSlugs flags posts whose slugs collide. The registry refuses
// to register a second file under a taken slug and records the collision, so
// the main source here is the registry's conflict list; the slice scan covers
// posts assembled outside the registry.
func (r *Runner) checkDuplicateSlugs(posts []*types.PostInfo, collector *errors.Collector) {
	seen := make(map[string]string, len(posts))
	for _, post := range posts {
		if prev, ok := seen[post.Slug]; ok {
			collector.Add(errors.Diagnostic{
				Rule:     "duplicate-slug",
				Slug:     post.Slug,
				File:     post.FilePath,
				Message:  fmt.Sprintf("slug %q already used by %s", post.Slug, prev),
				Severity: errors.SeverityError,
			})
			continue
		}
		seen[post.Slug] = post.FilePath
	}

	if r.registry == nil {
		return
	}
	for _, c := range r.registry.Conflicts() {
		collector.Add(errors.Diagnostic{
			Rule:     "duplicate-slug",
			Slug:     c.Slug,
			File:     c.Path,
			Message:  fmt.Sprintf("slug %q already used by %s", c.Slug, c.ExistingPath),
			Severity: errors.SeverityError,
		})
	}
}

// TitleRule enforces that every post has a non-empty title.
type TitleRule struct{}

// Name implements Rule.
func (r *TitleRule) Name() string { return "title-required" }

// Check implements Rule.
func (r *TitleRule) Check(_ context.Context, post *types.PostInfo, collector *errors.Collector) {
	if post.Title != "" {
		return
	}
	collector.Add(errors.Diagnostic{
		Rule:     r.Name(),
		Slug:     post.Slug,
		File:     post.FilePath,
		Line:     1,
		Message:  "post has no title",
		Severity: errors.SeverityError,
	})
}

// DateRule enforces that published posts carry a parseable, non-future date.
type DateRule struct {
	now func() time.Time
}

// Name implements Rule.
func (r *DateRule) Name() string { return "date-valid" }

// Check implements Rule.
func (r *DateRule) Check(_ context.Context, post *types.PostInfo, collector *errors.Collector) {
	if post.Date.IsZero() {
		severity := errors.SeverityWarning
		message := "draft has no date"
		if !post.Draft {
			severity = errors.SeverityError
			message = "published post has no valid date"
		}
		collector.Add(errors.Diagnostic{
			Rule:     r.Name(),
			Slug:     post.Slug,
			File:     post.FilePath,
			Line:     1,
			Message:  message,
			Severity: severity,
		})
		return
	}

	if r.now != nil && post.Date.After(r.now()) && !post.Draft {
		collector.Add(errors.Diagnostic{
			Rule:     r.Name(),
			Slug:     post.Slug,
			File:     post.FilePath,
			Line:     1,
			Message:  fmt.Sprintf("publication date %s is in the future", post.Date.Format(time.RFC3339)),
			Severity: errors.SeverityWarning,
		})
	}
}
