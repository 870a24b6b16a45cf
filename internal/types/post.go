// Package types provides common type definitions used throughout the Quill CLI.
// This package contains shared types to avoid circular dependencies between packages.
package types

import (
	"sort"
	"time"
)

// PostInfo contains comprehensive metadata about a discovered blog post,
// including its front matter, body, and change-detection information used by
// the scanner, registry, lint rules, and build pipeline.
type PostInfo struct {
	// Slug is the post identifier used in URLs (e.g., "dependency-injection-basics")
	Slug string
	// Title is the post title from front matter
	Title string
	// Date is the publication timestamp from front matter
	Date time.Time
	// Draft marks a post as unpublished; drafts are excluded from builds by default
	Draft bool
	// Description is an optional front-matter summary used in feeds and meta tags
	Description string
	// Tags lists optional front-matter tags for grouping posts
	Tags []string
	// FilePath is the path to the Markdown file containing the post
	FilePath string
	// Body is the Markdown body following the front-matter block
	Body string
	// Metadata preserves front-matter keys that have no typed field
	Metadata map[string]interface{}
	// LastMod tracks the file's last modification time for change detection
	LastMod time.Time
	// Hash provides a CRC32 checksum for efficient change detection
	Hash string
	// WordCount is the approximate body word count, used by list output
	WordCount int
	// BodyLine is the 1-based file line where the body starts, used to
	// translate body-relative lint positions into file positions
	BodyLine int
}

// Published reports whether the post should appear in build output.
func (p *PostInfo) Published() bool {
	return p != nil && !p.Draft
}

// SortPostsByDate orders posts newest first, breaking ties by slug so the
// ordering is stable across scans.
func SortPostsByDate(posts []*PostInfo) {
	sort.SliceStable(posts, func(i, j int) bool {
		if posts[i].Date.Equal(posts[j].Date) {
			return posts[i].Slug < posts[j].Slug
		}
		return posts[i].Date.After(posts[j].Date)
	})
}

// EventType represents the type of post change event.
type EventType string

const (
	EventTypeAdded   EventType = "added"
	EventTypeUpdated EventType = "updated"
	EventTypeRemoved EventType = "removed"
)

// PostEvent represents a change in the post registry, used for real-time
// notifications to watchers like the development server.
type PostEvent struct {
	// Type indicates the kind of change (added, updated, removed)
	Type EventType
	// Post contains the post information (may be nil for removed events)
	Post *PostInfo
	// Timestamp records when the event occurred for ordering and filtering
	Timestamp time.Time
}
