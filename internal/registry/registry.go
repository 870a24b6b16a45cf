// Package registry maintains the set of discovered posts and broadcasts
// change events to interested watchers such as the development server.
package registry

import (
	"sort"
	"sync"
	"time"

	"github.com/quillmark/quill/internal/types"
)

// PostRegistry manages all discovered posts
type PostRegistry struct {
	posts     map[string]*types.PostInfo
	conflicts map[string]SlugConflict
	mutex     sync.RWMutex
	watchers  []chan types.PostEvent
}

// SlugConflict records a file whose slug is already owned by another file.
// The first file to register keeps the slug; later files are held here until
// lint reports them or a rescan resolves the collision.
type SlugConflict struct {
	Slug         string
	Path         string
	ExistingPath string
}

// NewPostRegistry creates a new post registry
func NewPostRegistry() *PostRegistry {
	return &PostRegistry{
		posts:     make(map[string]*types.PostInfo),
		conflicts: make(map[string]SlugConflict),
		watchers:  make([]chan types.PostEvent, 0),
	}
}

// Register adds or updates a post in the registry. A post whose slug is
// already taken by a different file is not registered; the collision is
// recorded and reported via Conflicts.
func (r *PostRegistry) Register(post *types.PostInfo) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	eventType := types.EventTypeAdded
	if existing, exists := r.posts[post.Slug]; exists {
		if existing.FilePath != post.FilePath {
			r.conflicts[post.FilePath] = SlugConflict{
				Slug:         post.Slug,
				Path:         post.FilePath,
				ExistingPath: existing.FilePath,
			}
			return
		}
		eventType = types.EventTypeUpdated
	}

	// A rescan under a new slug resolves any earlier collision for this file
	delete(r.conflicts, post.FilePath)
	r.posts[post.Slug] = post

	r.notify(types.PostEvent{
		Type:      eventType,
		Post:      post,
		Timestamp: time.Now(),
	})
}

// Conflicts returns the recorded slug collisions, ordered by file path.
func (r *PostRegistry) Conflicts() []SlugConflict {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	out := make([]SlugConflict, 0, len(r.conflicts))
	for _, c := range r.conflicts {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Get retrieves a post by slug
func (r *PostRegistry) Get(slug string) (*types.PostInfo, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	post, exists := r.posts[slug]
	return post, exists
}

// GetByPath retrieves a post by its source file path
func (r *PostRegistry) GetByPath(path string) (*types.PostInfo, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for _, post := range r.posts {
		if post.FilePath == path {
			return post, true
		}
	}
	return nil, false
}

// All returns all registered posts ordered newest first
func (r *PostRegistry) All() []*types.PostInfo {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make([]*types.PostInfo, 0, len(r.posts))
	for _, post := range r.posts {
		result = append(result, post)
	}
	types.SortPostsByDate(result)
	return result
}

// Published returns non-draft posts ordered newest first
func (r *PostRegistry) Published() []*types.PostInfo {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make([]*types.PostInfo, 0, len(r.posts))
	for _, post := range r.posts {
		if post.Published() {
			result = append(result, post)
		}
	}
	types.SortPostsByDate(result)
	return result
}

// ByTag returns posts carrying the given tag, ordered newest first
func (r *PostRegistry) ByTag(tag string) []*types.PostInfo {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var result []*types.PostInfo
	for _, post := range r.posts {
		for _, t := range post.Tags {
			if t == tag {
				result = append(result, post)
				break
			}
		}
	}
	types.SortPostsByDate(result)
	return result
}

// Remove removes a post from the registry by slug
func (r *PostRegistry) Remove(slug string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	post, exists := r.posts[slug]
	if !exists {
		return
	}

	delete(r.posts, slug)

	r.notify(types.PostEvent{
		Type:      types.EventTypeRemoved,
		Post:      post,
		Timestamp: time.Now(),
	})
}

// RemoveByPath removes the post registered for the given file path, along
// with any slug collision recorded against it
func (r *PostRegistry) RemoveByPath(path string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	delete(r.conflicts, path)

	for slug, post := range r.posts {
		if post.FilePath != path {
			continue
		}
		delete(r.posts, slug)
		r.notify(types.PostEvent{
			Type:      types.EventTypeRemoved,
			Post:      post,
			Timestamp: time.Now(),
		})
		return
	}
}

// Watch returns a channel that receives post events
func (r *PostRegistry) Watch() <-chan types.PostEvent {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	ch := make(chan types.PostEvent, 100)
	r.watchers = append(r.watchers, ch)
	return ch
}

// UnWatch removes a watcher channel and closes it
func (r *PostRegistry) UnWatch(ch <-chan types.PostEvent) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for i, watcher := range r.watchers {
		if watcher == ch {
			close(watcher)
			r.watchers = append(r.watchers[:i], r.watchers[i+1:]...)
			break
		}
	}
}

// Count returns the number of registered posts
func (r *PostRegistry) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return len(r.posts)
}

// notify broadcasts an event without blocking; callers hold the write lock.
func (r *PostRegistry) notify(event types.PostEvent) {
	for _, watcher := range r.watchers {
		select {
		case watcher <- event:
		default:
			// Skip if channel is full
		}
	}
}
