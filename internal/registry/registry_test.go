package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillmark/quill/internal/types"
)

func newPost(slug string, date time.Time, draft bool) *types.PostInfo {
	return &types.PostInfo{
		Slug:     slug,
		Title:    slug,
		Date:     date,
		Draft:    draft,
		FilePath: "content/" + slug + ".md",
	}
}

func TestRegisterAndGet(t *testing.T) {
	reg := NewPostRegistry()

	post := newPost("first", time.Now(), false)
	reg.Register(post)

	got, ok := reg.Get("first")
	require.True(t, ok)
	assert.Equal(t, post, got)
	assert.Equal(t, 1, reg.Count())

	_, ok = reg.Get("missing")
	assert.False(t, ok)
}

func TestGetByPath(t *testing.T) {
	reg := NewPostRegistry()
	reg.Register(newPost("first", time.Now(), false))

	got, ok := reg.GetByPath("content/first.md")
	require.True(t, ok)
	assert.Equal(t, "first", got.Slug)

	_, ok = reg.GetByPath("content/other.md")
	assert.False(t, ok)
}

func TestAllOrderedNewestFirst(t *testing.T) {
	reg := NewPostRegistry()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	reg.Register(newPost("oldest", base, false))
	reg.Register(newPost("newest", base.AddDate(0, 2, 0), false))
	reg.Register(newPost("middle", base.AddDate(0, 1, 0), false))

	all := reg.All()
	require.Len(t, all, 3)
	assert.Equal(t, "newest", all[0].Slug)
	assert.Equal(t, "middle", all[1].Slug)
	assert.Equal(t, "oldest", all[2].Slug)
}

func TestAllTieBreaksBySlug(t *testing.T) {
	reg := NewPostRegistry()
	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	reg.Register(newPost("bravo", date, false))
	reg.Register(newPost("alpha", date, false))

	all := reg.All()
	require.Len(t, all, 2)
	assert.Equal(t, "alpha", all[0].Slug)
	assert.Equal(t, "bravo", all[1].Slug)
}

func TestPublishedExcludesDrafts(t *testing.T) {
	reg := NewPostRegistry()
	now := time.Now()

	reg.Register(newPost("published", now, false))
	reg.Register(newPost("draft", now.Add(time.Hour), true))

	published := reg.Published()
	require.Len(t, published, 1)
	assert.Equal(t, "published", published[0].Slug)

	assert.Len(t, reg.All(), 2)
}

func TestByTag(t *testing.T) {
	reg := NewPostRegistry()
	now := time.Now()

	tagged := newPost("tagged", now, false)
	tagged.Tags = []string{"go", "design"}
	reg.Register(tagged)
	reg.Register(newPost("untagged", now, false))

	result := reg.ByTag("go")
	require.Len(t, result, 1)
	assert.Equal(t, "tagged", result[0].Slug)

	assert.Empty(t, reg.ByTag("missing"))
}

func TestRemove(t *testing.T) {
	reg := NewPostRegistry()
	reg.Register(newPost("first", time.Now(), false))

	reg.Remove("first")
	assert.Equal(t, 0, reg.Count())

	// Removing a missing slug is a no-op
	reg.Remove("first")
	assert.Equal(t, 0, reg.Count())
}

func TestRemoveByPath(t *testing.T) {
	reg := NewPostRegistry()
	reg.Register(newPost("first", time.Now(), false))

	reg.RemoveByPath("content/first.md")
	assert.Equal(t, 0, reg.Count())
}

func TestRegisterSlugConflict(t *testing.T) {
	reg := NewPostRegistry()
	first := newPost("shared", time.Now(), false)
	second := newPost("shared", time.Now(), false)
	second.FilePath = "content/other/shared.md"

	reg.Register(first)
	reg.Register(second)

	// First file keeps the slug; the loser is recorded, not silently dropped
	assert.Equal(t, 1, reg.Count())
	got, ok := reg.Get("shared")
	require.True(t, ok)
	assert.Equal(t, "content/shared.md", got.FilePath)

	conflicts := reg.Conflicts()
	require.Len(t, conflicts, 1)
	assert.Equal(t, "shared", conflicts[0].Slug)
	assert.Equal(t, "content/other/shared.md", conflicts[0].Path)
	assert.Equal(t, "content/shared.md", conflicts[0].ExistingPath)
}

func TestRegisterConflictResolvedByRename(t *testing.T) {
	reg := NewPostRegistry()
	reg.Register(newPost("shared", time.Now(), false))

	loser := newPost("shared", time.Now(), false)
	loser.FilePath = "content/other/shared.md"
	reg.Register(loser)
	require.Len(t, reg.Conflicts(), 1)

	// The file is rescanned under a unique slug
	renamed := newPost("unique", time.Now(), false)
	renamed.FilePath = "content/other/shared.md"
	reg.Register(renamed)

	assert.Empty(t, reg.Conflicts())
	assert.Equal(t, 2, reg.Count())
}

func TestRemoveByPathClearsConflict(t *testing.T) {
	reg := NewPostRegistry()
	reg.Register(newPost("shared", time.Now(), false))

	loser := newPost("shared", time.Now(), false)
	loser.FilePath = "content/other/shared.md"
	reg.Register(loser)
	require.Len(t, reg.Conflicts(), 1)

	reg.RemoveByPath("content/other/shared.md")
	assert.Empty(t, reg.Conflicts())
	assert.Equal(t, 1, reg.Count())
}

func TestWatchReceivesEvents(t *testing.T) {
	reg := NewPostRegistry()
	events := reg.Watch()

	post := newPost("first", time.Now(), false)
	reg.Register(post)

	select {
	case event := <-events:
		assert.Equal(t, types.EventTypeAdded, event.Type)
		assert.Equal(t, "first", event.Post.Slug)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for added event")
	}

	reg.Register(post)
	select {
	case event := <-events:
		assert.Equal(t, types.EventTypeUpdated, event.Type)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for updated event")
	}

	reg.Remove("first")
	select {
	case event := <-events:
		assert.Equal(t, types.EventTypeRemoved, event.Type)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for removed event")
	}

	reg.UnWatch(events)
	_, open := <-events
	assert.False(t, open)
}
