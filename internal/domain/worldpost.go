package domain

import (
	"time"

	"github.com/google/uuid"
)

// WorldPost is a registry record for one submitted world, mirrored to a
// forum thread. (workspace_id, world_id) is unique per workspace; thread_id
// is unique per workspace and set once at creation (changed only by repair).
type WorldPost struct {
	ID          uuid.UUID
	WorkspaceID string
	WorldID     string
	WorldLink   string
	ThreadID    string
	SubmitterID string
	TagIDs      []string
	CreatedAt   time.Time
}

// HasTagSet reports whether the post's tags equal the given set,
// ignoring order and duplicates.
func (p *WorldPost) HasTagSet(tagIDs []string) bool {
	return EqualTagSets(p.TagIDs, tagIDs)
}

// EqualTagSets compares two tag id lists as sets.
func EqualTagSets(a, b []string) bool {
	as := make(map[string]struct{}, len(a))
	for _, id := range a {
		as[id] = struct{}{}
	}
	bs := make(map[string]struct{}, len(b))
	for _, id := range b {
		bs[id] = struct{}{}
	}
	if len(as) != len(bs) {
		return false
	}
	for id := range as {
		if _, ok := bs[id]; !ok {
			return false
		}
	}
	return true
}
