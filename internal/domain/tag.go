package domain

import "time"

// Tag is a workspace-scoped copy of an external forum tag definition.
// Tags are identified by the external id; renames overwrite in place.
type Tag struct {
	WorkspaceID string
	TagID       string
	Name        string
	Emoji       *string
	UpdatedAt   time.Time
}

// ExternalTagDef is a tag definition as reported by the forum platform.
// Moderated tags can only be applied by forum moderators and are excluded
// from the catalog.
type ExternalTagDef struct {
	ID        string
	Name      string
	Emoji     *string
	Moderated bool
}

// TagSyncResult summarizes one catalog sync pass. StaleTagIDs are tags
// present in the store but absent from the live definitions; they are
// reported, not deleted, since in-flight posts may still reference them.
type TagSyncResult struct {
	Added       int
	Updated     int
	Skipped     int
	StaleTagIDs []string
}
