package domain

import "time"

// ForumConfig is the per-workspace forum channel configuration: the forum
// channel hosting world threads and the pinned control thread used as the
// submission entry point. Created by an external setup action; clearing it
// never cascades to world posts.
type ForumConfig struct {
	WorkspaceID     string
	ForumChannelID  string
	ControlThreadID string
	CreatedAt       time.Time
}

// LiveThreadSnapshot is a forum thread as observed on the platform.
type LiveThreadSnapshot struct {
	ThreadID      string
	Title         string
	AppliedTagIDs []string
	RawContent    string
}
