package discord

import "github.com/vrcshowcase/showcase-backend/internal/domain"

// apiChannel mirrors the subset of the Discord channel object the engine uses.
// Threads and forum channels share the same shape.
type apiChannel struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	ParentID      string   `json:"parent_id"`
	AppliedTags   []string `json:"applied_tags"`
	AvailableTags []apiTag `json:"available_tags"`
}

type apiTag struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	EmojiName *string `json:"emoji_name"`
	Moderated bool    `json:"moderated"`
}

type apiMessage struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

type threadListResponse struct {
	Threads []apiChannel `json:"threads"`
}

type createThreadRequest struct {
	Name        string        `json:"name"`
	AppliedTags []string      `json:"applied_tags"`
	Message     threadMessage `json:"message"`
}

type threadMessage struct {
	Content string `json:"content"`
}

func (ch apiChannel) toSnapshot() *domain.LiveThreadSnapshot {
	tags := ch.AppliedTags
	if tags == nil {
		tags = []string{}
	}
	return &domain.LiveThreadSnapshot{
		ThreadID:      ch.ID,
		Title:         ch.Name,
		AppliedTagIDs: tags,
	}
}
