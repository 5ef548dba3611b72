package domain

import "time"

// Platform support values, derived from the catalog's unity package list.
const (
	PlatformCross   = "Cross-Platform"
	PlatformPC      = "PC Only"
	PlatformQuest   = "Quest Only"
	PlatformUnknown = "Unknown"
)

// WorldMetadata is a snapshot of catalog metadata for one world.
type WorldMetadata struct {
	WorldID     string
	Name        string
	AuthorName  string
	Description string
	ImageURL    string
	Capacity    int
	Platform    string
	FetchedAt   time.Time
}

// Complete reports whether the snapshot has the fields a world post needs
// for display. A row failing this check is a missing_metadata discrepancy.
func (m *WorldMetadata) Complete() bool {
	return m != nil && m.Name != "" && m.AuthorName != ""
}
