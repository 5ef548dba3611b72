package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// worldIDPattern is the canonical VRChat world identifier:
// "wrld_" followed by a UUID.
var worldIDPattern = regexp.MustCompile(`^wrld_[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// worldIDSearch finds a world identifier embedded anywhere in free text
// (thread bodies, pasted links).
var worldIDSearch = regexp.MustCompile(`wrld_[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)

// ExtractWorldID normalizes any accepted input form to the canonical world id:
//   - bare id: wrld_xxxxxxxx-…
//   - old link: https://vrchat.com/home/world/wrld_…
//   - new link: https://vrchat.com/home/world/wrld_…/info
//
// Trailing slashes and query parameters are ignored. Returns
// ErrInvalidIdentifier when no world id can be found.
func ExtractWorldID(input string) (string, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return "", fmt.Errorf("empty input: %w", ErrInvalidIdentifier)
	}

	// Drop query parameters and fragments before path inspection.
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimRight(s, "/")
	s = strings.TrimSuffix(s, "/info")

	if worldIDPattern.MatchString(s) {
		return strings.ToLower(s), nil
	}

	// URL form: the id is the path segment after "world".
	parts := strings.Split(s, "/")
	for i, part := range parts {
		if part == "world" && i+1 < len(parts) && worldIDPattern.MatchString(parts[i+1]) {
			return strings.ToLower(parts[i+1]), nil
		}
	}

	// Last resort: any segment that looks like a world id.
	for _, part := range parts {
		if worldIDPattern.MatchString(part) {
			return strings.ToLower(part), nil
		}
	}

	return "", fmt.Errorf("%q: %w", input, ErrInvalidIdentifier)
}

// FindWorldID searches free text for an embedded world identifier.
// Used by the drift scanner to recover ids from live thread content.
// Returns "" when none is present.
func FindWorldID(text string) string {
	return strings.ToLower(worldIDSearch.FindString(text))
}

// WorldLink returns the canonical URL form of a world id.
func WorldLink(worldID string) string {
	return "https://vrchat.com/home/world/" + worldID + "/info"
}
