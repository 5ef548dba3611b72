package submission

import (
	"sort"

	"github.com/vrcshowcase/showcase-backend/internal/domain"
)

// SubmitInput carries one world submission.
type SubmitInput struct {
	WorkspaceID string
	SubmitterID string
	// WorldInput is the raw user input: a world URL in any accepted form or
	// a bare world id.
	WorldInput string
	TagIDs     []string
}

func (in SubmitInput) validate() error {
	var errs []domain.FieldError
	if in.WorkspaceID == "" {
		errs = append(errs, domain.FieldError{Field: "workspace_id", Message: "required"})
	}
	if in.SubmitterID == "" {
		errs = append(errs, domain.FieldError{Field: "submitter_id", Message: "required"})
	}
	if in.WorldInput == "" {
		errs = append(errs, domain.FieldError{Field: "world", Message: "required"})
	}
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// normalizedTags deduplicates and sorts the requested tag ids.
func (in SubmitInput) normalizedTags() []string {
	seen := make(map[string]bool, len(in.TagIDs))
	tags := make([]string, 0, len(in.TagIDs))
	for _, id := range in.TagIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		tags = append(tags, id)
	}
	sort.Strings(tags)
	return tags
}
