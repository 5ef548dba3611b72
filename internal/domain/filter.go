package domain

// PostFilter narrows world post listings. Zero value lists everything.
type PostFilter struct {
	SubmitterID *string
	TagID       *string
	Limit       int
	Offset      int
}
