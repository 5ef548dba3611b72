package provider

// WorldResult is the structured result from a world catalog provider.
type WorldResult struct {
	WorldID     string
	Name        string
	AuthorName  string
	Description string
	ImageURL    string
	Capacity    int
	Platform    string
}
