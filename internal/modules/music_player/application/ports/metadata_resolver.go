package ports

import "context"

// MetadataResolver turns an external link format into a plain search string,
// for links the track resolver cannot load directly.
type MetadataResolver interface {
	// Matches reports whether the query is a link this resolver understands.
	Matches(query string) bool

	// SearchQuery resolves the link to a searchable "artist title" string.
	SearchQuery(ctx context.Context, url string) (string, error)
}
