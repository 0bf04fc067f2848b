package ports

import (
	"context"

	"github.com/sglre6355/jazzbot/internal/modules/music_player/domain"
)

// TrackResolver resolves a search term, URL, or stored track identifier to a
// playable track. It is used both for the initial search and for refreshing a
// queued entry's playable form at skip/jump time.
type TrackResolver interface {
	// Resolve returns the best match for the query, or (nil, nil) when
	// nothing matched.
	Resolve(ctx context.Context, query string) (*domain.Track, error)
}
