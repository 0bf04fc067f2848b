package domain

// TrackSource describes how a track entered the queue. It is a closed variant
// decided once at the resolver boundary.
type TrackSource string

const (
	// TrackSourceStreamed covers tracks found directly from a search term or
	// streamable URL.
	TrackSourceStreamed TrackSource = "streamed"

	// TrackSourceLinkResolved covers tracks that went through the link
	// metadata resolver before being searched.
	TrackSourceLinkResolved TrackSource = "link_resolved"
)
