package domain

import (
	"strconv"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// Track represents one playable audio item. It is immutable once constructed;
// the Identifier is the durable handle used to re-resolve the track for
// playback, while Encoded is the transient playable form refreshed at
// skip/jump time.
type Track struct {
	Title       string
	Source      TrackSource
	Duration    time.Duration
	RequesterID snowflake.ID
	Identifier  string
	Encoded     string
	URI         string
}

// FormattedDuration returns the duration as mm:ss, or h:mm:ss for tracks of an
// hour or longer.
func (t Track) FormattedDuration() string {
	totalSeconds := int(t.Duration.Seconds())
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	if hours > 0 {
		return strconv.Itoa(hours) + ":" + pad(minutes) + ":" + pad(seconds)
	}
	return strconv.Itoa(minutes) + ":" + pad(seconds)
}

func pad(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
