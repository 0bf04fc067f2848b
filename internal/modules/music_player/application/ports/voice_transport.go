package ports

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/jazzbot/internal/modules/music_player/domain"
)

// VoiceTransport defines the audio playback connection for a room.
type VoiceTransport interface {
	// Connect joins the voice channel for the given room.
	Connect(ctx context.Context, roomID, channelID snowflake.ID) error

	// Disconnect leaves the room's voice channel.
	Disconnect(ctx context.Context, roomID snowflake.ID) error

	// Play starts playback of the given track. A paused player resumes:
	// after a successful Play the room is audibly playing regardless of
	// prior pause state.
	Play(ctx context.Context, roomID snowflake.ID, track *domain.Track) error

	// Stop stops the current playback without disconnecting.
	Stop(ctx context.Context, roomID snowflake.ID) error

	// Pause suspends the current playback.
	Pause(ctx context.Context, roomID snowflake.ID) error

	// Resume continues paused playback.
	Resume(ctx context.Context, roomID snowflake.ID) error
}
