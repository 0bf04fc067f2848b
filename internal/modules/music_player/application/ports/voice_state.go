package ports

import "github.com/disgoorg/snowflake/v2"

// VoiceStateProvider answers questions about gateway voice state.
type VoiceStateProvider interface {
	// UserVoiceChannel returns the voice channel the user is currently in,
	// or 0 if they are not in one.
	UserVoiceChannel(guildID, userID snowflake.ID) (snowflake.ID, error)

	// NonBotOccupants counts the human occupants of a voice channel.
	NonBotOccupants(guildID, channelID snowflake.ID) (int, error)
}
