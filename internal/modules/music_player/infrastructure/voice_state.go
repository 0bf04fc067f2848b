package infrastructure

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
)

// VoiceStateProvider reads voice state from the discordgo state cache.
type VoiceStateProvider struct {
	session *discordgo.Session
	botID   string
}

// NewVoiceStateProvider creates a new VoiceStateProvider.
func NewVoiceStateProvider(session *discordgo.Session) *VoiceStateProvider {
	return &VoiceStateProvider{
		session: session,
		botID:   session.State.User.ID,
	}
}

// UserVoiceChannel returns the voice channel the user is in, or 0.
func (p *VoiceStateProvider) UserVoiceChannel(guildID, userID snowflake.ID) (snowflake.ID, error) {
	voiceState, err := p.session.State.VoiceState(guildID.String(), userID.String())
	if err != nil {
		if err == discordgo.ErrStateNotFound {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to look up voice state: %w", err)
	}
	if voiceState.ChannelID == "" {
		return 0, nil
	}

	channelID, err := snowflake.Parse(voiceState.ChannelID)
	if err != nil {
		return 0, fmt.Errorf("failed to parse voice channel ID: %w", err)
	}
	return channelID, nil
}

// NonBotOccupants counts the human occupants of a voice channel. Members
// missing from the state cache are counted as humans, which errs on the side
// of not disconnecting.
func (p *VoiceStateProvider) NonBotOccupants(guildID, channelID snowflake.ID) (int, error) {
	guild, err := p.session.State.Guild(guildID.String())
	if err != nil {
		return 0, fmt.Errorf("failed to look up guild state: %w", err)
	}

	count := 0
	for _, voiceState := range guild.VoiceStates {
		if voiceState.ChannelID != channelID.String() || voiceState.UserID == p.botID {
			continue
		}
		member, err := p.session.State.Member(guildID.String(), voiceState.UserID)
		if err == nil && member.User != nil && member.User.Bot {
			continue
		}
		count++
	}
	return count, nil
}
