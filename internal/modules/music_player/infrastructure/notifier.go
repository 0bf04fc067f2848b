package infrastructure

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
)

// colorWarning is the soft amber used for notices posted outside a command
// response.
const colorWarning = 0xD4A574

// Notifier posts notices as embeds to a text channel.
type Notifier struct {
	session *discordgo.Session
}

// NewNotifier creates a new Notifier.
func NewNotifier(session *discordgo.Session) *Notifier {
	return &Notifier{session: session}
}

// Post sends a notice embed to the channel.
func (n *Notifier) Post(channelID snowflake.ID, title, description string) error {
	_, err := n.session.ChannelMessageSendEmbed(channelID.String(), &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       colorWarning,
	})
	if err != nil {
		return fmt.Errorf("failed to post notice to channel %d: %w", channelID, err)
	}
	return nil
}
