package presentation

import "github.com/bwmarrin/discordgo"

// Commands returns all slash commands for the music player module.
func Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "play",
			Description: "Plays a song immediately or starts playback if idle",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "query",
					Description: "Song name, YouTube URL, or Spotify URL",
					Required:    true,
				},
			},
		},
		{
			Name:        "queue",
			Description: "Adds a song to the queue",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "query",
					Description: "Song name, YouTube URL, or Spotify URL",
					Required:    true,
				},
			},
		},
		{
			Name:        "list",
			Description: "Shows the upcoming tracks",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "page",
					Description: "Page of the queue to show (10 tracks per page)",
					Required:    false,
				},
			},
		},
		{
			Name:        "pause",
			Description: "Pauses the currently playing track",
		},
		{
			Name:        "unpause",
			Description: "Resumes paused playback",
		},
		{
			Name:        "skip",
			Description: "Skips the currently playing track",
		},
		{
			Name:        "jump",
			Description: "Jumps to a specific position in the queue",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "song_index",
					Description: "The position in the queue (1-based)",
					Required:    true,
				},
			},
		},
		{
			Name:        "shuffle",
			Description: "Randomizes the order of the remaining queue",
		},
		{
			Name:        "quit",
			Description: "Stops playback, clears the queue, and disconnects",
		},
	}
}
