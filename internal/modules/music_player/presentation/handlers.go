package presentation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/jazzbot/internal/bot"
	"github.com/sglre6355/jazzbot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/jazzbot/internal/modules/music_player/application/usecases"
	"github.com/sglre6355/jazzbot/internal/modules/music_player/domain"
)

// Embed colors.
const (
	colorSuccess = 0x4A7C59 // muted green
	colorWarning = 0xD4A574 // soft amber
	colorError   = 0x8B6F6F // muted red
	colorInfo    = 0x6B7280 // neutral slate
)

// pageSize is the number of tracks shown per /list page.
const pageSize = 10

// CommandHandlers holds all the command handlers.
type CommandHandlers struct {
	registry   *usecases.Registry
	resolver   ports.TrackResolver
	metadata   ports.MetadataResolver
	voiceState ports.VoiceStateProvider
}

// NewCommandHandlers creates new CommandHandlers.
func NewCommandHandlers(
	registry *usecases.Registry,
	resolver ports.TrackResolver,
	metadata ports.MetadataResolver,
	voiceState ports.VoiceStateProvider,
) *CommandHandlers {
	return &CommandHandlers{
		registry:   registry,
		resolver:   resolver,
		metadata:   metadata,
		voiceState: voiceState,
	}
}

// HandlePlay handles the /play command.
func (h *CommandHandlers) HandlePlay(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	roomID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid guild.")
	}
	userID, err := snowflake.Parse(i.Member.User.ID)
	if err != nil {
		return respondError(r, "Invalid user.")
	}
	notifyChannelID, err := snowflake.Parse(i.ChannelID)
	if err != nil {
		return respondError(r, "Invalid channel.")
	}

	voiceChannelID, err := h.voiceState.UserVoiceChannel(roomID, userID)
	if err != nil {
		return respondError(r, "Failed to read your voice state.")
	}
	if voiceChannelID == 0 {
		return respondError(r, "You must be in a voice channel to use this command.")
	}

	session := h.registry.GetOrCreate(roomID)
	session.SetNotifyChannel(notifyChannelID)
	if err := session.EnsureConnected(ctx, voiceChannelID); err != nil {
		return respondError(r, errorMessage(err))
	}

	query := strings.TrimSpace(i.ApplicationCommandData().Options[0].StringValue())

	source := domain.TrackSourceStreamed
	if h.metadata.Matches(query) {
		searchQuery, err := h.metadata.SearchQuery(ctx, query)
		if err != nil {
			slog.Debug("link metadata resolution failed, using raw query",
				"guild", roomID,
				"error", err,
			)
		} else {
			query = searchQuery
			source = domain.TrackSourceLinkResolved
		}
	}

	resolved, err := h.resolver.Resolve(ctx, query)
	if err != nil {
		slog.Warn("track search failed", "guild", roomID, "query", query, "error", err)
		return respondError(r, "Could not find the requested track.")
	}
	if resolved == nil {
		return respondError(r, "Could not find the requested track.")
	}

	track := *resolved
	track.RequesterID = userID
	track.Source = source

	result, err := session.EnqueueOrPlay(ctx, track)
	if err != nil {
		return respondError(r, errorMessage(err))
	}

	if result.Started {
		return respondSuccess(r, "Now Playing", fmt.Sprintf(
			"**%s**\nDuration: %s\nRequested by: <@%d>",
			track.Title, track.FormattedDuration(), userID,
		))
	}
	return respondSuccess(r, "Added to Queue", fmt.Sprintf(
		"**%s**\nDuration: %s\nPosition in queue: %d",
		track.Title, track.FormattedDuration(), result.Position+1,
	))
}

// HandleQueue handles the /queue command. Adding behaves exactly like /play:
// the track starts immediately when the room is idle and is appended
// otherwise.
func (h *CommandHandlers) HandleQueue(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	return h.HandlePlay(s, i, r)
}

// HandleList handles the /list command.
func (h *CommandHandlers) HandleList(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	roomID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid guild.")
	}

	session, ok := h.registry.Get(roomID)
	if !ok {
		return respondError(r, errorMessage(usecases.ErrRoomHasNoSession))
	}

	page := 1
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "page" {
			page = int(opt.IntValue())
		}
	}
	if page < 1 {
		page = 1
	}

	window, total := session.QueueWindow(page-1, pageSize)
	if total == 0 {
		return respondInfo(r, "Queue", "The queue is empty.")
	}
	if len(window) == 0 {
		return respondError(r, fmt.Sprintf("Page %d is empty.", page))
	}

	start := session.QueueCursor() + (page-1)*pageSize
	var sb strings.Builder
	for n, track := range window {
		fmt.Fprintf(&sb, "%d. **%s** (%s)\n", start+n+1, track.Title, track.FormattedDuration())
	}

	// total counts from the current track to the tail, so the copy names
	// the listing as a whole rather than what is still to come.
	totalPages := (total + pageSize - 1) / pageSize
	return respondInfo(r, "Queue", fmt.Sprintf(
		"%s\nPage %d of %d (%d track(s))",
		sb.String(), page, totalPages, total,
	))
}

// HandlePause handles the /pause command.
func (h *CommandHandlers) HandlePause(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	session, ok := h.sessionFor(i)
	if !ok {
		return respondError(r, errorMessage(usecases.ErrRoomHasNoSession))
	}

	if err := session.Pause(context.Background()); err != nil {
		return respondError(r, errorMessage(err))
	}
	return respondSuccess(r, "Paused", "Playback has been paused.")
}

// HandleUnpause handles the /unpause command.
func (h *CommandHandlers) HandleUnpause(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	session, ok := h.sessionFor(i)
	if !ok {
		return respondError(r, errorMessage(usecases.ErrRoomHasNoSession))
	}

	if err := session.Resume(context.Background()); err != nil {
		return respondError(r, errorMessage(err))
	}
	return respondSuccess(r, "Resumed", "Playback has been resumed.")
}

// HandleSkip handles the /skip command.
func (h *CommandHandlers) HandleSkip(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	session, ok := h.sessionFor(i)
	if !ok {
		return respondError(r, errorMessage(usecases.ErrRoomHasNoSession))
	}

	track, err := session.Skip(context.Background())
	if err != nil {
		return respondError(r, errorMessage(err))
	}
	if track == nil {
		return respondSuccess(r, "Skipped", "Reached the end of the queue.")
	}
	return respondSuccess(r, "Skipped", fmt.Sprintf("Now playing: **%s**", track.Title))
}

// HandleJump handles the /jump command.
func (h *CommandHandlers) HandleJump(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	session, ok := h.sessionFor(i)
	if !ok {
		return respondError(r, errorMessage(usecases.ErrRoomHasNoSession))
	}

	position := 0
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "song_index" {
			position = int(opt.IntValue())
		}
	}

	track, err := session.JumpTo(context.Background(), position)
	if err != nil {
		if errors.Is(err, usecases.ErrIndexOutOfRange) {
			return respondError(r, fmt.Sprintf(
				"Please provide a number between 1 and %d.", session.QueueLen(),
			))
		}
		return respondError(r, errorMessage(err))
	}
	return respondSuccess(r, "Jumped", fmt.Sprintf(
		"Now playing: **%s** (Position %d)", track.Title, position,
	))
}

// HandleShuffle handles the /shuffle command.
func (h *CommandHandlers) HandleShuffle(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	session, ok := h.sessionFor(i)
	if !ok {
		return respondError(r, errorMessage(usecases.ErrRoomHasNoSession))
	}

	if err := session.Shuffle(); err != nil {
		if errors.Is(err, usecases.ErrNothingToShuffle) {
			return respond(r, "Cannot Shuffle", errorMessage(err), colorWarning)
		}
		return respondError(r, errorMessage(err))
	}
	return respondSuccess(r, "Shuffled", "The queue has been shuffled.")
}

// HandleQuit handles the /quit command.
func (h *CommandHandlers) HandleQuit(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	roomID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid guild.")
	}

	session, ok := h.registry.Remove(roomID)
	if !ok {
		return respondError(r, errorMessage(usecases.ErrRoomHasNoSession))
	}
	session.Close(context.Background(), "")

	return respondSuccess(r, "Disconnected", "Left the voice channel and cleared the queue.")
}

func (h *CommandHandlers) sessionFor(i *discordgo.InteractionCreate) (*usecases.Session, bool) {
	roomID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return nil, false
	}
	return h.registry.Get(roomID)
}

// errorMessage maps core errors to user-facing embed copy.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, usecases.ErrRoomHasNoSession):
		return "I'm not connected to a voice channel."
	case errors.Is(err, usecases.ErrNothingPlaying):
		return "No track is currently playing."
	case errors.Is(err, usecases.ErrAlreadyPaused):
		return "Playback is already paused."
	case errors.Is(err, usecases.ErrNotPaused):
		return "Playback is not paused."
	case errors.Is(err, usecases.ErrIndexOutOfRange):
		return "That queue position does not exist."
	case errors.Is(err, usecases.ErrQueueEmpty):
		return "The queue is empty."
	case errors.Is(err, usecases.ErrNothingToShuffle):
		return "Need at least 2 tracks to shuffle."
	case errors.Is(err, usecases.ErrBotInDifferentChannel):
		return "I'm already connected to another voice channel. Please use that channel or disconnect me first."
	case errors.Is(err, usecases.ErrTrackNotFound):
		return "Could not load the requested track."
	case errors.Is(err, usecases.ErrTransportUnavailable):
		return "Failed to reach the voice channel."
	default:
		return "Something went wrong while processing your command."
	}
}

func respond(r bot.Responder, title, description string, color int) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{
					Title:       title,
					Description: description,
					Color:       color,
				},
			},
		},
	})
}

func respondSuccess(r bot.Responder, title, description string) error {
	return respond(r, title, description, colorSuccess)
}

func respondInfo(r bot.Responder, title, description string) error {
	return respond(r, title, description, colorInfo)
}

func respondError(r bot.Responder, description string) error {
	return respond(r, "Error", description, colorError)
}
