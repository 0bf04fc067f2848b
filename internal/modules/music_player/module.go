package music_player

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/caarlos0/env/v11"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/jazzbot/internal/bot"
	"github.com/sglre6355/jazzbot/internal/modules/music_player/application/usecases"
	"github.com/sglre6355/jazzbot/internal/modules/music_player/infrastructure"
	"github.com/sglre6355/jazzbot/internal/modules/music_player/presentation"
)

func init() {
	bot.Register(&MusicPlayerModule{})
}

// Compile-time interface checks.
var _ bot.ConfigurableModule = (*MusicPlayerModule)(nil)

// MusicPlayerModule provides music playback commands.
type MusicPlayerModule struct {
	config          *Config
	commandHandlers *presentation.CommandHandlers
	lavalinkAdapter *infrastructure.LavalinkAdapter
	voiceState      *infrastructure.VoiceStateProvider
	registry        *usecases.Registry
	scheduler       *usecases.DisconnectScheduler
}

// Name returns the module name.
func (m *MusicPlayerModule) Name() string {
	return "music_player"
}

// Commands returns the slash commands for this module.
func (m *MusicPlayerModule) Commands() []*discordgo.ApplicationCommand {
	return presentation.Commands()
}

// CommandHandlers returns the command handlers for this module.
func (m *MusicPlayerModule) CommandHandlers() map[string]bot.InteractionHandler {
	return map[string]bot.InteractionHandler{
		"play":    m.commandHandlers.HandlePlay,
		"queue":   m.commandHandlers.HandleQueue,
		"list":    m.commandHandlers.HandleList,
		"pause":   m.commandHandlers.HandlePause,
		"unpause": m.commandHandlers.HandleUnpause,
		"skip":    m.commandHandlers.HandleSkip,
		"jump":    m.commandHandlers.HandleJump,
		"shuffle": m.commandHandlers.HandleShuffle,
		"quit":    m.commandHandlers.HandleQuit,
	}
}

// EventHandlers returns the event handlers for this module.
func (m *MusicPlayerModule) EventHandlers() []bot.EventHandler {
	return []bot.EventHandler{
		func(_ *discordgo.Session, event *discordgo.VoiceServerUpdate) {
			m.lavalinkAdapter.OnVoiceServerUpdate(event)
		},
		func(_ *discordgo.Session, event *discordgo.VoiceStateUpdate) {
			m.lavalinkAdapter.OnVoiceStateUpdate(event)
			m.handleOccupancyChange(event)
		},
	}
}

// LoadConfig loads module-specific configuration from environment variables.
func (m *MusicPlayerModule) LoadConfig() error {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return err
	}
	m.config = cfg
	return nil
}

// Init initializes the module.
func (m *MusicPlayerModule) Init(deps bot.ModuleDependencies) error {
	if deps.Session == nil {
		return fmt.Errorf("music_player module requires a Discord session")
	}

	lavalinkAdapter, err := infrastructure.NewLavalinkAdapter(deps.Session, infrastructure.LavalinkConfig{
		Address:             m.config.LavalinkAddress,
		Password:            m.config.LavalinkPassword,
		InactivityThreshold: m.config.DisconnectTimeout,
	})
	if err != nil {
		return err
	}
	m.lavalinkAdapter = lavalinkAdapter

	m.voiceState = infrastructure.NewVoiceStateProvider(deps.Session)
	notifier := infrastructure.NewNotifier(deps.Session)
	spotifyResolver := infrastructure.NewSpotifyResolver(
		context.Background(),
		m.config.SpotifyClientID,
		m.config.SpotifyClientSecret,
	)

	m.registry = usecases.NewRegistry(lavalinkAdapter, lavalinkAdapter, notifier)
	m.scheduler = usecases.NewDisconnectScheduler(m.registry, m.config.DisconnectTimeout)

	lavalinkAdapter.TrackEnded = func(roomID snowflake.ID) {
		session, ok := m.registry.Get(roomID)
		if !ok {
			return
		}
		session.HandleTrackEnded(context.Background())
	}
	lavalinkAdapter.PlayerInactive = m.scheduler.OnPlayerInactive

	m.commandHandlers = presentation.NewCommandHandlers(
		m.registry,
		lavalinkAdapter,
		spotifyResolver,
		m.voiceState,
	)

	slog.Info("music_player module initialized",
		"disconnect_timeout", m.config.DisconnectTimeout)

	return nil
}

// Shutdown cleans up module resources.
func (m *MusicPlayerModule) Shutdown() error {
	if m.registry != nil {
		for _, roomID := range m.registry.RoomIDs() {
			if session, ok := m.registry.Remove(roomID); ok {
				session.Close(context.Background(), "")
			}
		}
	}

	if m.lavalinkAdapter != nil {
		m.lavalinkAdapter.Link().Close()
	}

	return nil
}

// handleOccupancyChange re-counts the bot's voice channel whenever any voice
// state in a tracked guild changes and feeds the result to the disconnect
// scheduler.
func (m *MusicPlayerModule) handleOccupancyChange(event *discordgo.VoiceStateUpdate) {
	roomID, err := snowflake.Parse(event.GuildID)
	if err != nil {
		return
	}

	session, ok := m.registry.Get(roomID)
	if !ok {
		return
	}

	channelID := session.VoiceChannelID()
	if channelID == 0 {
		return
	}

	occupants, err := m.voiceState.NonBotOccupants(roomID, channelID)
	if err != nil {
		slog.Warn("failed to count voice channel occupants",
			"guild_id", roomID, "channel_id", channelID, "error", err)
		return
	}

	m.scheduler.OnRoomOccupancyChanged(roomID, occupants)
}
