package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/disgolink/v3/disgolink"
	"github.com/disgoorg/disgolink/v3/lavalink"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/jazzbot/internal/modules/music_player/domain"
)

// voiceConnectionTimeout is the maximum time to wait for a voice connection
// to be established.
const voiceConnectionTimeout = 10 * time.Second

// pendingVoiceConnection tracks a join waiting for both voice events.
type pendingVoiceConnection struct {
	mu             sync.Mutex
	hasVoiceState  bool
	hasVoiceServer bool
	ready          chan struct{}
}

func (p *pendingVoiceConnection) onEvent(isVoiceState bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if isVoiceState {
		p.hasVoiceState = true
	} else {
		p.hasVoiceServer = true
	}

	if p.hasVoiceState && p.hasVoiceServer {
		select {
		case <-p.ready:
		default:
			close(p.ready)
		}
	}
}

// voiceEventBuffer pairs VoiceStateUpdate and VoiceServerUpdate before
// forwarding to Lavalink, since the gateway may deliver them in either order.
type voiceEventBuffer struct {
	mu sync.Mutex

	hasVoiceState bool
	channelID     *snowflake.ID
	sessionID     string

	hasVoiceServer bool
	token          string
	endpoint       string
}

func (b *voiceEventBuffer) setVoiceState(channelID *snowflake.ID, sessionID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.hasVoiceState = true
	b.channelID = channelID
	b.sessionID = sessionID
	return b.hasVoiceState && b.hasVoiceServer
}

func (b *voiceEventBuffer) setVoiceServer(token, endpoint string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.hasVoiceServer = true
	b.token = token
	b.endpoint = endpoint
	return b.hasVoiceState && b.hasVoiceServer
}

func (b *voiceEventBuffer) take() (channelID *snowflake.ID, sessionID, token, endpoint string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	channelID = b.channelID
	sessionID = b.sessionID
	token = b.token
	endpoint = b.endpoint

	*b = voiceEventBuffer{}
	return
}

// LavalinkConfig contains the Lavalink connection configuration.
type LavalinkConfig struct {
	Address  string
	Password string

	// InactivityThreshold is how long a player may sit without audio
	// progressing before the inactivity trigger fires.
	InactivityThreshold time.Duration
}

// LavalinkAdapter wraps DisGoLink to implement the voice transport and track
// resolver ports, and feeds playback events back into the session core.
type LavalinkAdapter struct {
	link    disgolink.Client
	session *discordgo.Session
	botID   snowflake.ID

	inactivityThreshold time.Duration

	pendingMu sync.Mutex
	pending   map[snowflake.ID]*pendingVoiceConnection

	voiceBufferMu sync.Mutex
	voiceBuffers  map[snowflake.ID]*voiceEventBuffer

	idleMu     sync.Mutex
	idleTimers map[snowflake.ID]*time.Timer

	// Callbacks into the session core, set by the module before any
	// gateway events flow.
	TrackEnded     func(roomID snowflake.ID)
	PlayerInactive func(roomID snowflake.ID)
}

// NewLavalinkAdapter connects to the configured Lavalink node.
func NewLavalinkAdapter(
	session *discordgo.Session,
	config LavalinkConfig,
) (*LavalinkAdapter, error) {
	botID, err := snowflake.Parse(session.State.User.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bot ID: %w", err)
	}

	adapter := &LavalinkAdapter{
		session:             session,
		botID:               botID,
		inactivityThreshold: config.InactivityThreshold,
		pending:             make(map[snowflake.ID]*pendingVoiceConnection),
		voiceBuffers:        make(map[snowflake.ID]*voiceEventBuffer),
		idleTimers:          make(map[snowflake.ID]*time.Timer),
	}

	link := disgolink.New(botID,
		disgolink.WithListenerFunc(adapter.onTrackStart),
		disgolink.WithListenerFunc(adapter.onTrackEnd),
		disgolink.WithListenerFunc(adapter.onTrackException),
		disgolink.WithListenerFunc(adapter.onTrackStuck),
	)
	adapter.link = link

	node, err := link.AddNode(context.Background(), disgolink.NodeConfig{
		Name:     "main",
		Address:  config.Address,
		Password: config.Password,
		Secure:   false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add Lavalink node: %w", err)
	}

	slog.Info("connected to Lavalink", "node", node.Config().Name, "address", config.Address)

	return adapter, nil
}

// Link returns the underlying DisGoLink client for shutdown.
func (c *LavalinkAdapter) Link() disgolink.Client {
	return c.link
}

// Connect joins a voice channel and waits until both VoiceStateUpdate and
// VoiceServerUpdate arrived, so playback can start right away.
func (c *LavalinkAdapter) Connect(ctx context.Context, roomID, channelID snowflake.ID) error {
	pending := &pendingVoiceConnection{ready: make(chan struct{})}

	c.pendingMu.Lock()
	c.pending[roomID] = pending
	c.pendingMu.Unlock()

	defer func() {
		c.pendingMu.Lock()
		delete(c.pending, roomID)
		c.pendingMu.Unlock()
	}()

	err := c.session.ChannelVoiceJoinManual(roomID.String(), channelID.String(), false, false)
	if err != nil {
		return fmt.Errorf("failed to join voice channel: %w", err)
	}

	select {
	case <-pending.ready:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("cancelled while waiting for voice connection: %w", ctx.Err())
	case <-time.After(voiceConnectionTimeout):
		return fmt.Errorf("timeout waiting for voice connection")
	}
}

// Disconnect leaves the room's voice channel and destroys its player.
func (c *LavalinkAdapter) Disconnect(ctx context.Context, roomID snowflake.ID) error {
	c.stopIdleTimer(roomID)

	if player := c.link.ExistingPlayer(roomID); player != nil {
		if err := player.Destroy(ctx); err != nil {
			slog.Warn("failed to destroy player", "guild", roomID, "error", err)
		}
	}

	err := c.session.ChannelVoiceJoinManual(roomID.String(), "", false, false)
	if err != nil {
		return fmt.Errorf("failed to leave voice channel: %w", err)
	}
	return nil
}

// Play starts playback of the given track. The paused flag is player state
// on the node and survives track changes, so it is cleared explicitly; a
// paused player handed a new track resumes.
func (c *LavalinkAdapter) Play(ctx context.Context, roomID snowflake.ID, track *domain.Track) error {
	player := c.link.Player(roomID)

	err := player.Update(ctx, lavalink.WithEncodedTrack(track.Encoded), lavalink.WithPaused(false))
	if err != nil {
		return fmt.Errorf("failed to play track: %w", err)
	}
	c.stopIdleTimer(roomID)
	return nil
}

// Stop stops the current playback without disconnecting.
func (c *LavalinkAdapter) Stop(ctx context.Context, roomID snowflake.ID) error {
	player := c.link.Player(roomID)

	if err := player.Update(ctx, lavalink.WithNullTrack()); err != nil {
		return fmt.Errorf("failed to stop playback: %w", err)
	}

	// A stopped player reports no further track-end events, so the
	// inactivity trigger has to be armed here.
	c.startIdleTimer(roomID)
	return nil
}

// Pause suspends the current playback.
func (c *LavalinkAdapter) Pause(ctx context.Context, roomID snowflake.ID) error {
	player := c.link.Player(roomID)

	if err := player.Update(ctx, lavalink.WithPaused(true)); err != nil {
		return fmt.Errorf("failed to pause playback: %w", err)
	}
	return nil
}

// Resume continues paused playback.
func (c *LavalinkAdapter) Resume(ctx context.Context, roomID snowflake.ID) error {
	player := c.link.Player(roomID)

	if err := player.Update(ctx, lavalink.WithPaused(false)); err != nil {
		return fmt.Errorf("failed to resume playback: %w", err)
	}
	return nil
}

// Resolve loads the best match for a search term, URL, or stored identifier.
// Attempts run in the order given by loadAttempts; playlists collapse to
// their first track.
func (c *LavalinkAdapter) Resolve(ctx context.Context, query string) (*domain.Track, error) {
	node := c.link.BestNode()
	if node == nil {
		return nil, fmt.Errorf("no available Lavalink node")
	}

	attempts := loadAttempts(query)
	for i, attempt := range attempts {
		result, err := node.LoadTracks(ctx, attempt)
		if err != nil {
			return nil, fmt.Errorf("failed to load tracks: %w", err)
		}

		switch data := result.Data.(type) {
		case lavalink.Track:
			return convertTrack(data), nil
		case lavalink.Playlist:
			if len(data.Tracks) == 0 {
				return nil, nil
			}
			return convertTrack(data.Tracks[0]), nil
		case lavalink.Search:
			if len(data) == 0 {
				return nil, nil
			}
			return convertTrack(data[0]), nil
		case lavalink.Exception:
			if i == len(attempts)-1 {
				return nil, fmt.Errorf("track load failed: %s", data.Message)
			}
		}
	}
	return nil, nil
}

// loadAttempts returns the LoadTracks inputs to try in order. URLs load
// directly. A single token is tried verbatim first, because the node resolves
// exact track identifiers and queued entries must re-resolve to the track
// they were queued as, not to the top hit of a text search. Anything left
// unmatched falls back to a YouTube search.
func loadAttempts(query string) []string {
	if strings.HasPrefix(query, "http://") || strings.HasPrefix(query, "https://") {
		return []string{query}
	}
	if strings.Contains(strings.TrimSpace(query), " ") {
		return []string{lavalink.SearchTypeYouTube.Apply(query)}
	}
	return []string{query, lavalink.SearchTypeYouTube.Apply(query)}
}

func convertTrack(track lavalink.Track) *domain.Track {
	info := track.Info

	uri := ""
	if info.URI != nil {
		uri = *info.URI
	}

	return &domain.Track{
		Title:      info.Title,
		Source:     domain.TrackSourceStreamed,
		Duration:   time.Duration(info.Length) * time.Millisecond,
		Identifier: info.Identifier,
		Encoded:    track.Encoded,
		URI:        uri,
	}
}

// OnVoiceServerUpdate must be called from the Discord event handler.
func (c *LavalinkAdapter) OnVoiceServerUpdate(event *discordgo.VoiceServerUpdate) {
	roomID, err := snowflake.Parse(event.GuildID)
	if err != nil {
		slog.Error("failed to parse guild ID in voice server update", "error", err)
		return
	}

	buffer := c.getOrCreateVoiceBuffer(roomID)
	if buffer.setVoiceServer(event.Token, event.Endpoint) {
		c.forwardBufferedVoiceEvents(roomID, buffer)
	}

	c.pendingMu.Lock()
	pending := c.pending[roomID]
	c.pendingMu.Unlock()
	if pending != nil {
		pending.onEvent(false)
	}
}

// OnVoiceStateUpdate must be called from the Discord event handler. Updates
// for users other than the bot itself are ignored here; occupancy tracking
// lives in the voice-state provider.
func (c *LavalinkAdapter) OnVoiceStateUpdate(event *discordgo.VoiceStateUpdate) {
	if event.UserID != c.botID.String() {
		return
	}

	roomID, err := snowflake.Parse(event.GuildID)
	if err != nil {
		slog.Error("failed to parse guild ID in voice state update", "error", err)
		return
	}

	var channelID *snowflake.ID
	if event.ChannelID != "" {
		id, err := snowflake.Parse(event.ChannelID)
		if err != nil {
			slog.Error("failed to parse channel ID in voice state update", "error", err)
			return
		}
		channelID = &id
	}

	// A disconnect needs no pairing with a VoiceServerUpdate.
	if channelID == nil {
		c.link.OnVoiceStateUpdate(context.Background(), roomID, nil, event.SessionID)
		c.clearVoiceBuffer(roomID)
		return
	}

	buffer := c.getOrCreateVoiceBuffer(roomID)
	if buffer.setVoiceState(channelID, event.SessionID) {
		c.forwardBufferedVoiceEvents(roomID, buffer)
	}

	c.pendingMu.Lock()
	pending := c.pending[roomID]
	c.pendingMu.Unlock()
	if pending != nil {
		pending.onEvent(true)
	}
}

func (c *LavalinkAdapter) getOrCreateVoiceBuffer(roomID snowflake.ID) *voiceEventBuffer {
	c.voiceBufferMu.Lock()
	defer c.voiceBufferMu.Unlock()

	buffer, ok := c.voiceBuffers[roomID]
	if !ok {
		buffer = &voiceEventBuffer{}
		c.voiceBuffers[roomID] = buffer
	}
	return buffer
}

func (c *LavalinkAdapter) clearVoiceBuffer(roomID snowflake.ID) {
	c.voiceBufferMu.Lock()
	defer c.voiceBufferMu.Unlock()
	delete(c.voiceBuffers, roomID)
}

func (c *LavalinkAdapter) forwardBufferedVoiceEvents(
	roomID snowflake.ID,
	buffer *voiceEventBuffer,
) {
	channelID, sessionID, token, endpoint := buffer.take()

	c.link.OnVoiceStateUpdate(context.Background(), roomID, channelID, sessionID)
	c.link.OnVoiceServerUpdate(context.Background(), roomID, token, endpoint)
}

// startIdleTimer arms the inactivity trigger for a room. An existing timer is
// rearmed.
func (c *LavalinkAdapter) startIdleTimer(roomID snowflake.ID) {
	if c.inactivityThreshold <= 0 {
		return
	}

	c.idleMu.Lock()
	defer c.idleMu.Unlock()

	if timer, ok := c.idleTimers[roomID]; ok {
		timer.Stop()
	}
	c.idleTimers[roomID] = time.AfterFunc(c.inactivityThreshold, func() {
		c.stopIdleTimer(roomID)
		if c.PlayerInactive != nil {
			c.PlayerInactive(roomID)
		}
	})
}

func (c *LavalinkAdapter) stopIdleTimer(roomID snowflake.ID) {
	c.idleMu.Lock()
	defer c.idleMu.Unlock()

	if timer, ok := c.idleTimers[roomID]; ok {
		timer.Stop()
		delete(c.idleTimers, roomID)
	}
}

func (c *LavalinkAdapter) onTrackStart(player disgolink.Player, event lavalink.TrackStartEvent) {
	slog.Debug("track started", "guild", player.GuildID(), "track", event.Track.Info.Title)
	c.stopIdleTimer(player.GuildID())
}

func (c *LavalinkAdapter) onTrackEnd(player disgolink.Player, event lavalink.TrackEndEvent) {
	slog.Debug("track ended", "guild", player.GuildID(), "reason", event.Reason)

	if !event.Reason.MayStartNext() {
		return
	}

	if c.TrackEnded != nil {
		c.TrackEnded(player.GuildID())
	}

	// If the session core started nothing new, the next track-start never
	// arrives and this timer fires the inactivity trigger.
	c.startIdleTimer(player.GuildID())
}

func (c *LavalinkAdapter) onTrackException(
	player disgolink.Player,
	event lavalink.TrackExceptionEvent,
) {
	slog.Error("track exception",
		"guild", player.GuildID(),
		"track", event.Track.Info.Title,
		"error", event.Exception.Message,
	)
}

func (c *LavalinkAdapter) onTrackStuck(player disgolink.Player, event lavalink.TrackStuckEvent) {
	slog.Warn("track stuck",
		"guild", player.GuildID(),
		"track", event.Track.Info.Title,
		"threshold", event.Threshold,
	)
}
