package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/jazzbot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/jazzbot/internal/modules/music_player/domain"
)

// EnqueueResult reports how an enqueue-or-play request was handled.
type EnqueueResult struct {
	// Started is true when the track began playing immediately, false when
	// it was appended behind active playback.
	Started bool

	// Position is the track's 0-based position in the queue.
	Position int
}

// Session owns one room's queue, state machine, notification target, and
// pending disconnect timer. Every mutating operation runs under the session
// mutex to completion, transport calls included, so events interleaved by the
// gateway cannot corrupt the room. Operations on different rooms never
// contend.
type Session struct {
	roomID    snowflake.ID
	transport ports.VoiceTransport
	resolver  ports.TrackResolver
	sink      ports.NotificationSink

	mu              sync.Mutex
	queue           domain.Queue
	state           domain.StateMachine
	voiceChannelID  snowflake.ID
	notifyChannelID snowflake.ID
	disconnectTimer *time.Timer
	closed          bool
}

func newSession(
	roomID snowflake.ID,
	transport ports.VoiceTransport,
	resolver ports.TrackResolver,
	sink ports.NotificationSink,
) *Session {
	return &Session{
		roomID:    roomID,
		transport: transport,
		resolver:  resolver,
		sink:      sink,
		queue:     domain.NewQueue(),
		state:     domain.NewStateMachine(),
	}
}

// RoomID returns the room this session belongs to.
func (s *Session) RoomID() snowflake.ID {
	return s.roomID
}

// SetNotifyChannel updates where notices for this room are posted.
func (s *Session) SetNotifyChannel(channelID snowflake.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifyChannelID = channelID
}

// VoiceChannelID returns the voice channel the session is connected to, or 0.
func (s *Session) VoiceChannelID() snowflake.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.voiceChannelID
}

// Status returns the room's playback status.
func (s *Session) Status() domain.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Status()
}

// EnsureConnected connects the transport to the given voice channel. It is a
// no-op if already connected there, and refuses to move an established
// connection to a different channel.
func (s *Session) EnsureConnected(ctx context.Context, channelID snowflake.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrRoomHasNoSession
	}
	if s.voiceChannelID == channelID {
		return nil
	}
	if s.voiceChannelID != 0 {
		return ErrBotInDifferentChannel
	}

	if err := s.transport.Connect(ctx, s.roomID, channelID); err != nil {
		return fmt.Errorf("%w: %w", ErrTransportUnavailable, err)
	}
	s.voiceChannelID = channelID

	return nil
}

// EnqueueOrPlay appends the track to the queue. If the room is idle the track
// starts playing immediately and the cursor moves to it; otherwise the queue
// grows and the status is unchanged. The queue is only mutated once the
// transport accepted the track.
func (s *Session) EnqueueOrPlay(ctx context.Context, track domain.Track) (*EnqueueResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrRoomHasNoSession
	}

	if s.state.Status() == domain.StatusIdle {
		if err := s.transport.Play(ctx, s.roomID, &track); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrTransportUnavailable, err)
		}

		position := s.queue.Add(track)
		if err := s.queue.Seek(position); err != nil {
			return nil, err
		}
		s.state.MarkPlaying()

		return &EnqueueResult{Started: true, Position: position}, nil
	}

	position := s.queue.Add(track)
	return &EnqueueResult{Started: false, Position: position}, nil
}

// Skip advances to the next queued track. The cursor only moves once the
// re-resolved track confirmably plays on the transport; a resolver or
// transport failure leaves queue and status untouched. A nil track with a nil
// error means the queue was exhausted and playback stopped.
func (s *Session) Skip(ctx context.Context) (*domain.Track, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrRoomHasNoSession
	}
	if err := s.state.CheckSkip(); err != nil {
		return nil, err
	}

	next, index, ok := s.queue.PeekNext()
	if !ok {
		if err := s.transport.Stop(ctx, s.roomID); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrTransportUnavailable, err)
		}
		s.state.MarkIdle()
		return nil, nil
	}

	if err := s.playAndCommit(ctx, next, index); err != nil {
		return nil, err
	}
	return &next, nil
}

// JumpTo moves playback to the 1-based queue position. Like Skip, the cursor
// only moves after the transport confirmed the switch. Jumping restarts
// playback when the room is idle or paused.
func (s *Session) JumpTo(ctx context.Context, position int) (*domain.Track, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrRoomHasNoSession
	}
	if s.queue.IsEmpty() {
		return nil, ErrQueueEmpty
	}

	index := position - 1
	target, ok := s.queue.TrackAt(index)
	if !ok {
		return nil, ErrIndexOutOfRange
	}

	if err := s.playAndCommit(ctx, target, index); err != nil {
		return nil, err
	}
	return &target, nil
}

// playAndCommit is the shared second half of skip and jump: re-resolve the
// stored identifier, hand the fresh playable form to the transport, and only
// then commit the cursor and status. Callers hold the session mutex.
func (s *Session) playAndCommit(ctx context.Context, target domain.Track, index int) error {
	resolved, err := s.resolver.Resolve(ctx, target.Identifier)
	if err != nil {
		return fmt.Errorf("failed to re-resolve track %q: %w", target.Title, err)
	}
	if resolved == nil {
		return ErrTrackNotFound
	}

	if err := s.transport.Play(ctx, s.roomID, resolved); err != nil {
		return fmt.Errorf("%w: %w", ErrTransportUnavailable, err)
	}

	if err := s.queue.Seek(index); err != nil {
		return err
	}
	s.state.MarkPlaying()

	return nil
}

// Pause suspends active playback.
func (s *Session) Pause(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrRoomHasNoSession
	}
	if err := s.state.CheckPause(); err != nil {
		return err
	}

	if err := s.transport.Pause(ctx, s.roomID); err != nil {
		return fmt.Errorf("%w: %w", ErrTransportUnavailable, err)
	}
	s.state.MarkPaused()

	return nil
}

// Resume continues paused playback.
func (s *Session) Resume(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrRoomHasNoSession
	}
	if err := s.state.CheckResume(); err != nil {
		return err
	}

	if err := s.transport.Resume(ctx, s.roomID); err != nil {
		return fmt.Errorf("%w: %w", ErrTransportUnavailable, err)
	}
	s.state.MarkPlaying()

	return nil
}

// Shuffle randomizes the order of the tracks after the cursor. History and
// the current track are never moved.
func (s *Session) Shuffle() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrRoomHasNoSession
	}
	if s.queue.Len() <= 1 {
		return ErrNothingToShuffle
	}

	s.queue.Shuffle()
	return nil
}

// HandleTrackEnded is the entry point for the transport's track-end event
// stream. It advances to the next queued track, or marks the room idle when
// the queue is exhausted. Failures to start the next track are logged and
// leave the cursor on the last track that actually played.
func (s *Session) HandleTrackEnded(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.state.Status() != domain.StatusPlaying {
		return
	}

	next, index, ok := s.queue.PeekNext()
	if !ok {
		s.state.MarkIdle()
		return
	}

	if err := s.playAndCommit(ctx, next, index); err != nil {
		slog.Warn("failed to advance to next track",
			"guild", s.roomID,
			"track", next.Title,
			"error", err,
		)
		s.state.MarkIdle()
	}
}

// CurrentTrack returns the track at the cursor, if any.
func (s *Session) CurrentTrack() (domain.Track, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Current()
}

// QueueWindow returns one display page of tracks starting at the cursor,
// along with the total count of tracks from the cursor to the tail. Pages are
// 0-based and the last page may be short.
func (s *Session) QueueWindow(page, size int) ([]domain.Track, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	remaining := s.queue.Len() - s.queue.Cursor()
	if s.queue.IsEmpty() {
		remaining = 0
	}
	return s.queue.Window(s.queue.Cursor()+page*size, size), remaining
}

// QueueCursor returns the queue cursor, for absolute position display.
func (s *Session) QueueCursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Cursor()
}

// QueueLen returns the number of tracks in the queue.
func (s *Session) QueueLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Len()
}

// scheduleDisconnect arms the room's single delayed-disconnect timer. It
// reports false when a timer is already pending or the session is closed.
func (s *Session) scheduleDisconnect(d time.Duration, fire func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.disconnectTimer != nil {
		return false
	}
	s.disconnectTimer = time.AfterFunc(d, fire)
	return true
}

// cancelDisconnect stops a pending disconnect timer. Cancellation is best
// effort: if the timer already fired, the closed-flag check in Close makes
// the outcome deterministic.
func (s *Session) cancelDisconnect() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disconnectTimer == nil {
		return false
	}
	s.disconnectTimer.Stop()
	s.disconnectTimer = nil
	return true
}

// Close tears the session down: cancels any pending disconnect timer, clears
// the queue, resets the status to idle, and disconnects the transport. When
// notice is non-empty a one-time notice is posted to the room's notification
// channel; posting failures are logged and swallowed. Close is idempotent and
// safe to invoke concurrently with a firing disconnect timer; only the first
// caller performs the cleanup and it reports true.
func (s *Session) Close(ctx context.Context, notice string) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	s.closed = true

	if s.disconnectTimer != nil {
		s.disconnectTimer.Stop()
		s.disconnectTimer = nil
	}
	wasConnected := s.voiceChannelID != 0
	s.voiceChannelID = 0
	notifyChannelID := s.notifyChannelID
	s.notifyChannelID = 0
	s.queue.Clear()
	s.state.MarkIdle()
	s.mu.Unlock()

	if wasConnected {
		if err := s.transport.Disconnect(ctx, s.roomID); err != nil {
			slog.Warn("failed to disconnect voice transport",
				"guild", s.roomID,
				"error", err,
			)
		}
	}

	if notice != "" && notifyChannelID != 0 {
		if err := s.sink.Post(notifyChannelID, "Disconnected", notice); err != nil {
			slog.Warn("failed to post disconnect notice",
				"guild", s.roomID,
				"channel", notifyChannelID,
				"error", err,
			)
		}
	}

	return true
}
