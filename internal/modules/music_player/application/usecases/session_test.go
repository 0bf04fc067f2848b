package usecases

import (
	"context"
	"errors"
	"testing"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/jazzbot/internal/modules/music_player/domain"
)

const (
	testRoomID    = snowflake.ID(100)
	testChannelID = snowflake.ID(200)
	testNotifyID  = snowflake.ID(300)
)

func newTestSession() (*Session, *mockTransport, *mockResolver, *mockSink) {
	transport := &mockTransport{}
	resolver := &mockResolver{}
	sink := &mockSink{}
	session := newSession(testRoomID, transport, resolver, sink)
	return session, transport, resolver, sink
}

func queueTrack(title string) domain.Track {
	return domain.Track{Title: title, Identifier: "id-" + title, Encoded: "encoded:" + title}
}

// startPlayback connects the session and enqueues the given tracks, the first
// of which starts playing.
func startPlayback(t *testing.T, session *Session, titles ...string) {
	t.Helper()
	ctx := context.Background()

	if err := session.EnsureConnected(ctx, testChannelID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, title := range titles {
		if _, err := session.EnqueueOrPlay(ctx, queueTrack(title)); err != nil {
			t.Fatalf("unexpected error enqueuing %q: %v", title, err)
		}
	}
}

func TestSession_EnsureConnected(t *testing.T) {
	session, transport, _, _ := newTestSession()
	ctx := context.Background()

	if err := session.EnsureConnected(ctx, testChannelID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.VoiceChannelID() != testChannelID {
		t.Errorf("expected channel %d, got %d", testChannelID, session.VoiceChannelID())
	}

	// Same channel again is a no-op.
	if err := session.EnsureConnected(ctx, testChannelID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if transport.connects != 1 {
		t.Errorf("expected 1 transport connect, got %d", transport.connects)
	}

	// An established connection never moves.
	err := session.EnsureConnected(ctx, snowflake.ID(999))
	if !errors.Is(err, ErrBotInDifferentChannel) {
		t.Errorf("expected ErrBotInDifferentChannel, got %v", err)
	}
}

func TestSession_EnsureConnectedTransportFailure(t *testing.T) {
	session, transport, _, _ := newTestSession()
	transport.connectErr = errors.New("node down")

	err := session.EnsureConnected(context.Background(), testChannelID)
	if !errors.Is(err, ErrTransportUnavailable) {
		t.Fatalf("expected ErrTransportUnavailable, got %v", err)
	}
	if session.VoiceChannelID() != 0 {
		t.Errorf("expected no recorded channel after failure, got %d", session.VoiceChannelID())
	}

	// A later attempt succeeds once the transport recovers.
	transport.connectErr = nil
	if err := session.EnsureConnected(context.Background(), testChannelID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSession_EnqueueOrPlayStartsWhenIdle(t *testing.T) {
	session, transport, _, _ := newTestSession()

	result, err := session.EnqueueOrPlay(context.Background(), queueTrack("a"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Started || result.Position != 0 {
		t.Errorf("expected started at position 0, got %+v", result)
	}
	if session.Status() != domain.StatusPlaying {
		t.Errorf("expected playing, got %v", session.Status())
	}
	if got := transport.playedTitles(); len(got) != 1 || got[0] != "a" {
		t.Errorf("expected transport to play [a], got %v", got)
	}

	current, ok := session.CurrentTrack()
	if !ok || current.Title != "a" {
		t.Errorf("expected current track a, got %q (%v)", current.Title, ok)
	}
}

func TestSession_EnqueueOrPlayAppendsWhileActive(t *testing.T) {
	session, transport, _, _ := newTestSession()
	startPlayback(t, session, "a")

	result, err := session.EnqueueOrPlay(context.Background(), queueTrack("b"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Started || result.Position != 1 {
		t.Errorf("expected queued at position 1, got %+v", result)
	}
	if got := transport.playedTitles(); len(got) != 1 {
		t.Errorf("expected no additional transport play, got %v", got)
	}

	// Paused rooms also only append.
	if err := session.Pause(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result, err = session.EnqueueOrPlay(context.Background(), queueTrack("c"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Started || result.Position != 2 {
		t.Errorf("expected queued at position 2, got %+v", result)
	}
	if session.Status() != domain.StatusPaused {
		t.Errorf("expected status to stay paused, got %v", session.Status())
	}
}

func TestSession_EnqueueOrPlayTransportFailure(t *testing.T) {
	session, transport, _, _ := newTestSession()
	transport.setPlayErr(errors.New("node down"))

	_, err := session.EnqueueOrPlay(context.Background(), queueTrack("a"))
	if !errors.Is(err, ErrTransportUnavailable) {
		t.Fatalf("expected ErrTransportUnavailable, got %v", err)
	}
	if session.QueueLen() != 0 {
		t.Errorf("expected queue untouched, got length %d", session.QueueLen())
	}
	if session.Status() != domain.StatusIdle {
		t.Errorf("expected idle, got %v", session.Status())
	}
}

func TestSession_SkipAdvances(t *testing.T) {
	session, transport, resolver, _ := newTestSession()
	startPlayback(t, session, "a", "b")

	track, err := session.Skip(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if track == nil || track.Title != "b" {
		t.Fatalf("expected skip to land on b, got %+v", track)
	}
	if session.QueueCursor() != 1 {
		t.Errorf("expected cursor 1, got %d", session.QueueCursor())
	}
	if session.Status() != domain.StatusPlaying {
		t.Errorf("expected playing, got %v", session.Status())
	}

	// The stored identifier is re-resolved to a fresh playable form.
	if got := resolver.queryLog(); len(got) != 1 || got[0] != "id-b" {
		t.Errorf("expected re-resolve of id-b, got %v", got)
	}
	if got := transport.playedTitles(); len(got) != 2 || got[1] != "resolved id-b" {
		t.Errorf("expected transport to play the re-resolved track, got %v", got)
	}
}

func TestSession_SkipExhaustedStopsPlayback(t *testing.T) {
	session, transport, _, _ := newTestSession()
	startPlayback(t, session, "a")

	track, err := session.Skip(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if track != nil {
		t.Errorf("expected nil track at queue end, got %+v", track)
	}
	if transport.stops != 1 {
		t.Errorf("expected 1 transport stop, got %d", transport.stops)
	}
	if session.Status() != domain.StatusIdle {
		t.Errorf("expected idle, got %v", session.Status())
	}
	if session.QueueCursor() != 0 {
		t.Errorf("expected cursor to stay at 0, got %d", session.QueueCursor())
	}
}

func TestSession_SkipWhilePausedOrIdle(t *testing.T) {
	session, _, _, _ := newTestSession()

	if _, err := session.Skip(context.Background()); !errors.Is(err, ErrNothingPlaying) {
		t.Errorf("idle: expected ErrNothingPlaying, got %v", err)
	}

	startPlayback(t, session, "a", "b")
	if err := session.Pause(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := session.Skip(context.Background()); !errors.Is(err, ErrNothingPlaying) {
		t.Errorf("paused: expected ErrNothingPlaying, got %v", err)
	}
	if session.QueueCursor() != 0 {
		t.Errorf("expected cursor unchanged, got %d", session.QueueCursor())
	}
}

func TestSession_SkipResolverFailureKeepsCursor(t *testing.T) {
	session, _, resolver, _ := newTestSession()
	startPlayback(t, session, "a", "b")
	resolver.err = errors.New("lookup failed")

	if _, err := session.Skip(context.Background()); err == nil {
		t.Fatal("expected an error")
	}
	if session.QueueCursor() != 0 {
		t.Errorf("expected cursor to stay at 0, got %d", session.QueueCursor())
	}
	if session.Status() != domain.StatusPlaying {
		t.Errorf("expected status to stay playing, got %v", session.Status())
	}
}

func TestSession_SkipMissingTrack(t *testing.T) {
	session, _, resolver, _ := newTestSession()
	startPlayback(t, session, "a", "b")
	resolver.missing = true

	_, err := session.Skip(context.Background())
	if !errors.Is(err, ErrTrackNotFound) {
		t.Fatalf("expected ErrTrackNotFound, got %v", err)
	}
	if session.QueueCursor() != 0 {
		t.Errorf("expected cursor to stay at 0, got %d", session.QueueCursor())
	}
}

func TestSession_SkipTransportFailureKeepsCursor(t *testing.T) {
	session, transport, _, _ := newTestSession()
	startPlayback(t, session, "a", "b")
	transport.setPlayErr(errors.New("node down"))

	_, err := session.Skip(context.Background())
	if !errors.Is(err, ErrTransportUnavailable) {
		t.Fatalf("expected ErrTransportUnavailable, got %v", err)
	}
	if session.QueueCursor() != 0 {
		t.Errorf("expected cursor to stay at 0, got %d", session.QueueCursor())
	}
	if session.Status() != domain.StatusPlaying {
		t.Errorf("expected status to stay playing, got %v", session.Status())
	}
}

func TestSession_JumpTo(t *testing.T) {
	session, _, _, _ := newTestSession()
	startPlayback(t, session, "a", "b", "c")

	track, err := session.JumpTo(context.Background(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if track.Title != "c" {
		t.Errorf("expected jump to land on c, got %q", track.Title)
	}
	if session.QueueCursor() != 2 {
		t.Errorf("expected cursor 2, got %d", session.QueueCursor())
	}

	// Jumping backward replays already-played tracks.
	track, err = session.JumpTo(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if track.Title != "a" || session.QueueCursor() != 0 {
		t.Errorf("expected cursor back on a, got %q at %d", track.Title, session.QueueCursor())
	}
}

func TestSession_JumpToOutOfRange(t *testing.T) {
	session, _, _, _ := newTestSession()
	startPlayback(t, session, "a", "b")

	for _, position := range []int{0, -1, 3} {
		if _, err := session.JumpTo(context.Background(), position); !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("JumpTo(%d): expected ErrIndexOutOfRange, got %v", position, err)
		}
	}
	if session.QueueCursor() != 0 {
		t.Errorf("expected cursor unchanged, got %d", session.QueueCursor())
	}
}

func TestSession_JumpToEmptyQueue(t *testing.T) {
	session, _, _, _ := newTestSession()

	if _, err := session.JumpTo(context.Background(), 1); !errors.Is(err, ErrQueueEmpty) {
		t.Errorf("expected ErrQueueEmpty, got %v", err)
	}
}

func TestSession_JumpToWhilePausedResumesPlayback(t *testing.T) {
	session, transport, _, _ := newTestSession()
	startPlayback(t, session, "a", "b")
	ctx := context.Background()

	if err := session.Pause(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	track, err := session.JumpTo(ctx, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if track.Title != "b" {
		t.Errorf("expected jump to land on b, got %q", track.Title)
	}

	// The room is audibly playing again: the transport no longer holds the
	// pause flag from before the jump, and the status agrees with it.
	if transport.isPaused() {
		t.Error("expected the transport to be unpaused after the jump")
	}
	if session.Status() != domain.StatusPlaying {
		t.Errorf("expected playing, got %v", session.Status())
	}
	if err := session.Resume(ctx); !errors.Is(err, ErrNotPaused) {
		t.Errorf("expected ErrNotPaused, got %v", err)
	}
	if err := session.Pause(ctx); err != nil {
		t.Errorf("expected pause to be legal again, got %v", err)
	}
}

func TestSession_JumpToRestartsFromIdle(t *testing.T) {
	session, _, _, _ := newTestSession()
	startPlayback(t, session, "a")

	// Run the queue out so the room goes idle.
	if _, err := session.Skip(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.Status() != domain.StatusIdle {
		t.Fatalf("expected idle, got %v", session.Status())
	}

	track, err := session.JumpTo(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if track.Title != "a" {
		t.Errorf("expected a, got %q", track.Title)
	}
	if session.Status() != domain.StatusPlaying {
		t.Errorf("expected playing, got %v", session.Status())
	}
}

func TestSession_PauseAndResume(t *testing.T) {
	session, transport, _, _ := newTestSession()
	startPlayback(t, session, "a")
	ctx := context.Background()

	if err := session.Pause(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.Status() != domain.StatusPaused {
		t.Errorf("expected paused, got %v", session.Status())
	}
	if err := session.Pause(ctx); !errors.Is(err, ErrAlreadyPaused) {
		t.Errorf("expected ErrAlreadyPaused, got %v", err)
	}

	if err := session.Resume(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.Status() != domain.StatusPlaying {
		t.Errorf("expected playing, got %v", session.Status())
	}
	if err := session.Resume(ctx); !errors.Is(err, ErrNotPaused) {
		t.Errorf("expected ErrNotPaused, got %v", err)
	}

	if transport.pauses != 1 || transport.resumes != 1 {
		t.Errorf("expected 1 pause and 1 resume, got %d and %d",
			transport.pauses, transport.resumes)
	}
}

func TestSession_PauseWhileIdle(t *testing.T) {
	session, _, _, _ := newTestSession()

	if err := session.Pause(context.Background()); !errors.Is(err, ErrNothingPlaying) {
		t.Errorf("expected ErrNothingPlaying, got %v", err)
	}
	if err := session.Resume(context.Background()); !errors.Is(err, ErrNothingPlaying) {
		t.Errorf("expected ErrNothingPlaying, got %v", err)
	}
}

func TestSession_PauseTransportFailure(t *testing.T) {
	session, transport, _, _ := newTestSession()
	startPlayback(t, session, "a")
	transport.pauseErr = errors.New("node down")

	err := session.Pause(context.Background())
	if !errors.Is(err, ErrTransportUnavailable) {
		t.Fatalf("expected ErrTransportUnavailable, got %v", err)
	}
	if session.Status() != domain.StatusPlaying {
		t.Errorf("expected status to stay playing, got %v", session.Status())
	}
}

func TestSession_Shuffle(t *testing.T) {
	session, _, _, _ := newTestSession()

	if err := session.Shuffle(); !errors.Is(err, ErrNothingToShuffle) {
		t.Errorf("empty queue: expected ErrNothingToShuffle, got %v", err)
	}

	startPlayback(t, session, "a")
	if err := session.Shuffle(); !errors.Is(err, ErrNothingToShuffle) {
		t.Errorf("single track: expected ErrNothingToShuffle, got %v", err)
	}

	startPlayback(t, session, "b", "c")
	if err := session.Shuffle(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if current, _ := session.CurrentTrack(); current.Title != "a" {
		t.Errorf("expected current track untouched, got %q", current.Title)
	}
}

func TestSession_HandleTrackEndedAdvances(t *testing.T) {
	session, transport, _, _ := newTestSession()
	startPlayback(t, session, "a", "b")

	session.HandleTrackEnded(context.Background())

	if session.QueueCursor() != 1 {
		t.Errorf("expected cursor 1, got %d", session.QueueCursor())
	}
	if session.Status() != domain.StatusPlaying {
		t.Errorf("expected playing, got %v", session.Status())
	}
	if got := transport.playedTitles(); len(got) != 2 {
		t.Errorf("expected 2 transport plays, got %v", got)
	}
}

func TestSession_HandleTrackEndedExhaustsQueue(t *testing.T) {
	session, _, _, _ := newTestSession()
	startPlayback(t, session, "a")

	session.HandleTrackEnded(context.Background())

	if session.Status() != domain.StatusIdle {
		t.Errorf("expected idle, got %v", session.Status())
	}
	if session.QueueCursor() != 0 {
		t.Errorf("expected cursor to stay at 0, got %d", session.QueueCursor())
	}
}

func TestSession_HandleTrackEndedIgnoredWhileNotPlaying(t *testing.T) {
	session, transport, _, _ := newTestSession()
	startPlayback(t, session, "a", "b")
	if err := session.Pause(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A stale end event for a paused room must not advance anything.
	session.HandleTrackEnded(context.Background())

	if session.QueueCursor() != 0 {
		t.Errorf("expected cursor unchanged, got %d", session.QueueCursor())
	}
	if session.Status() != domain.StatusPaused {
		t.Errorf("expected paused, got %v", session.Status())
	}
	if got := transport.playedTitles(); len(got) != 1 {
		t.Errorf("expected no additional play, got %v", got)
	}
}

func TestSession_HandleTrackEndedResolverFailure(t *testing.T) {
	session, _, resolver, _ := newTestSession()
	startPlayback(t, session, "a", "b")
	resolver.err = errors.New("lookup failed")

	session.HandleTrackEnded(context.Background())

	if session.Status() != domain.StatusIdle {
		t.Errorf("expected idle after failed advance, got %v", session.Status())
	}
	if session.QueueCursor() != 0 {
		t.Errorf("expected cursor on the last played track, got %d", session.QueueCursor())
	}
}

func TestSession_QueueWindow(t *testing.T) {
	session, _, _, _ := newTestSession()
	startPlayback(t, session, "a", "b", "c", "d", "e")

	window, remaining := session.QueueWindow(0, 2)
	if remaining != 5 {
		t.Errorf("expected 5 remaining, got %d", remaining)
	}
	if len(window) != 2 || window[0].Title != "a" || window[1].Title != "b" {
		t.Errorf("unexpected first page: %v", window)
	}

	window, _ = session.QueueWindow(2, 2)
	if len(window) != 1 || window[0].Title != "e" {
		t.Errorf("unexpected last page: %v", window)
	}

	// Pages start at the cursor, not at the head of the queue.
	if _, err := session.JumpTo(context.Background(), 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	window, remaining = session.QueueWindow(0, 2)
	if remaining != 3 {
		t.Errorf("expected 3 remaining, got %d", remaining)
	}
	if len(window) != 2 || window[0].Title != "c" {
		t.Errorf("unexpected page after jump: %v", window)
	}
}

func TestSession_CloseIsIdempotent(t *testing.T) {
	session, transport, _, sink := newTestSession()
	startPlayback(t, session, "a", "b")
	session.SetNotifyChannel(testNotifyID)

	if !session.Close(context.Background(), "goodbye") {
		t.Fatal("expected first Close to perform cleanup")
	}
	if session.Close(context.Background(), "goodbye") {
		t.Error("expected second Close to be a no-op")
	}

	if transport.disconnectCount() != 1 {
		t.Errorf("expected 1 disconnect, got %d", transport.disconnectCount())
	}
	posts := sink.postLog()
	if len(posts) != 1 {
		t.Fatalf("expected 1 notice, got %d", len(posts))
	}
	if posts[0].channelID != testNotifyID || posts[0].description != "goodbye" {
		t.Errorf("unexpected notice: %+v", posts[0])
	}

	if session.QueueLen() != 0 {
		t.Errorf("expected queue cleared, got length %d", session.QueueLen())
	}
	if session.Status() != domain.StatusIdle {
		t.Errorf("expected idle, got %v", session.Status())
	}
}

func TestSession_CloseWithoutNotice(t *testing.T) {
	session, transport, _, sink := newTestSession()
	startPlayback(t, session, "a")
	session.SetNotifyChannel(testNotifyID)

	if !session.Close(context.Background(), "") {
		t.Fatal("expected Close to perform cleanup")
	}
	if len(sink.postLog()) != 0 {
		t.Errorf("expected no notice, got %v", sink.postLog())
	}
	if transport.disconnectCount() != 1 {
		t.Errorf("expected 1 disconnect, got %d", transport.disconnectCount())
	}
}

func TestSession_CloseNeverConnected(t *testing.T) {
	session, transport, _, _ := newTestSession()

	if !session.Close(context.Background(), "goodbye") {
		t.Fatal("expected Close to perform cleanup")
	}
	if transport.disconnectCount() != 0 {
		t.Errorf("expected no disconnect for an unconnected session, got %d",
			transport.disconnectCount())
	}
}

func TestSession_OperationsAfterClose(t *testing.T) {
	session, _, _, _ := newTestSession()
	startPlayback(t, session, "a")
	session.Close(context.Background(), "")

	ctx := context.Background()
	if _, err := session.EnqueueOrPlay(ctx, queueTrack("b")); !errors.Is(err, ErrRoomHasNoSession) {
		t.Errorf("EnqueueOrPlay: expected ErrRoomHasNoSession, got %v", err)
	}
	if _, err := session.Skip(ctx); !errors.Is(err, ErrRoomHasNoSession) {
		t.Errorf("Skip: expected ErrRoomHasNoSession, got %v", err)
	}
	if err := session.Pause(ctx); !errors.Is(err, ErrRoomHasNoSession) {
		t.Errorf("Pause: expected ErrRoomHasNoSession, got %v", err)
	}
	if err := session.EnsureConnected(ctx, testChannelID); !errors.Is(err, ErrRoomHasNoSession) {
		t.Errorf("EnsureConnected: expected ErrRoomHasNoSession, got %v", err)
	}
}
