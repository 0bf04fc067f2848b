package usecases

import (
	"context"
	"sync"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/jazzbot/internal/modules/music_player/domain"
)

// mockTransport is a test double for ports.VoiceTransport. Counters are
// mutex-protected because disconnect timers fire on their own goroutines.
type mockTransport struct {
	mu sync.Mutex

	connectErr    error
	playErr       error
	stopErr       error
	pauseErr      error
	resumeErr     error
	disconnectErr error

	connects    int
	disconnects int
	stops       int
	pauses      int
	resumes     int
	played      []string

	// paused mirrors the player-side pause flag, which persists across
	// track changes until Play or Resume clears it.
	paused bool
}

func (m *mockTransport) Connect(_ context.Context, _, _ snowflake.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.connectErr != nil {
		return m.connectErr
	}
	m.connects++
	return nil
}

func (m *mockTransport) Disconnect(_ context.Context, _ snowflake.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.disconnectErr != nil {
		return m.disconnectErr
	}
	m.disconnects++
	return nil
}

func (m *mockTransport) Play(_ context.Context, _ snowflake.ID, track *domain.Track) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.playErr != nil {
		return m.playErr
	}
	m.played = append(m.played, track.Title)
	m.paused = false
	return nil
}

func (m *mockTransport) Stop(_ context.Context, _ snowflake.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopErr != nil {
		return m.stopErr
	}
	m.stops++
	return nil
}

func (m *mockTransport) Pause(_ context.Context, _ snowflake.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pauseErr != nil {
		return m.pauseErr
	}
	m.pauses++
	m.paused = true
	return nil
}

func (m *mockTransport) Resume(_ context.Context, _ snowflake.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.resumeErr != nil {
		return m.resumeErr
	}
	m.resumes++
	m.paused = false
	return nil
}

func (m *mockTransport) isPaused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paused
}

func (m *mockTransport) setPlayErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playErr = err
}

func (m *mockTransport) playedTitles() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.played...)
}

func (m *mockTransport) disconnectCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.disconnects
}

// mockResolver is a test double for ports.TrackResolver. It echoes the query
// back as a fresh track unless told to fail or to find nothing.
type mockResolver struct {
	mu      sync.Mutex
	err     error
	missing bool
	queries []string
}

func (m *mockResolver) Resolve(_ context.Context, query string) (*domain.Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, query)
	if m.err != nil {
		return nil, m.err
	}
	if m.missing {
		return nil, nil
	}
	return &domain.Track{
		Title:      "resolved " + query,
		Identifier: query,
		Encoded:    "encoded:" + query,
	}, nil
}

func (m *mockResolver) queryLog() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.queries...)
}

type postedNotice struct {
	channelID   snowflake.ID
	title       string
	description string
}

// mockSink is a test double for ports.NotificationSink.
type mockSink struct {
	mu    sync.Mutex
	err   error
	posts []postedNotice
}

func (m *mockSink) Post(channelID snowflake.ID, title, description string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.posts = append(m.posts, postedNotice{
		channelID:   channelID,
		title:       title,
		description: description,
	})
	return nil
}

func (m *mockSink) postLog() []postedNotice {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]postedNotice(nil), m.posts...)
}
