package usecases

import (
	"sync"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/jazzbot/internal/modules/music_player/application/ports"
)

// Registry is the process-wide map from room id to session. Sessions are
// created lazily on the first play/enqueue request and removed exactly once
// on teardown, which makes Remove the arbiter for cleanup races.
type Registry struct {
	transport ports.VoiceTransport
	resolver  ports.TrackResolver
	sink      ports.NotificationSink

	mu       sync.RWMutex
	sessions map[snowflake.ID]*Session
}

// NewRegistry creates an empty Registry. New sessions are wired to the given
// collaborators.
func NewRegistry(
	transport ports.VoiceTransport,
	resolver ports.TrackResolver,
	sink ports.NotificationSink,
) *Registry {
	return &Registry{
		transport: transport,
		resolver:  resolver,
		sink:      sink,
		sessions:  make(map[snowflake.ID]*Session),
	}
}

// GetOrCreate returns the room's session, creating it if absent.
func (r *Registry) GetOrCreate(roomID snowflake.ID) *Session {
	r.mu.RLock()
	session, ok := r.sessions[roomID]
	r.mu.RUnlock()
	if ok {
		return session
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Re-check under the write lock; another caller may have won the insert.
	if session, ok := r.sessions[roomID]; ok {
		return session
	}

	session = newSession(roomID, r.transport, r.resolver, r.sink)
	r.sessions[roomID] = session
	return session
}

// Get returns the room's session, or false if the room has none.
func (r *Registry) Get(roomID snowflake.ID) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[roomID]
	return session, ok
}

// Remove drops the room's registry entry and returns the removed session.
// Exactly one caller observes ok for a given entry, so racing teardown paths
// resolve deterministically.
func (r *Registry) Remove(roomID snowflake.ID) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[roomID]
	if ok {
		delete(r.sessions, roomID)
	}
	return session, ok
}

// RoomIDs returns a snapshot of the rooms that currently have a session.
func (r *Registry) RoomIDs() []snowflake.ID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]snowflake.ID, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	return ids
}

// Count returns the number of active sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
