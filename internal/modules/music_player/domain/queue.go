package domain

import "math/rand/v2"

// Queue is an ordered track sequence with a cursor marking the currently
// selected track. Insertion order is playback order. The cursor satisfies
// 0 <= cursor <= len at all times, and cursor == 0 when the queue is empty.
//
// Queue performs no I/O and is not safe for concurrent use; the owning
// session serializes access.
type Queue struct {
	tracks []Track
	cursor int
}

// NewQueue creates a new empty Queue.
func NewQueue() Queue {
	return Queue{tracks: make([]Track, 0)}
}

// Len returns the number of tracks in the queue.
func (q *Queue) Len() int {
	return len(q.tracks)
}

// IsEmpty returns true if the queue has no tracks.
func (q *Queue) IsEmpty() bool {
	return len(q.tracks) == 0
}

// Cursor returns the current cursor position.
func (q *Queue) Cursor() int {
	return q.cursor
}

// Current returns the track at the cursor, or false if the queue is empty or
// the cursor sits past the last track.
func (q *Queue) Current() (Track, bool) {
	if q.cursor >= len(q.tracks) {
		return Track{}, false
	}
	return q.tracks[q.cursor], true
}

// Add appends a track to the end of the queue and returns its 0-based
// position. The cursor is not moved.
func (q *Queue) Add(track Track) int {
	q.tracks = append(q.tracks, track)
	return len(q.tracks) - 1
}

// PeekNext returns the track after the cursor and its index without moving
// the cursor. It returns false when the queue is exhausted at the current
// tail. Callers commit the move with Seek once the track confirmably plays.
func (q *Queue) PeekNext() (Track, int, bool) {
	next := q.cursor + 1
	if next >= len(q.tracks) {
		return Track{}, 0, false
	}
	return q.tracks[next], next, true
}

// TrackAt returns the track at the given index without moving the cursor.
func (q *Queue) TrackAt(index int) (Track, bool) {
	if index < 0 || index >= len(q.tracks) {
		return Track{}, false
	}
	return q.tracks[index], true
}

// Seek commits a cursor move to the given index. It returns
// ErrIndexOutOfRange and leaves the queue untouched if the index is outside
// [0, len).
func (q *Queue) Seek(index int) error {
	if index < 0 || index >= len(q.tracks) {
		return ErrIndexOutOfRange
	}
	q.cursor = index
	return nil
}

// Shuffle applies a uniform random permutation to the tracks after the
// cursor. History and the current track keep their order and positions.
// Queues with one track or fewer are left untouched.
func (q *Queue) Shuffle() {
	if len(q.tracks) <= 1 {
		return
	}

	future := q.tracks[q.cursor+1:]
	rand.Shuffle(len(future), func(i, j int) {
		future[i], future[j] = future[j], future[i]
	})
}

// Clear removes all tracks and resets the cursor.
func (q *Queue) Clear() {
	q.tracks = make([]Track, 0)
	q.cursor = 0
}

// Window returns a copy of up to count tracks starting at start, for paged
// display. It returns nil when start falls outside the queue.
func (q *Queue) Window(start, count int) []Track {
	if start < 0 || start >= len(q.tracks) || count <= 0 {
		return nil
	}

	end := min(start+count, len(q.tracks))
	window := make([]Track, end-start)
	copy(window, q.tracks[start:end])
	return window
}

// List returns a copy of all tracks in the queue.
func (q *Queue) List() []Track {
	list := make([]Track, len(q.tracks))
	copy(list, q.tracks)
	return list
}
