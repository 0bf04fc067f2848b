package domain

import "errors"

// Errors reported by queue and state machine operations. A failed operation
// leaves the queue and the state machine exactly as they were.
var (
	// ErrNothingPlaying is returned for playback commands issued while idle.
	ErrNothingPlaying = errors.New("nothing is currently playing")

	// ErrAlreadyPaused is returned when pausing playback that is already paused.
	ErrAlreadyPaused = errors.New("playback is already paused")

	// ErrNotPaused is returned when resuming playback that is not paused.
	ErrNotPaused = errors.New("playback is not paused")

	// ErrIndexOutOfRange is returned when seeking to a position outside the queue.
	ErrIndexOutOfRange = errors.New("queue position is out of range")
)
