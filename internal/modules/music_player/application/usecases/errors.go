package usecases

import (
	"errors"

	"github.com/sglre6355/jazzbot/internal/modules/music_player/domain"
)

// Errors surfaced to the command layer. None of them leaves a room's queue or
// state machine partially mutated.
var (
	// ErrRoomHasNoSession is returned for operations on a room with no
	// active session.
	ErrRoomHasNoSession = errors.New("no active session for this room")

	// ErrUserNotInVoice is returned when the requesting user is not in a
	// voice channel.
	ErrUserNotInVoice = errors.New("you must be in a voice channel")

	// ErrBotInDifferentChannel is returned when the room's session is
	// already connected to another voice channel.
	ErrBotInDifferentChannel = errors.New("already connected to a different voice channel")

	// ErrTrackNotFound is returned when the resolver found nothing for a
	// query or a stored identifier.
	ErrTrackNotFound = errors.New("track not found")

	// ErrTransportUnavailable is returned when connecting or playing failed
	// at the transport boundary.
	ErrTransportUnavailable = errors.New("voice transport unavailable")

	// ErrQueueEmpty is returned for queue operations on an empty queue.
	ErrQueueEmpty = errors.New("the queue is empty")

	// ErrNothingToShuffle is returned when the queue has fewer than two tracks.
	ErrNothingToShuffle = errors.New("need at least two tracks to shuffle")
)

// Re-exported domain errors, so the presentation layer depends only on this
// package.
var (
	ErrNothingPlaying  = domain.ErrNothingPlaying
	ErrAlreadyPaused   = domain.ErrAlreadyPaused
	ErrNotPaused       = domain.ErrNotPaused
	ErrIndexOutOfRange = domain.ErrIndexOutOfRange
)
