package domain

// Status is the playback status of a room.
type Status int

const (
	// StatusIdle means nothing has played yet, or playback ended or was cleared.
	StatusIdle Status = iota

	// StatusPlaying means a current track is playing on the transport.
	StatusPlaying

	// StatusPaused means a current track exists and playback is suspended.
	StatusPaused
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	default:
		return "idle"
	}
}

// StateMachine records what is true about a room's playback and validates
// which commands are legal from the current status. It performs no I/O.
//
// Transitions are two-phase: a Check method reports whether a command is
// legal without mutating, and the caller commits the confirmed transport
// outcome with a Mark method. This keeps the machine honest when a transport
// or resolver call fails between the two.
type StateMachine struct {
	status Status
}

// NewStateMachine creates a StateMachine in the idle status.
func NewStateMachine() StateMachine {
	return StateMachine{status: StatusIdle}
}

// Status returns the current status.
func (m *StateMachine) Status() Status {
	return m.status
}

// CheckPause reports whether a pause command is legal.
func (m *StateMachine) CheckPause() error {
	switch m.status {
	case StatusIdle:
		return ErrNothingPlaying
	case StatusPaused:
		return ErrAlreadyPaused
	}
	return nil
}

// CheckResume reports whether a resume command is legal.
func (m *StateMachine) CheckResume() error {
	switch m.status {
	case StatusIdle:
		return ErrNothingPlaying
	case StatusPlaying:
		return ErrNotPaused
	}
	return nil
}

// CheckSkip reports whether a skip command is legal. Skipping requires active
// playback; a paused or idle room has nothing to skip past.
func (m *StateMachine) CheckSkip() error {
	if m.status != StatusPlaying {
		return ErrNothingPlaying
	}
	return nil
}

// MarkPlaying records that the transport confirmably started or switched tracks.
func (m *StateMachine) MarkPlaying() {
	m.status = StatusPlaying
}

// MarkPaused records that the transport confirmably paused.
func (m *StateMachine) MarkPaused() {
	m.status = StatusPaused
}

// MarkIdle records that playback ended, was stopped, or was cleared.
func (m *StateMachine) MarkIdle() {
	m.status = StatusIdle
}
