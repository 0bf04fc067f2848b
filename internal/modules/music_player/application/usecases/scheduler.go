package usecases

import (
	"context"
	"log/slog"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// cleanupTimeout bounds the transport disconnect performed by a firing timer.
const cleanupTimeout = 10 * time.Second

// Notices posted when an automatic disconnect completes.
const (
	noticeEmptyRoom = "Left the voice channel because everyone else left."
	noticeInactive  = "Left the voice channel after sitting idle for too long."
)

// DisconnectScheduler coalesces the two independent auto-disconnect triggers
// into one idempotent cleanup path. The empty-room trigger arms at most one
// delayed timer per room and cancels it when the room repopulates; the
// inactivity trigger is terminal and disconnects immediately. Cleanup happens
// exactly once per room even when both triggers race each other or an
// explicit leave: removal from the registry decides the winner.
type DisconnectScheduler struct {
	registry *Registry
	timeout  time.Duration
}

// NewDisconnectScheduler creates a scheduler over the given registry. timeout
// is how long a room must stay empty before the disconnect fires.
func NewDisconnectScheduler(registry *Registry, timeout time.Duration) *DisconnectScheduler {
	return &DisconnectScheduler{
		registry: registry,
		timeout:  timeout,
	}
}

// OnRoomOccupancyChanged handles a change in the count of non-bot occupants
// of the room's voice channel. A count of zero schedules a delayed
// disconnect; any other count cancels a pending one.
func (d *DisconnectScheduler) OnRoomOccupancyChanged(roomID snowflake.ID, nonBotOccupants int) {
	session, ok := d.registry.Get(roomID)
	if !ok {
		return
	}

	if nonBotOccupants > 0 {
		if session.cancelDisconnect() {
			slog.Debug("cancelled empty-room disconnect", "guild", roomID)
		}
		return
	}

	if session.scheduleDisconnect(d.timeout, func() {
		d.finalize(roomID, noticeEmptyRoom)
	}) {
		slog.Debug("scheduled empty-room disconnect",
			"guild", roomID,
			"timeout", d.timeout,
		)
	}
}

// OnPlayerInactive handles the transport's notification that a room's player
// sat idle past the inactivity threshold. It is terminal: the room is cleaned
// up immediately.
func (d *DisconnectScheduler) OnPlayerInactive(roomID snowflake.ID) {
	d.finalize(roomID, noticeInactive)
}

// finalize performs the one-time cleanup for a room. Losing a race against an
// explicit leave or the other trigger is a silent no-op.
func (d *DisconnectScheduler) finalize(roomID snowflake.ID, notice string) {
	session, ok := d.registry.Remove(roomID)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()

	if session.Close(ctx, notice) {
		slog.Info("auto-disconnected from voice channel", "guild", roomID)
	}
}
