package ports

import "github.com/disgoorg/snowflake/v2"

// NotificationSink posts user-facing notices outside the command
// request/response cycle, such as auto-disconnect notices. Callers treat
// failures as best-effort and swallow them.
type NotificationSink interface {
	Post(channelID snowflake.ID, title, description string) error
}
