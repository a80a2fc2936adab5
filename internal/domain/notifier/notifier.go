// internal/domain/notifier/notifier.go
package notifier

import (
	"context"

	"launch_notifier/internal/domain/launch"
)

// Notifier delivers window announcements to a channel.
// A nil error is a best-effort delivery confirmation, not a guarantee.
type Notifier interface {
	// SendInitial announces every launch of a newly created window.
	SendInitial(ctx context.Context, w *launch.Window) error
	// SendDelta announces only the launches added or modified since the last run.
	SendDelta(ctx context.Context, changes launch.ChangeSet, w *launch.Window) error
}
