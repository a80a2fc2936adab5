// internal/domain/launch/window.go
package launch

import (
	"fmt"
	"time"
)

// NeverNotified is the NotifiedAt value of a window that has not had a
// successful notification yet.
var NeverNotified = time.Time{}

// Window represents one upcoming week and the launches scheduled in it.
// Corresponds to the 'windows' table.
type Window struct {
	ID         string
	WeekNumber int // ISO week
	Year       int // ISO year
	Start      time.Time
	End        time.Time
	NotifiedAt time.Time
	Launches   []*Launch
}

// Notified reports whether a notification was ever delivered for the window.
func (w *Window) Notified() bool {
	return !w.NotifiedAt.Equal(NeverNotified)
}

// LaunchBySubject indexes the window's launches by SubjectID.
func (w *Window) LaunchBySubject() map[string]*Launch {
	idx := make(map[string]*Launch, len(w.Launches))
	for _, l := range w.Launches {
		idx[l.SubjectID] = l
	}
	return idx
}

func (w *Window) String() string {
	return fmt.Sprintf("week %d/%d (%s - %s), %d launches",
		w.WeekNumber, w.Year,
		w.Start.Format("2006-01-02"), w.End.Format("2006-01-02"),
		len(w.Launches))
}
