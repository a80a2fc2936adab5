package launch

import "time"

// Launch is one upcoming rocket launch within a Window.
// Corresponds to the 'launches' table.
type Launch struct {
	ID          string    // Local record id, kept stable once stored
	SubjectID   string    // Upstream launch id; the only key used to match fetched and stored launches
	Name        string    // Rocket / mission label
	Status      Status    // e.g., StatusGoForLaunch
	ScheduledAt time.Time // T0
	LastUpdated time.Time // When the upstream feed last modified the record
	WindowID    string    // Foreign Key to windows.id
}

// Clone returns an independent copy of l.
func (l *Launch) Clone() *Launch {
	c := *l
	return &c
}

// SameOccurrence reports whether a and b describe the same upstream launch.
func SameOccurrence(a, b *Launch) bool {
	return a.SubjectID == b.SubjectID
}

// IsModifiedBy reports whether fetched carries a meaningful change for stored.
// An upstream timestamp bump alone is not a change; the status or T0 must differ too.
func IsModifiedBy(stored, fetched *Launch) bool {
	if stored.LastUpdated.Equal(fetched.LastUpdated) {
		return false
	}
	return stored.Status != fetched.Status || !stored.ScheduledAt.Equal(fetched.ScheduledAt)
}

// ApplyUpdate copies the mutable fields of fetched onto l. Identity (ID,
// SubjectID, WindowID) is left untouched.
func (l *Launch) ApplyUpdate(fetched *Launch) {
	l.Name = fetched.Name
	l.Status = fetched.Status
	l.ScheduledAt = fetched.ScheduledAt
	l.LastUpdated = fetched.LastUpdated
}
