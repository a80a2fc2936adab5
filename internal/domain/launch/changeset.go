package launch

// ChangeSet is the delta computed for an existing window.
type ChangeSet struct {
	Added    []*Launch
	Modified []*Launch
}

// Empty reports whether the change set carries nothing to persist or announce.
func (c ChangeSet) Empty() bool {
	return len(c.Added) == 0 && len(c.Modified) == 0
}
