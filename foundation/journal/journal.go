// Package journal records undo actions for in memory state so a failed
// operation can be rolled back to an earlier snapshot, including any nested
// operations that ran inside it.
package journal

// Journal maintains the ordered set of undo actions recorded since the
// last commit. It is not safe for concurrent use; callers serialize access.
type Journal struct {
	undo  []func()
	depth int
}

// Append records an action that reverses a change that was just applied.
func (j *Journal) Append(undo func()) {
	j.undo = append(j.undo, undo)
}

// Snapshot returns an identifier for the current position in the journal.
func (j *Journal) Snapshot() int {
	return len(j.undo)
}

// Revert runs every undo action recorded after the snapshot in reverse
// order and discards them.
func (j *Journal) Revert(snapshot int) {
	for i := len(j.undo) - 1; i >= snapshot; i-- {
		j.undo[i]()
	}
	j.undo = j.undo[:snapshot]
}

// Enter marks the start of an operation and returns the snapshot to revert
// to if the operation fails.
func (j *Journal) Enter() int {
	j.depth++
	return j.Snapshot()
}

// Exit marks the end of an operation. When err is not nil the operation is
// reverted. When the outermost operation completes successfully the journal
// is committed and Exit returns true.
func (j *Journal) Exit(snapshot int, err error) bool {
	j.depth--

	if err != nil {
		j.Revert(snapshot)
		return false
	}

	if j.depth == 0 {
		j.undo = j.undo[:0]
		return true
	}

	return false
}

// Depth returns the number of operations currently in progress.
func (j *Journal) Depth() int {
	return j.depth
}

// Len returns the number of undo actions pending commit.
func (j *Journal) Len() int {
	return len(j.undo)
}
