package history

// batchDiscardAfter is how many manual edits a batch snapshot survives
// before the revert option is discarded as stale.
const batchDiscardAfter = 5

// Batch holds the one-shot revert snapshot captured before an externally
// driven bulk edit (e.g. an automated editing assistant rewriting the
// graph). It is independent of undo history: reverting restores the whole
// pre-batch state in one step.
type Batch struct {
	snapshot   *Snapshot
	editsSince int
}

// Capture stores a deep copy of the pre-batch state, replacing any earlier
// snapshot.
func (b *Batch) Capture(s Snapshot) {
	clone := s.Clone()
	b.snapshot = &clone
	b.editsSince = 0
}

// Revert returns the captured state and discards the snapshot. The second
// return is false if nothing was captured or the snapshot already expired.
func (b *Batch) Revert() (Snapshot, bool) {
	if b.snapshot == nil {
		return Snapshot{}, false
	}
	s := *b.snapshot
	b.snapshot = nil
	b.editsSince = 0
	return s, true
}

// NoteManualEdit records one manual edit after the batch. Once enough
// edits accumulate the snapshot is discarded so a stale revert option does
// not linger.
func (b *Batch) NoteManualEdit() {
	if b.snapshot == nil {
		return
	}
	b.editsSince++
	if b.editsSince >= batchDiscardAfter {
		b.snapshot = nil
		b.editsSince = 0
	}
}

// Available reports whether a revert is currently possible.
func (b *Batch) Available() bool { return b.snapshot != nil }
