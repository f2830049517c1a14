package fetch

// chunkTracker computes the substring of response text appended since
// the previous delta call. Exactly one tracker exists per Result, and
// its offset mutates only inside progress-handler invocations, which
// the driving goroutine serializes, so no locking is needed.
type chunkTracker struct {
	offset int
}

// delta returns a copy of the portion of cumulative not yet surfaced
// and advances the offset to the end of cumulative. The response text
// is assumed to be monotonically non-decreasing in length within one
// exchange; a shrinking body is outside HTTP semantics and yields nil.
func (t *chunkTracker) delta(cumulative string) []byte {
	if t.offset > len(cumulative) {
		return nil
	}

	chunk := make([]byte, len(cumulative)-t.offset)
	copy(chunk, cumulative[t.offset:])
	t.offset = len(cumulative)

	return chunk
}
