package packet

// Tracker follows the sequence numbers seen by a receiver and counts the
// packets that never arrived. Sequence numbers wrap at 65536.
type Tracker struct {
	Received uint64
	Lost     uint64
	next     uint16
	started  bool
}

// Observe records seq and returns how many packets were skipped since the
// previous one. A seq equal to the previous one is counted as a gap of
// 65535, the same as a full wrap.
func (t *Tracker) Observe(seq uint16) uint16 {
	t.Received++
	if !t.started {
		t.started = true
		t.next = seq + 1
		return 0
	}
	gap := seq - t.next
	t.Lost += uint64(gap)
	t.next = seq + 1
	return gap
}
