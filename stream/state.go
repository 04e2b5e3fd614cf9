package stream

import (
	"net/netip"
	"sync/atomic"
)

type State int

const (
	Idle State = iota
	Active
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "IDLE"
	case Active:
		return "ACTIVE"
	case Stopped:
		return "STOPPED"
	}
	return "UNKNOWN"
}

// TuningState is everything the control channel can change. The loop owns
// the live copy; other goroutines read published snapshots.
type TuningState struct {
	FakeHz    float64
	FakePinc  uint32
	TuneHz    float64
	TunePinc  uint32
	Streaming bool
	Dest      netip.AddrPort
}

// Stats counts loop outcomes. Written by the loop only; safe to read from anywhere.
type Stats struct {
	Sent      atomic.Uint64
	Dropped   atomic.Uint64
	Underruns atomic.Uint64
	Applied   atomic.Uint64
	Ignored   atomic.Uint64
	LastSeq   atomic.Uint32
}

// Counters is a point-in-time copy of Stats.
type Counters struct {
	Sent      uint64
	Dropped   uint64
	Underruns uint64
	Applied   uint64
	Ignored   uint64
	LastSeq   uint16
}

func (s *Stats) Snapshot() Counters {
	return Counters{
		Sent:      s.Sent.Load(),
		Dropped:   s.Dropped.Load(),
		Underruns: s.Underruns.Load(),
		Applied:   s.Applied.Load(),
		Ignored:   s.Ignored.Load(),
		LastSeq:   uint16(s.LastSeq.Load()),
	}
}
