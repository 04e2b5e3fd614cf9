// Package stream runs the acquisition loop: poll the control channel, check
// the FIFO, drain one packet's worth of samples and send it.
package stream

import (
	"bytes"
	"context"
	"net/netip"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jrwynneiii/iqbridge/config"
	"github.com/jrwynneiii/iqbridge/control"
	"github.com/jrwynneiii/iqbridge/packet"
	"github.com/jrwynneiii/iqbridge/radio"
	"github.com/oklog/ulid/v2"
)

// Outcome is what one iteration of the loop did.
type Outcome int

const (
	OutcomeStopped Outcome = iota
	OutcomeIdle
	OutcomeUnderrun
	OutcomeSent
	OutcomeDropped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeStopped:
		return "stopped"
	case OutcomeIdle:
		return "idle"
	case OutcomeUnderrun:
		return "underrun"
	case OutcomeSent:
		return "sent"
	case OutcomeDropped:
		return "dropped"
	}
	return "unknown"
}

// Loop is a single cooperative actor. Run (or Step) must only be called from
// one goroutine, which then owns the radio and the sink.
type Loop struct {
	Session ulid.ULID
	Stats   Stats
	// Tap, if set before Run, receives copies of sent payloads whenever it
	// has room. The loop never blocks on it.
	Tap chan []byte

	radio *radio.Radio
	sink  Sink
	src   control.Source
	pk    *packet.Packetizer
	conf  config.StreamConf
	log   *log.Logger
	wait  func(time.Duration)

	state     TuningState
	published atomic.Pointer[TuningState]
	seq       uint16
	stopped   bool
}

func New(r *radio.Radio, sink Sink, src control.Source, pk *packet.Packetizer, conf config.StreamConf, initial TuningState, logger *log.Logger) *Loop {
	if logger == nil {
		logger = log.Default()
	}
	l := &Loop{
		Session: ulid.Make(),
		radio:   r,
		sink:    sink,
		src:     src,
		pk:      pk,
		conf:    conf,
		state:   initial,
	}
	l.log = logger.With("session", l.Session.String())
	l.wait = func(d time.Duration) { control.Wait(src, d) }
	l.publish()
	return l
}

func (l *Loop) State() State {
	switch {
	case l.stopped:
		return Stopped
	case l.state.Streaming:
		return Active
	}
	return Idle
}

// Tuning returns the most recently published TuningState. Safe from any goroutine.
func (l *Loop) Tuning() TuningState {
	return *l.published.Load()
}

func (l *Loop) publish() {
	snap := l.state
	l.published.Store(&snap)
}

// Run iterates until a quit command arrives or ctx is done. Cancellation is
// only observed at the top of an iteration.
func (l *Loop) Run(ctx context.Context) {
	l.log.Info("Stream loop started", "dest", l.state.Dest, "streaming", l.state.Streaming,
		"samples", l.pk.Samples(), "bytes", l.pk.Size())
	for {
		if ctx.Err() != nil {
			l.log.Info("Stream loop cancelled", "reason", context.Cause(ctx))
			l.stopped = true
			break
		}
		if l.Step() == OutcomeStopped {
			break
		}
	}
	c := l.Stats.Snapshot()
	l.log.Info("Stream loop stopped", "sent", c.Sent, "dropped", c.Dropped, "underruns", c.Underruns)
}

// Step runs one iteration: at most one command, then at most one packet.
func (l *Loop) Step() Outcome {
	if l.stopped {
		return OutcomeStopped
	}
	if line, ok := l.src.Poll(); ok {
		if quit := l.apply(control.Parse(line)); quit {
			l.stopped = true
			return OutcomeStopped
		}
	}

	if !l.state.Streaming {
		l.wait(l.conf.IdleBackoff())
		return OutcomeIdle
	}

	// Fill is checked once; the pops below do not re-check it.
	if l.radio.FIFOCount() < uint32(l.pk.Samples()) {
		l.Stats.Underruns.Add(1)
		l.wait(l.conf.UnderrunBackoff())
		return OutcomeUnderrun
	}

	seq := l.seq
	buf := l.pk.Assemble(seq, l.radio)
	l.seq++
	l.Stats.LastSeq.Store(uint32(seq))

	n, err := l.sink.Send(buf, l.state.Dest)
	if err != nil || n != len(buf) {
		l.Stats.Dropped.Add(1)
		l.log.Warn("Dropped packet", "seq", seq, "sent", n, "want", len(buf), "err", err)
		l.wait(l.conf.DropBackoff())
		return OutcomeDropped
	}
	l.Stats.Sent.Add(1)
	if l.Tap != nil && len(l.Tap) < cap(l.Tap) {
		l.Tap <- bytes.Clone(buf)
	}
	return OutcomeSent
}

// apply performs one command's effect and reports whether it was a quit.
func (l *Loop) apply(c control.Command) bool {
	switch c.Kind {
	case control.Quit:
		l.log.Info("Quit requested")
		return true
	case control.Fake:
		l.state.FakeHz = c.Hz
		l.state.FakePinc = l.radio.SetFake(c.Hz)
		l.log.Info("Fake oscillator", "hz", c.Hz, "pinc", l.state.FakePinc)
	case control.Tune:
		l.state.TuneHz = c.Hz
		l.state.TunePinc = l.radio.SetTune(c.Hz)
		l.log.Info("Tune oscillator", "hz", c.Hz, "pinc", l.state.TunePinc)
	case control.Dest:
		l.state.Dest = netip.AddrPortFrom(c.Addr, l.state.Dest.Port())
		l.log.Info("Destination", "dest", l.state.Dest)
	case control.Stream:
		if c.On == l.state.Streaming {
			l.log.Debug("Streaming unchanged", "streaming", c.On)
			return false
		}
		l.state.Streaming = c.On
		l.log.Info("Streaming", "streaming", c.On, "state", l.State())
	case control.BadDest:
		l.Stats.Ignored.Add(1)
		l.log.Warn("Ignoring unparsable destination, keeping current", "arg", c.Arg, "dest", l.state.Dest)
		return false
	default:
		l.Stats.Ignored.Add(1)
		l.log.Debug("Ignoring unrecognized command", "line", c.Line)
		return false
	}
	l.Stats.Applied.Add(1)
	l.publish()
	return false
}
