package radio

import (
	"math"
	"time"
)

type simSample struct {
	i, q uint32
}

// Simulator stands in for the FPGA when no hardware is present. Samples are
// produced at a fixed rate into a bounded FIFO; each is the fake oscillator's
// tone mixed down by the tune oscillator, as signed 32-bit I and Q words.
// Data reads alternate I then Q; an entry leaves the FIFO on its I read. Setting
// the reset bit flushes the FIFO and halts production.
type Simulator struct {
	Amplitude  float64
	ClockHz    float64
	SampleRate float64
	Depth      int

	// Overflows counts samples lost to a full FIFO, Underruns counts data
	// reads from an empty one.
	Overflows uint64
	Underruns uint64

	now       func() time.Time
	last      time.Time
	elapsed   time.Duration
	produced  int64
	ctrl      uint32
	fakePinc  uint32
	tunePinc  uint32
	fakePhase float64
	tunePhase float64
	fifo      []simSample
	head      simSample
	qPending  bool
}

func NewSimulator(clockHz, sampleRate float64, depth int) *Simulator {
	return &Simulator{
		Amplitude:  float64(1 << 20),
		ClockHz:    clockHz,
		SampleRate: sampleRate,
		Depth:      depth,
		now:        time.Now,
		ctrl:       CtrlReset,
	}
}

func (s *Simulator) Read(off ReadReg) uint32 {
	s.advance()
	switch off {
	case RegCount:
		return uint32(len(s.fifo))
	case RegData:
		if s.qPending {
			s.qPending = false
			return s.head.q
		}
		if len(s.fifo) == 0 {
			s.Underruns++
		} else {
			s.head = s.fifo[0]
			s.fifo = s.fifo[1:]
		}
		s.qPending = true
		return s.head.i
	}
	return 0
}

func (s *Simulator) Write(off WriteReg, v uint32) {
	s.advance()
	switch off {
	case RegFake:
		s.fakePinc = v
	case RegTune:
		s.tunePinc = v
	case RegCtrl:
		s.ctrl = v
		if v&CtrlReset != 0 {
			s.fifo = s.fifo[:0]
			s.qPending = false
			s.fakePhase, s.tunePhase = 0, 0
		}
	}
}

func (s *Simulator) Close() error {
	return nil
}

func (s *Simulator) advance() {
	now := s.now()
	if s.last.IsZero() || s.ctrl&CtrlReset != 0 {
		s.last = now
		s.elapsed, s.produced = 0, 0
		return
	}
	s.elapsed += now.Sub(s.last)
	s.last = now
	target := int64(float64(s.elapsed) * s.SampleRate / float64(time.Second))
	for ; s.produced < target; s.produced++ {
		s.produce()
	}
}

func (s *Simulator) produce() {
	// Phases are kept in cycles; the NCOs step once per clock, and one output
	// sample spans ClockHz/SampleRate clocks.
	clocks := s.ClockHz / s.SampleRate
	s.fakePhase = frac(s.fakePhase + float64(s.fakePinc)/(1<<32)*clocks)
	s.tunePhase = frac(s.tunePhase + float64(s.tunePinc)/(1<<32)*clocks)
	if len(s.fifo) >= s.Depth {
		s.Overflows++
		return
	}
	sin, cos := math.Sincos(2 * math.Pi * (s.fakePhase - s.tunePhase))
	s.fifo = append(s.fifo, simSample{
		i: uint32(int32(math.Round(s.Amplitude * cos))),
		q: uint32(int32(math.Round(s.Amplitude * sin))),
	})
}

func frac(x float64) float64 {
	return x - math.Floor(x)
}
