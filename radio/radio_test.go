package radio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type access struct {
	write bool
	off   uint32
	val   uint32
}

// traceDevice records every bus access and serves data reads from a script.
type traceDevice struct {
	log   []access
	count uint32
	data  []uint32
}

func (d *traceDevice) Read(off ReadReg) uint32 {
	var v uint32
	switch off {
	case RegCount:
		v = d.count
	case RegData:
		if len(d.data) > 0 {
			v, d.data = d.data[0], d.data[1:]
		}
	}
	d.log = append(d.log, access{false, uint32(off), v})
	return v
}

func (d *traceDevice) Write(off WriteReg, v uint32) {
	d.log = append(d.log, access{true, uint32(off), v})
}

func (d *traceDevice) Close() error { return nil }

func TestRadioWrites(t *testing.T) {
	dev := &traceDevice{}
	r := New(dev, refClock)
	assert.False(t, r.Running())

	fake := r.SetFake(1e6)
	tune := r.SetTune(2e6)
	r.Run(false)
	assert.True(t, r.Running())
	r.Reset()
	assert.False(t, r.Running())

	assert.Equal(t, []access{
		{true, 0x00, PincFromHz(1e6, refClock)},
		{true, 0x04, PincFromHz(2e6, refClock)},
		{true, 0x08, 0},
		{true, 0x08, CtrlReset},
	}, dev.log)
	gotFake, gotTune := r.Pincs()
	assert.Equal(t, fake, gotFake)
	assert.Equal(t, tune, gotTune)
}

func TestRadioRunClearsTimer(t *testing.T) {
	dev := &traceDevice{}
	New(dev, refClock).Run(true)
	assert.Equal(t, []access{{true, 0x08, CtrlTimerClear}, {true, 0x08, 0}}, dev.log)
}

func TestPopSampleReadsIThenQ(t *testing.T) {
	dev := &traceDevice{count: 7, data: []uint32{0x11, 0x22, 0x33, 0x44}}
	r := New(dev, refClock)
	assert.Equal(t, uint32(7), r.FIFOCount())
	i, q := r.PopSample()
	assert.Equal(t, uint32(0x11), i)
	assert.Equal(t, uint32(0x22), q)
	i, q = r.PopSample()
	assert.Equal(t, uint32(0x33), i)
	assert.Equal(t, uint32(0x44), q)
	// One count read and four data reads, nothing elided.
	assert.Len(t, dev.log, 5)
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func newTestSim(rate float64, depth int) (*Simulator, *fakeClock) {
	clk := &fakeClock{t: time.Unix(1000, 0)}
	s := NewSimulator(refClock, rate, depth)
	s.now = clk.now
	return s, clk
}

func TestSimulatorHeldInReset(t *testing.T) {
	s, clk := newTestSim(1000, 64)
	s.Read(RegCount)
	clk.t = clk.t.Add(time.Second)
	assert.Equal(t, uint32(0), s.Read(RegCount))
}

func TestSimulatorFillsAndPops(t *testing.T) {
	s, clk := newTestSim(1000, 64)
	r := New(s, refClock)
	r.Run(false)

	clk.t = clk.t.Add(10 * time.Millisecond)
	require.Equal(t, uint32(10), r.FIFOCount())

	r.PopSample()
	assert.Equal(t, uint32(9), r.FIFOCount())

	// Half a sample period carries over to the next read.
	clk.t = clk.t.Add(1500 * time.Microsecond)
	assert.Equal(t, uint32(10), r.FIFOCount())
	clk.t = clk.t.Add(500 * time.Microsecond)
	assert.Equal(t, uint32(11), r.FIFOCount())
}

func TestSimulatorOverflowAndUnderrun(t *testing.T) {
	s, clk := newTestSim(1000, 8)
	r := New(s, refClock)
	r.Run(false)

	clk.t = clk.t.Add(20 * time.Millisecond)
	assert.Equal(t, uint32(8), r.FIFOCount())
	assert.Equal(t, uint64(12), s.Overflows)

	for range 9 {
		r.PopSample()
	}
	assert.Equal(t, uint32(0), r.FIFOCount())
	assert.Equal(t, uint64(1), s.Underruns)

	r.Reset()
	clk.t = clk.t.Add(20 * time.Millisecond)
	assert.Equal(t, uint32(0), r.FIFOCount())
}

func TestSimulatorToneAtZeroOffset(t *testing.T) {
	s, clk := newTestSim(1e6, 1024)
	r := New(s, refClock)
	// Mixing a tone down by the same frequency leaves DC: I at full scale, Q at 0.
	r.SetFake(1e6)
	r.SetTune(1e6)
	r.Run(false)
	clk.t = clk.t.Add(100 * time.Microsecond)
	require.Equal(t, uint32(100), r.FIFOCount())
	for range 100 {
		i, q := r.PopSample()
		assert.Equal(t, int32(s.Amplitude), int32(i))
		assert.Equal(t, int32(0), int32(q))
	}
}
