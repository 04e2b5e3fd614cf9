package radio

import (
	"github.com/charmbracelet/log"
)

// Radio is the typed front end over a register Device. It owns the device for
// the life of the process and must only be driven from one goroutine.
type Radio struct {
	ClockHz float64
	dev     Device
	fake    uint32
	tune    uint32
	ctrl    uint32
}

func New(dev Device, clockHz float64) *Radio {
	return &Radio{
		ClockHz: clockHz,
		dev:     dev,
		ctrl:    CtrlReset,
	}
}

// SetFake programs the test-tone oscillator and returns the phase increment written.
func (r *Radio) SetFake(hz float64) uint32 {
	r.fake = PincFromHz(hz, r.ClockHz)
	r.dev.Write(RegFake, r.fake)
	log.Debugf("fake pinc=0x%08x (%.3f Hz)", r.fake, hz)
	return r.fake
}

// SetTune programs the down-conversion oscillator and returns the phase increment written.
func (r *Radio) SetTune(hz float64) uint32 {
	r.tune = PincFromHz(hz, r.ClockHz)
	r.dev.Write(RegTune, r.tune)
	log.Debugf("tune pinc=0x%08x (%.3f Hz)", r.tune, hz)
	return r.tune
}

// Run takes the radio out of reset, optionally clearing the timestamp timer
// in the same write.
func (r *Radio) Run(clearTimer bool) {
	r.ctrl = 0
	if clearTimer {
		r.dev.Write(RegCtrl, CtrlTimerClear)
	}
	r.dev.Write(RegCtrl, r.ctrl)
}

// Reset holds the radio in reset. The FIFO stops filling.
func (r *Radio) Reset() {
	r.ctrl = CtrlReset
	r.dev.Write(RegCtrl, r.ctrl)
}

func (r *Radio) Running() bool {
	return r.ctrl&CtrlReset == 0
}

// FIFOCount reads the number of complete samples buffered in the device.
func (r *Radio) FIFOCount() uint32 {
	return r.dev.Read(RegCount)
}

// PopSample reads one I word then one Q word. No fill check is made; popping
// an empty FIFO returns whatever the hardware presents.
func (r *Radio) PopSample() (i, q uint32) {
	i = r.dev.Read(RegData)
	q = r.dev.Read(RegData)
	return i, q
}

// Pincs returns the last phase increments written to the fake and tune oscillators.
func (r *Radio) Pincs() (fake, tune uint32) {
	return r.fake, r.tune
}

func (r *Radio) Close() error {
	return r.dev.Close()
}
