package radio

// ReadReg is the byte offset of a read-only register, relative to the map base.
type ReadReg uint32

// WriteReg is the byte offset of a write-only register, relative to the map base.
type WriteReg uint32

// The read and write sides of the AXI-lite slave share offsets but decode to
// different registers.
const (
	RegFake WriteReg = 0x00 // fake DDS phase increment
	RegTune WriteReg = 0x04 // tuner DDS phase increment
	RegCtrl WriteReg = 0x08 // bit0: reset (active high), bit1: timer clear

	RegCount ReadReg = 0x00 // FIFO fill count, in samples
	RegData  ReadReg = 0x04 // pops one word: I, then Q
)

const (
	CtrlReset      uint32 = 1 << 0
	CtrlTimerClear uint32 = 1 << 1
)

// Device is raw 32-bit access to the radio's register window. Every call is one
// bus transaction; implementations must not cache, merge or reorder accesses,
// since reading RegData consumes FIFO contents.
type Device interface {
	Read(off ReadReg) uint32
	Write(off WriteReg, v uint32)
	Close() error
}
