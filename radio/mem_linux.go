//go:build linux

package radio

import (
	"fmt"
	"os"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"
)

// MemDevice maps the radio's register window out of a physical memory device
// such as /dev/mem.
type MemDevice struct {
	fd    int
	data  []byte
	words []uint32
}

// OpenMem maps size bytes at physical address base from path. base must be
// page aligned.
func OpenMem(path string, base int64, size int) (*MemDevice, error) {
	if base%int64(os.Getpagesize()) != 0 {
		return nil, fmt.Errorf("base 0x%x is not page aligned", base)
	}
	if size < int(RegCtrl)+4 {
		return nil, fmt.Errorf("map size 0x%x does not cover the register table", size)
	}
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_SYNC, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	data, err := unix.Mmap(fd, base, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("mmap %s at 0x%x: %w", path, base, err)
	}
	return &MemDevice{
		fd:    fd,
		data:  data,
		words: unsafe.Slice((*uint32)(unsafe.Pointer(&data[0])), len(data)/4),
	}, nil
}

// Atomic loads and stores keep the compiler from caching or combining
// accesses to the mapped window.
func (m *MemDevice) Read(off ReadReg) uint32 {
	return atomic.LoadUint32(&m.words[off>>2])
}

func (m *MemDevice) Write(off WriteReg, v uint32) {
	atomic.StoreUint32(&m.words[off>>2], v)
}

func (m *MemDevice) Close() error {
	if m.data == nil {
		return nil
	}
	m.words = nil
	err := unix.Munmap(m.data)
	m.data = nil
	if cerr := unix.Close(m.fd); err == nil {
		err = cerr
	}
	return err
}
