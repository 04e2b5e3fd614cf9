//go:build !linux

package radio

import (
	"fmt"
	"runtime"
)

type MemDevice struct{}

func OpenMem(path string, base int64, size int) (*MemDevice, error) {
	return nil, fmt.Errorf("mapping %s is not supported on %s", path, runtime.GOOS)
}

func (m *MemDevice) Read(off ReadReg) uint32 { return 0 }

func (m *MemDevice) Write(off WriteReg, v uint32) {}

func (m *MemDevice) Close() error { return nil }
