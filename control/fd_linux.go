//go:build linux

package control

import (
	"errors"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sys/unix"
)

// FDSource reads commands from a file descriptor switched to non-blocking
// mode, normally stdin.
type FDSource struct {
	fd  int
	buf lineBuffer
	eof bool
	log *log.Logger
}

func NewFDSource(f *os.File, logger *log.Logger) (*FDSource, error) {
	// Fd puts the descriptor back in blocking mode, so take it before
	// switching to non-blocking.
	fd := int(f.Fd())
	if err := unix.SetNonblock(fd, true); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}
	return &FDSource{fd: fd, log: logger}, nil
}

func (s *FDSource) Poll() (string, bool) {
	if line, ok := s.buf.Next(); ok {
		return line, true
	}
	if !s.eof {
		s.fill()
		if line, ok := s.buf.Next(); ok {
			return line, true
		}
	}
	if s.eof {
		return s.buf.Flush()
	}
	return "", false
}

func (s *FDSource) fill() {
	var chunk [128]byte
	n, err := unix.Read(s.fd, chunk[:])
	switch {
	case n > 0:
		s.buf.Write(chunk[:n])
	case err == nil:
		s.log.Debug("control input closed")
		s.eof = true
	case errors.Is(err, unix.EAGAIN), errors.Is(err, unix.EINTR):
	default:
		s.log.Warn("control input failed, ignoring further input", "err", err)
		s.eof = true
	}
}

// Wait polls the descriptor for up to d, returning as soon as input arrives.
func (s *FDSource) Wait(d time.Duration) {
	if s.buf.HasLine() {
		return
	}
	d = max(d, 0)
	if s.eof {
		time.Sleep(d)
		return
	}
	fds := []unix.PollFd{{Fd: int32(s.fd), Events: unix.POLLIN}}
	start := time.Now()
	_, err := unix.Poll(fds, int(d.Milliseconds()))
	if err != nil && !errors.Is(err, unix.EINTR) {
		time.Sleep(d - time.Since(start))
	}
}

// Close puts the descriptor back into blocking mode.
func (s *FDSource) Close() error {
	return unix.SetNonblock(s.fd, false)
}
