//go:build !linux

package control

import (
	"bufio"
	"os"

	"github.com/charmbracelet/log"
)

// FDSource feeds lines from f through a reader goroutine where non-blocking
// descriptors are not available.
type FDSource struct {
	*ChanSource
}

func NewFDSource(f *os.File, logger *log.Logger) (*FDSource, error) {
	if logger == nil {
		logger = log.Default()
	}
	lines := make(chan string, 16)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		if err := scanner.Err(); err != nil {
			logger.Warn("control input failed", "err", err)
		}
	}()
	return &FDSource{NewChanSource(lines)}, nil
}

func (s *FDSource) Close() error {
	return nil
}
