package control

import (
	"bytes"
	"time"
)

// Source yields complete command lines without blocking.
type Source interface {
	Poll() (line string, ok bool)
}

// Waiter is implemented by sources that can wait out a loop backoff while
// watching for input, returning early when a line may be ready.
type Waiter interface {
	Wait(d time.Duration)
}

// Wait backs off for d, through src when it knows how.
func Wait(src Source, d time.Duration) {
	if w, ok := src.(Waiter); ok {
		w.Wait(d)
		return
	}
	time.Sleep(d)
}

// maxLine bounds an unterminated line; longer input is cut into a line of its own.
const maxLine = 4096

// lineBuffer splits a byte stream into lines, holding back a trailing partial line.
type lineBuffer struct {
	buf bytes.Buffer
}

func (l *lineBuffer) Write(p []byte) {
	l.buf.Write(p)
}

func (l *lineBuffer) Next() (string, bool) {
	b := l.buf.Bytes()
	idx := bytes.IndexByte(b, '\n')
	switch {
	case idx >= 0:
		line := string(bytes.TrimSuffix(b[:idx], []byte{'\r'}))
		l.buf.Next(idx + 1)
		return line, true
	case len(b) >= maxLine:
		line := string(b[:maxLine])
		l.buf.Next(maxLine)
		return line, true
	}
	return "", false
}

// HasLine reports whether Next would return a line without more input.
func (l *lineBuffer) HasLine() bool {
	return bytes.IndexByte(l.buf.Bytes(), '\n') >= 0 || l.buf.Len() >= maxLine
}

// Flush returns a trailing line that never saw its newline.
func (l *lineBuffer) Flush() (string, bool) {
	if l.buf.Len() == 0 {
		return "", false
	}
	line := l.buf.String()
	l.buf.Reset()
	return line, true
}

// ChanSource reads lines from a channel, for example the monitor's input field.
type ChanSource struct {
	lines   <-chan string
	pending []string
}

func NewChanSource(lines <-chan string) *ChanSource {
	return &ChanSource{lines: lines}
}

func (c *ChanSource) Poll() (string, bool) {
	if len(c.pending) > 0 {
		line := c.pending[0]
		c.pending = c.pending[1:]
		return line, true
	}
	select {
	case line, ok := <-c.lines:
		if !ok {
			c.lines = nil
			return "", false
		}
		return line, true
	default:
		return "", false
	}
}

func (c *ChanSource) Wait(d time.Duration) {
	if len(c.pending) > 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case line, ok := <-c.lines:
		if !ok {
			c.lines = nil
			<-timer.C
			return
		}
		c.pending = append(c.pending, line)
	case <-timer.C:
	}
}
