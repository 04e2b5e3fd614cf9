package control

import (
	"math"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	var tests = []struct {
		line string
		want Command
	}{
		{"f 1000000", Command{Kind: Fake, Hz: 1e6}},
		{"f1e3", Command{Kind: Fake, Hz: 1000}},
		{"f   -20.5Hz", Command{Kind: Fake, Hz: -20.5}},
		{"f abc", Command{Kind: Fake, Hz: 0}},
		{"f", Command{Kind: Fake, Hz: 0}},
		{"fake 100", Command{Kind: Fake, Hz: 0}},
		{"t 2.5e6", Command{Kind: Tune, Hz: 2.5e6}},
		{"t 12e", Command{Kind: Tune, Hz: 12}},
		{"d 10.0.0.7", Command{Kind: Dest, Addr: netip.MustParseAddr("10.0.0.7"), Arg: "10.0.0.7"}},
		{"d   192.168.1.20  trailing", Command{Kind: Dest, Addr: netip.MustParseAddr("192.168.1.20"), Arg: "192.168.1.20"}},
		{"d ::ffff:10.1.2.3", Command{Kind: Dest, Addr: netip.MustParseAddr("10.1.2.3"), Arg: "::ffff:10.1.2.3"}},
		{"d not-an-ip", Command{Kind: BadDest, Arg: "not-an-ip"}},
		{"d 300.1.1.1", Command{Kind: BadDest, Arg: "300.1.1.1"}},
		{"d ::1", Command{Kind: BadDest, Arg: "::1"}},
		{"d", Command{Kind: None}},
		{"s on", Command{Kind: Stream, On: true}},
		{"s off", Command{Kind: Stream, On: false}},
		{"start on please", Command{Kind: Stream, On: true}},
		{"s offline", Command{Kind: Stream, On: false}},
		{"s moon", Command{Kind: Stream, On: true}},
		{"s off or on", Command{Kind: Stream, On: true}}, // "on" is checked first
		{"s maybe", Command{Kind: None}},
		{"s", Command{Kind: None}},
		{"q", Command{Kind: Quit}},
		{"quit now", Command{Kind: Quit}},
		{"", Command{Kind: None}},
		{" f 100", Command{Kind: None}},
		{"x 1", Command{Kind: None}},
	}
	for _, tt := range tests {
		tt.want.Line = tt.line
		assert.Equal(t, tt.want, Parse(tt.line), "Parse(%q)", tt.line)
	}
}

func TestLeadingFloatRange(t *testing.T) {
	assert.True(t, math.IsInf(leadingFloat("1e999"), 1))
	assert.Equal(t, 0.5, leadingFloat(".5."))
	assert.Equal(t, 0.0, leadingFloat("-"))
}

func TestLineBuffer(t *testing.T) {
	var lb lineBuffer
	lb.Write([]byte("f 1\r\ns o"))
	line, ok := lb.Next()
	assert.True(t, ok)
	assert.Equal(t, "f 1", line)
	_, ok = lb.Next()
	assert.False(t, ok)

	lb.Write([]byte("n\n\nq"))
	line, _ = lb.Next()
	assert.Equal(t, "s on", line)
	line, ok = lb.Next()
	assert.True(t, ok)
	assert.Equal(t, "", line)
	_, ok = lb.Next()
	assert.False(t, ok)

	line, ok = lb.Flush()
	assert.True(t, ok)
	assert.Equal(t, "q", line)
	_, ok = lb.Flush()
	assert.False(t, ok)
}

func TestLineBufferCutsLongInput(t *testing.T) {
	var lb lineBuffer
	lb.Write(make([]byte, maxLine+10))
	line, ok := lb.Next()
	assert.True(t, ok)
	assert.Len(t, line, maxLine)
	_, ok = lb.Next()
	assert.False(t, ok)
}

func TestChanSource(t *testing.T) {
	lines := make(chan string, 4)
	src := NewChanSource(lines)

	_, ok := src.Poll()
	assert.False(t, ok)

	lines <- "s on"
	lines <- "q"
	line, ok := src.Poll()
	assert.True(t, ok)
	assert.Equal(t, "s on", line)

	// Wait picks up the next line and Poll hands it out without blocking.
	src.Wait(time.Second)
	line, ok = src.Poll()
	assert.True(t, ok)
	assert.Equal(t, "q", line)

	close(lines)
	_, ok = src.Poll()
	assert.False(t, ok)
	start := time.Now()
	src.Wait(10 * time.Millisecond)
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}

type sleepless struct{ lines []string }

func (s *sleepless) Poll() (string, bool) {
	if len(s.lines) == 0 {
		return "", false
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, true
}

func TestWaitFallsBackToSleep(t *testing.T) {
	start := time.Now()
	Wait(&sleepless{}, 5*time.Millisecond)
	assert.GreaterOrEqual(t, time.Since(start), 5*time.Millisecond)
}
