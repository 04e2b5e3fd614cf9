// Package control turns lines from the control stream into commands for the
// stream loop.
//
// Grammar, one command per line, keyed on the first byte:
//
//	f <Hz>    set fake DDS
//	t <Hz>    set tune DDS
//	d <ip>    change destination IP
//	s on|off  start/stop streaming
//	q         quit
//
// Parsing never fails. Unparsable frequencies read as 0, an address that is
// not IPv4 yields BadDest, and anything else is None.
package control

import (
	"errors"
	"net/netip"
	"strconv"
	"strings"
)

type Kind int

const (
	None Kind = iota
	Fake
	Tune
	Dest
	BadDest
	Stream
	Quit
)

func (k Kind) String() string {
	switch k {
	case Fake:
		return "fake"
	case Tune:
		return "tune"
	case Dest:
		return "dest"
	case BadDest:
		return "bad-dest"
	case Stream:
		return "stream"
	case Quit:
		return "quit"
	default:
		return "none"
	}
}

type Command struct {
	Kind Kind
	Hz   float64
	Addr netip.Addr
	On   bool
	// Arg is the address token as typed, for Dest and BadDest.
	Arg  string
	Line string
}

func Parse(line string) Command {
	c := Command{Line: line}
	if line == "" {
		return c
	}
	rest := line[1:]
	switch line[0] {
	case 'q':
		c.Kind = Quit
	case 'f':
		c.Kind = Fake
		c.Hz = leadingFloat(rest)
	case 't':
		c.Kind = Tune
		c.Hz = leadingFloat(rest)
	case 'd':
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			return c
		}
		c.Arg = fields[0]
		addr, err := netip.ParseAddr(c.Arg)
		if err != nil || !addr.Unmap().Is4() {
			c.Kind = BadDest
			return c
		}
		c.Kind = Dest
		c.Addr = addr.Unmap()
	case 's':
		// Substring match on the remainder, "on" checked first.
		switch {
		case strings.Contains(rest, "on"):
			c.Kind, c.On = Stream, true
		case strings.Contains(rest, "off"):
			c.Kind, c.On = Stream, false
		}
	}
	return c
}

// leadingFloat parses the longest numeric prefix of s after leading
// whitespace, the way C's atof does. No numeric prefix gives 0.
func leadingFloat(s string) float64 {
	s = strings.TrimLeft(s, " \t\n\v\f\r")
	end := 0
	for end < len(s) && strings.IndexByte("+-.0123456789eE", s[end]) >= 0 {
		end++
	}
	for ; end > 0; end-- {
		v, err := strconv.ParseFloat(s[:end], 64)
		if err == nil || errors.Is(err, strconv.ErrRange) {
			return v
		}
	}
	return 0
}
