package stream

import (
	"fmt"
	"net"
	"net/netip"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/lorenzosaino/go-sysctl"
)

// Sink sends one finished payload. A short count is a dropped packet.
type Sink interface {
	Send(b []byte, dst netip.AddrPort) (int, error)
	Close() error
}

// UDPSink is one unconnected IPv4 socket reused for every datagram.
type UDPSink struct {
	conn *net.UDPConn
}

// NewUDPSink opens the socket. A positive sndbuf sets SO_SNDBUF, with a
// warning if the kernel will clamp it.
func NewUDPSink(sndbuf int) (*UDPSink, error) {
	conn, err := net.ListenUDP("udp4", nil)
	if err != nil {
		return nil, fmt.Errorf("could not create UDP socket: %w", err)
	}
	if sndbuf > 0 {
		checkWmemMax(sndbuf)
		if err := conn.SetWriteBuffer(sndbuf); err != nil {
			conn.Close()
			return nil, fmt.Errorf("could not set send buffer to %d: %w", sndbuf, err)
		}
	}
	return &UDPSink{conn: conn}, nil
}

func checkWmemMax(want int) {
	val, err := sysctl.Get("net.core.wmem_max")
	if err != nil {
		log.Debugf("Could not read net.core.wmem_max: %v", err)
		return
	}
	limit, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil {
		log.Debugf("Could not parse net.core.wmem_max %q: %v", val, err)
		return
	}
	if want > limit {
		log.Warnf("socket_buffer %d exceeds net.core.wmem_max %d; the kernel will clamp it", want, limit)
	}
}

func (s *UDPSink) Send(b []byte, dst netip.AddrPort) (int, error) {
	if dst.Addr().Is4In6() {
		dst = netip.AddrPortFrom(dst.Addr().Unmap(), dst.Port())
	}
	return s.conn.WriteToUDPAddrPort(b, dst)
}

func (s *UDPSink) LocalAddr() net.Addr {
	return s.conn.LocalAddr()
}

func (s *UDPSink) Close() error {
	return s.conn.Close()
}
