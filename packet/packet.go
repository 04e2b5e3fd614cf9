// Package packet frames I/Q samples into fixed-size UDP payloads:
//
//	offset 0         sequence number, uint16
//	offset 2 + 8k    sample k in-phase word, uint32
//	offset 6 + 8k    sample k quadrature word, uint32
//
// All fields use one byte order, little endian by default to match the
// Zynq (ARM) host the bridge was built for.
package packet

import (
	"encoding/binary"
	"fmt"
)

const (
	HeaderSize = 2
	SampleSize = 8
)

type Sample struct {
	I uint32
	Q uint32
}

type Packet struct {
	Sequence uint16
	Samples  []Sample
}

// SampleSource pops one sample, in-phase word first.
type SampleSource interface {
	PopSample() (i, q uint32)
}

// Size is the payload length for n samples per packet.
func Size(n int) int {
	return HeaderSize + SampleSize*n
}

// ParseOrder maps the configured byte order name to a binary.ByteOrder.
func ParseOrder(name string) (binary.ByteOrder, error) {
	switch name {
	case "little":
		return binary.LittleEndian, nil
	case "big":
		return binary.BigEndian, nil
	}
	return nil, fmt.Errorf("unknown byte order %q", name)
}

// Packetizer assembles payloads into one reused buffer. The slice returned by
// Assemble is only valid until the next call.
type Packetizer struct {
	Order binary.ByteOrder
	n     int
	buf   []byte
}

func New(samples int, order binary.ByteOrder) *Packetizer {
	return &Packetizer{
		Order: order,
		n:     samples,
		buf:   make([]byte, Size(samples)),
	}
}

func (p *Packetizer) Samples() int {
	return p.n
}

func (p *Packetizer) Size() int {
	return len(p.buf)
}

// Assemble pops exactly Samples() samples from src in order. It does not
// check that src had that many to give.
func (p *Packetizer) Assemble(seq uint16, src SampleSource) []byte {
	p.Order.PutUint16(p.buf, seq)
	off := HeaderSize
	for range p.n {
		i, q := src.PopSample()
		p.Order.PutUint32(p.buf[off:], i)
		p.Order.PutUint32(p.buf[off+4:], q)
		off += SampleSize
	}
	return p.buf
}

// Parse decodes a payload. The length must be a header plus whole samples.
func Parse(b []byte, order binary.ByteOrder) (Packet, error) {
	if len(b) < HeaderSize || (len(b)-HeaderSize)%SampleSize != 0 {
		return Packet{}, fmt.Errorf("payload length %d is not %d + %d*n", len(b), HeaderSize, SampleSize)
	}
	p := Packet{
		Sequence: order.Uint16(b),
		Samples:  make([]Sample, (len(b)-HeaderSize)/SampleSize),
	}
	for k := range p.Samples {
		off := HeaderSize + k*SampleSize
		p.Samples[k] = Sample{
			I: order.Uint32(b[off:]),
			Q: order.Uint32(b[off+4:]),
		}
	}
	return p, nil
}
