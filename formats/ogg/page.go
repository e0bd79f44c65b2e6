// SPDX-License-Identifier: EPL-2.0

package ogg

import (
	"iter"

	"github.com/ik5/audmux/stream"
)

const (
	pageMarker    = 0x4f676753 // "OggS"
	pageHeaderLen = 27

	// maxPageBodyLen is 255 segments of 255 bytes.
	maxPageBodyLen = 255 * 255
	maxPageLen     = pageHeaderLen + 255 + maxPageBodyLen
)

const (
	flagContinuation = 0x01
	flagFirstPage    = 0x02
	flagLastPage     = 0x04
)

// PageHeader is the fixed part of an Ogg page.
type PageHeader struct {
	Version   uint8
	AbsGp     uint64
	Serial    uint32
	Sequence  uint32
	CRC       uint32
	NSegments uint8

	// IsContinuation is set when the first packet of the page continues a
	// packet from the previous page.
	IsContinuation bool
	IsFirstPage    bool
	IsLastPage     bool
}

// ReadPageHeader reads a page header, capture pattern included.
func ReadPageHeader(r stream.ByteReader) (PageHeader, error) {
	var h PageHeader

	marker, err := stream.ReadU32BE(r)
	if err != nil {
		return h, err
	}
	if marker != pageMarker {
		return h, ErrMissingMarker
	}

	if h.Version, err = r.ReadByte(); err != nil {
		return h, err
	}
	if h.Version != 0 {
		return h, ErrInvalidVersion
	}

	flags, err := r.ReadByte()
	if err != nil {
		return h, err
	}
	if flags&0xf8 != 0 {
		return h, ErrInvalidFlags
	}

	if h.AbsGp, err = stream.ReadU64LE(r); err != nil {
		return h, err
	}
	if h.Serial, err = stream.ReadU32LE(r); err != nil {
		return h, err
	}
	if h.Sequence, err = stream.ReadU32LE(r); err != nil {
		return h, err
	}
	if h.CRC, err = stream.ReadU32LE(r); err != nil {
		return h, err
	}
	if h.NSegments, err = r.ReadByte(); err != nil {
		return h, err
	}

	h.IsContinuation = flags&flagContinuation != 0
	h.IsFirstPage = flags&flagFirstPage != 0
	h.IsLastPage = flags&flagLastPage != 0

	return h, nil
}

// Page is a view of a page read by the page reader. It is only valid until
// the next page is read.
type Page struct {
	Header PageHeader

	packetLens []uint16
	body       []byte
}

// NumPackets returns the number of packets that end in this page.
func (p *Page) NumPackets() int {
	return len(p.packetLens)
}

// Packets yields the packets, or packet tails, that end in this page.
func (p *Page) Packets() iter.Seq[[]byte] {
	return func(yield func([]byte) bool) {
		off := 0
		for _, n := range p.packetLens {
			if !yield(p.body[off : off+int(n)]) {
				return
			}
			off += int(n)
		}
	}
}

// PartialPacket returns the start of a packet that continues on the next
// page, or nil.
func (p *Page) PartialPacket() []byte {
	off := 0
	for _, n := range p.packetLens {
		off += int(n)
	}
	if off == len(p.body) {
		return nil
	}
	return p.body[off:]
}

// firstPacket returns the first complete packet of the page.
func (p *Page) firstPacket() ([]byte, bool) {
	if len(p.packetLens) == 0 {
		return nil, false
	}
	return p.body[:p.packetLens[0]], true
}

// packetLengths splits a segment table into the lengths of the packets that
// end in the page and returns the total body length.
func packetLengths(dst []uint16, segments []byte) ([]uint16, int) {
	body, n := 0, 0
	for _, seg := range segments {
		body += int(seg)
		n += int(seg)

		// Only a segment shorter than 255 bytes ends a packet.
		if seg < 255 {
			dst = append(dst, uint16(n))
			n = 0
		}
	}
	return dst, body
}
