// SPDX-License-Identifier: EPL-2.0

package vorbis

import "github.com/ik5/audmux/internal/bits"

// PacketParser works out the number of frames each audio packet adds to the
// stream, which depends on the block sizes of the packet and its
// predecessor.
type PacketParser struct {
	bs0Exp     uint8
	bs1Exp     uint8
	numModes   int
	blockFlags uint64

	prevBsExp uint8
	hasPrev   bool
}

// NewPacketParser returns a parser for a stream with the given headers.
func NewPacketParser(ident IdentHeader, modes []Mode) *PacketParser {
	p := &PacketParser{
		bs0Exp:   ident.Bs0Exp,
		bs1Exp:   ident.Bs1Exp,
		numModes: len(modes),
	}

	for i, m := range modes {
		if m.BlockFlag {
			p.blockFlags |= 1 << i
		}
	}

	return p
}

// Duration returns the frames produced by decoding pkt. Header packets and
// the first audio packet produce none.
func (p *PacketParser) Duration(pkt []byte) uint64 {
	if p.numModes == 0 {
		return 0
	}

	bs := bits.NewReaderRtl(pkt)

	if header, err := bs.ReadBool(); err != nil || header {
		return 0
	}

	mode, err := bs.ReadBitsLeq32(ilog(uint32(p.numModes - 1)))
	if err != nil || int(mode) >= p.numModes {
		return 0
	}

	cur := p.bs0Exp
	if p.blockFlags>>mode&1 == 1 {
		cur = p.bs1Exp
	}

	var dur uint64
	if p.hasPrev {
		dur = (uint64(1)<<p.prevBsExp)>>2 + (uint64(1)<<cur)>>2
	}

	p.prevBsExp = cur
	p.hasPrev = true

	return dur
}

// Reset forgets the previous packet, as after a seek.
func (p *PacketParser) Reset() {
	p.hasPrev = false
}
