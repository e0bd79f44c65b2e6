// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"github.com/ik5/audmux/internal/bits"
)

// Mode selects the block size and mapping of an audio packet.
type Mode struct {
	BlockFlag bool
	Mapping   uint8
}

type setup struct {
	codebooks []*vorbisCodebook
	floors    []floor
	residues  []*residue
	mappings  []*mapping
	modes     []Mode
}

func readSetup(pkt []byte, ident IdentHeader) (*setup, error) {
	if !IsHeaderPacket(pkt, packetTypeSetup) {
		return nil, wrapErr(ErrInvalidHeader, "not a setup packet")
	}

	s, err := parseSetup(bits.NewReaderRtl(pkt[7:]), ident)
	if bits.IsEndOfStream(err) {
		return nil, wrapErr(ErrInvalidSetup, "truncated setup packet")
	}
	return s, err
}

func parseSetup(bs *bits.ReaderRtl, ident IdentHeader) (*setup, error) {
	var s setup

	n, err := bs.ReadBitsLeq32(8)
	if err != nil {
		return nil, err
	}
	s.codebooks = make([]*vorbisCodebook, n+1)
	for i := range s.codebooks {
		if s.codebooks[i], err = readCodebook(bs); err != nil {
			return nil, wrapCodebookErr(i, err)
		}
	}

	if n, err = bs.ReadBitsLeq32(6); err != nil {
		return nil, err
	}
	for range n + 1 {
		v, err := bs.ReadBitsLeq32(16)
		if err != nil {
			return nil, err
		}
		if v != 0 {
			return nil, wrapErr(ErrInvalidSetup, "time domain transform %d", v)
		}
	}

	if n, err = bs.ReadBitsLeq32(6); err != nil {
		return nil, err
	}
	s.floors = make([]floor, n+1)
	for i := range s.floors {
		if s.floors[i], err = readFloor(bs, ident, len(s.codebooks)); err != nil {
			return nil, err
		}
	}

	if n, err = bs.ReadBitsLeq32(6); err != nil {
		return nil, err
	}
	s.residues = make([]*residue, n+1)
	for i := range s.residues {
		if s.residues[i], err = readResidue(bs, len(s.codebooks)); err != nil {
			return nil, err
		}
		if err := s.residues[i].validate(s.codebooks); err != nil {
			return nil, err
		}
	}

	if n, err = bs.ReadBitsLeq32(6); err != nil {
		return nil, err
	}
	s.mappings = make([]*mapping, n+1)
	for i := range s.mappings {
		s.mappings[i], err = readMapping(bs, int(ident.Channels), len(s.floors), len(s.residues))
		if err != nil {
			return nil, err
		}
	}

	if s.modes, err = readModes(bs, len(s.mappings)); err != nil {
		return nil, err
	}

	framing, err := bs.ReadBool()
	if err != nil {
		return nil, err
	}
	if !framing {
		return nil, wrapErr(ErrInvalidSetup, "framing bit not set")
	}

	return &s, nil
}

func wrapCodebookErr(i int, err error) error {
	if bits.IsEndOfStream(err) {
		return err
	}
	return wrapErr(err, "codebook %d", i)
}

func readModes(bs *bits.ReaderRtl, numMappings int) ([]Mode, error) {
	n, err := bs.ReadBitsLeq32(6)
	if err != nil {
		return nil, err
	}

	modes := make([]Mode, n+1)
	for i := range modes {
		if modes[i].BlockFlag, err = bs.ReadBool(); err != nil {
			return nil, err
		}

		window, err := bs.ReadBitsLeq32(16)
		if err != nil {
			return nil, err
		}
		transform, err := bs.ReadBitsLeq32(16)
		if err != nil {
			return nil, err
		}
		if window != 0 || transform != 0 {
			return nil, wrapErr(ErrInvalidSetup, "mode %d: window type %d transform type %d", i, window, transform)
		}

		m, err := bs.ReadBitsLeq32(8)
		if err != nil {
			return nil, err
		}
		if int(m) >= numMappings {
			return nil, wrapErr(ErrBadReference, "mode %d mapping %d of %d", i, m, numMappings)
		}
		modes[i].Mapping = uint8(m)
	}

	return modes, nil
}

// ReadModes returns the modes of a setup packet. Demuxers use them to work
// out packet durations without building a decoder.
func ReadModes(pkt []byte, ident IdentHeader) ([]Mode, error) {
	s, err := readSetup(pkt, ident)
	if err != nil {
		return nil, err
	}
	return s.modes, nil
}
