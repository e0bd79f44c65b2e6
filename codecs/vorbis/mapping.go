// SPDX-License-Identifier: EPL-2.0

package vorbis

import "github.com/ik5/audmux/internal/bits"

type coupling struct {
	magnitude uint8
	angle     uint8
}

type submap struct {
	floor   uint8
	residue uint8
}

type mapping struct {
	couplings []coupling
	// multiplex[ch] is the submap of channel ch.
	multiplex []uint8
	submaps   []submap
}

func readMapping(bs *bits.ReaderRtl, channels, numFloors, numResidues int) (*mapping, error) {
	typ, err := bs.ReadBitsLeq32(16)
	if err != nil {
		return nil, err
	}
	if typ != 0 {
		return nil, wrapErr(ErrInvalidSetup, "mapping type %d", typ)
	}

	var m mapping

	numSubmaps := uint32(1)
	if more, err := bs.ReadBool(); err != nil {
		return nil, err
	} else if more {
		n, err := bs.ReadBitsLeq32(4)
		if err != nil {
			return nil, err
		}
		numSubmaps = n + 1
	}

	hasCoupling, err := bs.ReadBool()
	if err != nil {
		return nil, err
	}

	if hasCoupling {
		steps, err := bs.ReadBitsLeq32(8)
		if err != nil {
			return nil, err
		}

		maxCh := uint32(channels - 1)
		width := ilog(maxCh)

		m.couplings = make([]coupling, steps+1)
		for i := range m.couplings {
			mag, err := bs.ReadBitsLeq32(width)
			if err != nil {
				return nil, err
			}
			ang, err := bs.ReadBitsLeq32(width)
			if err != nil {
				return nil, err
			}

			if mag == ang || mag > maxCh || ang > maxCh {
				return nil, wrapErr(ErrInvalidSetup, "coupling %d: magnitude %d angle %d", i, mag, ang)
			}
			m.couplings[i] = coupling{magnitude: uint8(mag), angle: uint8(ang)}
		}
	}

	if reserved, err := bs.ReadBitsLeq32(2); err != nil {
		return nil, err
	} else if reserved != 0 {
		return nil, wrapErr(ErrInvalidSetup, "mapping reserved bits are %d", reserved)
	}

	m.multiplex = make([]uint8, channels)
	if numSubmaps > 1 {
		for ch := range m.multiplex {
			mux, err := bs.ReadBitsLeq32(4)
			if err != nil {
				return nil, err
			}
			if mux >= numSubmaps {
				return nil, wrapErr(ErrBadReference, "channel %d uses submap %d of %d", ch, mux, numSubmaps)
			}
			m.multiplex[ch] = uint8(mux)
		}
	}

	m.submaps = make([]submap, numSubmaps)
	for i := range m.submaps {
		// Unused time configuration.
		if err := bs.IgnoreBits(8); err != nil {
			return nil, err
		}

		fl, err := bs.ReadBitsLeq32(8)
		if err != nil {
			return nil, err
		}
		if int(fl) >= numFloors {
			return nil, wrapErr(ErrBadReference, "submap floor %d of %d", fl, numFloors)
		}

		res, err := bs.ReadBitsLeq32(8)
		if err != nil {
			return nil, err
		}
		if int(res) >= numResidues {
			return nil, wrapErr(ErrBadReference, "submap residue %d of %d", res, numResidues)
		}

		m.submaps[i] = submap{floor: uint8(fl), residue: uint8(res)}
	}

	return &m, nil
}
