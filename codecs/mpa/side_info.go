// SPDX-License-Identifier: EPL-2.0

package mpa

import (
	"github.com/ik5/audmux/internal/bits"
)

// sfbLongBands are the long block scale factor band boundaries, indexed by
// FrameHeader.SampleRateIdx.
var sfbLongBands = [9][23]int{
	// MPEG-1: 44.1, 48 and 32 kHz
	{0, 4, 8, 12, 16, 20, 24, 30, 36, 44, 52, 62, 74, 90, 110, 134, 162, 196, 238, 288, 342, 418, 576},
	{0, 4, 8, 12, 16, 20, 24, 30, 36, 42, 50, 60, 72, 88, 106, 128, 156, 190, 230, 276, 330, 384, 576},
	{0, 4, 8, 12, 16, 20, 24, 30, 36, 44, 54, 66, 82, 102, 126, 156, 194, 240, 296, 364, 448, 550, 576},
	// MPEG-2: 22.05, 24 and 16 kHz
	{0, 6, 12, 18, 24, 30, 36, 44, 54, 66, 80, 96, 116, 140, 168, 200, 238, 284, 336, 396, 464, 522, 576},
	{0, 6, 12, 18, 24, 30, 36, 44, 54, 66, 80, 96, 114, 136, 162, 194, 232, 278, 332, 394, 464, 540, 576},
	{0, 6, 12, 18, 24, 30, 36, 44, 54, 66, 80, 96, 116, 140, 168, 200, 238, 284, 336, 396, 464, 522, 576},
	// MPEG-2.5: 11.025, 12 and 8 kHz
	{0, 6, 12, 18, 24, 30, 36, 44, 54, 66, 80, 96, 116, 140, 168, 200, 238, 284, 336, 396, 464, 522, 576},
	{0, 6, 12, 18, 24, 30, 36, 44, 54, 66, 80, 96, 116, 140, 168, 200, 238, 284, 336, 396, 464, 522, 576},
	{0, 12, 24, 36, 48, 60, 72, 88, 108, 132, 160, 192, 232, 280, 336, 400, 476, 566, 568, 570, 572, 574, 576},
}

// maxBigValues is half the samples of a granule.
const maxBigValues = 288

// readSideInfo reads the side information of a Layer 3 frame into fd and
// returns its length in bytes.
func readSideInfo(bs *bits.ReaderLtr, h FrameHeader, fd *FrameData) (int, error) {
	nch := h.Channels()

	if h.Version == Mpeg1 {
		v, err := bs.ReadBitsLeq32(9)
		if err != nil {
			return 0, err
		}
		fd.MainDataBegin = uint16(v)

		private := uint32(3)
		if nch == 1 {
			private = 5
		}
		if err := bs.IgnoreBits(private); err != nil {
			return 0, err
		}

		for ch := range nch {
			for band := range fd.Scfsi[ch] {
				if fd.Scfsi[ch][band], err = bs.ReadBool(); err != nil {
					return 0, err
				}
			}
		}
	} else {
		v, err := bs.ReadBitsLeq32(8)
		if err != nil {
			return 0, err
		}
		fd.MainDataBegin = uint16(v)

		private := uint32(2)
		if nch == 1 {
			private = 1
		}
		if err := bs.IgnoreBits(private); err != nil {
			return 0, err
		}
	}

	for gr := range h.Granules() {
		for ch := range nch {
			if err := readGranuleChannelSideInfo(bs, h, &fd.Granules[gr].Channels[ch]); err != nil {
				return 0, err
			}
		}
	}

	return h.SideInfoLen(), nil
}

func readGranuleChannelSideInfo(bs *bits.ReaderLtr, h FrameHeader, gc *GranuleChannel) error {
	v, err := bs.ReadBitsLeq32(12)
	if err != nil {
		return err
	}
	gc.Part23Length = uint16(v)

	if v, err = bs.ReadBitsLeq32(9); err != nil {
		return err
	}
	if v > maxBigValues {
		return wrapErr(ErrInvalidFrame, "big_values %d exceeds %d", v, maxBigValues)
	}
	gc.BigValues = uint16(v)

	if v, err = bs.ReadBitsLeq32(8); err != nil {
		return err
	}
	gc.GlobalGain = uint8(v)

	compressBits := uint32(4)
	if h.Version != Mpeg1 {
		compressBits = 9
	}
	if v, err = bs.ReadBitsLeq32(compressBits); err != nil {
		return err
	}
	gc.ScalefacCompress = uint16(v)

	windowSwitching, err := bs.ReadBool()
	if err != nil {
		return err
	}

	if windowSwitching {
		return readSwitchedWindow(bs, h, gc)
	}

	gc.BlockType = BlockLong

	for i := range gc.TableSelect {
		if v, err = bs.ReadBitsLeq32(5); err != nil {
			return err
		}
		gc.TableSelect[i] = uint8(v)
	}

	// Both counts are stored one less than their value.
	r0, err := bs.ReadBitsLeq32(4)
	if err != nil {
		return err
	}
	r1, err := bs.ReadBitsLeq32(3)
	if err != nil {
		return err
	}

	region0 := int(r0) + 1
	region01 := region0 + int(r1) + 1

	bands := &sfbLongBands[h.SampleRateIdx]
	gc.Region1Start = bands[region0]
	if region01 < len(bands) {
		gc.Region2Start = bands[region01]
	} else {
		gc.Region2Start = 576
	}

	return readGranuleTail(bs, h, gc)
}

// readSwitchedWindow reads the block type fields present when window
// switching is on. The region boundaries are then implicit.
func readSwitchedWindow(bs *bits.ReaderLtr, h FrameHeader, gc *GranuleChannel) error {
	enc, err := bs.ReadBitsLeq32(2)
	if err != nil {
		return err
	}
	mixed, err := bs.ReadBool()
	if err != nil {
		return err
	}

	switch enc {
	case 0b01:
		gc.BlockType = BlockStart
	case 0b10:
		gc.BlockType = BlockShort
		if mixed {
			gc.BlockType = BlockShortMixed
		}
	case 0b11:
		gc.BlockType = BlockEnd
	default:
		return wrapErr(ErrInvalidFrame, "reserved block type with window switching")
	}

	for i := range 2 {
		v, err := bs.ReadBitsLeq32(5)
		if err != nil {
			return err
		}
		gc.TableSelect[i] = uint8(v)
	}

	for i := range gc.SubBlockGain {
		v, err := bs.ReadBitsLeq32(3)
		if err != nil {
			return err
		}
		gc.SubBlockGain[i] = uint8(v)
	}

	switch {
	case h.Version == Mpeg2p5:
		region0 := 8
		if gc.BlockType == BlockShort {
			region0 = 6
		}
		gc.Region1Start = sfbLongBands[h.SampleRateIdx][region0]
	case h.Version == Mpeg1 || enc == 0b10:
		// Eight long bands or nine short bands, 36 samples either way.
		gc.Region1Start = 36
	default:
		gc.Region1Start = 54
	}
	gc.Region2Start = 576

	return readGranuleTail(bs, h, gc)
}

func readGranuleTail(bs *bits.ReaderLtr, h FrameHeader, gc *GranuleChannel) error {
	var err error

	// MPEG-2 derives the preflag from the scale factors.
	gc.Preflag = false
	if h.Version == Mpeg1 {
		if gc.Preflag, err = bs.ReadBool(); err != nil {
			return err
		}
	}

	if gc.ScalefacScale, err = bs.ReadBool(); err != nil {
		return err
	}

	v, err := bs.ReadBit()
	if err != nil {
		return err
	}
	gc.Count1TableSelect = uint8(v)

	return nil
}
