// SPDX-License-Identifier: EPL-2.0

package mpa

import (
	"github.com/ik5/audmux/internal/bits"
)

// scaleFactorSlen maps the MPEG-1 scalefac_compress to the bit lengths of
// the two scale factor partitions.
var scaleFactorSlen = [16][2]uint32{
	{0, 0}, {0, 1}, {0, 2}, {0, 3}, {3, 0}, {1, 1}, {1, 2}, {1, 3},
	{2, 1}, {2, 2}, {2, 3}, {3, 1}, {3, 2}, {3, 3}, {4, 2}, {4, 3},
}

// scfsiBands are the long block band ranges covered by each SCFSI flag.
var scfsiBands = [4][2]int{{0, 6}, {6, 11}, {11, 16}, {16, 21}}

// readScaleFactorsMpeg1 reads the scale factors of channel ch in granule gr
// and returns the number of bits read.
func readScaleFactorsMpeg1(bs *bits.ReaderLtr, gr, ch int, fd *FrameData) (uint32, error) {
	gc := &fd.Granules[gr].Channels[ch]
	slen := scaleFactorSlen[gc.ScalefacCompress&0xf]

	var read uint32

	if gc.BlockType.IsShort() {
		// A mixed block codes 8 long bands and 3 short bands with slen1,
		// otherwise 6 short bands do. 6 short bands with slen2 follow.
		n := 6 * 3
		if gc.BlockType == BlockShortMixed {
			n = 8 + 3*3
		}

		parts := [2][2]int{{0, n}, {n, n + 6*3}}
		for i, p := range parts {
			if slen[i] == 0 {
				clear(gc.ScaleFactors[p[0]:p[1]])
				continue
			}
			for sfb := p[0]; sfb < p[1]; sfb++ {
				v, err := bs.ReadBitsLeq32(slen[i])
				if err != nil {
					return 0, err
				}
				gc.ScaleFactors[sfb] = uint8(v)
			}
			read += uint32(p[1]-p[0]) * slen[i]
		}

		return read, nil
	}

	for i, band := range scfsiBands {
		bitLen := slen[0]
		if i >= 2 {
			bitLen = slen[1]
		}

		if gr > 0 && fd.Scfsi[ch][i] {
			src := &fd.Granules[0].Channels[ch]
			copy(gc.ScaleFactors[band[0]:band[1]], src.ScaleFactors[band[0]:band[1]])
			continue
		}

		if bitLen == 0 {
			clear(gc.ScaleFactors[band[0]:band[1]])
			continue
		}

		for sfb := band[0]; sfb < band[1]; sfb++ {
			v, err := bs.ReadBitsLeq32(bitLen)
			if err != nil {
				return 0, err
			}
			gc.ScaleFactors[sfb] = uint8(v)
		}
		read += uint32(band[1]-band[0]) * bitLen
	}

	return read, nil
}
