// SPDX-License-Identifier: EPL-2.0

package mpa

// BlockType is the window used by a granule channel.
type BlockType uint8

const (
	BlockLong BlockType = iota
	BlockStart
	BlockShort
	BlockShortMixed
	BlockEnd
)

func (b BlockType) String() string {
	return [...]string{"long", "start", "short", "short mixed", "end"}[b]
}

// IsShort reports whether the block uses short windows.
func (b BlockType) IsShort() bool {
	return b == BlockShort || b == BlockShortMixed
}

// GranuleChannel is the side information and scale factors of one channel
// in one granule.
type GranuleChannel struct {
	// Part23Length is the number of bits of scale factors and Huffman
	// coded samples.
	Part23Length uint16
	// BigValues is half the number of samples in the big_values partition.
	BigValues        uint16
	GlobalGain       uint8
	ScalefacCompress uint16
	BlockType        BlockType
	SubBlockGain     [3]uint8
	TableSelect      [3]uint8

	// Region1Start and Region2Start are sample indices into the granule.
	Region1Start int
	Region2Start int

	Preflag           bool
	ScalefacScale     bool
	Count1TableSelect uint8

	// ScaleFactors holds scalefac_l[0..21] for long blocks,
	// scalefac_s[0..36] for short blocks, and scalefac_l[0..8] followed by
	// scalefac_s[9..36] for mixed blocks. The last three are never coded.
	ScaleFactors [39]uint8
}

type Granule struct {
	Channels [2]GranuleChannel
}

// FrameData is the side information and scale factors of a Layer 3 frame.
// MPEG-2 and 2.5 frames only use the first granule.
type FrameData struct {
	// MainDataBegin is how many bytes before this frame's side information
	// its main data begins, within the bit reservoir.
	MainDataBegin uint16
	// Scfsi marks, per channel, the scale factor bands [0,6), [6,11),
	// [11,16) and [16,21) that granule 1 copies from granule 0.
	Scfsi    [2][4]bool
	Granules [2]Granule
}
