// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"math/bits"
	"strings"
)

// Channels is a bit mask of speaker positions. The order of the bits is the
// order channels are stored in an AudioBuffer.
type Channels uint32

const (
	FrontLeft Channels = 1 << iota
	FrontRight
	FrontCenter
	LFE1
	RearLeft
	RearRight
	FrontLeftCenter
	FrontRightCenter
	RearCenter
	SideLeft
	SideRight
	TopCenter
	TopFrontLeft
	TopFrontCenter
	TopFrontRight
	TopRearLeft
	TopRearCenter
	TopRearRight
	RearLeftCenter
	RearRightCenter
	FrontLeftWide
	FrontRightWide
	FrontLeftHigh
	FrontCenterHigh
	FrontRightHigh
	LFE2
)

var channelNames = [...]string{
	"FL", "FR", "FC", "LFE1", "RL", "RR", "FLC", "FRC", "RC", "SL", "SR",
	"TC", "TFL", "TFC", "TFR", "TRL", "TRC", "TRR", "RLC", "RRC", "FLW",
	"FRW", "FLH", "FCH", "FRH", "LFE2",
}

// Count returns the number of channels in the mask.
func (c Channels) Count() int {
	return bits.OnesCount32(uint32(c))
}

func (c Channels) String() string {
	if c == 0 {
		return "none"
	}

	var parts []string
	for i, name := range channelNames {
		if c&(1<<i) != 0 {
			parts = append(parts, name)
		}
	}

	return strings.Join(parts, "|")
}

// ChannelsFromCount returns the first n channel positions. It is used when a
// container only reports a channel count.
func ChannelsFromCount(n int) Channels {
	if n <= 0 {
		return 0
	}
	if n >= 32 {
		return ^Channels(0)
	}
	return Channels(1)<<n - 1
}

// Layout is a common channel arrangement.
type Layout uint8

const (
	LayoutMono Layout = iota + 1
	LayoutStereo
	LayoutTwoPointOne
	LayoutFivePointOne
)

// Channels returns the channel mask of the layout.
func (l Layout) Channels() Channels {
	switch l {
	case LayoutMono:
		return FrontLeft
	case LayoutStereo:
		return FrontLeft | FrontRight
	case LayoutTwoPointOne:
		return FrontLeft | FrontRight | LFE1
	case LayoutFivePointOne:
		return FrontLeft | FrontRight | FrontCenter | LFE1 | RearLeft | RearRight
	default:
		return 0
	}
}

func (l Layout) String() string {
	switch l {
	case LayoutMono:
		return "mono"
	case LayoutStereo:
		return "stereo"
	case LayoutTwoPointOne:
		return "2.1"
	case LayoutFivePointOne:
		return "5.1"
	default:
		return "unknown"
	}
}

// SignalSpec describes the sample rate and channels of decoded audio.
type SignalSpec struct {
	Rate     uint32
	Channels Channels
}

// NewSignalSpecWithLayout builds a SignalSpec from a layout.
func NewSignalSpecWithLayout(rate uint32, layout Layout) SignalSpec {
	return SignalSpec{Rate: rate, Channels: layout.Channels()}
}
