// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"bytes"
	"encoding/binary"

	"github.com/ik5/audmux/audio"
)

const (
	packetTypeIdent   = 1
	packetTypeComment = 3
	packetTypeSetup   = 5

	identHeaderLen = 30

	blockSizeMin = 6
	blockSizeMax = 13
)

var signature = []byte("vorbis")

// IdentHeader is the content of the identification packet.
type IdentHeader struct {
	Channels   uint8
	SampleRate uint32

	BitrateMax     int32
	BitrateNominal int32
	BitrateMin     int32

	// Bs0Exp and Bs1Exp are the base two logarithms of the short and long
	// block sizes.
	Bs0Exp uint8
	Bs1Exp uint8
}

// IsHeaderPacket reports whether pkt starts like a header packet of the given
// type.
func IsHeaderPacket(pkt []byte, typ byte) bool {
	return len(pkt) >= 7 && pkt[0] == typ && bytes.Equal(pkt[1:7], signature)
}

// ReadIdentHeader parses the identification packet.
func ReadIdentHeader(pkt []byte) (IdentHeader, error) {
	var h IdentHeader

	if len(pkt) != identHeaderLen {
		return h, wrapErr(ErrInvalidHeader, "identification packet is %d bytes", len(pkt))
	}
	if !IsHeaderPacket(pkt, packetTypeIdent) {
		return h, wrapErr(ErrInvalidHeader, "not an identification packet")
	}

	le := binary.LittleEndian

	if v := le.Uint32(pkt[7:]); v != 0 {
		return h, wrapErr(ErrInvalidHeader, "version %d", v)
	}

	h.Channels = pkt[11]
	if h.Channels == 0 {
		return h, wrapErr(ErrInvalidHeader, "zero channels")
	}

	h.SampleRate = le.Uint32(pkt[12:])
	if h.SampleRate == 0 {
		return h, wrapErr(ErrInvalidHeader, "zero sample rate")
	}

	h.BitrateMax = int32(le.Uint32(pkt[16:]))
	h.BitrateNominal = int32(le.Uint32(pkt[20:]))
	h.BitrateMin = int32(le.Uint32(pkt[24:]))

	h.Bs0Exp = pkt[28] & 0x0f
	h.Bs1Exp = pkt[28] >> 4

	if h.Bs0Exp < blockSizeMin || h.Bs0Exp > blockSizeMax ||
		h.Bs1Exp < blockSizeMin || h.Bs1Exp > blockSizeMax {
		return h, wrapErr(ErrInvalidHeader, "block sizes 2^%d, 2^%d out of range", h.Bs0Exp, h.Bs1Exp)
	}
	if h.Bs0Exp > h.Bs1Exp {
		return h, wrapErr(ErrInvalidHeader, "short block larger than long block")
	}

	if pkt[29] != 1 {
		return h, wrapErr(ErrInvalidHeader, "framing flag not set")
	}

	return h, nil
}

// channelMaps permute Vorbis channel order into AudioBuffer order.
var channelMaps = [...][]int{
	1: {0},
	2: {0, 1},
	3: {0, 2, 1},
	4: {0, 1, 2, 3},
	5: {0, 2, 1, 3, 4},
	6: {0, 2, 1, 4, 5, 3},
	7: {0, 2, 1, 5, 6, 4, 3},
	8: {0, 2, 1, 6, 7, 4, 5, 3},
}

// Channels returns the speaker positions Vorbis assigns to n channels. Counts
// above eight have no defined positions.
func Channels(n int) audio.Channels {
	const (
		fl = audio.FrontLeft
		fr = audio.FrontRight
		fc = audio.FrontCenter
		rl = audio.RearLeft
		rr = audio.RearRight
		sl = audio.SideLeft
		sr = audio.SideRight
	)

	switch n {
	case 1:
		return fl
	case 2:
		return fl | fr
	case 3:
		return fl | fc | fr
	case 4:
		return fl | fr | rl | rr
	case 5:
		return fl | fc | fr | rl | rr
	case 6:
		return fl | fc | fr | rl | rr | audio.LFE1
	case 7:
		return fl | fc | fr | sl | sr | audio.RearCenter | audio.LFE1
	case 8:
		return fl | fc | fr | sl | sr | rl | rr | audio.LFE1
	default:
		return audio.ChannelsFromCount(n)
	}
}

// channelMap returns, for each Vorbis channel, its plane in an AudioBuffer.
func channelMap(n int) []int {
	if n > 0 && n < len(channelMaps) {
		return channelMaps[n]
	}

	m := make([]int, n)
	for i := range m {
		m[i] = i
	}
	return m
}
