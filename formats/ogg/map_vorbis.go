// SPDX-License-Identifier: EPL-2.0

package ogg

import (
	"slices"

	"github.com/ik5/audmux/codecs/vorbis"
	"github.com/ik5/audmux/media"
)

const (
	vorbisPacketComment = 3
	vorbisPacketSetup   = 5
)

type vorbisMapper struct {
	baseMapper

	ident  vorbis.IdentHeader
	modes  []vorbis.Mode
	parser *vorbis.PacketParser

	hasSetup bool
}

func detectVorbis(pkt []byte) (mapper, bool) {
	ident, err := vorbis.ReadIdentHeader(pkt)
	if err != nil {
		return nil, false
	}

	m := &vorbisMapper{ident: ident}
	m.params = media.CodecParameters{
		Codec:              media.CodecVorbis,
		SampleRate:         ident.SampleRate,
		TimeBase:           media.NewTimeBase(1, ident.SampleRate),
		SampleFormat:       media.SampleFormatF32,
		Channels:           vorbis.Channels(int(ident.Channels)),
		MaxFramesPerPacket: (uint64(1) << ident.Bs1Exp) / 2,
		ExtraData:          slices.Clone(pkt),
	}

	return m, true
}

func (m *vorbisMapper) name() string { return "vorbis" }

func (m *vorbisMapper) isReady() bool { return m.hasSetup }

func (m *vorbisMapper) mapPacket(pkt []byte) mapResult {
	// Audio packets have the low bit of the first byte clear.
	if len(pkt) > 0 && pkt[0]&1 == 0 {
		if !m.hasSetup {
			return mapResult{kind: resultUnknown}
		}
		return mapResult{kind: resultStreamData, dur: m.parser.Duration(pkt)}
	}

	switch {
	case vorbis.IsHeaderPacket(pkt, vorbisPacketComment):
		rev, err := vorbis.ReadCommentHeader(pkt)
		if err != nil {
			return mapResult{kind: resultError, err: err}
		}
		return mapResult{kind: resultSideData, metadata: rev}

	case vorbis.IsHeaderPacket(pkt, vorbisPacketSetup):
		if m.hasSetup {
			return mapResult{kind: resultUnknown}
		}

		modes, err := vorbis.ReadModes(pkt, m.ident)
		if err != nil {
			return mapResult{kind: resultError, err: err}
		}

		m.modes = modes
		m.parser = vorbis.NewPacketParser(m.ident, modes)
		m.params.ExtraData = append(m.params.ExtraData, pkt...)
		m.hasSetup = true

		return mapResult{kind: resultSetup}
	}

	return mapResult{kind: resultUnknown}
}

func (m *vorbisMapper) makeParser() (durationParser, bool) {
	if !m.hasSetup {
		return nil, false
	}
	return vorbis.NewPacketParser(m.ident, m.modes).Duration, true
}

func (m *vorbisMapper) reset() {
	if m.parser != nil {
		m.parser.Reset()
	}
}
