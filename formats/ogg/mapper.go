// SPDX-License-Identifier: EPL-2.0

package ogg

import (
	"github.com/ik5/audmux/media"
)

type resultKind uint8

const (
	// resultStreamData is a packet to hand to a decoder.
	resultStreamData resultKind = iota
	// resultSideData carries metadata for the log.
	resultSideData
	// resultSetup is a codec header consumed by the mapper.
	resultSetup
	// resultUnknown is a packet the mapper ignores.
	resultUnknown
	resultError
)

type mapResult struct {
	kind     resultKind
	dur      uint64
	metadata media.MetadataRevision
	err      error
}

// durationParser returns the frames a packet adds to its stream. Parsers may
// depend on the packets fed before, so each walk over pages gets its own.
type durationParser func(pkt []byte) uint64

// mapper interprets the packets of one logical stream for a codec.
type mapper interface {
	name() string

	codecParams() media.CodecParameters
	updateCodecParams(func(*media.CodecParameters))

	mapPacket(pkt []byte) mapResult
	// absGpToTs converts a granule position into a timestamp.
	absGpToTs(gp uint64) uint64
	makeParser() (durationParser, bool)

	// isReady reports whether every required header packet has been seen.
	isReady() bool
	reset()
}

// detectMapper picks a mapper from the first packet of a logical stream.
// Streams of unknown codecs get a mapper that drops their packets.
func detectMapper(pkt []byte) mapper {
	if m, ok := detectVorbis(pkt); ok {
		return m
	}
	if m, ok := detectOpus(pkt); ok {
		return m
	}
	if m, ok := detectFLAC(pkt); ok {
		return m
	}
	return &nullMapper{}
}

// baseMapper holds the codec parameters shared by every mapper.
type baseMapper struct {
	params media.CodecParameters
}

func (b *baseMapper) codecParams() media.CodecParameters { return b.params }

func (b *baseMapper) updateCodecParams(f func(*media.CodecParameters)) { f(&b.params) }

func (b *baseMapper) absGpToTs(gp uint64) uint64 { return gp }

func (b *baseMapper) reset() {}

type nullMapper struct {
	baseMapper
}

func (m *nullMapper) name() string { return "null" }

func (m *nullMapper) mapPacket([]byte) mapResult { return mapResult{kind: resultUnknown} }

func (m *nullMapper) makeParser() (durationParser, bool) { return nil, false }

func (m *nullMapper) isReady() bool { return true }
