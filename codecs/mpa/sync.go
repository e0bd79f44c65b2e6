// SPDX-License-Identifier: EPL-2.0

package mpa

import (
	"github.com/ik5/audmux/stream"
)

// IsSyncWord reports whether word starts with the 11-bit frame sync.
func IsSyncWord(word uint32) bool {
	return word&0xffe00000 == 0xffe00000
}

// checkHeader rejects words with a reserved version, layer, sample rate or
// emphasis, or a bad bitrate index.
func checkHeader(word uint32) bool {
	switch {
	case (word>>19)&0x3 == 0x1:
		return false
	case (word>>17)&0x3 == 0x0:
		return false
	case (word>>12)&0xf == 0xf:
		return false
	case (word>>10)&0x3 == 0x3:
		return false
	case word&0x3 == 0x2:
		return false
	}
	return true
}

// SyncFrame reads bytes until the last four read look like a frame header
// and returns them.
func SyncFrame(r stream.ByteReader) (uint32, error) {
	var word uint32

	for {
		for !IsSyncWord(word) {
			b, err := r.ReadByte()
			if err != nil {
				return 0, err
			}
			word = word<<8 | uint32(b)
		}

		if checkHeader(word) {
			return word, nil
		}

		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		word = word<<8 | uint32(b)
	}
}

// ReadFrameHeader reads a header word at the current position without
// searching for sync.
func ReadFrameHeader(r stream.ByteReader) (FrameHeader, error) {
	word, err := stream.ReadU32BE(r)
	if err != nil {
		return FrameHeader{}, err
	}
	return ParseFrameHeader(word)
}
