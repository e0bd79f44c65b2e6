// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"encoding/binary"

	"github.com/ik5/audmux/internal/checksum"
)

// Header words of MPEG-1 Layer 3 frames at 128 kbps and 44.1 kHz, and the
// size of such a frame without padding.
const (
	MP3JointStereo = 0xfffb9064
	MP3Mono        = 0xfffb90c4
	MP3FrameLen    = 417
	// MP3Mpeg1SideInfo is the side information length of a stereo frame.
	MP3Mpeg1SideInfo = 32
)

// MpegFrame returns a frame of size bytes: the header word, body and zeros.
func MpegFrame(word uint32, size int, body []byte) []byte {
	frame := make([]byte, size)
	binary.BigEndian.PutUint32(frame, word)
	copy(frame[4:], body)
	return frame
}

// MpegStream concatenates n frames of MpegFrame(word, size, nil).
func MpegStream(word uint32, size, n int) []byte {
	var out []byte
	for range n {
		out = append(out, MpegFrame(word, size, nil)...)
	}
	return out
}

// InfoTag describes the Xing or Info frame written by InfoFrame.
type InfoTag struct {
	// CBR selects the "Info" id instead of "Xing".
	CBR    bool
	Frames uint32
	Bytes  uint32

	// Encoder, when set, adds a LAME extension with the raw 12-bit delay
	// and padding fields.
	Encoder string
	Delay   uint32
	Padding uint32
	// BadCRC corrupts the LAME tag checksum.
	BadCRC bool
}

// InfoFrame returns a frame carrying tag after sideInfoLen zero bytes.
func InfoFrame(word uint32, size, sideInfoLen int, tag InfoTag) []byte {
	frame := MpegFrame(word, size, nil)
	p := 4 + sideInfoLen

	id := "Xing"
	if tag.CBR {
		id = "Info"
	}
	p += copy(frame[p:], id)

	var flags uint32
	if tag.Frames > 0 {
		flags |= 0x1
	}
	if tag.Bytes > 0 {
		flags |= 0x2
	}
	binary.BigEndian.PutUint32(frame[p:], flags)
	p += 4

	if tag.Frames > 0 {
		binary.BigEndian.PutUint32(frame[p:], tag.Frames)
		p += 4
	}
	if tag.Bytes > 0 {
		binary.BigEndian.PutUint32(frame[p:], tag.Bytes)
		p += 4
	}

	if tag.Encoder == "" {
		return frame
	}

	enc := make([]byte, 9)
	copy(enc, tag.Encoder)
	p += copy(frame[p:], enc)

	// Revision, lowpass, peak, radio and audiophile gain, flags and bitrate.
	p += 1 + 1 + 4 + 2 + 2 + 1 + 1

	trim := tag.Delay<<12 | tag.Padding&0xfff
	frame[p], frame[p+1], frame[p+2] = byte(trim>>16), byte(trim>>8), byte(trim)
	p += 3

	// Misc, mp3 gain, surround, music length and music CRC.
	p += 1 + 1 + 2 + 4 + 2

	crc := checksum.ANSI(frame[:p])
	if tag.BadCRC {
		crc ^= 0xffff
	}
	binary.BigEndian.PutUint16(frame[p:], crc)

	return frame
}

// VBRIFrame returns a frame with a VBRI tag 32 bytes after the header.
func VBRIFrame(word uint32, size int, frames, bytes uint32) []byte {
	frame := MpegFrame(word, size, nil)
	p := 4 + 32

	p += copy(frame[p:], "VBRI")
	binary.BigEndian.PutUint16(frame[p:], 1)
	p += 2 + 2 + 2
	binary.BigEndian.PutUint32(frame[p:], bytes)
	binary.BigEndian.PutUint32(frame[p+4:], frames)

	return frame
}
