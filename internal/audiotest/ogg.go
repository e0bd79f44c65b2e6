// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"bytes"
	"encoding/binary"
)

// Header type flags of an Ogg page.
const (
	PageContinued = 0x01
	PageFirst     = 0x02
	PageLast      = 0x04
)

var oggCRCTable = func() [256]uint32 {
	var t [256]uint32
	for i := range t {
		r := uint32(i) << 24
		for range 8 {
			if r&0x80000000 != 0 {
				r = r<<1 ^ 0x04c11db7
			} else {
				r <<= 1
			}
		}
		t[i] = r
	}
	return t
}()

// OggCRC computes the page checksum of b.
func OggCRC(b []byte) uint32 {
	var crc uint32
	for _, v := range b {
		crc = crc<<8 ^ oggCRCTable[byte(crc>>24)^v]
	}
	return crc
}

// Page assembles one Ogg page from its lacing values and body and fills in
// the checksum.
func Page(serial, sequence uint32, absGp uint64, flags byte, lacing, body []byte) []byte {
	hdr := make([]byte, 27, 27+len(lacing)+len(body))
	copy(hdr, "OggS")
	hdr[4] = 0
	hdr[5] = flags
	binary.LittleEndian.PutUint64(hdr[6:], absGp)
	binary.LittleEndian.PutUint32(hdr[14:], serial)
	binary.LittleEndian.PutUint32(hdr[18:], sequence)
	hdr[26] = byte(len(lacing))

	page := append(append(hdr, lacing...), body...)
	binary.LittleEndian.PutUint32(page[22:], OggCRC(page))

	return page
}

// Lacing returns the segment table entries of a complete packet of n bytes.
func Lacing(n int) []byte {
	l := bytes.Repeat([]byte{255}, n/255)
	return append(l, byte(n%255))
}

// OggWriter lays complete packets out into the pages of one logical stream.
type OggWriter struct {
	buf      bytes.Buffer
	serial   uint32
	sequence uint32
}

func NewOggWriter(serial uint32) *OggWriter {
	return &OggWriter{serial: serial}
}

// WritePage writes packets, which must fit in 255 segments, as one page.
func (w *OggWriter) WritePage(absGp uint64, flags byte, packets ...[]byte) {
	var lacing, body []byte
	for _, p := range packets {
		lacing = append(lacing, Lacing(len(p))...)
		body = append(body, p...)
	}
	if len(lacing) > 255 {
		panic("audiotest: packets do not fit in one page")
	}

	w.WriteRaw(absGp, flags, lacing, body)
}

// WriteRaw writes a page with an explicit segment table.
func (w *OggWriter) WriteRaw(absGp uint64, flags byte, lacing, body []byte) {
	w.buf.Write(Page(w.serial, w.sequence, absGp, flags, lacing, body))
	w.sequence++
}

// SkipSequence leaves a gap in the page sequence numbers.
func (w *OggWriter) SkipSequence() {
	w.sequence++
}

func (w *OggWriter) Bytes() []byte {
	return w.buf.Bytes()
}
