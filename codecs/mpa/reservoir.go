// SPDX-License-Identifier: EPL-2.0

package mpa

import (
	"github.com/rs/zerolog/log"
)

// reservoirLen holds the largest main_data_begin (511) plus the main data
// of the largest Layer 3 frame.
const reservoirLen = 2048

// bitReservoir keeps main data across frames, since a frame's main data may
// begin inside earlier frames.
type bitReservoir struct {
	buf      [reservoirLen]byte
	len      int
	consumed int
}

// Fill appends the main data of a frame whose main data starts
// mainDataBegin bytes back. It returns how many of those bytes were never
// buffered, which happens when decoding starts mid-stream.
func (r *bitReservoir) Fill(mainData []byte, mainDataBegin uint16) (uint32, error) {
	begin := int(mainDataBegin)
	end := begin + len(mainData)

	if end > len(r.buf) {
		return 0, wrapErr(ErrInvalidFrame, "main_data_begin %d overflows the bit reservoir", begin)
	}

	unread := r.len - r.consumed

	var underflow uint32

	if begin <= unread {
		copy(r.buf[:begin], r.buf[r.len-begin:r.len])
		copy(r.buf[begin:end], mainData)
		r.len = end
	} else {
		copy(r.buf[:unread], r.buf[r.len-unread:r.len])
		copy(r.buf[unread:unread+len(mainData)], mainData)
		r.len = unread + len(mainData)

		underflow = uint32(begin - unread)
		log.Debug().Uint32("missing", underflow).Msg("mpa: bit reservoir underflow")
	}

	r.consumed = 0

	return underflow, nil
}

// Consume marks n bytes as read.
func (r *bitReservoir) Consume(n int) {
	r.consumed = min(r.len, r.consumed+n)
}

// Bytes returns the unread main data.
func (r *bitReservoir) Bytes() []byte {
	return r.buf[r.consumed:r.len]
}

// Clear drops all buffered data.
func (r *bitReservoir) Clear() {
	r.len = 0
	r.consumed = 0
}
