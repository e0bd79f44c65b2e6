// SPDX-License-Identifier: EPL-2.0

package ogg

import (
	"encoding/binary"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/ik5/audmux/media"
	"github.com/ik5/audmux/stream"
)

// pageSource is a byte reader that can step back over buffered data, which
// resynchronization after a corrupt page needs.
type pageSource interface {
	stream.ByteReader
	stream.SeekBuffered
}

// pageReader reads pages one at a time and keeps the last good one.
type pageReader struct {
	// start is the position of the capture pattern of the last page.
	start      uint64
	header     PageHeader
	packetLens []uint16
	body       []byte

	// Buffers for the page being read, swapped in once it is verified.
	spareLens []uint16
	spareBody []byte
	segments  [255]byte
}

// page returns the last page read.
func (p *pageReader) page() Page {
	return Page{Header: p.header, packetLens: p.packetLens, body: p.body}
}

// tryNextPage reads the next page. On a checksum mismatch the reader is
// moved back to just after the capture pattern, so the next call
// resynchronizes on the following pattern, and the last good page is kept.
func (p *pageReader) tryNextPage(r pageSource) error {
	if err := syncPage(r); err != nil {
		return err
	}

	syncPos := r.Pos()

	var hdr [pageHeaderLen]byte
	binary.BigEndian.PutUint32(hdr[:4], pageMarker)
	if err := r.ReadExact(hdr[4:]); err != nil {
		return err
	}

	header, err := ReadPageHeader(stream.NewBufReader(hdr[:]))
	if err != nil {
		r.SeekBuffered(syncPos)
		return err
	}

	// The checksum is computed with its own field zeroed.
	clear(hdr[22:26])
	crc := &pageCRC{}
	crc.ProcessBytes(hdr[:])

	cr := stream.NewMonitorReader(r, crc)

	segments := p.segments[:header.NSegments]
	if err := cr.ReadExact(segments); err != nil {
		return err
	}

	lens, bodyLen := packetLengths(p.spareLens[:0], segments)

	if cap(p.spareBody) < bodyLen {
		// Grow in 8 KiB steps.
		p.spareBody = make([]byte, (bodyLen+8<<10-1)&^(8<<10-1))
	}
	body := p.spareBody[:bodyLen]
	if err := cr.ReadExact(body); err != nil {
		return err
	}

	if crc.Sum() != header.CRC {
		log.Warn().
			Uint64("pos", syncPos).
			Uint32("serial", header.Serial).
			Uint32("sequence", header.Sequence).
			Msg("ogg: page checksum mismatch, resynchronizing")

		p.spareLens = lens
		r.SeekBuffered(syncPos)
		return ErrCRCMismatch
	}

	p.spareLens, p.packetLens = p.packetLens, lens
	p.spareBody, p.body = p.body, body
	p.header = header
	p.start = syncPos - 4

	return nil
}

// nextPage reads pages until one is valid. Only I/O errors, end of stream
// included, are returned.
func (p *pageReader) nextPage(r pageSource) error {
	for {
		err := p.tryNextPage(r)
		if err == nil {
			return nil
		}
		if !errors.Is(err, media.ErrDecode) {
			return err
		}

		log.Debug().Err(err).Uint64("pos", r.Pos()).Msg("ogg: skipping invalid page")
	}
}

// nextPageForSerial reads valid pages until one belongs to serial.
func (p *pageReader) nextPageForSerial(r pageSource, serial uint32) error {
	for {
		if err := p.nextPage(r); err != nil {
			return err
		}
		if p.header.Serial == serial {
			return nil
		}
	}
}

// syncPage consumes bytes up to and including the next capture pattern.
func syncPage(r stream.ByteReader) error {
	marker, err := stream.ReadU32BE(r)
	if err != nil {
		return err
	}

	for marker != pageMarker {
		b, err := r.ReadByte()
		if err != nil {
			return err
		}
		marker = marker<<8 | uint32(b)
	}

	return nil
}
