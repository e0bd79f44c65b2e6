// SPDX-License-Identifier: EPL-2.0

package ogg

import (
	"github.com/rs/zerolog/log"

	"github.com/ik5/audmux/media"
)

// maxPartialPacketLen bounds the bytes buffered for a packet spanning pages.
const maxPartialPacketLen = 8 << 20

// bound is the first or last page of a logical stream's data.
type bound struct {
	seq   uint32
	ts    uint64
	delay uint64
}

// inspectState carries the end page inspection of one logical stream from
// one page to the next.
type inspectState struct {
	parse durationParser
	bound *bound
}

type logicalStream struct {
	serial  uint32
	mapper  mapper
	gapless bool

	packets []*media.Packet

	partial []byte

	prevSeq uint32
	hasPrev bool

	startBound *bound
	endBound   *bound
}

func newLogicalStream(serial uint32, m mapper, gapless bool) *logicalStream {
	return &logicalStream{serial: serial, mapper: m, gapless: gapless}
}

func (s *logicalStream) codecParams() media.CodecParameters {
	return s.mapper.codecParams()
}

func (s *logicalStream) isReady() bool {
	return s.mapper.isReady()
}

func (s *logicalStream) hasPackets() bool {
	return len(s.packets) > 0
}

func (s *logicalStream) peekPacket() (*media.Packet, bool) {
	if len(s.packets) == 0 {
		return nil, false
	}
	return s.packets[0], true
}

func (s *logicalStream) nextPacket() (*media.Packet, bool) {
	pkt, ok := s.peekPacket()
	if ok {
		s.packets[0] = nil
		s.packets = s.packets[1:]
	}
	return pkt, ok
}

// reset drops queued and partial packets, as after a seek.
func (s *logicalStream) reset() {
	clear(s.packets)
	s.packets = s.packets[:0]
	s.partial = s.partial[:0]
	s.hasPrev = false
	s.mapper.reset()
}

// readPage queues the packets of page and returns the metadata it carries.
// Only exceeding the partial packet limit is an error.
func (s *logicalStream) readPage(page *Page) ([]media.MetadataRevision, error) {
	h := &page.Header

	if s.hasPrev {
		switch {
		case h.Sequence < s.prevSeq:
			log.Debug().Uint32("serial", s.serial).Msg("ogg: page sequence went backwards")
			s.partial = s.partial[:0]
		case h.Sequence-s.prevSeq > 1:
			log.Debug().
				Uint32("serial", s.serial).
				Uint32("pages", h.Sequence-s.prevSeq-1).
				Msg("ogg: page discontinuity")
			s.partial = s.partial[:0]
		}
	}
	s.prevSeq = h.Sequence
	s.hasPrev = true

	if !h.IsContinuation && len(s.partial) > 0 {
		log.Debug().Uint32("serial", s.serial).Msg("ogg: expected a continuation page, dropping partial packet")
		s.partial = s.partial[:0]
	}

	skip := 0
	if h.IsContinuation && len(s.partial) == 0 {
		if page.NumPackets() == 0 {
			log.Debug().Uint32("serial", s.serial).Msg("ogg: unexpected continuation page, ignoring page")
			return nil, nil
		}
		log.Debug().Uint32("serial", s.serial).Msg("ogg: unexpected continuation page, dropping first packet")
		skip = 1
	}

	var side []media.MetadataRevision
	queued := len(s.packets)

	for data := range page.Packets() {
		if skip > 0 {
			skip--
			continue
		}

		if len(s.partial) > 0 {
			data = append(s.partial, data...)
			s.partial = s.partial[:0]
		}

		res := s.mapper.mapPacket(data)

		switch res.kind {
		case resultStreamData:
			s.packets = append(s.packets, media.NewPacket(s.serial, 0, res.dur, data))
		case resultSideData:
			side = append(side, res.metadata)
		case resultError:
			log.Warn().Err(res.err).Uint32("serial", s.serial).Msg("ogg: mapping packet failed, skipping")
		}
	}

	if part := page.PartialPacket(); part != nil {
		if err := s.savePartial(part); err != nil {
			return side, err
		}
	}

	if added := s.packets[queued:]; len(added) > 0 {
		s.stampPackets(h, added)
	}

	return side, nil
}

// stampPackets assigns timestamps to the packets of one page by counting
// back from the page's end timestamp.
func (s *logicalStream) stampPackets(h *PageHeader, added []*media.Packet) {
	end := s.mapper.absGpToTs(h.AbsGp) + s.startShift()
	if h.IsLastPage && s.endBound != nil {
		end += s.endBound.delay
	}

	var dur uint64
	for i := len(added) - 1; i >= 0; i-- {
		dur += added[i].Dur
		added[i].Ts = end - min(dur, end)
	}

	if !s.gapless {
		return
	}

	delay := s.mapper.codecParams().Delay
	numFrames, _ := s.trimmedFrames()
	for _, pkt := range added {
		media.TrimPacket(pkt, delay, numFrames)
	}
}

// startShift is the number of frames decoded before granule position zero.
func (s *logicalStream) startShift() uint64 {
	if s.startBound == nil {
		return 0
	}
	return s.startBound.delay
}

// trimmedFrames is the frame count once encoder delay and padding are
// removed, if the end of the stream is known.
func (s *logicalStream) trimmedFrames() (uint64, bool) {
	if s.endBound == nil {
		return 0, false
	}
	delay := uint64(s.mapper.codecParams().Delay)
	return s.endBound.ts - min(delay, s.endBound.ts), true
}

func (s *logicalStream) savePartial(buf []byte) error {
	n := len(s.partial) + len(buf)
	if n > maxPartialPacketLen {
		s.partial = s.partial[:0]
		return ErrPacketTooLarge
	}

	if n > cap(s.partial) {
		grown := make([]byte, len(s.partial), (n+8<<10-1)&^(8<<10-1))
		copy(grown, s.partial)
		s.partial = grown
	}

	s.partial = append(s.partial, buf...)
	return nil
}

// pageDuration feeds every packet of page to parse and sums the durations.
func pageDuration(page *Page, parse durationParser) uint64 {
	var dur uint64
	for data := range page.Packets() {
		dur += parse(data)
	}
	return dur
}

// inspectStartPage derives the start timestamp and encoder delay from the
// first data page.
func (s *logicalStream) inspectStartPage(page *Page) {
	if s.startBound != nil || page.NumPackets() == 0 {
		return
	}

	parse, ok := s.mapper.makeParser()
	if !ok {
		log.Debug().Uint32("serial", s.serial).Msg("ogg: no packet parser, start unknown")
		return
	}

	dur := pageDuration(page, parse)
	end := s.mapper.absGpToTs(page.Header.AbsGp)

	b := &bound{seq: page.Header.Sequence}
	if end >= dur {
		b.ts = end - dur
	} else {
		// Frames decoded before the page's granule position are delay.
		b.delay = dur - end
	}

	s.mapper.updateCodecParams(func(p *media.CodecParameters) {
		p.StartTs = b.ts
		if b.delay > 0 {
			p.Delay = uint32(b.delay)
		}
	})

	s.startBound = b
}

// inspectEndPage is fed the trailing pages of the stream in order. Once the
// last page is seen the frame count and padding are known.
func (s *logicalStream) inspectEndPage(state *inspectState, page *Page) {
	if s.endBound != nil || page.Header.AbsGp == noGranule {
		return
	}

	if state.parse == nil {
		parse, ok := s.mapper.makeParser()
		if !ok {
			log.Debug().Uint32("serial", s.serial).Msg("ogg: no packet parser, end unknown")
			return
		}
		state.parse = parse
	}

	end := s.mapper.absGpToTs(page.Header.AbsGp) + s.startShift()

	// Every page is parsed so the first packet of the last page has a
	// predecessor to overlap with.
	dur := pageDuration(page, state.parse)

	b := &bound{seq: page.Header.Sequence, ts: end}

	if page.Header.IsLastPage && state.bound != nil {
		if actual := state.bound.ts + dur; actual > end {
			b.delay = actual - end
		}
	}

	state.bound = b

	if !page.Header.IsLastPage {
		return
	}

	s.endBound = b

	s.mapper.updateCodecParams(func(p *media.CodecParameters) {
		if s.gapless {
			p.NFrames, _ = s.trimmedFrames()
		} else if total := b.ts + b.delay; total > p.StartTs {
			p.NFrames = total - p.StartTs
		}
		p.Padding = uint32(b.delay)
	})
}

// inspectPage returns the timestamps of the first and one past the last
// frame of page. It fails for pages without a granule position.
func (s *logicalStream) inspectPage(page *Page) (start, end uint64, ok bool) {
	if page.Header.AbsGp == noGranule {
		return 0, 0, false
	}

	parse, ok := s.mapper.makeParser()
	if !ok {
		return 0, 0, false
	}

	end = s.mapper.absGpToTs(page.Header.AbsGp) + s.startShift()
	dur := pageDuration(page, parse)

	return end - min(dur, end), end, true
}
