// SPDX-License-Identifier: EPL-2.0

package ogg

import (
	"errors"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/ik5/audmux/stream"
)

// noGranule marks a page on which no packet ends.
const noGranule = ^uint64(0)

// probeStreamStart finds the first data page of every logical stream whose
// start is still unknown, beginning with first. Pages after first are read
// ahead within one maximum page length and the source is then rewound.
func probeStreamStart(src pageSource, first *Page, streams map[uint32]*logicalStream) {
	inspectStart(first, streams)
	if startsKnown(streams) {
		return
	}

	orig := src.Pos()
	defer src.SeekBuffered(orig)

	r := stream.NewScopedReader(src, maxPageLen)
	var pr pageReader

	for !startsKnown(streams) {
		if err := pr.nextPage(r); err != nil {
			return
		}
		page := pr.page()
		inspectStart(&page, streams)
	}
}

func inspectStart(page *Page, streams map[uint32]*logicalStream) {
	s, ok := streams[page.Header.Serial]
	if !ok || !s.isReady() || page.Header.AbsGp == noGranule {
		return
	}
	s.inspectStartPage(page)
}

func startsKnown(streams map[uint32]*logicalStream) bool {
	for _, s := range streams {
		if _, ok := s.mapper.makeParser(); ok && s.startBound == nil {
			return false
		}
	}
	return true
}

func endsKnown(streams map[uint32]*logicalStream) bool {
	for _, s := range streams {
		if _, ok := s.mapper.makeParser(); ok && s.endBound == nil {
			return false
		}
	}
	return true
}

// probeStreamEnd scans the tail of the physical stream, which starts at byte
// start and whose source ends at byte end, for the last page of each logical
// stream. The window grows backwards until every end is found. It returns
// the position just past the last page belonging to streams. The source is
// rewound before returning.
func probeStreamEnd(src *stream.MediaSourceStream, streams map[uint32]*logicalStream, start, end uint64) (uint64, bool) {
	orig := src.Pos()
	defer func() {
		if _, err := src.Seek(int64(orig), io.SeekStart); err != nil {
			log.Warn().Err(err).Msg("ogg: rewinding after end probe failed")
		}
	}()

	var (
		upper uint64
		found bool
	)

	for span := uint64(maxPageLen); ; span *= 2 {
		from := start
		if end > span && end-span > start {
			from = end - span
		}

		pos, ok, err := scanStreamEnd(src, streams, from, end)
		if err != nil {
			log.Debug().Err(err).Msg("ogg: end probe failed")
			return 0, false
		}
		if ok {
			upper, found = pos, true
		}

		if endsKnown(streams) || from == start {
			break
		}
	}

	return upper, found
}

// scanStreamEnd reads every page between from and end, feeding those of
// streams to their end inspection in order.
func scanStreamEnd(src *stream.MediaSourceStream, streams map[uint32]*logicalStream, from, end uint64) (uint64, bool, error) {
	if _, err := src.Seek(int64(from), io.SeekStart); err != nil {
		return 0, false, err
	}

	r := stream.NewScopedReader(src, end-from)

	var (
		pr     pageReader
		states = make(map[uint32]*inspectState, len(streams))
		upper  uint64
		found  bool
	)

	for {
		err := pr.nextPage(r)
		if errors.Is(err, stream.ErrScopeExceeded) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			break
		}
		if err != nil {
			return 0, false, err
		}

		page := pr.page()

		s, ok := streams[page.Header.Serial]
		if !ok {
			if page.Header.IsFirstPage {
				log.Debug().Uint32("serial", page.Header.Serial).Msg("ogg: chained stream after current one")
			}
			continue
		}

		st, ok := states[page.Header.Serial]
		if !ok {
			st = &inspectState{}
			states[page.Header.Serial] = st
		}
		s.inspectEndPage(st, &page)

		upper, found = r.Pos(), true
	}

	return upper, found, nil
}
