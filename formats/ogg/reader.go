// SPDX-License-Identifier: EPL-2.0

package ogg

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/rs/zerolog/log"

	"github.com/ik5/audmux/media"
	"github.com/ik5/audmux/stream"
)

var _ media.FormatReader = (*Reader)(nil)

// Reader demultiplexes an Ogg physical stream, or a chain of them, into
// packets of its logical streams. Each logical stream is one track whose ID
// is its serial number.
type Reader struct {
	src  *stream.MediaSourceStream
	opts media.FormatOptions

	pages pageReader
	// pending is set when the current page has been read but not yet fed
	// to its logical stream.
	pending bool
	// current is the serial whose queued packets are served first.
	current uint32

	streams  map[uint32]*logicalStream
	tracks   []media.Track
	metadata media.MetadataLog

	// Byte range of the current physical stream's data pages.
	dataStart  uint64
	physEnd    uint64
	hasPhysEnd bool

	// lastTs is the end of the last packet returned for each track.
	lastTs map[uint32]uint64
}

// NewReader reads the headers of the first physical stream in src. When the
// source is seekable the end of the stream is probed for its length.
func NewReader(src stream.MediaSource, opts media.FormatOptions) (*Reader, error) {
	mss, err := stream.NewMediaSourceStream(src, stream.MediaSourceStreamOptions{BufferLen: opts.BufferLen})
	if err != nil {
		return nil, err
	}

	// A corrupt page is skipped by stepping back to just after its capture
	// pattern, so a whole page must stay buffered.
	mss.EnsureSeekBuffered(maxPageLen)

	r := &Reader{
		src:    mss,
		opts:   opts,
		lastTs: make(map[uint32]uint64),
	}

	if err := r.pages.nextPage(mss); err != nil {
		if isEOF(err) {
			return nil, ErrNoPackets
		}
		return nil, fmt.Errorf("ogg: reading first page: %w", err)
	}

	if !r.pages.header.IsFirstPage {
		return nil, ErrPageNotFirst
	}

	if err := r.startPhysicalStream(); err != nil {
		return nil, err
	}

	return r, nil
}

// startPhysicalStream sets up the logical streams beginning at the current
// page, reads their headers and probes their bounds.
func (r *Reader) startPhysicalStream() error {
	r.streams = make(map[uint32]*logicalStream)
	r.pending = false

	for {
		page := r.pages.page()
		h := &page.Header

		if h.IsFirstPage {
			if _, ok := r.streams[h.Serial]; !ok {
				r.addStream(&page)
			}
		}

		if s, ok := r.streams[h.Serial]; ok {
			if s.isReady() && r.allReady() {
				r.pending = true
				r.dataStart = r.pages.start
				break
			}

			if s.isReady() {
				s.inspectStartPage(&page)
			}
			r.current = h.Serial
			if err := r.feedPage(s, &page); err != nil {
				return err
			}
		} else {
			log.Debug().Uint32("serial", h.Serial).Msg("ogg: page of unknown stream before headers ended")
		}

		if err := r.pages.nextPage(r.src); err != nil {
			if !isEOF(err) {
				return err
			}
			if !r.anyPackets() {
				return ErrNoPackets
			}
			break
		}
	}

	if r.pending {
		page := r.pages.page()
		probeStreamStart(r.src, &page, r.streams)
	}

	r.hasPhysEnd = false
	if n, ok := r.src.ByteLen(); ok && r.src.IsSeekable() {
		r.physEnd, r.hasPhysEnd = probeStreamEnd(r.src, r.streams, r.dataStart, uint64(n))
	}

	r.buildTracks()

	for _, t := range r.tracks {
		log.Debug().
			Uint32("track", t.ID).
			Stringer("codec", t.Params.Codec).
			Uint32("rate", t.Params.SampleRate).
			Uint64("frames", t.Params.NFrames).
			Msg("ogg: track")
	}

	return nil
}

func (r *Reader) addStream(page *Page) {
	var m mapper = &nullMapper{}
	if pkt, ok := page.firstPacket(); ok {
		m = detectMapper(pkt)
	}

	r.streams[page.Header.Serial] = newLogicalStream(page.Header.Serial, m, r.opts.EnableGapless)

	log.Debug().
		Uint32("serial", page.Header.Serial).
		Str("mapper", m.name()).
		Msg("ogg: new logical stream")
}

func (r *Reader) allReady() bool {
	for _, s := range r.streams {
		if !s.isReady() {
			return false
		}
	}
	return true
}

func (r *Reader) anyPackets() bool {
	for _, s := range r.streams {
		if s.hasPackets() {
			return true
		}
	}
	return false
}

func (r *Reader) buildTracks() {
	serials := make([]uint32, 0, len(r.streams))
	for serial := range r.streams {
		serials = append(serials, serial)
	}
	slices.Sort(serials)

	r.tracks = r.tracks[:0]
	for _, serial := range serials {
		r.tracks = append(r.tracks, media.Track{
			ID:     serial,
			Params: r.streams[serial].codecParams(),
		})
	}
}

func (r *Reader) feedPage(s *logicalStream, page *Page) error {
	revs, err := s.readPage(page)
	for _, rev := range revs {
		r.metadata.Push(rev)
	}
	return err
}

// Tracks returns the logical streams of the current physical stream.
func (r *Reader) Tracks() []media.Track {
	return r.tracks
}

// DefaultTrack returns the first track with a known codec.
func (r *Reader) DefaultTrack() (media.Track, bool) {
	return media.DefaultTrack(r.tracks)
}

// Metadata returns the comment headers read so far.
func (r *Reader) Metadata() *media.MetadataLog {
	return &r.metadata
}

// Close closes the source.
func (r *Reader) Close() error {
	return r.src.Close()
}

// NextPacket returns the next packet of any track. Packets of one track come
// in decode order with non-decreasing timestamps.
func (r *Reader) NextPacket() (*media.Packet, error) {
	for {
		if r.pending {
			r.pending = false
			page := r.pages.page()
			r.current = page.Header.Serial
			if s, ok := r.streams[page.Header.Serial]; ok {
				if err := r.feedPage(s, &page); err != nil {
					return nil, err
				}
			}
		}

		if s, ok := r.streams[r.current]; ok {
			if pkt, ok := s.nextPacket(); ok {
				r.lastTs[pkt.TrackID] = pkt.Ts + pkt.Dur
				return pkt, nil
			}
		}

		if err := r.readPage(); err != nil {
			if errors.Is(err, media.ErrEndOfStream) {
				if pkt, ok := r.drain(); ok {
					return pkt, nil
				}
			}
			return nil, err
		}
	}
}

// drain returns packets left queued on streams other than the current one.
func (r *Reader) drain() (*media.Packet, bool) {
	for _, t := range r.tracks {
		if s, ok := r.streams[t.ID]; ok {
			if pkt, ok := s.nextPacket(); ok {
				return pkt, true
			}
		}
	}
	return nil, false
}

// readPage reads the next page and feeds it to its logical stream. A first
// page of an unknown serial starts a new physical stream.
func (r *Reader) readPage() error {
	if err := r.pages.nextPage(r.src); err != nil {
		if isEOF(err) {
			return media.ErrEndOfStream
		}
		return err
	}

	page := r.pages.page()
	r.current = page.Header.Serial

	s, ok := r.streams[page.Header.Serial]
	if !ok {
		if page.Header.IsFirstPage {
			log.Info().Uint32("serial", page.Header.Serial).Msg("ogg: chained physical stream")
			return r.startPhysicalStream()
		}

		log.Debug().Uint32("serial", page.Header.Serial).Msg("ogg: page of unknown stream")
		return nil
	}

	return r.feedPage(s, &page)
}

// Seek moves to the packet containing the target on one track. On seekable
// sources the page is found by bisection; otherwise packets are read and
// discarded, which only works forwards. Packets queued for other tracks are
// dropped.
func (r *Reader) Seek(_ media.SeekMode, to media.SeekTo) (media.SeekedTo, error) {
	s, err := r.seekStream(to)
	if err != nil {
		return media.SeekedTo{}, err
	}

	params := s.codecParams()

	ts := to.Ts
	if to.ByTime {
		if params.TimeBase.IsZero() {
			return media.SeekedTo{}, media.Errorf(media.ErrSeek, "track %d has no time base", s.serial)
		}
		ts = params.TimeBase.CalcTimestamp(to.Time)
	}

	if !r.opts.EnableGapless && ts < params.StartTs {
		return media.SeekedTo{}, seekOutOfRange(ts)
	}
	if params.NFrames > 0 {
		end := params.NFrames
		if !r.opts.EnableGapless {
			end += params.StartTs
		}
		if ts >= end {
			return media.SeekedTo{}, seekOutOfRange(ts)
		}
	}

	if r.src.IsSeekable() {
		if err := r.bisect(s, ts); err != nil {
			return media.SeekedTo{}, err
		}
	} else if ts < r.lastTs[s.serial] {
		return media.SeekedTo{}, media.ErrSeekForwardOnly
	}

	for {
		if pkt, ok := s.peekPacket(); ok {
			if pkt.Ts+pkt.Dur > ts {
				break
			}
			s.nextPacket()
			continue
		}

		if err := r.readPage(); err != nil {
			if errors.Is(err, media.ErrEndOfStream) {
				return media.SeekedTo{}, seekOutOfRange(ts)
			}
			return media.SeekedTo{}, err
		}

		if r.streams[s.serial] != s {
			return media.SeekedTo{}, media.Errorf(media.ErrSeek, "track %d ended", s.serial)
		}
	}

	for serial, other := range r.streams {
		if serial != s.serial {
			other.reset()
		}
	}

	pkt, _ := s.peekPacket()

	r.current = s.serial

	log.Debug().
		Uint32("track", s.serial).
		Uint64("required", ts).
		Uint64("actual", pkt.Ts).
		Msg("ogg: seeked")

	return media.SeekedTo{TrackID: s.serial, RequiredTs: ts, ActualTs: pkt.Ts}, nil
}

func (r *Reader) seekStream(to media.SeekTo) (*logicalStream, error) {
	if to.HasTrack {
		s, ok := r.streams[to.TrackID]
		if !ok {
			return nil, media.Errorf(media.ErrSeek, "no track %d", to.TrackID)
		}
		return s, nil
	}

	t, ok := r.DefaultTrack()
	if !ok {
		return nil, media.Errorf(media.ErrSeek, "no track to seek")
	}
	return r.streams[t.ID], nil
}

// bisect positions the source before the page holding ts of s and resets
// every logical stream. ts is on the packet timeline of s.
func (r *Reader) bisect(s *logicalStream, ts uint64) error {
	target := ts
	if r.opts.EnableGapless {
		target += uint64(s.codecParams().Delay)
	}

	lo := r.dataStart
	hi := lo
	if r.hasPhysEnd {
		hi = r.physEnd
	}

	var pr pageReader

	for hi > lo && hi-lo > 2*maxPageLen {
		mid := lo + (hi-lo)/2

		if _, err := r.src.Seek(int64(mid), io.SeekStart); err != nil {
			return err
		}

		page, err := r.nextTimedPage(&pr, s.serial)
		if err != nil {
			if !isEOF(err) {
				return err
			}
			hi = mid
			continue
		}

		if _, end, ok := s.inspectPage(&page); ok && target < end {
			hi = mid
		} else {
			lo = mid
		}
	}

	if _, err := r.src.Seek(int64(lo), io.SeekStart); err != nil {
		return err
	}

	for _, st := range r.streams {
		st.reset()
	}
	r.pending = false

	return nil
}

// nextTimedPage reads pages of serial until one has a granule position.
func (r *Reader) nextTimedPage(pr *pageReader, serial uint32) (Page, error) {
	for {
		if err := pr.nextPageForSerial(r.src, serial); err != nil {
			return Page{}, err
		}
		if page := pr.page(); page.Header.AbsGp != noGranule {
			return page, nil
		}
	}
}

func seekOutOfRange(ts uint64) error {
	return fmt.Errorf("ogg: timestamp %d: %w", ts, media.ErrSeekOutOfRange)
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}
