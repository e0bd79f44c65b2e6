// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/ik5/audmux/codecs/mpa"
	"github.com/ik5/audmux/media"
	"github.com/ik5/audmux/stream"
)

const (
	// maxFrameLen bounds an MPEG-2 Layer 2 frame at 160 kbps and 8 kHz,
	// the largest a header can describe, plus the next header word.
	maxFrameLen = 4096

	// The stream length is estimated from the average size of up to
	// estimateFrames frames or estimateBytes bytes.
	estimateFrames = 16
	estimateBytes  = 16 << 10

	trackID = 0
)

var _ media.FormatReader = (*Reader)(nil)

// Reader demultiplexes raw MPEG audio, one frame per packet. The stream has a
// single track with ID 0 whose time base is the sample rate.
type Reader struct {
	src  *stream.MediaSourceStream
	opts media.FormatOptions

	track    media.Track
	metadata media.MetadataLog

	firstPacketPos uint64
	nextTs         uint64
}

// NewReader syncs to the first frame of src. A Xing, Info or VBRI tag in
// that frame sets the length and encoder delay; otherwise the length of a
// seekable source is estimated from its first frames.
func NewReader(src stream.MediaSource, opts media.FormatOptions) (*Reader, error) {
	mss, err := stream.NewMediaSourceStream(src, stream.MediaSourceStreamOptions{BufferLen: opts.BufferLen})
	if err != nil {
		return nil, err
	}

	mss.EnsureSeekBuffered(2 * estimateBytes)

	h, frame, err := readFrameStrict(mss)
	if err != nil {
		if isEOF(err) {
			return nil, ErrNoFrames
		}
		return nil, fmt.Errorf("mp3: reading first frame: %w", err)
	}

	spec := h.Spec()
	params := media.CodecParameters{
		Codec:              h.Codec(),
		SampleRate:         h.SampleRate,
		TimeBase:           media.NewTimeBase(1, h.SampleRate),
		Channels:           spec.Channels,
		MaxFramesPerPacket: h.Duration(),
		FramesPerBlock:     h.Duration(),
	}

	r := &Reader{
		src:  mss,
		opts: opts,
	}

	if tag, ok := ReadInfoTag(frame, h); ok {
		var delay, padding uint32
		if tag.Lame != nil {
			delay, padding = tag.Lame.EncoderDelay, tag.Lame.EncoderPadding
			params.Delay, params.Padding = delay, padding
			r.pushLameMetadata(tag.Lame)
		}

		if tag.HasFrames {
			n := uint64(tag.Frames) * h.Duration()
			if opts.EnableGapless {
				n -= min(n, uint64(delay)+uint64(padding))
			}
			params.NFrames = n
		}

		log.Debug().Bool("cbr", tag.CBR).Uint32("frames", tag.Frames).Msg("mp3: info tag")
	} else if tag, ok := ReadVBRITag(frame, h); ok {
		params.NFrames = uint64(tag.Frames) * h.Duration()

		log.Debug().Uint32("frames", tag.Frames).Msg("mp3: vbri tag")
	} else {
		// The first frame holds audio.
		mss.SeekBufferedRev(len(frame))

		if mss.IsSeekable() {
			if n, ok := estimateFrameCount(mss); ok {
				params.NFrames = n * h.Duration()
			}
		}
	}

	r.firstPacketPos = mss.Pos()
	r.track = media.Track{ID: trackID, Params: params}

	log.Debug().
		Stringer("codec", params.Codec).
		Uint32("rate", params.SampleRate).
		Uint64("frames", params.NFrames).
		Uint32("delay", params.Delay).
		Msg("mp3: track")

	return r, nil
}

func (r *Reader) pushLameMetadata(lame *LameTag) {
	var b media.MetadataBuilder

	if lame.Encoder != "" {
		b.AddTag(media.Tag{StdKey: media.TagEncoder, Key: "encoder", Value: lame.Encoder})
	}
	if lame.HasRadioGain {
		b.AddTag(media.Tag{
			StdKey: media.TagReplayGainTrackGain,
			Key:    "replaygain_track_gain",
			Value:  strconv.FormatFloat(float64(lame.RadioGain), 'f', 1, 32) + " dB",
		})
	}
	if lame.HasAudiophileGain {
		b.AddTag(media.Tag{
			StdKey: media.TagReplayGainAlbumGain,
			Key:    "replaygain_album_gain",
			Value:  strconv.FormatFloat(float64(lame.AudiophileGain), 'f', 1, 32) + " dB",
		})
	}
	if lame.ReplayGainPeak > 0 {
		b.AddTag(media.Tag{
			StdKey: media.TagReplayGainTrackPeak,
			Key:    "replaygain_track_peak",
			Value:  strconv.FormatFloat(float64(lame.ReplayGainPeak), 'f', 6, 32),
		})
	}

	rev := b.Metadata()
	if len(rev.Tags) > 0 {
		r.metadata.Push(rev)
	}
}

// Tracks returns the single track of the stream.
func (r *Reader) Tracks() []media.Track {
	return []media.Track{r.track}
}

func (r *Reader) DefaultTrack() (media.Track, bool) {
	return r.track, true
}

// Metadata returns the LAME tag fields, if any.
func (r *Reader) Metadata() *media.MetadataLog {
	return &r.metadata
}

func (r *Reader) Close() error {
	return r.src.Close()
}

// NextPacket returns the next frame. Tag frames after the first frame are
// skipped.
func (r *Reader) NextPacket() (*media.Packet, error) {
	h, frame, err := r.nextAudioFrame()
	if err != nil {
		return nil, err
	}

	dur := h.Duration()
	pkt := &media.Packet{TrackID: trackID, Ts: r.nextTs, Dur: dur, Data: frame}
	r.nextTs += dur

	if r.opts.EnableGapless {
		media.TrimPacket(pkt, r.track.Params.Delay, r.track.Params.NFrames)
	}

	return pkt, nil
}

func (r *Reader) nextAudioFrame() (mpa.FrameHeader, []byte, error) {
	for {
		h, frame, err := readFrame(r.src)
		if err != nil {
			if isEOF(err) {
				return h, nil, media.ErrEndOfStream
			}
			return h, nil, err
		}

		if isTagFrame(frame, h) {
			log.Debug().Uint64("pos", r.src.Pos()-uint64(len(frame))).Msg("mp3: skipping tag frame")
			continue
		}

		return h, frame, nil
	}
}

// Seek scans frames for the one containing the target. Seekable sources
// rescan from the first frame when moving backwards; other sources can only
// move forwards.
func (r *Reader) Seek(_ media.SeekMode, to media.SeekTo) (media.SeekedTo, error) {
	if to.HasTrack && to.TrackID != trackID {
		return media.SeekedTo{}, media.Errorf(media.ErrSeek, "no track %d", to.TrackID)
	}

	params := r.track.Params

	ts := to.Ts
	if to.ByTime {
		ts = params.TimeBase.CalcTimestamp(to.Time)
	}

	if params.NFrames > 0 && ts >= params.NFrames {
		return media.SeekedTo{}, seekOutOfRange(ts)
	}

	// Frame timestamps do not include the gapless trim.
	target := ts
	if r.opts.EnableGapless {
		target += uint64(params.Delay)
	}

	if target < r.nextTs {
		if !r.src.IsSeekable() {
			return media.SeekedTo{}, media.ErrSeekForwardOnly
		}
		if _, err := r.src.Seek(int64(r.firstPacketPos), io.SeekStart); err != nil {
			return media.SeekedTo{}, err
		}
		r.nextTs = 0
	}

	for {
		h, frame, err := r.nextAudioFrame()
		if err != nil {
			if errors.Is(err, media.ErrEndOfStream) {
				return media.SeekedTo{}, seekOutOfRange(ts)
			}
			return media.SeekedTo{}, err
		}

		if r.nextTs+h.Duration() > target {
			r.src.SeekBufferedRev(len(frame))
			break
		}

		r.nextTs += h.Duration()
	}

	actual := r.nextTs
	if r.opts.EnableGapless {
		actual -= min(actual, uint64(params.Delay))
	}

	log.Debug().Uint64("required", ts).Uint64("actual", actual).Msg("mp3: seeked")

	return media.SeekedTo{TrackID: trackID, RequiredTs: ts, ActualTs: actual}, nil
}

// readFrame syncs to the next parseable frame header and reads the frame.
func readFrame(src *stream.MediaSourceStream) (mpa.FrameHeader, []byte, error) {
	for {
		word, err := mpa.SyncFrame(src)
		if err != nil {
			return mpa.FrameHeader{}, nil, err
		}

		h, err := mpa.ParseFrameHeader(word)
		if err != nil {
			log.Debug().Err(err).Uint64("pos", src.Pos()-mpa.HeaderLen).Msg("mp3: rejected sync")
			continue
		}

		frame := make([]byte, mpa.HeaderLen+h.FrameSize)
		binary.BigEndian.PutUint32(frame, word)

		if err := src.ReadExact(frame[mpa.HeaderLen:]); err != nil {
			return h, nil, err
		}

		return h, frame, nil
	}
}

// readFrameStrict reads a frame and checks that a similar frame follows it,
// since a sync word in random data rarely lines up with another one. The
// end of the stream also counts as a match.
func readFrameStrict(src *stream.MediaSourceStream) (mpa.FrameHeader, []byte, error) {
	for {
		h, frame, err := readFrame(src)
		if err != nil {
			return h, nil, err
		}

		pos := src.Pos()

		word, err := stream.ReadU32BE(src)
		if err == nil && !isSimilarWord(h, word) {
			log.Debug().Uint64("pos", pos-uint64(len(frame))).Msg("mp3: rejected frame without a similar successor")

			// Resume syncing at the second byte of the rejected frame.
			src.SeekBufferedRev(int(src.Pos()-pos) + len(frame) - 1)
			continue
		}

		src.SeekBuffered(pos)

		return h, frame, nil
	}
}

func isSimilarWord(h mpa.FrameHeader, word uint32) bool {
	if !mpa.IsSyncWord(word) {
		return false
	}

	next, err := mpa.ParseFrameHeader(word)
	if err != nil {
		return false
	}

	return h.IsSimilar(next)
}

// estimateFrameCount extrapolates the number of frames in the rest of the
// source from the average length of the frames at its current position. The
// position is restored.
func estimateFrameCount(src *stream.MediaSourceStream) (uint64, bool) {
	n, ok := src.ByteLen()
	if !ok {
		return 0, false
	}

	start := src.Pos()
	if uint64(n) <= start {
		return 0, false
	}
	total := uint64(n) - start

	var frames, frameBytes uint64

	for frames < estimateFrames && frameBytes <= estimateBytes {
		h, err := mpa.ReadFrameHeader(src)
		if err != nil {
			break
		}

		if err := src.IgnoreBytes(uint64(h.FrameSize)); err != nil {
			break
		}

		frames++
		frameBytes += uint64(mpa.HeaderLen + h.FrameSize)
	}

	src.SeekBufferedRev(int(src.Pos() - start))

	if frames == 0 {
		return 0, false
	}

	return total * frames / frameBytes, true
}

func seekOutOfRange(ts uint64) error {
	return fmt.Errorf("mp3: timestamp %d: %w", ts, media.ErrSeekOutOfRange)
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}
