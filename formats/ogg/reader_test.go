// SPDX-License-Identifier: EPL-2.0

package ogg

import (
	"bytes"
	"errors"
	"io"
	"slices"
	"testing"

	"github.com/ik5/audmux/codecs/vorbis"
	"github.com/ik5/audmux/internal/audiotest"
	"github.com/ik5/audmux/media"
	"github.com/ik5/audmux/stream"
)

const testSerial = 0x2a

var testLongs = []bool{false, false, true, true, false, false}

func newTestReader(t *testing.T, data []byte, opts media.FormatOptions) *Reader {
	t.Helper()

	r, err := NewReader(stream.NewSource(bytes.NewReader(data)), opts)
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func readAll(t *testing.T, r *Reader) []*media.Packet {
	t.Helper()

	var pkts []*media.Packet
	for {
		pkt, err := r.NextPacket()
		if errors.Is(err, io.EOF) {
			return pkts
		}
		if err != nil {
			t.Fatalf("NextPacket() error = %v", err)
		}
		pkts = append(pkts, pkt)
	}
}

type packetTiming struct {
	ts, dur uint64
}

func timings(pkts []*media.Packet) []packetTiming {
	out := make([]packetTiming, len(pkts))
	for i, p := range pkts {
		out[i] = packetTiming{p.Ts, p.Dur}
	}
	return out
}

// writeVorbisHeaders writes the three header pages of testStream.
func writeVorbisHeaders(w *audiotest.OggWriter) {
	w.WritePage(0, audiotest.PageFirst, testStream.IdentPacket())
	w.WritePage(0, 0, testStream.CommentPacket("audiotest"))
	w.WritePage(0, 0, testStream.SetupPacket())
}

func shortPackets(n int) [][]byte {
	pkts := make([][]byte, n)
	for i := range pkts {
		pkts[i] = testStream.AudioPacket(false, 180, false)
	}
	return pkts
}

func TestReader_Vorbis(t *testing.T) {
	t.Parallel()

	r := newTestReader(t, testStream.OggFile(testSerial, testLongs, 2), media.FormatOptions{})

	tracks := r.Tracks()
	if len(tracks) != 1 {
		t.Fatalf("Tracks() has %d tracks, want 1", len(tracks))
	}

	track, ok := r.DefaultTrack()
	if !ok || track.ID != testSerial {
		t.Fatalf("DefaultTrack() = %d, %v, want %d", track.ID, ok, testSerial)
	}

	p := track.Params
	if p.Codec != media.CodecVorbis || p.SampleRate != 44100 || p.NFrames != 352 || p.StartTs != 0 {
		t.Errorf("Params = %v frames %d start %d, want vorbis 44100Hz frames 352 start 0", p, p.NFrames, p.StartTs)
	}
	if d, ok := p.Duration(); !ok || d.Seconds != 0 {
		t.Errorf("Duration() = %v, %v", d, ok)
	}

	rev, ok := r.Metadata().Current()
	if !ok {
		t.Fatal("Metadata().Current() found no revision")
	}
	if tag, ok := rev.Tag(media.TagTrackTitle); !ok || tag.Value != "Synthetic" {
		t.Errorf("title tag = %+v, %v, want Synthetic", tag, ok)
	}

	pkts := readAll(t, r)

	want := []packetTiming{{0, 0}, {0, 32}, {32, 80}, {112, 128}, {240, 80}, {320, 32}}
	if got := timings(pkts); !slices.Equal(got, want) {
		t.Errorf("packet timings = %v, want %v", got, want)
	}

	for _, pkt := range pkts {
		if pkt.TrackID != testSerial {
			t.Errorf("TrackID = %d, want %d", pkt.TrackID, testSerial)
		}
	}

	if _, err := r.NextPacket(); !errors.Is(err, media.ErrEndOfStream) {
		t.Errorf("NextPacket() after the end error = %v, want %v", err, media.ErrEndOfStream)
	}
}

func TestReader_DecodesPackets(t *testing.T) {
	t.Parallel()

	r := newTestReader(t, testStream.OggFile(testSerial, testLongs, 2), media.FormatOptions{})
	track, _ := r.DefaultTrack()

	dec, err := vorbis.NewDecoder(track.Params, media.DecoderOptions{})
	if err != nil {
		t.Fatalf("vorbis.NewDecoder() error = %v", err)
	}

	var total uint64
	for i, pkt := range readAll(t, r) {
		buf, err := dec.Decode(pkt)
		if err != nil {
			t.Fatalf("Decode(packet %d) error = %v", i, err)
		}
		if uint64(buf.Frames()) != pkt.Dur {
			t.Errorf("Decode(packet %d) = %d frames, want %d", i, buf.Frames(), pkt.Dur)
		}
		if i == 1 && buf.Frames() == 0 {
			t.Error("second packet decoded no frames")
		}
		total += uint64(buf.Frames())
	}

	if total != track.Params.NFrames {
		t.Errorf("decoded %d frames, want %d", total, track.Params.NFrames)
	}
}

func TestReader_Unseekable(t *testing.T) {
	t.Parallel()

	data := testStream.OggFile(testSerial, testLongs, 2)

	r, err := NewReader(stream.NewReadOnlySource(bytes.NewReader(data)), media.FormatOptions{})
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}
	defer r.Close()

	track, _ := r.DefaultTrack()
	if track.Params.NFrames != 0 {
		t.Errorf("NFrames = %d, want 0 without end probing", track.Params.NFrames)
	}

	if got := len(readAll(t, r)); got != len(testLongs) {
		t.Errorf("read %d packets, want %d", got, len(testLongs))
	}
}

func TestReader_Invalid(t *testing.T) {
	t.Parallel()

	notFirst := audiotest.NewOggWriter(1)
	notFirst.WritePage(0, 0, testStream.IdentPacket())

	headersOnly := audiotest.NewOggWriter(1)
	writeVorbisHeaders(headersOnly)

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrNoPackets},
		{"garbage", bytes.Repeat([]byte("nope"), 100), ErrNoPackets},
		{"not a first page", notFirst.Bytes(), ErrPageNotFirst},
		{"no audio", headersOnly.Bytes(), ErrNoPackets},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewReader(stream.NewSource(bytes.NewReader(tt.data)), media.FormatOptions{})
			if !errors.Is(err, tt.want) {
				t.Errorf("NewReader() error = %v, want %v", err, tt.want)
			}
			if !errors.Is(err, media.ErrDecode) {
				t.Errorf("NewReader() error = %v, want a decode error", err)
			}
		})
	}
}

func TestReader_CorruptPage(t *testing.T) {
	t.Parallel()

	data := slices.Clone(testStream.OggFile(testSerial, testLongs, 2))

	// Flip a byte in the body of the first audio page.
	pos := 0
	for range 3 {
		pos += bytes.Index(data[pos+1:], []byte("OggS")) + 1
	}
	data[pos+pageHeaderLen+4] ^= 0xff

	r := newTestReader(t, data, media.FormatOptions{})
	pkts := readAll(t, r)

	if len(pkts) != 4 {
		t.Fatalf("read %d packets, want 4", len(pkts))
	}
	for i := 1; i < len(pkts); i++ {
		if pkts[i].Ts < pkts[i-1].Ts {
			t.Errorf("packet %d Ts %d before packet %d Ts %d", i, pkts[i].Ts, i-1, pkts[i-1].Ts)
		}
	}
}

func TestReader_CorruptContinuation(t *testing.T) {
	t.Parallel()

	short := testStream.AudioPacket(false, 180, false)
	big := bigPacket()

	w := audiotest.NewOggWriter(testSerial)
	writeVorbisHeaders(w)
	w.WritePage(32, 0, short, short)
	w.WriteRaw(noGranule, 0, []byte{255}, big[:255])
	w.WriteRaw(96, audiotest.PageContinued,
		append(audiotest.Lacing(len(big)-255), audiotest.Lacing(len(short))...),
		append(slices.Clone(big[255:]), short...))
	w.WritePage(160, audiotest.PageLast, short, short)

	// Break the checksum of the page completing the spanning packet.
	data := slices.Clone(w.Bytes())
	page := readPageBytes(data, 5)
	page[len(page)-1] ^= 0xff

	r := newTestReader(t, data, media.FormatOptions{})
	pkts := readAll(t, r)

	if len(pkts) != 4 {
		t.Fatalf("read %d packets, want 4", len(pkts))
	}
	for i, p := range pkts {
		if !bytes.Equal(p.Data, short) {
			t.Errorf("packet %d is %d bytes, want a %d byte short packet", i, len(p.Data), len(short))
		}
		if i > 0 && p.Ts < pkts[i-1].Ts {
			t.Errorf("packet %d Ts %d before packet %d Ts %d", i, p.Ts, i-1, pkts[i-1].Ts)
		}
	}
}

// delayedFile has a first audio page whose granule position is less than
// the frames it decodes to, and a last page ending before its final block.
func delayedFile() []byte {
	w := audiotest.NewOggWriter(testSerial)
	writeVorbisHeaders(w)

	// Frames: 0, 32, 32 then 32, 32.
	w.WritePage(32, 0, shortPackets(3)...)
	w.WritePage(68, audiotest.PageLast, shortPackets(2)...)

	return w.Bytes()
}

func TestReader_DelayAndPadding(t *testing.T) {
	t.Parallel()

	r := newTestReader(t, delayedFile(), media.FormatOptions{})
	track, _ := r.DefaultTrack()

	p := track.Params
	if p.Delay != 32 || p.Padding != 28 || p.NFrames != 128 {
		t.Errorf("delay %d padding %d frames %d, want 32, 28, 128", p.Delay, p.Padding, p.NFrames)
	}

	want := []packetTiming{{0, 0}, {0, 32}, {32, 32}, {64, 32}, {96, 32}}
	if got := timings(readAll(t, r)); !slices.Equal(got, want) {
		t.Errorf("packet timings = %v, want %v", got, want)
	}
}

func TestReader_Gapless(t *testing.T) {
	t.Parallel()

	r := newTestReader(t, delayedFile(), media.FormatOptions{EnableGapless: true})
	track, _ := r.DefaultTrack()

	if got := track.Params.NFrames; got != 68 {
		t.Errorf("NFrames = %d, want 68", got)
	}

	pkts := readAll(t, r)

	want := []packetTiming{{0, 0}, {0, 0}, {0, 32}, {32, 32}, {64, 4}}
	if got := timings(pkts); !slices.Equal(got, want) {
		t.Errorf("packet timings = %v, want %v", got, want)
	}

	if pkts[1].TrimStart != 32 {
		t.Errorf("packet 1 TrimStart = %d, want 32", pkts[1].TrimStart)
	}
	if pkts[4].TrimEnd != 28 {
		t.Errorf("packet 4 TrimEnd = %d, want 28", pkts[4].TrimEnd)
	}
}

func TestReader_Opus(t *testing.T) {
	t.Parallel()

	w := audiotest.NewOggWriter(9)
	w.WritePage(0, audiotest.PageFirst, opusHead(2, 312, 48000))
	w.WritePage(0, 0, opusTags("libopus", "TITLE=o"))
	w.WritePage(2880, audiotest.PageLast, []byte{0xf8, 1}, []byte{0xf8, 2}, []byte{0xf8, 3})

	r := newTestReader(t, w.Bytes(), media.FormatOptions{EnableGapless: true})

	track, _ := r.DefaultTrack()
	if p := track.Params; p.Codec != media.CodecOpus || p.Delay != 312 || p.NFrames != 2568 {
		t.Errorf("Params = %v delay %d frames %d, want opus delay 312 frames 2568", p, p.Delay, p.NFrames)
	}

	want := []packetTiming{{0, 648}, {648, 960}, {1608, 960}}
	if got := timings(readAll(t, r)); !slices.Equal(got, want) {
		t.Errorf("packet timings = %v, want %v", got, want)
	}
}

func TestReader_FLAC(t *testing.T) {
	t.Parallel()

	comment := append([]byte{0x84, 0, 0, 0}, audiotest.CommentBlock(nil, "reference libFLAC")...)
	frame := []byte{0xff, 0xf8, 0x89, 0x08, 0x00, 0xaa}

	w := audiotest.NewOggWriter(4)
	w.WritePage(0, audiotest.PageFirst, flacHead(44100, 1, 16, 512, 1))
	w.WritePage(0, 0, comment)
	w.WritePage(512, audiotest.PageLast, frame, frame)

	r := newTestReader(t, w.Bytes(), media.FormatOptions{})

	track, _ := r.DefaultTrack()
	if p := track.Params; p.Codec != media.CodecFLAC || p.NFrames != 512 {
		t.Errorf("Params = %v frames %d, want flac frames 512", p, p.NFrames)
	}

	if rev, ok := r.Metadata().Current(); !ok || rev.Vendor != "reference libFLAC" {
		t.Errorf("Metadata().Current() = %+v, %v", rev, ok)
	}

	want := []packetTiming{{0, 256}, {256, 256}}
	if got := timings(readAll(t, r)); !slices.Equal(got, want) {
		t.Errorf("packet timings = %v, want %v", got, want)
	}
}

func TestReader_Multiplexed(t *testing.T) {
	t.Parallel()

	a := audiotest.NewOggWriter(1)
	b := audiotest.NewOggWriter(2)

	// Both first pages lead, as the format requires.
	a.WritePage(0, audiotest.PageFirst, testStream.IdentPacket())
	b.WritePage(0, audiotest.PageFirst, []byte("\x80theora"))
	a.WritePage(0, 0, testStream.CommentPacket("a"))
	a.WritePage(0, 0, testStream.SetupPacket())
	b.WritePage(0, 0, []byte{1, 2, 3})
	a.WritePage(64, audiotest.PageLast, shortPackets(3)...)

	// Interleave page by page.
	var data []byte
	for _, pair := range [][2]int{{0, 0}, {1, 1}, {2, -1}, {3, -1}} {
		pa := readPageBytes(a.Bytes(), pair[0])
		data = append(data, pa...)
		if pair[1] >= 0 {
			data = append(data, readPageBytes(b.Bytes(), pair[1])...)
		}
	}

	r := newTestReader(t, data, media.FormatOptions{})

	tracks := r.Tracks()
	if len(tracks) != 2 || tracks[0].ID != 1 || tracks[1].ID != 2 {
		t.Fatalf("Tracks() = %+v, want serials 1 and 2", tracks)
	}
	if tracks[1].Params.Codec != media.CodecNull {
		t.Errorf("track 2 codec = %v, want null", tracks[1].Params.Codec)
	}

	def, _ := r.DefaultTrack()
	if def.ID != 1 {
		t.Errorf("DefaultTrack() = %d, want 1", def.ID)
	}

	pkts := readAll(t, r)
	if len(pkts) != 3 {
		t.Fatalf("read %d packets, want 3", len(pkts))
	}
	for _, p := range pkts {
		if p.TrackID != 1 {
			t.Errorf("TrackID = %d, want 1", p.TrackID)
		}
	}
}

// readPageBytes returns the raw bytes of page i in data.
func readPageBytes(data []byte, i int) []byte {
	start := 0
	for range i {
		start += bytes.Index(data[start+1:], []byte("OggS")) + 1
	}
	end := len(data)
	if next := bytes.Index(data[start+1:], []byte("OggS")); next >= 0 {
		end = start + 1 + next
	}
	return data[start:end]
}

func TestReader_Chained(t *testing.T) {
	t.Parallel()

	first := testStream.OggFile(1, testLongs, 2)
	second := testStream.OggFile(2, []bool{true, true, true}, 3)

	r := newTestReader(t, append(slices.Clone(first), second...), media.FormatOptions{})

	if track, _ := r.DefaultTrack(); track.Params.NFrames != 352 {
		t.Errorf("first stream NFrames = %d, want 352", track.Params.NFrames)
	}

	pkts := readAll(t, r)
	if len(pkts) != len(testLongs)+3 {
		t.Fatalf("read %d packets, want %d", len(pkts), len(testLongs)+3)
	}
	if pkts[0].TrackID != 1 || pkts[len(pkts)-1].TrackID != 2 {
		t.Errorf("track IDs %d..%d, want 1..2", pkts[0].TrackID, pkts[len(pkts)-1].TrackID)
	}

	tracks := r.Tracks()
	if len(tracks) != 1 || tracks[0].ID != 2 || tracks[0].Params.NFrames != 256 {
		t.Errorf("Tracks() after the chain = %+v, want serial 2 with 256 frames", tracks)
	}
	if r.Metadata().Len() != 2 {
		t.Errorf("Metadata().Len() = %d, want 2", r.Metadata().Len())
	}
}
