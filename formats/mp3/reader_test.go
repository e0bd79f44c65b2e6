// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ik5/audmux/internal/audiotest"
	"github.com/ik5/audmux/media"
	"github.com/ik5/audmux/stream"
)

const frameDur = 1152

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
		if errors.Is(err, media.ErrEndOfStream) {
			return pkts
		}
		if err != nil {
			t.Fatalf("NextPacket() error = %v", err)
		}
		pkts = append(pkts, pkt)
	}
}

func lameFile(audioFrames int) []byte {
	data := audiotest.InfoFrame(audiotest.MP3JointStereo, audiotest.MP3FrameLen, audiotest.MP3Mpeg1SideInfo, audiotest.InfoTag{
		Frames: uint32(audioFrames), Encoder: "LAME3.100", Delay: 576, Padding: 1000,
	})
	return append(data, audiotest.MpegStream(audiotest.MP3JointStereo, audiotest.MP3FrameLen, audioFrames)...)
}

func TestReader_Plain(t *testing.T) {
	t.Parallel()

	r := newTestReader(t, audiotest.MpegStream(audiotest.MP3JointStereo, audiotest.MP3FrameLen, 20), media.FormatOptions{})

	track, ok := r.DefaultTrack()
	if !ok {
		t.Fatalf("DefaultTrack() ok = false, want true")
	}

	p := track.Params
	if p.Codec != media.CodecMP3 || p.SampleRate != 44100 || p.Channels.Count() != 2 {
		t.Errorf("Params = %v, want mp3 44100Hz stereo", p)
	}
	if p.NFrames != 20*frameDur {
		t.Errorf("NFrames = %d, want %d", p.NFrames, 20*frameDur)
	}
	if p.MaxFramesPerPacket != frameDur {
		t.Errorf("MaxFramesPerPacket = %d, want %d", p.MaxFramesPerPacket, frameDur)
	}
	if got := len(r.Tracks()); got != 1 {
		t.Errorf("len(Tracks()) = %d, want 1", got)
	}

	pkts := readAll(t, r)
	if len(pkts) != 20 {
		t.Fatalf("got %d packets, want 20", len(pkts))
	}
	for i, pkt := range pkts {
		if pkt.Ts != uint64(i*frameDur) || pkt.Dur != frameDur {
			t.Errorf("packet %d: Ts, Dur = %d, %d, want %d, %d", i, pkt.Ts, pkt.Dur, i*frameDur, frameDur)
		}
		if len(pkt.Data) != audiotest.MP3FrameLen {
			t.Errorf("packet %d: len(Data) = %d, want %d", i, len(pkt.Data), audiotest.MP3FrameLen)
		}
	}

	if r.Metadata().Len() != 0 {
		t.Errorf("Metadata().Len() = %d, want 0", r.Metadata().Len())
	}
}

func TestReader_FalseSync(t *testing.T) {
	t.Parallel()

	// A lone header word whose frame is not followed by another header.
	junk := append([]byte{0xff, 0xfb, 0x90, 0x64}, make([]byte, 100)...)
	data := append(junk, audiotest.MpegStream(audiotest.MP3JointStereo, audiotest.MP3FrameLen, 5)...)

	r := newTestReader(t, data, media.FormatOptions{})

	pkts := readAll(t, r)
	if len(pkts) != 5 {
		t.Fatalf("got %d packets, want 5", len(pkts))
	}

	want := audiotest.MpegFrame(audiotest.MP3JointStereo, audiotest.MP3FrameLen, nil)
	if !bytes.Equal(pkts[0].Data, want) {
		t.Errorf("first packet is not the first real frame")
	}
}

func TestReader_LameTag(t *testing.T) {
	t.Parallel()

	r := newTestReader(t, lameFile(20), media.FormatOptions{})

	p := r.Tracks()[0].Params
	if p.NFrames != 20*frameDur {
		t.Errorf("NFrames = %d, want %d", p.NFrames, 20*frameDur)
	}
	if p.Delay != 1105 || p.Padding != 471 {
		t.Errorf("Delay, Padding = %d, %d, want 1105, 471", p.Delay, p.Padding)
	}

	rev, ok := r.Metadata().Current()
	if !ok {
		t.Fatalf("Metadata().Current() ok = false, want true")
	}
	if tag, ok := rev.Tag(media.TagEncoder); !ok || tag.Value != "LAME3.100" {
		t.Errorf("Tag(TagEncoder) = %+v, %t, want LAME3.100", tag, ok)
	}

	pkts := readAll(t, r)
	if len(pkts) != 20 {
		t.Fatalf("got %d packets, want 20", len(pkts))
	}
	if pkts[0].TrimStart != 0 || pkts[0].Ts != 0 {
		t.Errorf("first packet trimmed without gapless: %+v", pkts[0])
	}
}

func TestReader_Gapless(t *testing.T) {
	t.Parallel()

	r := newTestReader(t, lameFile(20), media.FormatOptions{EnableGapless: true})

	const total = 20*frameDur - 1105 - 471
	if got := r.Tracks()[0].Params.NFrames; got != total {
		t.Errorf("NFrames = %d, want %d", got, total)
	}

	pkts := readAll(t, r)
	if len(pkts) != 20 {
		t.Fatalf("got %d packets, want 20", len(pkts))
	}

	tests := []struct {
		idx                int
		ts, dur            uint64
		trimStart, trimEnd uint32
	}{
		{0, 0, 47, 1105, 0},
		{1, 47, frameDur, 0, 0},
		{19, 19*frameDur - 1105, 681, 0, 471},
	}

	for _, tt := range tests {
		pkt := pkts[tt.idx]
		if pkt.Ts != tt.ts || pkt.Dur != tt.dur || pkt.TrimStart != tt.trimStart || pkt.TrimEnd != tt.trimEnd {
			t.Errorf("packet %d = {Ts:%d Dur:%d TrimStart:%d TrimEnd:%d}, want {%d %d %d %d}",
				tt.idx, pkt.Ts, pkt.Dur, pkt.TrimStart, pkt.TrimEnd, tt.ts, tt.dur, tt.trimStart, tt.trimEnd)
		}
	}

	var sum uint64
	for _, pkt := range pkts {
		sum += pkt.Dur
	}
	if sum != total {
		t.Errorf("sum of Dur = %d, want %d", sum, total)
	}
}

func TestReader_VBRI(t *testing.T) {
	t.Parallel()

	data := audiotest.VBRIFrame(audiotest.MP3JointStereo, audiotest.MP3FrameLen, 50, 20000)
	data = append(data, audiotest.MpegStream(audiotest.MP3JointStereo, audiotest.MP3FrameLen, 3)...)

	r := newTestReader(t, data, media.FormatOptions{})

	if got := r.Tracks()[0].Params.NFrames; got != 50*frameDur {
		t.Errorf("NFrames = %d, want %d", got, 50*frameDur)
	}
	if got := len(readAll(t, r)); got != 3 {
		t.Errorf("got %d packets, want 3", got)
	}
}

func TestReader_SkipsTagFrames(t *testing.T) {
	t.Parallel()

	data := audiotest.MpegStream(audiotest.MP3JointStereo, audiotest.MP3FrameLen, 3)
	data = append(data, audiotest.VBRIFrame(audiotest.MP3JointStereo, audiotest.MP3FrameLen, 50, 20000)...)
	data = append(data, audiotest.MpegStream(audiotest.MP3JointStereo, audiotest.MP3FrameLen, 2)...)

	r := newTestReader(t, data, media.FormatOptions{})

	pkts := readAll(t, r)
	if len(pkts) != 5 {
		t.Fatalf("got %d packets, want 5", len(pkts))
	}
	if got := pkts[4].Ts; got != 4*frameDur {
		t.Errorf("last packet Ts = %d, want %d", got, 4*frameDur)
	}
}

func TestReader_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"zeros", make([]byte, 4096)},
		{"text", []byte("not an mpeg audio stream")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewReader(stream.NewSource(bytes.NewReader(tt.data)), media.FormatOptions{})
			if !errors.Is(err, ErrNoFrames) {
				t.Errorf("NewReader() error = %v, want %v", err, ErrNoFrames)
			}
		})
	}
}

func TestReader_Seek(t *testing.T) {
	t.Parallel()

	r := newTestReader(t, audiotest.MpegStream(audiotest.MP3JointStereo, audiotest.MP3FrameLen, 20), media.FormatOptions{})

	tests := []struct {
		name   string
		to     media.SeekTo
		actual uint64
	}{
		{"inside frame 4", media.SeekToTimestamp(5000, 0), 4 * frameDur},
		{"back to start", media.SeekToTimestamp(0, 0), 0},
		{"by time", media.SeekToTime(media.TimeFromSeconds(0.5)), 19 * frameDur},
		{"frame boundary", media.SeekToTimestamp(2*frameDur, 0), 2 * frameDur},
	}

	for _, tt := range tests {
		got, err := r.Seek(media.SeekAccurate, tt.to)
		if err != nil {
			t.Fatalf("%s: Seek() error = %v", tt.name, err)
		}
		if got.ActualTs != tt.actual {
			t.Errorf("%s: Seek().ActualTs = %d, want %d", tt.name, got.ActualTs, tt.actual)
		}

		pkt, err := r.NextPacket()
		if err != nil {
			t.Fatalf("%s: NextPacket() error = %v", tt.name, err)
		}
		if pkt.Ts != tt.actual {
			t.Errorf("%s: NextPacket().Ts = %d, want %d", tt.name, pkt.Ts, tt.actual)
		}
	}

	if _, err := r.Seek(media.SeekAccurate, media.SeekToTimestamp(20*frameDur, 0)); !errors.Is(err, media.ErrSeekOutOfRange) {
		t.Errorf("Seek(end) error = %v, want %v", err, media.ErrSeekOutOfRange)
	}
	if _, err := r.Seek(media.SeekAccurate, media.SeekToTimestamp(0, 7)); !errors.Is(err, media.ErrSeek) {
		t.Errorf("Seek(track 7) error = %v, want %v", err, media.ErrSeek)
	}
}

func TestReader_SeekGapless(t *testing.T) {
	t.Parallel()

	r := newTestReader(t, lameFile(20), media.FormatOptions{EnableGapless: true})

	got, err := r.Seek(media.SeekAccurate, media.SeekToTimestamp(100, 0))
	if err != nil {
		t.Fatalf("Seek() error = %v", err)
	}
	if got.ActualTs != 47 {
		t.Errorf("Seek().ActualTs = %d, want 47", got.ActualTs)
	}

	pkt, err := r.NextPacket()
	if err != nil {
		t.Fatalf("NextPacket() error = %v", err)
	}
	if pkt.Ts != 47 || pkt.TrimStart != 0 {
		t.Errorf("NextPacket() Ts, TrimStart = %d, %d, want 47, 0", pkt.Ts, pkt.TrimStart)
	}
}

func TestReader_Unseekable(t *testing.T) {
	t.Parallel()

	data := audiotest.MpegStream(audiotest.MP3JointStereo, audiotest.MP3FrameLen, 10)

	r, err := NewReader(stream.NewReadOnlySource(bytes.NewReader(data)), media.FormatOptions{})
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}
	defer r.Close()

	if got := r.Tracks()[0].Params.NFrames; got != 0 {
		t.Errorf("NFrames = %d, want 0", got)
	}

	for range 3 {
		if _, err := r.NextPacket(); err != nil {
			t.Fatalf("NextPacket() error = %v", err)
		}
	}

	if _, err := r.Seek(media.SeekAccurate, media.SeekToTimestamp(0, 0)); !errors.Is(err, media.ErrSeekForwardOnly) {
		t.Errorf("Seek(backwards) error = %v, want %v", err, media.ErrSeekForwardOnly)
	}

	got, err := r.Seek(media.SeekAccurate, media.SeekToTimestamp(5000, 0))
	if err != nil {
		t.Fatalf("Seek() error = %v", err)
	}
	if got.ActualTs != 4*frameDur {
		t.Errorf("Seek().ActualTs = %d, want %d", got.ActualTs, 4*frameDur)
	}

	if _, err := r.Seek(media.SeekAccurate, media.SeekToTimestamp(100*frameDur, 0)); !errors.Is(err, media.ErrSeekOutOfRange) {
		t.Errorf("Seek(past end) error = %v, want %v", err, media.ErrSeekOutOfRange)
	}
}

func BenchmarkReader_NextPacket(b *testing.B) {
	data := audiotest.MpegStream(audiotest.MP3JointStereo, audiotest.MP3FrameLen, 64)

	for b.Loop() {
		r, err := NewReader(stream.NewSource(bytes.NewReader(data)), media.FormatOptions{})
		if err != nil {
			b.Fatal(err)
		}
		for {
			if _, err := r.NextPacket(); err != nil {
				break
			}
		}
	}
}
