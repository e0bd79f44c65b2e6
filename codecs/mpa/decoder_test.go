// SPDX-License-Identifier: EPL-2.0

package mpa

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/ik5/audmux/internal/audiotest"
	"github.com/ik5/audmux/media"
)

// longChannel is a long block channel whose scale factors are 1 bit each
// (scalefac_compress 5) and whose main data is part23 bits.
func longChannel(part23 uint32) sideChannel {
	return sideChannel{part23: part23, compress: 5}
}

// mainData packs the scale factors of each granule channel, padded with
// zeros to its part23 bits.
type mainData struct {
	w audiotest.MSBWriter
}

func (m *mainData) channel(part23 int, sfs ...uint32) {
	start := m.w.Len()
	for _, v := range sfs {
		m.w.WriteBits(v, 1)
	}
	for m.w.Len() < start+part23 {
		m.w.WriteBits(0, 1)
	}
}

func ones(n int) []uint32 {
	out := make([]uint32, n)
	for i := range out {
		out[i] = 1
	}
	return out
}

func alternating(n int) []uint32 {
	out := make([]uint32, n)
	for i := range out {
		out[i] = uint32(i % 2)
	}
	return out
}

// buildFrame returns a 417 byte MPEG-1 Layer 3 frame with the given side
// information and main data.
func buildFrame(t *testing.T, word uint32, begin uint32, scfsi [2][4]bool, chans [2][2]sideChannel, main []byte) []byte {
	t.Helper()

	h := mustHeader(t, word)

	var side audiotest.MSBWriter
	writeSideInfo(&side, h, begin, scfsi, chans)

	var body []byte
	if h.HasCRC {
		body = append(body, 0, 0)
	}
	body = append(body, side.Bytes()...)
	body = append(body, main...)

	return audiotest.MpegFrame(word, HeaderLen+h.FrameSize, body)
}

func newTestDecoder(t *testing.T, opts media.DecoderOptions) *Decoder {
	t.Helper()

	d, err := NewDecoder(media.CodecParameters{Codec: media.CodecMP3}, opts)
	if err != nil {
		t.Fatalf("NewDecoder() error = %v", err)
	}
	return d
}

func TestDecoder_ReadFrame(t *testing.T) {
	t.Parallel()

	chans := [2][2]sideChannel{
		{longChannel(40), longChannel(40)},
		{longChannel(40), longChannel(40)},
	}
	scfsi := [2][4]bool{{true, true, false, false}}

	var md mainData
	md.channel(40, ones(21)...)
	md.channel(40, alternating(21)...)
	// Bands 0 to 10 come from granule 0.
	md.channel(40, ones(10)...)
	md.channel(40, alternating(21)...)

	frame := buildFrame(t, audiotest.MP3JointStereo, 0, scfsi, chans, md.w.Bytes())

	d := newTestDecoder(t, media.DecoderOptions{})

	h, fd, err := d.ReadFrame(frame)
	if err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}
	if h.FrameSize != 413 {
		t.Errorf("ReadFrame() FrameSize = %d, want 413", h.FrameSize)
	}

	for gr := range 2 {
		for band := range 21 {
			if got := fd.Granules[gr].Channels[0].ScaleFactors[band]; got != 1 {
				t.Errorf("Granules[%d].Channels[0].ScaleFactors[%d] = %d, want 1", gr, band, got)
			}
			if got, want := fd.Granules[gr].Channels[1].ScaleFactors[band], uint8(band%2); got != want {
				t.Errorf("Granules[%d].Channels[1].ScaleFactors[%d] = %d, want %d", gr, band, got, want)
			}
		}
	}

	// Four channels of 40 bits were used.
	if got, want := len(d.reservoir.Bytes()), 413-32-20; got != want {
		t.Errorf("unread reservoir bytes = %d, want %d", got, want)
	}
}

func TestDecoder_ShortBlockScaleFactors(t *testing.T) {
	t.Parallel()

	// scalefac_compress 14 codes the first partition with 4 bits and the
	// second with 2.
	short := sideChannel{part23: 200, compress: 14, switched: true, blockType: 0b10}
	mixed := sideChannel{part23: 200, compress: 14, switched: true, blockType: 0b10, mixed: true}
	chans := [2][2]sideChannel{{short, mixed}}

	var w audiotest.MSBWriter
	for i := range 18 {
		w.WriteBits(uint32(i%16), 4)
	}
	for range 18 {
		w.WriteBits(3, 2)
	}
	for w.Len() < 200 {
		w.WriteBits(0, 1)
	}
	for range 17 {
		w.WriteBits(9, 4)
	}
	for range 18 {
		w.WriteBits(2, 2)
	}

	frame := buildFrame(t, audiotest.MP3JointStereo, 0, [2][4]bool{}, chans, w.Bytes())

	d := newTestDecoder(t, media.DecoderOptions{})

	_, fd, err := d.ReadFrame(frame)
	if err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}

	sf := fd.Granules[0].Channels[0].ScaleFactors
	for i := range 18 {
		if got, want := sf[i], uint8(i%16); got != want {
			t.Errorf("short ScaleFactors[%d] = %d, want %d", i, got, want)
		}
	}
	for i := 18; i < 36; i++ {
		if sf[i] != 3 {
			t.Errorf("short ScaleFactors[%d] = %d, want 3", i, sf[i])
		}
	}

	sf = fd.Granules[0].Channels[1].ScaleFactors
	for i := range 17 {
		if sf[i] != 9 {
			t.Errorf("mixed ScaleFactors[%d] = %d, want 9", i, sf[i])
		}
	}
	for i := 17; i < 35; i++ {
		if sf[i] != 2 {
			t.Errorf("mixed ScaleFactors[%d] = %d, want 2", i, sf[i])
		}
	}
	if sf[35] != 0 {
		t.Errorf("mixed ScaleFactors[35] = %d, want 0", sf[35])
	}
}

func TestDecoder_Underflow(t *testing.T) {
	t.Parallel()

	// The frame starts its main data 10 bytes back, which a fresh decoder
	// never saw. Granule 0 used exactly those 80 bits, so granule 1 starts
	// at the first byte of this frame's main data.
	chans := [2][2]sideChannel{
		{longChannel(40), longChannel(40)},
		{longChannel(40), longChannel(40)},
	}

	var md mainData
	md.channel(40, ones(21)...)
	md.channel(40, alternating(21)...)

	frame := buildFrame(t, audiotest.MP3JointStereo, 10, [2][4]bool{}, chans, md.w.Bytes())

	d := newTestDecoder(t, media.DecoderOptions{})

	_, fd, err := d.ReadFrame(frame)
	if err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}

	for band := range 21 {
		if got := fd.Granules[0].Channels[0].ScaleFactors[band]; got != 0 {
			t.Errorf("skipped granule ScaleFactors[%d] = %d, want 0", band, got)
		}
		if got := fd.Granules[1].Channels[0].ScaleFactors[band]; got != 1 {
			t.Errorf("Granules[1].Channels[0].ScaleFactors[%d] = %d, want 1", band, got)
		}
	}
}

func TestDecoder_Reservoir(t *testing.T) {
	t.Parallel()

	chans := [2][2]sideChannel{
		{longChannel(40), longChannel(40)},
		{longChannel(40), longChannel(40)},
	}

	var first mainData
	for range 4 {
		first.channel(40)
	}
	// The tail of the first frame carries the start of the second frame's
	// main data.
	tail := make([]byte, 413-32)
	copy(tail, first.w.Bytes())
	var carried audiotest.MSBWriter
	for range 21 {
		carried.WriteBits(1, 1)
	}
	copy(tail[len(tail)-3:], carried.Bytes())

	d := newTestDecoder(t, media.DecoderOptions{})

	if _, _, err := d.ReadFrame(buildFrame(t, audiotest.MP3JointStereo, 0, [2][4]bool{}, chans, tail)); err != nil {
		t.Fatalf("ReadFrame(first) error = %v", err)
	}

	_, fd, err := d.ReadFrame(buildFrame(t, audiotest.MP3JointStereo, 3, [2][4]bool{}, chans, nil))
	if err != nil {
		t.Fatalf("ReadFrame(second) error = %v", err)
	}

	for band := range 21 {
		if got := fd.Granules[0].Channels[0].ScaleFactors[band]; got != 1 {
			t.Errorf("ScaleFactors[%d] = %d, want 1", band, got)
		}
	}
}

func TestDecoder_CRC(t *testing.T) {
	t.Parallel()

	const word = 0xfffa9064

	var chans [2][2]sideChannel
	frame := buildFrame(t, word, 0, [2][4]bool{}, chans, nil)

	crc := frameCRC(frame[2:4], frame[6:6+32])
	binary.BigEndian.PutUint16(frame[4:], crc)

	verify := newTestDecoder(t, media.DecoderOptions{Verify: true})
	if _, _, err := verify.ReadFrame(frame); err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}

	binary.BigEndian.PutUint16(frame[4:], crc^0x1)

	if _, _, err := verify.ReadFrame(frame); !errors.Is(err, ErrCRCMismatch) {
		t.Errorf("ReadFrame(bad crc) error = %v, want %v", err, ErrCRCMismatch)
	}

	lax := newTestDecoder(t, media.DecoderOptions{})
	if _, _, err := lax.ReadFrame(frame); err != nil {
		t.Errorf("ReadFrame(bad crc) without Verify error = %v, want nil", err)
	}
}

func TestDecoder_Decode(t *testing.T) {
	t.Parallel()

	d := newTestDecoder(t, media.DecoderOptions{})

	frame := audiotest.MpegFrame(audiotest.MP3JointStereo, audiotest.MP3FrameLen, nil)
	buf, err := d.Decode(&media.Packet{Data: frame})
	if !errors.Is(err, ErrHuffman) || !errors.Is(err, media.ErrUnsupported) {
		t.Errorf("Decode() error = %v, want %v", err, ErrHuffman)
	}
	if buf.Frames() != 0 {
		t.Errorf("Decode().Frames() = %d, want 0", buf.Frames())
	}
	if got := d.LastDecoded().Spec().Rate; got != 44100 {
		t.Errorf("LastDecoded().Spec().Rate = %d, want 44100", got)
	}

	d.Reset()
	if got := len(d.reservoir.Bytes()); got != 0 {
		t.Errorf("reservoir after Reset() holds %d bytes, want 0", got)
	}
}

func TestDecoder_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		first []byte
		frame []byte
		want  error
	}{
		{
			name:  "short frame",
			frame: audiotest.MpegFrame(audiotest.MP3JointStereo, 400, nil),
			want:  ErrInvalidFrame,
		},
		{
			name:  "truncated header",
			frame: []byte{0xff, 0xfb},
			want:  ErrInvalidFrame,
		},
		{
			name:  "layer 2",
			frame: audiotest.MpegFrame(0xfffdb460, 672, nil),
			want:  ErrLayer,
		},
		{
			name:  "mpeg-2",
			frame: audiotest.MpegFrame(0xfff380c0, 208, nil),
			want:  ErrMpeg2,
		},
		{
			name:  "signal change",
			first: audiotest.MpegFrame(audiotest.MP3Mono, audiotest.MP3FrameLen, nil),
			frame: audiotest.MpegFrame(audiotest.MP3JointStereo, audiotest.MP3FrameLen, nil),
			want:  ErrInvalidFrame,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d := newTestDecoder(t, media.DecoderOptions{})

			if tt.first != nil {
				if _, _, err := d.ReadFrame(tt.first); err != nil {
					t.Fatalf("ReadFrame(first) error = %v", err)
				}
			}

			if _, _, err := d.ReadFrame(tt.frame); !errors.Is(err, tt.want) {
				t.Errorf("ReadFrame() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNewDecoder_Codec(t *testing.T) {
	t.Parallel()

	if _, err := NewDecoder(media.CodecParameters{Codec: media.CodecVorbis}, media.DecoderOptions{}); !errors.Is(err, media.ErrUnsupported) {
		t.Errorf("NewDecoder(vorbis) error = %v, want %v", err, media.ErrUnsupported)
	}
}

func BenchmarkDecoder_ReadFrame(b *testing.B) {
	d, err := NewDecoder(media.CodecParameters{Codec: media.CodecMP3}, media.DecoderOptions{})
	if err != nil {
		b.Fatal(err)
	}

	frame := audiotest.MpegFrame(audiotest.MP3JointStereo, audiotest.MP3FrameLen, nil)

	for b.Loop() {
		if _, _, err := d.ReadFrame(frame); err != nil {
			b.Fatal(err)
		}
	}
}
