// SPDX-License-Identifier: EPL-2.0

package audmux

import (
	"bytes"
	"errors"
	"slices"
	"testing"

	"github.com/ik5/audmux/internal/audiotest"
	"github.com/ik5/audmux/media"
	"github.com/ik5/audmux/stream"
)

var testStream = audiotest.VorbisStream{Channels: 2, SampleRate: 44100, Bs0Exp: 6, Bs1Exp: 8}

func TestNewRegistry(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(media.FormatOptions{})

	want := []string{"mp3", "oga", "ogg", ReferenceFormat}
	if got := reg.Formats(); !slices.Equal(got, want) {
		t.Errorf("Formats() = %v, want %v", got, want)
	}

	for _, path := range []string{"a.OGG", "b.oga", "c.mp3"} {
		if _, ok := reg.ForPath(path); !ok {
			t.Errorf("ForPath(%q) ok = false, want true", path)
		}
	}
	if _, ok := reg.ForPath("d.flac"); ok {
		t.Error(`ForPath("d.flac") ok = true, want false`)
	}
}

func TestFormatForPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want string
	}{
		{"song.ogg", "ogg"},
		{"/music/Track.MP3", "mp3"},
		{"https://example.com/a/stream.opus?token=1#t=3", "opus"},
		{"dir.d/noext", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := FormatForPath(tt.path); got != tt.want {
			t.Errorf("FormatForPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestNewFormatReader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format string
		data   []byte
		codec  media.CodecType
	}{
		{"ogg", testStream.OggFile(7, []bool{false, true, false}, 2), media.CodecVorbis},
		{".oga", testStream.OggFile(7, []bool{false, true, false}, 2), media.CodecVorbis},
		{"mp3", audiotest.MpegStream(audiotest.MP3JointStereo, audiotest.MP3FrameLen, 3), media.CodecMP3},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			t.Parallel()

			r, err := NewFormatReader(tt.format, stream.NewSource(bytes.NewReader(tt.data)), media.FormatOptions{})
			if err != nil {
				t.Fatalf("NewFormatReader() error = %v", err)
			}
			defer r.Close()

			track, ok := r.DefaultTrack()
			if !ok {
				t.Fatal("DefaultTrack() ok = false, want true")
			}
			if track.Params.Codec != tt.codec {
				t.Errorf("Codec = %v, want %v", track.Params.Codec, tt.codec)
			}

			if _, err := NewPacketDecoder(track.Params, media.DecoderOptions{}); err != nil {
				t.Errorf("NewPacketDecoder() error = %v", err)
			}
		})
	}
}

func TestNewFormatReader_Unknown(t *testing.T) {
	t.Parallel()

	_, err := NewFormatReader("flac", stream.NewSource(bytes.NewReader(nil)), media.FormatOptions{})
	if !errors.Is(err, ErrUnknownFormat) || !errors.Is(err, media.ErrUnsupported) {
		t.Errorf("NewFormatReader(flac) error = %v, want %v", err, ErrUnknownFormat)
	}
}

func TestNewPacketDecoder_Unsupported(t *testing.T) {
	t.Parallel()

	for _, codec := range []media.CodecType{media.CodecOpus, media.CodecFLAC, media.CodecNull} {
		dec, err := NewPacketDecoder(media.CodecParameters{Codec: codec}, media.DecoderOptions{})
		if dec != nil || !errors.Is(err, media.ErrUnsupported) {
			t.Errorf("NewPacketDecoder(%v) = %v, %v, want nil, ErrUnsupported", codec, dec, err)
		}
	}

	// A Vorbis track without its headers is a decode error, not a typed nil.
	dec, err := NewPacketDecoder(media.CodecParameters{Codec: media.CodecVorbis}, media.DecoderOptions{})
	if dec != nil || !errors.Is(err, media.ErrDecode) {
		t.Errorf("NewPacketDecoder(vorbis without headers) = %v, %v, want nil, ErrDecode", dec, err)
	}
}
