// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"io"
	"slices"
	"sync"
	"testing"

	"github.com/ik5/audmux/internal/audiotest"
)

// mockDecoder is a test decoder implementation
type mockDecoder struct {
	name string
}

func (d *mockDecoder) Decode(r io.Reader) (Source, error) {
	return audiotest.Silence(44100, 2, 100), nil
}

// failingDecoder always returns an error
type failingDecoder struct{}

func (d *failingDecoder) Decode(r io.Reader) (Source, error) {
	return nil, errors.New("decode failed")
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	decoder := &mockDecoder{name: "ogg"}

	registry.Register("ogg", decoder)

	got, ok := registry.Get("ogg")
	if !ok {
		t.Fatal("Registry.Get() failed to retrieve registered decoder")
	}

	if got != decoder {
		t.Error("Registry.Get() returned different decoder instance")
	}
}

func TestRegistry_KeyNormalization(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	decoder := &mockDecoder{name: "mp3"}
	registry.Register(".MP3", decoder)

	tests := []struct {
		format string
		wantOK bool
	}{
		{"mp3", true},
		{".mp3", true},
		{"Mp3", true},
		{"mp", false},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			t.Parallel()

			_, ok := registry.Get(tt.format)
			if ok != tt.wantOK {
				t.Errorf("Registry.Get(%q) ok = %v, want %v", tt.format, ok, tt.wantOK)
			}
		})
	}
}

func TestRegistry_ForPath(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	oggDecoder := &mockDecoder{name: "ogg"}
	mp3Decoder := &mockDecoder{name: "mp3"}

	registry.Register("ogg", oggDecoder)
	registry.Register("oga", oggDecoder)
	registry.Register("mp3", mp3Decoder)

	tests := []struct {
		path   string
		want   Decoder
		wantOK bool
	}{
		{"/music/track.ogg", oggDecoder, true},
		{"voice.OGA", oggDecoder, true},
		{"song.mp3", mp3Decoder, true},
		{"clip.flac", nil, false},
		{"noext", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			got, ok := registry.ForPath(tt.path)
			if ok != tt.wantOK {
				t.Errorf("Registry.ForPath(%q) ok = %v, want %v", tt.path, ok, tt.wantOK)
			}
			if tt.wantOK && got != tt.want {
				t.Errorf("Registry.ForPath(%q) returned wrong decoder", tt.path)
			}
		})
	}
}

func TestRegistry_Overwrite(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	decoder1 := &mockDecoder{name: "first"}
	decoder2 := &failingDecoder{}

	registry.Register("ogg", decoder1)
	registry.Register("ogg", decoder2)

	got, ok := registry.Get("ogg")
	if !ok {
		t.Fatal("Registry.Get() failed after overwrite")
	}

	if _, err := got.Decode(nil); err == nil {
		t.Error("Registry.Get() did not return the overwritten decoder")
	}
}

func TestRegistry_Formats(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	for _, f := range []string{"ogg", "mp3", "OGA"} {
		registry.Register(f, &mockDecoder{name: f})
	}

	want := []string{"mp3", "oga", "ogg"}
	if got := registry.Formats(); !slices.Equal(got, want) {
		t.Errorf("Registry.Formats() = %v, want %v", got, want)
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	decoder := &mockDecoder{name: "test"}

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			registry.Register("format", decoder)
		}()
		go func() {
			defer wg.Done()
			_, _ = registry.Get("format")
		}()
	}
	wg.Wait()

	got, ok := registry.Get("format")
	if !ok || got != decoder {
		t.Error("Registry returned wrong decoder after concurrent operations")
	}
}

// BenchmarkRegistry_Get benchmarks retrieving decoders
func BenchmarkRegistry_Get(b *testing.B) {
	registry := NewRegistry()
	registry.Register("ogg", &mockDecoder{})

	b.ReportAllocs()

	for b.Loop() {
		_, _ = registry.Get("ogg")
	}
}
