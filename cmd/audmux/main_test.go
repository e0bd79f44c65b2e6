// SPDX-License-Identifier: EPL-2.0

package main

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-audio/wav"

	"github.com/ik5/audmux/internal/audiotest"
)

// The command sets up the global logger on every run, so these tests do
// not run in parallel.

var testStream = audiotest.VorbisStream{Channels: 2, SampleRate: 44100, Bs0Exp: 6, Bs1Exp: 8}

func writeFixture(t *testing.T, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func oggFixture(t *testing.T) string {
	t.Helper()
	return writeFixture(t, "test.ogg", testStream.OggFile(0x2a, []bool{false, false, true, true, false, false}, 2))
}

func runCLI(t *testing.T, stdin []byte, args ...string) (code int, stdout, stderr string) {
	t.Helper()

	var out, errOut bytes.Buffer
	args = append([]string{"-env", filepath.Join(t.TempDir(), "none.env"), "-log-level", "warn"}, args...)
	code = run(args, bytes.NewReader(stdin), &out, &errOut)

	return code, out.String(), errOut.String()
}

func TestProbe(t *testing.T) {
	code, out, stderr := runCLI(t, nil, "probe", oggFixture(t))
	if code != 0 {
		t.Fatalf("probe exit code = %d, stderr %q", code, stderr)
	}

	for _, want := range []string{
		"track 42 (default): vorbis 44100Hz FL|FR",
		"frames:    352",
		"TITLE=Synthetic",
		"vendor: audiotest",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("probe output %q does not contain %q", out, want)
		}
	}
}

func TestProbe_MP3(t *testing.T) {
	path := writeFixture(t, "test.mp3", audiotest.MpegStream(audiotest.MP3JointStereo, audiotest.MP3FrameLen, 4))

	code, out, stderr := runCLI(t, nil, "probe", path)
	if code != 0 {
		t.Fatalf("probe exit code = %d, stderr %q", code, stderr)
	}
	if !strings.Contains(out, "mp3 44100Hz FL|FR") {
		t.Errorf("probe output %q does not describe an mp3 track", out)
	}
}

func TestPackets(t *testing.T) {
	code, out, stderr := runCLI(t, nil, "packets", "-decode", "-n", "3", oggFixture(t))
	if code != 0 {
		t.Fatalf("packets exit code = %d, stderr %q", code, stderr)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("packets printed %d lines, want 4:\n%s", len(lines), out)
	}

	want := []string{"0 frames", "32 frames", "80 frames"}
	for i, w := range want {
		if !strings.HasSuffix(lines[i+1], w) {
			t.Errorf("line %d = %q, want suffix %q", i+1, lines[i+1], w)
		}
	}
}

func TestPackets_Seek(t *testing.T) {
	code, out, stderr := runCLI(t, nil, "packets", "-start", "0.003", oggFixture(t))
	if code != 0 {
		t.Fatalf("packets exit code = %d, stderr %q", code, stderr)
	}
	if !strings.HasPrefix(out, "seeked track 42 to ") {
		t.Errorf("packets output %q does not start with the seek result", out)
	}
}

func TestPackets_MP3(t *testing.T) {
	path := writeFixture(t, "test.mp3", audiotest.MpegStream(audiotest.MP3JointStereo, audiotest.MP3FrameLen, 3))

	code, out, stderr := runCLI(t, nil, "packets", "-decode", path)
	if code != 0 {
		t.Fatalf("packets exit code = %d, stderr %q", code, stderr)
	}
	if got := strings.Count(out, "main_data_begin=0 part2_3=0"); got != 3 {
		t.Errorf("packets output has %d parsed frames, want 3:\n%s", got, out)
	}
}

func TestDecode_File(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "out.wav")

	code, _, stderr := runCLI(t, nil, "decode", "-o", outPath, oggFixture(t))
	if code != 0 {
		t.Fatalf("decode exit code = %d, stderr %q", code, stderr)
	}

	f, err := os.Open(outPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("FullPCMBuffer() error = %v", err)
	}
	if dec.SampleRate != 44100 || dec.NumChans != 2 {
		t.Errorf("rate, channels = %d, %d, want 44100, 2", dec.SampleRate, dec.NumChans)
	}
	if got := buf.NumFrames(); got != 352 {
		t.Errorf("NumFrames() = %d, want 352", got)
	}
}

func TestDecode_StdinToStdout(t *testing.T) {
	data := testStream.OggFile(1, []bool{false, true, true, false}, 2)

	code, out, stderr := runCLI(t, data, "decode", "-format", "ogg", "-mono", "-rate", "22050", "-")
	if code != 0 {
		t.Fatalf("decode exit code = %d, stderr %q", code, stderr)
	}

	b := []byte(out)
	if len(b) < 44 || string(b[:4]) != "RIFF" {
		t.Fatalf("decode output is not a WAV file: %q", out)
	}
	if ch := binary.LittleEndian.Uint16(b[22:]); ch != 1 {
		t.Errorf("channels = %d, want 1", ch)
	}
	if rate := binary.LittleEndian.Uint32(b[24:]); rate != 22050 {
		t.Errorf("rate = %d, want 22050", rate)
	}

	// 288 frames at 44.1 kHz become 144 at 22.05 kHz.
	if frames := binary.LittleEndian.Uint32(b[40:]) / 2; frames < 143 || frames > 145 {
		t.Errorf("frames = %d, want about 144", frames)
	}
}

func TestDecode_Reference(t *testing.T) {
	code, out, stderr := runCLI(t, nil, "decode", "-format", "ogg-ref", oggFixture(t))
	if code != 0 {
		t.Fatalf("decode exit code = %d, stderr %q", code, stderr)
	}
	if !strings.HasPrefix(out, "RIFF") {
		t.Errorf("decode output does not start with RIFF")
	}
}

func TestRun_Errors(t *testing.T) {
	flac := writeFixture(t, "a.flac", []byte("fLaC"))
	noExt := writeFixture(t, "noext", []byte("data"))

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"no command", nil, 2},
		{"unknown command", []string{"play", "x.ogg"}, 2},
		{"missing input", []string{"probe"}, 2},
		{"two inputs", []string{"probe", "a.ogg", "b.ogg"}, 2},
		{"bad flag", []string{"decode", "-bogus", "a.ogg"}, 2},
		{"help", []string{"probe", "-h"}, 0},
		{"unknown format", []string{"probe", flac}, 1},
		{"no extension", []string{"decode", noExt}, 1},
		{"missing file", []string{"probe", filepath.Join(t.TempDir(), "missing.ogg")}, 1},
		{"not ogg", []string{"probe", writeFixture(t, "bad.ogg", []byte("not an ogg file"))}, 1},
		{"negative rate", []string{"decode", "-rate", "-1", "a.ogg"}, 1},
	}

	for _, tt := range tests {
		if code, _, _ := runCLI(t, nil, tt.args...); code != tt.want {
			t.Errorf("%s: exit code = %d, want %d", tt.name, code, tt.want)
		}
	}
}
