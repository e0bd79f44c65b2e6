// SPDX-License-Identifier: EPL-2.0

// Package wav writes decoded audio as 16-bit PCM WAV files.
//
// Write drains an audio.Source into a seekable destination through the
// github.com/go-audio/wav encoder:
//
//	f, _ := os.Create("out.wav")
//	defer f.Close()
//	frames, err := wav.Write(f, src)
//
// When the destination is a pipe, collect the samples first and write them
// with a header that already carries the final sizes:
//
//	pcm, err := wav.ReadAll16(src)
//	if err != nil {
//	    // Handle error
//	}
//	err = wav.WritePCM16(os.Stdout, src.SampleRate(), src.Channels(), pcm)
//
// Samples are clipped to [-1, 1] and scaled by 32767.
package wav
