// SPDX-License-Identifier: EPL-2.0

// Package audio provides the sample containers shared by the demuxers and
// decoders.
//
// # Planar buffers
//
// AudioBuffer holds decoded audio as one plane per channel. Its capacity is
// fixed at construction; decoders reserve frames with RenderReserve, write
// the planes with ChanMut and hand the buffer out read-only:
//
//	buf := audio.NewAudioBuffer[float32](2048, audio.NewSignalSpecWithLayout(44100, audio.LayoutStereo))
//	buf.RenderReserve(n)
//	copy(buf.ChanMut(0), left)
//
// Trim(start, end) drops start frames from the front and end frames from the
// back, which is how encoder delay and padding are removed for gapless
// playback.
//
// Channels is a bit set of speaker positions; SignalSpec pairs it with a
// sample rate.
//
// # Source Interface
//
// Source is a pull based stream of interleaved float32 samples:
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    BufSize() int
//	    Close() error
//	}
//
// PullSource turns a decode loop that yields AudioBuffers into a Source.
// MonoMixer averages any Source down to one channel and Resampler changes
// its sample rate:
//
//	src = audio.NewMonoMixer(audio.NewResampler(src, 16000))
//
// # Format Registry
//
// The registry maps file extensions to decoders:
//
//	registry := audio.NewRegistry()
//	registry.Register("ogg", vorbis.Decoder{})
//	decoder, ok := registry.ForPath("song.ogg")
//
// # Conversion
//
// Float32Buffer and IntBuffer convert a planar buffer into the interleaved
// go-audio types. Int16Interleaved does the same for interleaved float32
// samples and feeds the go-audio WAV encoder in formats/wav.
//
// # Error Handling
//
// Sources return io.EOF when no more data is available:
//
//	for {
//	    n, err := source.ReadSamples(buf)
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    // Process n samples from buf
//	}
package audio
