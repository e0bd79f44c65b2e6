// SPDX-License-Identifier: EPL-2.0

package vorbis_test

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/ik5/audmux/formats/vorbis"
	"github.com/ik5/audmux/internal/audiotest"
)

// Example decodes a short Ogg Vorbis stream to interleaved float32 samples.
func Example() {
	vs := audiotest.VorbisStream{Channels: 2, SampleRate: 44100, Bs0Exp: 6, Bs1Exp: 8}
	data := vs.OggFile(1, []bool{false, true, true, false}, 2)

	src, err := vorbis.Decoder{}.Decode(bytes.NewReader(data))
	if err != nil {
		log.Fatal(err)
	}
	defer src.Close()

	fmt.Printf("%d Hz, %d channels\n", src.SampleRate(), src.Channels())

	var total int
	buf := make([]float32, 256)
	for {
		n, err := src.ReadSamples(buf)
		total += n
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			log.Fatal(err)
		}
	}
	fmt.Println(total/src.Channels(), "frames")

	// Output:
	// 44100 Hz, 2 channels
	// 288 frames
}

// ExampleDecoder_Decode_errorHandling shows the error for data that is not Ogg.
func ExampleDecoder_Decode_errorHandling() {
	_, err := vorbis.Decoder{}.Decode(bytes.NewReader([]byte("not an ogg file")))
	fmt.Println(err != nil)

	// Output:
	// true
}
