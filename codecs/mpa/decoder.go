// SPDX-License-Identifier: EPL-2.0

package mpa

import (
	"errors"

	"github.com/mewkiz/pkg/hashutil/crc16"

	"github.com/ik5/audmux/audio"
	"github.com/ik5/audmux/internal/bits"
	"github.com/ik5/audmux/media"
	"github.com/ik5/audmux/stream"
)

// maxFrameDuration is the number of frames of audio in a Layer 2 or MPEG-1
// Layer 3 frame.
const maxFrameDuration = 1152

// Decoder parses MPEG audio frames. Layer 3 frames are read through their
// side information, bit reservoir and scale factors; Decode then reports
// ErrHuffman because the spectral samples are not decoded.
type Decoder struct {
	params media.CodecParameters
	opts   media.DecoderOptions

	buf       *audio.AudioBuffer[float32]
	reservoir bitReservoir
	frame     FrameData
}

var _ media.PacketDecoder = (*Decoder)(nil)

func NewDecoder(params media.CodecParameters, opts media.DecoderOptions) (*Decoder, error) {
	switch params.Codec {
	case media.CodecMP1, media.CodecMP2, media.CodecMP3:
	default:
		return nil, media.UnsupportedError("mpa: codec is " + params.Codec.String())
	}

	return &Decoder{
		params: params,
		opts:   opts,
		buf:    audio.UnusedAudioBuffer[float32](),
	}, nil
}

func (d *Decoder) CodecParams() media.CodecParameters {
	return d.params
}

func (d *Decoder) LastDecoded() *audio.AudioBuffer[float32] {
	return d.buf
}

// Reset empties the bit reservoir.
func (d *Decoder) Reset() {
	d.reservoir.Clear()
	d.buf.Clear()
}

// Decode parses the frame in pkt. The returned buffer is always empty.
func (d *Decoder) Decode(pkt *media.Packet) (*audio.AudioBuffer[float32], error) {
	d.buf.Clear()

	h, _, err := d.ReadFrame(pkt.Data)
	if err != nil {
		return d.buf, err
	}

	return d.buf, wrapErr(ErrHuffman, "%s %s", h.Version, h.Layer)
}

// ReadFrame parses one frame, header word included, up to its scale
// factors. The returned FrameData is reused by the next call.
func (d *Decoder) ReadFrame(data []byte) (FrameHeader, *FrameData, error) {
	r := stream.NewBufReader(data)

	h, err := ReadFrameHeader(r)
	if err != nil {
		if !errors.Is(err, media.ErrDecode) && !errors.Is(err, media.ErrUnsupported) {
			err = wrapErr(ErrInvalidFrame, "truncated header")
		}
		return FrameHeader{}, nil, err
	}

	if avail := int(r.BytesAvailable()); h.FrameSize != avail {
		return h, nil, wrapErr(ErrInvalidFrame, "frame size %d, packet holds %d", h.FrameSize, avail)
	}

	if err := d.checkSpec(h); err != nil {
		return h, nil, err
	}

	if h.Layer != Layer3 {
		return h, nil, ErrLayer
	}

	var crc uint16
	if h.HasCRC {
		if crc, err = stream.ReadU16BE(r); err != nil {
			return h, nil, wrapErr(ErrInvalidFrame, "truncated crc")
		}
	}

	body := r.ReadBufBytesAvailable()
	if len(body) < h.SideInfoLen() {
		return h, nil, wrapErr(ErrInvalidFrame, "side information needs %d bytes, have %d", h.SideInfoLen(), len(body))
	}

	if h.HasCRC && d.opts.Verify {
		if got := frameCRC(data[2:HeaderLen], body[:h.SideInfoLen()]); got != crc {
			return h, nil, wrapErr(ErrCRCMismatch, "got %#04x, want %#04x", got, crc)
		}
	}

	if err := d.readLayer3(h, body); err != nil {
		d.reservoir.Clear()
		return h, nil, err
	}

	return h, &d.frame, nil
}

func (d *Decoder) checkSpec(h FrameHeader) error {
	if d.buf.IsUnused() {
		d.buf = audio.NewAudioBuffer[float32](maxFrameDuration, h.Spec())
		return nil
	}

	if d.buf.Spec() != h.Spec() {
		return wrapErr(ErrInvalidFrame, "signal changed from %v to %v", d.buf.Spec(), h.Spec())
	}

	return nil
}

func (d *Decoder) readLayer3(h FrameHeader, body []byte) error {
	d.frame = FrameData{}

	n, err := readSideInfo(bits.NewReaderLtr(body), h, &d.frame)
	if err != nil {
		return bitError(err, "side information")
	}

	underflow, err := d.reservoir.Fill(body[n:], d.frame.MainDataBegin)
	if err != nil {
		return err
	}

	used, err := d.readMainData(h, 8*underflow)
	if err != nil {
		return err
	}

	d.reservoir.Consume(used)

	return nil
}

// readMainData reads the scale factors of every granule channel whose main
// data is in the reservoir and returns the number of main data bytes used.
// Granules in the first underflowBits bits of main data are skipped.
func (d *Decoder) readMainData(h FrameHeader, underflowBits uint32) (int, error) {
	mainData := d.reservoir.Bytes()

	var begin, skipped uint32

	for gr := range h.Granules() {
		if skipped < underflowBits {
			for ch := range h.Channels() {
				skipped += uint32(d.frame.Granules[gr].Channels[ch].Part23Length)
			}
			if skipped > underflowBits {
				begin = skipped - underflowBits
			}
			continue
		}

		for ch := range h.Channels() {
			gc := &d.frame.Granules[gr].Channels[ch]

			idx := int(begin >> 3)
			if idx > len(mainData) {
				return 0, wrapErr(ErrInvalidFrame, "main data starts at byte %d of %d", idx, len(mainData))
			}

			bs := bits.NewReaderLtr(mainData[idx:])
			if bit := begin & 0x7; bit > 0 {
				if err := bs.IgnoreBits(bit); err != nil {
					return 0, bitError(err, "main data")
				}
			}

			if h.Version != Mpeg1 {
				return 0, ErrMpeg2
			}

			part2, err := readScaleFactorsMpeg1(bs, gr, ch, &d.frame)
			if err != nil {
				return 0, bitError(err, "scale factors")
			}

			if part2 > uint32(gc.Part23Length) {
				return 0, wrapErr(ErrInvalidFrame, "scale factors use %d of %d bits", part2, gc.Part23Length)
			}

			begin += uint32(gc.Part23Length)
		}
	}

	return int((begin + 7) >> 3), nil
}

// frameCRC is the CRC-16 of the last two header bytes and the side
// information, starting from all ones.
func frameCRC(header, sideInfo []byte) uint16 {
	crc := crc16.Update(0xffff, crc16.IBMTable, header)
	return crc16.Update(crc, crc16.IBMTable, sideInfo)
}

func bitError(err error, what string) error {
	if bits.IsEndOfStream(err) {
		return wrapErr(ErrInvalidFrame, "truncated %s", what)
	}
	return err
}
