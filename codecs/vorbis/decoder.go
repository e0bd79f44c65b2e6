// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"github.com/ik5/audmux/audio"
	"github.com/ik5/audmux/internal/bits"
	"github.com/ik5/audmux/media"
)

// Decoder decodes the audio packets of one Vorbis stream. It implements
// media.PacketDecoder.
type Decoder struct {
	params media.CodecParameters
	ident  IdentHeader
	setup  *setup
	lap    *lapping

	channels []channel
	chMap    []int
	set      []*channel

	buf *audio.AudioBuffer[float32]

	// hasPrev is false until a block is available to overlap with.
	hasPrev       bool
	prevBlockFlag bool
}

var _ media.PacketDecoder = (*Decoder)(nil)

// NewDecoder builds a decoder from codec parameters whose ExtraData holds
// the identification packet followed by the setup packet.
func NewDecoder(params media.CodecParameters, _ media.DecoderOptions) (*Decoder, error) {
	if params.Codec != media.CodecVorbis {
		return nil, media.UnsupportedError("vorbis: codec is " + params.Codec.String())
	}

	if len(params.ExtraData) < identHeaderLen {
		return nil, wrapErr(ErrInvalidHeader, "missing identification packet")
	}

	ident, err := ReadIdentHeader(params.ExtraData[:identHeaderLen])
	if err != nil {
		return nil, err
	}
	if int(ident.Channels) >= len(channelMaps) {
		return nil, wrapErr(ErrTooManyChannels, "%d channels", ident.Channels)
	}

	s, err := readSetup(params.ExtraData[identHeaderLen:], ident)
	if err != nil {
		return nil, err
	}

	d := &Decoder{
		params:   params,
		ident:    ident,
		setup:    s,
		lap:      newLapping(ident),
		channels: make([]channel, ident.Channels),
		chMap:    channelMap(int(ident.Channels)),
	}

	for i := range d.channels {
		d.channels[i] = newChannel(d.lap.bs1)
	}

	spec := audio.SignalSpec{Rate: ident.SampleRate, Channels: Channels(int(ident.Channels))}
	d.buf = audio.NewAudioBuffer[float32](uint64(d.lap.bs1), spec)

	return d, nil
}

func (d *Decoder) CodecParams() media.CodecParameters {
	return d.params
}

func (d *Decoder) LastDecoded() *audio.AudioBuffer[float32] {
	return d.buf
}

// Reset drops the overlap state. The next packet produces no audio.
func (d *Decoder) Reset() {
	d.hasPrev = false
	d.buf.Clear()
}

// Decode decodes one audio packet. On error the returned buffer is empty and
// the overlap state is left as it was.
func (d *Decoder) Decode(pkt *media.Packet) (*audio.AudioBuffer[float32], error) {
	d.buf.Clear()

	if err := d.decode(pkt); err != nil {
		d.buf.Clear()
		return d.buf, err
	}

	return d.buf, nil
}

func (d *Decoder) decode(pkt *media.Packet) error {
	bs := bits.NewReaderRtl(pkt.Data)

	if header, err := bs.ReadBool(); err != nil {
		return wrapErr(ErrInvalidPacket, "empty packet")
	} else if header {
		return wrapErr(ErrInvalidPacket, "not an audio packet")
	}

	modes := d.setup.modes
	modeNum, err := bs.ReadBitsLeq32(ilog(uint32(len(modes) - 1)))
	if err != nil {
		return wrapErr(ErrInvalidPacket, "truncated mode number")
	}
	if int(modeNum) >= len(modes) {
		return wrapErr(ErrInvalidPacket, "mode %d of %d", modeNum, len(modes))
	}

	mode := modes[modeNum]
	m := d.setup.mappings[mode.Mapping]

	n := d.lap.bs0
	if mode.BlockFlag {
		n = d.lap.bs1

		// Window shape flags; the shape follows from the block sizes alone.
		if err := bs.IgnoreBits(2); err != nil {
			return wrapErr(ErrInvalidPacket, "truncated window flags")
		}
	}
	half := n / 2

	if err := d.readFloors(bs, m, half); err != nil {
		return err
	}

	for _, c := range m.couplings {
		mag, ang := &d.channels[c.magnitude], &d.channels[c.angle]
		if mag.doNotDecode != ang.doNotDecode {
			mag.doNotDecode = false
			ang.doNotDecode = false
		}
	}

	if err := d.readResidues(bs, m, n); err != nil {
		return err
	}

	d.inverseCoupling(m, half)

	for i := range d.channels {
		ch := &d.channels[i]
		if ch.doNotDecode {
			clear(ch.floor[:half])
			continue
		}
		for j, r := range ch.residue[:half] {
			ch.floor[j] *= r
		}
	}

	if d.hasPrev {
		prev := d.lap.bs0
		if d.prevBlockFlag {
			prev = d.lap.bs1
		}
		if err := d.buf.RenderReserve(frames(prev, n)); err != nil {
			return err
		}
	}

	for i := range d.channels {
		var out []float32
		if d.hasPrev {
			out = d.buf.ChanMut(d.chMap[i])
		}
		d.channels[i].synth(d.lap, d.prevBlockFlag, mode.BlockFlag, out)
	}

	d.buf.Trim(int(pkt.TrimStart), int(pkt.TrimEnd))

	d.hasPrev = true
	d.prevBlockFlag = mode.BlockFlag

	return nil
}

func (d *Decoder) readFloors(bs *bits.ReaderRtl, m *mapping, half int) error {
	for i := range d.channels {
		ch := &d.channels[i]
		fl := d.setup.floors[m.submaps[m.multiplex[i]].floor]

		used, err := fl.readChannel(bs, d.setup.codebooks)
		if err != nil {
			return err
		}

		ch.doNotDecode = !used
		if !used {
			clear(ch.floor[:half])
			continue
		}

		if err := fl.synthesis(ch.floor[:half]); err != nil {
			return err
		}
	}

	return nil
}

func (d *Decoder) readResidues(bs *bits.ReaderRtl, m *mapping, n int) error {
	for i, sm := range m.submaps {
		d.set = d.set[:0]
		for ch, mux := range m.multiplex {
			if int(mux) == i {
				d.set = append(d.set, &d.channels[ch])
			}
		}

		if err := d.setup.residues[sm.residue].decode(bs, d.setup.codebooks, n, d.set); err != nil {
			return err
		}
	}

	return nil
}

// inverseCoupling undoes the coupling steps of m in order. The lower
// channel index of each pair holds the magnitude.
func (d *Decoder) inverseCoupling(m *mapping, half int) {
	for _, c := range m.couplings {
		mag, ang := min(c.magnitude, c.angle), max(c.magnitude, c.angle)
		decouple(d.channels[mag].residue[:half], d.channels[ang].residue[:half])
	}
}

// decouple turns magnitude and angle vectors back into two channels.
func decouple(mag, ang []float32) {
	for i, m := range mag {
		a := ang[i]

		switch {
		case m > 0 && a > 0:
			ang[i] = m - a
		case m > 0:
			mag[i], ang[i] = m+a, m
		case a > 0:
			ang[i] = m + a
		default:
			mag[i], ang[i] = m-a, m
		}
	}
}
