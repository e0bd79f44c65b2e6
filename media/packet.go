// SPDX-License-Identifier: EPL-2.0

package media

// Packet is a discrete unit of encoded data for one track.
type Packet struct {
	TrackID uint32

	// Ts is the timestamp in TimeBase units. With gapless playback enabled
	// it is relative to the end of the encoder delay.
	Ts  uint64
	// Dur is the duration in TimeBase units, excluding trimmed frames.
	Dur uint64

	// TrimStart and TrimEnd are the number of decoded frames to drop from
	// the front and back of the packet. Both are zero unless gapless
	// playback is enabled.
	TrimStart uint32
	TrimEnd   uint32

	Data []byte
}

// NewPacket copies data into a new packet.
func NewPacket(trackID uint32, ts, dur uint64, data []byte) *Packet {
	return &Packet{
		TrackID: trackID,
		Ts:      ts,
		Dur:     dur,
		Data:    append([]byte(nil), data...),
	}
}

// BlockDur is the untrimmed duration of the packet.
func (p *Packet) BlockDur() uint64 {
	return p.Dur + uint64(p.TrimStart) + uint64(p.TrimEnd)
}

// TrimPacket rewrites pkt for gapless playback: frames before delay are marked
// for trimming at the start and, when numFrames is non-zero, frames past
// numFrames are marked for trimming at the end.
func TrimPacket(pkt *Packet, delay uint32, numFrames uint64) {
	d := uint64(delay)

	if pkt.Ts < d {
		pkt.TrimStart = uint32(min(d-pkt.Ts, pkt.Dur))
		pkt.Ts = 0
		pkt.Dur -= uint64(pkt.TrimStart)
	} else {
		pkt.TrimStart = 0
		pkt.Ts -= d
	}

	if numFrames == 0 {
		return
	}

	if end := pkt.Ts + pkt.Dur; end > numFrames {
		pkt.TrimEnd = uint32(min(end-numFrames, pkt.Dur))
		pkt.Dur -= uint64(pkt.TrimEnd)
	} else {
		pkt.TrimEnd = 0
	}
}

// Track is one codec bitstream inside a container.
type Track struct {
	ID       uint32
	Params   CodecParameters
	Language string
}
