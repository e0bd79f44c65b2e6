// SPDX-License-Identifier: EPL-2.0

package media

// SeekMode trades accuracy for speed.
type SeekMode uint8

const (
	// SeekCoarse may land before the requested position.
	SeekCoarse SeekMode = iota
	// SeekAccurate lands on the packet containing the requested position.
	SeekAccurate
)

func (m SeekMode) String() string {
	if m == SeekAccurate {
		return "accurate"
	}
	return "coarse"
}

// SeekTo is a seek target, either a time or a timestamp on one track.
type SeekTo struct {
	Time Time
	Ts   uint64

	TrackID  uint32
	HasTrack bool
	ByTime   bool
}

// SeekToTime targets t on the default track.
func SeekToTime(t Time) SeekTo {
	return SeekTo{Time: t, ByTime: true}
}

// SeekToTimeOnTrack targets t on the given track.
func SeekToTimeOnTrack(t Time, trackID uint32) SeekTo {
	return SeekTo{Time: t, ByTime: true, TrackID: trackID, HasTrack: true}
}

// SeekToTimestamp targets ts, in the track's time base.
func SeekToTimestamp(ts uint64, trackID uint32) SeekTo {
	return SeekTo{Ts: ts, TrackID: trackID, HasTrack: true}
}

// SeekedTo reports where a seek landed.
type SeekedTo struct {
	TrackID    uint32
	RequiredTs uint64
	ActualTs   uint64
}
