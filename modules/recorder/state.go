package recorder

import (
	"github.com/zachfi/radiorec/pkg/shoutcast"
)

// step is what the copy loop does with the chunk it just read.
type step int

const (
	stepWrite step = iota
	stepRotate
	stepDrop
)

func (s step) String() string {
	switch s {
	case stepWrite:
		return "write"
	case stepRotate:
		return "rotate"
	default:
		return "drop"
	}
}

// trackState is the rotation state of one copy loop. It is only advanced
// through withMetadata and onChunk.
type trackState struct {
	latest    shoutcast.Metadata
	hasLatest bool
	pending   bool
}

// withMetadata records a track change. The rotation happens on the next chunk.
func (s trackState) withMetadata(m shoutcast.Metadata) trackState {
	s.latest = m
	s.hasLatest = true
	s.pending = true
	return s
}

// onChunk decides the step for the next chunk. With per-track files a
// pending change rotates only once the track index is past 0: the audio
// before the first change, and the first track itself, start mid-song.
// After a rotation the chunk goes into the new file, if one could be opened.
func (s trackState) onChunk(perTrack, fileOpen bool) (trackState, step) {
	if perTrack && s.pending && s.hasLatest && s.latest.Index > 0 {
		s.pending = false
		return s, stepRotate
	}
	if fileOpen {
		return s, stepWrite
	}
	return s, stepDrop
}
