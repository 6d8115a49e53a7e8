package recorder

// findMP3FrameSync returns the position of the first MPEG audio frame sync
// word, 0xFF followed by a byte with the top three bits set, or -1.
func findMP3FrameSync(data []byte) int {
	for i := 0; i < len(data)-1; i++ {
		if data[i] == 0xFF && data[i+1]&0xE0 == 0xE0 {
			return i
		}
	}
	return -1
}

// maxAlignSkip is how much audio a new file may skip while looking for a
// frame sync before writing starts anyway.
const maxAlignSkip = 8192

// frameAligner drops the bytes in front of the first frame sync of a file.
type frameAligner struct {
	done    bool
	skipped int
}

// align returns the part of chunk that should be written.
func (a *frameAligner) align(chunk []byte) []byte {
	if a.done {
		return chunk
	}

	pos := findMP3FrameSync(chunk)
	switch {
	case pos >= 0:
		a.done = true
		a.skipped += pos
		return chunk[pos:]
	case a.skipped+len(chunk) > maxAlignSkip:
		// no sync in sight, might be valid audio anyway
		a.done = true
		return chunk
	default:
		a.skipped += len(chunk)
		return nil
	}
}
