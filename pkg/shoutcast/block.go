package shoutcast

import "bytes"

// maxBlockSize is the largest metadata payload a single length byte can announce.
const maxBlockSize = 255 * 16

// BuildBlock encodes text as an ICY metadata block: a length byte counting
// 16-byte chunks followed by the NUL padded payload. An empty text yields
// the single zero length byte.
func BuildBlock(text string) []byte {
	if text == "" {
		return []byte{0x00}
	}

	payload := []byte(text)
	if len(payload) > maxBlockSize {
		payload = payload[:maxBlockSize]
	}

	blocks := (len(payload) + 15) / 16
	pad := blocks*16 - len(payload)

	var buf bytes.Buffer
	buf.WriteByte(byte(blocks))
	buf.Write(payload)
	buf.Write(make([]byte, pad))

	return buf.Bytes()
}

// StreamTitle formats title the way servers announce it.
func StreamTitle(title string) string {
	return "StreamTitle='" + title + "';"
}
