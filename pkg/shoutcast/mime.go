package shoutcast

import (
	"mime"
	"strings"
)

// Kind groups content types by how their payload is consumed.
type Kind int

const (
	KindUnknown Kind = iota
	KindAudio
	KindM3U
	KindPLS
	KindXSPF
)

func (k Kind) String() string {
	switch k {
	case KindAudio:
		return "audio"
	case KindM3U:
		return "m3u"
	case KindPLS:
		return "pls"
	case KindXSPF:
		return "xspf"
	default:
		return "unknown"
	}
}

// MimeType is one row of the content type table.
type MimeType struct {
	ContentTypes []string
	Suffix       string
	Kind         Kind
}

var (
	AudioMPEG = MimeType{[]string{"audio/mpeg"}, ".mp3", KindAudio}
	AudioOGG  = MimeType{[]string{"audio/ogg", "application/ogg"}, ".ogg", KindAudio}
	AudioWAV  = MimeType{[]string{"audio/x-wav", "audio/wav"}, ".wav", KindAudio}
	AudioWMA  = MimeType{[]string{"audio/x-ms-wma"}, ".wma", KindAudio}
	AudioAAC  = MimeType{[]string{"audio/aac", "audio/aacp", "audio/mp4"}, ".m4a", KindAudio}
	AudioM3U  = MimeType{[]string{"audio/mpegurl", "audio/x-mpegurl", "application/vnd.apple.mpegurl"}, ".m3u", KindM3U}
	AudioPLS  = MimeType{[]string{"audio/x-scpls", "application/pls+xml"}, ".pls", KindPLS}
	XSPF      = MimeType{[]string{"application/xspf+xml"}, ".xspf", KindXSPF}
)

var mimeTypes = []MimeType{AudioMPEG, AudioOGG, AudioWAV, AudioWMA, AudioAAC, AudioM3U, AudioPLS, XSPF}

// ByContentType finds the table row for a Content-Type header value.
// Parameters such as charset are ignored.
func ByContentType(contentType string) (MimeType, bool) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	}

	for _, mt := range mimeTypes {
		for _, ct := range mt.ContentTypes {
			if strings.EqualFold(ct, mediaType) {
				return mt, true
			}
		}
	}

	return MimeType{}, false
}

// IsMP3 reports whether the content is MPEG audio, the only format that gets ID3 tags.
func (m MimeType) IsMP3() bool {
	return m.Suffix == AudioMPEG.Suffix
}

func (m MimeType) String() string {
	if len(m.ContentTypes) == 0 {
		return "unknown"
	}
	return m.ContentTypes[0]
}
