package tagging

import (
	"bytes"
	"io"
	"os"
	"time"

	"github.com/bogem/id3v2/v2"
	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

const (
	id3v1Size  = 128
	id3v1Field = 30

	// genre byte for "no genre"
	id3v1NoGenre = 255
)

// Tags is what gets written into a recording.
type Tags struct {
	Title       string
	Artist      string
	StationName string
	StationURL  string
	Comment     string

	// Created is the modification time the file gets after tagging.
	Created time.Time
}

// WriteID3 writes ID3v2.4 and ID3v1 tags into the MP3 file at path. The
// tagged copy is built as <path>.tmp and renamed over path, so path always
// exists and never holds a half written tag.
func WriteID3(path string, t Tags) error {
	tmp := path + ".tmp"

	if err := copyFile(path, tmp); err != nil {
		return errors.Wrap(err, "failed to copy recording")
	}

	if err := writeID3v2(tmp, t); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrap(err, "failed to write id3v2 tag")
	}

	if err := writeID3v1(tmp, t); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrap(err, "failed to write id3v1 tag")
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrap(err, "failed to move tagged recording in place")
	}

	return nil
}

// Touch sets the modification time of path to t.
func Touch(path string, t time.Time) error {
	return os.Chtimes(path, t, t)
}

func writeID3v2(path string, t Tags) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return err
	}
	defer tag.Close()

	tag.DeleteAllFrames()
	tag.SetVersion(4)
	tag.SetDefaultEncoding(id3v2.EncodingUTF8)

	if t.Title != "" {
		tag.SetTitle(t.Title)
	}
	if t.Artist != "" {
		tag.SetArtist(t.Artist)
	}
	if t.StationName != "" {
		tag.AddTextFrame("TPUB", id3v2.EncodingUTF8, t.StationName)
	}
	if t.StationURL != "" {
		// WORS, official internet radio station homepage
		tag.AddFrame("WORS", id3v2.UnknownFrame{Body: []byte(t.StationURL)})
	}
	if t.Comment != "" {
		tag.AddCommentFrame(id3v2.CommentFrame{
			Encoding:    id3v2.EncodingUTF8,
			Language:    "eng",
			Description: "",
			Text:        t.Comment,
		})
	}

	return tag.Save()
}

func writeID3v1(path string, t Tags) error {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	// overwrite an existing ID3v1 tag, append otherwise
	pos := info.Size()
	if pos >= id3v1Size {
		head := make([]byte, 3)
		if _, err := f.ReadAt(head, pos-id3v1Size); err != nil && err != io.EOF {
			return err
		}
		if bytes.Equal(head, []byte("TAG")) {
			pos -= id3v1Size
		}
	}

	if _, err := f.WriteAt(id3v1Tag(t), pos); err != nil {
		return err
	}

	return f.Close()
}

func id3v1Tag(t Tags) []byte {
	b := make([]byte, id3v1Size)
	copy(b, "TAG")
	copy(b[3:33], latin1(t.Title, id3v1Field))
	copy(b[33:63], latin1(t.Artist, id3v1Field))
	// album [63:93] and year [93:97] stay empty
	copy(b[97:127], latin1(t.StationName, id3v1Field))
	b[127] = id3v1NoGenre
	return b
}

// latin1 encodes s as ISO-8859-1, replacing what cannot be represented,
// and cuts it to max bytes.
func latin1(s string, max int) []byte {
	out, err := encoding.ReplaceUnsupported(charmap.ISO8859_1.NewEncoder()).Bytes([]byte(s))
	if err != nil {
		out = []byte(s)
	}
	if len(out) > max {
		out = out[:max]
	}
	return out
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}

	return out.Close()
}
