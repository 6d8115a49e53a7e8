package shoutcast

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// ParsePLS parses a PLS playlist and returns its stream URLs in order.
func ParsePLS(body io.Reader) ([]string, error) {
	var urls []string

	scanner := bufio.NewScanner(body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "File") || !strings.Contains(line, "=") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		url := strings.TrimSpace(parts[1])
		if strings.HasPrefix(url, "http") {
			urls = append(urls, url)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read playlist: %w", err)
	}

	return urls, nil
}

// ParseM3U parses an M3U playlist and returns its stream URLs in order.
func ParseM3U(body io.Reader) ([]string, error) {
	var urls []string

	scanner := bufio.NewScanner(body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		// Skip comments and empty lines
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "http://") || strings.HasPrefix(line, "https://") {
			urls = append(urls, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read playlist: %w", err)
	}

	return urls, nil
}

type xspfPlaylist struct {
	XMLName xml.Name `xml:"playlist"`
	Tracks  []struct {
		Locations []string `xml:"location"`
	} `xml:"trackList>track"`
}

// ParseXSPF parses an XSPF playlist and returns the track locations in order.
func ParseXSPF(body io.Reader) ([]string, error) {
	var p xspfPlaylist
	if err := xml.NewDecoder(body).Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to parse xspf playlist: %w", err)
	}

	var urls []string
	for _, t := range p.Tracks {
		for _, l := range t.Locations {
			if l = strings.TrimSpace(l); l != "" {
				urls = append(urls, l)
			}
		}
	}

	return urls, nil
}

// PlaylistParser returns the parser for a playlist kind, or nil.
func PlaylistParser(k Kind) func(io.Reader) ([]string, error) {
	switch k {
	case KindM3U:
		return ParseM3U
	case KindPLS:
		return ParsePLS
	case KindXSPF:
		return ParseXSPF
	default:
		return nil
	}
}
