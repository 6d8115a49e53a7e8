// Package shoutcast provides ICY/Shoutcast stream reading with metadata stripping and playlist parsing.
//
// It started as a fork of github.com/romantomjak/shoutcast and is shaped for stream recording:
//   - OffsetReader counts every byte delivered by the connection body
//   - Stream strips ICY metadata blocks at the server's metadata interval so only audio bytes are returned
//   - Session turns the raw StreamTitle text into sequence-numbered Metadata snapshots
//   - Playlist parsing extracts the nested stream URLs of .pls, .m3u and .xspf documents
package shoutcast
