// Package stream turns the extraction service's streamed response body into classified text lines.
//
// # Decoding
//
// A [Decoder] accepts raw byte chunks exactly as they are read off the wire and returns every
// complete newline-terminated line, in arrival order. Bytes after the last terminator, including a
// partially received multi-byte UTF-8 sequence, are retained until the next chunk. [Decoder.Flush]
// returns the unterminated tail at end of stream. Invalid UTF-8 is replaced with U+FFFD.
//
// # Framing
//
// The service uses a minimal server-push framing: each frame is "data: <payload>" on its own line,
// optionally followed by a blank separator line. [Payload] extracts the payload and reports
// separator and comment lines as non-frames.
//
// # Classification
//
// [Classify] maps a payload to a [Kind] using the service's conventions:
//   - [Success] : contains the "✓" glyph ("✓ Done: a.txt")
//   - [Error] : error or abort keywords ("ERROR: open zip: ...", "Aborted")
//   - [Meta] : job boundary announcements ("Starting extraction of 2 file(s)...")
//   - [Info] : everything else ("Extracting: a.txt")
package stream
