package stream

import (
	"bytes"
	"strings"
	"unicode/utf8"
)

// Decoder splits a chunked byte stream into complete lines.
//
// The zero value is ready to use. A Decoder is not safe for concurrent use.
type Decoder struct {
	residual []byte
}

// NewDecoder returns an empty [Decoder].
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Feed appends chunk to the residual buffer and returns every line completed by it.
//
// Returned lines do not include the terminator; a trailing carriage return is dropped as well.
func (d *Decoder) Feed(chunk []byte) []string {
	if len(chunk) == 0 {
		return nil
	}

	start := len(d.residual)
	d.residual = append(d.residual, chunk...)

	var lines []string
	consumed := 0
	for {
		i := bytes.IndexByte(d.residual[start:], '\n')
		if i < 0 {
			break
		}
		end := start + i
		lines = append(lines, decodeLine(d.residual[consumed:end]))
		consumed = end + 1
		start = consumed
	}

	if consumed > 0 {
		n := copy(d.residual, d.residual[consumed:])
		d.residual = d.residual[:n]
	}

	return lines
}

// Flush returns the unterminated tail of the stream, if it is non-empty, and clears the buffer.
func (d *Decoder) Flush() (string, bool) {
	if len(d.residual) == 0 {
		return "", false
	}

	line := decodeLine(d.residual)
	d.residual = d.residual[:0]
	if line == "" {
		return "", false
	}
	return line, true
}

// Buffered reports how many bytes are waiting for a terminator.
func (d *Decoder) Buffered() int {
	return len(d.residual)
}

// decodeLine converts a complete line to text, replacing invalid UTF-8 with [utf8.RuneError].
//
// A newline byte can never be part of a multi-byte sequence, so a complete line holds only
// complete sequences and any remaining invalid byte really is invalid.
func decodeLine(b []byte) string {
	b = bytes.TrimSuffix(b, []byte{'\r'})
	if utf8.Valid(b) {
		return string(b)
	}
	return strings.ToValidUTF8(string(b), string(utf8.RuneError))
}
