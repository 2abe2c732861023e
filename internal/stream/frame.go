package stream

import "strings"

const dataField = "data:"

// Payload extracts the frame payload from a decoded line.
//
// "data: x" yields "x". Blank separator lines, ":" comments and the other server-push fields
// (event, id, retry) are not frames. Lines without a field prefix are passed through unchanged so
// a service that streams bare text still produces frames.
func Payload(line string) (string, bool) {
	switch {
	case line == "":
		return "", false
	case strings.HasPrefix(line, ":"):
		return "", false
	case strings.HasPrefix(line, dataField):
		return strings.TrimPrefix(line[len(dataField):], " "), true
	case isControlField(line):
		return "", false
	default:
		return line, true
	}
}

func isControlField(line string) bool {
	for _, field := range []string{"event:", "id:", "retry:"} {
		if strings.HasPrefix(line, field) {
			return true
		}
	}
	return false
}
