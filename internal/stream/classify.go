package stream

import "strings"

// Kind is the semantic category of a frame.
type Kind int

const (
	Info Kind = iota
	Success
	Error
	Meta
)

func (k Kind) String() string {
	switch k {
	case Info:
		return "info"
	case Success:
		return "success"
	case Error:
		return "error"
	case Meta:
		return "meta"
	default:
		return ""
	}
}

// SuccessGlyph marks a frame reporting one finished entry.
const SuccessGlyph = "✓"

// FailurePrefix opens the service's announcement that the job itself failed.
const FailurePrefix = "ERROR:"

var (
	startKeywords = []string{"Starting extraction"}
	endKeywords   = []string{"All files extracted", "Extraction complete"}
)

// Classify returns the [Kind] of a frame payload. Rules are evaluated in order and the first match wins.
func Classify(line string) Kind {
	switch {
	case strings.Contains(line, SuccessGlyph):
		return Success
	case isError(line):
		return Error
	case hasAnyPrefix(line, startKeywords) || IsJobEnd(line):
		return Meta
	default:
		return Info
	}
}

// IsJobEnd reports whether line is the service's announcement that the whole job finished.
func IsJobEnd(line string) bool {
	return hasAnyPrefix(line, endKeywords)
}

// IsFailure reports whether line is the service's announcement that the job failed.
//
// Other error-kind frames, such as an entry whose name contains "ERROR", do not end the job.
func IsFailure(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), FailurePrefix)
}

// isError matches "ERROR" anywhere, and "error"/"abort" or "failed:" at the start of the payload.
//
// Entry names routinely contain words like "error" ("Extracting: logs/error.txt"), so lowercase
// keywords only count as a prefix.
func isError(line string) bool {
	if strings.Contains(line, "ERROR") {
		return true
	}
	lower := strings.ToLower(strings.TrimSpace(line))
	return strings.HasPrefix(lower, "error") ||
		strings.HasPrefix(lower, "abort") ||
		strings.HasPrefix(lower, "failed:")
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
