// package formatter exports extraction run logs to plain text, Markdown, CSV and JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/zipx/internal/job"
	"github.com/desertthunder/zipx/internal/shared"
)

// Format names an export format.
type Format string

const (
	Text     Format = "text"
	Markdown Format = "markdown"
	CSV      Format = "csv"
	JSON     Format = "json"
)

// ParseFormat accepts a format name or a file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "text", "txt", "log":
		return Text, nil
	case "markdown", "md":
		return Markdown, nil
	case "csv":
		return CSV, nil
	case "json":
		return JSON, nil
	default:
		return "", fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidFlag, s)
	}
}

// Export renders st in format.
func Export(st job.State, format Format) ([]byte, error) {
	switch format {
	case Text:
		return ExportToText(st), nil
	case Markdown:
		return ExportToMarkdown(st), nil
	case CSV:
		return ExportToCSV(st)
	case JSON:
		return ExportToJSON(st)
	default:
		return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidFlag, format)
	}
}

// WriteExport renders st to path. An empty format is inferred from the file extension.
func WriteExport(st job.State, path string, format Format) error {
	if format == "" {
		f, err := ParseFormat(filepath.Ext(path))
		if err != nil {
			f = Text
		}
		format = f
	}

	data, err := Export(st, format)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create export directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

// Outcome describes how a run ended, e.g. "done" or "failed (cancelled)".
func Outcome(phase job.Phase, failure job.Reason) string {
	if phase == job.Failed && failure != job.NoReason {
		return fmt.Sprintf("%s (%s)", phase, failure)
	}
	return phase.String()
}

// ExportToText renders the run as a header followed by one line per frame.
func ExportToText(st job.State) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Archive: %s\n", st.Archive)
	fmt.Fprintf(&buf, "Destination: %s\n", st.Destination)
	fmt.Fprintf(&buf, "Outcome: %s\n", Outcome(st.Phase, st.Failure))
	fmt.Fprintf(&buf, "Progress: %d/%d (%d%%)\n", st.Completed, st.Total, st.Percent)
	if st.Message != "" {
		fmt.Fprintf(&buf, "Error: %s\n", st.Message)
	}
	buf.WriteString("\n")

	for _, f := range st.Log {
		fmt.Fprintf(&buf, "%s [%-7s] %s\n", timestamp(f.At), f.Kind, f.Text)
	}
	return buf.Bytes()
}

// ExportToMarkdown renders the run as a Markdown report.
func ExportToMarkdown(st job.State) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# Extraction of %s\n\n", st.Archive)
	fmt.Fprintf(&buf, "**Outcome**: %s\n", Outcome(st.Phase, st.Failure))
	fmt.Fprintf(&buf, "**Progress**: %d/%d (%d%%)\n", st.Completed, st.Total, st.Percent)
	fmt.Fprintf(&buf, "**Destination**: `%s`\n", st.Destination)
	if st.ExtractionID != "" {
		fmt.Fprintf(&buf, "**Extraction ID**: `%s`\n", st.ExtractionID)
	}
	if st.Message != "" {
		fmt.Fprintf(&buf, "**Error**: %s\n", st.Message)
	}

	buf.WriteString("\n## Entries\n\n")
	for _, p := range st.Selection {
		fmt.Fprintf(&buf, "- `%s`\n", p)
	}

	buf.WriteString("\n## Log\n\n")
	for _, f := range st.Log {
		fmt.Fprintf(&buf, "%d. **%s** %s\n", f.Seq, f.Kind, f.Text)
	}
	return buf.Bytes()
}

// ExportToCSV renders the frames with columns: Seq, Time, Kind, Text
func ExportToCSV(st job.State) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"Seq", "Time", "Kind", "Text"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, f := range st.Log {
		record := []string{strconv.Itoa(f.Seq), timestamp(f.At), f.Kind.String(), f.Text}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

type jsonFrame struct {
	Seq  int    `json:"seq"`
	Kind string `json:"kind"`
	Text string `json:"text"`
	At   string `json:"at"`
}

type jsonRun struct {
	Archive      string      `json:"archive"`
	Destination  string      `json:"destination"`
	ExtractionID string      `json:"extractionId,omitempty"`
	Phase        string      `json:"phase"`
	Failure      string      `json:"failure,omitempty"`
	Message      string      `json:"message,omitempty"`
	Completed    int         `json:"completed"`
	Total        int         `json:"total"`
	Percent      int         `json:"percent"`
	Paths        []string    `json:"paths"`
	Frames       []jsonFrame `json:"frames"`
}

// ExportToJSON renders the run and its frames as indented JSON.
func ExportToJSON(st job.State) ([]byte, error) {
	out := jsonRun{
		Archive:      st.Archive,
		Destination:  st.Destination,
		ExtractionID: st.ExtractionID,
		Phase:        st.Phase.String(),
		Failure:      st.Failure.String(),
		Message:      st.Message,
		Completed:    st.Completed,
		Total:        st.Total,
		Percent:      st.Percent,
		Paths:        st.Selection,
		Frames:       make([]jsonFrame, 0, len(st.Log)),
	}
	for _, f := range st.Log {
		out.Frames = append(out.Frames, jsonFrame{Seq: f.Seq, Kind: f.Kind.String(), Text: f.Text, At: timestamp(f.At)})
	}
	return shared.MarshalJSON(out, true)
}

func timestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
