package stream

import "testing"

func TestClassify(t *testing.T) {
	tc := []struct {
		line string
		want Kind
	}{
		{"✓ Done: a.txt", Success},
		{"✓ Done: logs/ERROR.txt", Success},
		{"Extracting: a.txt", Info},
		{"Extracting: logs/error.txt", Info},
		{"Extracting: logs/ERROR_CODES.md", Error},
		{"Extracting project/src/main.go...", Info},
		{"ERROR: open zip: no such file", Error},
		{"error: disk full", Error},
		{"Aborted", Error},
		{"abort requested by server", Error},
		{"failed: write file", Error},
		{"Starting extraction of 2 file(s)...", Meta},
		{"All files extracted successfully.", Meta},
		{"Extraction complete.", Meta},
		{"", Info},
	}

	for _, tt := range tc {
		t.Run(tt.line, func(t *testing.T) {
			if got := Classify(tt.line); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.line, got, tt.want)
			}
		})
	}
}

func TestIsJobEnd(t *testing.T) {
	tc := []struct {
		line string
		want bool
	}{
		{"All files extracted successfully.", true},
		{"Extraction complete.", true},
		{"Starting extraction of 2 file(s)...", false},
		{"✓ Done: a.txt", false},
	}

	for _, tt := range tc {
		if got := IsJobEnd(tt.line); got != tt.want {
			t.Errorf("IsJobEnd(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestIsFailure(t *testing.T) {
	tc := []struct {
		line string
		want bool
	}{
		{"ERROR: open zip: no such file", true},
		{"  ERROR: disk full", true},
		{"Extracting: logs/ERROR_CODES.md", false},
		{"✓ Done: logs/ERROR.txt", false},
		{"error: retrying entry", false},
		{"failed: write file", false},
	}

	for _, tt := range tc {
		if got := IsFailure(tt.line); got != tt.want {
			t.Errorf("IsFailure(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestKindString(t *testing.T) {
	for kind, want := range map[Kind]string{Info: "info", Success: "success", Error: "error", Meta: "meta", Kind(99): ""} {
		if got := kind.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", kind, got, want)
		}
	}
}

func TestPayload(t *testing.T) {
	tc := []struct {
		name   string
		line   string
		want   string
		wantOK bool
	}{
		{"data with space", "data: ✓ Done: a.txt", "✓ Done: a.txt", true},
		{"data without space", "data:hello", "hello", true},
		{"data keeps extra spaces", "data:   indented", "  indented", true},
		{"empty data", "data:", "", true},
		{"blank separator", "", "", false},
		{"comment", ": keep-alive", "", false},
		{"event field", "event: progress", "", false},
		{"id field", "id: 7", "", false},
		{"bare text", "Extracting: a.txt", "Extracting: a.txt", true},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Payload(tt.line)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Payload(%q) = %q, %v; want %q, %v", tt.line, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
