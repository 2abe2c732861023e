package job

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/desertthunder/zipx/internal/shared"
)

func TestRequestValidate(t *testing.T) {
	many := make([]string, maxPaths+1)
	for i := range many {
		many[i] = fmt.Sprintf("f%d.txt", i)
	}

	tests := []struct {
		name string
		req  Request
		want error
	}{
		{name: "Valid", req: Request{Archive: "a.zip", Paths: []string{"docs/readme.md", "a.txt"}}},
		{name: "Missing Archive", req: Request{Paths: []string{"a.txt"}}, want: shared.ErrInvalidInput},
		{name: "Archive Too Long", req: Request{Archive: strings.Repeat("a", maxPathLength+1), Paths: []string{"a.txt"}}, want: shared.ErrInvalidInput},
		{name: "Empty Selection", req: Request{Archive: "a.zip"}, want: ErrEmptySelection},
		{name: "Too Many Entries", req: Request{Archive: "a.zip", Paths: many}, want: shared.ErrInvalidInput},
		{name: "Empty Entry", req: Request{Archive: "a.zip", Paths: []string{""}}, want: shared.ErrInvalidInput},
		{name: "Entry Too Long", req: Request{Archive: "a.zip", Paths: []string{strings.Repeat("a", maxPathLength+1)}}, want: shared.ErrInvalidInput},
		{name: "Traversal", req: Request{Archive: "a.zip", Paths: []string{"../etc/passwd"}}, want: shared.ErrInvalidInput},
		{name: "Shell Characters", req: Request{Archive: "a.zip", Paths: []string{"a.txt; rm -rf"}}, want: shared.ErrInvalidInput},
		{name: "Duplicate Entry", req: Request{Archive: "a.zip", Paths: []string{"a.txt", "a.txt"}}, want: shared.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.want == nil {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestRequestClone(t *testing.T) {
	req := Request{Archive: "a.zip", Paths: []string{"a.txt"}}
	c := req.Clone()
	c.Paths[0] = "b.txt"

	if req.Paths[0] != "a.txt" {
		t.Errorf("expected original paths to be untouched, got %v", req.Paths)
	}
}
