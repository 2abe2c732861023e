// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/zipx/internal/job"
	"github.com/desertthunder/zipx/internal/services"
)

// MockClient is a test double for [services.Client].
//
// Open streams Frames as server-push lines. When Hold is set the body stays open after the last
// frame until the request context is done.
type MockClient struct {
	Files     []string
	Frames    []string
	ID        string
	Hold      bool
	ListErr   error
	OpenErr   error
	CancelErr error

	mu        sync.Mutex
	requests  []job.Request
	cancelled []string
}

var _ services.Client = (*MockClient)(nil)

func (m *MockClient) List(ctx context.Context, archive string) (*services.Listing, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	files := append([]string{}, m.Files...)
	return &services.Listing{Files: files, Count: len(files)}, nil
}

func (m *MockClient) Open(ctx context.Context, req job.Request) (*job.Stream, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.OpenErr != nil {
		return nil, m.OpenErr
	}

	var b strings.Builder
	for _, f := range m.Frames {
		b.WriteString("data: " + f + "\n\n")
	}

	if !m.Hold {
		return &job.Stream{ID: m.ID, Body: io.NopCloser(strings.NewReader(b.String()))}, nil
	}

	pr, pw := io.Pipe()
	go func() {
		if _, err := io.WriteString(pw, b.String()); err != nil {
			return
		}
		<-ctx.Done()
		pw.CloseWithError(ctx.Err())
	}()
	return &job.Stream{ID: m.ID, Body: pr}, nil
}

func (m *MockClient) Cancel(ctx context.Context, extractionID string) error {
	m.mu.Lock()
	m.cancelled = append(m.cancelled, extractionID)
	m.mu.Unlock()
	return m.CancelErr
}

// Requests returns the requests passed to Open.
func (m *MockClient) Requests() []job.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]job.Request{}, m.requests...)
}

// Cancelled returns the extraction ids passed to Cancel.
func (m *MockClient) Cancelled() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.cancelled...)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
