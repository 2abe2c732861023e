package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/zipx/internal/job"
	"github.com/desertthunder/zipx/internal/shared"
)

// ExtractionIDHeader reports the id of a started extraction.
const ExtractionIDHeader = "X-Extraction-ID"

// ExtractHandler serves the extraction API.
//
//	GET  /listZip?archive=<id>
//	POST /extractZip {"archive", "paths", "destination"}
//	POST /cancel {"extractionId"}
//
// Extraction streams one "data: <line>" frame per step: a start announcement, then
// "Extracting: <entry>" and "✓ Done: <entry>" per entry, then "All files extracted successfully.".
// A failure is reported as an "ERROR: ..." frame before the response ends.
type ExtractHandler struct {
	Catalog   Catalog
	Registry  *Registry
	Root      string        // Destinations are resolved below Root
	LineDelay time.Duration // Pause between entries, for watching progress
	Logger    *log.Logger
}

// NewExtractHandler creates a handler serving archives from catalog.
func NewExtractHandler(catalog Catalog, root string, lineDelay time.Duration, logger *log.Logger) *ExtractHandler {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &ExtractHandler{
		Catalog:   catalog,
		Registry:  NewRegistry(),
		Root:      root,
		LineDelay: lineDelay,
		Logger:    logger,
	}
}

func (h *ExtractHandler) Routes() []string {
	return []string{"/listZip", "/extractZip", "/cancel"}
}

func (h *ExtractHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/listZip":
		AllowMethods(http.MethodGet)(http.HandlerFunc(h.list)).ServeHTTP(w, r)
	case "/extractZip":
		AllowMethods(http.MethodPost)(http.HandlerFunc(h.extract)).ServeHTTP(w, r)
	case "/cancel":
		AllowMethods(http.MethodPost)(http.HandlerFunc(h.cancel)).ServeHTTP(w, r)
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

func (h *ExtractHandler) list(w http.ResponseWriter, r *http.Request) {
	archive := r.URL.Query().Get("archive")
	if archive == "" {
		WriteError(w, http.StatusBadRequest, "Missing 'archive' query parameter")
		return
	}

	a, err := h.Catalog.Open(archive)
	if err != nil {
		h.writeOpenError(w, err)
		return
	}
	defer a.Close()

	files := a.Entries()
	WriteJSON(w, http.StatusOK, map[string]any{"files": files, "count": len(files)})
}

func (h *ExtractHandler) extract(w http.ResponseWriter, r *http.Request) {
	var req job.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid JSON request body")
		return
	}
	if req.Destination == "" {
		req.Destination = job.DefaultDestination
	}
	if err := req.Validate(); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	destination, err := Within(h.Root, req.Destination)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	a, err := h.Catalog.Open(req.Archive)
	if err != nil {
		h.writeOpenError(w, err)
		return
	}
	defer a.Close()

	for _, p := range req.Paths {
		if !a.Has(p) {
			WriteError(w, http.StatusBadRequest, fmt.Sprintf("Entry not found in archive: %s", p))
			return
		}
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	id := h.Registry.Register(cancel)
	defer h.Registry.Remove(id)

	logger := h.Logger.With("extraction_id", id, "archive", req.Archive)
	logger.Info("starting extraction", "entries", len(req.Paths), "destination", destination)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set(ExtractionIDHeader, id)
	w.WriteHeader(http.StatusOK)

	out := &frameWriter{w: w, rc: http.NewResponseController(w)}
	frames, err := h.run(ctx, out, a, req.Paths, destination)
	switch {
	case errors.Is(err, context.Canceled):
		logger.Info("extraction cancelled", "frames", frames)
	case err != nil:
		out.send("ERROR: %v", err)
		logger.Error("extraction failed", "frames", frames, "error", err)
	default:
		logger.Info("extraction completed", "frames", frames)
	}
}

// run extracts paths in order, streaming a frame per step. It returns the number of frames sent.
func (h *ExtractHandler) run(ctx context.Context, out *frameWriter, a Archive, paths []string, destination string) (int, error) {
	if err := out.send("Starting extraction of %d file(s)...", len(paths)); err != nil {
		return out.sent, err
	}

	for _, p := range paths {
		if err := out.send("Extracting: %s", p); err != nil {
			return out.sent, err
		}
		if err := h.pause(ctx); err != nil {
			return out.sent, err
		}
		if err := a.Extract(p, destination); err != nil {
			return out.sent, fmt.Errorf("extract %s: %w", p, err)
		}
		if err := out.send("✓ Done: %s", p); err != nil {
			return out.sent, err
		}
	}

	return out.sent, out.send("All files extracted successfully.")
}

func (h *ExtractHandler) pause(ctx context.Context) error {
	if h.LineDelay <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(h.LineDelay)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (h *ExtractHandler) cancel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ExtractionID string `json:"extractionId"`
	}

	id := r.URL.Query().Get("extractionId")
	if id == "" {
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			id = req.ExtractionID
		}
	}
	if id == "" {
		WriteError(w, http.StatusBadRequest, "Missing extractionId parameter")
		return
	}

	if !h.Registry.Cancel(id) {
		WriteError(w, http.StatusNotFound, fmt.Sprintf("Extraction not found: %s", id))
		return
	}

	h.Logger.Info("cancel requested", "extraction_id", id)
	WriteJSON(w, http.StatusOK, map[string]string{
		"status":       "cancelled",
		"extractionId": id,
		"message":      "Extraction cancelled successfully",
	})
}

func (h *ExtractHandler) writeOpenError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrArchiveNotFound):
		WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, shared.ErrInvalidInput):
		WriteError(w, http.StatusBadRequest, err.Error())
	default:
		h.Logger.Error("failed to open archive", "error", err)
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to open archive: %v", err))
	}
}

// frameWriter writes server-push frames and flushes each one.
type frameWriter struct {
	w    io.Writer
	rc   *http.ResponseController
	sent int
}

func (f *frameWriter) send(format string, args ...any) error {
	if _, err := fmt.Fprintf(f.w, "data: "+format+"\n\n", args...); err != nil {
		return err
	}
	f.sent++
	return f.rc.Flush()
}
