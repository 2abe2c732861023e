package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-resty/resty/v2"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/desertthunder/zipx/internal/job"
	"github.com/desertthunder/zipx/internal/shared"
)

const (
	// ExtractionIDHeader carries the remote id of a started extraction.
	ExtractionIDHeader = "X-Extraction-ID"

	defaultBaseURL = "http://127.0.0.1:8080"
	defaultTimeout = 30 * time.Second
)

// Listing is the response of GET /listZip.
type Listing struct {
	Files []string `json:"files"`
	Count int      `json:"count"`
}

// APIError is the JSON error body returned by the extraction service.
type APIError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return e.Message
}

// Options configures an [ExtractService].
type Options struct {
	BaseURL           string
	Token             string        // Bearer credential, sent as-is
	Timeout           time.Duration // Bound on list and cancel requests; streams are unbounded
	RequestsPerSecond float64       // Client-side throttle, 0 disables it
	ListRetries       int           // Extra attempts for List, 0 disables them
	HTTPClient        *http.Client  // Base client wrapped by the bearer transport
	Logger            *log.Logger
}

// ExtractService talks to the remote archive extraction service.
//
// It implements [job.Extractor].
type ExtractService struct {
	client  *resty.Client
	timeout time.Duration
	logger  *log.Logger
}

// NewHTTPClient returns a client that attaches "Authorization: Bearer <token>" to every request.
// An empty token returns base unchanged.
func NewHTTPClient(ctx context.Context, token string, base *http.Client) *http.Client {
	if base == nil {
		base = &http.Client{}
	}
	if token == "" {
		return base
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}))
}

// NewExtractService creates a service client from opts.
func NewExtractService(opts Options) *ExtractService {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	hc := NewHTTPClient(context.Background(), opts.Token, opts.HTTPClient)
	client := resty.NewWithClient(hc).
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetRetryCount(0)

	if opts.ListRetries > 0 {
		client.SetRetryCount(opts.ListRetries).
			SetRetryWaitTime(100 * time.Millisecond).
			SetRetryMaxWaitTime(2 * time.Second).
			AddRetryCondition(retryListing)
	}

	if opts.RequestsPerSecond > 0 {
		limiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
		client.OnBeforeRequest(rateLimitMiddleware(limiter))
	}

	logger := opts.Logger
	client.OnAfterResponse(func(_ *resty.Client, r *resty.Response) error {
		logger.Debug("API request completed", "method", r.Request.Method, "url", r.Request.URL, "status", r.StatusCode(), "duration", r.Time())
		return nil
	})

	return &ExtractService{client: client, timeout: opts.Timeout, logger: opts.Logger}
}

// rateLimitMiddleware delays each request until limiter admits it or the request context ends.
func rateLimitMiddleware(limiter *rate.Limiter) resty.RequestMiddleware {
	return func(_ *resty.Client, r *resty.Request) error {
		if err := limiter.Wait(r.Context()); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
		return nil
	}
}

// retryListing retries GET requests that failed in transit or with a transient status.
// Extraction and cancel are POSTs and are never repeated.
func retryListing(r *resty.Response, err error) bool {
	if r == nil || r.Request == nil || r.Request.Method != http.MethodGet {
		return false
	}
	if err != nil {
		return true
	}
	code := r.StatusCode()
	return code >= 500 || code == http.StatusTooManyRequests || code == http.StatusRequestTimeout
}

// List returns the entries of archive.
func (s *ExtractService) List(ctx context.Context, archive string) (*Listing, error) {
	if archive == "" {
		return nil, fmt.Errorf("%w: archive is required", shared.ErrMissingArgument)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var listing Listing
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("archive", archive).
		SetResult(&listing).
		SetError(&APIError{}).
		Get("/listZip")
	if err != nil {
		return nil, transportError(ctx, err)
	}
	if resp.IsError() {
		apiErr, _ := resp.Error().(*APIError)
		return nil, statusError(resp.StatusCode(), shared.ErrArchiveNotFound, apiErr, resp.String())
	}

	if listing.Files == nil {
		listing.Files = []string{}
	}
	listing.Count = len(listing.Files)
	return &listing, nil
}

// Open submits req to POST /extractZip and returns the streamed response body.
//
// The body is not read here. The caller owns it and must close it. Failures are returned as
// [*job.SetupError].
func (s *ExtractService) Open(ctx context.Context, req job.Request) (*job.Stream, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Accept", "text/event-stream").
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetDoNotParseResponse(true).
		Post("/extractZip")
	if err != nil {
		if resp != nil && resp.RawBody() != nil {
			resp.RawBody().Close()
		}
		return nil, &job.SetupError{Err: transportError(ctx, err)}
	}

	body := resp.RawBody()
	if !resp.IsSuccess() {
		defer body.Close()
		return nil, &job.SetupError{StatusCode: resp.StatusCode(), Err: decodeStatusError(resp.StatusCode(), body)}
	}

	id := resp.Header().Get(ExtractionIDHeader)
	s.logger.Debug("extraction stream opened", "archive", req.Archive, "extraction_id", id)
	return &job.Stream{ID: id, Body: body}, nil
}

// Cancel asks the service to stop extractionID. The response body is ignored.
func (s *ExtractService) Cancel(ctx context.Context, extractionID string) error {
	if extractionID == "" {
		return fmt.Errorf("%w: extraction id is required", shared.ErrMissingArgument)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"extractionId": extractionID}).
		SetError(&APIError{}).
		Post("/cancel")
	if err != nil {
		return transportError(ctx, err)
	}
	if resp.IsError() {
		apiErr, _ := resp.Error().(*APIError)
		return statusError(resp.StatusCode(), shared.ErrRunNotFound, apiErr, resp.String())
	}
	return nil
}

func transportError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", shared.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %w", shared.ErrServiceUnavailable, err)
}

func decodeStatusError(code int, body io.Reader) error {
	raw, _ := io.ReadAll(io.LimitReader(body, 64<<10))

	var apiErr APIError
	if err := json.Unmarshal(raw, &apiErr); err != nil || apiErr.Message == "" {
		return statusError(code, shared.ErrArchiveNotFound, nil, string(raw))
	}
	return statusError(code, shared.ErrArchiveNotFound, &apiErr, "")
}

// statusError maps an error response onto the shared sentinels. notFound is used for 404s.
func statusError(code int, notFound error, apiErr *APIError, fallback string) error {
	msg := strings.TrimSpace(fallback)
	if apiErr != nil && apiErr.Message != "" {
		msg = apiErr.Message
	}
	if msg == "" {
		msg = http.StatusText(code)
	}

	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", shared.ErrNotAuthenticated, msg)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", notFound, msg)
	case http.StatusServiceUnavailable:
		return fmt.Errorf("%w: %s", shared.ErrServiceUnavailable, msg)
	default:
		return fmt.Errorf("%w: status %d: %s", shared.ErrAPIRequest, code, msg)
	}
}
