// Package services implements [Client] for the remote archive extraction service.
//
// # Endpoints
//
//   - GET /listZip?archive=<id> returns {"files": [...], "count": n}
//   - POST /extractZip {"archive", "paths", "destination"} streams "data: <line>" frames and
//     reports the extraction id in the X-Extraction-ID header
//   - POST /cancel {"extractionId"} stops a running extraction; the response is ignored
//
// # Transport
//
// [ExtractService] is built on a resty client whose underlying [http.Client] comes from
// [NewHTTPClient]: a static oauth2 token source attaches the configured bearer credential to every
// request. Requests are throttled client-side with a token bucket when a rate is configured.
//
// The client has no overall timeout because extraction streams are long-lived. List and Cancel
// bound themselves with the configured timeout; Open is bounded only by its context, which the
// job controller cancels when the user aborts the run. Only List is retried, and only when
// [Options.ListRetries] is set; extraction and cancel requests are sent once.
//
// # Error Handling
//
// Error responses ({"error": true, "status": n, "message": "..."}) map onto shared sentinels:
//   - [shared.ErrNotAuthenticated] : 401 or 403
//   - [shared.ErrArchiveNotFound] : 404 from list or extract
//   - [shared.ErrRunNotFound] : 404 from cancel
//   - [shared.ErrServiceUnavailable] : 503 or a transport failure
//   - [shared.ErrAPIRequest] : any other non-2xx status
//
// Open wraps these in [job.SetupError] so the controller can return the session to selection.
package services
