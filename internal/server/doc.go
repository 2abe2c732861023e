// Package server provides a local stand-in for the remote archive extraction service.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support. [BasicRouter] uses
// [http.ServeMux] internally; middleware added first wraps outermost. Middleware registered with
// [BasicRouter.Use] applies to routes registered after the call, so [NewRouter] leaves /health
// outside bearer authentication.
//
// # Extraction API
//
// [ExtractHandler] serves /listZip, /extractZip and /cancel from a [Catalog]. [ZipCatalog] reads
// zip files below a root directory and extracts entries with archive/zip, refusing any path that
// would escape the destination. Each running extraction is registered under a uuid in a
// [Registry]; the id is returned in the X-Extraction-ID header and /cancel uses it to stop the
// job between entries.
//
// The stream frames match what the extraction client classifies: a start announcement,
// "Extracting: <entry>", "✓ Done: <entry>" and a final "All files extracted successfully.".
// Failures end the stream with "ERROR: <reason>".
package server
