package paform

import "errors"

// Pipeline error taxonomy. Stages wrap these sentinels with %w so callers
// can classify failures with errors.Is. Individual widget write failures
// are counted, not raised.
var (
	// ErrNotFound means a referenced input file is absent.
	ErrNotFound = errors.New("file not found")

	// ErrUnsupportedFormat means the input's extension maps to no known
	// MIME type.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrServiceUnavailable means a required external capability is not
	// configured.
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrServiceError means an external call failed.
	ErrServiceError = errors.New("service error")

	// ErrExtractionFailed means no parseable structured data came back
	// from the referral text.
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrAnalysisFailed means the PA form PDF could not be opened or
	// inspected.
	ErrAnalysisFailed = errors.New("form analysis failed")

	// ErrNoMappableFields means the mapper produced an empty
	// correspondence, so there is nothing to fill.
	ErrNoMappableFields = errors.New("no mappable fields")
)
