package health

import "time"

// HTTP header constants.
const (
	// HeaderContentType is the Content-Type header name.
	HeaderContentType = "Content-Type"
)

// Content type constants.
const (
	// ContentTypeJSON is the JSON content type.
	ContentTypeJSON = "application/json"
)

// Probe paths.
const (
	PathLiveness  = "/healthz"
	PathReadiness = "/readyz"
	PathStartup   = "/startupz"
)

// DefaultProbeTimeout bounds a single probe run.
const DefaultProbeTimeout = 10 * time.Second
