package domain

import "errors"

var (
	// ErrNotFound marks an unknown product or review; surfaced to callers.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument marks malformed input, rejected before any persistence.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrEnrichmentUnavailable marks a sentiment gateway transport, status, or
	// parse failure. It is logged and absorbed by the orchestrator, never
	// surfaced to the review-creation caller.
	ErrEnrichmentUnavailable = errors.New("sentiment enrichment unavailable")
)
