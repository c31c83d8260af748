package domain

import "time"

// Defaults for the query request envelope and the update reconciler.
const (
	// DefaultSearchTimeout bounds the wall-clock time of one search.
	DefaultSearchTimeout = 10 * time.Second

	// DefaultPreprocessorTimeout bounds one call to the external LaTeX
	// preprocessor.
	DefaultPreprocessorTimeout = 5 * time.Second

	// DefaultStartAt is the first 1-based result offset.
	DefaultStartAt = 1

	// DefaultFormat is the response serialization used when the request
	// names none.
	DefaultFormat = FormatXML

	// UpdateBatchSize caps how many document updates one reconciler
	// batch pulls from the change feed.
	UpdateBatchSize = 100

	// SearchPageSize is how many ranked results the orchestrator asks
	// the index for per step while filling a pagination window.
	SearchPageSize = 100
)
