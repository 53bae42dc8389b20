package ports

import (
	"context"

	"hfcheck/domain/survey"
)

// SourceLoaderPort fetches and parses tabular survey sources
type SourceLoaderPort interface {
	// Load returns one raw table per source, in the given order. Any failure
	// is fatal and wraps core.ErrSourceUnavailable.
	Load(ctx context.Context, sources []survey.Source) ([]survey.RawTable, error)
}

// FetcherPort retrieves the bytes behind a source location
type FetcherPort interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}
