package source

import (
	"context"
	"time"
)

// Extract is one fetched upstream tabular extract
type Extract struct {
	Dataset string
	Body    []byte
	// Revision is the upstream revision reference, empty when the upstream reports none
	Revision  string
	FetchedAt time.Time
}

// Source resolves a dataset name to its current extract
//
//go:generate mockgen -source=source.go -destination=../mocks/source.go -package=mocks -mock_names=Source=MockSource
type Source interface {
	// Fetch returns the current extract for dataset.
	// Transport failures wrap domain.ErrUpstreamUnreachable;
	// a response that can never succeed wraps domain.ErrMalformedExtract.
	Fetch(ctx context.Context, dataset string) (*Extract, error)
}
