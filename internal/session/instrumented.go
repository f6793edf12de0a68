package session

import (
	"context"
	stderrors "errors"

	"atsmatch/internal/observability"
	"atsmatch/internal/types"
)

type instrumentedStore struct {
	Store
	backend string
	metrics *observability.Metrics
}

// WithMetrics records every load, save and clear of s. A miss on Load is
// not counted as an error.
func WithMetrics(s Store, backend string, metrics *observability.Metrics) Store {
	if metrics == nil {
		return s
	}
	return &instrumentedStore{Store: s, backend: backend, metrics: metrics}
}

func (i *instrumentedStore) Load(ctx context.Context) (*types.AnalysisSession, error) {
	s, err := i.Store.Load(ctx)
	recorded := err
	if stderrors.Is(err, ErrNotFound) {
		recorded = nil
	}
	i.metrics.RecordSessionOp(ctx, "load", i.backend, recorded)
	return s, err
}

func (i *instrumentedStore) Save(ctx context.Context, s types.AnalysisSession) error {
	err := i.Store.Save(ctx, s)
	i.metrics.RecordSessionOp(ctx, "save", i.backend, err)
	return err
}

func (i *instrumentedStore) Clear(ctx context.Context) error {
	err := i.Store.Clear(ctx)
	i.metrics.RecordSessionOp(ctx, "clear", i.backend, err)
	return err
}
