package service

import (
	"context"
	"time"

	"github.com/sasetin42/RidersBUD-sub003/internal/models"
	"github.com/sasetin42/RidersBUD-sub003/internal/store"
)

// MeasuredPersister times every load and save of the wrapped persister.
type MeasuredPersister struct {
	next    store.Persister
	metrics *MetricsService
}

// NewMeasuredPersister wraps next with persistence metrics.
func NewMeasuredPersister(next store.Persister, metrics *MetricsService) *MeasuredPersister {
	return &MeasuredPersister{next: next, metrics: metrics}
}

// Load delegates to the wrapped persister.
func (p *MeasuredPersister) Load(ctx context.Context) (*models.DatabaseDocument, error) {
	start := time.Now()
	doc, err := p.next.Load(ctx)
	p.metrics.ObservePersist("load", err, time.Since(start))
	return doc, err
}

// Save delegates to the wrapped persister.
func (p *MeasuredPersister) Save(ctx context.Context, doc *models.DatabaseDocument, expectedVersion int64) error {
	start := time.Now()
	err := p.next.Save(ctx, doc, expectedVersion)
	p.metrics.ObservePersist("save", err, time.Since(start))
	return err
}
