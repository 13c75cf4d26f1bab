package storage

import (
	"context"
	"errors"

	"github.com/neelabalan/growatt-dashboard/pkg/models"
)

// Sink persists telemetry samples for one plant. Implementations must
// tolerate being handed the same samples again: the collector re-fetches
// the current day every cycle.
type Sink interface {
	WritePower(ctx context.Context, plantID string, samples []models.PowerSample) error
	WriteEnergy(ctx context.Context, plantID string, samples []models.EnergySample) error
	Close() error
}

// MultiSink fans writes out to every configured sink. All sinks are
// attempted even when one fails; the errors are joined so the caller can
// log them in one place.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink wraps the given sinks. With a single sink it is returned
// as-is.
func NewMultiSink(sinks ...Sink) Sink {
	if len(sinks) == 1 {
		return sinks[0]
	}
	return &MultiSink{sinks: sinks}
}

func (m *MultiSink) WritePower(ctx context.Context, plantID string, samples []models.PowerSample) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.WritePower(ctx, plantID, samples); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiSink) WriteEnergy(ctx context.Context, plantID string, samples []models.EnergySample) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.WriteEnergy(ctx, plantID, samples); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiSink) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
