package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neelabalan/growatt-dashboard/pkg/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestWritePowerAndStats(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	midnight := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	samples := []models.PowerSample{
		{Time: midnight, Watts: 0},
		{Time: midnight.Add(5 * time.Minute), Watts: 500},
	}
	require.NoError(t, store.WritePower(ctx, "123", samples))

	stats, err := store.PowerStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Rows)
	assert.Equal(t, midnight.Unix(), stats.Oldest.Unix())
	assert.Equal(t, midnight.Add(5*time.Minute).Unix(), stats.Newest.Unix())
}

func TestWritePowerUpserts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ts := time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.WritePower(ctx, "123", []models.PowerSample{{Time: ts, Watts: 100}}))
	require.NoError(t, store.WritePower(ctx, "123", []models.PowerSample{{Time: ts, Watts: 250}}))

	stats, err := store.PowerStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Rows, "same timestamp must replace, not duplicate")
}

func TestWriteEnergy(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	samples := []models.EnergySample{
		{Time: first, KilowattHours: 1.2},
		{Time: first.AddDate(0, 0, 1), KilowattHours: 3.4},
	}
	require.NoError(t, store.WriteEnergy(ctx, "123", samples))

	stats, err := store.EnergyStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Rows)
}

func TestStatsEmptyTable(t *testing.T) {
	store := newTestStore(t)

	stats, err := store.PowerStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.Rows)
	assert.True(t, stats.Oldest.IsZero())
}

type failingSink struct{}

func (failingSink) WritePower(context.Context, string, []models.PowerSample) error {
	return errors.New("sink down")
}
func (failingSink) WriteEnergy(context.Context, string, []models.EnergySample) error {
	return errors.New("sink down")
}
func (failingSink) Close() error { return nil }

func TestMultiSinkContinuesPastFailure(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	multi := NewMultiSink(failingSink{}, store)

	ts := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	err := multi.WritePower(ctx, "123", []models.PowerSample{{Time: ts, Watts: 500}})
	require.Error(t, err, "failing sink error must surface")

	// the healthy sink was still written
	stats, err := store.PowerStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Rows)
}
