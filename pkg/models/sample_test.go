package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandDayPower(t *testing.T) {
	day := time.Date(2023, 1, 1, 14, 30, 0, 0, time.UTC)

	samples := ExpandDayPower(day, []float64{0, 120.5, 500})
	require.Len(t, samples, 3)

	assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), samples[0].Time)
	assert.Equal(t, time.Date(2023, 1, 1, 0, 5, 0, 0, time.UTC), samples[1].Time)
	assert.Equal(t, time.Date(2023, 1, 1, 0, 10, 0, 0, time.UTC), samples[2].Time)
	assert.Equal(t, 500.0, samples[2].Watts)
}

func TestExpandDayPowerEmpty(t *testing.T) {
	assert.Empty(t, ExpandDayPower(time.Now(), nil))
}

func TestExpandMonthEnergy(t *testing.T) {
	// any day of the month anchors the series at the 1st
	month := time.Date(2023, 2, 17, 9, 0, 0, 0, time.UTC)

	samples := ExpandMonthEnergy(month, []float64{1.2, 3.4})
	require.Len(t, samples, 2)

	assert.Equal(t, time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC), samples[0].Time)
	assert.Equal(t, time.Date(2023, 2, 2, 0, 0, 0, 0, time.UTC), samples[1].Time)
	assert.Equal(t, 3.4, samples[1].KilowattHours)
}
