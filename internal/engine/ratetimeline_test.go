package engine

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpratama/loan-ledger-engine/internal/domain"
	customError "github.com/hpratama/loan-ledger-engine/pkg/errors"
)

func rateChange(year int, month time.Month, rate float64) domain.RateChange {
	return domain.RateChange{
		EffectiveDate: time.Date(year, month, 1, 0, 0, 0, 0, time.UTC),
		AnnualRate:    decimal.NewFromFloat(rate),
	}
}

func TestRateTimelineResolution(t *testing.T) {
	// Deliberately unsorted input; the timeline sorts once on construction.
	timeline, err := newRateTimeline([]domain.RateChange{
		rateChange(2025, time.June, 15),
		rateChange(2024, time.January, 12),
		rateChange(2024, time.September, 13.5),
	})
	require.NoError(t, err)

	tests := []struct {
		name     string
		month    time.Time
		wantRate float64
		wantOK   bool
	}{
		{
			name:     "Before any change",
			month:    time.Date(2023, time.December, 1, 0, 0, 0, 0, time.UTC),
			wantOK:   false,
		},
		{
			name:     "Exact effective month",
			month:    time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
			wantRate: 12,
			wantOK:   true,
		},
		{
			name:     "Between changes picks the latest prior",
			month:    time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
			wantRate: 13.5,
			wantOK:   true,
		},
		{
			name:     "After the last change",
			month:    time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC),
			wantRate: 15,
			wantOK:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rate, ok := timeline.rateFor(tt.month)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.True(t, rate.Equal(decimal.NewFromFloat(tt.wantRate)), "got %s", rate)
			}
		})
	}
}

func TestRateTimelineMidMonthEffectiveDateCoversItsMonth(t *testing.T) {
	timeline, err := newRateTimeline([]domain.RateChange{
		{
			EffectiveDate: time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC),
			AnnualRate:    decimal.NewFromInt(10),
		},
	})
	require.NoError(t, err)

	rate, ok := timeline.rateFor(time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC))
	assert.True(t, ok)
	assert.True(t, rate.Equal(decimal.NewFromInt(10)))

	_, ok = timeline.rateFor(time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC))
	assert.False(t, ok)
}

func TestRateTimelineEmpty(t *testing.T) {
	timeline, err := newRateTimeline(nil)
	require.NoError(t, err)

	_, ok := timeline.rateFor(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC))
	assert.False(t, ok)
}

func TestRateTimelineRejectsDuplicateEffectiveDates(t *testing.T) {
	_, err := newRateTimeline([]domain.RateChange{
		rateChange(2024, time.January, 12),
		rateChange(2024, time.January, 13),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, customError.ErrDuplicateRateChange)
}

func TestRateTimelineChangedIn(t *testing.T) {
	timeline, err := newRateTimeline([]domain.RateChange{
		rateChange(2024, time.January, 12),
		rateChange(2024, time.July, 14),
	})
	require.NoError(t, err)

	assert.True(t, timeline.changedIn(time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, timeline.changedIn(time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)))
}
