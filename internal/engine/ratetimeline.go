package engine

import (
	"sort"
	"time"

	"github.com/hpratama/loan-ledger-engine/internal/domain"
	customError "github.com/hpratama/loan-ledger-engine/pkg/errors"
	"github.com/hpratama/loan-ledger-engine/pkg/dates"

	"github.com/shopspring/decimal"
)

// rateTimeline resolves the annual rate in effect for any month from the
// loan's effective-dated rate history. The history is sorted once per engine
// run; lookups binary-search the sorted slice.
type rateTimeline struct {
	changes []domain.RateChange
}

func newRateTimeline(changes []domain.RateChange) (*rateTimeline, error) {
	sorted := make([]domain.RateChange, len(changes))
	copy(sorted, changes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].EffectiveDate.Before(sorted[j].EffectiveDate)
	})

	// Duplicate effective dates are invalid input, not a tie to break.
	for i := 1; i < len(sorted); i++ {
		if sorted[i].EffectiveDate.Equal(sorted[i-1].EffectiveDate) {
			return nil, customError.WrapDuplicateRateChange(sorted[i].EffectiveDate.Format("2006-01-02"))
		}
	}

	return &rateTimeline{changes: sorted}, nil
}

// rateFor returns the rate from the latest change whose effective date falls
// in or before the given month. The second return is false when no rate
// covers the month.
func (t *rateTimeline) rateFor(month time.Time) (decimal.Decimal, bool) {
	boundary := dates.NextMonth(month)
	i := sort.Search(len(t.changes), func(i int) bool {
		return !t.changes[i].EffectiveDate.Before(boundary)
	})
	if i == 0 {
		return decimal.Zero, false
	}
	return t.changes[i-1].AnnualRate, true
}

// changedIn reports whether any rate change takes effect during the given
// calendar month.
func (t *rateTimeline) changedIn(month time.Time) bool {
	for _, c := range t.changes {
		if dates.SameMonth(c.EffectiveDate, month) {
			return true
		}
	}
	return false
}
