package aggregate

import (
	"sort"
	"time"

	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/model"
)

// DayLayout is the calendar day key format. Days are computed in UTC.
const DayLayout = "2006-01-02"

// UndatedKey holds transactions whose timestamp could not be read.
const UndatedKey = model.UndatedDayKey

// DayKey returns the UTC calendar day of t, or UndatedKey for the zero time.
func DayKey(t time.Time) string {
	if t.IsZero() {
		return UndatedKey
	}
	return t.UTC().Format(DayLayout)
}

// GroupByDay partitions transactions by UTC calendar day.
// Each bucket is ordered most recent first, with the ID as a tie-breaker.
func GroupByDay(transactions []model.Transaction) model.GroupedTransactions {
	grouped := make(model.GroupedTransactions)
	for _, t := range transactions {
		key := DayKey(t.DateTime)
		grouped[key] = append(grouped[key], t)
	}

	for _, bucket := range grouped {
		sort.SliceStable(bucket, func(i, j int) bool {
			if !bucket[i].DateTime.Equal(bucket[j].DateTime) {
				return bucket[i].DateTime.After(bucket[j].DateTime)
			}
			return bucket[i].ID < bucket[j].ID
		})
	}
	return grouped
}
