package forecast

import (
	"time"

	"github.com/pharmstock/pharmstock-backend/internal/store"
)

// UsageFromTransactions aggregates USE transactions for one drug into a
// zero-filled daily series covering the last windowDays days, oldest first.
// Zero days carry signal (no consumption), so they are kept.
func UsageFromTransactions(txns []store.Transaction, drugID string, now time.Time, windowDays int) []DayUsage {
	if windowDays <= 0 {
		return nil
	}

	start := truncateDay(now).AddDate(0, 0, -(windowDays - 1))
	byDay := make(map[time.Time]float64, windowDays)

	for _, txn := range txns {
		if txn.DrugID != drugID || txn.Action != store.ActionUse {
			continue
		}
		day := truncateDay(txn.Timestamp)
		if day.Before(start) || day.After(truncateDay(now)) {
			continue
		}
		// USE quantities are negative; usage is their magnitude.
		qty := float64(txn.QtyChange)
		if qty < 0 {
			qty = -qty
		}
		byDay[day] += qty
	}

	usage := make([]DayUsage, 0, windowDays)
	for d := 0; d < windowDays; d++ {
		day := start.AddDate(0, 0, d)
		usage = append(usage, DayUsage{Date: day, Qty: byDay[day]})
	}
	return usage
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
