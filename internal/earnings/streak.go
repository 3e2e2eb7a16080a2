package earnings

import (
	"time"

	"earnings-ledger/internal/models"
)

// GoalStreak counts consecutive Met days ending at today. It stops at the
// first day without a record or below its goal; that day is not counted.
func GoalStreak(records []models.EarningRecord, today time.Time) int {
	loc := today.Location()
	idx := indexRecords(records, loc)

	streak := 0
	for d := dayOf(today, loc); ; d = dateIn(d.Year(), d.Month(), d.Day()-1, loc) {
		if Classify(idx.get(d)) != StatusMet {
			return streak
		}
		streak++
	}
}
