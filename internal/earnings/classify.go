package earnings

import (
	"sort"
	"time"

	"earnings-ledger/internal/models"
)

// DayStatus is the outcome of classifying one calendar day.
type DayStatus string

const (
	StatusMet     DayStatus = "met"
	StatusPartial DayStatus = "partial"
	StatusDebt    DayStatus = "debt"
)

// Classify returns Debt for a missing record, Met when the amount reaches
// the record's own goal (inclusive) and Partial otherwise.
func Classify(rec *models.EarningRecord) DayStatus {
	if rec == nil {
		return StatusDebt
	}
	if rec.Amount.GreaterThanOrEqual(rec.Goal) {
		return StatusMet
	}
	return StatusPartial
}

// dayIndex maps "YYYY-MM-DD" in one location to the record of that day.
type dayIndex struct {
	loc   *time.Location
	byDay map[string]*models.EarningRecord
}

// indexRecords keys records by calendar day in loc. Should a day hold more
// than one record, the earliest created one wins.
func indexRecords(records []models.EarningRecord, loc *time.Location) dayIndex {
	idx := dayIndex{loc: loc, byDay: make(map[string]*models.EarningRecord, len(records))}
	for i := range records {
		rec := &records[i]
		key := dayKey(rec.Date.In(loc))
		if prev, ok := idx.byDay[key]; ok && !rec.CreatedAt.Before(prev.CreatedAt) {
			continue
		}
		idx.byDay[key] = rec
	}
	return idx
}

func (idx dayIndex) get(day time.Time) *models.EarningRecord {
	return idx.byDay[dayKey(day.In(idx.loc))]
}

func (idx dayIndex) has(day time.Time) bool {
	return idx.get(day) != nil
}

// sortRecords orders records chronologically, oldest first.
func sortRecords(records []models.EarningRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].Date.Equal(records[j].Date) {
			return records[i].Date.Before(records[j].Date)
		}
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
}
