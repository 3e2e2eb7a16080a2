package earnings

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"earnings-ledger/internal/models"
)

// MonthlyStatistics is derived on demand and never stored.
type MonthlyStatistics struct {
	Month         time.Time
	DailyGoal     decimal.Decimal
	DaysPassed    int
	DaysTracked   int
	DaysMissed    int
	TotalEarned   decimal.Decimal
	TotalGoal     decimal.Decimal
	TotalDebt     decimal.Decimal
	TotalExpenses decimal.Decimal
	NetProfit     decimal.Decimal
	AverageDaily  decimal.Decimal
	BestDay       decimal.Decimal
	WorstDay      decimal.Decimal
}

// ComputeMonthlyStatistics aggregates the month containing month.
//
// Elapsed days are counted up to today for the current month and over the
// whole month otherwise. Goal and debt totals use dailyGoal, the goal in
// force now, not the goals captured on each record. All dates are read in
// today's location.
func ComputeMonthlyStatistics(records []models.EarningRecord, expenses []models.Expense, month, today time.Time, dailyGoal decimal.Decimal) MonthlyStatistics {
	loc := today.Location()
	month = monthOf(month, loc)
	today = dayOf(today, loc)

	st := MonthlyStatistics{
		Month:         month,
		DailyGoal:     dailyGoal,
		TotalEarned:   decimal.Zero,
		TotalExpenses: decimal.Zero,
		AverageDaily:  decimal.Zero,
		BestDay:       decimal.Zero,
		WorstDay:      decimal.Zero,
	}

	if sameMonth(month, today) {
		st.DaysPassed = today.Day()
	} else {
		st.DaysPassed = daysInMonth(month)
	}

	first := true
	for _, rec := range records {
		if !sameMonth(dayOf(rec.Date, loc), month) {
			continue
		}
		st.DaysTracked++
		st.TotalEarned = st.TotalEarned.Add(rec.Amount)
		if first || rec.Amount.GreaterThan(st.BestDay) {
			st.BestDay = rec.Amount
		}
		if first || rec.Amount.LessThan(st.WorstDay) {
			st.WorstDay = rec.Amount
		}
		first = false
	}

	for _, exp := range expenses {
		if sameMonth(dayOf(exp.Date, loc), month) {
			st.TotalExpenses = st.TotalExpenses.Add(exp.Amount)
		}
	}

	// records outside the elapsed range must not push this negative
	st.DaysMissed = st.DaysPassed - st.DaysTracked
	if st.DaysMissed < 0 {
		st.DaysMissed = 0
	}

	st.TotalGoal = dailyGoal.Mul(decimal.NewFromInt(int64(st.DaysPassed)))
	st.TotalDebt = dailyGoal.Mul(decimal.NewFromInt(int64(st.DaysMissed)))
	st.NetProfit = st.TotalEarned.Sub(st.TotalExpenses)
	if st.DaysTracked > 0 {
		st.AverageDaily = st.TotalEarned.Div(decimal.NewFromInt(int64(st.DaysTracked))).Round(2)
	}
	return st
}

func (s MonthlyStatistics) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Month         string      `json:"month"`
		DailyGoal     json.Number `json:"dailyGoal"`
		DaysPassed    int         `json:"daysPassed"`
		DaysTracked   int         `json:"daysTracked"`
		DaysMissed    int         `json:"daysMissed"`
		TotalEarned   json.Number `json:"totalEarned"`
		TotalGoal     json.Number `json:"totalGoal"`
		TotalDebt     json.Number `json:"totalDebt"`
		TotalExpenses json.Number `json:"totalExpenses"`
		NetProfit     json.Number `json:"netProfit"`
		AverageDaily  json.Number `json:"averageDaily"`
		BestDay       json.Number `json:"bestDay"`
		WorstDay      json.Number `json:"worstDay"`
	}{
		Month:         s.Month.Format("2006-01"),
		DailyGoal:     number(s.DailyGoal),
		DaysPassed:    s.DaysPassed,
		DaysTracked:   s.DaysTracked,
		DaysMissed:    s.DaysMissed,
		TotalEarned:   number(s.TotalEarned),
		TotalGoal:     number(s.TotalGoal),
		TotalDebt:     number(s.TotalDebt),
		TotalExpenses: number(s.TotalExpenses),
		NetProfit:     number(s.NetProfit),
		AverageDaily:  number(s.AverageDaily),
		BestDay:       number(s.BestDay),
		WorstDay:      number(s.WorstDay),
	})
}

// number renders d as a plain JSON number.
func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}
