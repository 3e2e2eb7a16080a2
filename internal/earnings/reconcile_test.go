package earnings

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"earnings-ledger/internal/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

// saoPaulo has no midnight on 2018-11-04: clocks jumped from 00:00 to 01:00.
func saoPaulo(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)
	return loc
}

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func rec(id string, date time.Time, amount, goal int64) models.EarningRecord {
	return models.EarningRecord{
		ID:        id,
		Date:      date,
		Amount:    dec(amount),
		Goal:      dec(goal),
		Origin:    models.OriginOrganic,
		CreatedAt: date.Add(12 * time.Hour),
	}
}

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func planOpts(policy LeftoverPolicy) PlanOptions {
	return PlanOptions{Leftover: policy, NewID: seqIDs(), Now: day(2025, 3, 31)}
}

// ---------- classifier ----------

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		rec  *models.EarningRecord
		want DayStatus
	}{
		{"missing", nil, StatusDebt},
		{"above goal", &models.EarningRecord{Amount: dec(30000), Goal: dec(28000)}, StatusMet},
		{"exactly goal", &models.EarningRecord{Amount: dec(28000), Goal: dec(28000)}, StatusMet},
		{"below goal", &models.EarningRecord{Amount: dec(27999), Goal: dec(28000)}, StatusPartial},
		{"zero amount", &models.EarningRecord{Amount: decimal.Zero, Goal: dec(28000)}, StatusPartial},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.rec))
		})
	}
}

func TestClassify_UsesRecordGoal(t *testing.T) {
	// captured goal 100, even if the current goal is now higher
	r := rec("a", day(2025, 3, 1), 100, 100)
	assert.Equal(t, StatusMet, Classify(&r))
}

func TestIndexRecords_EarliestWins(t *testing.T) {
	first := rec("first", day(2025, 3, 1), 10, 100)
	second := rec("second", day(2025, 3, 1), 500, 100)
	second.CreatedAt = first.CreatedAt.Add(time.Hour)

	idx := indexRecords([]models.EarningRecord{second, first}, time.UTC)
	require.NotNil(t, idx.get(day(2025, 3, 1)))
	assert.Equal(t, "first", idx.get(day(2025, 3, 1)).ID)
	assert.False(t, idx.has(day(2025, 3, 2)))
}

// ---------- statistics ----------

func TestComputeMonthlyStatistics_CurrentMonth(t *testing.T) {
	records := []models.EarningRecord{
		rec("a", day(2025, 3, 1), 100, 100),
		rec("b", day(2025, 3, 2), 50, 100),
		rec("c", day(2025, 3, 5), 200, 100),
		rec("feb", day(2025, 2, 28), 9999, 100),
	}
	expenses := []models.Expense{
		{ID: "e1", Date: day(2025, 3, 3), Amount: dec(30), Category: "food"},
		{ID: "e2", Date: day(2025, 4, 1), Amount: dec(999), Category: "rent"},
	}

	st := ComputeMonthlyStatistics(records, expenses, day(2025, 3, 17), day(2025, 3, 10), dec(100))

	assert.Equal(t, day(2025, 3, 1), st.Month)
	assert.Equal(t, 10, st.DaysPassed)
	assert.Equal(t, 3, st.DaysTracked)
	assert.Equal(t, 7, st.DaysMissed)
	assert.True(t, st.TotalEarned.Equal(dec(350)), st.TotalEarned.String())
	assert.True(t, st.TotalGoal.Equal(dec(1000)))
	assert.True(t, st.TotalDebt.Equal(dec(700)))
	assert.True(t, st.TotalExpenses.Equal(dec(30)))
	assert.True(t, st.NetProfit.Equal(dec(320)))
	assert.Equal(t, "116.67", st.AverageDaily.StringFixed(2))
	assert.True(t, st.BestDay.Equal(dec(200)))
	assert.True(t, st.WorstDay.Equal(dec(50)))
}

func TestComputeMonthlyStatistics_OtherMonths(t *testing.T) {
	today := day(2025, 3, 10)

	past := ComputeMonthlyStatistics(nil, nil, day(2025, 2, 1), today, dec(100))
	assert.Equal(t, 28, past.DaysPassed)
	assert.Equal(t, 28, past.DaysMissed)
	assert.True(t, past.TotalDebt.Equal(dec(2800)))

	leap := ComputeMonthlyStatistics(nil, nil, day(2024, 2, 1), today, dec(100))
	assert.Equal(t, 29, leap.DaysPassed)

	future := ComputeMonthlyStatistics(nil, nil, day(2025, 4, 1), today, dec(100))
	assert.Equal(t, 30, future.DaysPassed)
}

func TestComputeMonthlyStatistics_Empty(t *testing.T) {
	st := ComputeMonthlyStatistics(nil, nil, day(2025, 3, 1), day(2025, 3, 1), dec(100))

	assert.Equal(t, 1, st.DaysPassed)
	assert.Equal(t, 0, st.DaysTracked)
	assert.True(t, st.AverageDaily.IsZero())
	assert.True(t, st.BestDay.IsZero())
	assert.True(t, st.WorstDay.IsZero())
}

func TestComputeMonthlyStatistics_MissedNeverNegative(t *testing.T) {
	records := []models.EarningRecord{
		rec("a", day(2025, 3, 1), 100, 100),
		rec("b", day(2025, 3, 2), 100, 100),
	}
	st := ComputeMonthlyStatistics(records, nil, day(2025, 3, 1), day(2025, 3, 1), dec(100))

	assert.Equal(t, 2, st.DaysTracked)
	assert.Equal(t, 0, st.DaysMissed)
	assert.True(t, st.TotalDebt.IsZero())
}

func TestComputeMonthlyStatistics_UsesCurrentGoal(t *testing.T) {
	records := []models.EarningRecord{rec("a", day(2025, 3, 1), 100, 100)}
	st := ComputeMonthlyStatistics(records, nil, day(2025, 3, 1), day(2025, 3, 2), dec(300))

	assert.True(t, st.TotalGoal.Equal(dec(600)))
	assert.True(t, st.TotalDebt.Equal(dec(300)))
}

func TestMonthlyStatistics_MarshalJSON(t *testing.T) {
	records := []models.EarningRecord{rec("a", day(2025, 3, 1), 100, 100)}
	st := ComputeMonthlyStatistics(records, nil, day(2025, 3, 1), day(2025, 3, 1), dec(100))

	raw, err := json.Marshal(st)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"month":"2025-03"`)
	assert.Contains(t, string(raw), `"totalEarned":100`)
	assert.Contains(t, string(raw), `"daysMissed":0`)
}

// ---------- distributor ----------

func TestPlanEarning_NoDebtSurplusToSavings(t *testing.T) {
	state := State{Savings: dec(10), DailyGoal: dec(100)}

	plan, err := PlanEarning(state, dec(150), "", day(2025, 3, 1), planOpts(LeftoverDrop))
	require.NoError(t, err)

	assert.False(t, plan.DidPayDebt)
	assert.Empty(t, plan.Payments)
	assert.True(t, plan.SavingsCredit.Equal(dec(50)))
	assert.True(t, plan.Savings.Equal(dec(60)))
	assert.True(t, plan.SurplusApplied.Equal(dec(50)))
	require.Len(t, plan.Records, 1)
	assert.Equal(t, models.OriginOrganic, plan.Records[0].Origin)
	assert.True(t, plan.Records[0].Goal.Equal(dec(100)))
}

func TestPlanEarning_NoSurplus(t *testing.T) {
	state := State{DailyGoal: dec(100)}

	for _, amount := range []int64{40, 100} {
		plan, err := PlanEarning(state, dec(amount), "", day(2025, 3, 5), planOpts(LeftoverSavings))
		require.NoError(t, err)
		assert.Empty(t, plan.Payments)
		assert.True(t, plan.Savings.IsZero())
		assert.True(t, plan.SurplusApplied.IsZero())
		assert.True(t, plan.Entry.Amount.Equal(dec(amount)))
	}
}

func TestPlanEarning_PaysOldestDebtFirst(t *testing.T) {
	state := State{DailyGoal: dec(100)}

	plan, err := PlanEarning(state, dec(350), "big day", day(2025, 3, 10), planOpts(LeftoverDrop))
	require.NoError(t, err)

	require.True(t, plan.DidPayDebt)
	// ceil(250/100) payments, oldest first, summing to the surplus
	require.Len(t, plan.Payments, 3)
	want := []struct {
		day    int
		amount int64
	}{{1, 100}, {2, 100}, {3, 50}}
	sum := decimal.Zero
	for i, w := range want {
		p := plan.Payments[i]
		assert.Equal(t, day(2025, 3, w.day), p.Date)
		assert.True(t, p.Amount.Equal(dec(w.amount)), "payment %d: %s", i, p.Amount)
		assert.Equal(t, models.OriginDebtPayment, p.Origin)
		assert.True(t, p.IsSynthetic())
		assert.Contains(t, p.Notes, "2025-03-10")
		sum = sum.Add(p.Amount)
	}
	assert.True(t, sum.Equal(plan.Surplus))
	assert.True(t, plan.SurplusApplied.Equal(dec(250)))
	assert.True(t, plan.Leftover.IsZero())
	assert.True(t, plan.Savings.IsZero())
	assert.True(t, plan.DebtBefore.Equal(dec(900)))

	// the entry is kept at its full amount
	assert.True(t, plan.Entry.Amount.Equal(dec(350)))
	assert.Equal(t, "big day", plan.Entry.Notes)
	assert.Len(t, plan.Records, 4)
	for i := 1; i < len(plan.Records); i++ {
		assert.False(t, plan.Records[i].Date.Before(plan.Records[i-1].Date))
	}
}

func TestPlanEarning_Scenario(t *testing.T) {
	// goal 28000, day 1 met, days 2-3 empty, day 4 brings in 70000
	state := State{
		Records:   []models.EarningRecord{rec("d1", day(2025, 3, 1), 28000, 28000)},
		Savings:   dec(5000),
		DailyGoal: dec(28000),
	}

	plan, err := PlanEarning(state, dec(70000), "", day(2025, 3, 4), planOpts(LeftoverDrop))
	require.NoError(t, err)

	assert.True(t, plan.DebtBefore.Equal(dec(56000)))
	assert.True(t, plan.Surplus.Equal(dec(42000)))
	require.Len(t, plan.Payments, 2)
	assert.Equal(t, day(2025, 3, 2), plan.Payments[0].Date)
	assert.True(t, plan.Payments[0].Amount.Equal(dec(28000)))
	assert.Equal(t, day(2025, 3, 3), plan.Payments[1].Date)
	assert.True(t, plan.Payments[1].Amount.Equal(dec(14000)))
	assert.True(t, plan.Savings.Equal(dec(5000)))

	idx := indexRecords(plan.Records, time.UTC)
	assert.Equal(t, StatusMet, Classify(idx.get(day(2025, 3, 2))))
	assert.Equal(t, StatusPartial, Classify(idx.get(day(2025, 3, 3))))
	assert.Equal(t, StatusMet, Classify(idx.get(day(2025, 3, 4))))
	assert.Equal(t, 1, GoalStreak(plan.Records, day(2025, 3, 4)))
}

func TestPlanEarning_Leftover(t *testing.T) {
	state := State{DailyGoal: dec(100)}

	t.Run("drop", func(t *testing.T) {
		plan, err := PlanEarning(state, dec(350), "", day(2025, 3, 2), planOpts(LeftoverDrop))
		require.NoError(t, err)
		require.Len(t, plan.Payments, 1)
		assert.True(t, plan.Leftover.Equal(dec(150)))
		assert.True(t, plan.Savings.IsZero())
		assert.True(t, plan.SurplusApplied.Equal(dec(100)))
	})

	t.Run("savings", func(t *testing.T) {
		plan, err := PlanEarning(state, dec(350), "", day(2025, 3, 2), planOpts(LeftoverSavings))
		require.NoError(t, err)
		require.Len(t, plan.Payments, 1)
		assert.True(t, plan.Leftover.IsZero())
		assert.True(t, plan.SavingsCredit.Equal(dec(150)))
		assert.True(t, plan.Savings.Equal(dec(150)))
		assert.True(t, plan.SurplusApplied.Equal(dec(250)))
	})
}

func TestPlanEarning_MidnightDSTGap(t *testing.T) {
	loc := saoPaulo(t)
	today := time.Date(2018, 11, 10, 12, 0, 0, 0, loc)

	plan, err := PlanEarning(State{DailyGoal: dec(100)}, dec(1500), "", today, planOpts(LeftoverDrop))
	require.NoError(t, err)

	assert.True(t, plan.DebtBefore.Equal(dec(900)))
	require.Len(t, plan.Payments, 9)
	seen := map[string]int{}
	for i, p := range plan.Payments {
		assert.Equal(t, fmt.Sprintf("2018-11-%02d", i+1), dayKey(p.Date.In(loc)))
		seen[dayKey(p.Date.In(loc))]++
	}
	assert.Len(t, seen, 9)
	assert.True(t, plan.SurplusApplied.Equal(dec(900)))
	assert.True(t, plan.Leftover.Equal(dec(500)))
	assert.Equal(t, "2018-11-10", dayKey(plan.Entry.Date.In(loc)))
}

func TestPlanEarning_DayAfterMidnightDSTGap(t *testing.T) {
	loc := saoPaulo(t)
	state := State{
		Records:   []models.EarningRecord{rec("d3", time.Date(2018, 11, 3, 12, 0, 0, 0, loc), 100, 100)},
		DailyGoal: dec(100),
	}

	plan, err := PlanEarning(state, dec(100), "", time.Date(2018, 11, 4, 12, 0, 0, 0, loc), planOpts(LeftoverDrop))
	require.NoError(t, err)
	assert.Equal(t, "2018-11-04", dayKey(plan.Entry.Date.In(loc)))
	assert.Equal(t, 2, GoalStreak(plan.Records, time.Date(2018, 11, 4, 20, 0, 0, 0, loc)))
}

func TestPlanEarning_DebtStaysInMonth(t *testing.T) {
	// February is entirely empty but only March days are paid
	state := State{DailyGoal: dec(100)}

	plan, err := PlanEarning(state, dec(200), "", day(2025, 3, 1), planOpts(LeftoverDrop))
	require.NoError(t, err)
	assert.Empty(t, plan.Payments)
	assert.True(t, plan.Savings.Equal(dec(100)))
}

func TestPlanEarning_Rejects(t *testing.T) {
	state := State{
		Records:   []models.EarningRecord{rec("a", day(2025, 3, 5), 10, 100)},
		DailyGoal: dec(100),
	}
	cases := []struct {
		name   string
		state  State
		amount decimal.Decimal
		field  string
	}{
		{"zero", state, decimal.Zero, "amount"},
		{"negative", state, dec(-5), "amount"},
		{"too large", state, dec(2_000_000_000), "amount"},
		{"duplicate", state, dec(50), "date"},
		{"no goal", State{}, dec(50), "daily goal"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := PlanEarning(tc.state, tc.amount, "", day(2025, 3, 5), planOpts(LeftoverDrop))
			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			assert.Equal(t, tc.field, ve.Field)
		})
	}

	_, err := PlanEarning(state, dec(50), "", day(2025, 3, 5), planOpts(LeftoverDrop))
	assert.ErrorIs(t, err, ErrDuplicateEntry)
}

func TestPlanEarning_DoesNotMutateState(t *testing.T) {
	records := []models.EarningRecord{rec("a", day(2025, 3, 1), 100, 100)}
	state := State{Records: records, DailyGoal: dec(100)}

	_, err := PlanEarning(state, dec(500), "", day(2025, 3, 5), planOpts(LeftoverDrop))
	require.NoError(t, err)
	assert.Len(t, state.Records, 1)
	assert.Equal(t, "a", state.Records[0].ID)
}

func TestPlan_MarshalJSON(t *testing.T) {
	plan, err := PlanEarning(State{DailyGoal: dec(100)}, dec(100), "", day(2025, 3, 1), planOpts(LeftoverDrop))
	require.NoError(t, err)

	raw, err := json.Marshal(plan)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"payments":[]`)
	assert.Contains(t, string(raw), `"didPayDebt":false`)
	assert.Contains(t, string(raw), `"surplusApplied":0`)
}

// ---------- streak ----------

func TestGoalStreak(t *testing.T) {
	today := day(2025, 3, 10)
	cases := []struct {
		name    string
		records []models.EarningRecord
		want    int
	}{
		{"empty", nil, 0},
		{"today missing", []models.EarningRecord{rec("a", day(2025, 3, 9), 100, 100)}, 0},
		{"today partial", []models.EarningRecord{rec("a", day(2025, 3, 10), 99, 100)}, 0},
		{"only today", []models.EarningRecord{rec("a", day(2025, 3, 10), 100, 100)}, 1},
		{"broken by gap", []models.EarningRecord{
			rec("a", day(2025, 3, 10), 100, 100),
			rec("b", day(2025, 3, 9), 120, 100),
			rec("c", day(2025, 3, 7), 100, 100),
		}, 2},
		{"broken by partial", []models.EarningRecord{
			rec("a", day(2025, 3, 10), 100, 100),
			rec("b", day(2025, 3, 9), 50, 100),
			rec("c", day(2025, 3, 8), 100, 100),
		}, 1},
		{"across months", []models.EarningRecord{
			rec("a", day(2025, 3, 2), 100, 100),
			rec("b", day(2025, 3, 1), 100, 100),
			rec("c", day(2025, 2, 28), 100, 100),
		}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, GoalStreak(tc.records, today))
		})
	}

	across := []models.EarningRecord{
		rec("a", day(2025, 3, 2), 100, 100),
		rec("b", day(2025, 3, 1), 100, 100),
		rec("c", day(2025, 2, 28), 100, 100),
	}
	assert.Equal(t, 3, GoalStreak(across, day(2025, 3, 2)))
}

func TestParseLeftoverPolicy(t *testing.T) {
	p, err := ParseLeftoverPolicy("")
	require.NoError(t, err)
	assert.Equal(t, LeftoverDrop, p)

	p, err = ParseLeftoverPolicy("savings")
	require.NoError(t, err)
	assert.Equal(t, LeftoverSavings, p)

	_, err = ParseLeftoverPolicy("bank")
	assert.Error(t, err)
}
