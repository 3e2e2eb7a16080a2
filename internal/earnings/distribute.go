package earnings

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"earnings-ledger/internal/models"
	"earnings-ledger/internal/util"
)

// LeftoverPolicy decides what happens to surplus that remains after every
// debt day of the month has been paid.
type LeftoverPolicy string

const (
	// LeftoverDrop discards the remainder.
	LeftoverDrop LeftoverPolicy = "drop"
	// LeftoverSavings credits the remainder to the savings jar.
	LeftoverSavings LeftoverPolicy = "savings"
)

// ParseLeftoverPolicy maps the config value; empty means LeftoverDrop.
func ParseLeftoverPolicy(s string) (LeftoverPolicy, error) {
	switch LeftoverPolicy(s) {
	case "", LeftoverDrop:
		return LeftoverDrop, nil
	case LeftoverSavings:
		return LeftoverSavings, nil
	}
	return "", fmt.Errorf("unknown leftover policy %q", s)
}

// debtPaymentNote marks records created by the distributor.
const debtPaymentNote = "Auto-generated: debt paid from %s surplus"

// State is everything a reconciliation step reads.
type State struct {
	Records   []models.EarningRecord
	Expenses  []models.Expense
	Savings   decimal.Decimal
	DailyGoal decimal.Decimal
}

// PlanOptions carries the knobs and sources of ids and audit time.
type PlanOptions struct {
	Leftover LeftoverPolicy
	NewID    func() string
	Now      time.Time // audit stamp; day logic only uses the today argument
}

// Plan is the full next state produced by recording one earning, plus what
// happened to the surplus. Records and Savings are persisted together.
type Plan struct {
	Records        []models.EarningRecord
	Savings        decimal.Decimal
	Entry          models.EarningRecord
	Payments       []models.EarningRecord
	Surplus        decimal.Decimal
	SurplusApplied decimal.Decimal
	SavingsCredit  decimal.Decimal
	Leftover       decimal.Decimal // surplus dropped under LeftoverDrop
	DebtBefore     decimal.Decimal
	DidPayDebt     bool
}

// PlanEarning records amount for today against state without touching any
// store.
//
// Surplus above the daily goal pays the oldest unrecorded days of today's
// month first, at most one goal per day. Only when the month carries no
// debt does the surplus go to savings. The entry itself is always kept at
// its full amount.
func PlanEarning(state State, amount decimal.Decimal, notes string, today time.Time, opts PlanOptions) (Plan, error) {
	if err := util.ValidateAmount(amount); err != nil {
		return Plan{}, invalid("amount", err)
	}
	if err := util.ValidateNotes(notes); err != nil {
		return Plan{}, invalid("notes", err)
	}
	if !state.DailyGoal.IsPositive() {
		return Plan{}, &ValidationError{Field: "daily goal", Reason: "must be positive"}
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	loc := today.Location()
	today = dayOf(today, loc)
	goal := state.DailyGoal

	if existing := indexRecords(state.Records, loc).get(today); existing != nil {
		return Plan{}, &ValidationError{
			Field:  "date",
			Reason: fmt.Sprintf("%s already has an entry", dayKey(today)),
			Err:    ErrDuplicateEntry,
		}
	}

	entry := models.EarningRecord{
		ID:        opts.NewID(),
		Date:      today,
		Amount:    amount,
		Goal:      goal,
		Notes:     notes,
		Origin:    models.OriginOrganic,
		CreatedAt: opts.Now,
		UpdatedAt: opts.Now,
	}

	next := make([]models.EarningRecord, 0, len(state.Records)+1)
	next = append(next, state.Records...)
	next = append(next, entry)

	plan := Plan{
		Entry:          entry,
		Savings:        state.Savings,
		Surplus:        decimal.Zero,
		SurplusApplied: decimal.Zero,
		SavingsCredit:  decimal.Zero,
		Leftover:       decimal.Zero,
	}

	// Debt is measured with today's entry in place: the day being recorded
	// is never a debt day.
	stats := ComputeMonthlyStatistics(next, state.Expenses, today, today, goal)
	plan.DebtBefore = stats.TotalDebt

	if amount.GreaterThan(goal) {
		surplus := amount.Sub(goal)
		plan.Surplus = surplus

		if stats.TotalDebt.IsPositive() {
			idx := indexRecords(next, loc)
			for dd := 1; dd < today.Day() && surplus.IsPositive(); dd++ {
				d := dateIn(today.Year(), today.Month(), dd, loc)
				if idx.has(d) {
					continue
				}
				payment := decimal.Min(surplus, goal)
				plan.Payments = append(plan.Payments, models.EarningRecord{
					ID:        opts.NewID(),
					Date:      d,
					Amount:    payment,
					Goal:      goal,
					Notes:     fmt.Sprintf(debtPaymentNote, dayKey(today)),
					Origin:    models.OriginDebtPayment,
					CreatedAt: opts.Now,
					UpdatedAt: opts.Now,
				})
				surplus = surplus.Sub(payment)
				plan.SurplusApplied = plan.SurplusApplied.Add(payment)
			}
			plan.DidPayDebt = len(plan.Payments) > 0

			if surplus.IsPositive() {
				if opts.Leftover == LeftoverSavings {
					plan.SavingsCredit = surplus
				} else {
					plan.Leftover = surplus
				}
			}
		} else {
			plan.SavingsCredit = surplus
		}

		plan.SurplusApplied = plan.SurplusApplied.Add(plan.SavingsCredit)
		plan.Savings = plan.Savings.Add(plan.SavingsCredit)
	}

	next = append(next, plan.Payments...)
	sortRecords(next)
	plan.Records = next
	return plan, nil
}

func (p Plan) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Entry          models.EarningRecord   `json:"entry"`
		Payments       []models.EarningRecord `json:"payments"`
		Savings        json.Number            `json:"savings"`
		Surplus        json.Number            `json:"surplus"`
		SurplusApplied json.Number            `json:"surplusApplied"`
		SavingsCredit  json.Number            `json:"savingsCredit"`
		Leftover       json.Number            `json:"leftover"`
		DebtBefore     json.Number            `json:"debtBefore"`
		DidPayDebt     bool                   `json:"didPayDebt"`
		Records        []models.EarningRecord `json:"records"`
	}{
		Entry:          p.Entry,
		Payments:       nonNil(p.Payments),
		Savings:        number(p.Savings),
		Surplus:        number(p.Surplus),
		SurplusApplied: number(p.SurplusApplied),
		SavingsCredit:  number(p.SavingsCredit),
		Leftover:       number(p.Leftover),
		DebtBefore:     number(p.DebtBefore),
		DidPayDebt:     p.DidPayDebt,
		Records:        nonNil(p.Records),
	})
}

func nonNil(records []models.EarningRecord) []models.EarningRecord {
	if records == nil {
		return []models.EarningRecord{}
	}
	return records
}
