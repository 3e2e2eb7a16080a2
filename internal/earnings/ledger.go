package earnings

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"earnings-ledger/internal/kvstore"
	"earnings-ledger/internal/models"
	"earnings-ledger/internal/util"
)

// DayView is one elapsed day of a month with its classification.
type DayView struct {
	Date   time.Time
	Status DayStatus
	Record *models.EarningRecord
}

func (v DayView) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Date   string                `json:"date"`
		Status DayStatus             `json:"status"`
		Record *models.EarningRecord `json:"record"`
	}{
		Date:   dayKey(v.Date),
		Status: v.Status,
		Record: v.Record,
	})
}

// MonthCalendar classifies every elapsed day of month. Days after today
// are omitted; a month entirely in the future yields an empty slice.
func (e *Engine) MonthCalendar(ctx context.Context, month, today time.Time) ([]DayView, error) {
	records, _, err := e.loadRecords(ctx)
	if err != nil {
		return nil, err
	}

	loc := e.opts.Location
	month = monthOf(month, loc)
	today = dayOf(today, loc)
	idx := indexRecords(records, loc)

	last := daysInMonth(month)
	if sameMonth(month, today) {
		last = today.Day()
	} else if month.After(today) {
		last = 0
	}

	days := make([]DayView, 0, last)
	for dd := 1; dd <= last; dd++ {
		d := dateIn(month.Year(), month.Month(), dd, loc)
		rec := idx.get(d)
		days = append(days, DayView{Date: d, Status: Classify(rec), Record: rec})
	}
	return days, nil
}

// ---------- savings ----------

// Savings returns the current jar balance. A negative stored balance
// reads as zero.
func (e *Engine) Savings(ctx context.Context) (decimal.Decimal, error) {
	return e.loadSavings(ctx)
}

// WithdrawSavings takes amount out of the jar and returns the new balance.
func (e *Engine) WithdrawSavings(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error) {
	if err := util.ValidateAmount(amount); err != nil {
		return decimal.Zero, invalid("amount", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	balance, err := e.Savings(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	if amount.GreaterThan(balance) {
		return decimal.Zero, fmt.Errorf("withdraw %s from %s: %w", amount, balance, ErrInsufficientSavings)
	}

	next := balance.Sub(amount)
	var b kvstore.Batch
	b.SetScalar(KeySavings, next)
	if err := e.commit(ctx, b); err != nil {
		return decimal.Zero, err
	}

	e.log.Info().Str("amount", amount.String()).Str("balance", next.String()).Msg("savings withdrawn")
	return next, nil
}

// ---------- expenses ----------

// ExpenseInput is a new expense as entered by the user.
type ExpenseInput struct {
	Amount   decimal.Decimal
	Category string
	Notes    string
	Date     time.Time // zero means today
}

// AddExpense validates and stores one expense.
func (e *Engine) AddExpense(ctx context.Context, in ExpenseInput, today time.Time) (models.Expense, error) {
	loc := e.opts.Location
	today = dayOf(today, loc)

	category := strings.TrimSpace(in.Category)
	notes := strings.TrimSpace(in.Notes)
	if err := util.ValidateAmount(in.Amount); err != nil {
		return models.Expense{}, invalid("amount", err)
	}
	if err := util.ValidateCategory(category); err != nil {
		return models.Expense{}, invalid("category", err)
	}
	if err := util.ValidateNotes(notes); err != nil {
		return models.Expense{}, invalid("notes", err)
	}

	date := today
	if !in.Date.IsZero() {
		date = dayOf(in.Date, loc)
	}
	if date.After(today) {
		return models.Expense{}, &ValidationError{Field: "date", Reason: "cannot be in the future"}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	expenses, skipped, err := e.loadExpenses(ctx)
	if err != nil {
		return models.Expense{}, err
	}

	exp := models.Expense{
		ID:        e.opts.NewID(),
		Date:      date,
		Amount:    in.Amount,
		Category:  category,
		Notes:     notes,
		CreatedAt: e.opts.Now(),
	}
	expenses = append(expenses, exp)

	var b kvstore.Batch
	if err := e.setList(ctx, &b, KeyExpenses, expenses, skipped); err != nil {
		return models.Expense{}, err
	}
	if err := e.commit(ctx, b); err != nil {
		return models.Expense{}, err
	}

	e.log.Info().
		Str("day", dayKey(date)).
		Str("amount", exp.Amount.String()).
		Str("category", category).
		Msg("expense added")
	return exp, nil
}

// Expenses returns every expense in storage order.
func (e *Engine) Expenses(ctx context.Context) ([]models.Expense, error) {
	expenses, _, err := e.loadExpenses(ctx)
	return expenses, err
}

// DeleteExpense removes one expense by id.
func (e *Engine) DeleteExpense(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	expenses, skipped, err := e.loadExpenses(ctx)
	if err != nil {
		return err
	}

	next := make([]models.Expense, 0, len(expenses))
	found := false
	for _, exp := range expenses {
		if exp.ID == id && !found {
			found = true
			continue
		}
		next = append(next, exp)
	}
	if !found {
		return fmt.Errorf("expense %s: %w", id, ErrNotFound)
	}

	var b kvstore.Batch
	if err := e.setList(ctx, &b, KeyExpenses, next, skipped); err != nil {
		return err
	}
	if err := e.commit(ctx, b); err != nil {
		return err
	}
	e.log.Info().Str("id", id).Msg("expense deleted")
	return nil
}

// ---------- export ----------

// Dump returns every stored value by key, decrypted. Values are embedded
// as JSON where they parse and as JSON strings otherwise, so elements
// kept under the ".unreadable" keys can be recovered by hand.
func (e *Engine) Dump(ctx context.Context) (map[string]json.RawMessage, error) {
	snap, err := e.store.Snapshot(ctx)
	if err != nil {
		return nil, e.loadErr("*", err)
	}

	out := make(map[string]json.RawMessage, len(snap))
	for key, value := range snap {
		if json.Valid([]byte(value)) {
			out[key] = json.RawMessage(value)
			continue
		}
		quoted, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("dump %s: %w", key, err)
		}
		out[key] = quoted
	}
	return out, nil
}
