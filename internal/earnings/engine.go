// Package earnings is the reconciliation engine: it classifies days against
// the daily goal, aggregates monthly statistics and routes surplus income
// to unpaid days or the savings jar.
//
// Every entry point takes the current day explicitly. All state lives in a
// kvstore.Store and is rewritten as whole collections; one mutation is one
// kvstore.Batch.
package earnings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"earnings-ledger/internal/kvstore"
	"earnings-ledger/internal/models"
)

// Store keys.
const (
	KeyEarnings  = "earnings"
	KeyExpenses  = "expenses"
	KeySavings   = "savings"
	KeyDailyGoal = "daily_goal"
)

// unreadableKey is where elements of key that failed to decode are kept
// once key is rewritten.
func unreadableKey(key string) string {
	return key + ".unreadable"
}

// Options configures an Engine. Zero values fall back to sane defaults.
type Options struct {
	DefaultGoal decimal.Decimal // used until a goal is stored
	Leftover    LeftoverPolicy
	Location    *time.Location
	Now         func() time.Time // audit timestamps only
	NewID       func() string
	Log         zerolog.Logger
}

// Engine serialises all mutations over one store.
type Engine struct {
	mu    sync.Mutex
	store kvstore.Store
	opts  Options
	log   zerolog.Logger
}

// New returns an engine over store.
func New(store kvstore.Store, opts Options) *Engine {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.Leftover == "" {
		opts.Leftover = LeftoverDrop
	}
	return &Engine{
		store: store,
		opts:  opts,
		log:   opts.Log.With().Str("component", "earnings").Logger(),
	}
}

// Location is the zone calendar days are read in.
func (e *Engine) Location() *time.Location {
	return e.opts.Location
}

// Today is the current calendar day in the engine's location.
func (e *Engine) Today() time.Time {
	return dayOf(e.opts.Now(), e.opts.Location)
}

// ---------- loading ----------

// loadRecords decodes the earnings list. Elements that fail to decode are
// returned as skipped so a rewrite can keep them aside.
func (e *Engine) loadRecords(ctx context.Context) ([]models.EarningRecord, []json.RawMessage, error) {
	items, err := kvstore.LoadList(ctx, e.store, KeyEarnings)
	if err != nil {
		return nil, nil, e.loadErr(KeyEarnings, err)
	}

	var skipped []json.RawMessage
	records := make([]models.EarningRecord, 0, len(items))
	for i, raw := range items {
		var rec models.EarningRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			e.log.Warn().Err(err).Int("index", i).RawJSON("raw", raw).Msg("skipping unreadable earning record")
			skipped = append(skipped, raw)
			continue
		}
		rec.Date = dayOf(rec.Date, e.opts.Location)
		records = append(records, rec)
	}
	sortRecords(records)
	return records, skipped, nil
}

func (e *Engine) loadExpenses(ctx context.Context) ([]models.Expense, []json.RawMessage, error) {
	items, err := kvstore.LoadList(ctx, e.store, KeyExpenses)
	if err != nil {
		return nil, nil, e.loadErr(KeyExpenses, err)
	}

	var skipped []json.RawMessage
	expenses := make([]models.Expense, 0, len(items))
	for i, raw := range items {
		var exp models.Expense
		if err := json.Unmarshal(raw, &exp); err != nil {
			e.log.Warn().Err(err).Int("index", i).RawJSON("raw", raw).Msg("skipping unreadable expense")
			skipped = append(skipped, raw)
			continue
		}
		exp.Date = dayOf(exp.Date, e.opts.Location)
		expenses = append(expenses, exp)
	}
	return expenses, skipped, nil
}

// setList queues items under key. Elements skipped when key was loaded are
// appended to its unreadable list in the same batch.
func (e *Engine) setList(ctx context.Context, b *kvstore.Batch, key string, items any, skipped []json.RawMessage) error {
	if err := b.SetList(key, items); err != nil {
		return err
	}
	if len(skipped) == 0 {
		return nil
	}

	aside := unreadableKey(key)
	kept, err := kvstore.LoadList(ctx, e.store, aside)
	if err != nil {
		return e.loadErr(aside, err)
	}
	if err := b.SetList(aside, append(kept, skipped...)); err != nil {
		return err
	}
	e.log.Warn().Str("key", key).Str("moved_to", aside).Int("count", len(skipped)).Msg("unreadable elements moved aside")
	return nil
}

// loadDecimal reads a scalar; absent or unreadable values yield fallback.
func (e *Engine) loadDecimal(ctx context.Context, key string, fallback decimal.Decimal) (decimal.Decimal, error) {
	raw, ok, err := kvstore.LoadScalar(ctx, e.store, key)
	if err != nil {
		return decimal.Zero, e.loadErr(key, err)
	}
	if !ok {
		return fallback, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		e.log.Warn().Err(err).Str("key", key).Msg("unreadable scalar, using fallback")
		return fallback, nil
	}
	return d, nil
}

// loadState also returns the earnings elements that failed to decode.
func (e *Engine) loadState(ctx context.Context) (State, []json.RawMessage, error) {
	var (
		st      State
		skipped []json.RawMessage
		err     error
	)
	if st.Records, skipped, err = e.loadRecords(ctx); err != nil {
		return State{}, nil, err
	}
	if st.Expenses, _, err = e.loadExpenses(ctx); err != nil {
		return State{}, nil, err
	}
	if st.Savings, err = e.loadSavings(ctx); err != nil {
		return State{}, nil, err
	}
	if st.DailyGoal, err = e.DailyGoal(ctx); err != nil {
		return State{}, nil, err
	}
	return st, skipped, nil
}

// loadSavings never reports a negative jar.
func (e *Engine) loadSavings(ctx context.Context) (decimal.Decimal, error) {
	savings, err := e.loadDecimal(ctx, KeySavings, decimal.Zero)
	if err != nil {
		return decimal.Zero, err
	}
	if savings.IsNegative() {
		e.log.Warn().Str("savings", savings.String()).Msg("negative savings on disk, clamping to zero")
		return decimal.Zero, nil
	}
	return savings, nil
}

func (e *Engine) loadErr(key string, err error) error {
	if errors.Is(err, kvstore.ErrCorrupt) {
		return fmt.Errorf("load %s: %w", key, err)
	}
	return &PersistenceError{Op: "load", Key: key, Err: err}
}

func (e *Engine) commit(ctx context.Context, b kvstore.Batch) error {
	if err := e.store.Apply(ctx, b); err != nil {
		return &PersistenceError{Op: "save", Key: strings.Join(b.Keys(), ","), Err: err}
	}
	return nil
}

// ---------- earnings ----------

// RecordEarning records today's organic entry and routes its surplus.
// Records and savings are written in one batch: either both change or
// neither does.
func (e *Engine) RecordEarning(ctx context.Context, amount decimal.Decimal, notes string, today time.Time) (Plan, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	state, skipped, err := e.loadState(ctx)
	if err != nil {
		return Plan{}, err
	}

	plan, err := PlanEarning(state, amount, strings.TrimSpace(notes), today.In(e.opts.Location), PlanOptions{
		Leftover: e.opts.Leftover,
		NewID:    e.opts.NewID,
		Now:      e.opts.Now(),
	})
	if err != nil {
		return Plan{}, err
	}

	var b kvstore.Batch
	if err := e.setList(ctx, &b, KeyEarnings, plan.Records, skipped); err != nil {
		return Plan{}, err
	}
	if !plan.Savings.Equal(state.Savings) {
		b.SetScalar(KeySavings, plan.Savings)
	}
	if err := e.commit(ctx, b); err != nil {
		return Plan{}, err
	}

	ev := e.log.Info().
		Str("day", dayKey(plan.Entry.Date)).
		Str("amount", amount.String()).
		Str("surplus", plan.Surplus.String()).
		Int("payments", len(plan.Payments))
	if plan.SavingsCredit.IsPositive() {
		ev = ev.Str("savings_credit", plan.SavingsCredit.String())
	}
	ev.Msg("earning recorded")

	if plan.Leftover.IsPositive() {
		e.log.Warn().
			Str("day", dayKey(plan.Entry.Date)).
			Str("leftover", plan.Leftover.String()).
			Msg("surplus left after paying every debt day was dropped")
	}
	return plan, nil
}

// Records returns every record, oldest first.
func (e *Engine) Records(ctx context.Context) ([]models.EarningRecord, error) {
	records, _, err := e.loadRecords(ctx)
	return records, err
}

// DeleteRecord removes one record. Nothing is rebalanced: debt payments
// made from the deleted day's surplus stay in place.
func (e *Engine) DeleteRecord(ctx context.Context, id string) ([]models.EarningRecord, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	records, skipped, err := e.loadRecords(ctx)
	if err != nil {
		return nil, err
	}

	next := make([]models.EarningRecord, 0, len(records))
	var removed *models.EarningRecord
	for i := range records {
		if records[i].ID == id && removed == nil {
			removed = &records[i]
			continue
		}
		next = append(next, records[i])
	}
	if removed == nil {
		return nil, fmt.Errorf("earning %s: %w", id, ErrNotFound)
	}

	var b kvstore.Batch
	if err := e.setList(ctx, &b, KeyEarnings, next, skipped); err != nil {
		return nil, err
	}
	if err := e.commit(ctx, b); err != nil {
		return nil, err
	}

	e.log.Info().
		Str("id", id).
		Str("day", dayKey(removed.Date)).
		Str("origin", string(removed.Origin)).
		Msg("earning deleted")
	return next, nil
}

// ClassifyDay returns the status of date and its record, if any.
func (e *Engine) ClassifyDay(ctx context.Context, date time.Time) (DayStatus, *models.EarningRecord, error) {
	records, _, err := e.loadRecords(ctx)
	if err != nil {
		return "", nil, err
	}
	rec := indexRecords(records, e.opts.Location).get(date)
	return Classify(rec), rec, nil
}

// MonthlyStatistics computes the statistics of month as seen on today.
func (e *Engine) MonthlyStatistics(ctx context.Context, month, today time.Time) (MonthlyStatistics, error) {
	state, _, err := e.loadState(ctx)
	if err != nil {
		return MonthlyStatistics{}, err
	}
	return ComputeMonthlyStatistics(state.Records, state.Expenses, month.In(e.opts.Location), today.In(e.opts.Location), state.DailyGoal), nil
}

// GoalStreak counts Met days ending at today.
func (e *Engine) GoalStreak(ctx context.Context, today time.Time) (int, error) {
	records, _, err := e.loadRecords(ctx)
	if err != nil {
		return 0, err
	}
	return GoalStreak(records, today.In(e.opts.Location)), nil
}

// ---------- goal ----------

// DailyGoal returns the stored goal or the configured default.
func (e *Engine) DailyGoal(ctx context.Context) (decimal.Decimal, error) {
	return e.loadDecimal(ctx, KeyDailyGoal, e.opts.DefaultGoal)
}

// SetDailyGoal changes the goal for future records and statistics. Goals
// captured on existing records are left alone.
func (e *Engine) SetDailyGoal(ctx context.Context, goal decimal.Decimal) error {
	if !goal.IsPositive() {
		return &ValidationError{Field: "daily goal", Reason: "must be positive"}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	var b kvstore.Batch
	b.SetScalar(KeyDailyGoal, goal)
	if err := e.commit(ctx, b); err != nil {
		return err
	}
	e.log.Info().Str("goal", goal.String()).Msg("daily goal updated")
	return nil
}
