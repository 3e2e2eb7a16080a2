package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Origin tells organic entries apart from records synthesised by the
// surplus distributor.
type Origin string

const (
	OriginOrganic     Origin = "organic"
	OriginDebtPayment Origin = "debt_payment"
)

// EarningRecord is one calendar day's earning.
// Date is noon of the day in the engine's location.
type EarningRecord struct {
	ID        string
	Date      time.Time
	Amount    decimal.Decimal
	Goal      decimal.Decimal // daily goal captured at creation
	Notes     string
	Origin    Origin
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsSynthetic reports whether the record was generated to pay down debt.
func (r EarningRecord) IsSynthetic() bool {
	return r.Origin == OriginDebtPayment
}

// earningWire is the stored shape: ISO-8601 dates, amounts as plain JSON numbers.
type earningWire struct {
	ID        string      `json:"id"`
	Date      string      `json:"date"`
	Amount    json.Number `json:"amount"`
	Goal      json.Number `json:"goal"`
	Notes     string      `json:"notes,omitempty"`
	Origin    Origin      `json:"origin,omitempty"`
	CreatedAt string      `json:"createdAt"`
	UpdatedAt string      `json:"updatedAt"`
}

func (r EarningRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(earningWire{
		ID:        r.ID,
		Date:      r.Date.Format(time.RFC3339),
		Amount:    json.Number(r.Amount.String()),
		Goal:      json.Number(r.Goal.String()),
		Notes:     r.Notes,
		Origin:    r.Origin,
		CreatedAt: r.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt: r.UpdatedAt.Format(time.RFC3339Nano),
	})
}

// UnmarshalJSON rejects records the engine cannot reason about, so a
// caller decoding a list element by element can skip them.
func (r *EarningRecord) UnmarshalJSON(data []byte) error {
	var w earningWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.ID == "" {
		return fmt.Errorf("earning record: missing id")
	}
	date, err := time.Parse(time.RFC3339, w.Date)
	if err != nil {
		return fmt.Errorf("earning record %s: date: %w", w.ID, err)
	}
	amount, err := decimal.NewFromString(w.Amount.String())
	if err != nil {
		return fmt.Errorf("earning record %s: amount: %w", w.ID, err)
	}
	if amount.IsNegative() {
		return fmt.Errorf("earning record %s: negative amount %s", w.ID, amount)
	}
	goal := decimal.Zero
	if w.Goal != "" {
		if goal, err = decimal.NewFromString(w.Goal.String()); err != nil {
			return fmt.Errorf("earning record %s: goal: %w", w.ID, err)
		}
	}
	origin := w.Origin
	if origin == "" {
		origin = OriginOrganic
	}

	*r = EarningRecord{
		ID:        w.ID,
		Date:      date,
		Amount:    amount,
		Goal:      goal,
		Notes:     w.Notes,
		Origin:    origin,
		CreatedAt: parseStamp(w.CreatedAt),
		UpdatedAt: parseStamp(w.UpdatedAt),
	}
	return nil
}

// parseStamp is lenient: audit timestamps never invalidate a record.
func parseStamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
