package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Expense is a spending record; it only feeds the monthly statistics.
type Expense struct {
	ID        string
	Date      time.Time
	Amount    decimal.Decimal
	Category  string
	Notes     string
	CreatedAt time.Time
}

type expenseWire struct {
	ID        string      `json:"id"`
	Date      string      `json:"date"`
	Amount    json.Number `json:"amount"`
	Category  string      `json:"category"`
	Notes     string      `json:"notes,omitempty"`
	CreatedAt string      `json:"createdAt"`
}

func (e Expense) MarshalJSON() ([]byte, error) {
	return json.Marshal(expenseWire{
		ID:        e.ID,
		Date:      e.Date.Format(time.RFC3339),
		Amount:    json.Number(e.Amount.String()),
		Category:  e.Category,
		Notes:     e.Notes,
		CreatedAt: e.CreatedAt.Format(time.RFC3339Nano),
	})
}

func (e *Expense) UnmarshalJSON(data []byte) error {
	var w expenseWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.ID == "" {
		return fmt.Errorf("expense: missing id")
	}
	date, err := time.Parse(time.RFC3339, w.Date)
	if err != nil {
		return fmt.Errorf("expense %s: date: %w", w.ID, err)
	}
	amount, err := decimal.NewFromString(w.Amount.String())
	if err != nil {
		return fmt.Errorf("expense %s: amount: %w", w.ID, err)
	}
	if amount.IsNegative() {
		return fmt.Errorf("expense %s: negative amount %s", w.ID, amount)
	}

	*e = Expense{
		ID:        w.ID,
		Date:      date,
		Amount:    amount,
		Category:  w.Category,
		Notes:     w.Notes,
		CreatedAt: parseStamp(w.CreatedAt),
	}
	return nil
}
