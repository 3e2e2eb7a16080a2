package util

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// MaxAmount 单笔金额上限
var MaxAmount = decimal.NewFromInt(1_000_000_000)

// ParseAmount 把用户输入的金额字符串解析为 decimal，并做基本校验
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("amount is empty")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("amount %q is not a number", s)
	}
	if err := ValidateAmount(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// ValidateAmount 验证金额（必须为正数且不超过上限，最多两位小数）
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("amount must be positive, got %s", amount)
	}
	if amount.GreaterThan(MaxAmount) {
		return fmt.Errorf("amount too large, got %s", amount)
	}
	if !amount.Equal(amount.Round(2)) {
		return fmt.Errorf("amount has more than two decimal places, got %s", amount)
	}
	return nil
}

// ParseDate 解析 YYYY-MM-DD，结果为 loc 时区当天中午
// （夏令时在零点开始的时区里零点不存在，中午总是存在）
func ParseDate(dateStr string, loc *time.Location) (time.Time, error) {
	if dateStr == "" {
		return time.Time{}, fmt.Errorf("date is empty")
	}
	t, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format: %w", err)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, loc), nil
}

// ParseMonth 解析 YYYY-MM，返回该月 1 号中午
func ParseMonth(monthStr string, loc *time.Location) (time.Time, error) {
	if monthStr == "" {
		return time.Time{}, fmt.Errorf("month is empty")
	}
	t, err := time.Parse("2006-01", monthStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month format: %w", err)
	}
	return time.Date(t.Year(), t.Month(), 1, 12, 0, 0, 0, loc), nil
}

// StartOfDay 返回 d 所在日期在 loc 时区的第一个时刻，用于按时间段筛选
func StartOfDay(d time.Time, loc *time.Location) time.Time {
	d = d.In(loc)
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
	// 零点不存在时 time.Date 会退到前一天，这里前移到当天第一个存在的时刻
	for start.Day() != d.Day() {
		start = start.Add(time.Hour)
	}
	return start
}

// ValidateCategory 验证分类（不能为空且长度合理）
func ValidateCategory(category string) error {
	if strings.TrimSpace(category) == "" {
		return fmt.Errorf("category is empty")
	}
	if utf8.RuneCountInString(category) > 20 {
		return fmt.Errorf("category too long, max 20 characters")
	}
	return nil
}

// ValidateNotes 备注长度限制
func ValidateNotes(notes string) error {
	if utf8.RuneCountInString(notes) > 255 {
		return fmt.Errorf("notes too long, max 255 characters")
	}
	return nil
}
