package util

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/shopspring/decimal"
)

func TestValidateAmount_Positive(t *testing.T) {
	testCases := []string{"0.01", "1", "100.5", "28000", "999999999.99"}

	for _, s := range testCases {
		if err := ValidateAmount(decimal.RequireFromString(s)); err != nil {
			t.Errorf("ValidateAmount(%s) error = %v, want nil", s, err)
		}
	}
}

func TestValidateAmount_Zero(t *testing.T) {
	if err := ValidateAmount(decimal.Zero); err == nil {
		t.Error("ValidateAmount(0) error = nil, want error")
	}
}

func TestValidateAmount_Negative(t *testing.T) {
	testCases := []string{"-0.01", "-100", "-9999.99"}

	for _, s := range testCases {
		if err := ValidateAmount(decimal.RequireFromString(s)); err == nil {
			t.Errorf("ValidateAmount(%s) error = nil, want error", s)
		}
	}
}

func TestValidateAmount_TooLarge(t *testing.T) {
	if err := ValidateAmount(decimal.NewFromInt(1_000_000_001)); err == nil {
		t.Error("ValidateAmount(1000000001) error = nil, want error")
	}
}

func TestValidateAmount_TooPrecise(t *testing.T) {
	if err := ValidateAmount(decimal.RequireFromString("1.005")); err == nil {
		t.Error("ValidateAmount(1.005) error = nil, want error")
	}
}

func TestParseAmount(t *testing.T) {
	got, err := ParseAmount(" 70000 ")
	if err != nil {
		t.Fatalf("ParseAmount error = %v", err)
	}
	if !got.Equal(decimal.NewFromInt(70000)) {
		t.Errorf("ParseAmount = %s, want 70000", got)
	}

	for _, s := range []string{"", "abc", "12,5", "-3", "0"} {
		if _, err := ParseAmount(s); err == nil {
			t.Errorf("ParseAmount(%q) error = nil, want error", s)
		}
	}
}

func TestParseDate_Valid(t *testing.T) {
	testCases := []string{"2024-01-01", "2024-12-31", "2025-06-15"}

	for _, s := range testCases {
		d, err := ParseDate(s, time.UTC)
		if err != nil {
			t.Errorf("ParseDate(%q) error = %v, want nil", s, err)
			continue
		}
		if d.Hour() != 12 || d.Location() != time.UTC || d.Format("2006-01-02") != s {
			t.Errorf("ParseDate(%q) = %v, want UTC noon of that day", s, d)
		}
	}
}

func TestParseDate_MidnightDSTGap(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		t.Fatalf("LoadLocation error = %v", err)
	}

	// 2018-11-04 的 00:00 在圣保罗不存在
	d, err := ParseDate("2018-11-04", loc)
	if err != nil {
		t.Fatalf("ParseDate error = %v", err)
	}
	if got := d.In(loc).Format("2006-01-02"); got != "2018-11-04" {
		t.Errorf("ParseDate(2018-11-04) lands on %s", got)
	}

	start := StartOfDay(d, loc)
	if got := start.In(loc).Format("2006-01-02 15:04"); got != "2018-11-04 01:00" {
		t.Errorf("StartOfDay = %s, want 2018-11-04 01:00", got)
	}
	if got := StartOfDay(time.Date(2025, 3, 4, 18, 0, 0, 0, time.UTC), time.UTC); got.Hour() != 0 || got.Day() != 4 {
		t.Errorf("StartOfDay = %v, want 2025-03-04 00:00", got)
	}
}

func TestParseDate_InvalidFormat(t *testing.T) {
	testCases := []string{
		"",
		"2024/01/01",
		"01-01-2024",
		"2024-1-1",
		"not-a-date",
		"2024-13-01", // 月份错误
		"2024-01-32", // 日期错误
	}

	for _, s := range testCases {
		if _, err := ParseDate(s, time.UTC); err == nil {
			t.Errorf("ParseDate(%q) error = nil, want error", s)
		}
	}
}

func TestParseMonth(t *testing.T) {
	m, err := ParseMonth("2025-02", time.UTC)
	if err != nil {
		t.Fatalf("ParseMonth error = %v", err)
	}
	if m.Year() != 2025 || m.Month() != time.February || m.Day() != 1 {
		t.Errorf("ParseMonth = %v", m)
	}
	if _, err := ParseMonth("2025-13", time.UTC); err == nil {
		t.Error("ParseMonth(2025-13) error = nil, want error")
	}
}

func TestValidateCategory_Valid(t *testing.T) {
	testCases := []string{"餐饮", "交通", "fuel", "Car repairs"}

	for _, category := range testCases {
		if err := ValidateCategory(category); err != nil {
			t.Errorf("ValidateCategory(%q) error = %v, want nil", category, err)
		}
	}
}

func TestValidateCategory_Empty(t *testing.T) {
	for _, category := range []string{"", "   "} {
		if err := ValidateCategory(category); err == nil {
			t.Errorf("ValidateCategory(%q) error = nil, want error", category)
		}
	}
}

func TestValidateCategory_TooLong(t *testing.T) {
	longCategory := "这是一个非常非常非常非常非常长的分类名称超过了合理的限制范围"

	if err := ValidateCategory(longCategory); err == nil {
		t.Error("ValidateCategory() with long string error = nil, want error")
	}
}
