package util

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var amountPrinter = message.NewPrinter(language.English)

// FormatAmount 千分位 + 两位小数，仅用于命令行展示（例如 28,000.00）
// 导出文件使用不分组的 StringFixed(2)
func FormatAmount(d decimal.Decimal) string {
	fixed := d.Round(2)
	whole, frac, _ := strings.Cut(fixed.Abs().StringFixed(2), ".")
	n, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return fixed.StringFixed(2)
	}
	out := amountPrinter.Sprintf("%d", n) + "." + frac
	if fixed.IsNegative() {
		out = "-" + out
	}
	return out
}
