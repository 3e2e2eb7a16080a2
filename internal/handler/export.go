package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"earnings-ledger/internal/earnings"
	"earnings-ledger/internal/models"
	"earnings-ledger/internal/util"
)

// ExportHandler 导出收入记录
type ExportHandler struct {
	Engine *earnings.Engine
	Log    zerolog.Logger
}

func NewExportHandler(engine *earnings.Engine, log zerolog.Logger) *ExportHandler {
	return &ExportHandler{Engine: engine, Log: log}
}

var exportHeaders = []string{"Date", "Amount", "Goal", "Status", "Origin", "Notes"}

// exportRow 金额输出为两位小数的纯数字，便于表格软件直接计算
func exportRow(r *models.EarningRecord) []string {
	return []string{
		r.Date.Format("2006-01-02"),
		r.Amount.StringFixed(2),
		r.Goal.StringFixed(2),
		string(earnings.Classify(r)),
		string(r.Origin),
		r.Notes,
	}
}

// ExportCSV 导出为 CSV
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	records, err := h.Engine.Records(c.Request.Context())
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"earnings_%s.csv\"",
		h.Engine.Today().Format("20060102")))

	// UTF-8 BOM（让 Excel 正确识别编码）
	if _, err := c.Writer.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		h.Log.Warn().Err(err).Msg("write csv")
		return
	}

	writer := csv.NewWriter(c.Writer)
	_ = writer.Write(exportHeaders)
	for i := range records {
		_ = writer.Write(exportRow(&records[i]))
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		h.Log.Warn().Err(err).Msg("write csv")
	}
}

// ExportXLSX 导出为 XLSX：明细表 + 本月汇总
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	ctx := c.Request.Context()
	today := h.Engine.Today()

	records, err := h.Engine.Records(ctx)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	st, err := h.Engine.MonthlyStatistics(ctx, today, today)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	f, err := buildWorkbook(records, st)
	if err != nil {
		h.Log.Error().Err(err).Msg("build workbook")
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "export failed")
		return
	}
	defer f.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"earnings_%s.xlsx\"",
		today.Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		h.Log.Warn().Err(err).Msg("write xlsx")
	}
}

// amountFormat 是 Excel 内置数字格式 "#,##0.00"
const amountFormat = 4

func buildWorkbook(records []models.EarningRecord, st earnings.MonthlyStatistics) (*excelize.File, error) {
	f := excelize.NewFile()

	const detail = "Earnings"
	if err := f.SetSheetName("Sheet1", detail); err != nil {
		return nil, err
	}
	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: amountFormat})
	if err != nil {
		return nil, err
	}

	for col, h := range exportHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(detail, cell, h); err != nil {
			return nil, err
		}
	}
	for i := range records {
		r := &records[i]
		row := i + 2
		values := []any{
			r.Date.Format("2006-01-02"),
			r.Amount.Round(2).InexactFloat64(),
			r.Goal.Round(2).InexactFloat64(),
			string(earnings.Classify(r)),
			string(r.Origin),
			r.Notes,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(detail, cell, v); err != nil {
				return nil, err
			}
		}
	}
	if len(records) > 0 {
		if err := f.SetCellStyle(detail, "B2", fmt.Sprintf("C%d", len(records)+1), amountStyle); err != nil {
			return nil, err
		}
	}
	if err := f.SetColWidth(detail, "A", "E", 14); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(detail, "F", "F", 40); err != nil {
		return nil, err
	}

	const summary = "Summary"
	if _, err := f.NewSheet(summary); err != nil {
		return nil, err
	}
	num := func(d decimal.Decimal) any { return d.Round(2).InexactFloat64() }
	lines := []struct {
		label  string
		value  any
		amount bool
	}{
		{"Month", st.Month.Format("2006-01"), false},
		{"Daily goal", num(st.DailyGoal), true},
		{"Days passed", st.DaysPassed, false},
		{"Days tracked", st.DaysTracked, false},
		{"Days missed", st.DaysMissed, false},
		{"Total earned", num(st.TotalEarned), true},
		{"Total goal", num(st.TotalGoal), true},
		{"Total debt", num(st.TotalDebt), true},
		{"Total expenses", num(st.TotalExpenses), true},
		{"Net profit", num(st.NetProfit), true},
		{"Average daily", num(st.AverageDaily), true},
		{"Best day", num(st.BestDay), true},
		{"Worst day", num(st.WorstDay), true},
		{"Generated", time.Now().Format(time.RFC3339), false},
	}
	for i, l := range lines {
		a, b := fmt.Sprintf("A%d", i+1), fmt.Sprintf("B%d", i+1)
		if err := f.SetCellValue(summary, a, l.label); err != nil {
			return nil, err
		}
		if err := f.SetCellValue(summary, b, l.value); err != nil {
			return nil, err
		}
		if l.amount {
			if err := f.SetCellStyle(summary, b, b, amountStyle); err != nil {
				return nil, err
			}
		}
	}
	if err := f.SetColWidth(summary, "A", "B", 18); err != nil {
		return nil, err
	}
	return f, nil
}

// ExportJSON 导出存储中的全部数据（含无法解析而被单独保存的条目），用于迁移与排查
func (h *ExportHandler) ExportJSON(c *gin.Context) {
	dump, err := h.Engine.Dump(c.Request.Context())
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"earnings_%s.json\"",
		h.Engine.Today().Format("20060102")))
	c.JSON(http.StatusOK, gin.H{
		"exportedAt": time.Now().Format(time.RFC3339),
		"data":       dump,
	})
}
