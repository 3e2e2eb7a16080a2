package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"earnings-ledger/internal/earnings"
	"earnings-ledger/internal/util"
)

// StatsHandler 负责月度统计与日历视图
type StatsHandler struct {
	Engine *earnings.Engine
	Log    zerolog.Logger
}

func NewStatsHandler(engine *earnings.Engine, log zerolog.Logger) *StatsHandler {
	return &StatsHandler{Engine: engine, Log: log}
}

// month 解析 ?month=YYYY-MM，缺省为本月
func (h *StatsHandler) month(c *gin.Context, today time.Time) (time.Time, bool) {
	m := strings.TrimSpace(c.Query("month"))
	if m == "" {
		return today, true
	}
	month, err := util.ParseMonth(m, h.Engine.Location())
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return time.Time{}, false
	}
	return month, true
}

// GetMonthlyStats 月度统计：天数、总收入、欠账、支出与净收益
func (h *StatsHandler) GetMonthlyStats(c *gin.Context) {
	today := h.Engine.Today()
	month, ok := h.month(c, today)
	if !ok {
		return
	}

	st, err := h.Engine.MonthlyStatistics(c.Request.Context(), month, today)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{"stats": st})
}

// GetCalendar 按天返回本月已过去日期的达标状态
func (h *StatsHandler) GetCalendar(c *gin.Context) {
	today := h.Engine.Today()
	month, ok := h.month(c, today)
	if !ok {
		return
	}

	days, err := h.Engine.MonthCalendar(c.Request.Context(), month, today)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{
		"month": month.Format("2006-01"),
		"days":  days,
	})
}
