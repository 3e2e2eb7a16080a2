package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"earnings-ledger/internal/earnings"
	"earnings-ledger/internal/models"
	"earnings-ledger/internal/util"
)

// EarningHandler 负责每日收入相关接口
type EarningHandler struct {
	Engine *earnings.Engine
	Log    zerolog.Logger
}

func NewEarningHandler(engine *earnings.Engine, log zerolog.Logger) *EarningHandler {
	return &EarningHandler{Engine: engine, Log: log}
}

// ---------- 请求/响应结构 ----------

type createEarningReq struct {
	Amount string `json:"amount" binding:"required"`
	Notes  string `json:"notes" binding:"max=255"`
}

type earningResp struct {
	models.EarningRecord
	Status earnings.DayStatus `json:"status"`
}

// MarshalJSON flattens the record and its status into one object.
func (r earningResp) MarshalJSON() ([]byte, error) {
	return mergeJSON(r.EarningRecord, map[string]any{"status": r.Status})
}

// ---------- 列表 ----------

// ListEarnings 返回全部记录，可用 ?month=YYYY-MM 过滤
func (h *EarningHandler) ListEarnings(c *gin.Context) {
	records, err := h.Engine.Records(c.Request.Context())
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	if m := strings.TrimSpace(c.Query("month")); m != "" {
		month, err := util.ParseMonth(m, h.Engine.Location())
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
			return
		}
		filtered := records[:0]
		for _, r := range records {
			d := r.Date.In(h.Engine.Location())
			if d.Year() == month.Year() && d.Month() == month.Month() {
				filtered = append(filtered, r)
			}
		}
		records = filtered
	}

	items := make([]earningResp, 0, len(records))
	for i := range records {
		items = append(items, earningResp{EarningRecord: records[i], Status: earnings.Classify(&records[i])})
	}
	util.Success(c, util.Response{
		"items": items,
		"total": len(items),
	})
}

// ---------- 记一笔 ----------

// CreateEarning 记录今天的收入，并把超出目标的部分用于补欠账或存入储蓄
func (h *EarningHandler) CreateEarning(c *gin.Context) {
	var req createEarningReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	amt, err := util.ParseAmount(req.Amount)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	plan, err := h.Engine.RecordEarning(c.Request.Context(), amt, req.Notes, h.Engine.Today())
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	util.Success(c, util.Response{"result": plan})
}

// ---------- 删除 ----------

func (h *EarningHandler) DeleteEarning(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "missing id")
		return
	}

	records, err := h.Engine.DeleteRecord(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{
		"deleted": id,
		"total":   len(records),
	})
}

// ---------- 连续达标 ----------

func (h *EarningHandler) GetStreak(c *gin.Context) {
	today := h.Engine.Today()
	streak, err := h.Engine.GoalStreak(c.Request.Context(), today)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{
		"streak": streak,
		"today":  today.Format("2006-01-02"),
	})
}

// ClassifyDay 查询某一天的状态（met / partial / debt）
func (h *EarningHandler) ClassifyDay(c *gin.Context) {
	date, err := util.ParseDate(c.Param("date"), h.Engine.Location())
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	status, rec, err := h.Engine.ClassifyDay(c.Request.Context(), date)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{
		"date":   date.Format("2006-01-02"),
		"status": status,
		"record": rec,
	})
}
