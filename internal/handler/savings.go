package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"earnings-ledger/internal/earnings"
	"earnings-ledger/internal/util"
)

// SavingsHandler 负责储蓄罐与每日目标
type SavingsHandler struct {
	Engine *earnings.Engine
	Log    zerolog.Logger
}

func NewSavingsHandler(engine *earnings.Engine, log zerolog.Logger) *SavingsHandler {
	return &SavingsHandler{Engine: engine, Log: log}
}

type amountReq struct {
	Amount string `json:"amount" binding:"required"`
}

// ---------- 储蓄罐 ----------

func (h *SavingsHandler) GetSavings(c *gin.Context) {
	balance, err := h.Engine.Savings(c.Request.Context())
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{"savings": amount(balance)})
}

// Withdraw 从储蓄罐取出，余额不足时拒绝
func (h *SavingsHandler) Withdraw(c *gin.Context) {
	var req amountReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}
	amt, err := util.ParseAmount(req.Amount)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	balance, err := h.Engine.WithdrawSavings(c.Request.Context(), amt)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{"savings": amount(balance)})
}

// ---------- 每日目标 ----------

func (h *SavingsHandler) GetGoal(c *gin.Context) {
	goal, err := h.Engine.DailyGoal(c.Request.Context())
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{"dailyGoal": amount(goal)})
}

// SetGoal 修改每日目标；历史记录保留创建时的目标
func (h *SavingsHandler) SetGoal(c *gin.Context) {
	var req amountReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}
	goal, err := util.ParseAmount(req.Amount)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	if err := h.Engine.SetDailyGoal(c.Request.Context(), goal); err != nil {
		respondError(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{"dailyGoal": amount(goal)})
}
