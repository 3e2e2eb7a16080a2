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

// ExpenseHandler 负责支出记录接口
type ExpenseHandler struct {
	Engine *earnings.Engine
	Log    zerolog.Logger
}

func NewExpenseHandler(engine *earnings.Engine, log zerolog.Logger) *ExpenseHandler {
	return &ExpenseHandler{Engine: engine, Log: log}
}

type createExpenseReq struct {
	Amount   string `json:"amount" binding:"required"`
	Category string `json:"category" binding:"required"`
	Notes    string `json:"notes" binding:"max=255"`
	Date     string `json:"date"` // YYYY-MM-DD，缺省为今天
}

func (h *ExpenseHandler) ListExpenses(c *gin.Context) {
	expenses, err := h.Engine.Expenses(c.Request.Context())
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{
		"items": expenses,
		"total": len(expenses),
	})
}

func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	var req createExpenseReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	amt, err := util.ParseAmount(req.Amount)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	var date time.Time
	if s := strings.TrimSpace(req.Date); s != "" {
		if date, err = util.ParseDate(s, h.Engine.Location()); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
			return
		}
	}

	exp, err := h.Engine.AddExpense(c.Request.Context(), earnings.ExpenseInput{
		Amount:   amt,
		Category: req.Category,
		Notes:    req.Notes,
		Date:     date,
	}, h.Engine.Today())
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{"expense": exp})
}

func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := h.Engine.DeleteExpense(c.Request.Context(), id); err != nil {
		respondError(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{"deleted": id})
}
