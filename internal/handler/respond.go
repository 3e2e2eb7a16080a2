package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"earnings-ledger/internal/earnings"
	"earnings-ledger/internal/kvstore"
	"earnings-ledger/internal/logger"
	"earnings-ledger/internal/util"
)

// respondError 把引擎错误映射为 HTTP 状态与业务码
func respondError(c *gin.Context, log zerolog.Logger, err error) {
	log = requestLog(c, log)
	switch {
	case errors.Is(err, earnings.ErrDuplicateEntry):
		util.Error(c, http.StatusConflict, util.CodeConflict, err.Error())
	case earnings.IsValidation(err):
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
	case errors.Is(err, earnings.ErrNotFound):
		util.Error(c, http.StatusNotFound, util.CodeNotFound, err.Error())
	case errors.Is(err, earnings.ErrInsufficientSavings):
		util.Error(c, http.StatusConflict, util.CodeConflict, err.Error())
	case errors.Is(err, kvstore.ErrCorrupt):
		log.Error().Err(err).Str("path", c.FullPath()).Msg("stored data is unreadable")
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "stored data is unreadable")
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "storage error")
	}
}

// amount renders d as a JSON number rather than a quoted string.
func amount(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

// mergeJSON marshals v and adds extra top-level fields to the object.
func mergeJSON(v any, extra map[string]any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, err
	}
	for k, val := range extra {
		obj[k] = val
	}
	return json.Marshal(obj)
}

// requestLog prefers the request-scoped logger set by middleware.RequestID.
func requestLog(c *gin.Context, fallback zerolog.Logger) zerolog.Logger {
	return logger.FromContext(c.Request.Context(), fallback)
}
