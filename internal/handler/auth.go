package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"earnings-ledger/internal/util"
)

// AuthHandler 负责口令解锁，成功后签发 JWT
type AuthHandler struct {
	PasscodeHash string
	JWTSecret    string
	Issuer       string
	TokenTTL     time.Duration
	Log          zerolog.Logger
}

// NewAuthHandler 构造函数
func NewAuthHandler(passcodeHash, jwtSecret, issuer string, ttlHours int, log zerolog.Logger) *AuthHandler {
	if ttlHours <= 0 {
		ttlHours = 24
	}
	return &AuthHandler{
		PasscodeHash: passcodeHash,
		JWTSecret:    jwtSecret,
		Issuer:       issuer,
		TokenTTL:     time.Duration(ttlHours) * time.Hour,
		Log:          log,
	}
}

type unlockReq struct {
	Passcode string `json:"passcode" binding:"required"`
}

// Unlock 校验口令；未配置口令时接口无需解锁
func (h *AuthHandler) Unlock(c *gin.Context) {
	if h.PasscodeHash == "" {
		util.Success(c, util.Response{"required": false})
		return
	}

	var req unlockReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	if !util.CheckPasscode(req.Passcode, h.PasscodeHash) {
		h.Log.Warn().Str("ip", c.ClientIP()).Msg("unlock rejected")
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "wrong passcode")
		return
	}

	session := uuid.NewString()
	token, err := util.GenerateToken(h.JWTSecret, h.Issuer, session, h.TokenTTL)
	if err != nil {
		h.Log.Error().Err(err).Msg("sign token")
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "could not issue token")
		return
	}

	h.Log.Info().Str("session", session).Msg("unlocked")
	util.Success(c, util.Response{
		"required":  true,
		"token":     token,
		"expiresAt": time.Now().Add(h.TokenTTL).UTC().Format(time.RFC3339),
	})
}
