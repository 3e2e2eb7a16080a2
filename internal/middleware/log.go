package middleware

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"earnings-ledger/internal/models"
	"earnings-ledger/internal/util"
)

// 请求体超过该长度时不写入日志
const maxAuditBody = 2000

func sealField(cipher *util.Cipher, plain string) (string, error) {
	if plain == "" || cipher == nil {
		return plain, nil
	}
	return cipher.SealString(plain)
}

func mutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// AuditMiddleware 记录所有写操作。cipher 为 nil 时按明文存储。
func AuditMiddleware(db *gorm.DB, cipher *util.Cipher, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !mutating(c.Request.Method) {
			c.Next()
			return
		}

		// 读取请求体后放回，供后续 handler 使用
		var bodyBytes []byte
		if c.Request.Body != nil {
			bodyBytes, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
		}

		c.Next()

		path := c.Request.URL.Path
		action := c.Request.Method + " " + path
		// 口令不落盘
		if !strings.HasPrefix(path, "/api/auth/") && len(bodyBytes) > 0 && len(bodyBytes) < maxAuditBody {
			action += " " + string(bodyBytes)
		}

		encPath, err := sealField(cipher, path)
		if err != nil {
			log.Warn().Err(err).Msg("seal audit path")
			return
		}
		encAction, err := sealField(cipher, action)
		if err != nil {
			log.Warn().Err(err).Msg("seal audit action")
			return
		}

		entry := models.AuditLog{
			Method:    c.Request.Method,
			PathEnc:   encPath,
			ActionEnc: encAction,
			Status:    c.Writer.Status(),
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		}
		if err := db.WithContext(c.Request.Context()).Create(&entry).Error; err != nil {
			log.Warn().Err(err).Str("path", path).Msg("write audit log")
		}
	}
}
