package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"earnings-ledger/internal/util"
)

// SessionKey 解锁会话 ID 在 gin.Context 中的键
const SessionKey = "session"

// AuthMiddleware 校验 JWT。未配置口令（passcodeHash 为空）时直接放行，
// 这是本地单用户场景的默认行为。
func AuthMiddleware(jwtSecret, passcodeHash string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if passcodeHash == "" {
			c.Next()
			return
		}

		var tokenStr string

		// 1) Header: Authorization: Bearer xxx
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
				tokenStr = strings.TrimSpace(parts[1])
			}
		}

		// 2) URL 查询参数 ?token=xxx（用于下载导出文件）
		if tokenStr == "" {
			tokenStr = c.Query("token")
		}

		// 3) Cookie el_token
		if tokenStr == "" {
			if cookie, err := c.Cookie("el_token"); err == nil {
				tokenStr = cookie
			}
		}

		if tokenStr == "" {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "locked")
			return
		}

		claims, err := util.ParseToken(jwtSecret, tokenStr)
		if err != nil {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "session expired, unlock again")
			return
		}

		c.Set(SessionKey, claims.Session)
		c.Next()
	}
}
