package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"earnings-ledger/internal/models"
	"earnings-ledger/internal/util"
)

// LogHandler 负责操作日志查询接口
type LogHandler struct {
	DB       *gorm.DB
	Cipher   *util.Cipher // nil 表示日志未加密
	PageSize int
	Log      zerolog.Logger
}

func NewLogHandler(db *gorm.DB, cipher *util.Cipher, pageSize int, log zerolog.Logger) *LogHandler {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &LogHandler{DB: db, Cipher: cipher, PageSize: pageSize, Log: log}
}

// decryptField 解密失败时返回原值
func (h *LogHandler) decryptField(sealed string) string {
	if sealed == "" || h.Cipher == nil {
		return sealed
	}
	plain, err := h.Cipher.OpenString(sealed)
	if err != nil {
		return sealed
	}
	return plain
}

type logResp struct {
	ID        uint      `json:"id"`
	Method    string    `json:"method"`
	Path      string    `json:"path"`
	Action    string    `json:"action"`
	Status    int       `json:"status"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
}

// ListLogs 列出操作日志（分页 + 时间 + 方法）
func (h *LogHandler) ListLogs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(h.PageSize)))
	if size <= 0 || size > 100 {
		size = h.PageSize
	}
	offset := (page - 1) * size

	base := h.DB.WithContext(c.Request.Context()).Model(&models.AuditLog{})

	// 时间筛选：start / end（格式 YYYY-MM-DD）
	if s := c.Query("start"); s != "" {
		start, err := util.ParseDate(s, time.Local)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid start date")
			return
		}
		base = base.Where("created_at >= ?", util.StartOfDay(start, time.Local))
	}
	if s := c.Query("end"); s != "" {
		end, err := util.ParseDate(s, time.Local)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid end date")
			return
		}
		base = base.Where("created_at < ?", util.StartOfDay(end.AddDate(0, 0, 1), time.Local))
	}
	if m := strings.ToUpper(strings.TrimSpace(c.Query("method"))); m != "" {
		base = base.Where("method = ?", m)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		h.Log.Error().Err(err).Msg("count audit logs")
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	var logs []models.AuditLog
	if err := base.
		Order("created_at DESC, id DESC").
		Limit(size).
		Offset(offset).
		Find(&logs).Error; err != nil {
		h.Log.Error().Err(err).Msg("list audit logs")
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	items := make([]logResp, 0, len(logs))
	for i := range logs {
		l := &logs[i]
		items = append(items, logResp{
			ID:        l.ID,
			Method:    l.Method,
			Path:      h.decryptField(l.PathEnc),
			Action:    h.decryptField(l.ActionEnc),
			Status:    l.Status,
			IP:        l.IP,
			UserAgent: l.UserAgent,
			CreatedAt: l.CreatedAt,
		})
	}

	util.Success(c, util.Response{
		"items": items,
		"total": total,
		"page":  page,
		"size":  size,
	})
}
