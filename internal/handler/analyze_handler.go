// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"errors"
	"net/http"
	"strings"

	"papermind-go/internal/config"
	"papermind-go/internal/repository"
	"papermind-go/internal/service"
	"papermind-go/pkg/log"
	"papermind-go/pkg/token"

	"github.com/gin-gonic/gin"
)

// 允许上传的文档扩展名，与前端的限制保持一致。
var allowedDocExts = []string{".pdf", ".doc", ".docx", ".txt"}

// AnalyzeHandler 处理文档分析请求。
type AnalyzeHandler struct {
	analyzeService service.AnalyzeService
}

// NewAnalyzeHandler 创建一个新的 AnalyzeHandler。
func NewAnalyzeHandler(analyzeService service.AnalyzeService) *AnalyzeHandler {
	return &AnalyzeHandler{analyzeService: analyzeService}
}

// Analyze 处理 POST /api/v1/analyze。
// multipart 表单字段：document（文档文件）、query（问题）、sessionId（会话标记）。
func (h *AnalyzeHandler) Analyze(c *gin.Context) {
	claims := c.MustGet("claims").(*token.CustomClaims)

	query := strings.TrimSpace(c.PostForm("query"))
	sessionToken, hasSessionToken := c.GetPostForm("sessionId")

	file, err := c.FormFile("document")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "未上传文档", "data": nil})
		return
	}
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "请提供分析问题", "data": nil})
		return
	}
	if !hasSessionToken || strings.TrimSpace(sessionToken) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "请提供会话标记，新会话请传 \"new\"", "data": nil})
		return
	}
	if file.Size > config.Conf.Upload.MaxSize() {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "文档超出大小限制", "data": nil})
		return
	}
	if !isAllowedDocType(file.Filename) {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "不支持的文档类型，仅支持 PDF、DOC、DOCX、TXT", "data": nil})
		return
	}

	caller := service.Caller{UserID: claims.UserID, Username: claims.Username}
	sessionID, answer, err := h.analyzeService.Analyze(c.Request.Context(), caller, sessionToken, query, file)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": http.StatusNotFound, "message": "会话不存在", "data": nil})
			return
		}
		log.Errorf("处理分析请求失败: user=%d, err=%v", claims.UserID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "分析请求处理失败", "data": nil})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data": gin.H{
			"sessionId": sessionID,
			"answer":    answer,
		},
	})
}

func isAllowedDocType(fileName string) bool {
	lower := strings.ToLower(fileName)
	for _, ext := range allowedDocExts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
