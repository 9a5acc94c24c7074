package handler

import (
	"net/http"

	"cinematch-go/internal/service"
	"cinematch-go/pkg/log"
	"cinematch-go/pkg/token"

	"github.com/gin-gonic/gin"
)

// AdminHandler 结构体定义了索引管理相关的处理器。
type AdminHandler struct {
	adminService service.AdminService
}

// NewAdminHandler 创建一个新的 AdminHandler 实例。
func NewAdminHandler(adminService service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

type rebuildRequest struct {
	// ForceFetch 为 true 时强制重新获取数据集快照
	ForceFetch bool `json:"forceFetch"`
}

// TriggerRebuild 投递一个索引重建任务。重建在后台串行执行。
func (h *AdminHandler) TriggerRebuild(c *gin.Context) {
	var req rebuildRequest
	// 请求体可为空，默认不强制重新获取
	_ = c.ShouldBindJSON(&req)

	requestedBy := "unknown"
	if v, exists := c.Get("claims"); exists {
		if claims, ok := v.(*token.CustomClaims); ok {
			requestedBy = claims.Username
		}
	}

	taskID, err := h.adminService.TriggerRebuild(requestedBy, req.ForceFetch)
	if err != nil {
		log.Errorf("[AdminHandler] 投递重建任务失败, error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "投递重建任务失败"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"code": 202, "data": gin.H{"taskId": taskID}, "message": "rebuild scheduled"})
}

// IndexStatus 返回当前在线索引的状态。
func (h *AdminHandler) IndexStatus(c *gin.Context) {
	status := h.adminService.IndexStatus()
	c.JSON(http.StatusOK, gin.H{"code": 200, "data": status, "message": "success"})
}
