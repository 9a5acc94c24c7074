// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"cinematch-go/internal/service"
	"cinematch-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// RecommendHandler 结构体定义了推荐相关的处理器。
type RecommendHandler struct {
	recommendService service.RecommendService
}

// NewRecommendHandler 创建一个新的 RecommendHandler 实例。
func NewRecommendHandler(recommendService service.RecommendService) *RecommendHandler {
	return &RecommendHandler{recommendService: recommendService}
}

// Recommend 是处理推荐请求的 Gin 处理函数。
// 标题未命中以空列表呈现为"无结果"，而不是技术性错误。
func (h *RecommendHandler) Recommend(c *gin.Context) {
	title := c.Query("title")
	log.Infof("[RecommendHandler] 收到推荐请求, title: '%s'", title)

	if title == "" {
		log.Warnf("[RecommendHandler] 推荐请求失败: title 参数为空")
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的查询参数"})
		return
	}
	kStr := c.DefaultQuery("k", "0")
	k, err := strconv.Atoi(kStr)
	if err != nil || k < 0 {
		k = 0 // 0 表示使用配置的默认值
	}

	results, err := h.recommendService.Recommend(c.Request.Context(), title, k)
	if err != nil {
		if errors.Is(err, service.ErrIndexNotReady) {
			log.Warnf("[RecommendHandler] 索引尚未就绪")
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "推荐索引尚未就绪，请稍后再试"})
			return
		}
		log.Errorf("[RecommendHandler] 推荐服务返回错误, error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "推荐失败"})
		return
	}

	log.Infof("[RecommendHandler] 推荐成功, title: '%s', 返回 %d 条结果", title, len(results))
	c.JSON(http.StatusOK, gin.H{"code": 200, "data": results, "message": "success"})
}
