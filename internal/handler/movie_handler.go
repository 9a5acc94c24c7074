package handler

import (
	"net/http"
	"strconv"

	"cinematch-go/internal/service"
	"cinematch-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// MovieHandler 结构体定义了电影目录相关的处理器。
type MovieHandler struct {
	movieService service.MovieService
}

// NewMovieHandler 创建一个新的 MovieHandler 实例。
func NewMovieHandler(movieService service.MovieService) *MovieHandler {
	return &MovieHandler{movieService: movieService}
}

// ListTitles 返回按语料行序排列的全部标题，供选择器使用。
func (h *MovieHandler) ListTitles(c *gin.Context) {
	titles, err := h.movieService.ListTitles()
	if err != nil {
		log.Errorf("[MovieHandler] 查询标题列表失败, error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询标题列表失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "data": titles, "message": "success"})
}

// SearchTitles 是标题模糊检索的 Gin 处理函数（选择器自动补全）。
func (h *MovieHandler) SearchTitles(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的查询参数"})
		return
	}
	sizeStr := c.DefaultQuery("size", "10")
	size, err := strconv.Atoi(sizeStr)
	if err != nil {
		size = 10
	}

	docs, err := h.movieService.SearchTitles(c.Request.Context(), query, size)
	if err != nil {
		log.Errorf("[MovieHandler] 标题检索失败, q: '%s', error: %v", query, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "标题检索失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "data": docs, "message": "success"})
}
