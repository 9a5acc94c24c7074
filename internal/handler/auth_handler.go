package handler

import (
	"errors"
	"net/http"

	"cinematch-go/internal/service"
	"cinematch-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// AuthHandler 结构体定义了管理员认证相关的处理器。
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler 创建一个新的 AuthHandler 实例。
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// Login 校验管理员账号并签发 token 对。
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求参数"})
		return
	}

	pair, err := h.authService.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "用户名或密码错误"})
			return
		}
		log.Errorf("[AuthHandler] 登录失败, error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "登录失败"})
		return
	}

	log.Infof("[AuthHandler] 管理员登录成功, username: %s", req.Username)
	c.JSON(http.StatusOK, gin.H{"code": 200, "data": pair, "message": "success"})
}

// RefreshToken 用 refresh token 换取新的 token 对。
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求参数"})
		return
	}

	pair, err := h.authService.Refresh(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "无效或已过期的 refresh token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "data": pair, "message": "success"})
}
