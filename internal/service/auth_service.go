package service

import (
	"errors"

	"cinematch-go/internal/config"
	"cinematch-go/pkg/log"
	"cinematch-go/pkg/token"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials 表示用户名或密码错误。
var ErrInvalidCredentials = errors.New("用户名或密码错误")

// AdminRole 是管理端路由要求的角色。
const AdminRole = "ADMIN"

// TokenPair 是一次登录签发的 access/refresh token 对。
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AuthService 接口定义了管理员认证操作。
// 管理员账号来自配置文件（bcrypt 哈希），没有用户表。
type AuthService interface {
	Login(username, password string) (*TokenPair, error)
	Refresh(refreshToken string) (*TokenPair, error)
}

type authService struct {
	adminCfg   config.AdminConfig
	jwtManager *token.JWTManager
}

// NewAuthService 创建一个新的 AuthService 实例。
func NewAuthService(adminCfg config.AdminConfig, jwtManager *token.JWTManager) AuthService {
	return &authService{adminCfg: adminCfg, jwtManager: jwtManager}
}

// Login 校验配置中的管理员账号并签发 token 对。
func (s *authService) Login(username, password string) (*TokenPair, error) {
	if username != s.adminCfg.Username {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.adminCfg.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issueTokens(username)
}

// Refresh 校验 refresh token 并签发新的 token 对。
func (s *authService) Refresh(refreshToken string) (*TokenPair, error) {
	claims, err := s.jwtManager.VerifyToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if claims.Role != AdminRole || claims.Username != s.adminCfg.Username {
		return nil, ErrInvalidCredentials
	}
	return s.issueTokens(claims.Username)
}

func (s *authService) issueTokens(username string) (*TokenPair, error) {
	access, err := s.jwtManager.GenerateToken(username, AdminRole)
	if err != nil {
		log.Error("签发 access token 失败", err)
		return nil, err
	}
	refresh, err := s.jwtManager.GenerateRefreshToken(username, AdminRole)
	if err != nil {
		log.Error("签发 refresh token 失败", err)
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
