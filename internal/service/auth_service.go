package service

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/aima-hub/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AdminSubject 管理员令牌主体
const AdminSubject = "admin"

// AuthService 管理端认证服务
type AuthService struct {
	cfg config.AdminConfig
	now func() time.Time
}

// NewAuthService 创建认证服务实例
func NewAuthService(cfg config.AdminConfig) *AuthService {
	return &AuthService{cfg: cfg, now: time.Now}
}

// HashPassword 使用 bcrypt 加密密码
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// AdminClaims JWT 声明
type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// LoginResult 登录结果
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Login 校验管理员口令并签发令牌
func (s *AuthService) Login(password string) (*LoginResult, error) {
	if s.cfg.PasswordHash == "" && s.cfg.Password == "" {
		return nil, ErrLoginDisabled
	}
	if password == "" || !s.verifyPassword(password) {
		return nil, ErrInvalidCredentials
	}
	token, expiresAt, err := s.GenerateJWT()
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt}, nil
}

func (s *AuthService) verifyPassword(password string) bool {
	if s.cfg.PasswordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(s.cfg.PasswordHash), []byte(password)) == nil
	}
	// 先取摘要再比较，避免长度差异泄露
	want := sha256.Sum256([]byte(s.cfg.Password))
	got := sha256.Sum256([]byte(password))
	return subtle.ConstantTimeCompare(want[:], got[:]) == 1
}

// GenerateJWT 生成管理员 JWT
func (s *AuthService) GenerateJWT() (string, time.Time, error) {
	now := s.now()
	hours := s.cfg.TokenExpireHours
	if hours <= 0 {
		hours = 24
	}
	expiresAt := now.Add(time.Duration(hours) * time.Hour)
	claims := AdminClaims{
		Role: AdminSubject,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   AdminSubject,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ParseJWT 解析管理员 JWT
func (s *AuthService) ParseJWT(tokenString string) (*AdminClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	token, err := parser.ParseWithClaims(tokenString, &AdminClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, ErrTokenInvalid
	}
	claims, ok := token.Claims.(*AdminClaims)
	if !ok || !token.Valid || claims.Role != AdminSubject {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// Authenticate 校验 bearer 凭证：静态 token 或登录签发的 JWT
func (s *AuthService) Authenticate(credential string) (string, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return "", ErrTokenInvalid
	}
	if s.cfg.Token != "" && subtle.ConstantTimeCompare([]byte(credential), []byte(s.cfg.Token)) == 1 {
		return AdminSubject, nil
	}
	claims, err := s.ParseJWT(credential)
	if err != nil {
		if errors.Is(err, ErrTokenInvalid) {
			return "", err
		}
		return "", ErrTokenInvalid
	}
	return claims.Subject, nil
}
