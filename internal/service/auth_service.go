package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidSession     = errors.New("invalid session token")
)

// AuthService 会话/角色上下文：固定凭据表 + 无状态会话令牌。
// 凭据表只是占位的信任桩，不是真正的鉴权边界。
type AuthService interface {
	// Login 校验凭据，通过后签发会话令牌（subject = barista 用户名）
	Login(username, password string) (string, error)
	// Identity 解析会话令牌，返回活跃的 barista 身份
	Identity(token string) (string, error)
}

type authService struct {
	// creds 用户名 → bcrypt 哈希。明文只在构造时存在。
	creds  map[string][]byte
	secret []byte
	ttl    time.Duration
}

// NewAuthService 由配置里的固定凭据表构造身份校验器
func NewAuthService(credentials map[string]string, secret string, ttl time.Duration) (AuthService, error) {
	if ttl <= 0 { ttl = 12 * time.Hour }
	creds := make(map[string][]byte, len(credentials))
	for name, password := range credentials {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash credential for %s: %w", name, err)
		}
		creds[name] = hash
	}
	return &authService{creds: creds, secret: []byte(secret), ttl: ttl}, nil
}

func (s *authService) Login(username, password string) (string, error) {
	hash, ok := s.creds[username]
	if !ok {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return token, nil
}

func (s *authService) Identity(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", ErrInvalidSession
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", ErrInvalidSession
	}
	return claims.Subject, nil
}
