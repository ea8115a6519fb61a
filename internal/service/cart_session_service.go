package service

import (
	"strings"
	"time"

	"github.com/tablecart/internal/constants"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// CartSessionClaims 购物车会话 JWT Claims
type CartSessionClaims struct {
	SessionID    string `json:"sid"`
	StorefrontID string `json:"storefront_id"`
	jwt.RegisteredClaims
}

// CartSession 新签发的会话
type CartSession struct {
	Token     string    `json:"token"`
	SessionID string    `json:"session_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CartSessionService 购物车会话服务（匿名顾客，按店铺绑定）
type CartSessionService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewCartSessionService 创建会话服务
func NewCartSessionService(secret string, ttl time.Duration) *CartSessionService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &CartSessionService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue 签发会话。sessionID 为空时生成新的会话ID，非空时续期原会话。
func (s *CartSessionService) Issue(storefrontID, sessionID string) (*CartSession, error) {
	storefrontID = strings.TrimSpace(storefrontID)
	if storefrontID == "" {
		return nil, ErrStorefrontNotFound
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := CartSessionClaims{
		SessionID:    sessionID,
		StorefrontID: storefrontID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    constants.CartSessionIssuer,
			Subject:   sessionID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return nil, err
	}
	return &CartSession{Token: tokenString, SessionID: sessionID, ExpiresAt: expiresAt}, nil
}

// Parse 解析会话 token
func (s *CartSessionService) Parse(tokenString string) (*CartSessionClaims, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, ErrCartSessionInvalid
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(constants.CartSessionIssuer),
		jwt.WithTimeFunc(s.now),
	)
	claims := &CartSessionClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrCartSessionInvalid
	}
	if claims.SessionID == "" || claims.StorefrontID == "" {
		return nil, ErrCartSessionInvalid
	}
	return claims, nil
}

// ParseForStorefront 解析并校验会话所属店铺
func (s *CartSessionService) ParseForStorefront(tokenString, storefrontID string) (*CartSessionClaims, error) {
	claims, err := s.Parse(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.StorefrontID != strings.TrimSpace(storefrontID) {
		return nil, ErrCartSessionMismatch
	}
	return claims, nil
}
