package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"ecshop/internal/domain/model"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// 検証済みトークンの中身
type Claims struct {
	UserID       int64
	Role         model.Role
	TokenVersion int
	ExpiresAt    time.Time
}

// HS256で発行・検証する
type JWTManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTManager(secret string, ttl time.Duration) *JWTManager {
	return &JWTManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

type accessClaims struct {
	Role string `json:"role"`
	TV   int    `json:"tv"`
	jwt.RegisteredClaims
}

func (m *JWTManager) Issue(userID int64, role model.Role, tokenVersion int, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(m.ttl)

	claims := accessClaims{
		Role: string(role),
		TV:   tokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// 署名・期限・中身を確認する。失敗はすべてErrInvalidToken
func (m *JWTManager) Verify(raw string) (Claims, error) {
	var claims accessClaims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || tok == nil || !tok.Valid {
		return Claims{}, ErrInvalidToken
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return Claims{}, ErrInvalidToken
	}
	if claims.Role == "" || claims.TV < 0 {
		return Claims{}, ErrInvalidToken
	}

	return Claims{
		UserID:       userID,
		Role:         model.Role(claims.Role),
		TokenVersion: claims.TV,
		ExpiresAt:    claims.ExpiresAt.Time,
	}, nil
}
