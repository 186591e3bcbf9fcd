// Package jwtmw は運用者向けエンドポイントを保護するJWTの発行と検証を提供します。
package jwtmw

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// EnvKeyJWTSecret は署名鍵を保持する環境変数名です。
	EnvKeyJWTSecret = "JWT_SECRET"
	// RoleOperator は検索履歴などの運用エンドポイントに必要なロールです。
	RoleOperator = "operator"
)

// ErrEmptySubject はsubjectが空の場合に返されます。
var ErrEmptySubject = errors.New("subject is required")

// Generator は運用者トークンを発行します。
type Generator struct {
	secret     []byte
	expiration time.Duration
}

// NewGenerator は指定したシークレットと有効期間でGeneratorを生成します。
func NewGenerator(secret string, expiration time.Duration) *Generator {
	return &Generator{
		secret:     []byte(secret),
		expiration: expiration,
	}
}

// GenerateToken はsubjectに対してoperatorロール付きのHS256トークンを発行します。
func (g *Generator) GenerateToken(subject string) (string, error) {
	if subject == "" {
		return "", ErrEmptySubject
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": RoleOperator,
		"exp":  now.Add(g.expiration).Unix(),
		"iat":  now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
