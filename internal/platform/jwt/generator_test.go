package jwtmw

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TestNewGenerator は各種設定でGeneratorが正しく生成されることを検証します。
func TestNewGenerator(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		secret     string
		expiration time.Duration
	}{
		{"standard config", "my-secret-key", time.Hour},
		{"long expiration", "secret", 24 * time.Hour * 30},
		{"short expiration", "s", time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			gen := NewGenerator(tt.secret, tt.expiration)

			if string(gen.secret) != tt.secret {
				t.Errorf("expected secret %q, got %q", tt.secret, string(gen.secret))
			}
			if gen.expiration != tt.expiration {
				t.Errorf("expected expiration %v, got %v", tt.expiration, gen.expiration)
			}
		})
	}
}

// TestGenerator_GenerateToken は生成されたトークンがsubとoperatorロールを含むことを検証します。
func TestGenerator_GenerateToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		subject string
	}{
		{"plain subject", "ops"},
		{"email subject", "oncall+recipes@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			gen := NewGenerator("test-secret", time.Hour)
			tokenStr, err := gen.GenerateToken(tt.subject)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			token, err := jwt.Parse(tokenStr, func(tok *jwt.Token) (interface{}, error) {
				if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
					t.Errorf("unexpected signing method: %v", tok.Header["alg"])
				}
				return []byte("test-secret"), nil
			})
			if err != nil {
				t.Fatalf("failed to parse token: %v", err)
			}
			if !token.Valid {
				t.Error("expected token to be valid")
			}

			claims := token.Claims.(jwt.MapClaims)
			if sub, _ := claims["sub"].(string); sub != tt.subject {
				t.Errorf("expected sub %q, got %v", tt.subject, claims["sub"])
			}
			if role, _ := claims["role"].(string); role != RoleOperator {
				t.Errorf("expected role %q, got %v", RoleOperator, claims["role"])
			}
		})
	}
}

// TestGenerator_GenerateToken_EmptySubject は空のsubjectが拒否されることを検証します。
func TestGenerator_GenerateToken_EmptySubject(t *testing.T) {
	t.Parallel()

	_, err := NewGenerator("test-secret", time.Hour).GenerateToken("")
	if !errors.Is(err, ErrEmptySubject) {
		t.Errorf("expected ErrEmptySubject, got %v", err)
	}
}

// TestGenerator_GenerateToken_Expiration はトークンのexp・iatクレームが正しい時刻範囲内であることを検証します。
func TestGenerator_GenerateToken_Expiration(t *testing.T) {
	t.Parallel()

	expiration := 2 * time.Hour
	gen := NewGenerator("test-secret", expiration)

	before := time.Now().Truncate(time.Second)
	tokenStr, err := gen.GenerateToken("ops")
	after := time.Now().Truncate(time.Second).Add(time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	token, _ := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	claims := token.Claims.(jwt.MapClaims)

	expUnix := int64(claims["exp"].(float64))
	if expUnix < before.Add(expiration).Unix() || expUnix > after.Add(expiration).Unix() {
		t.Errorf("exp %d not in expected range", expUnix)
	}
	iatUnix := int64(claims["iat"].(float64))
	if iatUnix < before.Unix() || iatUnix > after.Unix() {
		t.Errorf("iat %d not in expected range [%d, %d]", iatUnix, before.Unix(), after.Unix())
	}
}

// TestGenerator_TokenPassesMiddleware は発行したトークンがOperatorRequiredを通過することを検証します。
func TestGenerator_TokenPassesMiddleware(t *testing.T) {
	const secret = "roundtrip-secret"
	t.Setenv(EnvKeyJWTSecret, secret)

	tokenStr, err := NewGenerator(secret, time.Minute).GenerateToken("ops")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c, w := newBearerContext(tokenStr)
	OperatorRequired()(c)

	if c.IsAborted() {
		t.Fatalf("expected request to pass, got %d: %s", w.Code, w.Body.String())
	}
}
