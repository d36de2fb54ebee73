package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	domain "github.com/siyaamtanzeel/Motoshop/internal/entity"
)

type TokenConfig struct {
	Secret   string
	Issuer   string
	Audience string
	TTL      time.Duration
}

// Claims carry only the subject; role and active status are re-read per request.
type Claims struct {
	jwt.RegisteredClaims
}

type Tokens struct {
	cfg TokenConfig
	now func() time.Time
}

func NewTokens(cfg TokenConfig) *Tokens {
	if cfg.TTL <= 0 {
		cfg.TTL = 7 * 24 * time.Hour
	}
	return &Tokens{cfg: cfg, now: time.Now}
}

func (t *Tokens) Issue(u *domain.User) (string, time.Time, error) {
	now := t.now()
	exp := now.Add(t.cfg.TTL)
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   u.ID,
		Issuer:    t.cfg.Issuer,
		Audience:  jwt.ClaimStrings{t.cfg.Audience},
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(t.cfg.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Parse verifies signature, expiry, issuer and audience and returns the subject.
func (t *Tokens) Parse(raw string) (string, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(t.cfg.Secret), nil
	},
		jwt.WithLeeway(30*time.Second), // small clock skew
		jwt.WithIssuer(t.cfg.Issuer),
		jwt.WithAudience(t.cfg.Audience),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !token.Valid {
		return "", fmt.Errorf("%w: invalid token", domain.ErrUnauthenticated)
	}
	if claims.Subject == "" {
		return "", errors.Join(domain.ErrUnauthenticated, errors.New("token has no subject"))
	}
	return claims.Subject, nil
}
