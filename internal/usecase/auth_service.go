package usecase

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"cafe-orders/internal/clock"
	"cafe-orders/internal/domain"
)

const defaultTokenTTL = 12 * time.Hour

var errNoSecret = errors.New("jwt secret not configured")

type roleClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AuthService issues role sessions. With PasswordProtection off any role may
// sign in without a password.
type AuthService struct {
	JWTSecret          string
	PasswordProtection bool
	AdminPassword      string
	RolePassword       string
	TTL                time.Duration
	Clock              clock.Clock
}

func (s *AuthService) Login(role domain.Role, password string) (string, domain.Session, error) {
	if _, err := domain.ParseRole(string(role)); err != nil {
		return "", domain.Session{}, err
	}
	if s.PasswordProtection && !s.checkPassword(role, password) {
		return "", domain.Session{}, domain.ErrInvalidCredentials
	}
	if s.JWTSecret == "" {
		return "", domain.Session{}, errNoSecret
	}
	ttl := s.TTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	now := s.now()
	exp := now.Add(ttl).Truncate(time.Second)
	claims := roleClaims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(role),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(s.JWTSecret))
	if err != nil {
		return "", domain.Session{}, err
	}
	return signed, domain.Session{Role: role, ExpiresAt: exp.UnixMilli()}, nil
}

func (s *AuthService) checkPassword(role domain.Role, password string) bool {
	want := s.RolePassword
	if role == domain.RoleAdmin {
		want = s.AdminPassword
	}
	if want == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(want), []byte(password)) == 1
}

func (s *AuthService) Verify(token string) (domain.Session, error) {
	if s.JWTSecret == "" {
		return domain.Session{}, errNoSecret
	}
	var c roleClaims
	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		return []byte(s.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return domain.Session{}, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	role, err := domain.ParseRole(c.Role)
	if err != nil {
		return domain.Session{}, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	return domain.Session{Role: role, ExpiresAt: c.ExpiresAt.Time.UnixMilli()}, nil
}

func (s *AuthService) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock.Now()
}
