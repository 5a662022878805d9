package tokens

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"stayloft/internal/domain"
)

type claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// JWT signs and verifies HS256 bearer tokens carrying the subject id,
// email, role and display name, valid for a bounded window.
type JWT struct {
	secret []byte
	ttl    time.Duration
}

func New(secret string, ttl time.Duration) *JWT {
	if ttl == 0 {
		ttl = 2 * time.Hour
	}
	return &JWT{secret: []byte(secret), ttl: ttl}
}

func (j *JWT) Issue(u domain.User) (string, error) {
	now := time.Now().UTC()
	c := claims{
		Email: u.Email,
		Name:  u.Name,
		Role:  string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(j.secret)
}

func (j *JWT) Verify(token string) (domain.TokenClaims, error) {
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return j.secret, nil
	})
	if err != nil || !parsed.Valid {
		return domain.TokenClaims{}, fmt.Errorf("%w: invalid or expired token", domain.ErrUnauthorized)
	}
	role := domain.Role(c.Role)
	if c.Subject == "" || !role.Valid() {
		return domain.TokenClaims{}, fmt.Errorf("%w: malformed token payload", domain.ErrUnauthorized)
	}
	return domain.TokenClaims{Sub: c.Subject, Email: c.Email, Name: c.Name, Role: role}, nil
}
