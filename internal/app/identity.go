package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"stayloft/internal/domain"
)

const bcryptCost = 10

// IdentityService registers and authenticates users and hands out
// signed bearer tokens. Emails are case-folded before every lookup so
// uniqueness holds regardless of how the caller typed them.
type IdentityService struct {
	users  domain.UserRepository
	tokens domain.TokenCodec
}

func NewIdentityService(u domain.UserRepository, t domain.TokenCodec) *IdentityService {
	return &IdentityService{users: u, tokens: t}
}

// Register creates a user and returns it with a fresh token. A taken
// email fails with domain.ErrEmailTaken. Role defaults to host.
func (s *IdentityService) Register(ctx context.Context, name, email, password string, role domain.Role) (domain.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if role == "" {
		role = domain.RoleHost
	}
	if !role.Valid() {
		return domain.User{}, "", fmt.Errorf("%w: role must be host or guest", domain.ErrInvalid)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return domain.User{}, "", domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.User{}, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("hash password: %w", err)
	}

	u := domain.User{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	// The unique index on email closes the register/register race; the
	// repository reports the loser as ErrEmailTaken.
	if err := s.users.Insert(ctx, u); err != nil {
		return domain.User{}, "", err
	}

	token, err := s.tokens.Issue(u)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("issue token: %w", err)
	}

	log.Info().Str("user", u.ID).Str("role", string(u.Role)).Msg("user registered")
	return u, token, nil
}

// Authenticate verifies credentials and returns the user with a fresh
// token. Unknown email and wrong password both fail with
// domain.ErrUnauthorized so the response never reveals which.
func (s *IdentityService) Authenticate(ctx context.Context, email, password string) (domain.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, "", domain.ErrUnauthorized
		}
		return domain.User{}, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return domain.User{}, "", domain.ErrUnauthorized
	}

	token, err := s.tokens.Issue(u)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("issue token: %w", err)
	}
	return u, token, nil
}
