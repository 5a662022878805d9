package app_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"stayloft/internal/app"
	"stayloft/internal/domain"
)

type stubCodec struct{ issued []domain.User }

func (c *stubCodec) Issue(u domain.User) (string, error) {
	c.issued = append(c.issued, u)
	return "token-" + u.ID, nil
}
func (c *stubCodec) Verify(string) (domain.TokenClaims, error) {
	return domain.TokenClaims{}, domain.ErrUnauthorized
}

func newIdentityFixture() (*app.IdentityService, *fakeUserRepo, *stubCodec) {
	users := &fakeUserRepo{users: map[string]domain.User{}}
	codec := &stubCodec{}
	return app.NewIdentityService(users, codec), users, codec
}

func TestRegister_CaseFoldsEmailAndHashes(t *testing.T) {
	svc, users, codec := newIdentityFixture()

	u, token, err := svc.Register(context.Background(), "Ana", "  Ana@Example.COM ", "s3cretpass", "")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if u.Email != "ana@example.com" {
		t.Fatalf("email not case-folded: %q", u.Email)
	}
	if u.Role != domain.RoleHost {
		t.Fatalf("role should default to host, got %q", u.Role)
	}
	if token != "token-"+u.ID {
		t.Fatalf("unexpected token %q", token)
	}
	stored := users.users[u.ID]
	if stored.PasswordHash == "s3cretpass" || !strings.HasPrefix(stored.PasswordHash, "$2") {
		t.Fatalf("password not bcrypt-hashed: %q", stored.PasswordHash)
	}
	if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("s3cretpass")) != nil {
		t.Fatal("stored hash does not verify the password")
	}
	if len(codec.issued) != 1 {
		t.Fatalf("expected one issued token, got %d", len(codec.issued))
	}
}

func TestRegister_EmailTakenRegardlessOfCase(t *testing.T) {
	svc, _, _ := newIdentityFixture()
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "Ana", "ana@example.com", "s3cretpass", domain.RoleGuest); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, _, err := svc.Register(ctx, "Imposter", "ANA@EXAMPLE.COM", "otherpass1", domain.RoleGuest)
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("err = %v, want ErrEmailTaken", err)
	}
}

func TestRegister_RejectsUnknownRole(t *testing.T) {
	svc, _, _ := newIdentityFixture()
	_, _, err := svc.Register(context.Background(), "Ana", "ana@example.com", "s3cretpass", "admin")
	if !errors.Is(err, domain.ErrInvalid) {
		t.Fatalf("err = %v, want ErrInvalid", err)
	}
}

func TestAuthenticate(t *testing.T) {
	svc, _, _ := newIdentityFixture()
	ctx := context.Background()

	reg, _, err := svc.Register(ctx, "Ana", "ana@example.com", "s3cretpass", domain.RoleGuest)
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	u, token, err := svc.Authenticate(ctx, "Ana@Example.com", "s3cretpass")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if u.ID != reg.ID || token == "" {
		t.Fatalf("unexpected result: %+v token=%q", u, token)
	}

	if _, _, err := svc.Authenticate(ctx, "ana@example.com", "wrongpass"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("wrong password: err = %v, want ErrUnauthorized", err)
	}
	if _, _, err := svc.Authenticate(ctx, "nobody@example.com", "s3cretpass"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("unknown email: err = %v, want ErrUnauthorized", err)
	}
}
