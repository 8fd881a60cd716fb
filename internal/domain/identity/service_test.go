package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/sanatorium/sanatorium/internal/platform/apierr"
	"github.com/sanatorium/sanatorium/internal/platform/auth"
)

type memUserRepo struct {
	users map[uuid.UUID]*User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[uuid.UUID]*User{}}
}

func (r *memUserRepo) Create(ctx context.Context, u *User) error {
	r.users[u.ID] = u
	return nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return u, nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

func (r *memUserRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	for _, u := range r.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *memUserRepo) Update(ctx context.Context, u *User) error {
	r.users[u.ID] = u
	return nil
}

func (r *memUserRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	u, ok := r.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	u.Active = false
	return nil
}

func (r *memUserRepo) List(ctx context.Context, limit, offset int) ([]*User, int, error) {
	var items []*User
	for _, u := range r.users {
		items = append(items, u)
	}
	return items, len(items), nil
}

func newTestService() (*Service, *memUserRepo) {
	repo := newMemUserRepo()
	issuer := auth.NewTokenIssuer([]byte("test-secret"), time.Hour)
	return NewService(repo, issuer), repo
}

func asAdmin() context.Context {
	return auth.ContextWithPrincipal(context.Background(), auth.Principal{
		UserID: uuid.NewString(), Role: auth.RoleAdmin,
	})
}

func TestRegisterDefaultsToPatient(t *testing.T) {
	svc, _ := newTestService()

	u, err := svc.Register(context.Background(), RegisterInput{
		Email:    "Ivan@Example.COM",
		Username: "ivan",
		Password: "longenough",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.Role != auth.RolePatient {
		t.Errorf("role = %q, want Patient", u.Role)
	}
	if u.Email != "ivan@example.com" {
		t.Errorf("email = %q, want lowercased", u.Email)
	}
	if !u.Active {
		t.Error("new account should be active")
	}
	if u.PasswordHash == "longenough" {
		t.Error("password must not be stored in the clear")
	}
}

func TestRegisterFieldValidation(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Register(context.Background(), RegisterInput{Password: "short"})
	fields, ok := apierr.AsFields(err)
	if !ok {
		t.Fatalf("got %v, want field errors", err)
	}
	for _, f := range []string{"email", "username", "password"} {
		if _, ok := fields[f]; !ok {
			t.Errorf("missing error on %s: %v", f, fields)
		}
	}
}

func TestRegisterRoleEscalation(t *testing.T) {
	svc, _ := newTestService()

	in := RegisterInput{
		Email: "doc@example.com", Username: "doc", Password: "longenough", Role: "Doctor",
	}

	if _, err := svc.Register(context.Background(), in); !errors.Is(err, apierr.ErrForbidden) {
		t.Fatalf("anonymous doctor registration: got %v, want ErrForbidden", err)
	}

	u, err := svc.Register(asAdmin(), in)
	if err != nil {
		t.Fatalf("admin doctor registration: %v", err)
	}
	if u.Role != auth.RoleDoctor {
		t.Errorf("role = %q, want Doctor", u.Role)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newTestService()

	in := RegisterInput{Email: "a@example.com", Username: "first", Password: "longenough"}
	if _, err := svc.Register(context.Background(), in); err != nil {
		t.Fatalf("first register: %v", err)
	}

	in.Username = "second"
	_, err := svc.Register(context.Background(), in)
	fields, ok := apierr.AsFields(err)
	if !ok || fields["email"] == "" {
		t.Fatalf("got %v, want duplicate-email field error", err)
	}
}

func TestLogin(t *testing.T) {
	svc, _ := newTestService()
	if _, err := svc.Register(context.Background(), RegisterInput{
		Email: "a@example.com", Username: "a", Password: "longenough",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	res, err := svc.Login(context.Background(), LoginInput{Email: "a@example.com", Password: "longenough"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.Token == "" {
		t.Error("login should issue a token")
	}

	_, err = svc.Login(context.Background(), LoginInput{Email: "a@example.com", Password: "wrongpass"})
	if _, ok := apierr.AsFields(err); !ok {
		t.Fatalf("wrong password: got %v, want field error", err)
	}

	_, err = svc.Login(context.Background(), LoginInput{Email: "nobody@example.com", Password: "whatever"})
	fields, ok := apierr.AsFields(err)
	if !ok || fields["email"] != "invalid email or password" {
		t.Fatalf("unknown email: got %v, want generic credential error", err)
	}
}

func TestLoginDeactivatedAccount(t *testing.T) {
	svc, repo := newTestService()
	u, err := svc.Register(context.Background(), RegisterInput{
		Email: "a@example.com", Username: "a", Password: "longenough",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := repo.Deactivate(context.Background(), u.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	_, err = svc.Login(context.Background(), LoginInput{Email: "a@example.com", Password: "longenough"})
	fields, ok := apierr.AsFields(err)
	if !ok || fields["email"] != "account is deactivated" {
		t.Fatalf("got %v, want deactivated error", err)
	}
}

func TestUpdateSelfOrAdmin(t *testing.T) {
	svc, _ := newTestService()
	u, err := svc.Register(context.Background(), RegisterInput{
		Email: "a@example.com", Username: "a", Password: "longenough",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	phone := "+7-900-000-00-00"
	stranger := auth.ContextWithPrincipal(context.Background(), auth.Principal{
		UserID: uuid.NewString(), Role: auth.RolePatient,
	})
	if _, err := svc.Update(stranger, u.ID, UpdateInput{Phone: &phone}); !errors.Is(err, apierr.ErrForbidden) {
		t.Fatalf("stranger update: got %v, want ErrForbidden", err)
	}

	self := auth.ContextWithPrincipal(context.Background(), auth.Principal{
		UserID: u.ID.String(), Role: auth.RolePatient,
	})
	updated, err := svc.Update(self, u.ID, UpdateInput{Phone: &phone})
	if err != nil {
		t.Fatalf("self update: %v", err)
	}
	if updated.Phone != phone {
		t.Errorf("phone = %q, want %q", updated.Phone, phone)
	}

	if _, err := svc.Update(asAdmin(), u.ID, UpdateInput{Phone: &phone}); err != nil {
		t.Fatalf("admin update: %v", err)
	}
}

func TestDeactivateKeepsAccount(t *testing.T) {
	svc, repo := newTestService()
	u, err := svc.Register(context.Background(), RegisterInput{
		Email: "a@example.com", Username: "a", Password: "longenough",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := svc.Deactivate(context.Background(), u.ID); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}
	stored, ok := repo.users[u.ID]
	if !ok {
		t.Fatal("deactivation must not remove the account")
	}
	if stored.Active {
		t.Error("account should be inactive")
	}
}
