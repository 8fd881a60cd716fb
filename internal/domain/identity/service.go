package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/sanatorium/sanatorium/internal/platform/apierr"
	"github.com/sanatorium/sanatorium/internal/platform/auth"
)

type Service struct {
	repo   UserRepository
	issuer *auth.TokenIssuer
}

func NewService(repo UserRepository, issuer *auth.TokenIssuer) *Service {
	return &Service{repo: repo, issuer: issuer}
}

const minPasswordLen = 8

// Register creates a new account. The role defaults to Patient; only an
// admin caller may assign another role.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	fields := apierr.Fields{}

	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" {
		fields["email"] = "this field is required"
	}
	username := strings.TrimSpace(in.Username)
	if username == "" {
		fields["username"] = "this field is required"
	}
	if in.Password == "" {
		fields["password"] = "this field is required"
	} else if len(in.Password) < minPasswordLen {
		fields["password"] = fmt.Sprintf("password must be at least %d characters", minPasswordLen)
	}

	role := auth.RolePatient
	if in.Role != "" {
		role = auth.ParseRole(in.Role)
		if !role.Valid() {
			fields["role"] = fmt.Sprintf("%s is not a valid role", in.Role)
		} else if role != auth.RolePatient {
			p, ok := auth.PrincipalFromContext(ctx)
			if !ok || p.Role != auth.RoleAdmin {
				return nil, apierr.ErrForbidden
			}
		}
	}

	if len(fields) > 0 {
		return nil, fields
	}

	if exists, err := s.repo.EmailExists(ctx, email); err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	} else if exists {
		return nil, apierr.Fields{"email": "user with this email already exists"}
	}
	if exists, err := s.repo.UsernameExists(ctx, username); err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	} else if exists {
		return nil, apierr.Fields{"username": "user with this username already exists"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &User{
		ID:           uuid.New(),
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		FirstName:    in.FirstName,
		SecondName:   in.SecondName,
		ThirdName:    in.ThirdName,
		Phone:        in.Phone,
		PhotoURL:     in.PhotoURL,
		Active:       true,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// Login verifies credentials and issues an access token.
func (s *Service) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	fields := apierr.Fields{}
	if in.Email == "" {
		fields["email"] = "this field is required"
	}
	if in.Password == "" {
		fields["password"] = "this field is required"
	}
	if len(fields) > 0 {
		return nil, fields
	}

	u, err := s.repo.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(in.Email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apierr.Fields{"email": "invalid email or password"}
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	if !u.Active {
		return nil, apierr.Fields{"email": "account is deactivated"}
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)) != nil {
		return nil, apierr.Fields{"email": "invalid email or password"}
	}

	token, err := s.issuer.Issue(u.ID.String(), u.Role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &LoginResult{Token: token, User: u}, nil
}

// Get returns the account with the given id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apierr.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// Me returns the caller's own account.
func (s *Service) Me(ctx context.Context) (*User, error) {
	p, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		return nil, apierr.ErrForbidden
	}
	id, err := uuid.Parse(p.UserID)
	if err != nil {
		return nil, apierr.ErrNotFound
	}
	return s.Get(ctx, id)
}

// List returns accounts page by page. Admin only.
func (s *Service) List(ctx context.Context, limit, offset int) ([]*User, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// Update applies a partial update. Users may edit their own account; admins
// may edit anyone.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*User, error) {
	p, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		return nil, apierr.ErrForbidden
	}
	if p.Role != auth.RoleAdmin && p.UserID != id.String() {
		return nil, apierr.ErrForbidden
	}

	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*in.Email))
		if email == "" {
			return nil, apierr.Fields{"email": "this field is required"}
		}
		if email != u.Email {
			if exists, err := s.repo.EmailExists(ctx, email); err != nil {
				return nil, fmt.Errorf("check email: %w", err)
			} else if exists {
				return nil, apierr.Fields{"email": "user with this email already exists"}
			}
			u.Email = email
		}
	}
	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if username == "" {
			return nil, apierr.Fields{"username": "this field is required"}
		}
		if username != u.Username {
			if exists, err := s.repo.UsernameExists(ctx, username); err != nil {
				return nil, fmt.Errorf("check username: %w", err)
			} else if exists {
				return nil, apierr.Fields{"username": "user with this username already exists"}
			}
			u.Username = username
		}
	}
	if in.Password != nil {
		if len(*in.Password) < minPasswordLen {
			return nil, apierr.Fields{"password": fmt.Sprintf("password must be at least %d characters", minPasswordLen)}
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		u.PasswordHash = string(hash)
	}
	if in.FirstName != nil {
		u.FirstName = *in.FirstName
	}
	if in.SecondName != nil {
		u.SecondName = *in.SecondName
	}
	if in.ThirdName != nil {
		u.ThirdName = *in.ThirdName
	}
	if in.Phone != nil {
		u.Phone = *in.Phone
	}
	if in.PhotoURL != nil {
		u.PhotoURL = *in.PhotoURL
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}

// Deactivate disables an account without removing its history.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return fmt.Errorf("deactivate user: %w", err)
	}
	return nil
}
