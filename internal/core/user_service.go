package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned by Authenticate for a bad email or
// password. The web layer maps it to 401 without leaking which one failed.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserService manages system users, their permissions, and login checks.
type UserService interface {
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]User, error)
	Create(ctx context.Context, u User, password string) (*User, error)
	Update(ctx context.Context, u User) (*User, error)
	SetPassword(ctx context.Context, id, password string) error
	Delete(ctx context.Context, id string) error

	Authenticate(ctx context.Context, email, password string) (*User, error)
	Permissions(ctx context.Context, userID string) ([]string, error)
	SetPermissions(ctx context.Context, userID string, permissions []string) error

	// CanAccessCompany reports whether the user may select the company:
	// either the user has all-companies access or is pinned to it.
	CanAccessCompany(ctx context.Context, userID, companyID string) (bool, error)
}

type userService struct {
	pool *pgxpool.Pool
}

// NewUserService constructs a UserService backed by PostgreSQL.
func NewUserService(pool *pgxpool.Pool) UserService {
	return &userService{pool: pool}
}

const userColumns = "id, name, email, password_hash, role, company_id, has_all_companies_access, is_active, created_at"

func scanUser(row pgx.Row) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CompanyID,
		&u.HasAllCompanies, &u.IsActive, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx,
		"SELECT "+userColumns+" FROM system_users WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch user %s: %w", id, err)
	}
	return u, nil
}

func (s *userService) GetByEmail(ctx context.Context, email string) (*User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx,
		"SELECT "+userColumns+" FROM system_users WHERE email = $1", email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", email, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch user %s: %w", email, err)
	}
	return u, nil
}

func (s *userService) List(ctx context.Context) ([]User, error) {
	rows, err := s.pool.Query(ctx, "SELECT "+userColumns+" FROM system_users ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func (s *userService) Create(ctx context.Context, u User, password string) (*User, error) {
	if err := validateUser(u); err != nil {
		return nil, err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	err = s.pool.QueryRow(ctx, `
		INSERT INTO system_users (name, email, password_hash, role, company_id, has_all_companies_access, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, u.Name, u.Email, hash, u.Role, u.CompanyID, u.HasAllCompanies, u.IsActive).
		Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	u.PasswordHash = hash
	return &u, nil
}

func (s *userService) Update(ctx context.Context, u User) (*User, error) {
	if err := validateUser(u); err != nil {
		return nil, err
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE system_users
		SET name = $2, email = $3, role = $4, company_id = $5, has_all_companies_access = $6, is_active = $7
		WHERE id = $1
	`, u.ID, u.Name, u.Email, u.Role, u.CompanyID, u.HasAllCompanies, u.IsActive)
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("user %s: %w", u.ID, ErrNotFound)
	}
	return &u, nil
}

func (s *userService) SetPassword(ctx context.Context, id, password string) error {
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, "UPDATE system_users SET password_hash = $2 WHERE id = $1", id, hash)
	if err != nil {
		return fmt.Errorf("failed to set password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *userService) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM system_users WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *userService) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := s.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !u.IsActive {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *userService) Permissions(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT permission FROM user_permissions WHERE user_id = $1 ORDER BY permission", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list permissions: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("failed to scan permission: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// SetPermissions replaces the user's permission set atomically.
func (s *userService) SetPermissions(ctx context.Context, userID string, permissions []string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM user_permissions WHERE user_id = $1", userID); err != nil {
		return fmt.Errorf("failed to clear permissions: %w", err)
	}
	for _, p := range permissions {
		if _, err := tx.Exec(ctx,
			"INSERT INTO user_permissions (user_id, permission) VALUES ($1, $2)", userID, p); err != nil {
			return fmt.Errorf("failed to insert permission %q: %w", p, err)
		}
	}
	return tx.Commit(ctx)
}

func (s *userService) CanAccessCompany(ctx context.Context, userID, companyID string) (bool, error) {
	u, err := s.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	if u.HasAllCompanies {
		return true, nil
	}
	return u.CompanyID != nil && *u.CompanyID == companyID, nil
}

func validateUser(u User) error {
	if u.Name == "" || u.Email == "" {
		return fmt.Errorf("%w: name and email are required", ErrInvalidArgument)
	}
	if !u.HasAllCompanies && (u.CompanyID == nil || *u.CompanyID == "") {
		return fmt.Errorf("%w: user without all-companies access must be pinned to a company", ErrInvalidArgument)
	}
	return nil
}

func hashPassword(password string) (string, error) {
	if len(password) < 8 {
		return "", fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidArgument)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
