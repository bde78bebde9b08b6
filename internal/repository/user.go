package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/davranaff/coffee/internal/model"
	"github.com/davranaff/coffee/internal/server"
	"github.com/jackc/pgx/v5"
)

const userColumns = `id, email, password_hash, first_name, last_name, phone, is_active, is_verified,
	verification_code, verification_code_expires_at, role, created_at, updated_at`

type UserRepository struct {
	server *server.Server
}

func NewUserRepository(s *server.Server) *UserRepository {
	return &UserRepository{server: s}
}

func (r *UserRepository) getOne(ctx context.Context, stmt string, args ...any) (*model.User, error) {
	rows, err := r.server.DB.Conn(ctx).Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute user query: %w", err)
	}

	user, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[model.User])
	if err != nil {
		return nil, notFound("users", err)
	}
	return &user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = @id`, pgx.NamedArgs{"id": id})
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower(@email)`,
		pgx.NamedArgs{"email": email})
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) (*model.User, error) {
	stmt := `
		INSERT INTO users (
			email, password_hash, first_name, last_name, phone, is_active, is_verified,
			verification_code, verification_code_expires_at, role
		) VALUES (
			@email, @password_hash, @first_name, @last_name, @phone, @is_active, @is_verified,
			@verification_code, @verification_code_expires_at, @role
		)
		RETURNING ` + userColumns

	return r.getOne(ctx, stmt, pgx.NamedArgs{
		"email":                        user.Email,
		"password_hash":                user.PasswordHash,
		"first_name":                   user.FirstName,
		"last_name":                    user.LastName,
		"phone":                        user.Phone,
		"is_active":                    user.IsActive,
		"is_verified":                  user.IsVerified,
		"verification_code":            user.VerificationCode,
		"verification_code_expires_at": user.VerificationCodeExpiresAt,
		"role":                         string(user.Role),
	})
}

// Update changes only the non-nil fields of upd.
func (r *UserRepository) Update(ctx context.Context, id int64, upd model.UserUpdate) (*model.User, error) {
	stmt := `
		UPDATE users SET
			first_name = COALESCE(@first_name, first_name),
			last_name = COALESCE(@last_name, last_name),
			phone = COALESCE(@phone, phone),
			password_hash = COALESCE(@password_hash, password_hash)
		WHERE id = @id
		RETURNING ` + userColumns

	return r.getOne(ctx, stmt, pgx.NamedArgs{
		"id":            id,
		"first_name":    upd.FirstName,
		"last_name":     upd.LastName,
		"phone":         upd.Phone,
		"password_hash": upd.PasswordHash,
	})
}

// MarkVerified flags the account as verified and clears its verification code.
func (r *UserRepository) MarkVerified(ctx context.Context, id int64) error {
	stmt := `
		UPDATE users SET
			is_verified = TRUE,
			verification_code = NULL,
			verification_code_expires_at = NULL
		WHERE id = @id`

	tag, err := r.server.DB.Conn(ctx).Exec(ctx, stmt, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("failed to mark user %d verified: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return notFound("users", pgx.ErrNoRows)
	}
	return nil
}

// Promote turns an existing account into an active, verified account of the given role.
func (r *UserRepository) Promote(ctx context.Context, id int64, role model.Role, passwordHash string) (*model.User, error) {
	stmt := `
		UPDATE users SET
			role = @role,
			password_hash = @password_hash,
			is_active = TRUE,
			is_verified = TRUE
		WHERE id = @id
		RETURNING ` + userColumns

	return r.getOne(ctx, stmt, pgx.NamedArgs{
		"id":            id,
		"role":          string(role),
		"password_hash": passwordHash,
	})
}

func (r *UserRepository) List(ctx context.Context, offset, limit int) ([]model.User, error) {
	stmt := `SELECT ` + userColumns + ` FROM users ORDER BY id OFFSET @offset LIMIT @limit`

	rows, err := r.server.DB.Conn(ctx).Query(ctx, stmt, pgx.NamedArgs{"offset": offset, "limit": limit})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.User])
	if err != nil {
		return nil, fmt.Errorf("failed to collect users: %w", err)
	}
	return users, nil
}

// DeleteUnverifiedBefore removes accounts that never verified their email
// and were created before cutoff. It returns the number of deleted rows.
func (r *UserRepository) DeleteUnverifiedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	stmt := `DELETE FROM users WHERE is_verified = FALSE AND created_at < @cutoff`

	tag, err := r.server.DB.Conn(ctx).Exec(ctx, stmt, pgx.NamedArgs{"cutoff": cutoff})
	if err != nil {
		return 0, fmt.Errorf("failed to delete unverified users: %w", err)
	}
	return tag.RowsAffected(), nil
}
