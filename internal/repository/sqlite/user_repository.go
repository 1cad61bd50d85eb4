package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"aboard/internal/domain"
	"aboard/internal/repository"
)

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	email TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	subscribing INTEGER NOT NULL DEFAULT 0,
	is_master INTEGER NOT NULL DEFAULT 0,
	is_deleted INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_users_is_deleted ON users (is_deleted);
CREATE INDEX IF NOT EXISTS idx_users_created_at ON users (created_at);
`

const selectUsers = `
SELECT u.id, u.email, u.name, u.password_hash, u.subscribing, u.is_master, u.is_deleted, u.created_at, u.updated_at
FROM users u`

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

var _ repository.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createUsersTable); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (int64, error) {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	res, err := r.db.ExecContext(ctx, `
INSERT INTO users (email, name, password_hash, subscribing, is_master, is_deleted, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, 0, ?, ?)`,
		user.Email,
		user.Name,
		user.PasswordHash,
		boolToInt(user.Subscribing),
		boolToInt(user.IsMaster),
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("insert user %s: %w", user.Email, repository.ErrDuplicate)
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("user last insert id: %w", err)
	}
	user.ID = id
	return id, nil
}

// ExistsByEmail also counts withdrawn accounts: an email is never reused.
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM users WHERE email = ?`, email).Scan(&count); err != nil {
		return false, fmt.Errorf("count users by email: %w", err)
	}
	return count > 0, nil
}

func (r *UserRepository) GetActiveByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, selectUsers+`
WHERE u.email = ? AND `+userActive,
		email,
	)
	return scanUser(row)
}

func (r *UserRepository) ListActiveByEmail(ctx context.Context, email string) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, selectUsers+`
WHERE u.email = ? AND `+userActive+`
LIMIT 2`,
		email,
	)
	if err != nil {
		return nil, fmt.Errorf("query users by email: %w", err)
	}
	return collectUsers(rows)
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, selectUsers+`
WHERE u.id = ? AND `+userActive,
		id,
	)
	return scanUser(row)
}

func (r *UserRepository) List(ctx context.Context, filter repository.Filter) ([]domain.User, error) {
	var w where
	w.add(userActive)
	w.contains("u.email", filter.Contains)

	query := selectUsers + "\n" + w.String() + "\nORDER BY u.created_at ASC, u.id ASC" + limitClause(filter.Limit, filter.Offset)
	rows, err := r.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	return collectUsers(rows)
}

// UpdateProfile keeps the current hash when passwordHash is empty.
func (r *UserRepository) UpdateProfile(ctx context.Context, id int64, subscribing bool, passwordHash string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE users
SET subscribing = ?, password_hash = COALESCE(NULLIF(?, ''), password_hash), updated_at = ?
WHERE id = ? AND is_deleted = 0`,
		boolToInt(subscribing),
		passwordHash,
		time.Now().UTC(),
		id,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return expectAffected(res, "update user")
}

func (r *UserRepository) SetMaster(ctx context.Context, id int64, isMaster bool) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE users SET is_master = ?, updated_at = ? WHERE id = ? AND is_deleted = 0`,
		boolToInt(isMaster),
		time.Now().UTC(),
		id,
	)
	if err != nil {
		return fmt.Errorf("set user master flag: %w", err)
	}
	return expectAffected(res, "set user master flag")
}

func (r *UserRepository) SoftDelete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE users SET is_deleted = 1, updated_at = ? WHERE id = ? AND is_deleted = 0`,
		time.Now().UTC(),
		id,
	)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return expectAffected(res, "delete user")
}

func collectUsers(rows *sql.Rows) ([]domain.User, error) {
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

func scanUser(row scanner) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.PasswordHash,
		&user.Subscribing,
		&user.IsMaster,
		&user.IsDeleted,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &user, nil
}

func expectAffected(res sql.Result, op string) error {
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if aff == 0 {
		return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}
	return nil
}
