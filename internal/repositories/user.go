package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/pulse/internal/models"
	"github.com/desertthunder/pulse/internal/shared"
)

const userColumns = `id, sequence, username, password_hash, created_at, updated_at, deleted_at`

// UserRepository implements [models.Repository] for [models.User] persistence.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new [UserRepository] with the given database connection
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user into the database with generated ID and sequence.
//
// Returns [ErrConflict] when the username or its slug is already registered.
func (r *UserRepository) Create(user *models.User) error {
	if err := r.prepare(user); err != nil {
		return err
	}
	return insertUser(r.db, user)
}

// CreateWithProfile inserts a new user and its profile in one transaction.
// Neither row is stored when either insert fails.
func (r *UserRepository) CreateWithProfile(user *models.User, profile *models.Profile) error {
	if err := profile.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if err := r.prepare(user); err != nil {
		return err
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertUser(tx, user); err != nil {
		return err
	}
	if err := insertProfile(tx, profile); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit user: %w", err)
	}
	return nil
}

// prepare assigns the ID and sequence. The sequence is drawn outside any
// insert transaction since it commits on its own.
func (r *UserRepository) prepare(user *models.User) error {
	if user.ID() == "" {
		user.SetID(shared.GenerateID())
	}

	if err := user.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "auth_users")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}
	user.SetSequence(sequence)
	return nil
}

func insertUser(ex execer, user *models.User) error {
	query := `
		INSERT INTO auth_users (id, sequence, username, slug, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := ex.Exec(query, user.ID(), user.Sequence(), user.Username(), user.Slug(), user.PasswordHash(), user.CreatedAt(), user.UpdatedAt())
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: username %q", ErrConflict, user.Username())
	}
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

// Get retrieves a user by ID, excluding soft-deleted users
func (r *UserRepository) Get(id string) (*models.User, error) {
	return r.getOne("id = ?", id)
}

// GetByUsername retrieves a live user by exact username.
func (r *UserRepository) GetByUsername(username string) (*models.User, error) {
	return r.getOne("username = ?", username)
}

// GetBySlug retrieves a live user whose username slugifies to slug.
func (r *UserRepository) GetBySlug(slug string) (*models.User, error) {
	return r.getOne("slug = ?", slug)
}

func (r *UserRepository) getOne(where string, arg any) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM auth_users WHERE ` + where + ` AND deleted_at IS NULL`

	user, err := scanUser(r.db.QueryRow(query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: user %v", ErrNotFound, arg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return user, nil
}

// Update persists a user's password hash. Usernames are immutable.
func (r *UserRepository) Update(user *models.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now().UTC()

	query := `
		UPDATE auth_users
		SET password_hash = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, user.PasswordHash(), now, user.ID())
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	if err := expectRow(result, user.ID()); err != nil {
		return err
	}

	user.SetUpdatedAt(now)
	return nil
}

// Delete soft-deletes a user by ID
func (r *UserRepository) Delete(id string) error {
	query := `
		UPDATE auth_users
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	return expectRow(result, id)
}

// List retrieves all users matching the given criteria, excluding soft-deleted users.
//
// Supported criteria: "username" (exact match) and "slug" (exact match).
func (r *UserRepository) List(criteria map[string]any) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM auth_users WHERE deleted_at IS NULL`
	args := []any{}

	for _, key := range []string{"username", "slug"} {
		if v, ok := criteria[key].(string); ok && v != "" {
			query += " AND " + key + " = ?"
			args = append(args, v)
		}
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return users, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (*models.User, error) {
	var (
		id           string
		sequence     int
		username     string
		passwordHash string
		createdAt    time.Time
		updatedAt    time.Time
		deletedAt    sql.NullTime
	)

	if err := s.Scan(&id, &sequence, &username, &passwordHash, &createdAt, &updatedAt, &deletedAt); err != nil {
		return nil, err
	}

	user := models.NewUser(sequence, username, passwordHash)
	user.SetID(id)
	user.SetCreatedAt(createdAt)
	user.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		user.SetDeletedAt(&deletedAt.Time)
	}
	return user, nil
}

func expectRow(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s not found or already deleted", ErrNotFound, id)
	}
	return nil
}
