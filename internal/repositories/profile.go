package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/pulse/internal/models"
)

// ProfileRepository persists [models.Profile] rows.
type ProfileRepository struct {
	db *sql.DB
}

// NewProfileRepository creates a new [ProfileRepository] with the given database connection
func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Create inserts a profile for an existing user.
func (r *ProfileRepository) Create(profile *models.Profile) error {
	if err := profile.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	return insertProfile(r.db, profile)
}

func insertProfile(ex execer, profile *models.Profile) error {
	query := `
		INSERT INTO profiles (id, display_name, email, created_at, updated_at) VALUES (?, ?, ?, ?, ?)
	`

	_, err := ex.Exec(query, profile.ID(), profile.DisplayName(), profile.Email(), profile.CreatedAt(), profile.UpdatedAt())
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: profile %s", ErrConflict, profile.ID())
	}
	if err != nil {
		return fmt.Errorf("failed to insert profile: %w", err)
	}

	return nil
}

// Get retrieves the profile of the user with the given ID.
func (r *ProfileRepository) Get(id string) (*models.Profile, error) {
	query := `
		SELECT id, display_name, email, created_at, updated_at
		FROM profiles
		WHERE id = ?
	`

	var (
		profileID   string
		displayName string
		email       string
		createdAt   time.Time
		updatedAt   time.Time
	)

	err := r.db.QueryRow(query, id).Scan(&profileID, &displayName, &email, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: profile %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query profile: %w", err)
	}

	profile := models.NewProfile(profileID, displayName, email)
	profile.SetCreatedAt(createdAt)
	profile.SetUpdatedAt(updatedAt)
	return profile, nil
}

// Update modifies the display name and email of a profile.
func (r *ProfileRepository) Update(profile *models.Profile) error {
	if err := profile.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now().UTC()

	query := `
		UPDATE profiles
		SET display_name = ?, email = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query, profile.DisplayName(), profile.Email(), now, profile.ID())
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	if err := expectRow(result, profile.ID()); err != nil {
		return err
	}

	profile.SetUpdatedAt(now)
	return nil
}
