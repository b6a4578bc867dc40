package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/pulse/internal/slug"
)

// User is a login account. Usernames are unique among live accounts.
type User struct {
	id           string
	sequence     int
	username     string
	passwordHash string
	createdAt    time.Time
	updatedAt    time.Time
	deletedAt    *time.Time
}

// NewUser creates a [User] with fresh timestamps. The ID is assigned on creation.
func NewUser(sequence int, username, passwordHash string) *User {
	now := time.Now().UTC()
	return &User{
		sequence:     sequence,
		username:     strings.TrimSpace(username),
		passwordHash: passwordHash,
		createdAt:    now,
		updatedAt:    now,
	}
}

func (u *User) ID() string            { return u.id }
func (u *User) Sequence() int         { return u.sequence }
func (u *User) Username() string      { return u.username }
func (u *User) PasswordHash() string  { return u.passwordHash }
func (u *User) CreatedAt() time.Time  { return u.createdAt }
func (u *User) UpdatedAt() time.Time  { return u.updatedAt }
func (u *User) DeletedAt() *time.Time { return u.deletedAt }

// Slug is the key the user's profile picture is stored under.
func (u *User) Slug() string { return slug.Slugify(u.username) }

func (u *User) SetID(id string)             { u.id = id }
func (u *User) SetSequence(sequence int)    { u.sequence = sequence }
func (u *User) SetPasswordHash(hash string) { u.passwordHash = hash }
func (u *User) SetCreatedAt(t time.Time)    { u.createdAt = t }
func (u *User) SetUpdatedAt(t time.Time)    { u.updatedAt = t }
func (u *User) SetDeletedAt(t *time.Time)   { u.deletedAt = t }
func (u *User) IsDeleted() bool             { return u.deletedAt != nil }

// Validate checks the user has an ID, a username that yields a slug, and a password hash.
func (u *User) Validate() error {
	if u.id == "" {
		return fmt.Errorf("user id is required")
	}
	if u.username == "" {
		return fmt.Errorf("username is required")
	}
	if u.Slug() == "" {
		return fmt.Errorf("username %q must contain a letter or digit", u.username)
	}
	if u.passwordHash == "" {
		return fmt.Errorf("password hash is required")
	}
	return nil
}
