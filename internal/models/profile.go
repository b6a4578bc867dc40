package models

import (
	"fmt"
	"strings"
	"time"
)

// Profile holds the public details of a [User]; it shares the user's ID.
type Profile struct {
	id          string
	displayName string
	email       string
	createdAt   time.Time
	updatedAt   time.Time
}

// NewProfile creates a [Profile] for the user with the given ID.
func NewProfile(userID, displayName, email string) *Profile {
	now := time.Now().UTC()
	return &Profile{
		id:          userID,
		displayName: strings.TrimSpace(displayName),
		email:       strings.TrimSpace(email),
		createdAt:   now,
		updatedAt:   now,
	}
}

func (p *Profile) ID() string           { return p.id }
func (p *Profile) DisplayName() string  { return p.displayName }
func (p *Profile) Email() string        { return p.email }
func (p *Profile) CreatedAt() time.Time { return p.createdAt }
func (p *Profile) UpdatedAt() time.Time { return p.updatedAt }

func (p *Profile) SetDisplayName(name string) { p.displayName = strings.TrimSpace(name) }
func (p *Profile) SetEmail(email string)      { p.email = strings.TrimSpace(email) }
func (p *Profile) SetCreatedAt(t time.Time)   { p.createdAt = t }
func (p *Profile) SetUpdatedAt(t time.Time)   { p.updatedAt = t }

// Validate checks the profile references a user and carries a display name and a plausible email.
func (p *Profile) Validate() error {
	if p.id == "" {
		return fmt.Errorf("profile user id is required")
	}
	if p.displayName == "" {
		return fmt.Errorf("display name is required")
	}
	if !strings.Contains(p.email, "@") {
		return fmt.Errorf("email %q is invalid", p.email)
	}
	return nil
}
