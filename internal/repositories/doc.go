// Package repositories implements SQLite persistence for all domain entities.
//
// Each repository handles CRUD operations with atomic sequence generation for human-readable ordering.
// Users support soft deletes via deleted_at timestamps; deleted users are excluded from queries by default.
//
// Key Implementations:
//   - [UserRepository] : login accounts with username and slug lookups
//   - [ProfileRepository] : public profile data sharing the user's ID
//
// Constraint violations surface as [ErrConflict]; missing rows as [ErrNotFound].
package repositories
