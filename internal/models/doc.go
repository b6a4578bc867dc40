// Package models defines domain entities and persistence interfaces for the pulse service.
//
// Persistent entities:
//   - [User] : login account holding a unique username and a password hash
//   - [Profile] : public profile data (display name, email) keyed by the user's ID
//
// All persistent entities implement the [Model] interface providing ID, timestamps and validation.
// The [Repository] interface defines standard CRUD operations for database access.
package models
