// Package auth implements account sign-up and login, signed session cookies, and one-shot flash messages.
//
// # Accounts
//
// [Service] validates sign-up input, hashes passwords with bcrypt, and persists users and their profiles through
// the repositories package. Usernames are unique by their slug, since the slug names the user's profile picture.
//
// # Sessions
//
// [SessionManager] stores the signed-in identity in an HS256 JWT carried by the "pulse_session" cookie.
// Nothing is kept server side, so a restart with the same secret keeps users signed in.
//
// # Flash Messages
//
// [SetFlash] and [PopFlash] carry a single message across a redirect in the "pulse_flash" cookie.
package auth
