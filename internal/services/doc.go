// Package services reads listening data from music providers and turns it into [Insights].
//
// # Spotify
//
// [SpotifyClient] wraps the Spotify Web API. It builds the OAuth2 authorization URL, exchanges the callback code for
// a token, and reads the user's top artists and tracks. Outgoing calls share a [rate.Limiter]; the client from [oauth2.Config.Client]
// built per request refreshes expired tokens using the refresh token.
//
// Tokens are not persisted. [TokenStore] keeps them in memory for the lifetime of the process.
//
// # Insights
//
// [BuildInsights] counts genres across the top artists and orders them by count, then name.
//
// # Error Handling
//
// Services use typed errors from the shared package:
//   - [shared.ErrNotAuthenticated] : no token for the request
//   - [shared.ErrTokenExpired] : the provider rejected the token, reauthorization needed
//   - [shared.ErrAPIRequest] : HTTP request failed or returned an error status
//   - [shared.ErrServiceUnavailable] : the provider is throttling requests
package services
