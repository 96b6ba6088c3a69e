// Package routes provides shared API route constants used by the SDK
// client and its tests to prevent endpoint path mismatches.
package routes

const (
	// AuthAnonym bootstraps an anonymous CIAM session bound to a browser fingerprint.
	AuthAnonym = "/auth/anonym"

	// AuthRefresh exchanges a refresh token for a new access token.
	AuthRefresh = "/auth/refresh" // #nosec G101 -- route path, not a credential

	// GenerateC4 renders a C4 container diagram from a plain-English prompt.
	GenerateC4 = "/generate/c4"
)
