package sdk

import (
	"crypto/sha1" //nolint:gosec // session fingerprint, not a credential hash
	"encoding/hex"
)

// FingerprintNA is the fixed value supplied by environments without a
// usable user-agent string, e.g. tests and non-browser runtimes.
const FingerprintNA = "NA"

// Fingerprint derives the stable session-binding identifier from a
// user-agent string: 40 lowercase hex characters of its SHA-1 digest.
// Empty input yields the empty sentinel, which can never collide with a
// real digest.
func Fingerprint(userAgent string) string {
	if userAgent == "" {
		return ""
	}
	sum := sha1.Sum([]byte(userAgent)) //nolint:gosec // see import note
	return hex.EncodeToString(sum[:])
}

// FingerprintScanner yields the fingerprint bound to anonymous sessions.
type FingerprintScanner interface {
	Scan() string
}

// UserAgentScanner fingerprints a configured user-agent string.
type UserAgentScanner struct {
	UserAgent string
}

func (s UserAgentScanner) Scan() string {
	return Fingerprint(s.UserAgent)
}

// StaticScanner returns a fixed fingerprint value.
type StaticScanner struct {
	Value string
}

func (s StaticScanner) Scan() string {
	return s.Value
}
