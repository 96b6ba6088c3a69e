package sdk

import (
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// A compact token carries header, payload, and signature segments
// separated by dots. The client only decodes the payload; tokens minted
// for test fixtures may omit the signature segment.
const tokenSegmentsMin = 2

// Quotas are per-session limits attached to the access token's claims.
type Quotas struct {
	PromptLengthMax   int `json:"prompt_length_max"`
	RequestsPerMinute int `json:"rpm"`
	RequestsPerDay    int `json:"rpd"`
}

// AnonymousQuotas is the ceiling applied whenever no valid access token
// is present.
var AnonymousQuotas = Quotas{
	PromptLengthMax:   100,
	RequestsPerMinute: 1,
	RequestsPerDay:    1,
}

// Role encodes the user's role from the access token claims.
type Role int

const (
	RoleAnonymUser     Role = 0
	RoleRegisteredUser Role = 1
)

// IdentityClaims is the decoded payload of the identity token.
//
// This is a DTO matching the CIAM server's token contract. The SDK keeps
// these structs local so it can decode tokens without importing server
// internals.
type IdentityClaims struct {
	Email       string `json:"email,omitempty"`
	Fingerprint string `json:"fingerprint,omitempty"`

	jwt.RegisteredClaims
}

// AccessClaims is the decoded payload of the access token.
type AccessClaims struct {
	Role   Role   `json:"role"`
	Quotas Quotas `json:"quotas"`

	jwt.RegisteredClaims
}

// RefreshClaims is the decoded payload of the refresh token.
type RefreshClaims struct {
	jwt.RegisteredClaims
}

// segmentCodec decodes base64url token segments, raw or padded. The
// client never verifies signatures: tokens arrive over TLS from the
// CIAM server and their payload is advisory, not a security boundary.
var segmentCodec = jwt.NewParser(jwt.WithPaddingAllowed())

// decodeClaims extracts the typed claim set from a compact token string.
// The claim shape is selected by the caller; the token does not
// self-describe which slot it belongs to.
func decodeClaims(token string, claims any) error {
	segments := strings.Split(token, ".")
	if len(segments) < tokenSegmentsMin {
		return &FormatError{Reason: "want at least 2 dot-separated segments"}
	}
	payload, err := segmentCodec.DecodeSegment(segments[1])
	if err != nil {
		return &FormatError{Reason: "payload segment: " + err.Error()}
	}
	if err := json.Unmarshal(payload, claims); err != nil {
		return &FormatError{Reason: "payload shape: " + err.Error()}
	}
	return nil
}

func encodeSegment(seg []byte) string {
	return base64.RawURLEncoding.EncodeToString(seg)
}
