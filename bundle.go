package sdk

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/diagramastext/diagramastext/sdk/go/headers"
)

// expiryMargin treats the access token as expired shortly before its
// literal expiry so a request issued at the edge cannot ride a token
// that lapses mid-flight.
const expiryMargin = 10 * time.Second

// TokenKind selects a slot of the token bundle.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// tokenBlob is the wire and storage shape of the token bundle. Absent
// fields are omitted entirely so re-parsing distinguishes "never issued"
// from "issued but empty".
type tokenBlob struct {
	ID      string `json:"id,omitempty"`
	Access  string `json:"access,omitempty"`
	Refresh string `json:"refresh,omitempty"`
}

// TokenBundle aggregates the raw identity/access/refresh token strings
// and their decoded claims. It is mutated incrementally: partial refresh
// responses update only the slots they carry.
type TokenBundle struct {
	rawIdentity string
	rawAccess   string
	rawRefresh  string

	identity *IdentityClaims
	access   *AccessClaims
	refresh  *RefreshClaims

	now func() time.Time
}

// NewTokenBundle returns an empty bundle in the anonymous state.
func NewTokenBundle() *TokenBundle {
	return &TokenBundle{now: time.Now}
}

// DeserializeBundle restores a bundle from a previously serialized blob.
func DeserializeBundle(blob string) (*TokenBundle, error) {
	var raw tokenBlob
	if err := json.Unmarshal([]byte(blob), &raw); err != nil {
		return nil, fmt.Errorf("sdk: cannot deserialize token bundle: %w", err)
	}
	b := NewTokenBundle()
	if err := b.merge(raw); err != nil {
		return nil, err
	}
	return b, nil
}

// Serialize renders the bundle as the {id, access?, refresh?} JSON blob.
func (b *TokenBundle) Serialize() (string, error) {
	blob, err := json.Marshal(tokenBlob{
		ID:      b.rawIdentity,
		Access:  b.rawAccess,
		Refresh: b.rawRefresh,
	})
	if err != nil {
		return "", err
	}
	return string(blob), nil
}

// merge decodes every token present in the payload and commits all slots
// at once: a malformed token leaves the bundle untouched. Slots the
// payload omits keep their prior value.
func (b *TokenBundle) merge(p tokenBlob) error {
	var (
		identity *IdentityClaims
		access   *AccessClaims
		refresh  *RefreshClaims
	)
	if p.ID != "" {
		identity = &IdentityClaims{}
		if err := decodeClaims(p.ID, identity); err != nil {
			return fmt.Errorf("identity token: %w", err)
		}
	}
	if p.Access != "" {
		access = &AccessClaims{}
		if err := decodeClaims(p.Access, access); err != nil {
			return fmt.Errorf("access token: %w", err)
		}
	}
	if p.Refresh != "" {
		refresh = &RefreshClaims{}
		if err := decodeClaims(p.Refresh, refresh); err != nil {
			return fmt.Errorf("refresh token: %w", err)
		}
	}
	if identity != nil {
		b.rawIdentity, b.identity = p.ID, identity
	}
	if access != nil {
		b.rawAccess, b.access = p.Access, access
	}
	if refresh != nil {
		b.rawRefresh, b.refresh = p.Refresh, refresh
	}
	return nil
}

// SetIdentity replaces the identity token, re-decoding only that slot.
func (b *TokenBundle) SetIdentity(raw string) error {
	return b.merge(tokenBlob{ID: raw})
}

// SetAccess replaces the access token, re-decoding only that slot.
func (b *TokenBundle) SetAccess(raw string) error {
	return b.merge(tokenBlob{Access: raw})
}

// SetRefresh replaces the refresh token, re-decoding only that slot.
func (b *TokenBundle) SetRefresh(raw string) error {
	return b.merge(tokenBlob{Refresh: raw})
}

// IsAuthenticated reports whether a non-expired access claim set is
// present.
func (b *TokenBundle) IsAuthenticated() bool {
	return b.access != nil && !b.IsExpired()
}

// IsExpired reports whether the access token has passed its expiry,
// shifted by the safety margin. A bundle without access claims counts as
// expired.
func (b *TokenBundle) IsExpired() bool {
	if b.access == nil || b.access.ExpiresAt == nil {
		return true
	}
	return b.now().Add(expiryMargin).After(b.access.ExpiresAt.Time)
}

// Quotas returns the access-claim quotas when authenticated and the
// anonymous default otherwise. Claim absence is graceful degradation,
// never an error.
func (b *TokenBundle) Quotas() Quotas {
	if b.IsAuthenticated() {
		return b.access.Quotas
	}
	return AnonymousQuotas
}

// AuthorizationHeader renders the bearer header for the requested token
// slot. The header is empty when the slot is, and callers merge it into
// outgoing requests unconditionally.
func (b *TokenBundle) AuthorizationHeader(kind TokenKind) http.Header {
	var raw string
	switch kind {
	case TokenKindAccess:
		raw = b.rawAccess
	case TokenKindRefresh:
		raw = b.rawRefresh
	}
	h := http.Header{}
	if raw != "" {
		h.Set(headers.Authorization, "Bearer "+raw)
	}
	return h
}

// Identity returns the decoded identity claims, nil when absent.
func (b *TokenBundle) Identity() *IdentityClaims {
	return b.identity
}

// Access returns the decoded access claims, nil when absent.
func (b *TokenBundle) Access() *AccessClaims {
	return b.access
}

func (b *TokenBundle) clone() *TokenBundle {
	c := *b
	return &c
}
