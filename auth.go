package sdk

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/diagramastext/diagramastext/sdk/go/routes"
)

const (
	opSignInAnonym = "error auth anonym"
	opRefreshToken = "error refreshing the token"
)

// AuthClient drives the CIAM session lifecycle: anonymous bootstrap,
// access-token refresh, and authorization headers for outbound calls.
//
// Every successful sign-in or refresh writes the serialized bundle
// through to the token store; a failed call leaves both the bundle and
// the store exactly as they were, so caller-side retry is safe.
type AuthClient struct {
	client  *Client
	store   TokenStore
	scanner FingerprintScanner

	mu     sync.Mutex
	bundle *TokenBundle

	// flight collapses concurrent sign-in/refresh attempts into one
	// network call shared by every waiter.
	flight singleflight.Group
}

func newAuthClient(client *Client, store TokenStore, scanner FingerprintScanner) *AuthClient {
	bundle := NewTokenBundle()
	if blob, ok := store.Read(); ok {
		if restored, err := DeserializeBundle(blob); err == nil {
			bundle = restored
		}
		// A corrupted blob falls open to the anonymous state.
	}
	return &AuthClient{
		client:  client,
		store:   store,
		scanner: scanner,
		bundle:  bundle,
	}
}

// IsAuth reports whether a non-expired access token is held.
func (a *AuthClient) IsAuth() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.bundle.IsAuthenticated()
}

// IsExpired reports whether the access token has passed the safety
// margin before its expiry.
func (a *AuthClient) IsExpired() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.bundle.IsExpired()
}

// Quotas returns the session limits from the access claims, or the
// anonymous default when no valid access token is held.
func (a *AuthClient) Quotas() Quotas {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.bundle.Quotas()
}

// HeaderAccess returns the bearer header for the access token, empty
// when none is held.
func (a *AuthClient) HeaderAccess() http.Header {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.bundle.AuthorizationHeader(TokenKindAccess)
}

// HeaderRefresh returns the bearer header for the refresh token, empty
// when none is held.
func (a *AuthClient) HeaderRefresh() http.Header {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.bundle.AuthorizationHeader(TokenKindRefresh)
}

// ID returns the subject identifier from the identity claims, empty for
// an anonymous bundle.
func (a *AuthClient) ID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if id := a.bundle.Identity(); id != nil {
		return id.Subject
	}
	return ""
}

// Email returns the email from the identity claims. Anonymous sessions
// carry none.
func (a *AuthClient) Email() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if id := a.bundle.Identity(); id != nil {
		return id.Email
	}
	return ""
}

// IsRegistered reports whether the identity token belongs to a
// registered user rather than an anonymous session.
func (a *AuthClient) IsRegistered() bool {
	return a.Email() != ""
}

// SignInAnonym bootstraps an anonymous session: it posts the browser
// fingerprint to the CIAM server and stores the issued token bundle.
// Concurrent calls share one in-flight request.
func (a *AuthClient) SignInAnonym(ctx context.Context) error {
	_, err, _ := a.flight.Do(routes.AuthAnonym, func() (any, error) {
		return nil, a.signInAnonym(ctx)
	})
	return err
}

func (a *AuthClient) signInAnonym(ctx context.Context) error {
	body := struct {
		Fingerprint string `json:"fingerprint"`
	}{
		Fingerprint: a.scanner.Scan(),
	}
	payload, err := a.postTokens(ctx, routes.AuthAnonym, body, opSignInAnonym)
	if err != nil {
		return err
	}
	return a.commit(payload)
}

// RefreshAccessToken exchanges the held refresh token for a new access
// token and merges the response into the bundle: slots the response
// omits keep their prior value. Concurrent calls share one in-flight
// request.
func (a *AuthClient) RefreshAccessToken(ctx context.Context) error {
	_, err, _ := a.flight.Do(routes.AuthRefresh, func() (any, error) {
		return nil, a.refreshAccessToken(ctx)
	})
	return err
}

func (a *AuthClient) refreshAccessToken(ctx context.Context) error {
	a.mu.Lock()
	refresh := a.bundle.rawRefresh
	a.mu.Unlock()
	if refresh == "" {
		return &AuthError{Op: opRefreshToken, Body: "no refresh token held"}
	}
	body := struct {
		RefreshToken string `json:"refresh_token"`
	}{
		RefreshToken: refresh,
	}
	payload, err := a.postTokens(ctx, routes.AuthRefresh, body, opRefreshToken)
	if err != nil {
		return err
	}
	return a.commit(payload)
}

// EnsureSession makes sure a usable access token is held: it bootstraps
// an anonymous session when none exists, refreshes an expired one, and
// falls back to a fresh anonymous sign-in when the CIAM server rejects
// the refresh. Transport failures propagate unchanged.
func (a *AuthClient) EnsureSession(ctx context.Context) error {
	if a.IsAuth() {
		return nil
	}
	a.mu.Lock()
	hasRefresh := a.bundle.rawRefresh != ""
	a.mu.Unlock()
	if hasRefresh {
		err := a.RefreshAccessToken(ctx)
		if err == nil {
			return nil
		}
		var authErr *AuthError
		if !errors.As(err, &authErr) {
			return err
		}
	}
	return a.SignInAnonym(ctx)
}

func (a *AuthClient) postTokens(ctx context.Context, path string, body any, op string) (tokenBlob, error) {
	req, err := a.client.newJSONRequest(ctx, http.MethodPost, path, body)
	if err != nil {
		return tokenBlob{}, err
	}
	resp, err := a.client.send(req)
	if err != nil {
		return tokenBlob{}, err
	}
	//nolint:errcheck // best-effort cleanup on return
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return tokenBlob{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return tokenBlob{}, &AuthError{Op: op, Status: resp.StatusCode, Body: string(raw)}
	}
	var payload tokenBlob
	if err := json.Unmarshal(raw, &payload); err != nil {
		return tokenBlob{}, &AuthError{Op: op, Body: "cannot deserialize response: " + err.Error()}
	}
	return payload, nil
}

// commit merges the response payload into a copy of the bundle and
// persists it before swapping the copy in, so a decode or store failure
// leaves the current state intact.
func (a *AuthClient) commit(payload tokenBlob) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	next := a.bundle.clone()
	if err := next.merge(payload); err != nil {
		return err
	}
	blob, err := next.Serialize()
	if err != nil {
		return err
	}
	if err := a.store.Write(blob, StorePath); err != nil {
		return err
	}
	a.bundle = next
	return nil
}
