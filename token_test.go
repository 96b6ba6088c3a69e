package sdk

import (
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeToken mints a compact token with the given claims payload. The
// signature segment is filler: the client never verifies it.
func makeToken(t *testing.T, claims any) string {
	t.Helper()
	payload, err := json.Marshal(claims)
	require.NoError(t, err)
	header := encodeSegment([]byte(`{"alg":"EdDSA","typ":"JWT"}`))
	return header + "." + encodeSegment(payload) + "." + encodeSegment([]byte("signature"))
}

func accessClaimsFixture(exp time.Time, quotas Quotas) AccessClaims {
	return AccessClaims{
		Role:   RoleAnonymUser,
		Quotas: quotas,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "userID",
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
}

func identityClaimsFixture(exp time.Time, email, fingerprint string) IdentityClaims {
	return IdentityClaims{
		Email:       email,
		Fingerprint: fingerprint,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "userID",
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
}

func refreshClaimsFixture(exp time.Time) RefreshClaims {
	return RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "userID",
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
}

func TestDecodeClaims(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)

	t.Run("access claims", func(t *testing.T) {
		quotas := Quotas{PromptLengthMax: 101, RequestsPerMinute: 1, RequestsPerDay: 1}
		token := makeToken(t, accessClaimsFixture(exp, quotas))

		var got AccessClaims
		require.NoError(t, decodeClaims(token, &got))
		assert.Equal(t, "userID", got.Subject)
		assert.Equal(t, quotas, got.Quotas)
		assert.Equal(t, RoleAnonymUser, got.Role)
		require.NotNil(t, got.ExpiresAt)
		assert.Equal(t, exp.Unix(), got.ExpiresAt.Unix())
	})

	t.Run("identity claims", func(t *testing.T) {
		token := makeToken(t, identityClaimsFixture(exp, "foo@bar.baz", "foo"))

		var got IdentityClaims
		require.NoError(t, decodeClaims(token, &got))
		assert.Equal(t, "foo@bar.baz", got.Email)
		assert.Equal(t, "foo", got.Fingerprint)
	})

	t.Run("two segments suffice", func(t *testing.T) {
		payload, err := json.Marshal(refreshClaimsFixture(exp))
		require.NoError(t, err)
		token := "header." + encodeSegment(payload)

		var got RefreshClaims
		require.NoError(t, decodeClaims(token, &got))
		assert.Equal(t, "userID", got.Subject)
	})

	t.Run("padded payload segment is accepted", func(t *testing.T) {
		payload, err := json.Marshal(refreshClaimsFixture(exp))
		require.NoError(t, err)
		token := "header." + base64.URLEncoding.EncodeToString(payload)

		var got RefreshClaims
		require.NoError(t, decodeClaims(token, &got))
		assert.Equal(t, "userID", got.Subject)
	})

	t.Run("single segment fails", func(t *testing.T) {
		var got RefreshClaims
		err := decodeClaims("not-a-token", &got)

		var formatErr *FormatError
		require.ErrorAs(t, err, &formatErr)
	})

	t.Run("invalid base64 payload fails", func(t *testing.T) {
		var got RefreshClaims
		err := decodeClaims("header.!!!.signature", &got)

		var formatErr *FormatError
		require.ErrorAs(t, err, &formatErr)
	})

	t.Run("non-JSON payload fails closed", func(t *testing.T) {
		token := "header." + encodeSegment([]byte("not json"))

		var got AccessClaims
		err := decodeClaims(token, &got)

		var formatErr *FormatError
		require.ErrorAs(t, err, &formatErr)
	})
}

func TestSegmentRoundTrip(t *testing.T) {
	for _, input := range []string{"", "foobar", `{"sub":"userID"}`} {
		got, err := segmentCodec.DecodeSegment(encodeSegment([]byte(input)))
		require.NoError(t, err)
		assert.Equal(t, input, string(got))
	}
}
