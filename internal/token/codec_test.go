package token

import (
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeCredential builds an unsigned compact JWT with the given payload
// claims. The signature segment is garbage — the codec never verifies it.
func makeCredential(t *testing.T, claims map[string]any) string {
	t.Helper()

	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))

	payload, err := json.Marshal(claims)
	require.NoError(t, err)

	return header + "." + base64.RawURLEncoding.EncodeToString(payload) + ".sig"
}

func TestDecode_WellFormed(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	cred := makeCredential(t, map[string]any{
		"sub":  "alice",
		"role": "ADMIN",
		"iat":  now.Unix(),
		"exp":  now.Add(time.Hour).Unix(),
	})

	claims, err := Decode(cred)
	require.NoError(t, err)

	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, "ADMIN", claims.Role)
	assert.Equal(t, now.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, now.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
}

func TestDecode_RoleDefaultsToUser(t *testing.T) {
	cred := makeCredential(t, map[string]any{
		"sub": "bob",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	claims, err := Decode(cred)
	require.NoError(t, err)
	assert.Equal(t, RoleUser, claims.Role)
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty string", ""},
		{"missing segments", "onlyonepart"},
		{"two segments", "part1.part2"},
		{"invalid base64 payload", "aGVhZGVy.!!!not-base64!!!.sig"},
		{"non-JSON payload", "aGVhZGVy." + base64.RawURLEncoding.EncodeToString([]byte("not json")) + ".sig"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := Decode(tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrDecode)
			assert.Nil(t, claims, "decode must never return partial claims")
		})
	}
}

func TestIsExpiredAt(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		exp     time.Duration // offset from now; 0 means omit the claim
		omitExp bool
		want    bool
	}{
		{"future expiry", time.Hour, false, false},
		{"far future expiry", 24 * 365 * time.Hour, false, false},
		{"past expiry", -time.Hour, false, true},
		{"expiry exactly now", 0, false, true},
		{"missing exp claim", 0, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := map[string]any{"sub": "alice"}
			if !tt.omitExp {
				claims["exp"] = now.Add(tt.exp).Unix()
			}

			cred := makeCredential(t, claims)
			assert.Equal(t, tt.want, IsExpiredAt(cred, now))
		})
	}
}

func TestIsExpiredAt_MalformedFailsClosed(t *testing.T) {
	for _, input := range []string{"", "garbage", "a.b", "a.!!.c"} {
		assert.True(t, IsExpiredAt(input, time.Now()), "unreadable credential %q must report expired", input)
	}
}

func TestHasRole(t *testing.T) {
	claims := &Claims{Role: "ADMIN"}

	assert.True(t, claims.HasRole("ADMIN"))
	assert.False(t, claims.HasRole("USER"))
}
