package jwt_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mfagate/pkg/jwt"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

type claims struct {
	gojwt.RegisteredClaims
	Pending bool `json:"pending_mfa,omitempty"`
}

func newClaims(ttl time.Duration) *claims {
	now := time.Now()
	return &claims{
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   "user-1",
			Issuer:    "mfagate",
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(now.Add(ttl)),
		},
		Pending: true,
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	_, err := jwt.New(nil)
	assert.ErrorIs(t, err, jwt.ErrMissingSigningKey)

	_, err = jwt.New([]byte("short"))
	assert.ErrorIs(t, err, jwt.ErrInvalidSigningKey)

	svc, err := jwt.New(testKey, jwt.WithIssuer("mfagate"))
	require.NoError(t, err)
	assert.Equal(t, "mfagate", svc.Issuer())
}

func TestSignParse(t *testing.T) {
	t.Parallel()

	svc, err := jwt.New(testKey, jwt.WithIssuer("mfagate"))
	require.NoError(t, err)

	token, err := svc.Sign(newClaims(time.Minute))
	require.NoError(t, err)

	var got claims
	require.NoError(t, svc.Parse(token, &got))
	assert.Equal(t, "user-1", got.Subject)
	assert.True(t, got.Pending)
}

func TestParse_Rejections(t *testing.T) {
	t.Parallel()

	svc, err := jwt.New(testKey, jwt.WithIssuer("mfagate"))
	require.NoError(t, err)

	otherKey, err := jwt.New([]byte("ffffffffffffffffffffffffffffffff"), jwt.WithIssuer("mfagate"))
	require.NoError(t, err)
	otherIssuer, err := jwt.New(testKey, jwt.WithIssuer("someone-else"))
	require.NoError(t, err)

	expired, err := svc.Sign(newClaims(-time.Minute))
	require.NoError(t, err)
	forged, err := otherKey.Sign(newClaims(time.Minute))
	require.NoError(t, err)
	foreign, err := otherIssuer.Sign(func() *claims {
		c := newClaims(time.Minute)
		c.Issuer = "someone-else"
		return c
	}())
	require.NoError(t, err)

	noExpiry := newClaims(time.Minute)
	noExpiry.ExpiresAt = nil
	unbounded, err := svc.Sign(noExpiry)
	require.NoError(t, err)

	none, err := gojwt.NewWithClaims(gojwt.SigningMethodNone, newClaims(time.Minute)).
		SignedString(gojwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"empty", "", jwt.ErrInvalidToken},
		{"garbage", "not.a.token", jwt.ErrInvalidToken},
		{"expired", expired, jwt.ErrExpiredToken},
		{"wrong key", forged, jwt.ErrInvalidSignature},
		{"wrong issuer", foreign, jwt.ErrInvalidToken},
		{"missing expiry", unbounded, jwt.ErrInvalidToken},
		{"alg none", none, jwt.ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var got claims
			assert.ErrorIs(t, svc.Parse(tt.token, &got), tt.want)
		})
	}
}

func TestBearerTokenExtractor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"Basic abc", "", false},
		{"Bearer", "", false},
		{"Bearer   ", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(strings.ReplaceAll(tt.header, " ", "_"), func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			got, err := jwt.BearerTokenExtractor(r)
			if !tt.ok {
				assert.ErrorIs(t, err, jwt.ErrInvalidToken)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.token, got)
		})
	}
}

func TestContext(t *testing.T) {
	t.Parallel()

	ctx := jwt.SetClaims(context.Background(), &claims{Pending: true})
	ctx = jwt.SetToken(ctx, "raw")

	got, ok := jwt.GetClaims[*claims](ctx)
	require.True(t, ok)
	assert.True(t, got.Pending)

	token, ok := jwt.GetToken(ctx)
	require.True(t, ok)
	assert.Equal(t, "raw", token)

	_, ok = jwt.GetClaims[*claims](context.Background())
	assert.False(t, ok)
}
