package auth_test

import (
	"context"
	"encoding/base32"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mfagate/pkg/totp"
	"github.com/dmitrymomot/mfagate/svc/auth"
)

const knownSecret = "JBSWY3DPEHPK3PXPJBSWY3DPEHPK3PXP"

func TestVerifyTOTP_SkewWindow(t *testing.T) {
	t.Parallel()

	opts := totp.DefaultOptions("mfagate")
	now := time.Date(2026, 3, 1, 12, 0, 15, 0, time.UTC)

	code := func(at time.Time) string {
		c, err := totp.Code(knownSecret, at, opts)
		require.NoError(t, err)
		return c
	}

	tests := []struct {
		name   string
		offset time.Duration
		want   bool
	}{
		{name: "current step", offset: 0, want: true},
		{name: "previous step", offset: -30 * time.Second, want: true},
		{name: "next step", offset: 30 * time.Second, want: true},
		{name: "two steps back", offset: -60 * time.Second, want: false},
		{name: "two steps ahead", offset: 60 * time.Second, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, auth.VerifyTOTP(knownSecret, code(now.Add(tt.offset)), now, opts))
		})
	}

	t.Run("garbage", func(t *testing.T) {
		t.Parallel()
		assert.False(t, auth.VerifyTOTP(knownSecret, "12345", now, opts))
		assert.False(t, auth.VerifyTOTP(knownSecret, "abcdef", now, opts))
		assert.False(t, auth.VerifyTOTP("not base32!", code(now), now, opts))
	})
}

func TestTOTP_Setup(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	storage := auth.NewMemoryStorage()
	creds := newCredentials(t, storage)
	user, err := creds.Create(ctx, "alice", testEmail, testPassword)
	require.NoError(t, err)

	clk := newClock()
	tp := auth.NewTOTP(creds, "mfagate", auth.WithTOTPClock(clk.Now))
	setup, err := tp.Setup(ctx, user.ID, testEmail)
	require.NoError(t, err)

	raw, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(setup.Secret)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(raw)*8, 160)
	assert.True(t, strings.HasPrefix(setup.URI, "otpauth://totp/"))
	assert.Contains(t, setup.URI, "issuer=mfagate")
	assert.True(t, strings.HasPrefix(setup.QRCode, "data:image/png;base64,"))

	enabled, err := creds.HasMfaEnabled(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, enabled)

	code, err := totp.Code(setup.Secret, clk.Now(), tp.Options())
	require.NoError(t, err)
	ok, err := tp.Verify(ctx, user.ID, code)
	require.NoError(t, err)
	assert.True(t, ok)

	clk.Advance(5 * time.Minute)
	ok, err = tp.Verify(ctx, user.ID, code)
	require.NoError(t, err)
	assert.False(t, ok)
}
