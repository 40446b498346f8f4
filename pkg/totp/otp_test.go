package totp_test

import (
	"encoding/base32"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mfagate/pkg/totp"
)

func TestGenerate(t *testing.T) {
	t.Parallel()

	opts := totp.DefaultOptions("mfagate")
	key, err := totp.Generate(opts, "alice@x.com")
	require.NoError(t, err)

	raw, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(key.Secret)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(raw)*8, 160)

	u, err := url.Parse(key.URI)
	require.NoError(t, err)
	assert.Equal(t, "otpauth", u.Scheme)
	assert.Equal(t, "totp", u.Host)
	assert.Equal(t, key.Secret, u.Query().Get("secret"))
	assert.Equal(t, "mfagate", u.Query().Get("issuer"))
	assert.Contains(t, u.Path, "alice@x.com")

	other, err := totp.Generate(opts, "alice@x.com")
	require.NoError(t, err)
	assert.NotEqual(t, key.Secret, other.Secret)
}

func TestGenerate_Validation(t *testing.T) {
	t.Parallel()

	_, err := totp.Generate(totp.DefaultOptions("mfagate"), " ")
	assert.ErrorIs(t, err, totp.ErrMissingAccountName)

	_, err = totp.Generate(totp.DefaultOptions(""), "alice@x.com")
	assert.ErrorIs(t, err, totp.ErrMissingIssuer)
}

func TestValidate_SkewWindow(t *testing.T) {
	t.Parallel()

	opts := totp.DefaultOptions("mfagate")
	key, err := totp.Generate(opts, "alice@x.com")
	require.NoError(t, err)

	now := time.Date(2026, 10, 15, 12, 0, 10, 0, time.UTC)
	step := 30 * time.Second

	tests := []struct {
		name   string
		offset time.Duration
		valid  bool
	}{
		{"current step", 0, true},
		{"previous step", -step, true},
		{"next step", step, true},
		{"two steps back", -2 * step, false},
		{"two steps ahead", 2 * step, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			code, err := totp.Code(key.Secret, now.Add(tt.offset), opts)
			require.NoError(t, err)

			ok, err := totp.Validate(key.Secret, code, now, opts)
			require.NoError(t, err)
			assert.Equal(t, tt.valid, ok)
		})
	}
}

func TestValidate_Malformed(t *testing.T) {
	t.Parallel()

	opts := totp.DefaultOptions("mfagate")
	now := time.Now()

	ok, err := totp.Validate("JBSWY3DPEHPK3PXP", "12345", now, opts)
	require.NoError(t, err)
	assert.False(t, ok, "short codes are invalid, not errors")

	_, err = totp.Validate("not base32 !!", "123456", now, opts)
	assert.ErrorIs(t, err, totp.ErrInvalidSecret)
}
