package secrets_test

import (
	"encoding/base64"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mfagate/pkg/secrets"
)

func newBox(t *testing.T, purpose string) (*secrets.Box, []byte) {
	t.Helper()
	master, err := secrets.GenerateKey()
	require.NoError(t, err)
	box, err := secrets.New(master, purpose)
	require.NoError(t, err)
	return box, master
}

func TestBox_SealOpen(t *testing.T) {
	t.Parallel()

	box, _ := newBox(t, "email")

	tests := []string{"", "alice@x.com", "Hello 世界 🌍"}
	for _, plaintext := range tests {
		t.Run(plaintext, func(t *testing.T) {
			t.Parallel()

			a, err := box.Seal(plaintext)
			require.NoError(t, err)
			b, err := box.Seal(plaintext)
			require.NoError(t, err)
			assert.NotEqual(t, a, b, "sealing must be probabilistic")

			got, err := box.Open(a)
			require.NoError(t, err)
			assert.Equal(t, plaintext, got)
		})
	}
}

func TestBox_OpenRejectsTampering(t *testing.T) {
	t.Parallel()

	box, _ := newBox(t, "email")
	sealed, err := box.Seal("alice@x.com")
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(sealed)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xff

	_, err = box.Open(base64.StdEncoding.EncodeToString(raw))
	assert.ErrorIs(t, err, secrets.ErrDecryptionFailed)

	_, err = box.Open("%%%")
	assert.ErrorIs(t, err, secrets.ErrInvalidCiphertext)

	_, err = box.Open(base64.StdEncoding.EncodeToString([]byte("short")))
	assert.ErrorIs(t, err, secrets.ErrInvalidCiphertext)
}

func TestBox_PurposesAreIsolated(t *testing.T) {
	t.Parallel()

	master, err := secrets.GenerateKey()
	require.NoError(t, err)
	emailBox, err := secrets.New(master, "email")
	require.NoError(t, err)
	totpBox, err := secrets.New(master, "totp")
	require.NoError(t, err)

	sealed, err := emailBox.Seal("alice@x.com")
	require.NoError(t, err)
	_, err = totpBox.Open(sealed)
	assert.ErrorIs(t, err, secrets.ErrDecryptionFailed)

	assert.NotEqual(t, emailBox.Digest("alice@x.com"), totpBox.Digest("alice@x.com"))
}

func TestBox_Digest(t *testing.T) {
	t.Parallel()

	box, master := newBox(t, "email")
	again, err := secrets.New(master, "email")
	require.NoError(t, err)

	d := box.Digest("alice@x.com")
	assert.Len(t, d, 64)
	assert.Equal(t, d, again.Digest("alice@x.com"))
	assert.NotEqual(t, d, box.Digest("bob@x.com"))
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	_, err := secrets.New(make([]byte, 16), "email")
	assert.ErrorIs(t, err, secrets.ErrInvalidMasterKey)

	_, err = secrets.New(make([]byte, secrets.KeySize), "")
	assert.ErrorIs(t, err, secrets.ErrEmptyPurpose)
}

func TestParseKey(t *testing.T) {
	t.Parallel()

	key, err := secrets.GenerateKey()
	require.NoError(t, err)

	for name, encoded := range map[string]string{
		"hex":        hex.EncodeToString(key),
		"base64":     base64.StdEncoding.EncodeToString(key),
		"base64 url": base64.RawURLEncoding.EncodeToString(key),
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got, err := secrets.ParseKey(encoded)
			require.NoError(t, err)
			assert.Equal(t, key, got)
		})
	}

	_, err = secrets.ParseKey("too-short")
	assert.ErrorIs(t, err, secrets.ErrInvalidMasterKey)
}
