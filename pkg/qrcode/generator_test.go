package qrcode_test

import (
	"bytes"
	"encoding/base64"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mfagate/pkg/qrcode"
)

const uri = "otpauth://totp/mfagate:alice@x.com?issuer=mfagate&secret=JBSWY3DPEHPK3PXP"

func TestPNG(t *testing.T) {
	t.Parallel()

	data, err := qrcode.PNG(uri, 0)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, qrcode.DefaultSize, img.Bounds().Dx())
}

func TestDataURI(t *testing.T) {
	t.Parallel()

	got, err := qrcode.DataURI(uri, 128)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(got, "data:image/png;base64,"))

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(got, "data:image/png;base64,"))
	require.NoError(t, err)
	_, err = png.Decode(bytes.NewReader(raw))
	assert.NoError(t, err)
}

func TestEmptyContent(t *testing.T) {
	t.Parallel()

	_, err := qrcode.PNG("  ", 0)
	assert.ErrorIs(t, err, qrcode.ErrEmptyContent)

	_, err = qrcode.DataURI("", 0)
	assert.ErrorIs(t, err, qrcode.ErrEmptyContent)
}
