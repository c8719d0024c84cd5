package qrcode_test

import (
	"bytes"
	"encoding/base64"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imobflow/billing/pkg/qrcode"
)

const link = "https://sandbox.asaas.com/i/abc123"

func TestEncoderPNG(t *testing.T) {
	t.Parallel()

	t.Run("rejects blank content", func(t *testing.T) {
		t.Parallel()
		enc := qrcode.NewEncoder()
		for _, content := range []string{"", "  \t\n"} {
			out, err := enc.PNG(content)
			require.ErrorIs(t, err, qrcode.ErrEmptyContent)
			assert.Nil(t, out)
		}
	})

	t.Run("renders requested size", func(t *testing.T) {
		t.Parallel()
		enc := qrcode.NewEncoder(qrcode.WithSize(128), qrcode.WithLevel(qrcode.High))

		out, err := enc.PNG(link)
		require.NoError(t, err)

		img, err := png.Decode(bytes.NewReader(out))
		require.NoError(t, err)
		assert.Equal(t, 128, img.Bounds().Dx())
		assert.Equal(t, 128, img.Bounds().Dy())
	})

	t.Run("non-positive size falls back to default", func(t *testing.T) {
		t.Parallel()
		out, err := qrcode.NewEncoder(qrcode.WithSize(-1)).PNG(link)
		require.NoError(t, err)

		img, err := png.Decode(bytes.NewReader(out))
		require.NoError(t, err)
		assert.Equal(t, 256, img.Bounds().Dx())
	})
}

func TestEncoderDataURI(t *testing.T) {
	t.Parallel()

	uri, err := qrcode.NewEncoder().DataURI(link)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, "data:image/png;base64,"))
	require.NoError(t, err)
	_, err = png.Decode(bytes.NewReader(raw))
	assert.NoError(t, err)

	_, err = qrcode.NewEncoder().DataURI("")
	assert.ErrorIs(t, err, qrcode.ErrEmptyContent)
}
