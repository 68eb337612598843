package qrcode

import (
	"bytes"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPNGRenderer_Render(t *testing.T) {
	out, err := NewPNGRenderer().Render(`{"orderId":"M1-20251028-1","canteenId":"M1"}`)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "data:image/png;base64,"))

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(out, "data:image/png;base64,"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("\x89PNG")))
}

func TestPNGRenderer_TooLarge(t *testing.T) {
	_, err := NewPNGRenderer().Render(strings.Repeat("x", 5000))
	assert.Error(t, err)
}
