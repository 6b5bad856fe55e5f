package qr

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	data, err := Encode("https://order.example.com?table=4", 128)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 128, img.Bounds().Dx())
}

func TestEncodeDefaultSize(t *testing.T) {
	data, err := Encode("https://order.example.com?table=4", 0)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, DefaultSize, img.Bounds().Dx())
}

func TestTableURL(t *testing.T) {
	assert.Equal(t, "https://order.example.com?table=7", TableURL("https://order.example.com", 7))
}
