package qr

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/skip2/go-qrcode"
)

// DefaultSize is the rendered PNG edge in pixels.
const DefaultSize = 256

// Encode renders content as a PNG QR code.
func Encode(content string, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultSize
	}
	code, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, code.Image(size)); err != nil {
		return nil, fmt.Errorf("render qr png: %w", err)
	}
	return buf.Bytes(), nil
}

// TableURL builds the entry link a printed table QR points at.
func TableURL(baseURL string, tableNumber int) string {
	return fmt.Sprintf("%s?table=%d", baseURL, tableNumber)
}
