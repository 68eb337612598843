package qrcode

import (
	"encoding/base64"
	"fmt"

	goqrcode "github.com/skip2/go-qrcode"
)

const defaultSize = 256

// PNGRenderer はQRペイロードをPNGのdata URLにする。
type PNGRenderer struct {
	size int
}

func NewPNGRenderer() *PNGRenderer {
	return &PNGRenderer{size: defaultSize}
}

func (r *PNGRenderer) Render(payload string) (string, error) {
	png, err := goqrcode.Encode(payload, goqrcode.Medium, r.size)
	if err != nil {
		return "", fmt.Errorf("encode qr: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
