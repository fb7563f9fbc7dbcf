package model

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/nfnt/resize"
)

// Thumbnail decodes the Favicon's PNG bytes and resizes it to fit
// within maxSide pixels on its longest edge, re-encoding as PNG. It is
// a model-level display helper; the tracker TUI (internal/track) draws
// plain-text rows only and does not call it.
func (f *Favicon) Thumbnail(maxSide uint) ([]byte, error) {
	if f == nil || len(f.RawBytes) == 0 {
		return nil, fmt.Errorf("favicon: no image data")
	}
	img, _, err := image.Decode(bytes.NewReader(f.RawBytes))
	if err != nil {
		return nil, fmt.Errorf("favicon: decoding image: %w", err)
	}

	resized := resize.Thumbnail(maxSide, maxSide, img, resize.Lanczos3)

	var out bytes.Buffer
	if err := png.Encode(&out, resized); err != nil {
		return nil, fmt.Errorf("favicon: re-encoding thumbnail: %w", err)
	}
	return out.Bytes(), nil
}
