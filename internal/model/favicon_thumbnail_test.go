package model

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFaviconThumbnail(t *testing.T) {
	const png1x1 = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNk+A8AAQUBAScY42YAAAAASUVORK5CYII="
	fav, err := ParseFaviconURI("data:image/png;base64," + png1x1)
	require.NoError(t, err)

	out, err := fav.Thumbnail(64)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	bounds := img.Bounds()
	assert.LessOrEqual(t, bounds.Dx(), 64)
	assert.LessOrEqual(t, bounds.Dy(), 64)
}

func TestFaviconThumbnailNilFavicon(t *testing.T) {
	var fav *Favicon
	_, err := fav.Thumbnail(64)
	assert.Error(t, err)
}
