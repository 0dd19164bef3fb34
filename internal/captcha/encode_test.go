package captcha

import (
	"image"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyiku/tile-captcha/internal/testutil"
)

func TestEncodeTiles(t *testing.T) {
	tiles := []image.Image{
		testutil.CreateTestImage(4, 4),
		testutil.CreateTestImage(6, 2),
	}

	uris, err := EncodeTiles(tiles)
	require.NoError(t, err)
	require.Len(t, uris, 2)

	for i, uri := range uris {
		assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))

		img, err := DecodeTile(uri)
		require.NoError(t, err)
		assert.Equal(t, tiles[i].Bounds().Size(), img.Bounds().Size())
	}
}

func TestDecodeTile_Invalid(t *testing.T) {
	_, err := DecodeTile("https://example.com/a.png")
	assert.ErrorIs(t, err, ErrNotDataURI)

	_, err = DecodeTile("data:image/png;base64,!!!")
	assert.Error(t, err)
}
