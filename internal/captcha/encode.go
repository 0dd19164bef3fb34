package captcha

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"
	"strings"
)

const dataURIPrefix = "data:image/png;base64,"

// ErrNotDataURI is returned when decoding a string that is not a PNG data URI.
var ErrNotDataURI = errors.New("not a png data uri")

// EncodeTile encodes img as a PNG data URI.
func EncodeTile(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode tile: %w", err)
	}
	return dataURIPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// EncodeTiles encodes every tile in order.
func EncodeTiles(tiles []image.Image) ([]string, error) {
	uris := make([]string, len(tiles))
	for i, tile := range tiles {
		uri, err := EncodeTile(tile)
		if err != nil {
			return nil, fmt.Errorf("tile %d: %w", i, err)
		}
		uris[i] = uri
	}
	return uris, nil
}

// DecodeTile decodes a data URI produced by EncodeTile.
func DecodeTile(uri string) (image.Image, error) {
	payload, ok := strings.CutPrefix(uri, dataURIPrefix)
	if !ok {
		return nil, ErrNotDataURI
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode tile payload: %w", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode tile image: %w", err)
	}
	return img, nil
}
