package storage

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"github.com/kyiku/tile-captcha/internal/captcha"
	"github.com/kyiku/tile-captcha/internal/challenge"
)

// BundleExt is the file extension of an encoded bundle.
const BundleExt = ".json.zst"

// Bundle is a scrambled challenge with encoded tiles and its answer key.
type Bundle struct {
	ID         string
	Kind       challenge.Kind
	Columns    int
	Background string
	Tiles      []string
	Key        captcha.Key
}

type bundleJSON struct {
	ID         string          `json:"id"`
	Kind       challenge.Kind  `json:"kind"`
	Columns    int             `json:"columns"`
	Background string          `json:"background,omitempty"`
	Tiles      []string        `json:"tiles"`
	Key        json.RawMessage `json:"key"`
}

// NewBundle encodes s under a new random ID.
func NewBundle(s *captcha.Scrambled) (*Bundle, error) {
	tiles, err := captcha.EncodeTiles(s.Tiles)
	if err != nil {
		return nil, err
	}

	b := &Bundle{
		ID:      uuid.New().String(),
		Kind:    s.Kind,
		Columns: s.Columns,
		Tiles:   tiles,
		Key:     s.Key,
	}
	if s.Background != nil {
		if b.Background, err = captcha.EncodeTile(s.Background); err != nil {
			return nil, fmt.Errorf("background: %w", err)
		}
	}
	return b, nil
}

// Options returns the challenge options for presenting the bundle.
func (b *Bundle) Options() challenge.Options {
	opts := challenge.DefaultOptions(b.Kind)
	if b.Columns > 0 {
		opts.Columns = b.Columns
	}
	return opts
}

// MarshalJSON implements json.Marshaler.
func (b Bundle) MarshalJSON() ([]byte, error) {
	key, err := json.Marshal(b.Key)
	if err != nil {
		return nil, fmt.Errorf("failed to encode key: %w", err)
	}
	return json.Marshal(bundleJSON{
		ID:         b.ID,
		Kind:       b.Kind,
		Columns:    b.Columns,
		Background: b.Background,
		Tiles:      b.Tiles,
		Key:        key,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *Bundle) UnmarshalJSON(data []byte) error {
	var raw bundleJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	kind, err := challenge.ParseKind(string(raw.Kind))
	if err != nil {
		return err
	}
	key, err := challenge.ParseSolution(kind, raw.Key)
	if err != nil {
		return err
	}
	*b = Bundle{
		ID:         raw.ID,
		Kind:       kind,
		Columns:    raw.Columns,
		Background: raw.Background,
		Tiles:      raw.Tiles,
		Key:        captcha.NewKey(key),
	}
	return nil
}

// EncodeBundle writes b to w as zstd-compressed JSON.
func EncodeBundle(w io.Writer, b *Bundle) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(enc)
	if err := json.NewEncoder(bw).Encode(b); err != nil {
		enc.Close()
		return fmt.Errorf("failed to encode bundle: %w", err)
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// DecodeBundle reads a bundle written by EncodeBundle.
func DecodeBundle(r io.Reader) (*Bundle, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var b Bundle
	if err := json.NewDecoder(bufio.NewReader(dec)).Decode(&b); err != nil {
		return nil, fmt.Errorf("failed to decode bundle: %w", err)
	}
	return &b, nil
}

// WriteBundle writes b into dir as <id>.json.zst and returns the path.
func WriteBundle(dir string, b *Bundle) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	p := filepath.Join(dir, b.ID+BundleExt)
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", err
	}

	if err := encodeAndClose(f, b); err != nil {
		os.Remove(p)
		return "", err
	}
	return p, nil
}

// encodeAndClose encodes b into w and always closes w. A failed close is
// reported even when encoding succeeded.
func encodeAndClose(w io.WriteCloser, b *Bundle) (err error) {
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close bundle: %w", cerr)
		}
	}()
	return EncodeBundle(w, b)
}

// ReadBundle reads a bundle file.
func ReadBundle(p string) (*Bundle, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeBundle(f)
}

// BundleKey returns the object key of a bundle under prefix.
func BundleKey(prefix, id string) string {
	return path.Join(strings.TrimSuffix(prefix, "/"), id+BundleExt)
}

// UploadBundle stores b under prefix and returns its object key.
func UploadBundle(store ObjectStore, prefix string, b *Bundle) (string, error) {
	var buf bytes.Buffer
	if err := EncodeBundle(&buf, b); err != nil {
		return "", err
	}

	key := BundleKey(prefix, b.ID)
	if err := store.PutObject(key, buf.Bytes()); err != nil {
		return "", fmt.Errorf("failed to upload bundle: %w", err)
	}
	return key, nil
}

// DownloadBundle fetches the bundle stored at key.
func DownloadBundle(store ObjectStore, key string) (*Bundle, error) {
	data, err := store.GetObject(key)
	if err != nil {
		return nil, fmt.Errorf("failed to download bundle: %w", err)
	}
	return DecodeBundle(bytes.NewReader(data))
}
