package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "golang.org/x/image/webp"

	"github.com/kyiku/tile-captcha/internal/captcha"
)

// ErrNoImages is returned when a source holds no usable images.
var ErrNoImages = errors.New("no source images available")

// imageExtensions are the file types accepted as source images.
var imageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".webp"}

// IsImageName reports whether name has a supported image extension.
func IsImageName(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range imageExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

func decodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// ObjectSource picks source images stored under a prefix of an ObjectStore.
type ObjectSource struct {
	store  ObjectStore
	prefix string
}

var _ captcha.ImageSource = (*ObjectSource)(nil)

// NewObjectSource creates a new ObjectSource.
func NewObjectSource(store ObjectStore, prefix string) *ObjectSource {
	return &ObjectSource{
		store:  store,
		prefix: prefix,
	}
}

// Keys returns the image keys under the prefix.
func (s *ObjectSource) Keys() ([]string, error) {
	keys, err := s.store.ListObjects(s.prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list source images: %w", err)
	}

	images := make([]string, 0, len(keys))
	for _, key := range keys {
		if IsImageName(key) {
			images = append(images, key)
		}
	}
	return images, nil
}

// RandomImage returns a random source image.
func (s *ObjectSource) RandomImage(rng *rand.Rand) (image.Image, string, error) {
	keys, err := s.Keys()
	if err != nil {
		return nil, "", err
	}
	if len(keys) == 0 {
		return nil, "", fmt.Errorf("%w under %q", ErrNoImages, s.prefix)
	}

	key := keys[rng.Intn(len(keys))]
	data, err := s.store.GetObject(key)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get source image: %w", err)
	}

	img, err := decodeImage(data)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", key, err)
	}
	return img, key, nil
}

// DirSource picks source images from a local directory.
type DirSource struct {
	dir string
}

var _ captcha.ImageSource = (*DirSource)(nil)

// NewDirSource creates a new DirSource.
func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: dir}
}

// Names returns the sorted image file names in the directory.
func (s *DirSource) Names() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read source dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && IsImageName(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// RandomImage returns a random image from the directory.
func (s *DirSource) RandomImage(rng *rand.Rand) (image.Image, string, error) {
	names, err := s.Names()
	if err != nil {
		return nil, "", err
	}
	if len(names) == 0 {
		return nil, "", fmt.Errorf("%w in %s", ErrNoImages, s.dir)
	}

	name := names[rng.Intn(len(names))]
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read source image: %w", err)
	}

	img, err := decodeImage(data)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", name, err)
	}
	return img, name, nil
}
