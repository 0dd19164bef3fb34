// Package testutil provides common test utilities, mocks, and helpers for testing.
package testutil

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"sort"
	"strings"
	"sync"

	"github.com/kyiku/tile-captcha/internal/dragdrop"
	"github.com/kyiku/tile-captcha/internal/geometry"
	"github.com/kyiku/tile-captcha/internal/input"
)

// MockObjectStore is a mock implementation of an S3-style object store for testing.
type MockObjectStore struct {
	mu           sync.Mutex
	Objects      map[string][]byte
	UploadedData map[string][]byte
	GetErr       error
	PutErr       error
	ListErr      error
}

// NewMockObjectStore creates a new MockObjectStore.
func NewMockObjectStore() *MockObjectStore {
	return &MockObjectStore{
		Objects:      make(map[string][]byte),
		UploadedData: make(map[string][]byte),
	}
}

// GetObject mocks S3 GetObject. Uploaded objects are readable too.
func (m *MockObjectStore) GetObject(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetErr != nil {
		return nil, m.GetErr
	}

	if data, ok := m.Objects[key]; ok {
		return data, nil
	}
	if data, ok := m.UploadedData[key]; ok {
		return data, nil
	}
	return nil, &ObjectNotFoundError{Key: key}
}

// PutObject mocks S3 PutObject.
func (m *MockObjectStore) PutObject(key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.PutErr != nil {
		return m.PutErr
	}

	m.UploadedData[key] = data
	return nil
}

// ListObjects mocks S3 ListObjects. Keys are returned sorted.
func (m *MockObjectStore) ListObjects(prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ListErr != nil {
		return nil, m.ListErr
	}

	var keys []string
	for key := range m.Objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// ObjectNotFoundError is returned when an object is not found.
type ObjectNotFoundError struct {
	Key string
}

func (e *ObjectNotFoundError) Error() string {
	return "object not found: " + e.Key
}

// RecordingAdapter is a UI adapter that records everything the core applies.
// Bounds of every item default to a 100x100 square at the origin.
type RecordingAdapter struct {
	Rects      map[input.ItemID]geometry.Rect
	BoundsErr  error
	Angles     map[input.ItemID]float64
	Orders     [][]int
	Highlights map[input.ItemID]dragdrop.Highlight
}

// NewRecordingAdapter creates an empty RecordingAdapter.
func NewRecordingAdapter() *RecordingAdapter {
	return &RecordingAdapter{
		Rects:      make(map[input.ItemID]geometry.Rect),
		Angles:     make(map[input.ItemID]float64),
		Highlights: make(map[input.ItemID]dragdrop.Highlight),
	}
}

// Bounds returns the configured rect of item.
func (a *RecordingAdapter) Bounds(item input.ItemID) (geometry.Rect, error) {
	if a.BoundsErr != nil {
		return geometry.Rect{}, a.BoundsErr
	}
	if r, ok := a.Rects[item]; ok {
		return r, nil
	}
	return geometry.Rect{Width: 100, Height: 100}, nil
}

// ApplyVisualRotation records the angle.
func (a *RecordingAdapter) ApplyVisualRotation(item input.ItemID, degrees float64) {
	a.Angles[item] = degrees
}

// ApplyVisualOrder records the order.
func (a *RecordingAdapter) ApplyVisualOrder(order []int) {
	a.Orders = append(a.Orders, order)
}

// ApplyHighlight records the highlight; HighlightNone removes the entry.
func (a *RecordingAdapter) ApplyHighlight(item input.ItemID, h dragdrop.Highlight) {
	if h == dragdrop.HighlightNone {
		delete(a.Highlights, item)
		return
	}
	a.Highlights[item] = h
}

// LastOrder returns the most recent order, or nil.
func (a *RecordingAdapter) LastOrder() []int {
	if len(a.Orders) == 0 {
		return nil
	}
	return a.Orders[len(a.Orders)-1]
}

// CreateTestPNG creates a test PNG image with specified dimensions.
func CreateTestPNG(width, height int) []byte {
	var buf bytes.Buffer
	_ = png.Encode(&buf, CreateTestImage(width, height))
	return buf.Bytes()
}

// CreateTestJPEG creates a test JPEG image with specified dimensions.
func CreateTestJPEG(width, height int) []byte {
	var buf bytes.Buffer
	_ = jpeg.Encode(&buf, CreateTestImage(width, height), &jpeg.Options{Quality: 80})
	return buf.Bytes()
}

// CreateTestImage creates a test image.Image with specified dimensions.
// Every pixel differs from its neighbours so rotations and reorders are visible.
func CreateTestImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8(x % 256),
				G: uint8(y % 256),
				B: uint8((x + y) % 256),
				A: 255,
			})
		}
	}

	return img
}
