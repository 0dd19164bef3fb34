package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 serves ListObjectsV2 in pages of pageSize keys.
type fakeS3 struct {
	objects  map[string][]byte
	keys     []string
	pageSize int
	calls    int
	err      error
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, ok := f.objects[*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*in.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	start := 0
	if in.ContinuationToken != nil {
		for i, k := range f.keys {
			if k == *in.ContinuationToken {
				start = i
			}
		}
	}
	end := min(start+f.pageSize, len(f.keys))

	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(end < len(f.keys))}
	for _, k := range f.keys[start:end] {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	if end < len(f.keys) {
		out.NextContinuationToken = aws.String(f.keys[end])
	}
	return out, nil
}

func TestS3Store_GetPut(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{}}
	store := NewS3Store(fake, "test-bucket")

	require.NoError(t, store.PutObject("bundles/a.json.zst", []byte("abc")))

	data, err := store.GetObject("bundles/a.json.zst")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), data)

	_, err = store.GetObject("missing")
	var noKey *types.NoSuchKey
	assert.True(t, errors.As(err, &noKey))
}

func TestS3Store_ListObjects(t *testing.T) {
	tests := []struct {
		name      string
		keys      []string
		pageSize  int
		want      []string
		wantCalls int
	}{
		{
			name:      "正常系: 1ページ",
			keys:      []string{"sources/a.png", "sources/b.png"},
			pageSize:  10,
			want:      []string{"sources/a.png", "sources/b.png"},
			wantCalls: 1,
		},
		{
			name:      "正常系: 複数ページ",
			keys:      []string{"sources/a.png", "sources/b.png", "sources/c.png"},
			pageSize:  2,
			want:      []string{"sources/a.png", "sources/b.png", "sources/c.png"},
			wantCalls: 2,
		},
		{
			name:      "境界値: 空",
			pageSize:  2,
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeS3{keys: tt.keys, pageSize: tt.pageSize}
			store := NewS3Store(fake, "test-bucket")

			keys, err := store.ListObjects("sources/")

			require.NoError(t, err)
			assert.Equal(t, tt.want, keys)
			assert.Equal(t, tt.wantCalls, fake.calls)
		})
	}
}

func TestS3Store_Errors(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{}, err: errors.New("access denied")}
	store := NewS3Store(fake, "test-bucket")

	_, err := store.GetObject("a")
	assert.ErrorContains(t, err, "access denied")
	assert.Error(t, store.PutObject("a", nil))
	_, err = store.ListObjects("")
	assert.Error(t, err)
}
