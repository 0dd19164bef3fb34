package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/kyiku/tile-captcha/internal/storage"
)

const s3Scheme = "s3://"

var errInvalidS3Ref = errors.New("bundle reference must be s3://bucket/key")

// storeFunc opens the object store of a bucket.
type storeFunc func(bucket string) (storage.ObjectStore, error)

// loadBundle reads a bundle from a local path or an s3://bucket/key reference.
func loadBundle(ref string, open storeFunc) (*storage.Bundle, error) {
	rest, ok := strings.CutPrefix(ref, s3Scheme)
	if !ok {
		return storage.ReadBundle(ref)
	}

	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return nil, fmt.Errorf("%w: %q", errInvalidS3Ref, ref)
	}
	store, err := open(bucket)
	if err != nil {
		return nil, err
	}
	return storage.DownloadBundle(store, key)
}

func s3Opener(region string) storeFunc {
	return func(bucket string) (storage.ObjectStore, error) {
		awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(), awsconfig.WithRegion(region))
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		return storage.NewS3Store(s3.NewFromConfig(awsCfg), bucket), nil
	}
}
