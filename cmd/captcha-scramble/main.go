// Scrambles one source image into a challenge bundle.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/labstack/gommon/log"

	"github.com/kyiku/tile-captcha/internal/captcha"
	"github.com/kyiku/tile-captcha/internal/challenge"
	"github.com/kyiku/tile-captcha/internal/config"
	"github.com/kyiku/tile-captcha/internal/storage"
)

func main() {
	kindFlag := flag.String("kind", string(challenge.KindGrid), "challenge kind: circles, rows or grid")
	out := flag.String("out", "bundles", "directory for the bundle file")
	upload := flag.Bool("upload", false, "upload the bundle to S3 instead of writing it locally")
	seed := flag.Int64("seed", 0, "random seed (0 uses the clock)")
	flag.Parse()

	logger := log.New("captcha-scramble")

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("Invalid config: %v", err)
	}
	logger.SetLevel(cfg.Level())

	kind, err := challenge.ParseKind(*kindFlag)
	if err != nil {
		logger.Fatalf("%v", err)
	}

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(*seed))

	var store storage.ObjectStore
	if cfg.S3Bucket != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(), awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			logger.Fatalf("Failed to load AWS config: %v", err)
		}
		store = storage.NewS3Store(s3.NewFromConfig(awsCfg), cfg.S3Bucket)
	}

	var source captcha.ImageSource
	switch {
	case cfg.SourceDir != "":
		source = storage.NewDirSource(cfg.SourceDir)
	case store != nil:
		source = storage.NewObjectSource(store, cfg.S3Prefix)
	default:
		logger.Fatal("No image source: set SOURCE_DIR or S3_BUCKET")
	}

	gen := captcha.NewGenerator(source, rng, cfg.RowTiles, cfg.CircleRings, logger)
	scrambled, err := gen.Generate(kind)
	if err != nil {
		logger.Fatalf("Failed to scramble: %v", err)
	}

	bundle, err := storage.NewBundle(scrambled)
	if err != nil {
		logger.Fatalf("Failed to build bundle: %v", err)
	}

	var location string
	if *upload {
		if store == nil {
			logger.Fatal("-upload needs S3_BUCKET")
		}
		location, err = storage.UploadBundle(store, cfg.BundlePrefix, bundle)
	} else {
		location, err = storage.WriteBundle(*out, bundle)
	}
	if err != nil {
		logger.Fatalf("Failed to save bundle: %v", err)
	}

	logger.Infof("Wrote %s bundle %s (seed %d)", kind, bundle.ID, *seed)
	fmt.Fprintln(os.Stdout, location)
}
