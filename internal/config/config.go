// Package config provides configuration management for the application.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/gommon/log"
	"gopkg.in/yaml.v3"

	"github.com/kyiku/tile-captcha/internal/challenge"
	"github.com/kyiku/tile-captcha/internal/dragdrop"
)

// FileEnv names the environment variable pointing at an optional YAML file.
const FileEnv = "CAPTCHA_CONFIG"

// Config holds the application configuration.
type Config struct {
	LogLevel string `yaml:"log_level"`

	SourceDir    string `yaml:"source_dir"`
	AWSRegion    string `yaml:"aws_region"`
	S3Bucket     string `yaml:"s3_bucket"`
	S3Prefix     string `yaml:"s3_prefix"`
	BundlePrefix string `yaml:"bundle_prefix"`

	CircleSteps int    `yaml:"circle_steps"`
	GridSteps   int    `yaml:"grid_steps"`
	GridColumns int    `yaml:"grid_columns"`
	RowsColumns int    `yaml:"rows_columns"`
	RowsPolicy  string `yaml:"rows_policy"`
	GridPolicy  string `yaml:"grid_policy"`

	RowTiles    int `yaml:"row_tiles"`
	CircleRings int `yaml:"circle_rings"`

	// AngleTolerance is the accepted angular error in degrees when verifying.
	AngleTolerance  float64       `yaml:"angle_tolerance"`
	ChallengeExpiry time.Duration `yaml:"challenge_expiry"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel:     "info",
		AWSRegion:    "ap-northeast-1",
		S3Prefix:     "sources/",
		BundlePrefix: "bundles/",
		CircleSteps:  360,
		GridSteps:    4,
		GridColumns:  2,
		RowsColumns:  1,
		RowsPolicy:   "insert",
		GridPolicy:   "swap",
		RowTiles:     8,
		CircleRings:  5,
	}
}

// LoadConfig loads the defaults, overlays the YAML file named by
// CAPTCHA_CONFIG if set, then applies environment variables.
func LoadConfig() (*Config, error) {
	cfg := Default()

	if path := os.Getenv(FileEnv); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile overlays the YAML file at path onto c.
func (c *Config) LoadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.SourceDir = getEnv("SOURCE_DIR", c.SourceDir)
	c.AWSRegion = getEnv("AWS_REGION", c.AWSRegion)
	c.S3Bucket = getEnv("S3_BUCKET", c.S3Bucket)
	c.S3Prefix = getEnv("S3_PREFIX", c.S3Prefix)
	c.BundlePrefix = getEnv("BUNDLE_PREFIX", c.BundlePrefix)
	c.RowsPolicy = getEnv("ROWS_POLICY", c.RowsPolicy)
	c.GridPolicy = getEnv("GRID_POLICY", c.GridPolicy)

	ints := []struct {
		key string
		dst *int
	}{
		{"CIRCLE_STEPS", &c.CircleSteps},
		{"GRID_STEPS", &c.GridSteps},
		{"GRID_COLUMNS", &c.GridColumns},
		{"ROWS_COLUMNS", &c.RowsColumns},
		{"ROW_TILES", &c.RowTiles},
		{"CIRCLE_RINGS", &c.CircleRings},
	}
	for _, e := range ints {
		v, err := getEnvInt(e.key, *e.dst)
		if err != nil {
			return err
		}
		*e.dst = v
	}

	if v := os.Getenv("ANGLE_TOLERANCE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid ANGLE_TOLERANCE: %w", err)
		}
		c.AngleTolerance = f
	}
	if v := os.Getenv("CHALLENGE_EXPIRY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid CHALLENGE_EXPIRY: %w", err)
		}
		c.ChallengeExpiry = d
	}
	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	if c.CircleSteps < 1 || c.GridSteps < 1 {
		return errors.New("invalid steps: must be positive")
	}
	if c.GridColumns < 1 || c.RowsColumns < 1 {
		return errors.New("invalid columns: must be positive")
	}
	if c.RowTiles < 1 || c.CircleRings < 1 {
		return errors.New("invalid tile count: must be positive")
	}
	if _, err := dragdrop.ParsePolicy(c.RowsPolicy); err != nil {
		return fmt.Errorf("rows_policy: %w", err)
	}
	if _, err := dragdrop.ParsePolicy(c.GridPolicy); err != nil {
		return fmt.Errorf("grid_policy: %w", err)
	}
	if c.AngleTolerance < 0 || c.AngleTolerance >= 180 {
		return errors.New("invalid angle tolerance: must be in [0, 180)")
	}
	if c.ChallengeExpiry < 0 {
		return errors.New("invalid challenge expiry: must not be negative")
	}
	return nil
}

// Options returns the challenge options for kind.
func (c *Config) Options(kind challenge.Kind) (challenge.Options, error) {
	opts := challenge.DefaultOptions(kind)
	switch kind {
	case challenge.KindCircles:
		opts.Steps = c.CircleSteps
	case challenge.KindRows:
		opts.Columns = c.RowsColumns
		p, err := dragdrop.ParsePolicy(c.RowsPolicy)
		if err != nil {
			return challenge.Options{}, err
		}
		opts.Policy = p
	case challenge.KindGrid:
		opts.Steps = c.GridSteps
		opts.Columns = c.GridColumns
		p, err := dragdrop.ParsePolicy(c.GridPolicy)
		if err != nil {
			return challenge.Options{}, err
		}
		opts.Policy = p
	default:
		return challenge.Options{}, fmt.Errorf("%w: %q", challenge.ErrUnknownKind, kind)
	}
	return opts, nil
}

// Level returns the gommon log level. Invalid values fall back to INFO.
func (c *Config) Level() log.Lvl {
	lvl, err := ParseLogLevel(c.LogLevel)
	if err != nil {
		return log.INFO
	}
	return lvl
}

// ParseLogLevel parses debug, info, warn, error or off.
func ParseLogLevel(s string) (log.Lvl, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return log.DEBUG, nil
	case "info", "":
		return log.INFO, nil
	case "warn", "warning":
		return log.WARN, nil
	case "error":
		return log.ERROR, nil
	case "off":
		return log.OFF, nil
	}
	return 0, fmt.Errorf("invalid log level %q", s)
}

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: must be a number", key)
	}
	return n, nil
}
