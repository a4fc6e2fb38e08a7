// Package config loads runtime settings from the environment and an optional
// .env file.
//
// Variables already present in the process environment take precedence over
// values from the .env file. Empty values count as unset.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Recognition engines selectable with SCAN_OCR_ENGINE.
const (
	EngineTesseract = "tesseract"
	EngineOpenAI    = "openai"
)

// Config stores runtime configuration.
type Config struct {
	LogLevel logrus.Level

	// Engine is EngineTesseract or EngineOpenAI.
	Engine   string
	Language string

	Contrast      int
	MaxDimension  int
	JPEGQuality   int
	DecodeTimeout time.Duration
	MaxPixels     int64
	Raster        bool

	TessdataPrefix string

	OpenAIKey      string
	OpenAIEndpoint string
	OpenAIModel    string
}

// Load reads configuration from the environment, falling back to the given
// .env files and then to defaults. With no files, ./.env is read if present.
func Load(files ...string) (Config, error) {
	fileEnv, err := readEnvFiles(files)
	if err != nil {
		return Config{}, err
	}
	env := lookup{file: fileEnv}

	cfg := Config{
		Engine:         strings.ToLower(env.get("SCAN_OCR_ENGINE", EngineTesseract)),
		Language:       env.get("SCAN_OCR_LANG", "eng"),
		TessdataPrefix: env.get("TESSDATA_PREFIX", ""),
		OpenAIKey:      env.get("OPENAI_API_KEY", ""),
		OpenAIEndpoint: env.get("OPENAI_API_ENDPOINT", ""),
		OpenAIModel:    env.get("OPENAI_MODEL", "gpt-4o-mini"),
	}

	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	level := env.get("SCAN_OCR_LOG_LEVEL", "info")
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		collect(fmt.Errorf("invalid SCAN_OCR_LOG_LEVEL %q: %w", level, err))
	}
	cfg.LogLevel = lvl

	cfg.Contrast, err = env.getInt("SCAN_OCR_CONTRAST", 70)
	collect(err)
	cfg.MaxDimension, err = env.getInt("SCAN_OCR_MAX_DIMENSION", 1600)
	collect(err)
	cfg.JPEGQuality, err = env.getInt("SCAN_OCR_JPEG_QUALITY", 92)
	collect(err)
	cfg.DecodeTimeout, err = env.getDuration("SCAN_OCR_DECODE_TIMEOUT", 30*time.Second)
	collect(err)
	maxPixels, err := env.getInt("SCAN_OCR_MAX_PIXELS", 100_000_000)
	collect(err)
	cfg.MaxPixels = int64(maxPixels)
	cfg.Raster, err = env.getBool("SCAN_OCR_RASTER", true)
	collect(err)

	collect(cfg.Validate())

	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	switch c.Engine {
	case EngineTesseract, EngineOpenAI:
	default:
		return fmt.Errorf("unknown SCAN_OCR_ENGINE %q (want %s or %s)", c.Engine, EngineTesseract, EngineOpenAI)
	}
	if c.Contrast < -255 || c.Contrast > 255 {
		return fmt.Errorf("SCAN_OCR_CONTRAST %d outside [-255, 255]", c.Contrast)
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return fmt.Errorf("SCAN_OCR_JPEG_QUALITY %d outside [1, 100]", c.JPEGQuality)
	}
	if c.MaxPixels < 1 {
		return fmt.Errorf("SCAN_OCR_MAX_PIXELS %d must be positive", c.MaxPixels)
	}
	if c.Language == "" {
		return errors.New("SCAN_OCR_LANG must not be empty")
	}
	return nil
}

func readEnvFiles(files []string) (map[string]string, error) {
	if len(files) == 0 {
		if _, err := os.Stat(".env"); err != nil {
			return map[string]string{}, nil
		}
		files = []string{".env"}
	}
	m, err := godotenv.Read(files...)
	if err != nil {
		return nil, fmt.Errorf("failed to read env file: %w", err)
	}
	return m, nil
}

type lookup struct {
	file map[string]string
}

func (l lookup) get(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	if val := l.file[key]; val != "" {
		return val
	}
	return fallback
}

func (l lookup) getInt(key string, fallback int) (int, error) {
	raw := l.get(key, "")
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fallback, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return n, nil
}

func (l lookup) getBool(key string, fallback bool) (bool, error) {
	raw := l.get(key, "")
	if raw == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return fallback, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return b, nil
}

func (l lookup) getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := l.get(key, "")
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return fallback, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return d, nil
}
