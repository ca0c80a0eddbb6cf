package driftcanvas

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds everything tunable about the app. Values come from an
// optional YAML file, overridden by environment variables (a .env file is
// loaded first if present). Zero values select the documented defaults.
type Config struct {
	// APIKey authenticates against the Gemini API. Env: GEMINI_API_KEY.
	APIKey string `yaml:"-"`

	// ImageModel and TextModel name the models used for sprite generation
	// and remix suggestions.
	ImageModel string `yaml:"image_model"`
	TextModel  string `yaml:"text_model"`

	// ColorThreshold is the squared-Euclidean chroma-key distance.
	ColorThreshold int `yaml:"color_threshold"`

	// RequestTimeoutSec bounds each generation request, in seconds.
	RequestTimeoutSec int `yaml:"request_timeout_sec"`

	// WindowWidth and WindowHeight size the initial window.
	WindowWidth  int `yaml:"window_width"`
	WindowHeight int `yaml:"window_height"`

	// ExportDir receives saved PNGs.
	ExportDir string `yaml:"export_dir"`

	// LogFile receives rotated structured logs; empty disables file output.
	LogFile string `yaml:"log_file"`

	// Debug enables the on-screen stats overlay and debug-level logging.
	Debug bool `yaml:"debug"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		ImageModel:        "gemini-2.0-flash-preview-image-generation",
		TextModel:         "gemini-2.0-flash",
		ColorThreshold:    DefaultColorThreshold,
		RequestTimeoutSec: 60,
		WindowWidth:       1280,
		WindowHeight:      800,
		ExportDir:         "exports",
	}
}

// RequestTimeout returns the per-request deadline as a duration.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSec) * time.Second
}

// LoadConfig builds a Config from defaults, an optional YAML file, and the
// environment, in that order. path may be empty, in which case
// "driftcanvas.yaml" is used when it exists. A missing .env file is not an
// error; a malformed YAML file is.
func LoadConfig(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if path == "" {
		if _, err := os.Stat("driftcanvas.yaml"); err == nil {
			path = "driftcanvas.yaml"
		}
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

// applyEnv overlays environment variables onto cfg. Unparseable numeric
// values are ignored rather than fatal.
func applyEnv(cfg *Config) {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("DRIFTCANVAS_IMAGE_MODEL"); v != "" {
		cfg.ImageModel = v
	}
	if v := os.Getenv("DRIFTCANVAS_TEXT_MODEL"); v != "" {
		cfg.TextModel = v
	}
	if v := os.Getenv("DRIFTCANVAS_EXPORT_DIR"); v != "" {
		cfg.ExportDir = v
	}
	if v := os.Getenv("DRIFTCANVAS_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv("DRIFTCANVAS_TIMEOUT_SEC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RequestTimeoutSec = n
		}
	}
	if v := os.Getenv("DRIFTCANVAS_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ColorThreshold = n
		}
	}
	if v := os.Getenv("DRIFTCANVAS_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Debug = b
		}
	}
}
