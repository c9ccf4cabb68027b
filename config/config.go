package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/inkocr/inkocr/classifier"
	"github.com/inkocr/inkocr/log"
)

const (
	defaultConfigFileName = "config.yaml"
	appFolder             = "inkocr"
	homeFolder            = ".inkocr"

	defaultCanvasSize  = 280
	defaultPort        = "8080"
	defaultConcurrency = 4
)

// Config is the on-disk configuration of the workbench.
type Config struct {
	Canvas  CanvasConfig       `yaml:"canvas"`
	Network classifier.Options `yaml:"network"`
	Server  ServerConfig       `yaml:"server"`

	// DataDir holds autosaved training data and models.
	DataDir string `yaml:"data_dir,omitempty"`

	// Autosave persists the training data after every mutation in the shell.
	Autosave bool `yaml:"autosave"`

	// ImportConcurrency bounds parallel normalization in import-dir.
	ImportConcurrency int64 `yaml:"import_concurrency,omitempty"`
}

type CanvasConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type ServerConfig struct {
	Port string `yaml:"port"`

	// TokenSecret enables HS256 bearer token auth on /api/ when set.
	TokenSecret string `yaml:"token_secret,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Canvas: CanvasConfig{
			Width:  defaultCanvasSize,
			Height: defaultCanvasSize,
		},
		Network: classifier.DefaultOptions(),
		Server: ServerConfig{
			Port: defaultPort,
		},
		Autosave:          true,
		ImportConcurrency: defaultConcurrency,
	}
}

// appDir returns <user config dir>/inkocr, falling back to ~/.inkocr when
// the config dir cannot be determined or created.
func appDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err == nil {
		dir := filepath.Join(configDir, appFolder)
		if err = os.MkdirAll(dir, 0700); err == nil {
			return dir, nil
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, homeFolder)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}
	return dir, nil
}

// ConfigPath returns the config file location, honoring INKOCR_CONFIG.
func ConfigPath() (string, error) {
	if p := os.Getenv("INKOCR_CONFIG"); p != "" {
		return p, nil
	}
	dir, err := appDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, defaultConfigFileName), nil
}

// Load reads the configuration at path. A missing file yields defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Trace.Printf("config %s not found, using defaults", path)
			return cfg.withDataDir()
		}
		return cfg, errors.Wrapf(err, "can't read config %s", path)
	}

	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "can't parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrapf(err, "invalid config %s", path)
	}

	log.Trace.Printf("loaded config from %s", path)
	return cfg.withDataDir()
}

// Save writes the configuration as YAML.
func Save(cfg Config, path string) error {
	content, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "can't marshal config")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	return os.WriteFile(path, content, 0600)
}

// Validate checks values that would break the canvas or the network.
func (c Config) Validate() error {
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		return errors.Errorf("canvas size must be positive, got %dx%d", c.Canvas.Width, c.Canvas.Height)
	}
	if c.ImportConcurrency < 0 {
		return errors.New("import_concurrency can't be negative")
	}
	if strings.TrimSpace(c.Server.Port) == "" {
		return errors.New("server port is empty")
	}
	return c.Network.Validate()
}

func (c Config) withDataDir() (Config, error) {
	if c.DataDir != "" {
		return c, nil
	}
	dir, err := appDir()
	if err != nil {
		return c, errors.Wrap(err, "can't determine data dir")
	}
	c.DataDir = dir
	return c, nil
}

// TrainingDataPath is the autosave location of the sample set.
func (c Config) TrainingDataPath() string {
	return filepath.Join(c.DataDir, "ocr-training-data.json")
}

// ModelPath is the autosave location of the trained model.
func (c Config) ModelPath() string {
	return filepath.Join(c.DataDir, "ocr-model.json")
}
