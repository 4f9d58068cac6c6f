// Package config loads the YAML configuration shared by the CLI commands.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-resourceforms/internal/logging"
	"github.com/goliatone/go-resourceforms/pkg/resource"
	"github.com/goliatone/go-resourceforms/pkg/widgets"
)

// EnvPath names the environment variable holding the config file path.
const EnvPath = "RESOURCEFORMS_CONFIG"

// Config is the full application configuration.
type Config struct {
	API       API               `yaml:"api"`
	Server    Server            `yaml:"server"`
	Layout    resource.Layout   `yaml:"layout"`
	Widgets   map[string]string `yaml:"widgets"`
	Theme     Theme             `yaml:"theme"`
	Templates Templates         `yaml:"templates"`
	Log       logging.Config    `yaml:"log"`
}

// API configures the upstream REST API.
type API struct {
	BaseURL     string            `yaml:"base_url"`
	Timeout     time.Duration     `yaml:"timeout"`
	Headers     map[string]string `yaml:"headers"`
	OpenAPI     string            `yaml:"openapi"`
	Concurrency int               `yaml:"concurrency"`
}

// Server configures the HTTP server.
type Server struct {
	Addr            string        `yaml:"addr"`
	AssetsPrefix    string        `yaml:"assets_prefix"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Theme selects a go-theme manifest.
type Theme struct {
	Manifests []string `yaml:"manifests"`
	Name      string   `yaml:"name"`
	Variant   string   `yaml:"variant"`
}

// Templates points at an on-disk template directory that shadows the
// embedded templates.
type Templates struct {
	Dir   string `yaml:"dir"`
	Watch bool   `yaml:"watch"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		API: API{
			BaseURL: "http://localhost:8000/api",
			Timeout: 10 * time.Second,
		},
		Server: Server{
			Addr:            ":8080",
			AssetsPrefix:    "/assets",
			ShutdownTimeout: 5 * time.Second,
		},
		Layout: resource.DefaultLayout(),
		Log: logging.Config{
			Level:  "info",
			Format: logging.FormatJSON,
		},
	}
}

// Load reads path over the defaults and validates the result. An empty path
// falls back to $RESOURCEFORMS_CONFIG, and to the defaults when that is unset.
func Load(path string) (Config, error) {
	cfg := Default()

	if path = strings.TrimSpace(path); path == "" {
		path = strings.TrimSpace(os.Getenv(EnvPath))
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := Parse(data, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes YAML into cfg, keeping values the document does not set.
func Parse(data []byte, cfg *Config) error {
	if cfg == nil {
		return errors.New("config: target is nil")
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: decode: %w", err)
	}
	return nil
}

// Validate checks the configuration for values the commands cannot use.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.API.BaseURL) == "" {
		errs = append(errs, errors.New("api.base_url is required"))
	}
	if c.API.Timeout < 0 {
		errs = append(errs, errors.New("api.timeout must not be negative"))
	}
	if c.API.Concurrency < 0 {
		errs = append(errs, errors.New("api.concurrency must not be negative"))
	}
	if err := c.Layout.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("layout: %w", err))
	}
	for field, kind := range c.Widgets {
		if !validWidget(kind) {
			errs = append(errs, fmt.Errorf("widgets.%s: unknown widget %q", field, kind))
		}
	}
	if c.Server.AssetsPrefix != "" && !strings.HasPrefix(c.Server.AssetsPrefix, "/") {
		errs = append(errs, errors.New("server.assets_prefix must start with /"))
	}
	if c.Templates.Watch && c.Templates.Dir == "" {
		errs = append(errs, errors.New("templates.watch requires templates.dir"))
	}
	if err := c.Log.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// WidgetRegistry builds the widget registry with the configured overrides.
func (c Config) WidgetRegistry() *widgets.Registry {
	registry := widgets.NewRegistry()
	for field, kind := range c.Widgets {
		registry.Override(field, widgets.Kind(strings.ToLower(strings.TrimSpace(kind))))
	}
	return registry
}

func validWidget(kind string) bool {
	switch widgets.Kind(strings.ToLower(strings.TrimSpace(kind))) {
	case widgets.KindInput, widgets.KindSelect, widgets.KindCheckbox, widgets.KindTextarea:
		return true
	}
	return false
}
