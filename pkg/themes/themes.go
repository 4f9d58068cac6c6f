// Package themes resolves go-theme manifests into the renderer configuration
// the vanilla renderer consumes: partial overrides, tokens exposed as CSS
// variables, and asset URLs.
package themes

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path"
	"slices"
	"strings"
	"sync"

	theme "github.com/goliatone/go-theme"
	"gopkg.in/yaml.v3"
)

var (
	// ErrUnknownTheme is returned when selecting a theme that was not registered.
	ErrUnknownTheme = errors.New("themes: unknown theme")
	// ErrUnknownVariant is returned when a manifest has no such variant.
	ErrUnknownVariant = errors.New("themes: unknown variant")
)

// DefaultFallbacks maps page partial keys to the embedded templates used when
// a theme does not override them.
func DefaultFallbacks() map[string]string {
	return map[string]string{
		"page.layout": "templates/layout.tmpl",
		"page.form":   "templates/form.tmpl",
		"page.group":  "templates/group.tmpl",
		"page.matrix": "templates/matrix.tmpl",
	}
}

// Selector keeps registered manifests and resolves theme/variant choices. It
// satisfies theme.ThemeSelector.
type Selector struct {
	mu             sync.RWMutex
	manifests      map[string]*theme.Manifest
	defaultTheme   string
	defaultVariant string
}

var _ theme.ThemeSelector = (*Selector)(nil)

// NewSelector creates a selector that falls back to defaultTheme and
// defaultVariant when Select receives empty names.
func NewSelector(defaultTheme, defaultVariant string) *Selector {
	return &Selector{
		manifests:      make(map[string]*theme.Manifest),
		defaultTheme:   strings.TrimSpace(defaultTheme),
		defaultVariant: strings.TrimSpace(defaultVariant),
	}
}

// Register adds or replaces a manifest keyed by its name.
func (s *Selector) Register(manifest *theme.Manifest) error {
	if manifest == nil {
		return errors.New("themes: manifest is nil")
	}
	name := strings.TrimSpace(manifest.Name)
	if name == "" {
		return errors.New("themes: manifest name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.manifests[name] = manifest
	if s.defaultTheme == "" {
		s.defaultTheme = name
	}
	return nil
}

// Names lists the registered themes.
func (s *Selector) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.manifests))
}

// Select resolves name and variant, applying the selector defaults for empty
// values.
func (s *Selector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if name = strings.TrimSpace(name); name == "" {
		name = s.defaultTheme
	}
	manifest, ok := s.manifests[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTheme, name)
	}

	if variant = strings.TrimSpace(variant); variant == "" && name == s.defaultTheme {
		variant = s.defaultVariant
	}
	if variant != "" {
		if _, ok := manifest.Variants[variant]; !ok {
			return nil, fmt.Errorf("%w: %q in theme %q", ErrUnknownVariant, variant, name)
		}
	}

	return &theme.Selection{
		Theme:    name,
		Variant:  variant,
		Manifest: manifest,
	}, nil
}

// RendererConfig merges fallbacks, manifest and variant into a renderer
// configuration. Variant values win over manifest values, which win over
// fallbacks. A nil selection yields the fallbacks alone.
func RendererConfig(selection *theme.Selection, fallbacks map[string]string) *theme.RendererConfig {
	cfg := &theme.RendererConfig{
		Partials: maps.Clone(fallbacks),
		Tokens:   map[string]string{},
		CSSVars:  map[string]string{},
	}
	if cfg.Partials == nil {
		cfg.Partials = map[string]string{}
	}
	if selection == nil || selection.Manifest == nil {
		cfg.AssetURL = func(string) string { return "" }
		return cfg
	}

	manifest := selection.Manifest
	cfg.Theme = selection.Theme
	cfg.Variant = selection.Variant

	variant, hasVariant := manifest.Variants[selection.Variant]

	maps.Copy(cfg.Partials, manifest.Templates)
	maps.Copy(cfg.Tokens, manifest.Tokens)
	if hasVariant {
		maps.Copy(cfg.Partials, variant.Templates)
		maps.Copy(cfg.Tokens, variant.Tokens)
	}
	for key, value := range cfg.Tokens {
		cfg.CSSVars[cssVarName(key)] = value
	}

	prefix := manifest.Assets.Prefix
	files := maps.Clone(manifest.Assets.Files)
	if files == nil {
		files = map[string]string{}
	}
	if hasVariant {
		if variant.Assets.Prefix != "" {
			prefix = variant.Assets.Prefix
		}
		maps.Copy(files, variant.Assets.Files)
	}
	cfg.AssetURL = assetResolver(prefix, files)
	return cfg
}

func assetResolver(prefix string, files map[string]string) func(string) string {
	return func(key string) string {
		file, ok := files[key]
		if !ok || file == "" {
			return ""
		}
		if strings.HasPrefix(file, "/") || strings.Contains(file, "://") {
			return file
		}
		if prefix == "" {
			return file
		}
		return path.Join(prefix, file)
	}
}

func cssVarName(token string) string {
	token = strings.TrimSpace(token)
	if strings.HasPrefix(token, "--") {
		return token
	}
	return "--" + strings.ReplaceAll(token, ".", "-")
}

// ManifestFile is the YAML shape of a theme manifest on disk.
type ManifestFile struct {
	Name      string                 `yaml:"name"`
	Version   string                 `yaml:"version"`
	Tokens    map[string]string      `yaml:"tokens"`
	Templates map[string]string      `yaml:"templates"`
	Assets    AssetsFile             `yaml:"assets"`
	Variants  map[string]VariantFile `yaml:"variants"`
}

// AssetsFile is the YAML shape of theme assets.
type AssetsFile struct {
	Prefix string            `yaml:"prefix"`
	Files  map[string]string `yaml:"files"`
}

// VariantFile is the YAML shape of a theme variant.
type VariantFile struct {
	Tokens    map[string]string `yaml:"tokens"`
	Templates map[string]string `yaml:"templates"`
	Assets    AssetsFile        `yaml:"assets"`
}

// Manifest converts the file representation into a go-theme manifest.
func (f ManifestFile) Manifest() *theme.Manifest {
	manifest := &theme.Manifest{
		Name:      f.Name,
		Version:   f.Version,
		Tokens:    f.Tokens,
		Templates: f.Templates,
		Assets:    theme.Assets{Prefix: f.Assets.Prefix, Files: f.Assets.Files},
	}
	if len(f.Variants) > 0 {
		manifest.Variants = make(map[string]theme.Variant, len(f.Variants))
		for name, variant := range f.Variants {
			manifest.Variants[name] = theme.Variant{
				Tokens:    variant.Tokens,
				Templates: variant.Templates,
				Assets:    theme.Assets{Prefix: variant.Assets.Prefix, Files: variant.Assets.Files},
			}
		}
	}
	return manifest
}

// ParseManifest decodes a YAML manifest.
func ParseManifest(data []byte) (*theme.Manifest, error) {
	var file ManifestFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("themes: decode manifest: %w", err)
	}
	if strings.TrimSpace(file.Name) == "" {
		return nil, errors.New("themes: manifest name is required")
	}
	return file.Manifest(), nil
}

// LoadManifest reads and decodes a YAML manifest file.
func LoadManifest(filename string) (*theme.Manifest, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("themes: read manifest: %w", err)
	}
	return ParseManifest(data)
}
