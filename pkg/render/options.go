package render

import (
	theme "github.com/goliatone/go-theme"
)

// DefaultAssetsPrefix is where the server mounts embedded assets.
const DefaultAssetsPrefix = "/assets"

// RenderOptions describe per-request data that renderers can use to customise
// their output without changing the page view.
type RenderOptions struct {
	// Standalone wraps the page in a complete HTML document including the
	// focus script. Fragments are returned otherwise.
	Standalone bool
	// AssetsPrefix is the URL path embedded assets are served from.
	AssetsPrefix string
	// Stylesheets and Scripts are extra URLs linked from standalone documents.
	Stylesheets []string
	Scripts     []string
	// Theme carries resolved partial overrides, tokens and asset URLs.
	Theme *theme.RendererConfig
}

// Prefix returns AssetsPrefix or the default.
func (o RenderOptions) Prefix() string {
	if o.AssetsPrefix == "" {
		return DefaultAssetsPrefix
	}
	return o.AssetsPrefix
}
