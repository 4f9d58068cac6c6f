package vanilla

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tmpl
var embeddedTemplates embed.FS

//go:embed assets/*
var embeddedAssets embed.FS

// StylesheetName is the embedded stylesheet served next to the focus script.
const StylesheetName = "resourceforms.css"

// Template names inside the embedded bundle. Theme partials keyed by the
// matching "page.*" name replace them.
const (
	templateLayout = "templates/layout.tmpl"
	templateForm   = "templates/form.tmpl"
	templateGroup  = "templates/group.tmpl"
	templateMatrix = "templates/matrix.tmpl"
)

// TemplatesFS exposes the embedded template bundle for consumers that want to
// use the built-in page rendering out of the box.
func TemplatesFS() fs.FS {
	return embeddedTemplates
}

// AssetsFS exposes the embedded stylesheet so callers can serve it over HTTP.
func AssetsFS() fs.FS {
	sub, err := fs.Sub(embeddedAssets, "assets")
	if err != nil {
		return embeddedAssets
	}
	return sub
}
