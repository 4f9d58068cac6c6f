// Package focus ships the label animation script and the initial state the
// server renders for each field wrapper.
//
// The script runs on window load. For every element with WrapperClass it finds
// the first INPUT, TEXTAREA or SELECT child and keeps the wrapper's
// data-focus attribute in sync: true while the control has focus or holds a
// value, false after a blur that leaves it empty.
package focus

import (
	"embed"
	"io/fs"
)

const (
	// WrapperClass marks elements whose data-focus attribute the script drives.
	WrapperClass = "field-wrp"
	// Attribute is the data attribute toggled on the wrapper.
	Attribute = "data-focus"
	// ScriptName is the asset file name inside AssetsFS.
	ScriptName = "focus.js"
)

//go:embed assets/*
var embeddedAssets embed.FS

// AssetsFS exposes the embedded script so it can be served over HTTP.
func AssetsFS() fs.FS {
	sub, err := fs.Sub(embeddedAssets, "assets")
	if err != nil {
		return embeddedAssets
	}
	return sub
}

// Script returns the script source.
func Script() string {
	data, err := fs.ReadFile(embeddedAssets, "assets/"+ScriptName)
	if err != nil {
		return ""
	}
	return string(data)
}

// Initial reports the attribute value a wrapper starts with for a control
// holding value.
func Initial(value string) bool {
	return value != ""
}

// AttributeValue renders a focus state for the data attribute.
func AttributeValue(focused bool) string {
	if focused {
		return "true"
	}
	return "false"
}
