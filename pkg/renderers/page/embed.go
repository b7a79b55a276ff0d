package page

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tpl
var embeddedTemplates embed.FS

//go:embed assets/*
var embeddedAssets embed.FS

const (
	// StylesheetName is the file name of the bundled stylesheet in AssetsFS.
	StylesheetName = "autoform.css"

	// AssetStylesheet is the theme asset key that overrides the stylesheet.
	AssetStylesheet = "page.stylesheet"
	// PartialLayout is the theme partial key that overrides the page template.
	PartialLayout = "page.layout"

	defaultLayout = "templates/page.tpl"
)

// TemplatesFS exposes the embedded page template.
func TemplatesFS() fs.FS {
	return embeddedTemplates
}

// AssetsFS exposes the bundled stylesheet so hosts can serve it.
func AssetsFS() fs.FS {
	sub, err := fs.Sub(embeddedAssets, "assets")
	if err != nil {
		return embeddedAssets
	}
	return sub
}
