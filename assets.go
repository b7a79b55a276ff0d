package autoform

import (
	"io/fs"

	"github.com/goliatone/go-autoform/pkg/renderers/page"
)

// EmbeddedTemplates exposes the built-in page templates so callers can reuse
// or extend them.
func EmbeddedTemplates() fs.FS {
	return page.TemplatesFS()
}

// AssetsFS exposes the bundled stylesheet.
//
// Typical mount:
//
//	mux.Handle("/assets/",
//	  http.StripPrefix("/assets/",
//	    http.FileServerFS(autoform.AssetsFS()),
//	  ),
//	)
func AssetsFS() fs.FS {
	return page.AssetsFS()
}
