package render

import (
	"context"

	"github.com/goliatone/go-autoform/pkg/autoform"
)

// Renderer converts a rendered form tree into a byte representation (a full
// HTML page, a fragment, a prompt transcript).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, form *autoform.Node, options RenderOptions) ([]byte, error)
}
