package render

import (
	"context"
	"fmt"

	"github.com/goliatone/go-autoform/pkg/autoform"
)

// Prepare applies per-request options to a rendered form tree. Values are
// filled first, then error feedback is attached and hidden submission inputs
// are placed at the top of the root form.
// Renderers call it before serialising the tree.
func Prepare(ctx context.Context, form *autoform.Node, options RenderOptions) error {
	if form == nil {
		return fmt.Errorf("render: form is required")
	}
	if form.State() != autoform.StateRendered {
		return fmt.Errorf("render: form %q: %w", form.ID(), autoform.ErrNotRendered)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(options.Values) > 0 {
		if err := form.FillDataValues("", options.Values, nil); err != nil {
			return fmt.Errorf("render: prefill %q: %w", form.ID(), err)
		}
	}
	if len(options.Errors) > 0 || len(options.FormErrors) > 0 {
		mapping := MapErrorPayload(form, options.Errors)
		mapping.Form = MergeFormErrors(mapping.Form, options.FormErrors...)
		ApplyErrors(form, mapping)
	}
	AppendHidden(form, options.Hidden)
	return nil
}
