// Package template defines the template engine seam used by the page
// renderer. The gotemplate subpackage builds the default engine on
// github.com/goliatone/go-template.
package template
