// Package openapi imports OpenAPI 3 schemas as form bundles.
//
// Every component schema (and, on request, every operation request body)
// becomes a model. Properties keep their document order. Objects become
// nested models, arrays repeat their item type, enums become option lists
// under the "options" namespace and validation keywords become rules.
// The x-autoform-kind, x-autoform-group and x-autoform-label extensions
// override the derived kind, group and caption of a property.
package openapi
