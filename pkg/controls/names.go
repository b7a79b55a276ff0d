package controls

// Element names and id prefixes shared with the form controller.
const (
	HostTag = "json-autoform"
	FileTag = "rich-inputfile"

	LayerPrefix    = "layer-field"
	MultiplePrefix = "multiple_container"
	ModelPrefix    = "model"
	AddPrefix      = "add"

	// FieldAttr marks the root of every field instance with the field name.
	FieldAttr = "data-field"

	EventBlur   = "blur"
	EventChange = "change"
	EventClick  = "click"
)
