package controls

import "strings"

// Chrome holds the class hooks and fixed captions applied to generated
// markup. Styling itself is left to the host page.
type Chrome struct {
	Form              string
	Layer             string
	Label             string
	Control           string
	Check             string
	CheckLabel        string
	Button            string
	Info              string
	InfoText          string
	Invalid           string
	SelectPlaceholder string
	AddText           string
	SaveText          string
}

// DefaultChrome returns Bootstrap-flavoured class hooks.
func DefaultChrome() Chrome {
	return Chrome{
		Form:              "container",
		Layer:             "form-group",
		Label:             "main-form-label",
		Control:           "form-control",
		Check:             "form-check-input",
		CheckLabel:        "form-check-label",
		Button:            "btn btn-primary",
		Info:              "info-space info-icon tooltip-info",
		InfoText:          "tooltiptext",
		Invalid:           "is-invalid",
		SelectPlaceholder: "Select an option",
		AddText:           "Add",
		SaveText:          "Save",
	}
}

// Token keys understood by WithTokens.
const (
	TokenForm              = "autoform.form"
	TokenLayer             = "autoform.layer"
	TokenLabel             = "autoform.label"
	TokenControl           = "autoform.control"
	TokenCheck             = "autoform.check"
	TokenCheckLabel        = "autoform.check-label"
	TokenButton            = "autoform.button"
	TokenInfo              = "autoform.info"
	TokenInfoText          = "autoform.info-text"
	TokenInvalid           = "autoform.invalid"
	TokenSelectPlaceholder = "autoform.select-placeholder"
	TokenAddText           = "autoform.add-text"
	TokenSaveText          = "autoform.save-text"
)

// WithTokens returns a copy of c with every recognised, non-empty token
// applied. Theme manifests use it to swap class vocabularies.
func (c Chrome) WithTokens(tokens map[string]string) Chrome {
	targets := map[string]*string{
		TokenForm:              &c.Form,
		TokenLayer:             &c.Layer,
		TokenLabel:             &c.Label,
		TokenControl:           &c.Control,
		TokenCheck:             &c.Check,
		TokenCheckLabel:        &c.CheckLabel,
		TokenButton:            &c.Button,
		TokenInfo:              &c.Info,
		TokenInfoText:          &c.InfoText,
		TokenInvalid:           &c.Invalid,
		TokenSelectPlaceholder: &c.SelectPlaceholder,
		TokenAddText:           &c.AddText,
		TokenSaveText:          &c.SaveText,
	}
	for key, value := range tokens {
		if target, ok := targets[key]; ok && strings.TrimSpace(value) != "" {
			*target = strings.TrimSpace(value)
		}
	}
	return c
}
