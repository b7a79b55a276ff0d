package validation

import (
	"fmt"
	"net/mail"
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/goliatone/go-autoform/pkg/dom"
)

// Check validates a value for a tovalidate rule. arg holds the text after
// the first colon of the rule, such as the extension list of "file:png,jpg".
type Check func(value, arg string) error

func defaultChecks() map[string]Check {
	return map[string]Check{
		"number":   checkNumber,
		"alpha":    checkAlpha,
		"url":      checkURL,
		"password": checkPassword,
		"email":    checkEmail,
		"file":     checkFile,
	}
}

// Lookup returns the built-in check registered under name, such as "email"
// or "file". Callers validating values outside a form tree use it to apply
// the same tovalidate semantics.
func Lookup(name string) (Check, bool) {
	check, ok := defaultChecks()[strings.ToLower(strings.TrimSpace(name))]
	return check, ok
}

// firstFailure returns the first failing rule of control and its message.
func (v *FormValidator) firstFailure(control *html.Node, value string) (string, string) {
	if semantic, ok := semanticRule(control); ok {
		name, arg, _ := strings.Cut(semantic, ":")
		if check, ok := v.checks[strings.ToLower(strings.TrimSpace(name))]; ok {
			if err := check(value, arg); err != nil {
				return "tovalidate", err.Error()
			}
		}
	}

	length := utf8.RuneCountInString(value)
	if limit, ok := intAttr(control, "maxlength"); ok && length > limit {
		return "maxlength", fmt.Sprintf("must be at most %d characters", limit)
	}
	if limit, ok := intAttr(control, "minlength"); ok && length < limit {
		return "minlength", fmt.Sprintf("must be at least %d characters", limit)
	}
	if pattern, ok := dom.Attr(control, "pattern"); ok && pattern != "" {
		if re, err := regexp.Compile("^(?:" + pattern + ")$"); err == nil && !re.MatchString(value) {
			return "pattern", "does not match the expected format"
		}
	}
	if number, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
		if limit, ok := floatAttr(control, "min"); ok && number < limit {
			return "min", fmt.Sprintf("must be at least %v", limit)
		}
		if limit, ok := floatAttr(control, "max"); ok && number > limit {
			return "max", fmt.Sprintf("must be at most %v", limit)
		}
	}
	return "", ""
}

func semanticRule(control *html.Node) (string, bool) {
	if control.Data == "rich-inputfile" {
		if ext, ok := dom.Attr(control, "allowed-extensions"); ok && ext != "" {
			return "file:" + ext, true
		}
	}
	rule, ok := dom.Attr(control, "data-tovalidate")
	return rule, ok && strings.TrimSpace(rule) != ""
}

func intAttr(n *html.Node, key string) (int, bool) {
	raw, ok := dom.Attr(n, key)
	if !ok {
		return 0, false
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	return v, err == nil
}

func floatAttr(n *html.Node, key string) (float64, bool) {
	raw, ok := dom.Attr(n, key)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	return v, err == nil
}

func checkNumber(value, _ string) error {
	if _, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err != nil {
		return fmt.Errorf("must be a number")
	}
	return nil
}

func checkAlpha(value, _ string) error {
	for _, r := range value {
		if unicode.IsLetter(r) || unicode.IsSpace(r) || r == '\'' || r == '-' || r == '.' {
			continue
		}
		return fmt.Errorf("must contain letters only")
	}
	return nil
}

func checkURL(value, _ string) error {
	u, err := url.ParseRequestURI(strings.TrimSpace(value))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("must be an http or https URL")
	}
	return nil
}

func checkPassword(value, _ string) error {
	var upper, lower, digit bool
	for _, r := range value {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if utf8.RuneCountInString(value) < 8 || !upper || !lower || !digit {
		return fmt.Errorf("must be 8+ characters with upper, lower case letters and digits")
	}
	return nil
}

func checkEmail(value, _ string) error {
	addr, err := mail.ParseAddress(strings.TrimSpace(value))
	if err != nil || addr.Address != strings.TrimSpace(value) {
		return fmt.Errorf("must be an email address")
	}
	return nil
}

// checkFile matches the file name extension against a comma separated list.
// Values that carry no extension, such as inline byte payloads, pass.
func checkFile(value, arg string) error {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(strings.TrimSpace(value))), ".")
	if ext == "" || strings.TrimSpace(arg) == "" {
		return nil
	}
	for _, allowed := range strings.Split(arg, ",") {
		if strings.TrimPrefix(strings.ToLower(strings.TrimSpace(allowed)), ".") == ext {
			return nil
		}
	}
	return fmt.Errorf("file type must be one of %s", arg)
}
