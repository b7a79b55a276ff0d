package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/goliatone/go-autoform/pkg/autoform"
	"github.com/goliatone/go-autoform/pkg/render"
	"github.com/goliatone/go-autoform/pkg/schema"
	"github.com/goliatone/go-autoform/pkg/validation"
)

// noneOption is offered first by optional single choices.
const noneOption = "(none)"

// Renderer implements render.Renderer for terminal sessions. It prompts for
// every field of a rendered form, fills the answers into the live tree and
// serialises the tree's value, so the output matches what GetFormData
// returns for the same answers.
type Renderer struct {
	driver            PromptDriver
	outputFormat      OutputFormat
	submitTransformer SubmitTransformer
	theme             Theme
	logger            *zap.Logger
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		outputFormat: OutputFormatJSON,
		logger:       zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(nil)
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain"
	default:
		return "application/json"
	}
}

// Render runs one prompt session. Values pre-populate the form and become
// the prompt defaults; Errors are shown before the prompt of their path.
func (r *Renderer) Render(ctx context.Context, form *autoform.Node, opts render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.driver == nil {
		return nil, errors.New("tui: prompt driver is nil")
	}
	if form == nil {
		return nil, errors.New("tui: form is required")
	}
	if form.State() != autoform.StateRendered {
		return nil, fmt.Errorf("tui: form %q: %w", form.ID(), autoform.ErrNotRendered)
	}

	if len(opts.Values) > 0 {
		if err := form.FillDataValues("", opts.Values, nil); err != nil {
			return nil, fmt.Errorf("tui: prefill: %w", err)
		}
	}
	if title := strings.TrimSpace(opts.Title); title != "" {
		if err := r.info(ctx, title); err != nil {
			return nil, err
		}
	}

	s := &session{
		r:      r,
		bundle: form.Bundle(),
		state:  NewState(form.GetFormData(), opts.Errors),
	}
	if err := s.model(ctx, form.Descriptor(), ""); err != nil {
		return nil, err
	}

	if err := form.FillDataValues("", s.state.Values(), nil); err != nil {
		return nil, fmt.Errorf("tui: apply answers: %w", err)
	}
	values := form.GetFormData()
	if r.submitTransformer != nil {
		var err error
		values, err = r.submitTransformer(values)
		if err != nil {
			return nil, fmt.Errorf("tui: submit transformer: %w", err)
		}
	}
	return r.serialize(values)
}

func (r *Renderer) info(ctx context.Context, msg string) error {
	return r.driver.Info(ctx, r.theme.InfoPrefix+msg)
}

func (r *Renderer) problem(ctx context.Context, msg string) error {
	return r.driver.Info(ctx, r.theme.ErrorPrefix+msg)
}

func (r *Renderer) serialize(values map[string]any) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return []byte(flattenForm(values)), nil
	case OutputFormatPrettyText:
		return []byte(prettyPrint(values)), nil
	default:
		return json.Marshal(values)
	}
}

type session struct {
	r      *Renderer
	bundle *schema.Bundle
	state  *State
}

type field struct {
	name  string
	label string
	help  string
	tag   schema.TypeTag
	rules fieldRules
}

// model prompts for every renderable field of d under prefix, following the
// same skip and default rules as the form layout.
func (s *session) model(ctx context.Context, d *schema.Descriptor, prefix string) error {
	for _, name := range d.Universe() {
		tag, hasType := d.Type(name)
		card, hasCard := d.Cardinality(name)
		if !hasType && !hasCard {
			continue
		}
		if !hasType {
			tag = schema.TypeTag(schema.KindText)
		}
		f := field{
			name:  name,
			label: d.Label(name),
			help:  strings.TrimSpace(d.Info[name]),
			tag:   tag,
			rules: newFieldRules(d.Rules(name)),
		}
		path := joinPath(prefix, name)

		var err error
		if card == schema.Multiple {
			err = s.repeated(ctx, f, path)
		} else {
			err = s.value(ctx, f, path)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// repeated prompts for every existing instance, then offers more.
func (s *session) repeated(ctx context.Context, f field, path string) error {
	if f.tag.Kind() == schema.KindHidden {
		return nil
	}
	current, _ := s.state.GetValue(path)
	list := coerceAnySlice(current)
	if err := s.state.SetValue(path, list); err != nil {
		return err
	}

	for i := 0; ; i++ {
		if i > 0 && i >= len(list) {
			more, err := s.r.driver.Confirm(ctx, ConfirmConfig{Message: "Add another " + f.label + "?"})
			if err != nil {
				return err
			}
			if !more {
				return nil
			}
		}
		if err := s.value(ctx, f, joinPath(path, strconv.Itoa(i))); err != nil {
			return err
		}
	}
}

func (s *session) value(ctx context.Context, f field, path string) error {
	for _, msg := range s.state.ErrorsFor(path) {
		if err := s.r.problem(ctx, f.label+": "+msg); err != nil {
			return err
		}
	}
	current, _ := s.state.GetValue(path)

	switch f.tag.Kind() {
	case schema.KindHidden:
		return nil
	case schema.KindModel:
		return s.nested(ctx, f, path, current)
	case schema.KindSelect, schema.KindRadio:
		return s.choice(ctx, f, path, current)
	case schema.KindCheckbox:
		return s.checks(ctx, f, path, current)
	case schema.KindFile:
		return s.file(ctx, f, path)
	case schema.KindTextarea:
		return s.textArea(ctx, f, path, current)
	default:
		return s.text(ctx, f, path, current)
	}
}

func (s *session) nested(ctx context.Context, f field, path string, current any) error {
	_, d, ok := s.bundle.NestedModel(f.name, f.tag)
	if !ok {
		s.r.logger.Debug("nested model not found, prompting as text",
			zap.String("field", f.name),
			zap.String("reference", f.tag.Reference()),
		)
		return s.text(ctx, f, path, current)
	}
	if _, ok := current.(map[string]any); !ok {
		if err := s.state.SetValue(path, map[string]any{}); err != nil {
			return err
		}
	}
	if err := s.r.info(ctx, f.label); err != nil {
		return err
	}
	return s.model(ctx, d, path)
}

func (s *session) text(ctx context.Context, f field, path string, current any) error {
	cfg := InputConfig{
		Message:   f.label,
		Default:   scalarString(current),
		Help:      f.help,
		Validator: f.rules.validator(f.tag.Kind()),
	}
	options := s.options(f)
	if len(options) > 0 {
		cfg.Help = strings.TrimSpace(f.help + " Options: " + strings.Join(options, ", "))
		base := cfg.Validator
		cfg.Validator = func(v string) error {
			if v != "" && !slices.Contains(options, v) {
				return fmt.Errorf("must be one of %s", strings.Join(options, ", "))
			}
			return base(v)
		}
	}

	var (
		out string
		err error
	)
	if f.tag.Kind() == schema.KindPassword {
		out, err = s.r.driver.Password(ctx, cfg)
	} else {
		out, err = s.r.driver.Input(ctx, cfg)
	}
	if err != nil {
		return err
	}
	return s.state.SetValue(path, out)
}

func (s *session) textArea(ctx context.Context, f field, path string, current any) error {
	check := f.rules.validator(schema.KindTextarea)
	for {
		out, err := s.r.driver.TextArea(ctx, TextAreaConfig{
			Message: f.label,
			Default: scalarString(current),
			Help:    f.help,
		})
		if err != nil {
			return err
		}
		if err := check(out); err != nil {
			if err := s.r.problem(ctx, fmt.Sprintf("Invalid %s: %v", f.label, err)); err != nil {
				return err
			}
			continue
		}
		return s.state.SetValue(path, out)
	}
}

func (s *session) choice(ctx context.Context, f field, path string, current any) error {
	options := s.options(f)
	if len(options) == 0 {
		return s.text(ctx, f, path, current)
	}
	if !f.rules.required {
		options = append([]string{noneOption}, options...)
	}
	def := indexOf(options, scalarString(current))
	if def < 0 {
		def = 0
	}

	idx, err := s.r.driver.Select(ctx, SelectConfig{
		Message:      f.label,
		Options:      options,
		DefaultIndex: def,
		Help:         f.help,
	})
	if err != nil {
		return err
	}
	value := ""
	if idx >= 0 && idx < len(options) && options[idx] != noneOption {
		value = options[idx]
	}
	return s.state.SetValue(path, value)
}

// checks stores "" for no selection, the option for one and a list
// otherwise, matching how check groups read back.
func (s *session) checks(ctx context.Context, f field, path string, current any) error {
	options := s.options(f)
	if len(options) == 0 {
		return s.text(ctx, f, path, current)
	}
	var defaults []int
	for _, v := range stringifySlice(coerceAnySlice(current)) {
		if idx := indexOf(options, v); idx >= 0 {
			defaults = append(defaults, idx)
		}
	}

	for {
		picked, err := s.r.driver.MultiSelect(ctx, SelectConfig{
			Message:  f.label,
			Options:  options,
			Defaults: defaults,
			Help:     f.help,
		})
		if err != nil {
			return err
		}
		if f.rules.required && len(picked) == 0 {
			if err := s.r.problem(ctx, fmt.Sprintf("Invalid %s: required", f.label)); err != nil {
				return err
			}
			continue
		}
		values := valuesFromIndices(options, picked)
		switch len(values) {
		case 0:
			return s.state.SetValue(path, "")
		case 1:
			return s.state.SetValue(path, values[0])
		default:
			return s.state.SetValue(path, toAnySlice(values))
		}
	}
}

// file asks for a path on disk and stores its bytes. An empty answer keeps
// the current value.
func (s *session) file(ctx context.Context, f field, path string) error {
	check := f.rules.validator(schema.KindFile)
	for {
		out, err := s.r.driver.Input(ctx, InputConfig{
			Message: f.label + " (file path)",
			Help:    f.help,
		})
		if err != nil {
			return err
		}
		out = strings.TrimSpace(out)
		if out == "" {
			if current, ok := s.state.GetValue(path); !f.rules.required || (ok && current != nil && current != "") {
				return nil
			}
		}
		if err := check(out); err != nil {
			if err := s.r.problem(ctx, fmt.Sprintf("Invalid %s: %v", f.label, err)); err != nil {
				return err
			}
			continue
		}
		data, err := os.ReadFile(out)
		if err != nil {
			if err := s.r.problem(ctx, fmt.Sprintf("Cannot read %s: %v", out, err)); err != nil {
				return err
			}
			continue
		}
		return s.state.SetValue(path, data)
	}
}

func (s *session) options(f field) []string {
	ref := f.tag.Reference()
	if ref == "" || s.bundle == nil {
		return nil
	}
	options, ok := s.bundle.Options(ref)
	if !ok {
		s.r.logger.Debug("option list not found",
			zap.String("field", f.name),
			zap.String("reference", ref),
		)
	}
	return options
}

// fieldRules is the subset of validation rules a prompt can enforce.
type fieldRules struct {
	required bool
	minLen   *int
	maxLen   *int
	min      *float64
	max      *float64
	pattern  *regexp.Regexp
	semantic string
	arg      string
}

func newFieldRules(rules schema.Rules) fieldRules {
	out := fieldRules{required: rules.Required()}
	if v, ok := rules.Get("minlength"); ok {
		if n, ok := parseInt(v); ok {
			out.minLen = &n
		}
	}
	if v, ok := rules.Get("maxlength"); ok {
		if n, ok := parseInt(v); ok {
			out.maxLen = &n
		}
	}
	if v, ok := rules.Get("min"); ok {
		if n, ok := parseFloat(v); ok {
			out.min = &n
		}
	}
	if v, ok := rules.Get("max"); ok {
		if n, ok := parseFloat(v); ok {
			out.max = &n
		}
	}
	if v, ok := rules.Get("pattern"); ok && v != "" {
		if re, err := regexp.Compile("^(?:" + v + ")$"); err == nil {
			out.pattern = re
		}
	}
	if v, ok := rules.Get("tovalidate"); ok {
		name, arg, _ := strings.Cut(v, ":")
		out.semantic = strings.TrimSpace(name)
		out.arg = arg
	}
	return out
}

// validator returns the check for a free-text answer. Number and URL kinds
// get their semantic check even without a tovalidate rule.
func (r fieldRules) validator(kind schema.Kind) func(string) error {
	semantic := r.semantic
	if semantic == "" {
		switch kind {
		case schema.KindNumber:
			semantic = "number"
		case schema.KindURL:
			semantic = "url"
		}
	}
	check, _ := validation.Lookup(semantic)

	return func(value string) error {
		if strings.TrimSpace(value) == "" {
			if r.required {
				return errors.New("required")
			}
			return nil
		}
		if check != nil {
			if err := check(value, r.arg); err != nil {
				return err
			}
		}
		length := utf8.RuneCountInString(value)
		if r.minLen != nil && length < *r.minLen {
			return fmt.Errorf("min length %d", *r.minLen)
		}
		if r.maxLen != nil && length > *r.maxLen {
			return fmt.Errorf("max length %d", *r.maxLen)
		}
		if r.pattern != nil && !r.pattern.MatchString(value) {
			return errors.New("does not match required pattern")
		}
		if n, ok := parseFloat(strings.TrimSpace(value)); ok {
			if r.min != nil && n < *r.min {
				return fmt.Errorf("min %v", *r.min)
			}
			if r.max != nil && n > *r.max {
				return fmt.Errorf("max %v", *r.max)
			}
		}
		return nil
	}
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

func scalarString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []any:
		if len(v) > 0 {
			return scalarString(v[0])
		}
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func valuesFromIndices(options []string, indices []int) []string {
	var out []string
	for _, idx := range indices {
		if idx >= 0 && idx < len(options) {
			out = append(out, options[idx])
		}
	}
	return out
}

func stringifySlice(values []any) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, scalarString(v))
	}
	return out
}

func toAnySlice(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// coerceAnySlice treats a lone value as a one-element list.
func coerceAnySlice(value any) []any {
	switch v := value.(type) {
	case nil:
		return []any{}
	case []any:
		return v
	case []string:
		return toAnySlice(v)
	default:
		return []any{v}
	}
}

func parseFloat(raw string) (float64, bool) {
	if raw == "" {
		return 0, false
	}
	val, err := strconv.ParseFloat(raw, 64)
	return val, err == nil
}

func parseInt(raw string) (int, bool) {
	if raw == "" {
		return 0, false
	}
	val, err := strconv.Atoi(strings.TrimSpace(raw))
	return val, err == nil
}

func flattenForm(values map[string]any) string {
	flattened := url.Values{}
	flatten("", values, flattened)
	return flattened.Encode()
}

func flatten(prefix string, value any, out url.Values) {
	switch v := value.(type) {
	case map[string]any:
		for key, val := range v {
			flatten(joinPath(prefix, key), val, out)
		}
	case []any:
		for _, val := range v {
			out.Add(prefix+"[]", fmt.Sprint(val))
		}
	default:
		out.Set(prefix, fmt.Sprint(v))
	}
}

func prettyPrint(values map[string]any) string {
	var b strings.Builder
	writePretty(&b, "", values)
	return b.String()
}

func writePretty(b *strings.Builder, prefix string, value any) {
	switch v := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		slices.Sort(keys)
		for _, key := range keys {
			writePretty(b, joinPath(prefix, key), v[key])
		}
	case []any:
		for idx, val := range v {
			writePretty(b, fmt.Sprintf("%s[%d]", prefix, idx), val)
		}
	default:
		if prefix != "" {
			fmt.Fprintf(b, "%s=%v\n", prefix, v)
		}
	}
}
