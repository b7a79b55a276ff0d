package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/peterh/liner"
)

// LinerDriver prompts one line at a time with history and tab completion of
// choice options. It suits terminals where survey's full-screen widgets are
// unavailable, such as serial consoles and CI logs.
type LinerDriver struct {
	state   *liner.State
	out     io.Writer
	options []string
}

var _ PromptDriver = (*LinerDriver)(nil)

// NewLinerDriver takes over the terminal until Close is called. Messages are
// written to out, stdout when nil.
func NewLinerDriver(out io.Writer) *LinerDriver {
	if out == nil {
		out = os.Stdout
	}
	d := &LinerDriver{state: liner.NewLiner(), out: out}
	d.state.SetCtrlCAborts(true)
	d.state.SetCompleter(d.complete)
	return d
}

// Close restores the terminal.
func (d *LinerDriver) Close() error {
	return d.state.Close()
}

func (d *LinerDriver) complete(line string) []string {
	var out []string
	for _, option := range d.options {
		if strings.HasPrefix(strings.ToLower(option), strings.ToLower(line)) {
			out = append(out, option)
		}
	}
	return out
}

func (d *LinerDriver) prompt(ctx context.Context, message, help, def string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if help != "" {
		fmt.Fprintln(d.out, "  "+help)
	}
	label := message
	if def != "" {
		label += " [" + def + "]"
	}
	line, err := d.state.Prompt(label + ": ")
	if err != nil {
		return "", translateLinerErr(err)
	}
	line = strings.TrimSpace(line)
	if line != "" {
		d.state.AppendHistory(line)
		return line, nil
	}
	return def, nil
}

func (d *LinerDriver) Input(ctx context.Context, cfg InputConfig) (string, error) {
	for {
		out, err := d.prompt(ctx, cfg.Message, cfg.Help, cfg.Default)
		if err != nil {
			return "", err
		}
		if cfg.Validator == nil {
			return out, nil
		}
		if err := cfg.Validator(out); err != nil {
			fmt.Fprintf(d.out, "  %v\n", err)
			continue
		}
		return out, nil
	}
}

func (d *LinerDriver) Password(ctx context.Context, cfg InputConfig) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	out, err := d.state.PasswordPrompt(cfg.Message + ": ")
	if err != nil {
		return "", translateLinerErr(err)
	}
	if out == "" {
		out = cfg.Default
	}
	if cfg.Validator != nil {
		if err := cfg.Validator(out); err != nil {
			fmt.Fprintf(d.out, "  %v\n", err)
			return d.Password(ctx, cfg)
		}
	}
	return out, nil
}

func (d *LinerDriver) Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error) {
	def := "y/N"
	if cfg.Default {
		def = "Y/n"
	}
	for {
		out, err := d.prompt(ctx, cfg.Message+" ("+def+")", cfg.Help, "")
		if err != nil {
			return false, err
		}
		switch strings.ToLower(out) {
		case "":
			return cfg.Default, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(d.out, "  answer yes or no")
	}
}

func (d *LinerDriver) Select(ctx context.Context, cfg SelectConfig) (int, error) {
	if len(cfg.Options) == 0 {
		return -1, ErrNoOptions
	}
	d.listOptions(cfg.Options)
	def := ""
	if cfg.DefaultIndex >= 0 && cfg.DefaultIndex < len(cfg.Options) {
		def = cfg.Options[cfg.DefaultIndex]
	}
	for {
		out, err := d.withOptions(cfg.Options, func() (string, error) {
			return d.prompt(ctx, cfg.Message, cfg.Help, def)
		})
		if err != nil {
			return -1, err
		}
		if idx := d.pick(cfg.Options, out); idx >= 0 {
			return idx, nil
		}
		fmt.Fprintf(d.out, "  %q is not an option\n", out)
	}
}

func (d *LinerDriver) MultiSelect(ctx context.Context, cfg SelectConfig) ([]int, error) {
	if len(cfg.Options) == 0 {
		return nil, ErrNoOptions
	}
	d.listOptions(cfg.Options)
	def := strings.Join(defaultsFromIndices(cfg.Options, cfg.Defaults), ", ")
	for {
		out, err := d.withOptions(cfg.Options, func() (string, error) {
			return d.prompt(ctx, cfg.Message+" (comma separated)", cfg.Help, def)
		})
		if err != nil {
			return nil, err
		}
		picked, bad := d.pickAll(cfg.Options, out)
		if bad == "" {
			return picked, nil
		}
		fmt.Fprintf(d.out, "  %q is not an option\n", bad)
	}
}

// TextArea reads lines until an empty one.
func (d *LinerDriver) TextArea(ctx context.Context, cfg TextAreaConfig) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if cfg.Help != "" {
		fmt.Fprintln(d.out, "  "+cfg.Help)
	}
	fmt.Fprintf(d.out, "%s (finish with an empty line)\n", cfg.Message)
	var lines []string
	for {
		line, err := d.state.Prompt("> ")
		if err != nil {
			return "", translateLinerErr(err)
		}
		if line == "" {
			break
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return cfg.Default, nil
	}
	return strings.Join(lines, "\n"), nil
}

func (d *LinerDriver) Info(ctx context.Context, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(d.out, msg)
	return err
}

func (d *LinerDriver) withOptions(options []string, fn func() (string, error)) (string, error) {
	d.options = options
	defer func() { d.options = nil }()
	return fn()
}

func (d *LinerDriver) listOptions(options []string) {
	for i, option := range options {
		fmt.Fprintf(d.out, "  %d) %s\n", i+1, option)
	}
}

// pick accepts an option by value or by its 1-based number.
func (d *LinerDriver) pick(options []string, answer string) int {
	if idx := indexOf(options, answer); idx >= 0 {
		return idx
	}
	if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(options) {
		return n - 1
	}
	return -1
}

func (d *LinerDriver) pickAll(options []string, answer string) ([]int, string) {
	var picked []int
	for _, part := range strings.Split(answer, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		idx := d.pick(options, part)
		if idx < 0 {
			return nil, part
		}
		if !slices.Contains(picked, idx) {
			picked = append(picked, idx)
		}
	}
	slices.Sort(picked)
	return picked, ""
}

func translateLinerErr(err error) error {
	if errors.Is(err, liner.ErrPromptAborted) {
		return ErrAborted
	}
	return err
}
