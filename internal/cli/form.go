package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/natefinch/atomic"
	"github.com/tailscale/hujson"
	"go.uber.org/zap"

	goautoform "github.com/goliatone/go-autoform"
	"github.com/goliatone/go-autoform/pkg/autoform"
	"github.com/goliatone/go-autoform/pkg/schema"
)

var (
	errSchemaRequired = errors.New("--schema is required")
	errModelRequired  = errors.New("--model is required")
)

// session is the state shared by commands that build a form.
type session struct {
	cfg    Config
	logger *zap.Logger
	loader *schema.Loader
}

func newSession(cfg Config, o *IO, strict bool) (*session, error) {
	logger, err := NewLogger(cfg.LogLevel, o.errOut)
	if err != nil {
		return nil, err
	}
	opts := []schema.LoaderOption{}
	if strict {
		opts = append(opts, schema.WithStrict())
	}
	return &session{cfg: cfg, logger: logger, loader: schema.NewLoader(opts...)}, nil
}

// bundle loads a form bundle, importing OpenAPI documents on the fly.
func (s *session) bundle(ctx context.Context, path string) (*schema.Bundle, error) {
	if path == "" {
		return nil, errSchemaRequired
	}
	return goautoform.LoadBundle(ctx, s.loader, schema.SourceFromFile(path), s.logger)
}

// form builds and renders the configured model.
func (s *session) form(ctx context.Context, opts ...autoform.Option) (*autoform.Node, error) {
	if s.cfg.Model == "" {
		return nil, errModelRequired
	}
	bundle, err := s.bundle(ctx, s.cfg.Schema)
	if err != nil {
		return nil, err
	}
	base := []autoform.Option{autoform.WithModel(s.cfg.Model), autoform.WithLogger(s.logger)}
	if s.cfg.Theme != "" {
		selector, err := loadThemeSelector(s.cfg.Theme)
		if err != nil {
			return nil, err
		}
		base = append(base, autoform.WithTheme(selector, "", s.cfg.Variant))
	}
	form := autoform.New(append(base, opts...)...)
	if err := form.SetSchema(bundle); err != nil {
		return nil, err
	}
	return form, nil
}

// readValues decodes a JSON (or JWCC) object from path, "-" meaning stdin.
func readValues(o *IO, path string) (map[string]any, error) {
	if path == "" {
		return nil, nil
	}
	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(o.in)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read values: %w", err)
	}
	raw, err = hujson.Standardize(raw)
	if err != nil {
		return nil, fmt.Errorf("parse values %s: %w", path, err)
	}
	var values map[string]any
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("decode values %s: %w", path, err)
	}
	return values, nil
}

// writeOutput replaces path atomically, or prints to stdout when path is
// empty.
func writeOutput(o *IO, path string, data []byte) error {
	if path == "" {
		_, err := o.Write(data)
		return err
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
