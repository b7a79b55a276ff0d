package schema

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultCacheSize = 64

// Loader reads and decodes bundles, caching decoded bundles by source. Bundles
// are read-only once decoded so cached values are shared between callers.
type Loader struct {
	fs     fs.FS
	strict bool
	cache  *lru.Cache[string, *Bundle]
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithFS sets the filesystem used for SourceKindFS sources.
func WithFS(fsys fs.FS) LoaderOption {
	return func(l *Loader) {
		l.fs = fsys
	}
}

// WithStrict makes Load fail when Lint reports error-severity issues.
func WithStrict() LoaderOption {
	return func(l *Loader) {
		l.strict = true
	}
}

// WithCacheSize bounds the number of cached bundles. Zero disables caching.
func WithCacheSize(size int) LoaderOption {
	return func(l *Loader) {
		if size <= 0 {
			l.cache = nil
			return
		}
		cache, err := lru.New[string, *Bundle](size)
		if err == nil {
			l.cache = cache
		}
	}
}

// NewLoader constructs a Loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{}
	WithCacheSize(defaultCacheSize)(l)
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Read fetches the raw document for src.
func (l *Loader) Read(ctx context.Context, src Source) (Document, error) {
	if src == nil {
		return Document{}, errors.New("schema loader: source is nil")
	}
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}

	var (
		data []byte
		err  error
	)
	switch src.Kind() {
	case SourceKindFile:
		data, err = os.ReadFile(src.Location())
	case SourceKindFS:
		if l.fs == nil {
			return Document{}, errors.New("schema loader: fs source requires WithFS")
		}
		data, err = fs.ReadFile(l.fs, src.Location())
	default:
		err = fmt.Errorf("schema loader: unsupported source kind %q", src.Kind())
	}
	if err != nil {
		return Document{}, fmt.Errorf("schema loader: read %s: %w", src.Location(), err)
	}
	return NewDocument(src, data)
}

// Load reads and decodes the bundle for src, serving repeated requests from
// the cache.
func (l *Loader) Load(ctx context.Context, src Source) (*Bundle, error) {
	if src == nil {
		return nil, errors.New("schema loader: source is nil")
	}
	key := string(src.Kind()) + ":" + src.Location()
	if l.cache != nil {
		if bundle, ok := l.cache.Get(key); ok {
			return bundle, nil
		}
	}

	doc, err := l.Read(ctx, src)
	if err != nil {
		return nil, err
	}
	bundle, err := l.decode(doc)
	if err != nil {
		return nil, err
	}
	if l.cache != nil {
		l.cache.Add(key, bundle)
	}
	return bundle, nil
}

// LoadBytes decodes an inline document. Inline documents are never cached.
func (l *Loader) LoadBytes(name string, raw []byte) (*Bundle, error) {
	doc, err := NewDocument(SourceInline(name), raw)
	if err != nil {
		return nil, err
	}
	return l.decode(doc)
}

// Purge drops every cached bundle.
func (l *Loader) Purge() {
	if l.cache != nil {
		l.cache.Purge()
	}
}

func (l *Loader) decode(doc Document) (*Bundle, error) {
	bundle, err := DecodeDocument(doc)
	if err != nil {
		return nil, err
	}
	if l.strict {
		if err := Lint(bundle).Err(); err != nil {
			return nil, fmt.Errorf("schema loader: %s: %w", doc.Location(), err)
		}
	}
	return bundle, nil
}
