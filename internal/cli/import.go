package cli

import (
	"context"
	"encoding/json"
	"errors"

	flag "github.com/spf13/pflag"

	"github.com/goliatone/go-autoform/pkg/openapi"
	"github.com/goliatone/go-autoform/pkg/schema"
)

// ImportCmd returns the import command.
func ImportCmd(cfg Config) *Command {
	flags := flag.NewFlagSet("import", flag.ContinueOnError)
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	schemas := flags.StringSlice("schemas", nil, "component schemas to import (default all)")
	operations := flags.Bool("operations", false, "also import write operation request bodies")
	validate := flags.Bool("validate", false, "validate the document first")
	externalRefs := flags.Bool("external-refs", false, "allow references to other files")
	output := flags.StringP("output", "o", "", "output file (stdout if empty)")

	return &Command{
		Flags: flags,
		Usage: "import [flags] <openapi-file>",
		Short: "Convert an OpenAPI document into a schema bundle",
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if len(args) != 1 {
				return errors.New("expected exactly one OpenAPI document")
			}
			s, err := newSession(cfg, o, false)
			if err != nil {
				return err
			}
			doc, err := s.loader.Read(ctx, schema.SourceFromFile(args[0]))
			if err != nil {
				return err
			}

			opts := []openapi.Option{openapi.WithLogger(s.logger), openapi.WithSchemas(*schemas...)}
			if *operations {
				opts = append(opts, openapi.WithOperations())
			}
			if *validate {
				opts = append(opts, openapi.WithValidation())
			}
			if *externalRefs {
				opts = append(opts, openapi.WithExternalRefs())
			}
			bundle, err := openapi.New(opts...).ImportDocument(ctx, doc)
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(bundle, "", "  ")
			if err != nil {
				return err
			}
			return writeOutput(o, *output, append(out, '\n'))
		},
	}
}
