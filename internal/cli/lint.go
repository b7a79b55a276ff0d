package cli

import (
	"context"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/goliatone/go-autoform/pkg/schema"
)

// LintCmd returns the lint command.
func LintCmd(cfg Config) *Command {
	flags := flag.NewFlagSet("lint", flag.ContinueOnError)
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	warnings := flags.Bool("warnings", true, "print warning-severity issues")

	return &Command{
		Flags: flags,
		Usage: "lint [flags] <paths...>",
		Short: "Check schema bundles for authoring mistakes",
		Long: "Check the structure of each bundle and report lint issues. " +
			"Exits non-zero when any bundle has an error-severity issue.",
		Exec: func(ctx context.Context, o *IO, args []string) error {
			paths := args
			if len(paths) == 0 && cfg.Schema != "" {
				paths = []string{cfg.Schema}
			}
			if len(paths) == 0 {
				return errSchemaRequired
			}
			s, err := newSession(cfg, o, false)
			if err != nil {
				return err
			}

			failed := 0
			for _, path := range paths {
				bundle, err := s.bundle(ctx, path)
				if err != nil {
					o.Printf("%s: %v\n", path, err)
					failed++
					continue
				}
				if err := schema.ValidateCUE(bundle); err != nil {
					o.Printf("%s: %v\n", path, err)
					failed++
					continue
				}
				issues := schema.Lint(bundle)
				for _, issue := range issues {
					if issue.Severity == schema.SeverityWarning && !*warnings {
						continue
					}
					o.Printf("%s: %s\n", path, issue)
				}
				if len(issues.Errors()) > 0 {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d bundles failed lint", failed, len(paths))
			}
			return nil
		},
	}
}
