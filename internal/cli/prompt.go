package cli

import (
	"context"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/goliatone/go-autoform/pkg/render"
	"github.com/goliatone/go-autoform/pkg/renderers/tui"
)

// PromptCmd returns the prompt command. driver, when non-nil, replaces the
// terminal drivers.
func PromptCmd(cfg Config, driver tui.PromptDriver) *Command {
	flags := flag.NewFlagSet("prompt", flag.ContinueOnError)
	bindCommon(flags, &cfg)
	driverName := flags.String("driver", "survey", "survey or liner")
	format := flags.String("format", string(tui.OutputFormatJSON), "json, form or pretty")
	valuesPath := flags.String("values", "", "JSON values offered as defaults")
	output := flags.StringP("output", "o", "", "output file (stdout if empty)")

	return &Command{
		Flags: flags,
		Usage: "prompt [flags]",
		Short: "Fill a model interactively in the terminal",
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			s, err := newSession(cfg, o, false)
			if err != nil {
				return err
			}
			values, err := readValues(o, *valuesPath)
			if err != nil {
				return err
			}
			form, err := s.form(ctx)
			if err != nil {
				return err
			}

			if driver == nil {
				switch *driverName {
				case "survey":
					driver = tui.NewSurveyDriver(o.errOut)
				case "liner":
					liner := tui.NewLinerDriver(o.errOut)
					defer liner.Close()
					driver = liner
				default:
					return fmt.Errorf("unknown driver %q", *driverName)
				}
			}
			renderer, err := tui.New(
				tui.WithPromptDriver(driver),
				tui.WithOutputFormat(tui.OutputFormat(*format)),
				tui.WithLogger(s.logger),
			)
			if err != nil {
				return err
			}
			out, err := renderer.Render(ctx, form, render.RenderOptions{Values: values})
			if err != nil {
				return err
			}
			return writeOutput(o, *output, out)
		},
	}
}
