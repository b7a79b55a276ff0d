package cli

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"

	flag "github.com/spf13/pflag"
)

var errInvalidForm = errors.New("form has empty required fields or failing rules")

// FillCmd returns the fill command.
func FillCmd(cfg Config) *Command {
	flags := flag.NewFlagSet("fill", flag.ContinueOnError)
	bindCommon(flags, &cfg)
	valuesPath := flags.String("values", "", "JSON values to fill, - for stdin")
	query := flags.String("query", "", "url-encoded submission applied after --values")
	validate := flags.Bool("validate", false, "fail when the filled form does not validate")
	output := flags.StringP("output", "o", "", "output file (stdout if empty)")

	return &Command{
		Flags: flags,
		Usage: "fill [flags]",
		Short: "Fill a model and print its data as JSON",
		Long: "Render a model, fill it from JSON values and/or a url-encoded submission, " +
			"then print the data read back from the form.",
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
			if values != nil {
				if err := form.FillDataValues("", values, nil); err != nil {
					return err
				}
			}
			if *query != "" {
				submitted, err := url.ParseQuery(*query)
				if err != nil {
					return err
				}
				if err := form.ApplyValues(submitted); err != nil {
					return err
				}
			}
			if *validate && !form.SaveForm() {
				return errInvalidForm
			}
			out, err := json.MarshalIndent(form.GetFormData(), "", "  ")
			if err != nil {
				return err
			}
			return writeOutput(o, *output, append(out, '\n'))
		},
	}
}
