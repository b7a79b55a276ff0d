package cli

import (
	"context"
	"errors"
	"io"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/goliatone/go-autoform/pkg/renderers/tui"
)

// Options adjusts Run for embedding and tests.
type Options struct {
	// PromptDriver replaces the terminal drivers of the prompt command.
	PromptDriver tui.PromptDriver
}

// Run executes the autoform CLI and returns the exit code. args includes the
// program name. env supplies flag defaults.
func Run(in io.Reader, out, errOut io.Writer, args []string, env map[string]string, opts Options) int {
	o := NewIO(in, out, errOut)

	global := flag.NewFlagSet("autoform", flag.ContinueOnError)
	global.SetInterspersed(false)
	global.SetOutput(&strings.Builder{})
	envFile := global.String("env-file", "", "dotenv file with AUTOFORM_* defaults")
	if len(args) > 0 {
		args = args[1:]
	}
	if err := global.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printUsage(o, nil)
			return 0
		}
		o.ErrPrintln("error:", err)
		return 1
	}

	env, err := LoadEnv(env, *envFile)
	if err != nil {
		o.ErrPrintln("error:", err)
		return 1
	}
	cfg := ConfigFromEnv(env)
	commands := []*Command{
		RenderCmd(cfg),
		FillCmd(cfg),
		LintCmd(cfg),
		PromptCmd(cfg, opts.PromptDriver),
		ImportCmd(cfg),
	}

	rest := global.Args()
	if len(rest) == 0 || rest[0] == "help" || rest[0] == "-h" {
		printUsage(o, commands)
		return 0
	}
	for _, cmd := range commands {
		if cmd.Name() == rest[0] {
			return cmd.Run(context.Background(), o, rest[1:])
		}
	}
	o.ErrPrintln("error: unknown command", rest[0])
	printUsage(o, commands)
	return 1
}

func printUsage(o *IO, commands []*Command) {
	o.Println("Usage: autoform [--env-file <path>] <command> [flags]")
	o.Println()
	o.Println("Commands:")
	for _, cmd := range commands {
		o.Println(cmd.HelpLine())
	}
	o.Println()
	o.Println("Defaults come from " + strings.Join([]string{EnvSchema, EnvModel, EnvLogLevel, EnvTheme}, ", ") + ".")
}
