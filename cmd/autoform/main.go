package main

import (
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/goliatone/go-autoform/internal/cli"
)

func main() {
	_ = godotenv.Load()
	os.Exit(cli.Run(os.Stdin, os.Stdout, os.Stderr, os.Args, environ(), cli.Options{}))
}

func environ() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if key, value, ok := strings.Cut(kv, "="); ok {
			env[key] = value
		}
	}
	return env
}
