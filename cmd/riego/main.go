package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/idilsaglam/riego/internal/cli"
)

func main() {
	// Root flags (apply to every subcommand)
	configPath := flag.String("config", "", "config file path")
	url := flag.String("url", "", "device base URL")
	theme := flag.String("theme", "", "classic | neon | mono")
	verbose := flag.Bool("v", false, "log requests to stderr")
	flag.Parse()

	// Hand the remaining args to the CLI runner.
	args := flag.Args()
	if len(args) == 0 {
		cli.PrintHelp()
		os.Exit(2)
	}

	code := cli.Run(args, cli.Options{
		ConfigPath: *configPath,
		URL:        *url,
		Theme:      *theme,
		Verbose:    *verbose,
	})
	if code != 0 {
		fmt.Fprintln(os.Stderr)
	}
	os.Exit(code)
}
