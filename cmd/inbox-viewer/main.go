package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/welldanyogia/webrana-inbox-viewer/internal/cli"
)

func main() {
	var c cli.CLI

	parser := kong.Must(&c,
		kong.Name("inbox-viewer"),
		kong.Description("Browse and manage emails captured by a mail-capture backend"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	ctx, err := parser.Parse(os.Args[1:])
	if err != nil {
		parser.FatalIfErrorf(err)
	}

	// Create execution context
	execCtx, err := cli.NewContext(&c.Globals)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Run the command
	if err := ctx.Run(execCtx); err != nil {
		execCtx.Formatter.Error(err)
		os.Exit(1)
	}
}
