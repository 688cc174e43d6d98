// Command fftvis is the FFTVIS codec CLI: encode audio into .fvz
// spectrogram files, decode and inspect them, serve decoded frames over
// HTTP, or browse interactively.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"fftvis/internal/logging"
)

func main() {
	app := &cli.Command{
		Name:  "fftvis",
		Usage: "FFTVIS spectrogram codec",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runMenu(ctx)
		},
		Commands: []*cli.Command{
			encodeCmd(),
			decodeCmd(),
			inspectCmd(),
			serveCmd(),
		},
	}

	ctx := logging.WithContext(context.Background(), logging.WithJobID(logging.Default()))
	if err := app.Run(ctx, os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
