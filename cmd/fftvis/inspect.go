package main

import (
	"context"
	"fmt"
	"os"

	goJSON "github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"fftvis/internal/fvz"
)

func inspectCmd() *cli.Command {
	var (
		inPath   string
		asJSON   bool
	)

	return &cli.Command{
		Name:  "inspect",
		Usage: "Print the header of a .fvz file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "in", Usage: "input .fvz file", Destination: &inPath, Required: true},
			&cli.BoolFlag{Name: "json", Usage: "print as JSON", Destination: &asJSON},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			data, err := os.ReadFile(inPath)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			header, err := fvz.DecodeHeader(data)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}

			if asJSON {
				enc := goJSON.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(header)
			}

			fmt.Printf("fftResolution:   %d\n", header.FFTResolution)
			fmt.Printf("numBands:        %d\n", header.NumBands)
			fmt.Printf("frameRate:       %d\n", header.FrameRate)
			fmt.Printf("totalFrames:     %d\n", header.TotalFrames)
			fmt.Printf("maxAmplitude:    %v\n", header.MaxAmplitude)
			fmt.Printf("zstd:            %v\n", header.HasZstd())
			fmt.Printf("quantize:        %v\n", header.HasQuantize())
			fmt.Printf("delta:           %v\n", header.HasDelta())
			fmt.Printf("quantizeLevel:   %s\n", quantizeLevelName(header))
			return nil
		},
	}
}

func quantizeLevelName(h fvz.Header) string {
	if !h.HasQuantize() {
		return "n/a"
	}
	if h.Uses8Bit() {
		return "8-bit"
	}
	return "16-bit"
}
