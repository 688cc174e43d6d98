package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	goJSON "github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"fftvis/internal/fvz"
)

func decodeCmd() *cli.Command {
	var (
		inPath  string
		format  string
		outPath string
	)

	return &cli.Command{
		Name:  "decode",
		Usage: "Decode a .fvz file and dump its frames",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "in", Usage: "input .fvz file", Destination: &inPath, Required: true},
			&cli.StringFlag{Name: "out", Usage: "output format: json or csv", Value: "json", Destination: &format},
			&cli.StringFlag{Name: "out-file", Usage: "write to a file instead of stdout", Destination: &outPath},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			bundle, err := readBundle(inPath)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}

			w := os.Stdout
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return cli.Exit(err.Error(), 1)
				}
				defer f.Close()
				w = f
			}

			switch strings.ToLower(format) {
			case "json":
				enc := goJSON.NewEncoder(w)
				return enc.Encode(bundle.Frames)
			case "csv":
				cw := csv.NewWriter(w)
				defer cw.Flush()
				for _, frame := range bundle.Frames {
					row := make([]string, len(frame))
					for i, v := range frame {
						row[i] = strconv.FormatFloat(v, 'f', -1, 64)
					}
					if err := cw.Write(row); err != nil {
						return cli.Exit(err.Error(), 1)
					}
				}
				return nil
			default:
				return cli.Exit(fmt.Sprintf("unknown --out format %q, want json or csv", format), 1)
			}
		},
	}
}

// readBundle loads and decodes an .fvz file from disk, wiring the default
// zstd decompressor only when the header requires it.
func readBundle(path string) (*fvz.Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var decompress fvz.DecompressFunc
	header, err := fvz.DecodeHeader(data)
	if err != nil {
		return nil, err
	}
	if header.HasZstd() {
		decompress = fvz.ZstdDecompress
	}
	return fvz.NewDecoder().ReadFile(data, decompress)
}
