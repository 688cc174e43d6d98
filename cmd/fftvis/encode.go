package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"fftvis/internal/config"
	"fftvis/internal/fvz"
	"fftvis/internal/logging"
	"fftvis/internal/spectro"
)

func encodeCmd() *cli.Command {
	var (
		inPath     string
		outPath    string
		presetPath string
		bands      int
		fps        int
		fftSize    int
		dbFloor    float64
		dbRange    float64
		freqMin    float64
		freqMax    float64
		smoothness int
		binMapping string
		useZstd    bool
		quantize   int
		useDelta   bool
	)

	return &cli.Command{
		Name:  "encode",
		Usage: "Encode an audio file into a .fvz spectrogram",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "in", Usage: "input audio file (wav/mp3/flac/ogg)", Destination: &inPath, Required: true},
			&cli.StringFlag{Name: "out", Usage: "output .fvz file", Destination: &outPath, Required: true},
			&cli.StringFlag{Name: "preset", Usage: "YAML encoder preset", Destination: &presetPath},
			&cli.IntFlag{Name: "bands", Usage: "bars per frame", Value: 64, Destination: &bands},
			&cli.IntFlag{Name: "fps", Usage: "frames per second", Value: 30, Destination: &fps},
			&cli.IntFlag{Name: "fft", Usage: "FFT window size, power of two in [1024,32768]", Value: 2048, Destination: &fftSize},
			&cli.Float64Flag{Name: "db-floor", Usage: "dB floor (negative)", Value: -80, Destination: &dbFloor},
			&cli.Float64Flag{Name: "db-range", Usage: "dB range (positive)", Value: 90, Destination: &dbRange},
			&cli.Float64Flag{Name: "freq-min", Usage: "minimum frequency in Hz", Value: 20, Destination: &freqMin},
			&cli.Float64Flag{Name: "freq-max", Usage: "maximum frequency in Hz, -1 for Nyquist", Value: -1, Destination: &freqMax},
			&cli.IntFlag{Name: "smoothness", Usage: "bar smoothing radius", Value: 1, Destination: &smoothness},
			&cli.StringFlag{Name: "bin-mapping", Usage: "normalized|log10|mel", Value: "normalized", Destination: &binMapping},
			&cli.BoolFlag{Name: "zstd", Usage: "compress the payload with zstd", Destination: &useZstd},
			&cli.IntFlag{Name: "quantize", Usage: "quantize level: 0 (none), 8, or 16", Value: 16, Destination: &quantize},
			&cli.BoolFlag{Name: "delta", Usage: "delta-encode frames", Destination: &useDelta},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logging.FromContext(ctx)

			bm, err := parseBinMappingFlag(binMapping)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}

			spectroCfg := spectro.Config{
				BarCount:      bands,
				DBFloor:       dbFloor,
				DBRange:       dbRange,
				FrequencyMin:  freqMin,
				FrequencyMax:  freqMax,
				Smoothness:    smoothness,
				BinMapping:    bm,
				FFTResolution: fftSize,
			}

			if presetPath != "" {
				preset, err := config.Load(presetPath)
				if err != nil {
					return cli.Exit(err.Error(), 1)
				}
				if err := preset.ApplyDefaults(&spectroCfg, cmd.IsSet); err != nil {
					return cli.Exit(err.Error(), 1)
				}
				if preset.FPS != nil && !cmd.IsSet("fps") {
					fps = *preset.FPS
				}
				if preset.Zstd != nil && !cmd.IsSet("zstd") {
					useZstd = *preset.Zstd
				}
				if preset.Quantize != nil && !cmd.IsSet("quantize") {
					quantize = *preset.Quantize
				}
				if preset.Delta != nil && !cmd.IsSet("delta") {
					useDelta = *preset.Delta
				}
			}

			mask, quantLevel, err := buildCompressionMask(useZstd, quantize, useDelta)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}

			cfg := fvz.Config{
				BarCount:        spectroCfg.BarCount,
				DBFloor:         spectroCfg.DBFloor,
				DBRange:         spectroCfg.DBRange,
				FrequencyMin:    spectroCfg.FrequencyMin,
				FrequencyMax:    spectroCfg.FrequencyMax,
				Smoothness:      spectroCfg.Smoothness,
				BinMapping:      spectroCfg.BinMapping,
				FFTResolution:   spectroCfg.FFTResolution,
				FPS:             fps,
				CompressionMask: mask,
				QuantizeLevel:   quantLevel,
			}

			enc := fvz.NewEncoder(cfg)
			if err := enc.LoadAudioFile(inPath); err != nil {
				return cli.Exit(err.Error(), 1)
			}

			log.Info("generating frames", "in", inPath, "bands", bands, "fps", fps)
			progress := func(fraction float64) {
				log.Progress("encode", fraction)
			}
			if err := enc.GenerateFrames(ctx, progress); err != nil {
				return cli.Exit(err.Error(), 1)
			}

			if err := enc.SaveToFile(outPath); err != nil {
				return cli.Exit(err.Error(), 1)
			}
			log.Info("wrote fvz file", "out", outPath)
			return nil
		},
	}
}

func parseBinMappingFlag(name string) (spectro.BinMapping, error) {
	switch name {
	case "normalized":
		return spectro.Normalized, nil
	case "log10":
		return spectro.Log10, nil
	case "mel":
		return spectro.Mel, nil
	default:
		return 0, fmt.Errorf("unknown --bin-mapping %q", name)
	}
}

func buildCompressionMask(useZstd bool, quantize int, useDelta bool) (uint16, fvz.QuantizeLevel, error) {
	var mask uint16
	quantLevel := fvz.Bit16

	switch quantize {
	case 0:
		// quantize bit left clear
	case 8:
		mask |= fvz.MaskQuantize
		quantLevel = fvz.Bit8
	case 16:
		mask |= fvz.MaskQuantize
		quantLevel = fvz.Bit16
	default:
		return 0, 0, fmt.Errorf("--quantize must be 0, 8, or 16, got %d", quantize)
	}
	if useDelta {
		mask |= fvz.MaskDeltaEncode
	}
	if useZstd {
		mask |= fvz.MaskZstd
	}
	return mask, quantLevel, nil
}
