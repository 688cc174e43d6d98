package fvz

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"fftvis/internal/audio"
	"fftvis/internal/spectro"
)

// Config describes one encode session: FrameBuilder geometry plus the
// transform cascade to apply when serializing.
type Config struct {
	BarCount      int
	DBFloor       float64
	DBRange       float64
	FrequencyMin  float64
	FrequencyMax  float64
	Smoothness    int
	BinMapping    spectro.BinMapping
	FFTResolution int
	FPS           int

	CompressionMask uint16
	QuantizeLevel   QuantizeLevel
}

func (c Config) spectroConfig() spectro.Config {
	return spectro.Config{
		BarCount:      c.BarCount,
		DBFloor:       c.DBFloor,
		DBRange:       c.DBRange,
		FrequencyMin:  c.FrequencyMin,
		FrequencyMax:  c.FrequencyMax,
		Smoothness:    c.Smoothness,
		BinMapping:    c.BinMapping,
		FFTResolution: c.FFTResolution,
	}
}

// ProgressFunc receives a fraction in [0,1]. It may be invoked concurrently
// from multiple worker goroutines and must tolerate that.
type ProgressFunc func(fraction float64)

// Bundle is an immutable decoded (or freshly generated) set of frames plus
// the header describing them.
type Bundle struct {
	Header Header
	Frames [][]float64
}

// Encoder orchestrates FrameBuilder invocations across an audio signal and
// serializes the result through the transform cascade. An Encoder instance
// is built with a Config, loads audio once, generates frames once, then may
// be serialized zero or more times (spec.md §3 "Lifecycle").
type Encoder struct {
	cfg Config

	samples    []float64
	sampleRate int
	loaded     bool

	frames       [][]float64
	maxAmplitude float64
	generated    bool
}

// NewEncoder constructs an Encoder for cfg. cfg is not validated until the
// first frame is generated (spectro.NewFrameBuilder surfaces the error).
func NewEncoder(cfg Config) *Encoder {
	return &Encoder{cfg: cfg}
}

// LoadAudio installs raw mono float64 samples directly, for callers who
// already have decoded PCM.
func (e *Encoder) LoadAudio(samples []float64, sampleRate int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("%w: sampleRate must be positive", ErrEncoderPreconditionFailed)
	}
	e.samples = samples
	e.sampleRate = sampleRate
	e.loaded = true
	return nil
}

// LoadAudioFile decodes path (wav/mp3/flac/ogg) through internal/audio and
// installs the resulting mono float64 samples.
func (e *Encoder) LoadAudioFile(path string) error {
	samples, sampleRate, err := audio.LoadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIoFailed, err)
	}
	return e.LoadAudio(samples, sampleRate)
}

// GenerateFrames runs the FrameBuilder pipeline across the loaded signal,
// fanning work out across an errgroup bounded by GOMAXPROCS workers. Each
// worker owns a private spectro.FrameBuilder; frames writes are disjoint
// per-slot so no locking is needed. maxAmplitude is combined from
// per-worker local maxima with an atomic CAS loop, never a racy load/store.
func (e *Encoder) GenerateFrames(ctx context.Context, progress ProgressFunc) error {
	if !e.loaded {
		return fmt.Errorf("%w: no audio loaded", ErrEncoderPreconditionFailed)
	}

	hop := float64(e.sampleRate) / float64(e.cfg.FPS)
	totalFrames := 0
	if n := float64(len(e.samples)-e.cfg.FFTResolution)/hop + 1; n > 0 {
		totalFrames = int(math.Ceil(n))
	}
	frames := make([][]float64, totalFrames)

	spectroCfg := e.cfg.spectroConfig()
	var maxBits atomic.Uint64
	var done atomic.Int64

	var limiter *rate.Limiter
	if progress != nil {
		limiter = rate.NewLimiter(20, 1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i := 0; i < totalFrames; i++ {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fb, err := spectro.NewFrameBuilder(spectroCfg)
			if err != nil {
				return err
			}
			window := e.windowAt(i, hop)
			frame, localMax, err := fb.Build(window, e.sampleRate)
			if err != nil {
				return fmt.Errorf("frame %d: %w", i, err)
			}
			frames[i] = frame
			atomicMaxFloat64(&maxBits, localMax)

			n := done.Add(1)
			if progress != nil && limiter.Allow() {
				progress(float64(n) / float64(totalFrames))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	if progress != nil {
		progress(1.0)
	}

	e.frames = frames
	e.maxAmplitude = math.Float64frombits(maxBits.Load())
	e.generated = true
	return nil
}

// windowAt extracts the fftResolution-length window starting at sample
// index round(i*hop), zero-padding the tail if the signal runs out.
func (e *Encoder) windowAt(i int, hop float64) []float64 {
	start := int(math.Round(float64(i) * hop))
	window := make([]float64, e.cfg.FFTResolution)
	for j := 0; j < e.cfg.FFTResolution; j++ {
		idx := start + j
		if idx >= 0 && idx < len(e.samples) {
			window[j] = e.samples[idx]
		}
	}
	return window
}

func atomicMaxFloat64(bits *atomic.Uint64, v float64) {
	newBits := math.Float64bits(v)
	for {
		old := bits.Load()
		if math.Float64frombits(old) >= v {
			return
		}
		if bits.CompareAndSwap(old, newBits) {
			return
		}
	}
}

func (e *Encoder) buildHeader() Header {
	return Header{
		FFTResolution:   uint32(e.cfg.FFTResolution),
		NumBands:        uint16(e.cfg.BarCount),
		FrameRate:       uint16(e.cfg.FPS),
		TotalFrames:     uint32(len(e.frames)),
		MaxAmplitude:    float32(e.maxAmplitude),
		CompressionType: e.cfg.CompressionMask,
		QuantizeLevel:   e.cfg.QuantizeLevel,
	}
}

// serialize builds the full byte payload: header + transform-cascade
// output (Zstd-framed if requested). The whole buffer is assembled before
// return so no partial file can ever be observed by a caller.
func (e *Encoder) serialize() ([]byte, error) {
	if !e.generated {
		return nil, fmt.Errorf("%w: frames not generated", ErrEncoderPreconditionFailed)
	}
	header := e.buildHeader()
	flat := flattenFrames(e.frames)
	mask := e.cfg.CompressionMask
	body := encodeCascade(flat, e.cfg.BarCount, mask&MaskQuantize != 0, mask&MaskDeltaEncode != 0, e.cfg.QuantizeLevel)

	if mask&MaskZstd != 0 {
		compressed, err := ZstdCompress(body)
		if err != nil {
			return nil, fmt.Errorf("fvz: compression failed: %w", err)
		}
		out := make([]byte, HeaderSize+4+len(compressed))
		hb := EncodeHeader(header)
		copy(out, hb[:])
		putInt32LE(out[HeaderSize:HeaderSize+4], int32(len(compressed)))
		copy(out[HeaderSize+4:], compressed)
		return out, nil
	}

	out := make([]byte, HeaderSize+len(body))
	hb := EncodeHeader(header)
	copy(out, hb[:])
	copy(out[HeaderSize:], body)
	return out, nil
}

func putInt32LE(b []byte, v int32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

// SaveToMemory returns the fully serialized .fvz byte buffer.
func (e *Encoder) SaveToMemory() ([]byte, error) {
	return e.serialize()
}

// SaveToFile writes the serialized buffer to name, auto-appending the .fvz
// extension if the caller omitted it.
func (e *Encoder) SaveToFile(name string) error {
	data, err := e.serialize()
	if err != nil {
		return err
	}
	if strings.ToLower(filepath.Ext(name)) != ".fvz" {
		name += ".fvz"
	}
	if err := os.WriteFile(name, data, 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrIoFailed, err)
	}
	return nil
}

// GetFrames returns the in-memory decoded bundle without serializing.
func (e *Encoder) GetFrames() (*Bundle, error) {
	if !e.generated {
		return nil, fmt.Errorf("%w: frames not generated", ErrEncoderPreconditionFailed)
	}
	return &Bundle{Header: e.buildHeader(), Frames: e.frames}, nil
}
