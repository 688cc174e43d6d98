// Package spectro implements the FrameBuilder stage of the FFTVIS codec:
// turning one window of mono PCM samples into a fixed-size vector of
// normalized bar amplitudes.
package spectro

import (
	"fmt"
	"math"
)

// Config holds the parameters of a FrameBuilder, fixed for the lifetime of
// an encode session.
type Config struct {
	BarCount       int
	DBFloor        float64 // negative, e.g. -80
	DBRange        float64 // positive, e.g. 90
	FrequencyMin   float64
	FrequencyMax   float64 // -1 means Nyquist (sampleRate/2)
	Smoothness     int     // non-negative
	BinMapping     BinMapping
	FFTResolution  int
}

// Validate checks the invariants the pipeline depends on. The source
// leaves out-of-range configuration undefined; this port surfaces it as
// an error instead.
func (c Config) Validate() error {
	if c.BarCount <= 0 {
		return fmt.Errorf("spectro: barCount must be positive, got %d", c.BarCount)
	}
	if c.DBRange <= 0 {
		return fmt.Errorf("spectro: dbRange must be positive, got %g", c.DBRange)
	}
	if !isPowerOfTwo(c.FFTResolution) || c.FFTResolution < 1024 || c.FFTResolution > 32768 {
		return fmt.Errorf("spectro: fftResolution must be a power of two in [1024, 32768], got %d", c.FFTResolution)
	}
	if c.FrequencyMin <= 0 {
		return fmt.Errorf("spectro: frequencyMin must be positive, got %g", c.FrequencyMin)
	}
	if c.Smoothness < 0 {
		return fmt.Errorf("spectro: smoothness must be non-negative, got %d", c.Smoothness)
	}
	return nil
}

// FrameBuilder converts windows of PCM samples into bar-amplitude frames.
// It is not safe for concurrent use from multiple goroutines — callers
// that parallelize across frames must construct one FrameBuilder per
// worker (each holds its own scratch buffers).
type FrameBuilder struct {
	cfg Config

	real []float64
	imag []float64
	mag  []float64

	power  []float64
	weight []float64
	gated  []float64

	cachedSampleRate int
	cachedFMax       float64
	linearEdges      []float64
	melEdges_        []float64
}

// NewFrameBuilder validates cfg and returns a ready-to-use builder.
func NewFrameBuilder(cfg Config) (*FrameBuilder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &FrameBuilder{
		cfg:    cfg,
		real:   make([]float64, cfg.FFTResolution),
		imag:   make([]float64, cfg.FFTResolution),
		mag:    make([]float64, cfg.FFTResolution/2+1),
		power:  make([]float64, cfg.BarCount),
		weight: make([]float64, cfg.BarCount),
		gated:  make([]float64, cfg.BarCount),
	}, nil
}

// Build runs the full pipeline — sanitize, window, FFT, bin mapping, dB
// normalization, soft-knee gate, smoothing — on one window of samples and
// returns the resulting bar amplitudes in [0,1] along with the maximum
// smoothed value observed in this frame (for the caller's running max).
//
// window must have length cfg.FFTResolution; the caller is responsible for
// zero-padding a trailing partial window.
func (f *FrameBuilder) Build(window []float64, sampleRate int) ([]float64, float64, error) {
	if len(window) != f.cfg.FFTResolution {
		return nil, 0, fmt.Errorf("spectro: window length %d != fftResolution %d", len(window), f.cfg.FFTResolution)
	}
	if sampleRate <= 0 {
		return nil, 0, fmt.Errorf("spectro: sampleRate must be positive, got %d", sampleRate)
	}

	f.sanitizeAndWindow(window)
	f.runFFT()
	f.resetAccumulators()
	f.mapBins(sampleRate)
	f.convertToDB()
	f.applySoftKnee()
	return f.smooth()
}

func (f *FrameBuilder) sanitizeAndWindow(window []float64) {
	sum := 0.0
	for i, v := range window {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		f.real[i] = v
		sum += v
	}
	mean := sum / float64(len(window))
	if !math.IsNaN(mean) && !math.IsInf(mean, 0) {
		for i := range f.real {
			f.real[i] -= mean
		}
	}
	applyHann(f.real)
	for i := range f.imag {
		f.imag[i] = 0
	}
}

func (f *FrameBuilder) runFFT() {
	fft(f.real, f.imag)
	for i := range f.mag {
		m := math.Hypot(f.real[i], f.imag[i])
		if math.IsNaN(m) || math.IsInf(m, 0) {
			m = 0
		}
		f.mag[i] = m
	}
}

func (f *FrameBuilder) resetAccumulators() {
	for i := range f.power {
		f.power[i] = 0
		f.weight[i] = 0
	}
}

func (f *FrameBuilder) nyquistOrMax(sampleRate int) float64 {
	if f.cfg.FrequencyMax == -1 {
		return float64(sampleRate) / 2
	}
	return f.cfg.FrequencyMax
}

func (f *FrameBuilder) mapBins(sampleRate int) {
	fMax := f.nyquistOrMax(sampleRate)
	if sampleRate != f.cachedSampleRate || fMax != f.cachedFMax {
		f.cachedSampleRate = sampleRate
		f.cachedFMax = fMax
		f.linearEdges = binEdges(f.cfg.BarCount, f.cfg.FrequencyMin, fMax)
		f.melEdges_ = melEdges(f.cfg.BarCount, f.cfg.FrequencyMin, fMax)
	}

	switch f.cfg.BinMapping {
	case Mel:
		accumulateMelBands(f.mag, sampleRate, f.cfg.FFTResolution, f.melEdges_, f.cfg.FrequencyMin, fMax, f.power, f.weight)
	default: // Normalized, Log10 — identical math, see BinMapping doc.
		accumulateLinearBands(f.mag, sampleRate, f.cfg.FFTResolution, f.linearEdges, f.power, f.weight)
	}
}

func (f *FrameBuilder) convertToDB() {
	for r := 0; r < f.cfg.BarCount; r++ {
		if f.weight[r] == 0 {
			f.gated[r] = 0
			continue
		}
		rms := math.Sqrt(f.power[r])
		db := 20 * math.Log10(rms+1e-20)
		dbNorm := clamp01((db - f.cfg.DBFloor) / f.cfg.DBRange)
		f.gated[r] = dbNorm
	}
}

func (f *FrameBuilder) applySoftKnee() {
	if f.cfg.BinMapping == Mel {
		return
	}
	for r, v := range f.gated {
		x := 1.0 / (1.0 + math.Exp(-15*(v-0.4)))
		f.gated[r] = clamp01(x)
	}
}

func (f *FrameBuilder) smooth() ([]float64, float64, error) {
	out := make([]float64, f.cfg.BarCount)
	s := f.cfg.Smoothness
	maxVal := 0.0
	for r := range out {
		sum := 0.0
		count := 0
		for d := -s; d <= s; d++ {
			idx := r + d
			if idx < 0 || idx >= len(f.gated) {
				continue
			}
			sum += f.gated[idx]
			count++
		}
		v := 0.0
		if count > 0 {
			v = sum / float64(count)
		}
		out[r] = v
		if v > maxVal {
			maxVal = v
		}
	}
	return out, maxVal, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
