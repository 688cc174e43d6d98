package fvz

import (
	"math"
	"testing"
)

func encoderWithFrames(frames [][]float64, fps int, mask uint16, quantLevel QuantizeLevel) *Encoder {
	maxAmp := 0.0
	for _, frame := range frames {
		for _, v := range frame {
			if v > maxAmp {
				maxAmp = v
			}
		}
	}
	barCount := 0
	if len(frames) > 0 {
		barCount = len(frames[0])
	}
	e := &Encoder{
		cfg: Config{
			BarCount:        barCount,
			FPS:             fps,
			CompressionMask: mask,
			QuantizeLevel:   quantLevel,
		},
		frames:       frames,
		maxAmplitude: maxAmp,
		generated:    true,
	}
	return e
}

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestRoundTripAllMaskAndQuantizeCombinations(t *testing.T) {
	frames := [][]float64{
		{0, 0.1, 0.5, 1},
		{1, 0.5, 0.1, 0},
		{0.25, 0.25, 0.75, 0.75},
	}

	for mask := uint16(0); mask < 8; mask++ {
		for _, quantLevel := range []QuantizeLevel{Bit16, Bit8} {
			mask, quantLevel := mask, quantLevel
			t.Run("", func(t *testing.T) {
				e := encoderWithFrames(frames, 30, mask, quantLevel)
				data, err := e.SaveToMemory()
				if err != nil {
					t.Fatal(err)
				}

				var decompress DecompressFunc
				if mask&MaskZstd != 0 {
					decompress = ZstdDecompress
				}
				bundle, err := NewDecoder().ReadFile(data, decompress)
				if err != nil {
					t.Fatal(err)
				}

				var tol float64
				switch {
				case mask&MaskQuantize == 0:
					tol = 1e-9
				case quantLevel == Bit8:
					tol = 1.0 / 255
				default:
					tol = 1.0 / 65535
				}

				if len(bundle.Frames) != len(frames) {
					t.Fatalf("got %d frames, want %d", len(bundle.Frames), len(frames))
				}
				for i := range frames {
					for j := range frames[i] {
						got := bundle.Frames[i][j]
						want := frames[i][j]
						if !approxEqual(got, want, tol) {
							t.Errorf("mask=%03b quant=%v frame[%d][%d] = %v, want %v (tol %v)", mask, quantLevel, i, j, got, want, tol)
						}
						if got < 0 || got > 1 {
							t.Errorf("frame[%d][%d] = %v out of [0,1]", i, j, got)
						}
					}
				}
			})
		}
	}
}

func TestHeaderInvariance(t *testing.T) {
	frames := [][]float64{{0.1, 0.9}, {0.2, 0.8}}
	e := encoderWithFrames(frames, 24, MaskQuantize, Bit16)
	e.cfg.FFTResolution = 2048
	data, err := e.SaveToMemory()
	if err != nil {
		t.Fatal(err)
	}
	bundle, err := NewDecoder().ReadFile(data, nil)
	if err != nil {
		t.Fatal(err)
	}
	h := bundle.Header
	if h.NumBands != 2 || h.FrameRate != 24 || h.TotalFrames != 2 || h.FFTResolution != 2048 {
		t.Errorf("header mismatch: %+v", h)
	}
	if h.CompressionType != MaskQuantize || h.QuantizeLevel != Bit16 {
		t.Errorf("header flags mismatch: %+v", h)
	}
	if math.Abs(float64(h.MaxAmplitude)-0.9) > 1e-4 {
		t.Errorf("MaxAmplitude = %v, want ~0.9", h.MaxAmplitude)
	}
}

// End-to-end scenarios from spec.md §8.

func TestScenarioTrivialUncompressed(t *testing.T) {
	frames := [][]float64{{0.0, 1.0}, {0.25, 0.75}}
	e := encoderWithFrames(frames, 2, 0, Bit16)
	data, err := e.SaveToMemory()
	if err != nil {
		t.Fatal(err)
	}
	payload := data[HeaderSize:]
	if len(payload) != 32 {
		t.Fatalf("payload len = %d, want 32", len(payload))
	}
	bundle, err := NewDecoder().ReadFile(data, nil)
	if err != nil {
		t.Fatal(err)
	}
	for i := range frames {
		for j := range frames[i] {
			if bundle.Frames[i][j] != frames[i][j] {
				t.Errorf("frame[%d][%d] = %v, want %v", i, j, bundle.Frames[i][j], frames[i][j])
			}
		}
	}
}

func TestScenario16BitQuantizeOnly(t *testing.T) {
	frames := [][]float64{{0.0, 1.0}}
	e := encoderWithFrames(frames, 1, MaskQuantize, Bit16)
	data, err := e.SaveToMemory()
	if err != nil {
		t.Fatal(err)
	}
	payload := data[HeaderSize:]
	want := []byte{0x00, 0x00, 0xFF, 0xFF}
	if len(payload) != 4 {
		t.Fatalf("payload len = %d, want 4", len(payload))
	}
	for i := range want {
		if payload[i] != want[i] {
			t.Errorf("payload[%d] = %#x, want %#x", i, payload[i], want[i])
		}
	}
	bundle, err := NewDecoder().ReadFile(data, nil)
	if err != nil {
		t.Fatal(err)
	}
	if bundle.Frames[0][0] != 0 || bundle.Frames[0][1] != 1 {
		t.Errorf("decoded = %v, want [0 1]", bundle.Frames[0])
	}
}

func TestScenario8BitQuantizeAndDelta(t *testing.T) {
	frames := [][]float64{{0.5, 0.5}, {0.5, 0.5}}
	e := encoderWithFrames(frames, 1, MaskQuantize|MaskDeltaEncode, Bit8)
	data, err := e.SaveToMemory()
	if err != nil {
		t.Fatal(err)
	}
	payload := data[HeaderSize:]
	if len(payload) != 4 {
		t.Fatalf("payload len = %d, want 4", len(payload))
	}
	for i, b := range payload {
		if b != 0 {
			t.Errorf("payload[%d] = %#x, want 0", i, b)
		}
	}
	bundle, err := NewDecoder().ReadFile(data, nil)
	if err != nil {
		t.Fatal(err)
	}
	for i := range frames {
		for j := range frames[i] {
			if !approxEqual(bundle.Frames[i][j], 0.5, 1.0/127) {
				t.Errorf("frame[%d][%d] = %v, want ~0.5", i, j, bundle.Frames[i][j])
			}
		}
	}
}

func TestScenarioZstdWrapped16BitDeltaRamp(t *testing.T) {
	const numFrames, numBands = 100, 250
	frames := make([][]float64, numFrames)
	for i := range frames {
		row := make([]float64, numBands)
		for j := range row {
			row[j] = float64(i) / float64(numFrames-1)
		}
		frames[i] = row
	}
	e := encoderWithFrames(frames, 30, MaskZstd|MaskQuantize|MaskDeltaEncode, Bit16)
	data, err := e.SaveToMemory()
	if err != nil {
		t.Fatal(err)
	}
	bundle, err := NewDecoder().ReadFile(data, ZstdDecompress)
	if err != nil {
		t.Fatal(err)
	}
	for i := range frames {
		for j := range frames[i] {
			if !approxEqual(bundle.Frames[i][j], frames[i][j], 1.0/32767) {
				t.Fatalf("frame[%d][%d] = %v, want %v", i, j, bundle.Frames[i][j], frames[i][j])
			}
		}
	}
}

func TestScenarioHeaderVersionRejection(t *testing.T) {
	buf := EncodeHeader(Header{})
	data := append(buf[:], make([]byte, 0)...)
	data[8], data[9], data[10], data[11] = 1, 0, 0, 0
	_, err := NewDecoder().ReadFile(data, nil)
	if err == nil {
		t.Fatal("expected UnsupportedFormat error")
	}
}

func TestScenarioAccessor(t *testing.T) {
	frames := make([][]float64, 120)
	for i := range frames {
		frames[i] = []float64{float64(i)}
	}
	bundle := &Bundle{
		Header: Header{FrameRate: 60, TotalFrames: 120, NumBands: 1},
		Frames: frames,
	}
	if got := bundle.FrameAtMs(0)[0]; got != 0 {
		t.Errorf("FrameAtMs(0) = %v, want 0", got)
	}
	if got := bundle.FrameAtMs(500)[0]; got != 30 {
		t.Errorf("FrameAtMs(500) = %v, want 30", got)
	}
	if got := bundle.FrameAtMs(10_000_000)[0]; got != 119 {
		t.Errorf("FrameAtMs(10000000) = %v, want 119", got)
	}
}

func TestReadFileMissingDecompressor(t *testing.T) {
	frames := [][]float64{{0.5}}
	e := encoderWithFrames(frames, 1, MaskZstd, Bit16)
	data, err := e.SaveToMemory()
	if err != nil {
		t.Fatal(err)
	}
	_, err = NewDecoder().ReadFile(data, nil)
	if err == nil {
		t.Fatal("expected ErrMissingDecompressor")
	}
}
