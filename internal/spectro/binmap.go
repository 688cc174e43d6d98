package spectro

import "math"

// BinMapping selects how FFT bins are folded into the fixed number of
// output bars.
type BinMapping int

const (
	// Normalized maps frequency to bar index through TriEase-shaped edges.
	Normalized BinMapping = iota
	// Log10 uses the exact same edge construction as Normalized. This
	// mirrors the source format: the only difference between the two is
	// the identifier, not the math — preserved here rather than silently
	// diverging (see spec design notes, §9(c)).
	Log10
	// Mel folds bins through a triangular mel-spaced filterbank and skips
	// the soft-knee gate that Normalized/Log10 apply.
	Mel
)

func (m BinMapping) String() string {
	switch m {
	case Normalized:
		return "normalized"
	case Log10:
		return "log10"
	case Mel:
		return "mel"
	default:
		return "unknown"
	}
}

// binEdges computes the barCount+1 frequency edges used by Normalized and
// Log10 mapping: logarithmically spaced between fMin and fMax, reshaped by
// TriEase so the first 40% of the bars span about the low half of
// log-frequency space. The outer edges are exactly fMin and fMax.
// Edges are strictly increasing over r (§8 "Bin mapping monotonicity").
func binEdges(barCount int, fMin, fMax float64) []float64 {
	edges := make([]float64, barCount+1)
	logMin := math.Log10(fMin)
	logMax := math.Log10(fMax)
	for r := 0; r <= barCount; r++ {
		t := float64(r) / float64(barCount)
		tPrime := triEase(t)
		edges[r] = math.Pow(10, logMin+tPrime*(logMax-logMin))
	}
	edges[0] = fMin
	edges[barCount] = fMax
	return edges
}

// accumulateLinearBands distributes FFT bin energy into power/weight
// accumulators using the Normalized/Log10 edge scheme: each bin splits
// between the bar it falls into and its neighbor, proportionally to where
// it lands relative to the bar edge.
func accumulateLinearBands(mag []float64, sampleRate, fftResolution int, edges []float64, power, weight []float64) {
	barCount := len(power)
	lastBin := len(mag)
	for b := 1; b < lastBin; b++ {
		f := float64(b) * float64(sampleRate) / float64(fftResolution)
		if f < edges[0] || f >= edges[barCount] {
			continue
		}
		k := searchEdge(edges, f)
		alpha := (f - edges[k]) / (edges[k+1] - edges[k])
		energy := mag[b] * mag[b]

		power[k] += energy * (1 - alpha)
		weight[k] += 1 - alpha
		if k+1 < barCount {
			power[k+1] += energy * alpha
			weight[k+1] += alpha
		}
	}
}

// searchEdge returns the largest index k such that edges[k] <= f <
// edges[k+1], via binary search over the strictly increasing edges slice.
func searchEdge(edges []float64, f float64) int {
	lo, hi := 0, len(edges)-2
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if edges[mid] <= f {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

// melEdges builds barCount+2 edges evenly spaced in mel space between
// fMin and fMax, mapped back to Hz.
func melEdges(barCount int, fMin, fMax float64) []float64 {
	melMin := hzToMel(fMin)
	melMax := hzToMel(fMax)
	edges := make([]float64, barCount+2)
	for i := range edges {
		frac := float64(i) / float64(barCount+1)
		edges[i] = melToHz(melMin + frac*(melMax-melMin))
	}
	return edges
}

func hzToMel(hz float64) float64 {
	return 2595 * math.Log10(1+hz/700)
}

func melToHz(mel float64) float64 {
	return 700 * (math.Pow(10, mel/2595) - 1)
}

// accumulateMelBands distributes FFT bin energy through the triangular mel
// filterbank. Each bin is assigned to exactly one bar: the one whose
// falling (center-to-next-edge) slope it falls under, matching the source
// format's single-assignment behavior rather than the classic
// overlapping-filter double assignment.
func accumulateMelBands(mag []float64, sampleRate, fftResolution int, edges []float64, fMin, fMax float64, power, weight []float64) {
	barCount := len(power)
	lastBin := len(mag)
	for b := 1; b < lastBin; b++ {
		f := float64(b) * float64(sampleRate) / float64(fftResolution)
		if f < fMin || f >= fMax {
			continue
		}
		k := searchEdge(edges, f)
		if k < 1 || k > barCount {
			continue
		}
		w := (edges[k+1] - f) / (edges[k+1] - edges[k])
		power[k-1] += mag[b] * mag[b] * w
		weight[k-1]++
	}
}
