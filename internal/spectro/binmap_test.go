package spectro

import "testing"

func TestBinEdgesMonotonic(t *testing.T) {
	edges := binEdges(32, 20, 20000)
	if len(edges) != 33 {
		t.Fatalf("len(edges) = %d, want 33", len(edges))
	}
	for i := 1; i < len(edges); i++ {
		if edges[i] <= edges[i-1] {
			t.Fatalf("edges not strictly increasing at %d: %v <= %v", i, edges[i], edges[i-1])
		}
	}
	if edges[0] != 20 {
		t.Errorf("edges[0] = %v, want 20", edges[0])
	}
	if edges[32] != 20000 {
		t.Errorf("edges[32] = %v, want 20000", edges[32])
	}
}

func TestSearchEdge(t *testing.T) {
	edges := []float64{0, 10, 20, 30, 40}
	cases := []struct {
		f    float64
		want int
	}{
		{0, 0},
		{5, 0},
		{10, 1},
		{25, 2},
		{39, 3},
	}
	for _, c := range cases {
		if got := searchEdge(edges, c.f); got != c.want {
			t.Errorf("searchEdge(%v) = %d, want %d", c.f, got, c.want)
		}
	}
}

func TestMelEdgesMonotonic(t *testing.T) {
	edges := melEdges(16, 20, 20000)
	if len(edges) != 18 {
		t.Fatalf("len(edges) = %d, want 18", len(edges))
	}
	for i := 1; i < len(edges); i++ {
		if edges[i] <= edges[i-1] {
			t.Fatalf("mel edges not strictly increasing at %d: %v <= %v", i, edges[i], edges[i-1])
		}
	}
}

func TestHzMelRoundTrip(t *testing.T) {
	for _, hz := range []float64{20, 100, 440, 1000, 8000, 20000} {
		mel := hzToMel(hz)
		back := melToHz(mel)
		if diff := back - hz; diff > 1e-6 || diff < -1e-6 {
			t.Errorf("round trip for %v Hz = %v", hz, back)
		}
	}
}

func TestAccumulateLinearBandsWeightsNonNegative(t *testing.T) {
	mag := make([]float64, 513)
	for i := range mag {
		mag[i] = 1
	}
	edges := binEdges(8, 20, 22050)
	power := make([]float64, 8)
	weight := make([]float64, 8)
	accumulateLinearBands(mag, 44100, 1024, edges, power, weight)

	totalWeight := 0.0
	for _, w := range weight {
		totalWeight += w
	}
	if totalWeight <= 0 {
		t.Fatalf("expected positive total weight, got %v", totalWeight)
	}
	for i, w := range weight {
		if w < 0 {
			t.Errorf("weight[%d] negative: %v", i, w)
		}
	}
}

func TestAccumulateMelBandsSingleAssignment(t *testing.T) {
	mag := make([]float64, 513)
	for i := range mag {
		mag[i] = 1
	}
	edges := melEdges(8, 20, 22050)
	power := make([]float64, 8)
	weight := make([]float64, 8)
	accumulateMelBands(mag, 44100, 1024, edges, 20, 22050, power, weight)

	totalWeight := 0.0
	for i, w := range weight {
		if w < 0 {
			t.Errorf("weight[%d] negative: %v", i, w)
		}
		totalWeight += w
	}

	// Each in-range bin adds at most one count, to a single bar.
	inRange := 0
	for b := 1; b < len(mag); b++ {
		f := float64(b) * 44100 / 1024
		if f >= 20 && f < 22050 {
			inRange++
		}
	}
	if totalWeight > float64(inRange) {
		t.Errorf("total weight %v exceeds %d in-range bins", totalWeight, inRange)
	}
}
