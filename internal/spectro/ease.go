package spectro

import "math"

// TriEase parameters: inputs below lowMid get the first half of the
// output range; above lowMid the mapping flattens out until highMid, then
// decompresses again toward 1. w is the half-width of the Hermite blend
// zone around each breakpoint.
const (
	easeLowMid  = 0.40
	easeHighMid = 0.95
	easeW       = 0.02
)

// triEase is the piecewise frequency-axis easing curve described in the
// format spec: three analytic segments joined by cubic Hermite blends so
// the curve and its derivative are continuous across lowMid and highMid.
func triEase(t float64) float64 {
	switch {
	case t <= 0:
		return 0
	case t >= 1:
		return 1
	case t < easeLowMid-easeW:
		return lowSeg(t)
	case t < easeLowMid+easeW:
		return hermiteBlend(t, easeLowMid-easeW, easeLowMid+easeW,
			lowSeg(easeLowMid-easeW), lowSegDeriv(easeLowMid-easeW),
			midSeg(easeLowMid+easeW), midSegDeriv())
	case t < easeHighMid-easeW:
		return midSeg(t)
	case t < easeHighMid+easeW:
		return hermiteBlend(t, easeHighMid-easeW, easeHighMid+easeW,
			midSeg(easeHighMid-easeW), midSegDeriv(),
			highSeg(easeHighMid+easeW), highSegDeriv(easeHighMid+easeW))
	default:
		return highSeg(t)
	}
}

func lowSeg(t float64) float64 {
	return 0.5 * math.Sqrt(t/easeLowMid)
}

func lowSegDeriv(t float64) float64 {
	return 0.25 / easeLowMid * math.Pow(t/easeLowMid, -0.5)
}

func midSeg(t float64) float64 {
	return 0.5 + 0.4*(t-easeLowMid)/(easeHighMid-easeLowMid)
}

func midSegDeriv() float64 {
	return 0.4 / (easeHighMid - easeLowMid)
}

func highSeg(t float64) float64 {
	return 0.9 + 0.1*math.Pow((t-easeHighMid)/(1-easeHighMid), 0.9)
}

func highSegDeriv(t float64) float64 {
	return 0.09 / (1 - easeHighMid) * math.Pow((t-easeHighMid)/(1-easeHighMid), -0.1)
}

// hermiteBlend interpolates between (t1,v1,d1) and (t2,v2,d2) with the
// standard h00/h10/h01/h11 cubic Hermite basis.
func hermiteBlend(t, t1, t2, v1, d1, v2, d2 float64) float64 {
	h := t2 - t1
	u := (t - t1) / h
	u2 := u * u
	u3 := u2 * u
	h00 := 2*u3 - 3*u2 + 1
	h10 := u3 - 2*u2 + u
	h01 := -2*u3 + 3*u2
	h11 := u3 - u2
	return h00*v1 + h10*h*d1 + h01*v2 + h11*h*d2
}
