package fvz

import (
	"encoding/binary"
	"fmt"
	"math"
)

// flattenFrames lays frames out row-major: frame 0's bars, then frame 1's,
// and so on.
func flattenFrames(frames [][]float64) []float64 {
	if len(frames) == 0 {
		return nil
	}
	numBands := len(frames[0])
	flat := make([]float64, 0, len(frames)*numBands)
	for _, frame := range frames {
		flat = append(flat, frame...)
	}
	return flat
}

// unflattenFrames splits a row-major slice back into totalFrames rows of
// numBands values each.
func unflattenFrames(flat []float64, totalFrames, numBands int) [][]float64 {
	frames := make([][]float64, totalFrames)
	for i := 0; i < totalFrames; i++ {
		row := make([]float64, numBands)
		copy(row, flat[i*numBands:(i+1)*numBands])
		frames[i] = row
	}
	return frames
}

func clampRound(v, lo, hi float64) float64 {
	r := math.Round(v)
	if r < lo {
		return lo
	}
	if r > hi {
		return hi
	}
	return r
}

// encodeCascade applies quantize then delta to flat (row-major, numBands
// columns) per spec.md §4.3 steps 3-4, returning the uncompressed byte
// payload. The Zstd stage, if any, is applied by the caller afterward.
func encodeCascade(flat []float64, numBands int, quantize, delta bool, quantLevel QuantizeLevel) []byte {
	totalFrames := 0
	if numBands > 0 {
		totalFrames = len(flat) / numBands
	}

	switch {
	case !quantize && !delta:
		return encodeRawFloat(flat)
	case quantize && !delta:
		if quantLevel == Bit8 {
			return encodeUnsigned8(flat)
		}
		return encodeUnsigned16(flat)
	case delta && quantize && quantLevel == Bit8:
		return encodeSignedDelta8(flat, totalFrames, numBands)
	case delta && quantize:
		return encodeSignedDelta16(flat, totalFrames, numBands)
	default: // delta && !quantize
		return encodeFloatDelta(flat, totalFrames, numBands)
	}
}

// decodeCascade inverts encodeCascade, reading exactly the byte layout the
// given flag combination implies.
func decodeCascade(payload []byte, totalFrames, numBands int, quantize, delta bool, quantLevel QuantizeLevel) ([]float64, error) {
	switch {
	case !quantize && !delta:
		return decodeRawFloat(payload, totalFrames*numBands)
	case quantize && !delta:
		if quantLevel == Bit8 {
			return decodeUnsigned8(payload, totalFrames*numBands)
		}
		return decodeUnsigned16(payload, totalFrames*numBands)
	case delta && quantize && quantLevel == Bit8:
		return decodeSignedDelta8(payload, totalFrames, numBands)
	case delta && quantize:
		return decodeSignedDelta16(payload, totalFrames, numBands)
	default: // delta && !quantize
		return decodeFloatDelta(payload, totalFrames, numBands)
	}
}

// expectedPayloadLen computes the byte length decodeCascade requires for
// the given flag combination, so the caller can validate available bytes
// before slicing (spec.md §4.4 step 3, "else" branch).
func expectedPayloadLen(totalFrames, numBands int, quantize, delta bool, quantLevel QuantizeLevel) int {
	count := totalFrames * numBands
	switch {
	case !quantize && !delta:
		return count * 8
	case quantize && !delta:
		if quantLevel == Bit8 {
			return count
		}
		return count * 2
	case delta && quantize && quantLevel == Bit8:
		return count
	case delta && quantize:
		return count * 2
	default:
		return count * 8
	}
}

func encodeRawFloat(flat []float64) []byte {
	buf := make([]byte, len(flat)*8)
	for i, v := range flat {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return buf
}

func decodeRawFloat(payload []byte, count int) ([]float64, error) {
	if len(payload) < count*8 {
		return nil, fmt.Errorf("%w: need %d bytes, got %d", ErrTruncatedPayload, count*8, len(payload))
	}
	out := make([]float64, count)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(payload[i*8:]))
	}
	return out, nil
}

func encodeUnsigned16(flat []float64) []byte {
	buf := make([]byte, len(flat)*2)
	for i, v := range flat {
		u := uint16(clampRound(v*65535, 0, 65535))
		binary.LittleEndian.PutUint16(buf[i*2:], u)
	}
	return buf
}

func decodeUnsigned16(payload []byte, count int) ([]float64, error) {
	if len(payload) < count*2 {
		return nil, fmt.Errorf("%w: need %d bytes, got %d", ErrTruncatedPayload, count*2, len(payload))
	}
	out := make([]float64, count)
	for i := range out {
		u := binary.LittleEndian.Uint16(payload[i*2:])
		out[i] = float64(u) / 65535
	}
	return out, nil
}

func encodeUnsigned8(flat []float64) []byte {
	buf := make([]byte, len(flat))
	for i, v := range flat {
		buf[i] = byte(clampRound(v*255, 0, 255))
	}
	return buf
}

func decodeUnsigned8(payload []byte, count int) ([]float64, error) {
	if len(payload) < count {
		return nil, fmt.Errorf("%w: need %d bytes, got %d", ErrTruncatedPayload, count, len(payload))
	}
	out := make([]float64, count)
	for i := 0; i < count; i++ {
		out[i] = float64(payload[i]) / 255
	}
	return out, nil
}

func signedQuantize(v float64, scale float64) float64 {
	return clampRound((v*2-1)*scale, -scale, scale)
}

func encodeSignedDelta16(flat []float64, totalFrames, numBands int) []byte {
	buf := make([]byte, totalFrames*numBands*2)
	prev := make([]int16, numBands)
	idx := 0
	for f := 0; f < totalFrames; f++ {
		for j := 0; j < numBands; j++ {
			q := int16(signedQuantize(flat[idx], 32767))
			d := q - prev[j]
			binary.LittleEndian.PutUint16(buf[idx*2:], uint16(d))
			prev[j] = q
			idx++
		}
	}
	return buf
}

func decodeSignedDelta16(payload []byte, totalFrames, numBands int) ([]float64, error) {
	count := totalFrames * numBands
	if len(payload) < count*2 {
		return nil, fmt.Errorf("%w: need %d bytes, got %d", ErrTruncatedPayload, count*2, len(payload))
	}
	out := make([]float64, count)
	current := make([]int16, numBands)
	idx := 0
	for f := 0; f < totalFrames; f++ {
		for j := 0; j < numBands; j++ {
			d := int16(binary.LittleEndian.Uint16(payload[idx*2:]))
			current[j] += d
			out[idx] = (float64(current[j])/32767 + 1) / 2
			idx++
		}
	}
	return out, nil
}

func encodeSignedDelta8(flat []float64, totalFrames, numBands int) []byte {
	buf := make([]byte, totalFrames*numBands)
	prev := make([]int8, numBands)
	idx := 0
	for f := 0; f < totalFrames; f++ {
		for j := 0; j < numBands; j++ {
			q := int8(signedQuantize(flat[idx], 127))
			d := q - prev[j]
			buf[idx] = byte(d)
			prev[j] = q
			idx++
		}
	}
	return buf
}

func decodeSignedDelta8(payload []byte, totalFrames, numBands int) ([]float64, error) {
	count := totalFrames * numBands
	if len(payload) < count {
		return nil, fmt.Errorf("%w: need %d bytes, got %d", ErrTruncatedPayload, count, len(payload))
	}
	out := make([]float64, count)
	current := make([]int8, numBands)
	idx := 0
	for f := 0; f < totalFrames; f++ {
		for j := 0; j < numBands; j++ {
			d := int8(payload[idx])
			current[j] += d
			out[idx] = (float64(current[j])/127 + 1) / 2
			idx++
		}
	}
	return out, nil
}

func encodeFloatDelta(flat []float64, totalFrames, numBands int) []byte {
	buf := make([]byte, totalFrames*numBands*8)
	prev := make([]float64, numBands)
	idx := 0
	for f := 0; f < totalFrames; f++ {
		for j := 0; j < numBands; j++ {
			d := flat[idx] - prev[j]
			binary.LittleEndian.PutUint64(buf[idx*8:], math.Float64bits(d))
			prev[j] = flat[idx]
			idx++
		}
	}
	return buf
}

func decodeFloatDelta(payload []byte, totalFrames, numBands int) ([]float64, error) {
	count := totalFrames * numBands
	if len(payload) < count*8 {
		return nil, fmt.Errorf("%w: need %d bytes, got %d", ErrTruncatedPayload, count*8, len(payload))
	}
	out := make([]float64, count)
	current := make([]float64, numBands)
	idx := 0
	for f := 0; f < totalFrames; f++ {
		for j := 0; j < numBands; j++ {
			d := math.Float64frombits(binary.LittleEndian.Uint64(payload[idx*8:]))
			current[j] += d
			out[idx] = current[j]
			idx++
		}
	}
	return out, nil
}
