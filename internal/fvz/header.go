package fvz

import (
	"encoding/binary"
	"fmt"
	"math"
)

// HeaderSize is the fixed on-disk size of the header record, in bytes.
const HeaderSize = 36

const formatVersion = 2

var magicBytes = [8]byte{'F', 'F', 'T', 'V', 'I', 'S', 0, 0}

// Compression mask bits.
const (
	MaskZstd        uint16 = 1 << 0
	MaskQuantize    uint16 = 1 << 1
	MaskDeltaEncode uint16 = 1 << 2
)

// QuantizeLevel selects the integer width used by the quantize transform.
type QuantizeLevel uint8

const (
	Bit16 QuantizeLevel = 0
	Bit8  QuantizeLevel = 1
)

// Header is the 36-byte metadata record that precedes every .fvz payload.
// Field offsets are normative (spec.md §3) and must not be inferred from Go
// struct layout — the source format mirrors a platform-padded record and
// this codec writes the literal byte offsets regardless.
type Header struct {
	FFTResolution    uint32
	NumBands         uint16
	FrameRate        uint16
	TotalFrames      uint32
	MaxAmplitude     float32
	CompressionType  uint16
	QuantizeLevel    QuantizeLevel
}

// HasZstd reports whether the Zstd compression bit is set.
func (h Header) HasZstd() bool { return h.CompressionType&MaskZstd != 0 }

// HasQuantize reports whether the Quantize bit is set.
func (h Header) HasQuantize() bool { return h.CompressionType&MaskQuantize != 0 }

// HasDelta reports whether the DeltaEncode bit is set.
func (h Header) HasDelta() bool { return h.CompressionType&MaskDeltaEncode != 0 }

// Uses8Bit reports whether quantization (if enabled) maps to 8-bit integers.
func (h Header) Uses8Bit() bool { return h.QuantizeLevel != 0 }

// EncodeHeader serializes h into the exact 36-byte little-endian layout.
func EncodeHeader(h Header) [HeaderSize]byte {
	var buf [HeaderSize]byte
	copy(buf[0:8], magicBytes[:])
	binary.LittleEndian.PutUint32(buf[8:12], uint32(int32(formatVersion)))
	binary.LittleEndian.PutUint32(buf[12:16], h.FFTResolution)
	binary.LittleEndian.PutUint16(buf[16:18], h.NumBands)
	binary.LittleEndian.PutUint16(buf[18:20], h.FrameRate)
	binary.LittleEndian.PutUint32(buf[20:24], h.TotalFrames)
	binary.LittleEndian.PutUint32(buf[24:28], math.Float32bits(h.MaxAmplitude))
	binary.LittleEndian.PutUint16(buf[28:30], h.CompressionType)
	// buf[30:32] padding, left zero.
	buf[32] = byte(h.QuantizeLevel)
	// buf[33:36] padding, left zero.
	return buf
}

// DecodeHeader validates and parses the first 36 bytes of data into a
// Header. Any validation failure yields ErrUnsupportedFormat.
func DecodeHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, fmt.Errorf("%w: need %d header bytes, got %d", ErrUnsupportedFormat, HeaderSize, len(data))
	}
	for i := 0; i < 6; i++ {
		if data[i] != magicBytes[i] {
			return Header{}, fmt.Errorf("%w: bad magic", ErrUnsupportedFormat)
		}
	}
	version := int32(binary.LittleEndian.Uint32(data[8:12]))
	if version != formatVersion {
		return Header{}, fmt.Errorf("%w: version %d unsupported, only version %d is", ErrUnsupportedFormat, version, formatVersion)
	}

	h := Header{
		FFTResolution:   binary.LittleEndian.Uint32(data[12:16]),
		NumBands:        binary.LittleEndian.Uint16(data[16:18]),
		FrameRate:       binary.LittleEndian.Uint16(data[18:20]),
		TotalFrames:     binary.LittleEndian.Uint32(data[20:24]),
		MaxAmplitude:    math.Float32frombits(binary.LittleEndian.Uint32(data[24:28])),
		CompressionType: binary.LittleEndian.Uint16(data[28:30]),
		QuantizeLevel:   QuantizeLevel(data[32]),
	}
	return h, nil
}

