package fvz

import "fmt"

// Decoder reads .fvz byte streams into an immutable Bundle. Decoding is
// single-threaded by contract (spec.md §5): it performs one sequential
// pass per transform stage.
type Decoder struct{}

// NewDecoder returns a ready-to-use Decoder. It carries no state; the
// type exists to mirror the Encoder/Decoder symmetry of the conceptual
// API in spec.md §6.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// ReadFile parses data into a Bundle. decompress is required when the
// header's Zstd bit is set and must be nil otherwise; it is invoked at
// most once, synchronously, to recover the uncompressed cascade payload.
func (d *Decoder) ReadFile(data []byte, decompress DecompressFunc) (*Bundle, error) {
	header, err := DecodeHeader(data)
	if err != nil {
		return nil, err
	}

	mask := header.CompressionType
	quantize := mask&MaskQuantize != 0
	delta := mask&MaskDeltaEncode != 0
	zstdSet := mask&MaskZstd != 0

	rest := data[HeaderSize:]

	var body []byte
	if zstdSet {
		if decompress == nil {
			return nil, ErrMissingDecompressor
		}
		if len(rest) < 4 {
			return nil, fmt.Errorf("%w: missing compressed-length prefix", ErrTruncatedPayload)
		}
		compressedLen := int(int32(uint32(rest[0]) | uint32(rest[1])<<8 | uint32(rest[2])<<16 | uint32(rest[3])<<24))
		if compressedLen < 0 || len(rest)-4 < compressedLen {
			return nil, fmt.Errorf("%w: declared compressed length %d exceeds available bytes", ErrTruncatedPayload, compressedLen)
		}
		compressed := rest[4 : 4+compressedLen]
		decompressed, err := decompress(compressed)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecompressionFailed, err)
		}
		body = decompressed
	} else {
		need := expectedPayloadLen(int(header.TotalFrames), int(header.NumBands), quantize, delta, header.QuantizeLevel)
		if len(rest) < need {
			return nil, fmt.Errorf("%w: need %d bytes, got %d", ErrTruncatedPayload, need, len(rest))
		}
		body = rest[:need]
	}

	flat, err := decodeCascade(body, int(header.TotalFrames), int(header.NumBands), quantize, delta, header.QuantizeLevel)
	if err != nil {
		return nil, err
	}
	frames := unflattenFrames(flat, int(header.TotalFrames), int(header.NumBands))

	return &Bundle{Header: header, Frames: frames}, nil
}
