package fvz

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// DecompressFunc is the decompressor capability the decoder accepts,
// matching spec.md §9's plugin design: the decoder never binds to a
// concrete compression library, only to this signature.
type DecompressFunc func(compressed []byte) ([]byte, error)

var (
	encoderOnce sync.Once
	sharedEncoder *zstd.Encoder
	encoderErr    error

	decoderOnce sync.Once
	sharedDecoder *zstd.Decoder
	decoderErr    error
)

func zstdEncoder() (*zstd.Encoder, error) {
	encoderOnce.Do(func() {
		sharedEncoder, encoderErr = zstd.NewWriter(nil)
	})
	return sharedEncoder, encoderErr
}

func zstdDecoder() (*zstd.Decoder, error) {
	decoderOnce.Do(func() {
		sharedDecoder, decoderErr = zstd.NewReader(nil)
	})
	return sharedDecoder, decoderErr
}

// ZstdCompress compresses data with the default zstd encoder. Used by the
// encoder pipeline when the Zstd bit is set.
func ZstdCompress(data []byte) ([]byte, error) {
	enc, err := zstdEncoder()
	if err != nil {
		return nil, fmt.Errorf("fvz: zstd encoder init: %w", err)
	}
	return enc.EncodeAll(data, make([]byte, 0, len(data))), nil
}

// ZstdDecompress is the default DecompressFunc implementation, backed by
// klauspost/compress/zstd. Callers may supply their own DecompressFunc
// instead (a mock, a different binding) per the decoder's plugin contract.
func ZstdDecompress(compressed []byte) ([]byte, error) {
	dec, err := zstdDecoder()
	if err != nil {
		return nil, fmt.Errorf("fvz: zstd decoder init: %w", err)
	}
	out, err := dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecompressionFailed, err)
	}
	return out, nil
}
