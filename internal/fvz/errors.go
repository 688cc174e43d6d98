package fvz

import "errors"

// Sentinel errors the codec surfaces to callers. Wrap with fmt.Errorf's
// %w at any call site that adds context so errors.Is still matches these.
var (
	ErrUnsupportedFormat         = errors.New("fvz: unsupported format")
	ErrMissingDecompressor       = errors.New("fvz: zstd bit set but no decompressor provided")
	ErrDecompressionFailed       = errors.New("fvz: decompression failed")
	ErrTruncatedPayload          = errors.New("fvz: truncated payload")
	ErrIoFailed                  = errors.New("fvz: i/o failed")
	ErrEncoderPreconditionFailed = errors.New("fvz: encoder precondition failed")
)
