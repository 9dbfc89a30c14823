// errors.go defines public error types for the goencodec package.

package goencodec

import "errors"

// Public error types for model construction, encoding, and decoding.
// None of these conditions are transient; callers must not retry.
var (
	// ErrInvalidChannels indicates an unsupported channel count.
	// Valid channel counts are 1 (mono) or 2 (stereo).
	ErrInvalidChannels = errors.New("goencodec: invalid channels (must be 1 or 2)")

	// ErrInvalidShape indicates an audio, mask, or codes tensor with an
	// unsupported rank or inconsistent dimensions.
	ErrInvalidShape = errors.New("goencodec: invalid tensor shape")

	// ErrUnsupportedBandwidth indicates a bandwidth that is not listed in
	// the model configuration's target_bandwidths.
	ErrUnsupportedBandwidth = errors.New("goencodec: unsupported bandwidth")

	// ErrChunkMisaligned indicates an input whose length does not tile the
	// configured chunk geometry. Inputs must come from Preprocess, which
	// pads them to tile exactly.
	ErrChunkMisaligned = errors.New("goencodec: input length not padded for chunked encoding")

	// ErrFrameTooLong indicates an encode frame longer than the configured
	// chunk duration.
	ErrFrameTooLong = errors.New("goencodec: frame exceeds configured chunk length")

	// ErrCodesMismatch indicates a codes tensor whose stage count does not
	// match the quantizer being decoded.
	ErrCodesMismatch = errors.New("goencodec: codes do not match quantizer stages")

	// ErrNoFrames indicates a decode call with no encoded frames.
	ErrNoFrames = errors.New("goencodec: no frames to decode")

	// ErrSingleFrame indicates chunk-less decode input carrying more than
	// one frame.
	ErrSingleFrame = errors.New("goencodec: expected a single frame without chunking")

	// ErrInvalidConfig indicates a configuration that cannot describe a
	// well-formed codec.
	ErrInvalidConfig = errors.New("goencodec: invalid configuration")

	// ErrWeightMissing indicates a model parameter absent from the weight
	// artifact.
	ErrWeightMissing = errors.New("goencodec: missing weight")

	// ErrWeightUnknown indicates a weight artifact entry that matches no
	// model parameter.
	ErrWeightUnknown = errors.New("goencodec: unknown weight")

	// ErrWeightShape indicates a weight artifact entry whose shape does not
	// match the parameter it names.
	ErrWeightShape = errors.New("goencodec: weight shape mismatch")
)
