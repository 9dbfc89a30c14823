// Package goencodec implements inference for the EnCodec neural audio
// codec in pure Go.
//
// EnCodec compresses waveform audio into a small number of discrete
// integer codes using a convolutional encoder followed by multi-stage
// residual vector quantization (RVQ), and reconstructs audio from those
// codes with a mirrored convolutional decoder. This implementation is
// inference-only: it consumes a trained model artifact (a JSON
// configuration plus a safetensors weight file) and exposes encode and
// decode. It requires no cgo dependencies.
//
// # Pipeline
//
// Encoding runs raw audio through:
//
//	Preprocess -> Encoder (downsampling conv stack + LSTM) -> RVQ -> codes
//
// Decoding is the mirror:
//
//	codes -> RVQ lookup -> Decoder (LSTM + upsampling conv stack) -> audio
//
// Models configured with a chunk length split long inputs into overlapping
// windows, encode each window independently, and stitch decoded windows
// back together with triangular-window overlap-add. [Model.Encode] and
// [Model.Decode] handle this transparently.
//
// # Shapes
//
// Audio tensors are channels-last, (batch, time, channels), with 1 or 2
// channels. [Preprocess] normalizes 1-D or 2-D per-item inputs into this
// layout and produces the matching validity mask. Codes have shape
// (batch, stages, frames), where the stage count follows from the
// requested bandwidth.
//
// # Concurrency
//
// A Model holds only immutable weights after construction, so any number
// of Encode and Decode calls may run concurrently. Each call owns its
// intermediate buffers; nothing is shared but the read-only weights.
package goencodec
