// model.go implements the public Model API: encode, decode, the chunked
// codec driver, and triangular-window overlap-add reconstruction.

package goencodec

import (
	"fmt"
	"math"

	"github.com/thesyncim/goencodec/internal/rvq"
	"github.com/thesyncim/goencodec/internal/seanet"
	"github.com/thesyncim/goencodec/tensor"
)

// Model is an instantiated codec: an encoder, a decoder, and a residual
// vector quantizer bound to one set of trained weights.
//
// A Model is stateless across calls; its weights are read-only, so
// concurrent Encode and Decode calls are safe.
type Model struct {
	cfg       *Config
	encoder   *seanet.Encoder
	decoder   *seanet.Decoder
	quantizer *rvq.Quantizer
}

// Encoded is the result of one Encode call: per-chunk code tensors of
// shape (batch, stages, frames) and, for normalizing models, one scale
// tensor of shape (batch, 1, 1) per chunk. Non-normalizing models leave
// Scales nil.
type Encoded struct {
	Codes     []*tensor.Int
	Scales    []*tensor.Tensor
	Bandwidth float64
}

// Config returns the model configuration. Callers must not modify it.
func (m *Model) Config() *Config { return m.cfg }

// Channels returns the audio channel count the model operates on.
func (m *Model) Channels() int { return m.cfg.AudioChannels }

// SamplingRate returns the audio sampling rate in Hz.
func (m *Model) SamplingRate() int { return m.cfg.SamplingRate }

// FrameRate returns the embedding frame rate in Hz.
func (m *Model) FrameRate() int { return m.cfg.FrameRate() }

// Preprocess stacks raw audio items using the model's chunk geometry. See
// the package-level Preprocess.
func (m *Model) Preprocess(items ...*tensor.Tensor) (*tensor.Tensor, *tensor.Mask, error) {
	return Preprocess(items, m.cfg.ChunkLength(), m.cfg.ChunkStride())
}

// Encode compresses audio of shape (batch, time, channels) into discrete
// codes at the given bandwidth (kbps). A zero bandwidth selects the first
// configured target bandwidth; any other value must appear in the
// configuration's target_bandwidths list.
//
// paddingMask marks real samples; nil means all samples are real. For
// chunked models the input must be padded (by Preprocess) so that its
// length tiles the chunk geometry exactly.
func (m *Model) Encode(audio *tensor.Tensor, paddingMask *tensor.Mask, bandwidth float64) (*Encoded, error) {
	if audio.Dims() != 3 {
		return nil, fmt.Errorf("%w: audio has rank %d, want 3", ErrInvalidShape, audio.Dims())
	}

	if bandwidth == 0 {
		bandwidth = m.cfg.TargetBandwidths[0]
	}
	if !containsBandwidth(m.cfg.TargetBandwidths, bandwidth) {
		return nil, fmt.Errorf("%w: %v kbps, supported: %v", ErrUnsupportedBandwidth, bandwidth, m.cfg.TargetBandwidths)
	}

	batch, inputLen, channels := audio.Dim(0), audio.Dim(1), audio.Dim(2)
	if channels < 1 || channels > 2 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidChannels, channels)
	}
	if channels != m.cfg.AudioChannels {
		return nil, fmt.Errorf("%w: got %d, model expects %d", ErrInvalidChannels, channels, m.cfg.AudioChannels)
	}

	chunkLength := m.cfg.ChunkLength()
	stride := m.cfg.ChunkStride()
	if chunkLength == 0 {
		chunkLength = inputLen
		stride = inputLen
	}

	if paddingMask == nil {
		paddingMask = tensor.FullMask(batch, inputLen)
	}
	if paddingMask.Batch != batch || paddingMask.Length != inputLen {
		return nil, fmt.Errorf("%w: mask is (%d, %d), audio is (%d, %d)",
			ErrInvalidShape, paddingMask.Batch, paddingMask.Length, batch, inputLen)
	}

	step := chunkLength - stride
	if inputLen%stride != step {
		return nil, fmt.Errorf("%w: length %d, stride %d, step %d", ErrChunkMisaligned, inputLen, stride, step)
	}

	enc := &Encoded{Bandwidth: bandwidth}
	for offset := 0; offset < inputLen-step; offset += stride {
		frame := audio.SliceTime(offset, offset+chunkLength)
		mask := paddingMask.SliceTime(offset, offset+chunkLength)

		codes, scale, err := m.encodeFrame(frame, mask, bandwidth)
		if err != nil {
			return nil, err
		}
		enc.Codes = append(enc.Codes, codes)
		if m.cfg.Normalize {
			enc.Scales = append(enc.Scales, scale)
		}
	}
	return enc, nil
}

// encodeFrame encodes a single window: optional amplitude normalization,
// the encoder stack, then quantization.
func (m *Model) encodeFrame(frame *tensor.Tensor, mask *tensor.Mask, bandwidth float64) (*tensor.Int, *tensor.Tensor, error) {
	length := frame.Dim(1)
	if m.cfg.ChunkLengthS != nil {
		duration := float64(length) / float64(m.cfg.SamplingRate)
		if duration > *m.cfg.ChunkLengthS+1e-5 {
			return nil, nil, fmt.Errorf("%w: %.3fs > %.3fs", ErrFrameTooLong, duration, *m.cfg.ChunkLengthS)
		}
	}

	var scale *tensor.Tensor
	if m.cfg.Normalize {
		frame = maskAudio(frame, mask)
		scale = rmsScale(frame)
		frame = divideByScale(frame, scale)
	}

	embeddings := m.encoder.Apply(frame)
	codes := m.quantizer.Encode(embeddings, bandwidth)
	return codes, scale, nil
}

// Decode reconstructs audio from the codes produced by Encode. For chunked
// models the per-chunk waveforms are stitched with triangular-window
// overlap-add. When paddingMask is shorter than the reconstruction, the
// output is truncated to the mask length, removing preprocessor padding.
func (m *Model) Decode(enc *Encoded, paddingMask *tensor.Mask) (*tensor.Tensor, error) {
	if enc == nil || len(enc.Codes) == 0 {
		return nil, ErrNoFrames
	}
	if enc.Scales != nil && len(enc.Scales) != len(enc.Codes) {
		return nil, fmt.Errorf("%w: %d scales for %d chunks", ErrInvalidShape, len(enc.Scales), len(enc.Codes))
	}

	var audio *tensor.Tensor
	if m.cfg.ChunkLength() == 0 {
		if len(enc.Codes) != 1 {
			return nil, fmt.Errorf("%w: got %d frames", ErrSingleFrame, len(enc.Codes))
		}
		frame, err := m.decodeFrame(enc.Codes[0], scaleAt(enc.Scales, 0))
		if err != nil {
			return nil, err
		}
		audio = frame
	} else {
		stride := m.cfg.ChunkStride()
		if stride == 0 {
			stride = 1
		}
		frames := make([]*tensor.Tensor, len(enc.Codes))
		for i, codes := range enc.Codes {
			frame, err := m.decodeFrame(codes, scaleAt(enc.Scales, i))
			if err != nil {
				return nil, err
			}
			frames[i] = frame
		}
		var err error
		audio, err = overlapAdd(frames, stride)
		if err != nil {
			return nil, err
		}
	}

	if paddingMask != nil && paddingMask.Length < audio.Dim(1) {
		audio = audio.SliceTime(0, paddingMask.Length)
	}
	return audio, nil
}

// decodeFrame dequantizes one chunk's codes and runs the decoder stack.
func (m *Model) decodeFrame(codes *tensor.Int, scale *tensor.Tensor) (*tensor.Tensor, error) {
	if codes.Dims() != 3 {
		return nil, fmt.Errorf("%w: codes have rank %d, want 3", ErrInvalidShape, codes.Dims())
	}
	embeddings, err := m.quantizer.Decode(codes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCodesMismatch, err)
	}
	audio := m.decoder.Apply(embeddings)
	if scale != nil {
		audio = multiplyByScale(audio, scale)
	}
	return audio, nil
}

// overlapAdd stitches decoded chunk waveforms advancing by stride samples,
// weighting each with a triangular window and normalizing by the
// accumulated weight so overlapping regions blend without discontinuities.
func overlapAdd(frames []*tensor.Tensor, stride int) (*tensor.Tensor, error) {
	if len(frames) == 0 {
		return nil, ErrNoFrames
	}
	batch, frameLen, channels := frames[0].Dim(0), frames[0].Dim(1), frames[0].Dim(2)

	last := frames[len(frames)-1]
	total := stride*(len(frames)-1) + last.Dim(1)

	// w(t) = 1 - |2*(t+1)/(L+1) - 1|: the interior of a length L+2 tent.
	window := make([]float32, frameLen)
	for i := range window {
		t := float64(i+1) / float64(frameLen+1)
		window[i] = float32(1 - math.Abs(2*t-1))
	}

	out := tensor.New(batch, total, channels)
	weight := make([]float32, total)

	offset := 0
	for _, frame := range frames {
		cur := frame.Dim(1)
		for b := 0; b < batch; b++ {
			for t := 0; t < cur; t++ {
				w := window[t]
				dst := out.Row(b, offset+t)
				src := frame.Row(b, t)
				for c := 0; c < channels; c++ {
					dst[c] += w * src[c]
				}
			}
		}
		for t := 0; t < cur; t++ {
			weight[offset+t] += window[t]
		}
		offset += stride
	}

	for b := 0; b < batch; b++ {
		for t := 0; t < total; t++ {
			dst := out.Row(b, t)
			for c := 0; c < channels; c++ {
				dst[c] /= weight[t]
			}
		}
	}
	return out, nil
}

// maskAudio zeroes padded samples so they do not contribute to the
// normalization scale.
func maskAudio(audio *tensor.Tensor, mask *tensor.Mask) *tensor.Tensor {
	out := audio.Clone()
	batch, length, channels := out.Dim(0), out.Dim(1), out.Dim(2)
	for b := 0; b < batch; b++ {
		for t := 0; t < length; t++ {
			if !mask.At(b, t) {
				row := out.Row(b, t)
				for c := 0; c < channels; c++ {
					row[c] = 0
				}
			}
		}
	}
	return out
}

// rmsScale computes the per-item normalization scale: the RMS amplitude of
// the mono mix plus a small epsilon guarding silent input.
func rmsScale(audio *tensor.Tensor) *tensor.Tensor {
	batch, length, channels := audio.Dim(0), audio.Dim(1), audio.Dim(2)
	scale := tensor.New(batch, 1, 1)
	for b := 0; b < batch; b++ {
		var sum float64
		for t := 0; t < length; t++ {
			row := audio.Row(b, t)
			var mono float64
			for c := 0; c < channels; c++ {
				mono += float64(row[c])
			}
			mono /= float64(channels)
			sum += mono * mono
		}
		scale.Data[b] = float32(math.Sqrt(sum/float64(length)) + 1e-8)
	}
	return scale
}

func divideByScale(audio, scale *tensor.Tensor) *tensor.Tensor {
	out := audio.Clone()
	batch, length, channels := out.Dim(0), out.Dim(1), out.Dim(2)
	for b := 0; b < batch; b++ {
		s := scale.Data[b]
		seg := out.Data[b*length*channels : (b+1)*length*channels]
		for i := range seg {
			seg[i] /= s
		}
	}
	return out
}

func multiplyByScale(audio, scale *tensor.Tensor) *tensor.Tensor {
	out := audio.Clone()
	batch, length, channels := out.Dim(0), out.Dim(1), out.Dim(2)
	for b := 0; b < batch; b++ {
		s := scale.Data[b]
		seg := out.Data[b*length*channels : (b+1)*length*channels]
		for i := range seg {
			seg[i] *= s
		}
	}
	return out
}

func scaleAt(scales []*tensor.Tensor, i int) *tensor.Tensor {
	if scales == nil {
		return nil
	}
	return scales[i]
}

func containsBandwidth(list []float64, bw float64) bool {
	for _, v := range list {
		if v == bw {
			return true
		}
	}
	return false
}
