// preprocess.go normalizes raw audio into the batched channels-last layout
// the encoder consumes, together with its validity mask.

package goencodec

import (
	"fmt"

	"github.com/thesyncim/goencodec/tensor"
)

// Preprocess stacks variable-length audio items into a single
// (batch, time, channels) tensor plus a (batch, time) validity mask.
//
// Each item must have shape (T) or (T, C) with C in {1, 2}; a single
// (B, T, C) item is treated as B separate items. Shorter items are
// zero-padded on the right to the longest length; the mask is true over
// real samples and false over the padded tail.
//
// When chunkLength and chunkStride are non-zero the stacked length is
// additionally padded to the smallest n*chunkStride + step (n >= 1,
// step = chunkLength - chunkStride) that covers the longest item, so the
// chunked encode loop tiles the input exactly.
func Preprocess(items []*tensor.Tensor, chunkLength, chunkStride int) (*tensor.Tensor, *tensor.Mask, error) {
	if len(items) == 0 {
		return nil, nil, fmt.Errorf("%w: no audio items", ErrInvalidShape)
	}

	// Split a batched item into per-item views.
	if len(items) == 1 && items[0].Dims() == 3 {
		batched := items[0]
		split := make([]*tensor.Tensor, batched.Dim(0))
		for b := range split {
			length, ch := batched.Dim(1), batched.Dim(2)
			item := tensor.New(length, ch)
			copy(item.Data, batched.Data[b*length*ch:(b+1)*length*ch])
			split[b] = item
		}
		items = split
	}

	channels := 0
	shaped := make([]*tensor.Tensor, len(items))
	for i, item := range items {
		switch item.Dims() {
		case 1:
			shaped[i] = tensor.FromSlice(item.Data, item.Dim(0), 1)
		case 2:
			shaped[i] = item
		default:
			return nil, nil, fmt.Errorf("%w: audio item %d has rank %d", ErrInvalidShape, i, item.Dims())
		}
		c := shaped[i].Dim(1)
		if c < 1 || c > 2 {
			return nil, nil, fmt.Errorf("%w: audio item %d has %d channels", ErrInvalidChannels, i, c)
		}
		if channels == 0 {
			channels = c
		} else if c != channels {
			return nil, nil, fmt.Errorf("%w: audio item %d has %d channels, want %d", ErrInvalidChannels, i, c, channels)
		}
	}

	maxLen := 0
	for _, item := range shaped {
		if item.Dim(0) > maxLen {
			maxLen = item.Dim(0)
		}
	}
	maxLen = padForChunks(maxLen, chunkLength, chunkStride)

	batch := len(shaped)
	audio := tensor.New(batch, maxLen, channels)
	mask := tensor.NewMask(batch, maxLen)
	for b, item := range shaped {
		length := item.Dim(0)
		copy(audio.Data[b*maxLen*channels:], item.Data[:length*channels])
		for t := 0; t < length; t++ {
			mask.Set(b, t, true)
		}
	}
	return audio, mask, nil
}

// padForChunks grows length to the smallest n*stride + step covering it,
// where step = chunkLength - stride. The result always satisfies the
// chunked-encode tiling invariant length % stride == step.
func padForChunks(length, chunkLength, stride int) int {
	if chunkLength <= 0 || stride <= 0 {
		return length
	}
	step := chunkLength - stride
	n := 1
	if length > step {
		n = (length - step + stride - 1) / stride
		if n < 1 {
			n = 1
		}
	}
	return n*stride + step
}
