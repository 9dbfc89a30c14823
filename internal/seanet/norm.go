// norm.go implements single-group time-group normalization: statistics are
// computed jointly over the time and channel dimensions of each batch item,
// then a per-channel affine transform is applied.

package seanet

import (
	"math"

	"github.com/thesyncim/goencodec/tensor"
)

const groupNormEps = 1e-5

// GroupNorm normalizes (batch, time, channels) activations with a single
// group spanning all channels.
type GroupNorm struct {
	// Weight and Bias have shape (channels).
	Weight *tensor.Tensor
	Bias   *tensor.Tensor
}

// NewGroupNorm builds a zero-initialized GroupNorm over the given channel
// count.
func NewGroupNorm(channels int) *GroupNorm {
	return &GroupNorm{
		Weight: tensor.New(channels),
		Bias:   tensor.New(channels),
	}
}

// Apply normalizes x per batch item over (time, channels).
func (g *GroupNorm) Apply(x *tensor.Tensor) *tensor.Tensor {
	batch, length, ch := x.Dim(0), x.Dim(1), x.Dim(2)
	out := tensor.New(batch, length, ch)

	n := float64(length * ch)
	for b := 0; b < batch; b++ {
		seg := x.Data[b*length*ch : (b+1)*length*ch]

		var mean float64
		for _, v := range seg {
			mean += float64(v)
		}
		mean /= n

		var variance float64
		for _, v := range seg {
			d := float64(v) - mean
			variance += d * d
		}
		variance /= n

		inv := float32(1 / math.Sqrt(variance+groupNormEps))
		m := float32(mean)
		dstSeg := out.Data[b*length*ch : (b+1)*length*ch]
		for i, v := range seg {
			c := i % ch
			dstSeg[i] = (v-m)*inv*g.Weight.Data[c] + g.Bias.Data[c]
		}
	}
	return out
}

func (g *GroupNorm) namedParams(prefix string, dst map[string]*tensor.Tensor) {
	dst[prefix+".norm.weight"] = g.Weight
	dst[prefix+".norm.bias"] = g.Bias
}
