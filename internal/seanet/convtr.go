// convtr.go implements the transposed 1-D convolution primitive used for
// upsampling in the decoder. The output is trimmed so that a transposed
// convolution with stride s exactly inverts the length change of the
// corresponding forward convolution: F input frames produce F*s samples.

package seanet

import (
	"math"

	"github.com/thesyncim/goencodec/tensor"
)

// ConvTranspose is a strided ConvTranspose1D with causal or symmetric
// output trimming and optional time-group normalization.
type ConvTranspose struct {
	// Weight has shape (outChannels, kernel, inChannels).
	Weight *tensor.Tensor
	// Bias has shape (outChannels).
	Bias *tensor.Tensor

	Stride int

	causal         bool
	trimRightRatio float64
	norm           *GroupNorm
	paddingTotal   int
}

// NewConvTranspose builds a zero-initialized ConvTranspose.
func NewConvTranspose(cfg *Config, inChannels, outChannels, kernelSize, stride int) *ConvTranspose {
	c := &ConvTranspose{
		Weight:         tensor.New(outChannels, kernelSize, inChannels),
		Bias:           tensor.New(outChannels),
		Stride:         stride,
		causal:         cfg.Causal,
		trimRightRatio: cfg.TrimRightRatio,
		paddingTotal:   kernelSize - stride,
	}
	if cfg.TimeGroupNorm {
		c.norm = NewGroupNorm(outChannels)
	}
	return c
}

// Apply upsamples x and trims paddingTotal samples, split between the two
// ends by the trim-right ratio (causal) or evenly (symmetric).
func (c *ConvTranspose) Apply(x *tensor.Tensor) *tensor.Tensor {
	y := c.convTranspose(x)
	if c.norm != nil {
		y = c.norm.Apply(y)
	}

	var right int
	if c.causal {
		right = int(math.Ceil(float64(c.paddingTotal) * c.trimRightRatio))
	} else {
		right = c.paddingTotal / 2
	}
	left := c.paddingTotal - right

	return y.SliceTime(left, y.Dim(1)-right)
}

func (c *ConvTranspose) convTranspose(x *tensor.Tensor) *tensor.Tensor {
	batch, length, in := x.Dim(0), x.Dim(1), x.Dim(2)
	out := c.Weight.Dim(0)
	kernel := c.Weight.Dim(1)

	nOut := (length-1)*c.Stride + kernel
	y := tensor.New(batch, nOut, out)

	// Bias contributes once per output position.
	for b := 0; b < batch; b++ {
		for t := 0; t < nOut; t++ {
			copy(y.Row(b, t), c.Bias.Data)
		}
	}

	for b := 0; b < batch; b++ {
		for ti := 0; ti < length; ti++ {
			src := x.Row(b, ti)
			base := ti * c.Stride
			for k := 0; k < kernel; k++ {
				dst := y.Row(b, base+k)
				for co := 0; co < out; co++ {
					w := c.Weight.Data[(co*kernel+k)*in : (co*kernel+k+1)*in]
					sum := float32(0)
					for ci := 0; ci < in; ci++ {
						sum += src[ci] * w[ci]
					}
					dst[co] += sum
				}
			}
		}
	}
	return y
}

func (c *ConvTranspose) namedParams(prefix string, dst map[string]*tensor.Tensor) {
	dst[prefix+".conv.weight"] = c.Weight
	dst[prefix+".conv.bias"] = c.Bias
	if c.norm != nil {
		c.norm.namedParams(prefix, dst)
	}
}
