// conv.go implements the explicitly padded 1-D convolution primitive.
//
// The padding arithmetic reproduces, operation for operation, the formulas
// the codec's weights were trained against. The "extra padding" term keeps
// the number of output frames integral so that downsampling by stride s
// always yields ceil(length/s) frames.

package seanet

import (
	"math"

	"github.com/thesyncim/goencodec/tensor"
)

// Conv is a strided, dilated Conv1D with causal or symmetric explicit
// padding and optional time-group normalization.
type Conv struct {
	// Weight has shape (outChannels, kernel, inChannels).
	Weight *tensor.Tensor
	// Bias has shape (outChannels).
	Bias *tensor.Tensor

	Stride   int
	Dilation int

	causal     bool
	padReflect bool
	norm       *GroupNorm

	// kernelSize is the effective (dilated) kernel extent.
	kernelSize   int
	paddingTotal int
}

// NewConv builds a zero-initialized Conv for the given channel geometry.
func NewConv(cfg *Config, inChannels, outChannels, kernelSize, stride, dilation int) *Conv {
	c := &Conv{
		Weight:     tensor.New(outChannels, kernelSize, inChannels),
		Bias:       tensor.New(outChannels),
		Stride:     stride,
		Dilation:   dilation,
		causal:     cfg.Causal,
		padReflect: cfg.PadReflect,
		kernelSize: (kernelSize-1)*dilation + 1,
	}
	c.paddingTotal = c.kernelSize - stride
	if cfg.TimeGroupNorm {
		c.norm = NewGroupNorm(outChannels)
	}
	return c
}

// extraPadding computes the right-padding needed so the output frame count
// is an integer for the given input length.
func (c *Conv) extraPadding(length int) int {
	nFrames := math.Ceil(float64(length-c.kernelSize+c.paddingTotal)/float64(c.Stride)+1) - 1
	ideal := int(nFrames)*c.Stride + c.kernelSize - c.paddingTotal
	return ideal - length
}

// Apply pads x according to the configured policy and convolves it.
func (c *Conv) Apply(x *tensor.Tensor) *tensor.Tensor {
	extra := c.extraPadding(x.Dim(1))

	var left, right int
	if c.causal {
		// All padding on the past side.
		left, right = c.paddingTotal, extra
	} else {
		// Asymmetric split, right-biased to absorb the remainder.
		pr := c.paddingTotal / 2
		left, right = c.paddingTotal-pr, pr+extra
	}
	x = pad1d(x, left, right, c.padReflect)

	y := c.conv(x)
	if c.norm != nil {
		y = c.norm.Apply(y)
	}
	return y
}

// conv performs the valid (no implicit padding) strided convolution.
func (c *Conv) conv(x *tensor.Tensor) *tensor.Tensor {
	batch, length, in := x.Dim(0), x.Dim(1), x.Dim(2)
	out := c.Weight.Dim(0)
	kernel := c.Weight.Dim(1)

	nOut := (length-c.kernelSize)/c.Stride + 1
	y := tensor.New(batch, nOut, out)

	for b := 0; b < batch; b++ {
		for to := 0; to < nOut; to++ {
			base := to * c.Stride
			dst := y.Row(b, to)
			for co := 0; co < out; co++ {
				sum := c.Bias.Data[co]
				for k := 0; k < kernel; k++ {
					src := x.Row(b, base+k*c.Dilation)
					w := c.Weight.Data[(co*kernel+k)*in : (co*kernel+k+1)*in]
					for ci := 0; ci < in; ci++ {
						sum += src[ci] * w[ci]
					}
				}
				dst[co] = sum
			}
		}
	}
	return y
}

func (c *Conv) namedParams(prefix string, dst map[string]*tensor.Tensor) {
	dst[prefix+".conv.weight"] = c.Weight
	dst[prefix+".conv.bias"] = c.Bias
	if c.norm != nil {
		c.norm.namedParams(prefix, dst)
	}
}

// pad1d pads the time dimension of x by (left, right) samples, either
// zero-filling or reflecting interior samples. Reflection is bounded so it
// never reads outside the sequence; pads larger than length-1 are clamped,
// matching the reference arithmetic.
func pad1d(x *tensor.Tensor, left, right int, reflect bool) *tensor.Tensor {
	if left == 0 && right == 0 {
		return x
	}
	batch, length, ch := x.Dim(0), x.Dim(1), x.Dim(2)

	if !reflect {
		out := tensor.New(batch, left+length+right, ch)
		for b := 0; b < batch; b++ {
			src := x.Data[b*length*ch : (b+1)*length*ch]
			copy(out.Data[(b*out.Dim(1)+left)*ch:], src)
		}
		return out
	}

	prefix := left
	if prefix > length-1 {
		prefix = length - 1
	}
	if prefix < 0 {
		prefix = 0
	}
	suffix := right
	if suffix > length-1 {
		suffix = length - 1
	}
	if suffix < 0 {
		suffix = 0
	}

	out := tensor.New(batch, prefix+length+suffix, ch)
	for b := 0; b < batch; b++ {
		// Mirrored prefix: samples prefix..1 in reverse.
		for i := 0; i < prefix; i++ {
			copy(out.Row(b, i), x.Row(b, prefix-i))
		}
		for t := 0; t < length; t++ {
			copy(out.Row(b, prefix+t), x.Row(b, t))
		}
		// Mirrored suffix: samples length-2..length-1-suffix in reverse.
		for i := 0; i < suffix; i++ {
			copy(out.Row(b, prefix+length+i), x.Row(b, length-2-i))
		}
	}
	return out
}
