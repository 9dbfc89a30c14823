// Package seanet implements the SEANet convolutional encoder and decoder
// stacks used by the codec: explicitly padded Conv1D/ConvTranspose1D
// primitives, residual blocks, and the fused LSTM bottleneck.
//
// All tensors are channels-last, (batch, time, channels). Layer lists are
// ordered exactly like the trained artifacts name them, so parameter paths
// such as "encoder.layers.3.block.1.conv.weight" resolve by walking the
// same list the forward pass walks.
package seanet

import (
	"math"

	"github.com/thesyncim/goencodec/tensor"
)

// Config carries the subset of the codec configuration the encoder and
// decoder stacks are built from. It is validated by the caller.
type Config struct {
	Channels           int
	NumFilters         int
	KernelSize         int
	LastKernelSize     int
	ResidualKernelSize int
	DilationGrowthRate int
	NumResidualLayers  int
	NumLSTMLayers      int
	// Ratios is the upsampling ratio list in decoder order
	// (largest-to-smallest); the encoder walks it in reverse.
	Ratios         []int
	HiddenSize     int
	Compress       int
	Causal         bool
	PadReflect     bool
	TimeGroupNorm  bool
	TrimRightRatio float64
	ConvShortcut   bool
}

// Layer is one stage of an encoder or decoder stack.
type Layer interface {
	Apply(x *tensor.Tensor) *tensor.Tensor
}

// paramLayer is implemented by layers that carry trainable parameters.
type paramLayer interface {
	namedParams(prefix string, dst map[string]*tensor.Tensor)
}

// ELU is the exponential linear unit activation (alpha = 1).
type ELU struct{}

// Apply returns elu(x) elementwise.
func (ELU) Apply(x *tensor.Tensor) *tensor.Tensor {
	out := tensor.New(x.Shape...)
	for i, v := range x.Data {
		out.Data[i] = elu(v)
	}
	return out
}

func elu(v float32) float32 {
	if v > 0 {
		return v
	}
	return float32(math.Exp(float64(v))) - 1
}

// add returns a + b elementwise; shapes must match.
func add(a, b *tensor.Tensor) *tensor.Tensor {
	out := tensor.New(a.Shape...)
	for i := range a.Data {
		out.Data[i] = a.Data[i] + b.Data[i]
	}
	return out
}
