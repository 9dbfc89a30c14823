// encoder.go assembles the downsampling stack: an initial convolution, then
// per downsampling ratio a run of residual blocks followed by a strided
// convolution that doubles the channel count, the LSTM bottleneck, and a
// final projection to the embedding dimension.

package seanet

import (
	"strconv"

	"github.com/thesyncim/goencodec/tensor"
)

// Encoder downsamples (batch, time, channels) audio into a (batch, frames,
// hidden) embedding sequence.
type Encoder struct {
	Layers []Layer
}

// NewEncoder builds the encoder layer list for cfg. The ratio list is
// walked in reverse so the encoder mirrors the decoder's upsampling order.
func NewEncoder(cfg *Config) *Encoder {
	layers := []Layer{
		NewConv(cfg, cfg.Channels, cfg.NumFilters, cfg.KernelSize, 1, 1),
	}

	scaling := 1
	for i := len(cfg.Ratios) - 1; i >= 0; i-- {
		ratio := cfg.Ratios[i]
		current := scaling * cfg.NumFilters
		for j := 0; j < cfg.NumResidualLayers; j++ {
			layers = append(layers, NewResnetBlock(cfg, current, pow(cfg.DilationGrowthRate, j)))
		}
		layers = append(layers, ELU{})
		layers = append(layers, NewConv(cfg, current, current*2, ratio*2, ratio, 1))
		scaling *= 2
	}

	layers = append(layers, NewRecurrence(scaling*cfg.NumFilters, cfg.NumLSTMLayers))
	layers = append(layers, ELU{})
	layers = append(layers, NewConv(cfg, scaling*cfg.NumFilters, cfg.HiddenSize, cfg.LastKernelSize, 1, 1))

	return &Encoder{Layers: layers}
}

// Apply runs the layer list in order.
func (e *Encoder) Apply(x *tensor.Tensor) *tensor.Tensor {
	for _, l := range e.Layers {
		x = l.Apply(x)
	}
	return x
}

// NamedParams collects every trainable parameter under the given prefix,
// e.g. "encoder.layers.0.conv.weight". The returned tensors are live views;
// writing to them updates the encoder.
func (e *Encoder) NamedParams(prefix string) map[string]*tensor.Tensor {
	dst := make(map[string]*tensor.Tensor)
	for i, l := range e.Layers {
		if p, ok := l.(paramLayer); ok {
			p.namedParams(prefix+".layers."+strconv.Itoa(i), dst)
		}
	}
	return dst
}

func pow(base, exp int) int {
	out := 1
	for i := 0; i < exp; i++ {
		out *= base
	}
	return out
}
