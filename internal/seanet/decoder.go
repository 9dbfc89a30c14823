// decoder.go assembles the upsampling stack, the exact mirror of the
// encoder: initial convolution from the embedding dimension, the LSTM
// bottleneck, then per upsampling ratio a strided transposed convolution
// that halves the channel count followed by residual blocks, and a final
// projection back to the audio channel count.

package seanet

import (
	"strconv"

	"github.com/thesyncim/goencodec/tensor"
)

// Decoder upsamples a (batch, frames, hidden) embedding sequence back into
// (batch, time, channels) audio.
type Decoder struct {
	Layers []Layer
}

// NewDecoder builds the decoder layer list for cfg.
func NewDecoder(cfg *Config) *Decoder {
	scaling := pow(2, len(cfg.Ratios))

	layers := []Layer{
		NewConv(cfg, cfg.HiddenSize, scaling*cfg.NumFilters, cfg.KernelSize, 1, 1),
		NewRecurrence(scaling*cfg.NumFilters, cfg.NumLSTMLayers),
	}

	for _, ratio := range cfg.Ratios {
		current := scaling * cfg.NumFilters
		layers = append(layers, ELU{})
		layers = append(layers, NewConvTranspose(cfg, current, current/2, ratio*2, ratio))
		for j := 0; j < cfg.NumResidualLayers; j++ {
			layers = append(layers, NewResnetBlock(cfg, current/2, pow(cfg.DilationGrowthRate, j)))
		}
		scaling /= 2
	}

	layers = append(layers, ELU{})
	layers = append(layers, NewConv(cfg, cfg.NumFilters, cfg.Channels, cfg.LastKernelSize, 1, 1))

	return &Decoder{Layers: layers}
}

// Apply runs the layer list in order.
func (d *Decoder) Apply(x *tensor.Tensor) *tensor.Tensor {
	for _, l := range d.Layers {
		x = l.Apply(x)
	}
	return x
}

// NamedParams collects every trainable parameter under the given prefix.
// The returned tensors are live views; writing to them updates the decoder.
func (d *Decoder) NamedParams(prefix string) map[string]*tensor.Tensor {
	dst := make(map[string]*tensor.Tensor)
	for i, l := range d.Layers {
		if p, ok := l.(paramLayer); ok {
			p.namedParams(prefix+".layers."+strconv.Itoa(i), dst)
		}
	}
	return dst
}
