// weights.go builds the encoder/decoder/quantizer module tree from a
// configuration and binds a flat name-to-tensor weight map onto it.

package goencodec

import (
	"fmt"
	"math"

	"github.com/thesyncim/goencodec/internal/rvq"
	"github.com/thesyncim/goencodec/internal/seanet"
	"github.com/thesyncim/goencodec/tensor"
)

// NewModel instantiates a codec from a validated configuration and a flat
// weight map as read from a safetensors artifact. Parameter names follow
// the artifact layout: "encoder.layers.0.conv.weight",
// "decoder.layers.1.lstm.0.Wx", "quantizer.layers.3.codebook.embed", and
// so on.
//
// weights may be nil, leaving every parameter zero-initialized; that is
// only useful for tests and benchmarks. When weights is non-nil it must
// cover every parameter exactly: missing, unknown, or mis-shaped entries
// are errors.
func NewModel(cfg *Config, weights map[string]*tensor.Tensor) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sc := &seanet.Config{
		Channels:           cfg.AudioChannels,
		NumFilters:         cfg.NumFilters,
		KernelSize:         cfg.KernelSize,
		LastKernelSize:     cfg.LastKernelSize,
		ResidualKernelSize: cfg.ResidualKernelSize,
		DilationGrowthRate: cfg.DilationGrowthRate,
		NumResidualLayers:  cfg.NumResidualLayers,
		NumLSTMLayers:      cfg.lstmLayers(),
		Ratios:             cfg.UpsamplingRatios,
		HiddenSize:         cfg.HiddenSize,
		Compress:           cfg.Compress,
		Causal:             cfg.UseCausalConv,
		PadReflect:         cfg.padReflect(),
		TimeGroupNorm:      cfg.timeGroupNorm(),
		TrimRightRatio:     cfg.TrimRightRatio,
		ConvShortcut:       cfg.convShortcut(),
	}

	m := &Model{
		cfg:       cfg,
		encoder:   seanet.NewEncoder(sc),
		decoder:   seanet.NewDecoder(sc),
		quantizer: rvq.New(totalQuantizers(cfg), cfg.CodebookSize, cfg.codebookDim(), cfg.FrameRate()),
	}

	if weights != nil {
		if err := m.loadWeights(weights); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// totalQuantizers derives the codebook count from the highest configured
// target bandwidth, assuming 10 bits per stage as the trained models do.
func totalQuantizers(cfg *Config) int {
	last := cfg.TargetBandwidths[len(cfg.TargetBandwidths)-1]
	return int(math.Floor(1000 * last / float64(cfg.FrameRate()*10)))
}

// Params returns every trainable parameter of the model keyed by its
// artifact name. The tensors are live views into the model; they must not
// be modified after the model is shared across goroutines.
func (m *Model) Params() map[string]*tensor.Tensor {
	params := m.encoder.NamedParams("encoder")
	for k, v := range m.decoder.NamedParams("decoder") {
		params[k] = v
	}
	for k, v := range m.quantizer.NamedParams("quantizer") {
		params[k] = v
	}
	return params
}

// loadWeights copies artifact tensors into the model parameters, checking
// coverage and shapes both ways.
func (m *Model) loadWeights(weights map[string]*tensor.Tensor) error {
	params := m.Params()
	for name, src := range weights {
		dst, ok := params[name]
		if !ok {
			return fmt.Errorf("%w: %q", ErrWeightUnknown, name)
		}
		if !dst.SameShape(src) {
			return fmt.Errorf("%w: %q has %v, want %v", ErrWeightShape, name, src.Shape, dst.Shape)
		}
		copy(dst.Data, src.Data)
		delete(params, name)
	}
	if len(params) > 0 {
		for name := range params {
			return fmt.Errorf("%w: %q", ErrWeightMissing, name)
		}
	}
	return nil
}
