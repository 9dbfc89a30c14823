// config.go defines the codec configuration record and its JSON artifact
// loading. A Config is immutable once a Model is built from it.

package goencodec

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// Config describes a trained EnCodec model: sampling geometry, the
// encoder/decoder architecture, the quantizer, and optional chunked
// processing. Field names follow the on-disk config.json artifact.
type Config struct {
	SamplingRate       int       `json:"sampling_rate"`
	AudioChannels      int       `json:"audio_channels"`
	HiddenSize         int       `json:"hidden_size"`
	NumFilters         int       `json:"num_filters"`
	KernelSize         int       `json:"kernel_size"`
	LastKernelSize     int       `json:"last_kernel_size"`
	ResidualKernelSize int       `json:"residual_kernel_size"`
	DilationGrowthRate int       `json:"dilation_growth_rate"`
	NumResidualLayers  int       `json:"num_residual_layers"`
	Compress           int       `json:"compress"`
	CodebookSize       int       `json:"codebook_size"`
	TargetBandwidths   []float64 `json:"target_bandwidths"`
	UseCausalConv      bool      `json:"use_causal_conv"`
	PadMode            string    `json:"pad_mode"`
	NormType           string    `json:"norm_type"`
	TrimRightRatio     float64   `json:"trim_right_ratio"`
	Normalize          bool      `json:"normalize"`

	// UpsamplingRatios is ordered as the decoder sees it, largest ratio
	// first; the encoder applies it in reverse.
	UpsamplingRatios []int `json:"upsampling_ratios"`

	// NumLSTMLayers is the depth of the recurrent bottleneck. Zero means
	// the architecture default of 2.
	NumLSTMLayers int `json:"num_lstm_layers"`

	// CodebookDim is the quantizer vector dimension. Nil means HiddenSize.
	CodebookDim *int `json:"codebook_dim"`

	// UseConvShortcut selects a 1x1 conv (true, the default when nil) or
	// identity shortcut in residual blocks.
	UseConvShortcut *bool `json:"use_conv_shortcut"`

	// ChunkLengthS and Overlap enable chunked processing when both are
	// set: windows of ChunkLengthS seconds advance by
	// (1-Overlap)*ChunkLengthS seconds.
	ChunkLengthS *float64 `json:"chunk_length_s"`
	Overlap      *float64 `json:"overlap"`
}

// LoadConfig reads a config.json artifact.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("goencodec: read config: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("goencodec: parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the configuration describes a well-formed codec.
func (c *Config) Validate() error {
	switch {
	case c.SamplingRate <= 0:
		return fmt.Errorf("%w: sampling_rate %d", ErrInvalidConfig, c.SamplingRate)
	case c.AudioChannels < 1 || c.AudioChannels > 2:
		return fmt.Errorf("%w: audio_channels %d", ErrInvalidChannels, c.AudioChannels)
	case c.HiddenSize <= 0:
		return fmt.Errorf("%w: hidden_size %d", ErrInvalidConfig, c.HiddenSize)
	case c.NumFilters <= 0:
		return fmt.Errorf("%w: num_filters %d", ErrInvalidConfig, c.NumFilters)
	case c.KernelSize <= 0 || c.LastKernelSize <= 0 || c.ResidualKernelSize <= 0:
		return fmt.Errorf("%w: kernel sizes must be positive", ErrInvalidConfig)
	case c.DilationGrowthRate < 1:
		return fmt.Errorf("%w: dilation_growth_rate %d", ErrInvalidConfig, c.DilationGrowthRate)
	case c.NumResidualLayers < 0:
		return fmt.Errorf("%w: num_residual_layers %d", ErrInvalidConfig, c.NumResidualLayers)
	case c.Compress < 1:
		return fmt.Errorf("%w: compress %d", ErrInvalidConfig, c.Compress)
	case c.CodebookSize < 2:
		return fmt.Errorf("%w: codebook_size %d", ErrInvalidConfig, c.CodebookSize)
	case len(c.TargetBandwidths) == 0:
		return fmt.Errorf("%w: target_bandwidths is empty", ErrInvalidConfig)
	case len(c.UpsamplingRatios) == 0:
		return fmt.Errorf("%w: upsampling_ratios is empty", ErrInvalidConfig)
	case c.TrimRightRatio < 0 || c.TrimRightRatio > 1:
		return fmt.Errorf("%w: trim_right_ratio %v", ErrInvalidConfig, c.TrimRightRatio)
	case c.NumLSTMLayers < 0:
		return fmt.Errorf("%w: num_lstm_layers %d", ErrInvalidConfig, c.NumLSTMLayers)
	}
	for _, r := range c.UpsamplingRatios {
		if r < 1 {
			return fmt.Errorf("%w: upsampling ratio %d", ErrInvalidConfig, r)
		}
	}
	for _, bw := range c.TargetBandwidths {
		if bw <= 0 {
			return fmt.Errorf("%w: target bandwidth %v", ErrInvalidConfig, bw)
		}
	}
	switch c.PadMode {
	case "", "zero", "constant", "reflect":
	default:
		return fmt.Errorf("%w: pad_mode %q", ErrInvalidConfig, c.PadMode)
	}
	switch c.NormType {
	case "", "none", "weight_norm", "time_group_norm":
	default:
		return fmt.Errorf("%w: norm_type %q", ErrInvalidConfig, c.NormType)
	}
	if (c.ChunkLengthS == nil) != (c.Overlap == nil) {
		return fmt.Errorf("%w: chunk_length_s and overlap must be set together", ErrInvalidConfig)
	}
	if c.ChunkLengthS != nil {
		if *c.ChunkLengthS <= 0 {
			return fmt.Errorf("%w: chunk_length_s %v", ErrInvalidConfig, *c.ChunkLengthS)
		}
		if *c.Overlap < 0 || *c.Overlap >= 1 {
			return fmt.Errorf("%w: overlap %v", ErrInvalidConfig, *c.Overlap)
		}
	}
	return nil
}

// HopLength returns the total downsampling stride: the product of all
// upsampling ratios.
func (c *Config) HopLength() int {
	hop := 1
	for _, r := range c.UpsamplingRatios {
		hop *= r
	}
	return hop
}

// FrameRate returns the number of embedding frames per second of audio,
// ceil(sampling_rate / hop).
func (c *Config) FrameRate() int {
	return int(math.Ceil(float64(c.SamplingRate) / float64(c.HopLength())))
}

// ChunkLength returns the chunk window size in samples, or 0 when the
// model is not chunked.
func (c *Config) ChunkLength() int {
	if c.ChunkLengthS == nil {
		return 0
	}
	return int(*c.ChunkLengthS * float64(c.SamplingRate))
}

// ChunkStride returns the hop between chunk windows in samples, at least
// 1, or 0 when the model is not chunked.
func (c *Config) ChunkStride() int {
	if c.ChunkLengthS == nil || c.Overlap == nil {
		return 0
	}
	stride := int((1 - *c.Overlap) * float64(c.ChunkLength()))
	if stride < 1 {
		stride = 1
	}
	return stride
}

// lstmLayers returns the recurrent bottleneck depth with the architecture
// default applied.
func (c *Config) lstmLayers() int {
	if c.NumLSTMLayers == 0 {
		return 2
	}
	return c.NumLSTMLayers
}

// codebookDim returns the quantizer vector dimension, defaulting to the
// hidden size.
func (c *Config) codebookDim() int {
	if c.CodebookDim == nil {
		return c.HiddenSize
	}
	return *c.CodebookDim
}

// padReflect reports whether explicit padding mirrors interior samples
// instead of zero-filling.
func (c *Config) padReflect() bool { return c.PadMode == "reflect" }

// timeGroupNorm reports whether convolutions are followed by time-group
// normalization. Weight-normalized models need no runtime norm: the
// normalization is already folded into the stored weights.
func (c *Config) timeGroupNorm() bool { return c.NormType == "time_group_norm" }

// convShortcut reports whether residual blocks use a 1x1 conv shortcut.
func (c *Config) convShortcut() bool {
	if c.UseConvShortcut == nil {
		return true
	}
	return *c.UseConvShortcut
}
