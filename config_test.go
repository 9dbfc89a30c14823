package goencodec

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }
func boolPtr(v bool) *bool        { return &v }

func validConfig() *Config {
	return &Config{
		SamplingRate:       24000,
		AudioChannels:      1,
		HiddenSize:         128,
		NumFilters:         32,
		KernelSize:         7,
		LastKernelSize:     7,
		ResidualKernelSize: 3,
		DilationGrowthRate: 2,
		NumResidualLayers:  1,
		Compress:           2,
		CodebookSize:       1024,
		TargetBandwidths:   []float64{1.5, 3, 6, 12, 24},
		UseCausalConv:      true,
		PadMode:            "reflect",
		NormType:           "weight_norm",
		TrimRightRatio:     1.0,
		UpsamplingRatios:   []int{8, 5, 4, 2},
		NumLSTMLayers:      2,
	}
}

func TestLoadConfig(t *testing.T) {
	const artifact = `{
		"sampling_rate": 24000,
		"audio_channels": 1,
		"hidden_size": 128,
		"num_filters": 32,
		"kernel_size": 7,
		"last_kernel_size": 7,
		"residual_kernel_size": 3,
		"dilation_growth_rate": 2,
		"num_residual_layers": 1,
		"num_lstm_layers": 2,
		"compress": 2,
		"codebook_size": 1024,
		"target_bandwidths": [1.5, 3.0, 6.0, 12.0, 24.0],
		"use_causal_conv": true,
		"pad_mode": "reflect",
		"norm_type": "weight_norm",
		"trim_right_ratio": 1.0,
		"upsampling_ratios": [8, 5, 4, 2],
		"normalize": false
	}`
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(artifact), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.SamplingRate != 24000 || cfg.CodebookSize != 1024 {
		t.Errorf("parsed %d Hz, %d entries", cfg.SamplingRate, cfg.CodebookSize)
	}
	if cfg.HopLength() != 320 {
		t.Errorf("HopLength() = %d, want 320", cfg.HopLength())
	}
	if cfg.FrameRate() != 75 {
		t.Errorf("FrameRate() = %d, want 75", cfg.FrameRate())
	}
	if cfg.ChunkLength() != 0 || cfg.ChunkStride() != 0 {
		t.Errorf("unchunked model reports chunk geometry (%d, %d)", cfg.ChunkLength(), cfg.ChunkStride())
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadConfig_BadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestConfig_Defaults(t *testing.T) {
	cfg := validConfig()
	cfg.NumLSTMLayers = 0
	cfg.CodebookDim = nil
	cfg.UseConvShortcut = nil

	if got := cfg.lstmLayers(); got != 2 {
		t.Errorf("lstmLayers() = %d, want 2", got)
	}
	if got := cfg.codebookDim(); got != cfg.HiddenSize {
		t.Errorf("codebookDim() = %d, want %d", got, cfg.HiddenSize)
	}
	if !cfg.convShortcut() {
		t.Error("convShortcut() = false, want default true")
	}

	cfg.CodebookDim = intPtr(64)
	cfg.UseConvShortcut = boolPtr(false)
	if got := cfg.codebookDim(); got != 64 {
		t.Errorf("codebookDim() = %d, want 64", got)
	}
	if cfg.convShortcut() {
		t.Error("convShortcut() = true, want false")
	}
}

func TestConfig_ChunkGeometry(t *testing.T) {
	cfg := validConfig()
	cfg.ChunkLengthS = floatPtr(1.0)
	cfg.Overlap = floatPtr(0.01)

	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if got := cfg.ChunkLength(); got != 24000 {
		t.Errorf("ChunkLength() = %d, want 24000", got)
	}
	if got := cfg.ChunkStride(); got != 23760 {
		t.Errorf("ChunkStride() = %d, want 23760", got)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"zero_sampling_rate", func(c *Config) { c.SamplingRate = 0 }, ErrInvalidConfig},
		{"three_channels", func(c *Config) { c.AudioChannels = 3 }, ErrInvalidChannels},
		{"zero_hidden_size", func(c *Config) { c.HiddenSize = 0 }, ErrInvalidConfig},
		{"zero_kernel", func(c *Config) { c.KernelSize = 0 }, ErrInvalidConfig},
		{"tiny_codebook", func(c *Config) { c.CodebookSize = 1 }, ErrInvalidConfig},
		{"no_bandwidths", func(c *Config) { c.TargetBandwidths = nil }, ErrInvalidConfig},
		{"negative_bandwidth", func(c *Config) { c.TargetBandwidths = []float64{-3} }, ErrInvalidConfig},
		{"no_ratios", func(c *Config) { c.UpsamplingRatios = nil }, ErrInvalidConfig},
		{"zero_ratio", func(c *Config) { c.UpsamplingRatios = []int{8, 0} }, ErrInvalidConfig},
		{"trim_ratio_above_one", func(c *Config) { c.TrimRightRatio = 1.5 }, ErrInvalidConfig},
		{"bad_pad_mode", func(c *Config) { c.PadMode = "wrap" }, ErrInvalidConfig},
		{"bad_norm_type", func(c *Config) { c.NormType = "layer_norm" }, ErrInvalidConfig},
		{"chunk_without_overlap", func(c *Config) { c.ChunkLengthS = floatPtr(1) }, ErrInvalidConfig},
		{"overlap_without_chunk", func(c *Config) { c.Overlap = floatPtr(0.5) }, ErrInvalidConfig},
		{"negative_chunk_length", func(c *Config) {
			c.ChunkLengthS = floatPtr(-1)
			c.Overlap = floatPtr(0.5)
		}, ErrInvalidConfig},
		{"overlap_of_one", func(c *Config) {
			c.ChunkLengthS = floatPtr(1)
			c.Overlap = floatPtr(1)
		}, ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate accepted an invalid configuration")
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate error = %v, want %v", err, tt.want)
			}
		})
	}

	if err := validConfig().Validate(); err != nil {
		t.Errorf("valid configuration rejected: %v", err)
	}
}
