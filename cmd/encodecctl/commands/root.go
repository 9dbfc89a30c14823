// Package commands implements the encodecctl CLI.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/thesyncim/goencodec"
	"github.com/thesyncim/goencodec/safetensors"
)

var (
	modelDir     string
	chunkSeconds float64
	overlap      float64
)

var rootCmd = &cobra.Command{
	Use:   "encodecctl",
	Short: "Neural audio codec tool",
	Long: `encodecctl compresses WAV audio into discrete neural codec streams
and reconstructs WAV audio from them.

A model artifact directory (config.json + model.safetensors) must be
passed with --model. Chunked processing defaults to the artifact's
configuration and can be overridden with --chunk-seconds/--overlap.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&modelDir, "model", "m", "", "model artifact directory")
	rootCmd.PersistentFlags().Float64Var(&chunkSeconds, "chunk-seconds", 0, "override chunk length in seconds (0 = use model config)")
	rootCmd.PersistentFlags().Float64Var(&overlap, "overlap", 0.01, "chunk overlap fraction used with --chunk-seconds")

	rootCmd.AddCommand(compressCmd)
	rootCmd.AddCommand(decompressCmd)
	rootCmd.AddCommand(infoCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadModel loads the artifact named by --model, applying any chunking
// overrides before the model is built.
func loadModel() (*goencodec.Model, error) {
	if modelDir == "" {
		return nil, fmt.Errorf("--model is required")
	}
	cfg, err := goencodec.LoadConfig(modelDir + "/config.json")
	if err != nil {
		return nil, err
	}
	if chunkSeconds > 0 {
		cs, ov := chunkSeconds, overlap
		cfg.ChunkLengthS = &cs
		cfg.Overlap = &ov
	}
	weights, err := safetensors.ReadFile(modelDir + "/model.safetensors")
	if err != nil {
		return nil, err
	}
	return goencodec.NewModel(cfg, weights)
}
