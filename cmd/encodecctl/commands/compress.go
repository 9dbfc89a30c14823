// compress.go implements WAV -> ecdc encoding.

package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/thesyncim/goencodec"
	"github.com/thesyncim/goencodec/container/ecdc"
	"github.com/thesyncim/goencodec/tensor"
)

var bandwidth float64

var compressCmd = &cobra.Command{
	Use:   "compress <in.wav> <out.ecdc>",
	Short: "Encode a WAV file into a codec stream",
	Long: `Encode a WAV file into discrete codec codes.

The WAV sample rate and channel count must match the model artifact.

Examples:
  encodecctl -m ./encodec_24khz compress speech.wav speech.ecdc
  encodecctl -m ./encodec_48khz compress music.wav music.ecdc --bandwidth 12`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		model, err := loadModel()
		if err != nil {
			return err
		}

		item, rate, err := readWAV(args[0])
		if err != nil {
			return err
		}
		if rate != model.SamplingRate() {
			return fmt.Errorf("WAV sample rate %d does not match model rate %d", rate, model.SamplingRate())
		}
		if item.Dim(1) != model.Channels() {
			return fmt.Errorf("WAV has %d channels, model expects %d", item.Dim(1), model.Channels())
		}
		numSamples := item.Dim(0)

		audio, mask, err := model.Preprocess(item)
		if err != nil {
			return err
		}
		enc, err := model.Encode(audio, mask, bandwidth)
		if err != nil {
			return err
		}

		out, err := os.Create(args[1])
		if err != nil {
			return err
		}
		defer out.Close()

		if err := ecdc.Write(out, toStream(model, enc, numSamples)); err != nil {
			return err
		}

		frames := 0
		for _, c := range enc.Codes {
			frames += c.Dim(2)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "encoded %d samples into %d chunk(s), %d frames at %g kbps\n",
			numSamples, len(enc.Codes), frames, enc.Bandwidth)
		return nil
	},
}

func init() {
	compressCmd.Flags().Float64VarP(&bandwidth, "bandwidth", "b", 0, "target bandwidth in kbps (0 = model default)")
}

// toStream converts an encode result into its container representation.
func toStream(model *goencodec.Model, enc *goencodec.Encoded, numSamples int) *ecdc.Stream {
	s := &ecdc.Stream{
		SampleRate: model.SamplingRate(),
		Channels:   model.Channels(),
		Bandwidth:  enc.Bandwidth,
		NumSamples: numSamples,
	}
	for i, codes := range enc.Codes {
		chunk := ecdc.Chunk{
			Batch:  codes.Dim(0),
			Stages: codes.Dim(1),
			Frames: codes.Dim(2),
			Codes:  codes.Data,
		}
		if enc.Scales != nil && enc.Scales[i] != nil {
			chunk.Scales = enc.Scales[i].Data
		}
		s.Chunks = append(s.Chunks, chunk)
	}
	return s
}

// fromStream converts a container stream back into an encode result.
func fromStream(s *ecdc.Stream) *goencodec.Encoded {
	enc := &goencodec.Encoded{Bandwidth: s.Bandwidth}
	normalized := false
	for _, c := range s.Chunks {
		if len(c.Scales) > 0 {
			normalized = true
		}
	}
	for _, c := range s.Chunks {
		enc.Codes = append(enc.Codes, tensor.IntFromSlice(c.Codes, c.Batch, c.Stages, c.Frames))
		if normalized {
			enc.Scales = append(enc.Scales, tensor.FromSlice(c.Scales, c.Batch, 1, 1))
		}
	}
	return enc
}
