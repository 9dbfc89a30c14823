// decompress.go implements ecdc -> WAV decoding.

package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/thesyncim/goencodec/container/ecdc"
	"github.com/thesyncim/goencodec/tensor"
)

var decompressCmd = &cobra.Command{
	Use:   "decompress <in.ecdc> <out.wav>",
	Short: "Decode a codec stream back into a WAV file",
	Long: `Decode an ecdc codec stream into a 16-bit PCM WAV file.

The model artifact must match the one the stream was encoded with.

Example:
  encodecctl -m ./encodec_24khz decompress speech.ecdc speech_out.wav`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		model, err := loadModel()
		if err != nil {
			return err
		}

		in, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer in.Close()

		stream, err := ecdc.Read(in)
		if err != nil {
			return err
		}
		if stream.SampleRate != model.SamplingRate() {
			return fmt.Errorf("stream sample rate %d does not match model rate %d", stream.SampleRate, model.SamplingRate())
		}
		if stream.Channels != model.Channels() {
			return fmt.Errorf("stream has %d channels, model expects %d", stream.Channels, model.Channels())
		}

		enc := fromStream(stream)
		batch := enc.Codes[0].Dim(0)
		mask := tensor.FullMask(batch, stream.NumSamples)

		audio, err := model.Decode(enc, mask)
		if err != nil {
			return err
		}
		if err := writeWAV(args[1], audio, model.SamplingRate()); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "decoded %d chunk(s) into %d samples\n", len(enc.Codes), audio.Dim(1))
		return nil
	},
}
