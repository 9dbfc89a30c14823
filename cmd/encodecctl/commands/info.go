// info.go prints the contents of an ecdc stream header.

package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/thesyncim/goencodec/container/ecdc"
)

var infoCmd = &cobra.Command{
	Use:   "info <in.ecdc>",
	Short: "Show codec stream details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer in.Close()

		stream, err := ecdc.Read(in)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "sample rate: %d Hz\n", stream.SampleRate)
		fmt.Fprintf(out, "channels:    %d\n", stream.Channels)
		fmt.Fprintf(out, "bandwidth:   %g kbps\n", stream.Bandwidth)
		fmt.Fprintf(out, "samples:     %d (%.2fs)\n", stream.NumSamples,
			float64(stream.NumSamples)/float64(stream.SampleRate))
		fmt.Fprintf(out, "chunks:      %d\n", len(stream.Chunks))
		if len(stream.Chunks) > 0 {
			c := stream.Chunks[0]
			fmt.Fprintf(out, "codes/chunk: %d stages x %d frames\n", c.Stages, c.Frames)
			fmt.Fprintf(out, "normalized:  %v\n", len(c.Scales) > 0)
		}
		return nil
	},
}
