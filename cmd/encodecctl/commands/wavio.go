// wavio.go reads and writes WAV files as channels-last float tensors.

package commands

import (
	"fmt"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/thesyncim/goencodec/tensor"
)

// readWAV decodes a WAV file into a (samples, channels) tensor of floats
// in [-1, 1] and returns its sample rate.
func readWAV(path string) (*tensor.Tensor, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("invalid WAV file: %s", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("read PCM data: %w", err)
	}

	channels := buf.Format.NumChannels
	if channels < 1 || channels > 2 {
		return nil, 0, fmt.Errorf("unsupported channel count %d", channels)
	}
	frames := len(buf.Data) / channels
	scale := float32(1) / float32(int(1)<<(uint(dec.BitDepth)-1))

	out := tensor.New(frames, channels)
	for i := 0; i < frames*channels; i++ {
		out.Data[i] = float32(buf.Data[i]) * scale
	}
	return out, int(dec.SampleRate), nil
}

// writeWAV stores the first batch item of a (batch, samples, channels)
// tensor as a 16-bit PCM WAV file.
func writeWAV(path string, batched *tensor.Tensor, sampleRate int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	samples, channels := batched.Dim(1), batched.Dim(2)
	enc := wav.NewEncoder(f, sampleRate, 16, channels, 1)

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		SourceBitDepth: 16,
		Data:           make([]int, samples*channels),
	}
	for i := 0; i < samples*channels; i++ {
		buf.Data[i] = int(float32ToInt16(batched.Data[i]))
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("write PCM data: %w", err)
	}
	return enc.Close()
}

// float32ToInt16 clamps and rounds a [-1, 1] sample to 16-bit PCM.
func float32ToInt16(sample float32) int16 {
	scaled := float64(sample) * 32768.0
	if scaled > 32767.0 {
		return 32767
	}
	if scaled < -32768.0 {
		return -32768
	}
	return int16(math.RoundToEven(scaled))
}
