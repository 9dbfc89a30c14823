// ecdc.go defines the stream payload types.

package ecdc

// magic is the 4-byte capture pattern opening every ecdc file.
var magic = [4]byte{'E', 'C', 'D', 'C'}

// Version is the current format version.
const Version = 1

// Stream is the decoded payload of an ecdc container.
type Stream struct {
	// SampleRate is the audio sampling rate of the model that produced
	// the codes.
	SampleRate int `msgpack:"sample_rate"`

	// Channels is the audio channel count (1 or 2).
	Channels int `msgpack:"channels"`

	// Bandwidth is the target bandwidth (kbps) the codes were encoded at.
	Bandwidth float64 `msgpack:"bandwidth"`

	// NumSamples is the pre-padding sample count of the original audio,
	// used to truncate the decoded waveform.
	NumSamples int `msgpack:"num_samples"`

	// Chunks holds one entry per encoded window, in stream order.
	Chunks []Chunk `msgpack:"chunks"`
}

// Chunk is one encoded window: a (Batch, Stages, Frames) code tensor in
// row-major order plus optional per-item scale factors.
type Chunk struct {
	Batch  int `msgpack:"batch"`
	Stages int `msgpack:"stages"`
	Frames int `msgpack:"frames"`

	// Codes is the flattened row-major (Batch, Stages, Frames) index
	// array.
	Codes []int32 `msgpack:"codes"`

	// Scales holds one normalization scale per batch item, or is empty
	// for non-normalizing models.
	Scales []float32 `msgpack:"scales,omitempty"`
}

// validate checks the internal consistency of a decoded stream.
func (s *Stream) validate() error {
	if s.SampleRate <= 0 || s.Channels < 1 || s.Channels > 2 {
		return ErrCorrupt
	}
	for i := range s.Chunks {
		c := &s.Chunks[i]
		if c.Batch <= 0 || c.Stages <= 0 || c.Frames <= 0 {
			return ErrCorrupt
		}
		if len(c.Codes) != c.Batch*c.Stages*c.Frames {
			return ErrCorrupt
		}
		if len(c.Scales) != 0 && len(c.Scales) != c.Batch {
			return ErrCorrupt
		}
	}
	return nil
}
