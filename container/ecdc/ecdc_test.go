package ecdc

import (
	"bytes"
	"errors"
	"testing"
)

func sampleStream() *Stream {
	return &Stream{
		SampleRate: 24000,
		Channels:   1,
		Bandwidth:  6,
		NumSamples: 48000,
		Chunks: []Chunk{
			{
				Batch:  1,
				Stages: 2,
				Frames: 3,
				Codes:  []int32{0, 1, 2, 3, 4, 5},
				Scales: []float32{0.5},
			},
			{
				Batch:  1,
				Stages: 2,
				Frames: 3,
				Codes:  []int32{5, 4, 3, 2, 1, 0},
				Scales: []float32{0.25},
			},
		},
	}
}

func TestRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	want := sampleStream()
	if err := Write(&buf, want); err != nil {
		t.Fatal(err)
	}

	got, err := Read(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if got.SampleRate != want.SampleRate || got.Channels != want.Channels {
		t.Errorf("geometry = (%d, %d), want (%d, %d)",
			got.SampleRate, got.Channels, want.SampleRate, want.Channels)
	}
	if got.Bandwidth != want.Bandwidth || got.NumSamples != want.NumSamples {
		t.Errorf("bandwidth/samples = (%v, %d), want (%v, %d)",
			got.Bandwidth, got.NumSamples, want.Bandwidth, want.NumSamples)
	}
	if len(got.Chunks) != len(want.Chunks) {
		t.Fatalf("chunks = %d, want %d", len(got.Chunks), len(want.Chunks))
	}
	for i := range want.Chunks {
		w, g := &want.Chunks[i], &got.Chunks[i]
		if g.Batch != w.Batch || g.Stages != w.Stages || g.Frames != w.Frames {
			t.Errorf("chunk %d geometry = (%d, %d, %d), want (%d, %d, %d)",
				i, g.Batch, g.Stages, g.Frames, w.Batch, w.Stages, w.Frames)
		}
		for j := range w.Codes {
			if g.Codes[j] != w.Codes[j] {
				t.Fatalf("chunk %d code %d = %d, want %d", i, j, g.Codes[j], w.Codes[j])
			}
		}
		for j := range w.Scales {
			if g.Scales[j] != w.Scales[j] {
				t.Fatalf("chunk %d scale %d = %v, want %v", i, j, g.Scales[j], w.Scales[j])
			}
		}
	}
}

func TestRoundTrip_NoScales(t *testing.T) {
	s := sampleStream()
	for i := range s.Chunks {
		s.Chunks[i].Scales = nil
	}
	var buf bytes.Buffer
	if err := Write(&buf, s); err != nil {
		t.Fatal(err)
	}
	got, err := Read(&buf)
	if err != nil {
		t.Fatal(err)
	}
	for i := range got.Chunks {
		if len(got.Chunks[i].Scales) != 0 {
			t.Errorf("chunk %d has %d scales, want none", i, len(got.Chunks[i].Scales))
		}
	}
}

func TestRead_BadMagic(t *testing.T) {
	if _, err := Read(bytes.NewReader([]byte("OggS\x01rest"))); !errors.Is(err, ErrBadMagic) {
		t.Errorf("error = %v, want ErrBadMagic", err)
	}
}

func TestRead_UnsupportedVersion(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleStream()); err != nil {
		t.Fatal(err)
	}
	raw := buf.Bytes()
	raw[4] = 99
	if _, err := Read(bytes.NewReader(raw)); !errors.Is(err, ErrVersion) {
		t.Errorf("error = %v, want ErrVersion", err)
	}
}

func TestRead_ShortInput(t *testing.T) {
	if _, err := Read(bytes.NewReader([]byte("EC"))); err == nil {
		t.Error("expected error for truncated header")
	}
}

func TestWrite_RejectsCorruptStream(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Stream)
	}{
		{"zero_sample_rate", func(s *Stream) { s.SampleRate = 0 }},
		{"three_channels", func(s *Stream) { s.Channels = 3 }},
		{"code_count_mismatch", func(s *Stream) { s.Chunks[0].Codes = s.Chunks[0].Codes[:4] }},
		{"scale_count_mismatch", func(s *Stream) { s.Chunks[1].Scales = []float32{1, 2} }},
		{"zero_frames", func(s *Stream) { s.Chunks[0].Frames = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := sampleStream()
			tt.mutate(s)
			var buf bytes.Buffer
			if err := Write(&buf, s); !errors.Is(err, ErrCorrupt) {
				t.Errorf("error = %v, want ErrCorrupt", err)
			}
		})
	}
}
