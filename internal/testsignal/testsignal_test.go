package testsignal

import (
	"math"
	"testing"
)

func TestSine_DominantFrequency(t *testing.T) {
	tests := []struct {
		name       string
		sampleRate int
		freq       float64
	}{
		{"a440_at_8k", 8000, 440},
		{"low_tone", 8000, 100},
		{"a440_at_24k", 24000, 440},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// One second of signal gives 1 Hz bin resolution.
			s := Sine(tt.sampleRate, tt.freq, 0.8, tt.sampleRate, 1)
			got := DominantFrequency(s.Data, tt.sampleRate)
			if math.Abs(got-tt.freq) > 1 {
				t.Errorf("DominantFrequency = %v Hz, want %v", got, tt.freq)
			}
		})
	}
}

func TestSine_AmplitudeAndChannels(t *testing.T) {
	s := Sine(8000, 440, 0.25, 1000, 2)
	if s.Dim(0) != 1000 || s.Dim(1) != 2 {
		t.Fatalf("shape = %v, want [1000 2]", s.Shape)
	}
	var peak float32
	for t2 := 0; t2 < 1000; t2++ {
		l, r := s.At2(t2, 0), s.At2(t2, 1)
		if l != r {
			t.Fatalf("channels differ at %d: %v vs %v", t2, l, r)
		}
		if a := float32(math.Abs(float64(l))); a > peak {
			peak = a
		}
	}
	if peak > 0.25 || peak < 0.2 {
		t.Errorf("peak amplitude = %v, want close to 0.25", peak)
	}
}

func TestChirp_EndsHigherThanItStarts(t *testing.T) {
	c := Chirp(8000, 100, 1000, 8000, 1)
	first := DominantFrequency(c.Data[:2000], 8000)
	last := DominantFrequency(c.Data[6000:], 8000)
	if last <= first {
		t.Errorf("sweep did not rise: %v Hz then %v Hz", first, last)
	}
}

func TestNoise_Deterministic(t *testing.T) {
	a := Noise(42, 1, 500, 1)
	b := Noise(42, 1, 500, 1)
	for i := range a.Data {
		if a.Data[i] != b.Data[i] {
			t.Fatal("same seed produced different noise")
		}
	}
	c := Noise(43, 1, 500, 1)
	same := true
	for i := range a.Data {
		if a.Data[i] != c.Data[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical noise")
	}
	for i, v := range a.Data {
		if v < -1 || v > 1 {
			t.Fatalf("noise[%d] = %v outside [-1, 1]", i, v)
		}
	}
}
