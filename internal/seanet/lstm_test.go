package seanet

import (
	"math"
	"math/rand"
	"testing"

	"github.com/thesyncim/goencodec/tensor"
)

func randomLSTM(inputSize, hiddenSize int, seed int64) *LSTM {
	l := NewLSTM(inputSize, hiddenSize)
	rng := rand.New(rand.NewSource(seed))
	for _, p := range []*tensor.Tensor{l.Wx, l.Wh, l.Bias} {
		for i := range p.Data {
			p.Data[i] = float32(rng.Float64()*2 - 1)
		}
	}
	return l
}

func TestLSTM_FusedMatchesNaive(t *testing.T) {
	tests := []struct {
		name                       string
		batch, steps, input, hidden int
	}{
		{"single_batch", 1, 20, 8, 8},
		{"multi_batch", 3, 15, 6, 10},
		{"hidden_one", 2, 10, 4, 1},
		{"long_sequence", 1, 200, 4, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := randomLSTM(tt.input, tt.hidden, 1)
			x := tensor.New(tt.batch, tt.steps, tt.input)
			rng := rand.New(rand.NewSource(2))
			for i := range x.Data {
				x.Data[i] = float32(rng.Float64()*2 - 1)
			}

			l.Step = NaiveStep
			want := l.Forward(x)
			l.Step = FusedStep
			got := l.Forward(x)

			if !got.SameShape(want) {
				t.Fatalf("shape mismatch: %v vs %v", got.Shape, want.Shape)
			}
			for i := range want.Data {
				if got.Data[i] != want.Data[i] {
					t.Fatalf("output[%d] = %v (fused), %v (naive)", i, got.Data[i], want.Data[i])
				}
			}
		})
	}
}

func TestLSTM_OutputShape(t *testing.T) {
	l := NewLSTM(6, 9)
	y := l.Forward(tensor.New(2, 13, 6))
	if y.Dim(0) != 2 || y.Dim(1) != 13 || y.Dim(2) != 9 {
		t.Errorf("output shape = %v, want [2 13 9]", y.Shape)
	}
}

func TestSigmoid_Stable(t *testing.T) {
	tests := []struct {
		name string
		in   float32
		want float32
	}{
		{"zero", 0, 0.5},
		{"large_positive", 1000, 1},
		{"large_negative", -1000, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sigmoid(tt.in)
			if math.IsNaN(float64(got)) || math.IsInf(float64(got), 0) {
				t.Fatalf("sigmoid(%v) = %v", tt.in, got)
			}
			if math.Abs(float64(got-tt.want)) > 1e-6 {
				t.Errorf("sigmoid(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSigmoid_Symmetry(t *testing.T) {
	for _, x := range []float32{0.1, 1.5, 7, 30} {
		if got, want := sigmoid(-x), 1-sigmoid(x); math.Abs(float64(got-want)) > 1e-7 {
			t.Errorf("sigmoid(-%v) = %v, want %v", x, got, want)
		}
	}
}

func TestRecurrence_ZeroWeightsIsIdentity(t *testing.T) {
	// With all-zero weights every LSTM outputs zeros, so the residual
	// connection passes the input through unchanged.
	r := NewRecurrence(4, 2)
	x := tensor.New(1, 6, 4)
	for i := range x.Data {
		x.Data[i] = float32(i) * 0.25
	}
	y := r.Apply(x)
	for i := range x.Data {
		if y.Data[i] != x.Data[i] {
			t.Fatalf("y[%d] = %v, want %v", i, y.Data[i], x.Data[i])
		}
	}
}

func TestRecurrence_NamedParams(t *testing.T) {
	r := NewRecurrence(4, 2)
	dst := make(map[string]*tensor.Tensor)
	r.namedParams("encoder.layers.7", dst)

	want := []string{
		"encoder.layers.7.lstm.0.Wx",
		"encoder.layers.7.lstm.0.Wh",
		"encoder.layers.7.lstm.0.bias",
		"encoder.layers.7.lstm.1.Wx",
		"encoder.layers.7.lstm.1.Wh",
		"encoder.layers.7.lstm.1.bias",
	}
	if len(dst) != len(want) {
		t.Fatalf("param count = %d, want %d", len(dst), len(want))
	}
	for _, name := range want {
		if _, ok := dst[name]; !ok {
			t.Errorf("missing parameter %q", name)
		}
	}
}
