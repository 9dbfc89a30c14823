package goencodec

import (
	"errors"
	"testing"

	"github.com/thesyncim/goencodec/tensor"
)

func TestPreprocess_SingleMonoItem(t *testing.T) {
	item := tensor.FromSlice([]float32{0.1, 0.2, 0.3, 0.4, 0.5}, 5)
	audio, mask, err := Preprocess([]*tensor.Tensor{item}, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if audio.Dim(0) != 1 || audio.Dim(1) != 5 || audio.Dim(2) != 1 {
		t.Fatalf("shape = %v, want [1 5 1]", audio.Shape)
	}
	for tt := 0; tt < 5; tt++ {
		if !mask.At(0, tt) {
			t.Errorf("mask false at %d, want true", tt)
		}
	}
	if audio.At3(0, 2, 0) != 0.3 {
		t.Errorf("sample = %v, want 0.3", audio.At3(0, 2, 0))
	}
}

func TestPreprocess_PadsToLongest(t *testing.T) {
	short := tensor.FromSlice([]float32{1, 2, 3}, 3, 1)
	long := tensor.FromSlice([]float32{4, 5, 6, 7, 8}, 5, 1)

	audio, mask, err := Preprocess([]*tensor.Tensor{short, long}, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if audio.Dim(0) != 2 || audio.Dim(1) != 5 {
		t.Fatalf("shape = %v, want [2 5 1]", audio.Shape)
	}
	if audio.At3(0, 3, 0) != 0 || audio.At3(0, 4, 0) != 0 {
		t.Error("padded tail is not zero")
	}
	if mask.At(0, 2) != true || mask.At(0, 3) != false {
		t.Error("mask does not track the real/padded boundary")
	}
	if mask.At(1, 4) != true {
		t.Error("mask false over a real sample")
	}
}

func TestPreprocess_StereoItems(t *testing.T) {
	item := tensor.New(4, 2)
	audio, _, err := Preprocess([]*tensor.Tensor{item}, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if audio.Dim(2) != 2 {
		t.Errorf("channels = %d, want 2", audio.Dim(2))
	}
}

func TestPreprocess_SplitsBatchedItem(t *testing.T) {
	batched := tensor.New(3, 7, 1)
	for i := range batched.Data {
		batched.Data[i] = float32(i)
	}
	audio, mask, err := Preprocess([]*tensor.Tensor{batched}, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if audio.Dim(0) != 3 || audio.Dim(1) != 7 || audio.Dim(2) != 1 {
		t.Fatalf("shape = %v, want [3 7 1]", audio.Shape)
	}
	if audio.At3(2, 6, 0) != batched.At3(2, 6, 0) {
		t.Error("batched item contents were not preserved")
	}
	for b := 0; b < 3; b++ {
		if !mask.At(b, 6) {
			t.Errorf("mask false for item %d", b)
		}
	}
}

func TestPreprocess_Errors(t *testing.T) {
	tests := []struct {
		name  string
		items []*tensor.Tensor
		want  error
	}{
		{"no_items", nil, ErrInvalidShape},
		{"three_channels", []*tensor.Tensor{tensor.New(5, 3)}, ErrInvalidChannels},
		{"mixed_channels", []*tensor.Tensor{tensor.New(5, 1), tensor.New(5, 2)}, ErrInvalidChannels},
		{"rank_three_in_batch", []*tensor.Tensor{tensor.New(5, 1), tensor.New(1, 5, 1)}, ErrInvalidShape},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Preprocess(tt.items, 0, 0)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPreprocess_ChunkTiling(t *testing.T) {
	const (
		chunkLength = 8
		stride      = 6
		step        = chunkLength - stride
	)
	tests := []struct {
		name    string
		length  int
		wantLen int
	}{
		{"shorter_than_step", 1, 8},
		{"one_window", 5, 8},
		{"exact_window", 8, 8},
		{"two_windows", 9, 14},
		{"exact_two_windows", 14, 14},
		{"three_windows", 15, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := tensor.New(tt.length, 1)
			audio, mask, err := Preprocess([]*tensor.Tensor{item}, chunkLength, stride)
			if err != nil {
				t.Fatal(err)
			}
			if audio.Dim(1) != tt.wantLen {
				t.Fatalf("padded length = %d, want %d", audio.Dim(1), tt.wantLen)
			}
			if audio.Dim(1)%stride != step {
				t.Errorf("length %d does not satisfy length %% stride == step", audio.Dim(1))
			}
			if mask.Length != tt.wantLen {
				t.Errorf("mask length = %d, want %d", mask.Length, tt.wantLen)
			}
			if tt.length < tt.wantLen && mask.At(0, tt.length) {
				t.Error("mask true over chunk padding")
			}
		})
	}
}
