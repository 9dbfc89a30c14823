// lstm.go implements the LSTM bottleneck applied between the convolution
// stacks: a stack of single-layer LSTMs with a residual connection, and the
// per-timestep gate kernel in two interchangeable forms.
//
// The fused step combines the precomputed input projection with the
// recurrent projection and applies all four gates in one elementwise pass
// over the (batch, hidden) grid, fanning the grid out across goroutines.
// Timesteps stay strictly sequential. The naive step computes each gate
// vector in its own pass. Both use identical formulas and update order
// (input gate, forget gate, candidate, output gate, then cell and hidden),
// so they produce identical results.

package seanet

import (
	"math"
	"runtime"
	"strconv"
	"sync"

	"github.com/thesyncim/goencodec/tensor"
)

// StepFunc advances one LSTM timestep. gates and recur are the (batch,
// 4*hidden) input and recurrent gate pre-activations for this timestep;
// cell and hidden are the (batch, hidden) states, updated in place.
type StepFunc func(gates, recur, cell, hidden []float32, batch, hiddenSize int)

// LSTM is a single-layer LSTM with combined four-gate weights.
type LSTM struct {
	// Wx has shape (4*hidden, input); Wh has shape (4*hidden, hidden);
	// Bias has shape (4*hidden). Gate order along the first axis is
	// input, forget, candidate, output.
	Wx   *tensor.Tensor
	Wh   *tensor.Tensor
	Bias *tensor.Tensor

	HiddenSize int
	Step       StepFunc
}

// NewLSTM builds a zero-initialized LSTM using the fused step.
func NewLSTM(inputSize, hiddenSize int) *LSTM {
	return &LSTM{
		Wx:         tensor.New(4*hiddenSize, inputSize),
		Wh:         tensor.New(4*hiddenSize, hiddenSize),
		Bias:       tensor.New(4 * hiddenSize),
		HiddenSize: hiddenSize,
		Step:       FusedStep,
	}
}

// Forward runs the recurrence over x of shape (batch, time, input) and
// returns the hidden-state sequence (batch, time, hidden).
func (l *LSTM) Forward(x *tensor.Tensor) *tensor.Tensor {
	batch, steps, in := x.Dim(0), x.Dim(1), x.Dim(2)
	h4 := 4 * l.HiddenSize

	// Input projection for every timestep in one pass: pre = x @ Wx^T + b.
	pre := tensor.New(batch, steps, h4)
	for b := 0; b < batch; b++ {
		for t := 0; t < steps; t++ {
			src := x.Row(b, t)
			dst := pre.Row(b, t)
			for g := 0; g < h4; g++ {
				sum := l.Bias.Data[g]
				w := l.Wx.Data[g*in : (g+1)*in]
				for i := 0; i < in; i++ {
					sum += src[i] * w[i]
				}
				dst[g] = sum
			}
		}
	}

	hidden := make([]float32, batch*l.HiddenSize)
	cell := make([]float32, batch*l.HiddenSize)
	recur := make([]float32, batch*h4)
	gates := make([]float32, batch*h4)

	out := tensor.New(batch, steps, l.HiddenSize)
	step := l.Step
	if step == nil {
		step = FusedStep
	}

	for t := 0; t < steps; t++ {
		// Recurrent projection: recur = h @ Wh^T.
		for b := 0; b < batch; b++ {
			hRow := hidden[b*l.HiddenSize : (b+1)*l.HiddenSize]
			dst := recur[b*h4 : (b+1)*h4]
			for g := 0; g < h4; g++ {
				sum := float32(0)
				w := l.Wh.Data[g*l.HiddenSize : (g+1)*l.HiddenSize]
				for u := 0; u < l.HiddenSize; u++ {
					sum += hRow[u] * w[u]
				}
				dst[g] = sum
			}
		}
		for b := 0; b < batch; b++ {
			copy(gates[b*h4:(b+1)*h4], pre.Row(b, t))
		}

		step(gates, recur, cell, hidden, batch, l.HiddenSize)

		for b := 0; b < batch; b++ {
			copy(out.Row(b, t), hidden[b*l.HiddenSize:(b+1)*l.HiddenSize])
		}
	}
	return out
}

// NaiveStep computes the four gate vectors in separate passes. It exists as
// the reference for FusedStep; the two must stay numerically identical.
func NaiveStep(gates, recur, cell, hidden []float32, batch, hiddenSize int) {
	h4 := 4 * hiddenSize
	i := make([]float32, hiddenSize)
	f := make([]float32, hiddenSize)
	g := make([]float32, hiddenSize)
	o := make([]float32, hiddenSize)
	for b := 0; b < batch; b++ {
		base := b * h4
		for u := 0; u < hiddenSize; u++ {
			i[u] = sigmoid(recur[base+u] + gates[base+u])
		}
		for u := 0; u < hiddenSize; u++ {
			f[u] = sigmoid(recur[base+hiddenSize+u] + gates[base+hiddenSize+u])
		}
		for u := 0; u < hiddenSize; u++ {
			g[u] = tanh(recur[base+2*hiddenSize+u] + gates[base+2*hiddenSize+u])
		}
		for u := 0; u < hiddenSize; u++ {
			o[u] = sigmoid(recur[base+3*hiddenSize+u] + gates[base+3*hiddenSize+u])
		}
		for u := 0; u < hiddenSize; u++ {
			c := f[u]*cell[b*hiddenSize+u] + i[u]*g[u]
			cell[b*hiddenSize+u] = c
			hidden[b*hiddenSize+u] = o[u] * tanh(c)
		}
	}
}

// FusedStep updates every (batch, hidden) grid point in a single pass,
// split across goroutines. Per-point math matches NaiveStep exactly.
func FusedStep(gates, recur, cell, hidden []float32, batch, hiddenSize int) {
	points := batch * hiddenSize
	workers := runtime.GOMAXPROCS(0)
	if workers > points {
		workers = points
	}
	if workers <= 1 {
		fusedRange(gates, recur, cell, hidden, hiddenSize, 0, points)
		return
	}

	chunk := (points + workers - 1) / workers
	var wg sync.WaitGroup
	for lo := 0; lo < points; lo += chunk {
		hi := lo + chunk
		if hi > points {
			hi = points
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			fusedRange(gates, recur, cell, hidden, hiddenSize, lo, hi)
		}(lo, hi)
	}
	wg.Wait()
}

func fusedRange(gates, recur, cell, hidden []float32, hiddenSize, lo, hi int) {
	for p := lo; p < hi; p++ {
		b := p / hiddenSize
		u := p % hiddenSize
		base := b * 4 * hiddenSize

		i := sigmoid(recur[base+u] + gates[base+u])
		f := sigmoid(recur[base+hiddenSize+u] + gates[base+hiddenSize+u])
		g := tanh(recur[base+2*hiddenSize+u] + gates[base+2*hiddenSize+u])
		o := sigmoid(recur[base+3*hiddenSize+u] + gates[base+3*hiddenSize+u])

		c := f*cell[p] + i*g
		cell[p] = c
		hidden[p] = o * tanh(c)
	}
}

// sigmoid evaluates the logistic function without overflowing exp for
// large-magnitude inputs: the exponent argument is always non-positive.
func sigmoid(x float32) float32 {
	y := float32(1 / (1 + math.Exp(-math.Abs(float64(x)))))
	if x < 0 {
		return 1 - y
	}
	return y
}

func tanh(x float32) float32 {
	return float32(math.Tanh(float64(x)))
}

func (l *LSTM) namedParams(prefix string, dst map[string]*tensor.Tensor) {
	dst[prefix+".Wx"] = l.Wx
	dst[prefix+".Wh"] = l.Wh
	dst[prefix+".bias"] = l.Bias
}

// Recurrence is the residual LSTM bottleneck: a stack of LSTMs whose output
// is added back to the input.
type Recurrence struct {
	Layers []*LSTM
}

// NewRecurrence builds numLayers LSTMs over the given dimension.
func NewRecurrence(dimension, numLayers int) *Recurrence {
	r := &Recurrence{}
	for i := 0; i < numLayers; i++ {
		r.Layers = append(r.Layers, NewLSTM(dimension, dimension))
	}
	return r
}

// Apply runs the LSTM stack and adds the residual connection.
func (r *Recurrence) Apply(x *tensor.Tensor) *tensor.Tensor {
	h := x
	for _, l := range r.Layers {
		h = l.Forward(h)
	}
	return add(h, x)
}

func (r *Recurrence) namedParams(prefix string, dst map[string]*tensor.Tensor) {
	for i, l := range r.Layers {
		l.namedParams(prefix+".lstm."+strconv.Itoa(i), dst)
	}
}
