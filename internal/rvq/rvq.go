// Package rvq implements the residual vector quantizer: a fixed sequence
// of Euclidean codebooks where each stage quantizes the residual left by
// the stages before it. The number of active stages is derived from a
// requested bandwidth and the embedding frame rate.
package rvq

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/thesyncim/goencodec/tensor"
)

// ErrTooManyStages indicates a codes tensor with more stages than the
// quantizer has codebooks.
var ErrTooManyStages = errors.New("rvq: codes carry more stages than the quantizer has")

// Codebook is a fixed table of candidate vectors with nearest-neighbor
// lookup under Euclidean distance.
type Codebook struct {
	// Embed has shape (codebookSize, dim).
	Embed *tensor.Tensor
}

// NewCodebook builds a zero-initialized codebook.
func NewCodebook(size, dim int) *Codebook {
	return &Codebook{Embed: tensor.New(size, dim)}
}

// nearest returns the index of the codebook entry closest to v. Distance is
// minimized as argmax of 2*x.e - ||e||^2, since ||x||^2 is constant across
// candidates.
func (cb *Codebook) nearest(v []float32, normSq []float32) int32 {
	size, dim := cb.Embed.Dim(0), cb.Embed.Dim(1)
	best := int32(0)
	bestScore := float32(math.Inf(-1))
	for j := 0; j < size; j++ {
		e := cb.Embed.Data[j*dim : (j+1)*dim]
		dot := float32(0)
		for i := 0; i < dim; i++ {
			dot += v[i] * e[i]
		}
		score := 2*dot - normSq[j]
		if score > bestScore {
			bestScore = score
			best = int32(j)
		}
	}
	return best
}

// normsSq returns ||e||^2 for every codebook entry.
func (cb *Codebook) normsSq() []float32 {
	size, dim := cb.Embed.Dim(0), cb.Embed.Dim(1)
	out := make([]float32, size)
	for j := 0; j < size; j++ {
		e := cb.Embed.Data[j*dim : (j+1)*dim]
		var s float32
		for _, v := range e {
			s += v * v
		}
		out[j] = s
	}
	return out
}

// Quantizer is a multi-stage residual vector quantizer.
type Quantizer struct {
	Layers []*Codebook

	CodebookSize int
	FrameRate    int
	dim          int
}

// New builds a quantizer with numStages zero-initialized codebooks of the
// given size and dimension. frameRate is the embedding frame rate in Hz,
// used for bandwidth-to-stage-count selection.
func New(numStages, codebookSize, dim, frameRate int) *Quantizer {
	q := &Quantizer{CodebookSize: codebookSize, FrameRate: frameRate, dim: dim}
	for i := 0; i < numStages; i++ {
		q.Layers = append(q.Layers, NewCodebook(codebookSize, dim))
	}
	return q
}

// NumStagesForBandwidth returns how many stages a target bandwidth (kbps)
// activates: floor(bw*1000 / (log2(codebookSize)*frameRate)), clamped to
// [1, total]. A non-positive bandwidth selects every stage.
func (q *Quantizer) NumStagesForBandwidth(bandwidth float64) int {
	n := len(q.Layers)
	if bandwidth > 0 {
		perStage := math.Log2(float64(q.CodebookSize)) * float64(q.FrameRate)
		n = int(math.Floor(bandwidth * 1000 / perStage))
		if n < 1 {
			n = 1
		}
		if n > len(q.Layers) {
			n = len(q.Layers)
		}
	}
	return n
}

// Encode quantizes the (batch, frames, dim) embedding sequence at the given
// bandwidth and returns stage indices of shape (batch, stages, frames).
// Stage i always quantizes the residual left by stages 0..i-1.
func (q *Quantizer) Encode(embeddings *tensor.Tensor, bandwidth float64) *tensor.Int {
	batch, frames := embeddings.Dim(0), embeddings.Dim(1)
	stages := q.NumStagesForBandwidth(bandwidth)

	residual := embeddings.Clone()
	codes := tensor.NewInt(batch, stages, frames)

	dim := residual.Dim(2)
	for s := 0; s < stages; s++ {
		cb := q.Layers[s]
		normSq := cb.normsSq()
		for b := 0; b < batch; b++ {
			for f := 0; f < frames; f++ {
				v := residual.Row(b, f)
				idx := cb.nearest(v, normSq)
				codes.Set3(b, s, f, idx)
				e := cb.Embed.Data[int(idx)*dim : (int(idx)+1)*dim]
				for i := 0; i < dim; i++ {
					v[i] -= e[i]
				}
			}
		}
	}
	return codes
}

// Decode sums the per-stage codebook lookups for codes of shape (batch,
// stages, frames) into a (batch, frames, dim) embedding sequence. Later
// stages refine earlier ones; they never replace them.
func (q *Quantizer) Decode(codes *tensor.Int) (*tensor.Tensor, error) {
	batch, stages, frames := codes.Dim(0), codes.Dim(1), codes.Dim(2)
	if stages > len(q.Layers) {
		return nil, fmt.Errorf("%w: got %d stages, have %d codebooks", ErrTooManyStages, stages, len(q.Layers))
	}

	out := tensor.New(batch, frames, q.dim)
	for s := 0; s < stages; s++ {
		cb := q.Layers[s]
		for b := 0; b < batch; b++ {
			for f := 0; f < frames; f++ {
				idx := int(codes.At3(b, s, f))
				if idx < 0 || idx >= q.CodebookSize {
					return nil, fmt.Errorf("rvq: code %d out of range for codebook size %d (stage %d)", idx, q.CodebookSize, s)
				}
				e := cb.Embed.Data[idx*q.dim : (idx+1)*q.dim]
				dst := out.Row(b, f)
				for i := 0; i < q.dim; i++ {
					dst[i] += e[i]
				}
			}
		}
	}
	return out, nil
}

// NamedParams collects every codebook table under the given prefix, e.g.
// "quantizer.layers.0.codebook.embed". The returned tensors are live views.
func (q *Quantizer) NamedParams(prefix string) map[string]*tensor.Tensor {
	dst := make(map[string]*tensor.Tensor)
	for i, cb := range q.Layers {
		dst[prefix+".layers."+strconv.Itoa(i)+".codebook.embed"] = cb.Embed
	}
	return dst
}
