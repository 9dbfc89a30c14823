// Package tensor provides the small dense-array types the codec computes
// on: row-major float32 tensors, int32 index tensors, and boolean padding
// masks.
//
// Audio tensors are laid out channels-last, (batch, time, channels), to
// match the layout the codec's trained weights were produced for. The
// package is deliberately minimal: shape bookkeeping and element access
// only. All numerical kernels live with the layers that need them.
package tensor

import "fmt"

// Tensor is a dense row-major float32 array of arbitrary rank.
type Tensor struct {
	// Shape holds the dimension sizes, outermost first.
	Shape []int
	// Data is the flat row-major backing store, length = product(Shape).
	Data []float32
}

// New allocates a zero-filled tensor with the given shape.
func New(shape ...int) *Tensor {
	n := 1
	for _, d := range shape {
		if d < 0 {
			panic(fmt.Sprintf("tensor: negative dimension %d", d))
		}
		n *= d
	}
	s := make([]int, len(shape))
	copy(s, shape)
	return &Tensor{Shape: s, Data: make([]float32, n)}
}

// FromSlice wraps data in a tensor with the given shape. The slice is not
// copied; it must have exactly product(shape) elements.
func FromSlice(data []float32, shape ...int) *Tensor {
	n := 1
	for _, d := range shape {
		n *= d
	}
	if n != len(data) {
		panic(fmt.Sprintf("tensor: shape %v needs %d elements, got %d", shape, n, len(data)))
	}
	s := make([]int, len(shape))
	copy(s, shape)
	return &Tensor{Shape: s, Data: data}
}

// Dims returns the rank of the tensor.
func (t *Tensor) Dims() int { return len(t.Shape) }

// Dim returns the size of dimension i.
func (t *Tensor) Dim(i int) int { return t.Shape[i] }

// Size returns the total number of elements.
func (t *Tensor) Size() int { return len(t.Data) }

// Clone returns a deep copy.
func (t *Tensor) Clone() *Tensor {
	c := New(t.Shape...)
	copy(c.Data, t.Data)
	return c
}

// At3 reads element (i, j, k) of a rank-3 tensor.
func (t *Tensor) At3(i, j, k int) float32 {
	return t.Data[(i*t.Shape[1]+j)*t.Shape[2]+k]
}

// Set3 writes element (i, j, k) of a rank-3 tensor.
func (t *Tensor) Set3(i, j, k int, v float32) {
	t.Data[(i*t.Shape[1]+j)*t.Shape[2]+k] = v
}

// At2 reads element (i, j) of a rank-2 tensor.
func (t *Tensor) At2(i, j int) float32 {
	return t.Data[i*t.Shape[1]+j]
}

// Set2 writes element (i, j) of a rank-2 tensor.
func (t *Tensor) Set2(i, j int, v float32) {
	t.Data[i*t.Shape[1]+j] = v
}

// Row returns the contiguous innermost row at the given outer indices of a
// rank-3 tensor, as a mutable view into the backing store.
func (t *Tensor) Row(i, j int) []float32 {
	c := t.Shape[2]
	off := (i*t.Shape[1] + j) * c
	return t.Data[off : off+c]
}

// SliceTime returns a copy of x[:, from:to, :] for a rank-3 tensor.
func (t *Tensor) SliceTime(from, to int) *Tensor {
	b, n, c := t.Shape[0], t.Shape[1], t.Shape[2]
	if from < 0 || to > n || from > to {
		panic(fmt.Sprintf("tensor: time slice [%d:%d) out of range 0..%d", from, to, n))
	}
	out := New(b, to-from, c)
	for i := 0; i < b; i++ {
		src := t.Data[(i*n+from)*c : (i*n+to)*c]
		copy(out.Data[i*(to-from)*c:], src)
	}
	return out
}

// SameShape reports whether t and o have identical shapes.
func (t *Tensor) SameShape(o *Tensor) bool {
	if len(t.Shape) != len(o.Shape) {
		return false
	}
	for i := range t.Shape {
		if t.Shape[i] != o.Shape[i] {
			return false
		}
	}
	return true
}
