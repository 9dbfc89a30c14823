package tensor

import "fmt"

// Int is a dense row-major int32 array, used for quantizer code indices.
type Int struct {
	Shape []int
	Data  []int32
}

// NewInt allocates a zero-filled int32 tensor with the given shape.
func NewInt(shape ...int) *Int {
	n := 1
	for _, d := range shape {
		if d < 0 {
			panic(fmt.Sprintf("tensor: negative dimension %d", d))
		}
		n *= d
	}
	s := make([]int, len(shape))
	copy(s, shape)
	return &Int{Shape: s, Data: make([]int32, n)}
}

// IntFromSlice wraps data in an int tensor with the given shape without
// copying. The slice must have exactly product(shape) elements.
func IntFromSlice(data []int32, shape ...int) *Int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	if n != len(data) {
		panic(fmt.Sprintf("tensor: shape %v needs %d elements, got %d", shape, n, len(data)))
	}
	s := make([]int, len(shape))
	copy(s, shape)
	return &Int{Shape: s, Data: data}
}

// Dims returns the rank of the tensor.
func (t *Int) Dims() int { return len(t.Shape) }

// Dim returns the size of dimension i.
func (t *Int) Dim(i int) int { return t.Shape[i] }

// At3 reads element (i, j, k) of a rank-3 tensor.
func (t *Int) At3(i, j, k int) int32 {
	return t.Data[(i*t.Shape[1]+j)*t.Shape[2]+k]
}

// Set3 writes element (i, j, k) of a rank-3 tensor.
func (t *Int) Set3(i, j, k int, v int32) {
	t.Data[(i*t.Shape[1]+j)*t.Shape[2]+k] = v
}
