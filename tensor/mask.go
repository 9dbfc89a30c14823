package tensor

// Mask is a (batch, time) boolean validity mask. True marks a real audio
// sample, false marks padding appended by the preprocessor.
type Mask struct {
	Batch  int
	Length int
	Data   []bool
}

// NewMask allocates an all-false mask.
func NewMask(batch, length int) *Mask {
	return &Mask{Batch: batch, Length: length, Data: make([]bool, batch*length)}
}

// FullMask allocates an all-true mask.
func FullMask(batch, length int) *Mask {
	m := NewMask(batch, length)
	for i := range m.Data {
		m.Data[i] = true
	}
	return m
}

// At reports the mask value at (b, t).
func (m *Mask) At(b, t int) bool { return m.Data[b*m.Length+t] }

// Set writes the mask value at (b, t).
func (m *Mask) Set(b, t int, v bool) { m.Data[b*m.Length+t] = v }

// SliceTime returns a copy of m[:, from:to).
func (m *Mask) SliceTime(from, to int) *Mask {
	out := NewMask(m.Batch, to-from)
	for b := 0; b < m.Batch; b++ {
		copy(out.Data[b*out.Length:(b+1)*out.Length], m.Data[b*m.Length+from:b*m.Length+to])
	}
	return out
}
