// Package safetensors reads the safetensors weight-artifact format: an
// 8-byte little-endian header length, a JSON header mapping tensor names
// to dtype, shape, and byte offsets, and a raw little-endian data buffer.
//
// Only reading is supported, and only the dtypes trained codec artifacts
// use: F32 and F16. F16 values are widened to float32.
package safetensors

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/thesyncim/goencodec/tensor"
)

// Errors returned while reading an artifact.
var (
	// ErrBadHeader indicates a missing, oversized, or unparseable header.
	ErrBadHeader = errors.New("safetensors: bad header")

	// ErrUnsupportedDtype indicates a tensor stored with a dtype other
	// than F32 or F16.
	ErrUnsupportedDtype = errors.New("safetensors: unsupported dtype")

	// ErrTruncated indicates data offsets pointing outside the buffer or
	// disagreeing with the tensor shape.
	ErrTruncated = errors.New("safetensors: truncated or inconsistent data")
)

// headerLimit caps the JSON header size to keep corrupt files from
// triggering huge allocations.
const headerLimit = 100 << 20

type entry struct {
	Dtype       string `json:"dtype"`
	Shape       []int  `json:"shape"`
	DataOffsets [2]int `json:"data_offsets"`
}

// ReadFile reads a safetensors artifact from disk.
func ReadFile(path string) (map[string]*tensor.Tensor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("safetensors: open: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read parses a safetensors artifact and returns its tensors keyed by
// name.
func Read(r io.Reader) (map[string]*tensor.Tensor, error) {
	var lenBuf [8]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadHeader, err)
	}
	headerLen := binary.LittleEndian.Uint64(lenBuf[:])
	if headerLen == 0 || headerLen > headerLimit {
		return nil, fmt.Errorf("%w: header length %d", ErrBadHeader, headerLen)
	}

	headerBuf := make([]byte, headerLen)
	if _, err := io.ReadFull(r, headerBuf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadHeader, err)
	}

	var header map[string]json.RawMessage
	if err := json.Unmarshal(headerBuf, &header); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadHeader, err)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("safetensors: read data: %w", err)
	}

	out := make(map[string]*tensor.Tensor, len(header))
	for name, raw := range header {
		if name == "__metadata__" {
			continue
		}
		var e entry
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, fmt.Errorf("%w: entry %q: %v", ErrBadHeader, name, err)
		}
		t, err := decodeTensor(name, &e, data)
		if err != nil {
			return nil, err
		}
		out[name] = t
	}
	return out, nil
}

func decodeTensor(name string, e *entry, data []byte) (*tensor.Tensor, error) {
	count := 1
	for _, d := range e.Shape {
		if d < 0 {
			return nil, fmt.Errorf("%w: %q shape %v", ErrBadHeader, name, e.Shape)
		}
		count *= d
	}

	var elemSize int
	switch e.Dtype {
	case "F32":
		elemSize = 4
	case "F16":
		elemSize = 2
	default:
		return nil, fmt.Errorf("%w: %q is %s", ErrUnsupportedDtype, name, e.Dtype)
	}

	start, end := e.DataOffsets[0], e.DataOffsets[1]
	if start < 0 || end < start || end > len(data) || end-start != count*elemSize {
		return nil, fmt.Errorf("%w: %q offsets [%d, %d)", ErrTruncated, name, start, end)
	}
	buf := data[start:end]

	t := tensor.New(e.Shape...)
	switch e.Dtype {
	case "F32":
		for i := 0; i < count; i++ {
			t.Data[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
		}
	case "F16":
		for i := 0; i < count; i++ {
			t.Data[i] = float16to32(binary.LittleEndian.Uint16(buf[i*2:]))
		}
	}
	return t, nil
}

// float16to32 widens an IEEE 754 binary16 value, including subnormals,
// infinities, and NaN.
func float16to32(h uint16) float32 {
	sign := uint32(h>>15) & 1
	exp := uint32(h>>10) & 0x1f
	frac := uint32(h) & 0x3ff

	var bits uint32
	switch {
	case exp == 0 && frac == 0:
		bits = sign << 31
	case exp == 0:
		// Subnormal: renormalize.
		e := uint32(127 - 15 + 1)
		for frac&0x400 == 0 {
			frac <<= 1
			e--
		}
		frac &= 0x3ff
		bits = sign<<31 | e<<23 | frac<<13
	case exp == 0x1f:
		bits = sign<<31 | 0xff<<23 | frac<<13
	default:
		bits = sign<<31 | (exp+127-15)<<23 | frac<<13
	}
	return math.Float32frombits(bits)
}
