// reader.go parses the container framing and payload.

package ecdc

import (
	"bytes"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// Read parses an ecdc container from r.
func Read(r io.Reader) (*Stream, error) {
	var head [5]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return nil, fmt.Errorf("ecdc: read header: %w", err)
	}
	if !bytes.Equal(head[:4], magic[:]) {
		return nil, ErrBadMagic
	}
	if head[4] != Version {
		return nil, fmt.Errorf("%w: %d", ErrVersion, head[4])
	}

	var s Stream
	if err := msgpack.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("ecdc: decode payload: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}
