// writer.go serializes a Stream into the container framing.

package ecdc

import (
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// Write frames and serializes s to w.
func Write(w io.Writer, s *Stream) error {
	if err := s.validate(); err != nil {
		return err
	}
	if _, err := w.Write(magic[:]); err != nil {
		return fmt.Errorf("ecdc: write magic: %w", err)
	}
	if _, err := w.Write([]byte{Version}); err != nil {
		return fmt.Errorf("ecdc: write version: %w", err)
	}
	if err := msgpack.NewEncoder(w).Encode(s); err != nil {
		return fmt.Errorf("ecdc: encode payload: %w", err)
	}
	return nil
}
