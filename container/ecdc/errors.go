// errors.go defines public error types for the ecdc package.

package ecdc

import "errors"

var (
	// ErrBadMagic indicates data that does not start with the "ECDC"
	// capture pattern.
	ErrBadMagic = errors.New("ecdc: bad magic signature")

	// ErrVersion indicates an unsupported format version.
	ErrVersion = errors.New("ecdc: unsupported version")

	// ErrCorrupt indicates a payload whose fields are internally
	// inconsistent.
	ErrCorrupt = errors.New("ecdc: corrupt stream")
)
