// Package ecdc implements a simple on-disk container for encoded codec
// streams: the quantizer codes and per-chunk scale factors produced by an
// encode call, together with the geometry needed to decode them later.
//
// The format is a 4-byte "ECDC" magic signature, a 1-byte version, and a
// msgpack-encoded payload:
//
//	Bytes 0-3:  "ECDC" capture pattern
//	Byte  4:    format version (currently 1)
//	Bytes 5..:  msgpack(Stream)
//
// The container stores codes verbatim; it adds no entropy coding of its
// own. It exists so encoded audio can cross a storage or transmission
// boundary and be decoded by a model with the same configuration.
package ecdc
