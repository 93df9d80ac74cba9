// Package holohash implements the HoloHash identifier format.
package holohash

import (
	"bytes"
)

const (
	// CoreLength is the size of the identity payload.
	CoreLength = 32

	// HashLength is the total size of a HoloHash.
	HashLength = PrefixLength + CoreLength + LocationLength
)

// HoloHash is a 39-byte self-describing identifier:
// prefix(3) || core(32) || location(4).
//
// The zero value is not a valid hash.
type HoloHash [HashLength]byte

// Encode builds the HoloHash of type t over a 32-byte core payload.
func Encode(t HashType, core []byte) (HoloHash, error) {
	var h HoloHash
	if len(core) != CoreLength {
		return h, ErrInvalidPayloadLength.WithDetails("got %d bytes, want %d", len(core), CoreLength)
	}
	prefix, ok := t.Prefix()
	if !ok {
		return h, ErrUnknownHashType.WithDetails("%s", t)
	}

	loc := Location(core)
	copy(h[:PrefixLength], prefix[:])
	copy(h[PrefixLength:PrefixLength+CoreLength], core)
	copy(h[PrefixLength+CoreLength:], loc[:])
	return h, nil
}

// DecodeAndValidate splits a raw 39-byte hash into its type and core payload.
// The location is verified before the prefix is resolved.
func DecodeAndValidate(raw []byte) (HashType, []byte, error) {
	if len(raw) != HashLength {
		return TypeUnknown, nil, ErrInvalidHashLength.WithDetails("got %d bytes, want %d", len(raw), HashLength)
	}

	core := raw[PrefixLength : PrefixLength+CoreLength]
	want := Location(core)
	if !bytes.Equal(want[:], raw[PrefixLength+CoreLength:]) {
		return TypeUnknown, nil, ErrChecksumMismatch.WithDetails("location %x, computed %x", raw[PrefixLength+CoreLength:], want[:])
	}

	var prefix [PrefixLength]byte
	copy(prefix[:], raw[:PrefixLength])
	t, err := TypeFromPrefix(prefix)
	if err != nil {
		return TypeUnknown, nil, err
	}

	out := make([]byte, CoreLength)
	copy(out, core)
	return t, out, nil
}

// FromBytes validates raw and returns it as a HoloHash.
func FromBytes(raw []byte) (HoloHash, error) {
	var h HoloHash
	if _, _, err := DecodeAndValidate(raw); err != nil {
		return h, err
	}
	copy(h[:], raw)
	return h, nil
}

// FromBytesOfType is FromBytes with a HashType assertion.
func FromBytesOfType(raw []byte, expected HashType) (HoloHash, error) {
	var h HoloHash
	t, _, err := DecodeAndValidate(raw)
	if err != nil {
		return h, err
	}
	if t != expected {
		return h, ErrHashTypeMismatch.WithDetails("got %s, want %s", t, expected)
	}
	copy(h[:], raw)
	return h, nil
}

// Bytes returns a copy of the 39 bytes.
func (h HoloHash) Bytes() []byte {
	out := make([]byte, HashLength)
	copy(out, h[:])
	return out
}

// Type returns the HashType named by the prefix, or TypeUnknown.
func (h HoloHash) Type() HashType {
	var prefix [PrefixLength]byte
	copy(prefix[:], h[:PrefixLength])
	t, err := TypeFromPrefix(prefix)
	if err != nil {
		return TypeUnknown
	}
	return t
}

// Core returns a copy of the 32-byte core payload.
func (h HoloHash) Core() []byte {
	out := make([]byte, CoreLength)
	copy(out, h[PrefixLength:PrefixLength+CoreLength])
	return out
}

// Location returns the trailing 4 location bytes as stored.
func (h HoloHash) Location() [LocationLength]byte {
	var loc [LocationLength]byte
	copy(loc[:], h[PrefixLength+CoreLength:])
	return loc
}

// IsZero reports whether h is the zero value.
func (h HoloHash) IsZero() bool {
	return h == HoloHash{}
}

// Validate re-runs DecodeAndValidate over h.
func (h HoloHash) Validate() error {
	_, _, err := DecodeAndValidate(h[:])
	return err
}
