// Package holohash implements the HoloHash identifier format.
package holohash

import (
	"encoding/base64"
	"strings"

	"github.com/multiformats/go-multibase"
)

// Sigil marks the unpadded base64url text form.
const Sigil = 'u'

// ParseTextForm decodes text into a HoloHash of the expected type.
//
// Text starting with 'u' is unpadded base64url after the sigil; anything else
// is standard padded base64. The decoded value is either a full 39-byte hash,
// which must validate and carry the expected type, or a bare 32-byte core,
// which is encoded as expected.
func ParseTextForm(text string, expected HashType) (HoloHash, error) {
	raw, err := DecodeText(text)
	if err != nil {
		return HoloHash{}, err
	}

	switch len(raw) {
	case CoreLength:
		return Encode(expected, raw)
	case HashLength:
		return FromBytesOfType(raw, expected)
	default:
		return HoloHash{}, ErrInvalidPayloadLength.WithDetails("decoded %d bytes, want %d or %d", len(raw), CoreLength, HashLength)
	}
}

// Parse decodes a full 39-byte hash of any registered type from text.
func Parse(text string) (HoloHash, error) {
	raw, err := DecodeText(text)
	if err != nil {
		return HoloHash{}, err
	}
	return FromBytes(raw)
}

// DecodeText decodes either text form to raw bytes without checking
// length, prefix or checksum.
func DecodeText(text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrMalformedEncoding.WithDetails("empty input")
	}

	if text[0] == Sigil {
		enc, raw, err := multibase.Decode(text)
		if err != nil || enc != multibase.Base64url {
			return nil, ErrMalformedEncoding.WithDetails("invalid base64url").WithCause(err)
		}
		return raw, nil
	}

	raw, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return nil, ErrMalformedEncoding.WithDetails("invalid base64").WithCause(err)
	}
	return raw, nil
}

// String returns the 'u'-prefixed base64url form.
func (h HoloHash) String() string {
	s, err := multibase.Encode(multibase.Base64url, h[:])
	if err != nil {
		// Base64url is always a registered encoding.
		return string(Sigil) + base64.RawURLEncoding.EncodeToString(h[:])
	}
	return s
}

// Base64 returns the standard padded base64 form.
func (h HoloHash) Base64() string {
	return base64.StdEncoding.EncodeToString(h[:])
}

// MarshalText implements encoding.TextMarshaler using the 'u' form. The
// zero value marshals as empty text.
func (h HoloHash) MarshalText() ([]byte, error) {
	if h.IsZero() {
		return []byte{}, nil
	}
	return []byte(h.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Either text form is
// accepted; the hash must be a full, valid 39-byte value. Empty text
// yields the zero value.
func (h *HoloHash) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*h = HoloHash{}
		return nil
	}
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}
