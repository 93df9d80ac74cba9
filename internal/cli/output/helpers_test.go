package output

import (
	"bytes"
	"testing"

	"github.com/yndnr/hcstate-go/pkg/holohash"
)

func mustHash(t *testing.T, typ holohash.HashType, fill byte) holohash.HoloHash {
	t.Helper()
	h, err := holohash.Encode(typ, bytes.Repeat([]byte{fill}, holohash.CoreLength))
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	return h
}
