// Package holohash implements the HoloHash identifier format.
package holohash

import (
	"golang.org/x/crypto/blake2b"
)

const (
	// LocationLength is the size of the DHT location suffix.
	LocationLength = 4

	digestLength = 16
)

// Location computes the 4-byte DHT location of payload.
//
// The payload is hashed with unkeyed BLAKE2b-128 and the digest is folded
// into 32 bits by XOR-ing its four 4-byte words in order.
func Location(payload []byte) [LocationLength]byte {
	h, err := blake2b.New(digestLength, nil)
	if err != nil {
		// Only reachable with a size outside 1..64 or an oversized key.
		panic(err)
	}
	h.Write(payload)
	digest := h.Sum(nil)

	var loc [LocationLength]byte
	copy(loc[:], digest[:LocationLength])
	for off := LocationLength; off < digestLength; off += LocationLength {
		for k := 0; k < LocationLength; k++ {
			loc[k] ^= digest[off+k]
		}
	}
	return loc
}
