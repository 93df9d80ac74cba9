// Package holohash implements the HoloHash identifier format used by the
// Holochain conductor.
//
// Hash Format (39 bytes):
//
//   - Prefix: 3 bytes identifying the HashType (e.g. 0x84 0x2d 0x24 for a DNA)
//   - Core: 32 bytes of identity data (public key, content hash)
//   - Location: 4 bytes, BLAKE2b-128 digest of the core XOR-folded to 32 bits
//
// Text Forms:
//
//   - Standard padded base64 of all 39 bytes ("hC0k...")
//   - Multibase "u" + unpadded base64url of all 39 bytes ("uhC0k...")
//
// Everything in this package is pure computation and safe for concurrent use.
package holohash
