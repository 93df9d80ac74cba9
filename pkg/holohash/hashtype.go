// Package holohash implements the HoloHash identifier format.
package holohash

import (
	"fmt"
	"strings"
)

// PrefixLength is the size of the HashType prefix.
const PrefixLength = 3

// HashType identifies what a HoloHash addresses.
type HashType uint8

const (
	// TypeUnknown is the zero value and never appears in a valid hash.
	TypeUnknown HashType = iota
	TypeAgent
	TypeEntry
	TypeDhtOp
	TypeAction
	TypeWasm
	TypeWarrant
	TypeDna
	TypeExternal
)

var prefixes = map[HashType][PrefixLength]byte{
	TypeAgent:    {0x84, 0x20, 0x24},
	TypeEntry:    {0x84, 0x21, 0x24},
	TypeDhtOp:    {0x84, 0x24, 0x24},
	TypeAction:   {0x84, 0x29, 0x24},
	TypeWasm:     {0x84, 0x2a, 0x24},
	TypeWarrant:  {0x84, 0x2c, 0x24},
	TypeDna:      {0x84, 0x2d, 0x24},
	TypeExternal: {0x84, 0x2f, 0x24},
}

var typesByPrefix = func() map[[PrefixLength]byte]HashType {
	m := make(map[[PrefixLength]byte]HashType, len(prefixes))
	for t, p := range prefixes {
		m[p] = t
	}
	return m
}()

var typeNames = map[HashType]string{
	TypeAgent:    "agent",
	TypeEntry:    "entry",
	TypeDhtOp:    "dht_op",
	TypeAction:   "action",
	TypeWasm:     "wasm",
	TypeWarrant:  "warrant",
	TypeDna:      "dna",
	TypeExternal: "external",
}

// Types returns every registered HashType in declaration order.
func Types() []HashType {
	return []HashType{
		TypeAgent, TypeEntry, TypeDhtOp, TypeAction,
		TypeWasm, TypeWarrant, TypeDna, TypeExternal,
	}
}

// Prefix returns the 3-byte prefix of t.
func (t HashType) Prefix() ([PrefixLength]byte, bool) {
	p, ok := prefixes[t]
	return p, ok
}

// String returns the snake_case name of t.
func (t HashType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", uint8(t))
}

// TypeFromPrefix resolves a prefix to its HashType.
func TypeFromPrefix(prefix [PrefixLength]byte) (HashType, error) {
	t, ok := typesByPrefix[prefix]
	if !ok {
		return TypeUnknown, ErrUnknownHashType.WithDetails("prefix %x", prefix[:])
	}
	return t, nil
}

// ParseHashType resolves a type name such as "dna" or "agent".
// "header" is accepted as the older name of "action".
func ParseHashType(name string) (HashType, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "header" {
		return TypeAction, nil
	}
	name = strings.ReplaceAll(name, "-", "_")
	for t, n := range typeNames {
		if n == name {
			return t, nil
		}
	}
	return TypeUnknown, ErrUnknownHashType.WithDetails("name %q", name)
}
