// Package holohash implements the HoloHash identifier format.
package holohash

import (
	"strconv"
	"strings"
)

// CellID identifies a running cell: a DNA instantiated for an agent.
type CellID struct {
	DnaHash     HoloHash `json:"dna_hash" yaml:"dna_hash"`
	AgentPubKey HoloHash `json:"agent_pub_key" yaml:"agent_pub_key"`
}

// NewCellID validates both halves and pairs them.
func NewCellID(dna, agent HoloHash) (CellID, error) {
	if _, err := FromBytesOfType(dna[:], TypeDna); err != nil {
		return CellID{}, err
	}
	if _, err := FromBytesOfType(agent[:], TypeAgent); err != nil {
		return CellID{}, err
	}
	return CellID{DnaHash: dna, AgentPubKey: agent}, nil
}

// BuildCellID parses the DNA text before the agent text; the first
// failure is returned.
func BuildCellID(dnaText, agentText string) (CellID, error) {
	dna, err := ParseTextForm(dnaText, TypeDna)
	if err != nil {
		return CellID{}, err
	}
	agent, err := ParseTextForm(agentText, TypeAgent)
	if err != nil {
		return CellID{}, err
	}
	return CellID{DnaHash: dna, AgentPubKey: agent}, nil
}

// ParseCellIDText parses the pair form of a cell id. Accepted shapes:
//
//	[ 'hC0k...', 'hCAk...' ]
//	["hC0k...","hCAk..."]
//	hC0k...,hCAk...
func ParseCellIDText(text string) (CellID, error) {
	body := strings.TrimSpace(text)
	body = strings.TrimPrefix(body, "[")
	body = strings.TrimSuffix(body, "]")

	parts := strings.Split(body, ",")
	if len(parts) != 2 {
		return CellID{}, ErrMalformedEncoding.WithDetails("cell id needs 2 elements, got %d", len(parts))
	}
	for i, p := range parts {
		parts[i] = strings.Trim(strings.TrimSpace(p), `'"`)
	}
	return BuildCellID(parts[0], parts[1])
}

// IsIndex reports whether s is the canonical decimal form of a
// non-negative integer ("0", "12"; not "012", "+1" or "-0").
func IsIndex(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || strconv.Itoa(n) != s {
		return 0, false
	}
	return n, true
}

// ResolveCellID resolves arg either as an index into known or as the
// textual pair form.
func ResolveCellID(arg string, known []CellID) (CellID, error) {
	if n, ok := IsIndex(arg); ok {
		if n >= len(known) {
			return CellID{}, ErrIndexOutOfRange.WithDetails("index %d, %d cells known", n, len(known))
		}
		return known[n], nil
	}
	return ParseCellIDText(arg)
}

// String renders the cell id in the bracketed pair form accepted by
// ParseCellIDText.
func (c CellID) String() string {
	return "[" + c.DnaHash.String() + ", " + c.AgentPubKey.String() + "]"
}

// Wire returns the cell id as the two raw byte slices the conductor expects.
func (c CellID) Wire() [][]byte {
	return [][]byte{c.DnaHash.Bytes(), c.AgentPubKey.Bytes()}
}

// CellIDFromWire validates a conductor-supplied [dna, agent] pair.
func CellIDFromWire(pair [][]byte) (CellID, error) {
	if len(pair) != 2 {
		return CellID{}, ErrMalformedEncoding.WithDetails("cell id needs 2 elements, got %d", len(pair))
	}
	dna, err := FromBytes(pair[0])
	if err != nil {
		return CellID{}, err
	}
	agent, err := FromBytes(pair[1])
	if err != nil {
		return CellID{}, err
	}
	return NewCellID(dna, agent)
}
