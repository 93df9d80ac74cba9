package connection

import (
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/yndnr/hcstate-go/internal/cli/connection/conductortest"
	"github.com/yndnr/hcstate-go/internal/telemetry/logger"
	"github.com/yndnr/hcstate-go/pkg/holohash"
)

func quietLogger(t *testing.T) logger.Logger {
	t.Helper()
	l, err := logger.New(logger.Config{Level: "error", Output: io.Discard})
	if err != nil {
		t.Fatalf("logger.New() error = %v", err)
	}
	return l
}

func testConfig(t *testing.T, s *conductortest.Server) Config {
	t.Helper()
	return Config{
		Host:      s.Host(),
		AdminPort: s.Port(),
		AppPort:   s.Port(),
		Timeout:   2 * time.Second,
		Logger:    quietLogger(t),
	}
}

func mustHash(t *testing.T, typ holohash.HashType, seed byte) holohash.HoloHash {
	t.Helper()
	h, err := holohash.Encode(typ, bytes.Repeat([]byte{seed}, holohash.CoreLength))
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	return h
}

func mustCell(t *testing.T, seed byte) holohash.CellID {
	t.Helper()
	return holohash.CellID{
		DnaHash:     mustHash(t, holohash.TypeDna, seed),
		AgentPubKey: mustHash(t, holohash.TypeAgent, seed+1),
	}
}
