package logger

import (
	"log/slog"
	"testing"
)

func TestIsSecretKey(t *testing.T) {
	tests := map[string]bool{
		"app_token":     true,
		"cap_secret":    true,
		"Authorization": true,
		"token":         true,
		"agent_pub_key": false,
		"cell_id":       false,
		"token_count":   false,
	}
	for key, want := range tests {
		if got := IsSecretKey(key); got != want {
			t.Errorf("IsSecretKey(%q) = %v, want %v", key, got, want)
		}
	}
}

func TestMasking(t *testing.T) {
	l, buf := jsonLogger(t, "info")
	agent := "uhCAkAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAACZ9h_C"

	l.Info("zome call",
		"app_token", "c2VjcmV0LWFwcC10b2tlbg==",
		"cap_secret", []byte{1, 2, 3},
		"agent_pub_key", agent,
		"session_token", "",
		slog.Group("conn", "app_token", "xyz", "port", 8888),
	)

	entry := decodeLine(t, buf)
	for _, key := range []string{"app_token", "cap_secret"} {
		if entry[key] != Redacted {
			t.Errorf("%s = %v, want %s", key, entry[key], Redacted)
		}
	}
	if entry["agent_pub_key"] != agent {
		t.Errorf("agent_pub_key = %v", entry["agent_pub_key"])
	}
	if entry["session_token"] != "" {
		t.Errorf("empty secrets stay empty, got %v", entry["session_token"])
	}
	conn, _ := entry["conn"].(map[string]any)
	if conn["app_token"] != Redacted || conn["port"] != float64(8888) {
		t.Errorf("conn = %v", conn)
	}
}
