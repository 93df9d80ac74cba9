package logger

import (
	"log/slog"
	"strings"
)

// Redacted replaces the value of any attribute whose key names a secret.
const Redacted = "[redacted]"

// Key suffixes that mark app tokens, capability secrets and similar.
// Public keys such as agent_pub_key never match.
var secretSuffixes = []string{"token", "secret", "password", "authorization"}

// IsSecretKey reports whether an attribute key names a secret.
func IsSecretKey(key string) bool {
	k := strings.ToLower(key)
	for _, s := range secretSuffixes {
		if strings.HasSuffix(k, s) {
			return true
		}
	}
	return false
}

func maskAttr(_ []string, a slog.Attr) slog.Attr {
	v := a.Value.Resolve()
	switch {
	case v.Kind() == slog.KindGroup:
		group := v.Group()
		masked := make([]slog.Attr, len(group))
		for i, g := range group {
			masked[i] = maskAttr(nil, g)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(masked...)}
	case !IsSecretKey(a.Key):
		return a
	case v.Kind() == slog.KindString && v.String() == "":
		return a
	}
	return slog.String(a.Key, Redacted)
}
