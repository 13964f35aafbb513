package logger

import (
	"log/slog"
	"strconv"
	"strings"
)

// Attribute keys whose values must never reach the log: stored payloads can
// be arbitrary user data.
var sensitiveKeyPatterns = []string{
	"value",
	"payload",
	"password",
	"secret",
}

const redactedValue = "***REDACTED***"

// DefaultTruncateLen is the default maximum length used by Truncate.
const DefaultTruncateLen = 64

func redactSensitive(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		if a.Value.String() != "" && IsSensitiveKey(a.Key) {
			return slog.String(a.Key, redactedValue)
		}
	case slog.KindAny:
		if _, ok := a.Value.Any().([]byte); ok && IsSensitiveKey(a.Key) {
			return slog.String(a.Key, redactedValue)
		}
	case slog.KindGroup:
		attrs := a.Value.Group()
		newAttrs := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			newAttrs[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(newAttrs...)}
	}
	return a
}

// IsSensitiveKey reports whether an attribute key names sensitive content.
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}

// Truncate renders b as a quoted Go string of at most max payload bytes,
// suitable for logging binary keys. max <= 0 uses DefaultTruncateLen.
func Truncate(b []byte, max int) string {
	if max <= 0 {
		max = DefaultTruncateLen
	}
	if len(b) <= max {
		return strconv.Quote(string(b))
	}
	return strconv.Quote(string(b[:max])) + "..." + "(" + strconv.Itoa(len(b)) + " bytes)"
}
