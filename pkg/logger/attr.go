package logger

import (
	"log/slog"
	"time"
)

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Toggle records a toggle name under the key "toggle".
func Toggle(name string) slog.Attr {
	return slog.String("toggle", name)
}

// Keys records a list of toggle names under the key "keys".
func Keys(keys []string) slog.Attr {
	return slog.Any("keys", keys)
}

// SDKKey records the client key under "sdk_key", keeping only its last
// four characters.
func SDKKey(key string) slog.Attr {
	if len(key) > 4 {
		key = "****" + key[len(key)-4:]
	}
	return slog.String("sdk_key", key)
}

// Reason records an evaluation reason under the key "reason".
func Reason(reason string) slog.Attr {
	return slog.String("reason", reason)
}

// Generation records a polling generation under the key "generation".
func Generation(gen uint64) slog.Attr {
	return slog.Uint64("generation", gen)
}

// LastModified records a snapshot freshness marker under "last_modified".
func LastModified(marker string) slog.Attr {
	return slog.String("last_modified", marker)
}

// RetryCount records the retry count under the key "retry_count".
func RetryCount(count int) slog.Attr {
	return slog.Int("retry_count", count)
}

// Duration records a duration under the key "duration".
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}
