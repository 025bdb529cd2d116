// Package safego launches background goroutines that survive panics.
package safego

import "log/slog"

// Go runs fn in a new goroutine and recovers any panic, logging it instead of
// crashing the process. Use it for fire-and-forget work (the metrics server,
// cleanup jobs) where an unrecovered panic would kill the goroutine silently.
func Go(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("panic in background goroutine", "panic", r)
			}
		}()
		fn()
	}()
}
