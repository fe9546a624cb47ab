package fpu

import "log"

// Logger receives the diagnostics the cache emits for translator-
// contract violations and internal consistency failures: always
// logged, never panicked or returned as an error the cache itself
// propagates. See DESIGN.md for why this stays on the standard
// library instead of a third-party logging dependency.
type Logger interface {
	Errorf(format string, args ...any)
}

// stdLogger adapts the standard library's log package to Logger.
type stdLogger struct{}

func (stdLogger) Errorf(format string, args ...any) {
	log.Printf("fpu: "+format, args...)
}
