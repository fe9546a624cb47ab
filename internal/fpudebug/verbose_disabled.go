//go:build !fpu_verbose
// +build !fpu_verbose

package fpudebug

// Verbose is compiled out by default so the cache's hot emission path
// never pays for the trace formatting. Build with -tags fpu_verbose to
// flip it on.
const Verbose = false
