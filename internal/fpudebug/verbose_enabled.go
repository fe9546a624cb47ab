//go:build fpu_verbose
// +build fpu_verbose

package fpudebug

// Verbose is true when built with -tags fpu_verbose.
const Verbose = true
