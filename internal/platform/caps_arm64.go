//go:build arm64
// +build arm64

package platform

// Every arm64 host implements VFPv4/NEON: the full 32-register scalar
// FP file and 128-bit SIMD are always present.
func detectCaps() Caps {
	return Caps{NumScalarFPRegs: 32, HasSIMD: true}
}
