//go:build !arm64
// +build !arm64

package platform

// Off-device builds (e.g. running the cache's unit tests on a dev
// workstation) get the conservative VFPv3-D16, no-NEON profile so the
// no-SIMD allocation order and code paths stay exercised by default.
func detectCaps() Caps {
	return Caps{NumScalarFPRegs: 16, HasSIMD: false}
}
