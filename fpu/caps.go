package fpu

import "github.com/dynarec-go/mipsfpu/internal/platform"

// HostCaps mirrors the two capability bits the cache reads at
// construction time: how many scalar FP registers the host exposes,
// and whether the host has 128-bit SIMD.
type HostCaps struct {
	NumScalarFPRegs int
	HasSIMD         bool
}

func hostCapsFromPlatform(c platform.Caps) HostCaps {
	return HostCaps{NumScalarFPRegs: c.NumScalarFPRegs, HasSIMD: c.HasSIMD}
}

// DetectHostCaps probes the default capability set for this build's
// GOARCH. A translator that already knows the real device capabilities
// should build a HostCaps value directly instead.
func DetectHostCaps() HostCaps {
	return hostCapsFromPlatform(platform.DetectCaps())
}

// scalarAllocationOrder returns the fixed allocation order for scalar
// mapping: S2..S15 with no SIMD (S0-S1 reserved as emission scratch),
// or S4..S15 with SIMD (additional low-end reservation because quads
// Q0-Q3 alias S0-S15 and must stay free for the scalar view; see
// quadAllocationOrder).
func scalarAllocationOrder(caps HostCaps) []int {
	n := caps.NumScalarFPRegs
	if n <= 0 {
		n = maxHostScalarRegs
	}
	first := 2
	if caps.HasSIMD {
		first = 4
	}
	last := 15
	if last > n-1 {
		last = n - 1
	}
	if first > last {
		return nil
	}
	order := make([]int, 0, last-first+1)
	for i := first; i <= last; i++ {
		order = append(order, i)
	}
	return order
}

// numQuads is fixed regardless of host capability; MappableQuad gates
// which of them the quad engine is allowed to touch.
const numQuads = 16

// quadAllocationOrder is the fixed first-fit search order over the
// mappable quad range.
func quadAllocationOrder(caps HostCaps) []int {
	order := make([]int, 0, numQuads)
	for q := 0; q < numQuads; q++ {
		if MappableQuad(q, caps) {
			order = append(order, q)
		}
	}
	return order
}

// MappableQuad reports whether quad q may be used by QMapReg: never
// when the host lacks SIMD at all, and only q >= 4 when it has SIMD.
// Quads 0-3 alias the low scalar registers (S0-S15) the scalar
// allocation order reserves for itself in SIMD mode, so they are
// excluded; see DESIGN.md for the q >= 4 threshold rationale.
func MappableQuad(q int, caps HostCaps) bool {
	if !caps.HasSIMD {
		return false
	}
	return q >= 4
}
