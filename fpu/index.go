package fpu

// The guest register index space is flat: NumFPRegs ordinary FP
// registers, then NumVFPULanes VFPU lanes (exposed as NumVFPURegs
// four-lane vectors), then a configurable number of compiler scratch
// slots.
const (
	NumFPRegs    = 32
	NumVFPURegs  = 32
	LanesPerVReg = 4
	NumVFPULanes = NumVFPURegs * LanesPerVReg

	// DefaultNumScratch is used when Config.NumScratch is zero.
	DefaultNumScratch = 16
)

// vfpuBase is the guest index of VFPU lane 0 of vector register 0.
const vfpuBase = NumFPRegs

// scratchBase returns the guest index of scratch slot 0, given how
// many scratch slots this cache was configured with.
func scratchBase(numScratch int) int {
	return NumFPRegs + NumVFPULanes
}

// numGuestRegs returns the size of the flat guest index space for a
// cache configured with numScratch scratch slots.
func numGuestRegs(numScratch int) int {
	return NumFPRegs + NumVFPULanes + numScratch
}

// isScratch reports whether guest index g names a scratch slot (which
// has no memory backing) rather than an ordinary FP register or VFPU
// lane.
func isScratch(g, numScratch int) bool {
	return g >= scratchBase(numScratch)
}

// vfpuLaneOf returns the (vector id, lane) pair addressed by guest
// index g, assuming g names a VFPU lane.
func vfpuLaneOf(g int) (vec int, lane int) {
	v := g - vfpuBase
	return v / LanesPerVReg, v % LanesPerVReg
}

// vfpuLaneGuestIndex is the inverse of vfpuLaneOf.
func vfpuLaneGuestIndex(vec, lane int) int {
	return vfpuBase + vec*LanesPerVReg + lane
}

// offsetOf computes the byte offset of guest register g within the
// guest CPU state structure: (g+32)*4. Out-of-range indices are a
// translator bug; the caller is expected to have already validated g
// against numGuestRegs.
func offsetOf(g int) int32 {
	return int32(g+32) << 2
}
