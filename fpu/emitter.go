package fpu

// Emitter is the abstract ARM instruction-emission collaborator the
// cache drives. The cache only ever calls these methods; the exact
// machine encoding is entirely the emitter's concern. hostScalar/
// hostQuad/hostDouble are the cache's own integer indices; baseInt/
// dstInt/scratchInt are host integer registers.
type Emitter interface {
	LoadScalar(hostScalar int, baseInt int, offset int32)
	StoreScalar(hostScalar int, baseInt int, offset int32)

	// AddImmediate computes baseInt+imm into dstInt, materializing imm
	// through scratchInt first if it doesn't fit the add's immediate
	// field. The cache uses this to turn the context-base register into
	// the address of one specific guest register before every lane or
	// vector transfer below, the same way it folds the offset directly
	// into LoadScalar/StoreScalar above.
	AddImmediate(dstInt, baseInt int, imm int32, scratchInt int)

	LaneLoad(hostQuad int, baseInt int, lane int)
	LaneStore(hostQuad int, baseInt int, lane int)

	// VecLoad/VecStore move laneCount consecutive lanes in one
	// instruction, addressing the quad via the double-register alias
	// (hostDouble) of the transfer's first lane whatever laneCount is;
	// see QuadAsDouble/QuadAsDoubleHigh. baseInt must
	// already be the address of the transfer's first lane, as built by
	// AddImmediate.
	VecLoad(hostDouble int, baseInt int, laneCount int)
	VecStore(hostDouble int, baseInt int, laneCount int)
}

// GuestDescriptor supplies the two pieces of guest-state information
// the cache needs and does not own: the host integer register holding
// the guest CPU state base address, and the active scratch-slot count.
type GuestDescriptor interface {
	ContextBase() int
	NumScratch() int
}

// QuadAsDouble returns the 64-bit ("D") alias of a host quad's lower
// two lanes, used for vector transfers that start at lane 0 and as
// QMapReg's result for Pair-or-narrower mappings.
func QuadAsDouble(quad int) int { return quad * 2 }

// QuadAsDoubleHigh returns the 64-bit ("D") alias of a host quad's
// upper two lanes (2-3), used for a combined transfer of just that
// aligned pair without touching lanes 0-1.
func QuadAsDoubleHigh(quad int) int { return quad*2 + 1 }

// QuadAsQuadReg is the identity mapping used for symmetry with
// QuadAsDouble: QMapReg returns the quad index itself for Triple/Quad
// mappings, which need the full 128-bit register.
func QuadAsQuadReg(quad int) int { return quad }
