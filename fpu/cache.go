package fpu

import (
	"fmt"

	"github.com/dynarec-go/mipsfpu/internal/fpudebug"
)

// Config configures a Cache. The zero value is valid: it yields
// DefaultNumScratch scratch slots, a standard-library-backed Logger,
// and capabilities probed via DetectHostCaps.
type Config struct {
	NumScratch int
	Logger     Logger
	Caps       *HostCaps
}

// Cache is the floating-point register cache. One instance is owned
// exclusively by the translator emitting a single guest basic block;
// it is strictly single-threaded and non-reentrant, with no ordering
// guarantees to publish since there are no observers.
type Cache struct {
	emit  Emitter
	guest GuestDescriptor
	log   Logger
	caps  HostCaps

	numScratch int

	guestRegs []GuestRegister
	hostRegs  []HostScalar
	quads     []QuadRecord

	scalarOrder []int
	quadOrder   []int

	age uint64
}

// NewCache constructs a Cache bound to the given emitter and guest
// descriptor. Call Start before emitting code for the first guest
// basic block, and before every subsequent one.
func NewCache(emit Emitter, guest GuestDescriptor, cfg Config) *Cache {
	numScratch := cfg.NumScratch
	if numScratch <= 0 {
		numScratch = DefaultNumScratch
	}
	if guest != nil {
		if n := guest.NumScratch(); n > 0 {
			numScratch = n
		}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = stdLogger{}
	}

	caps := DetectHostCaps()
	if cfg.Caps != nil {
		caps = *cfg.Caps
	}

	c := &Cache{
		emit:        emit,
		guest:       guest,
		log:         logger,
		caps:        caps,
		numScratch:  numScratch,
		hostRegs:    make([]HostScalar, maxHostScalarRegs),
		quads:       make([]QuadRecord, numQuads),
		scalarOrder: scalarAllocationOrder(caps),
		quadOrder:   quadAllocationOrder(caps),
	}
	c.guestRegs = make([]GuestRegister, numGuestRegs(numScratch))
	c.Start()
	return c
}

// Start zero-initializes every record. Call it at the beginning of
// each emitted guest basic block.
func (c *Cache) Start() {
	for i := range c.hostRegs {
		c.hostRegs[i] = HostScalar{MappedGuest: NoGuest}
	}
	for i := range c.quads {
		c.quads[i] = QuadRecord{MIPSVec: NoGuest, Lanes: [4]int{NoGuest, NoGuest, NoGuest, NoGuest}}
	}
	for i := range c.guestRegs {
		c.guestRegs[i] = GuestRegister{Location: InMemory, HostReg: InvalidHostScalar, Lane: NoLane}
	}
}

// NumScratch returns the number of scratch slots this cache was
// configured with.
func (c *Cache) NumScratch() int { return c.numScratch }

// Caps returns the host capabilities this cache was constructed with.
func (c *Cache) Caps() HostCaps { return c.caps }

func (c *Cache) contextBase() int {
	if c.guest != nil {
		return c.guest.ContextBase()
	}
	return ARM64ContextBase
}

// offset computes the byte offset of guest register g within the
// guest CPU state structure, logging and returning 0 for an
// out-of-range index.
func (c *Cache) offset(g int) int32 {
	if g < 0 || g >= len(c.guestRegs) {
		c.log.Errorf("bad guest register %d, out of range [0,%d)", g, len(c.guestRegs))
		return 0
	}
	return offsetOf(g)
}

func (c *Cache) validGuest(g int) bool {
	return g >= 0 && g < len(c.guestRegs)
}

// addrOf emits the address computation a lane or vector transfer needs
// before it: the context base register alone names no specific guest
// register, so every LaneLoad/LaneStore/VecLoad/VecStore call is
// preceded by an AddImmediate that folds guest register g's offset
// into ARM64AddressScratch, which is what addrOf returns.
func (c *Cache) addrOf(g int) int {
	c.emit.AddImmediate(ARM64AddressScratch, c.contextBase(), c.offset(g), ARM64AddressScratch)
	return ARM64AddressScratch
}

// trace emits a diagnostic through the logger, but only in builds
// tagged fpu_verbose; it is compiled to nothing otherwise so the hot
// mapping path never pays for the formatting.
func (c *Cache) trace(format string, args ...any) {
	if fpudebug.Verbose {
		c.log.Errorf("trace: "+format, args...)
	}
}

// R returns the host scalar register guest register g currently
// occupies, asserting that g is mapped. Callers must have previously
// mapped g with MapReg or QMapReg; an unmapped guest is a
// translator-contract violation.
func (c *Cache) R(g int) int {
	if !c.validGuest(g) {
		c.log.Errorf("R: guest register %d out of range", g)
		return InvalidHostScalar
	}
	rec := &c.guestRegs[g]
	if rec.Location != InHostReg {
		c.log.Errorf("R: guest register %d (%s) is not in a host register", g, c.describeGuest(g))
		return InvalidHostScalar
	}
	// Mapped as a scalar or as a single lane of a quad: HostReg already
	// names the right index either way (a host scalar index, or a quad
	// index — use Lane to tell the two apart).
	return rec.HostReg
}

// Lane returns the lane a guest register occupies within its host
// quad, or NoLane if it is scalar-mapped (or unmapped).
func (c *Cache) Lane(g int) Lane {
	if !c.validGuest(g) {
		return NoLane
	}
	return c.guestRegs[g].Lane
}

func (c *Cache) describeGuest(g int) string {
	switch {
	case g < NumFPRegs:
		return fmt.Sprintf("fpr%d", g)
	case g < NumFPRegs+NumVFPULanes:
		vec, lane := vfpuLaneOf(g)
		return fmt.Sprintf("vfpu v%d.%d", vec, lane)
	default:
		return fmt.Sprintf("temp%d", g-NumFPRegs-NumVFPULanes)
	}
}
