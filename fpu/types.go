// Package fpu implements the floating-point register cache for a
// MIPS-to-ARM64 dynamic recompiler: it decides, at code-emission time,
// which guest FP registers live in which host FP registers, when to
// load or spill them, and when to pack contiguous guest vector lanes
// into a single host 128-bit SIMD register.
package fpu

import "fmt"

// Location is where a guest register's value currently lives.
type Location byte

const (
	// InMemory means the value is only in the guest context structure.
	InMemory Location = iota
	// InHostReg means the value lives in a host register (scalar or a
	// lane of a quad, see GuestRegister.Lane).
	InHostReg
	// Immediate is defined for parity with the integer register cache
	// this subsystem was split off from; no guest FP/VFPU value is ever
	// put here. Attempting to do so is a translator bug.
	Immediate
)

func (l Location) String() string {
	switch l {
	case InMemory:
		return "memory"
	case InHostReg:
		return "host-reg"
	case Immediate:
		return "immediate"
	default:
		return fmt.Sprintf("location(%d)", byte(l))
	}
}

// Lane identifies a slot within a host quad. NoLane means the guest
// register is either memory-resident or occupies a whole scalar host
// register on its own.
type Lane int8

// NoLane marks a guest record that isn't occupying a single quad lane.
const NoLane Lane = -1

// Size is the logical length, in lanes, of a quad mapping request.
type Size int

const (
	// InvalidSize marks an empty/unallocated quad.
	InvalidSize Size = 0
	Single      Size = 1
	Pair        Size = 2
	Triple      Size = 3
	Quad        Size = 4
)

func (s Size) String() string {
	switch s {
	case InvalidSize:
		return "invalid"
	case Single:
		return "single"
	case Pair:
		return "pair"
	case Triple:
		return "triple"
	case Quad:
		return "quad"
	default:
		return fmt.Sprintf("size(%d)", int(s))
	}
}

// MapFlags controls how MapReg/QMapReg bring a guest register into a
// host register.
type MapFlags uint8

const (
	// mapDefault loads from memory (unless the guest is a scratch slot)
	// and leaves the host register clean.
	mapDefault MapFlags = 0
	// Dirty marks the host register as holding a value that must be
	// written back to memory before it can be evicted or discarded.
	Dirty MapFlags = 1 << iota
	// NoInit skips the initial load from memory; the caller promises to
	// overwrite the register before it is read.
	NoInit
	// initialValue is accepted for interface parity with the integer
	// register cache (constant materialization); unused for FP.
	initialValue
)

func (f MapFlags) has(bit MapFlags) bool { return f&bit != 0 }

// InvalidHostScalar is returned by MapReg/allocation helpers when no
// host register could be produced; it is never a legal scalar index.
const InvalidHostScalar int = -1

// InvalidQuad is returned by QMapReg/quad allocation helpers on
// failure; it is never a legal quad index.
const InvalidQuad int = -1

// GuestRegister is the per-guest-register-index bookkeeping record.
type GuestRegister struct {
	Location Location
	// HostReg is a scalar host index when Lane == NoLane, or a quad
	// index when Lane != NoLane.
	HostReg int
	Lane    Lane

	SpillLock bool
	TempLock  bool
}

func (g *GuestRegister) onHostReg() bool { return g.Location == InHostReg }

// HostScalar is the per-host-scalar-register bookkeeping record.
type HostScalar struct {
	// MappedGuest is the guest index held here, or NoGuest.
	MappedGuest int
	Dirty       bool
}

// NoGuest marks a free host scalar register / empty quad lane.
const NoGuest = -1

// QuadRecord is the per-host-quad bookkeeping record: the tuple of
// guest vector lanes it currently holds, its logical occupied length,
// dirty bit, and the age counter allocateQuad consults to pick an
// eviction victim when no quad is free (see DESIGN.md "Quad LRU").
type QuadRecord struct {
	// MIPSVec is the guest vector identifier whose prefix this quad
	// currently holds, or NoGuest.
	MIPSVec int
	Lanes   [4]int
	Sz      Size
	Dirty   bool
	Age     uint64
}

func (q *QuadRecord) free() bool { return q.MIPSVec == NoGuest }
