package fpu

// MapReg brings guest register g into a host scalar register,
// allocating and possibly evicting to find one free.
func (c *Cache) MapReg(g int, flags ...MapFlags) int {
	f := combine(flags)
	if !c.validGuest(g) {
		c.log.Errorf("MapReg: guest register %d out of range", g)
		return InvalidHostScalar
	}
	rec := &c.guestRegs[g]

	if rec.Location == Immediate {
		c.log.Errorf("MapReg: guest register %d is an immediate, unsupported for FP", g)
		return InvalidHostScalar
	}

	if rec.Location == InHostReg {
		if rec.Lane != NoLane {
			// Already quad-mapped; promote dirtiness on the quad and
			// hand back the quad index itself (not QMapReg's double
			// alias); Lane(g) tells which lane g occupies.
			quad := &c.quads[rec.HostReg]
			if f.has(Dirty) {
				quad.Dirty = true
			}
			return rec.HostReg
		}
		host := rec.HostReg
		if c.hostRegs[host].MappedGuest != g {
			c.log.Errorf("MapReg: cross-reference out of sync for guest %d, host scalar %d claims guest %d", g, host, c.hostRegs[host].MappedGuest)
		}
		if f.has(Dirty) {
			c.hostRegs[host].Dirty = true
		}
		return host
	}

	host, ok := c.allocateScalar()
	if !ok {
		c.log.Errorf("MapReg: out of spillable scalar registers mapping guest %d", g)
		return InvalidHostScalar
	}
	c.trace("MapReg: guest %d -> host scalar %d", g, host)

	c.hostRegs[host] = HostScalar{MappedGuest: g, Dirty: f.has(Dirty)}
	if !f.has(NoInit) && !isScratch(g, c.numScratch) && rec.Location == InMemory {
		c.emit.LoadScalar(host, c.contextBase(), c.offset(g))
	}
	rec.Location = InHostReg
	rec.HostReg = host
	rec.Lane = NoLane
	return host
}

// allocateScalar finds a free host scalar register, evicting at most
// one mapped-but-unlocked register per retry: a bounded scan-then-
// evict-then-rescan loop, not recursion.
func (c *Cache) allocateScalar() (int, bool) {
	for {
		for _, host := range c.scalarOrder {
			if c.hostRegs[host].MappedGuest == NoGuest {
				return host, true
			}
		}

		victim := -1
		for _, host := range c.scalarOrder {
			g := c.hostRegs[host].MappedGuest
			if g == NoGuest {
				continue
			}
			gr := &c.guestRegs[g]
			if gr.SpillLock || gr.TempLock {
				continue
			}
			victim = host
			break
		}
		if victim == -1 {
			return InvalidHostScalar, false
		}
		c.trace("allocateScalar: evicting host scalar %d held by guest %d", victim, c.hostRegs[victim].MappedGuest)
		c.FlushHostReg(HostRegRef{Kind: HostRegScalar, Index: victim})
	}
}

// HostRegKind tags which of the two host-register shapes a HostRegRef
// names.
type HostRegKind byte

const (
	HostRegScalar HostRegKind = iota
	HostRegQuad
)

// HostRegRef is a polymorphic reference to a host register: a scalar
// index or a quad index.
type HostRegRef struct {
	Kind  HostRegKind
	Index int
}

// FlushHostReg writes back (if dirty) and frees the host register
// named by ref, dispatching on its kind.
func (c *Cache) FlushHostReg(ref HostRegRef) {
	switch ref.Kind {
	case HostRegScalar:
		c.flushScalarHostReg(ref.Index)
	case HostRegQuad:
		c.flushQuadHostReg(ref.Index)
	}
}

func (c *Cache) flushScalarHostReg(host int) {
	if host < 0 || host >= len(c.hostRegs) {
		return
	}
	hr := &c.hostRegs[host]
	g := hr.MappedGuest
	if g == NoGuest {
		return // soft condition: flushing a free host register is a no-op.
	}
	if hr.Dirty && !isScratch(g, c.numScratch) {
		// Invariant 5: scratch slots have no memory backing and are
		// never written back, even if a caller marked one dirty.
		c.emit.StoreScalar(host, c.contextBase(), c.offset(g))
	}
	hr.Dirty = false
	hr.MappedGuest = NoGuest

	if c.validGuest(g) {
		gr := &c.guestRegs[g]
		gr.Location = InMemory
		gr.HostReg = InvalidHostScalar
		gr.Lane = NoLane
	}
}

// FlushGuest writes back (if dirty) guest register g and marks it
// memory-resident. A guest register that is a single lane of a quad
// gets a lane-store rather than a full quad flush, so the quad's other
// lanes stay mapped.
func (c *Cache) FlushGuest(g int) {
	if !c.validGuest(g) {
		c.log.Errorf("FlushGuest: guest register %d out of range", g)
		return
	}
	rec := &c.guestRegs[g]
	switch rec.Location {
	case Immediate:
		c.log.Errorf("FlushGuest: guest register %d is an immediate, unsupported for FP", g)
	case InHostReg:
		if rec.Lane != NoLane {
			c.flushQuadLane(rec.HostReg, int(rec.Lane))
		} else {
			if c.hostRegs[rec.HostReg].MappedGuest != g {
				c.log.Errorf("FlushGuest: cross-reference out of sync for guest %d", g)
			}
			c.flushScalarHostReg(rec.HostReg)
		}
	case InMemory:
		// Already there; no-op.
	}
	rec.Location = InMemory
	rec.HostReg = InvalidHostScalar
	rec.Lane = NoLane
}

// DiscardGuest clears guest register g's host mapping (and dirty bit)
// without writing it back.
func (c *Cache) DiscardGuest(g int) {
	if !c.validGuest(g) {
		c.log.Errorf("DiscardGuest: guest register %d out of range", g)
		return
	}
	rec := &c.guestRegs[g]
	switch rec.Location {
	case Immediate:
		c.log.Errorf("DiscardGuest: guest register %d is an immediate, unsupported for FP", g)
	case InHostReg:
		if rec.Lane != NoLane {
			quad := &c.quads[rec.HostReg]
			lane := int(rec.Lane)
			quad.Lanes[lane] = NoGuest
			if lane == int(quad.Sz)-1 {
				// Discarded lane was the tail of the occupied run: shrink
				// so a stale slot never looks live to a later QFlush.
				quad.Sz--
				if quad.Sz == InvalidSize {
					quad.Dirty = false
					quad.MIPSVec = NoGuest
				}
			}
		} else {
			c.hostRegs[rec.HostReg].Dirty = false
			c.hostRegs[rec.HostReg].MappedGuest = NoGuest
		}
	case InMemory:
		// Already there; no-op.
	}
	rec.Location = InMemory
	rec.HostReg = InvalidHostScalar
	rec.Lane = NoLane
	rec.TempLock = false
	rec.SpillLock = false
}

// FlushAll forces every live record back to memory: discards scratch
// slots (they have no memory backing, so they are never flushed),
// flushes every quad, flushes every ordinary/VFPU guest register, and
// then walks the host tables to confirm no guest register is still
// claimed anywhere. It must be called before any control transfer
// leaving the translated block.
func (c *Cache) FlushAll() {
	for t := scratchBase(c.numScratch); t < numGuestRegs(c.numScratch); t++ {
		c.DiscardGuest(t)
	}
	for q := range c.quads {
		c.FlushHostReg(HostRegRef{Kind: HostRegQuad, Index: q})
	}
	for g := 0; g < scratchBase(c.numScratch); g++ {
		c.FlushGuest(g)
	}

	for host, hr := range c.hostRegs {
		if hr.MappedGuest != NoGuest {
			c.log.Errorf("FlushAll: scalar host register %d still claims guest %d after flush", host, hr.MappedGuest)
		}
	}
	for q, quad := range c.quads {
		if quad.MIPSVec != NoGuest {
			c.log.Errorf("FlushAll: quad %d still claims vector %d after flush", q, quad.MIPSVec)
		}
	}
}

func combine(flags []MapFlags) MapFlags {
	var f MapFlags
	for _, v := range flags {
		f |= v
	}
	return f
}
