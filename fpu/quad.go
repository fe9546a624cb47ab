package fpu

// vectorLanes expands a guest vector identifier and a requested size
// into the list of guest lane indices it names, e.g. vec=3, size=Pair
// -> [vfpuLaneGuestIndex(3,0), vfpuLaneGuestIndex(3,1)].
func vectorLanes(vec int, size Size) []int {
	n := int(size)
	lanes := make([]int, n)
	for i := 0; i < n; i++ {
		lanes[i] = vfpuLaneGuestIndex(vec, i)
	}
	return lanes
}

// consecutive reports whether guest lane indices l are contiguous in
// the guest CPU state structure, which for VFPU lanes means contiguous
// guest indices (they are laid out column-major within a vector).
func consecutive(l []int) bool {
	for i := 1; i < len(l); i++ {
		if l[i] != l[i-1]+1 {
			return false
		}
	}
	return true
}

// flushQuadHostReg writes quad back through QFlush (which stores only
// when the quad is dirty) and then releases any lanes QFlush left
// mapped, so a clean quad is freed as well.
func (c *Cache) flushQuadHostReg(quad int) {
	c.QFlush(quad)
	if quad < 0 || quad >= len(c.quads) || !MappableQuad(quad, c.caps) {
		return
	}
	for lane := 3; lane >= 0; lane-- {
		c.flushQuadLane(quad, lane)
	}
	c.quads[quad].MIPSVec = NoGuest
	c.quads[quad].Sz = InvalidSize
}

// flushQuadLane writes back (if dirty) and clears a single lane of a
// quad, leaving the quad's other lanes mapped. This is the partial
// write-back needed so a guest register never appears mapped in two
// places at once when a single lane is flushed out of a larger quad
// mapping.
func (c *Cache) flushQuadLane(quad, lane int) {
	if quad < 0 || quad >= len(c.quads) {
		return
	}
	q := &c.quads[quad]
	if lane < 0 || lane >= 4 || q.Lanes[lane] == NoGuest {
		return
	}
	g := q.Lanes[lane]
	if q.Dirty {
		c.emit.LaneStore(quad, c.addrOf(g), lane)
	}
	q.Lanes[lane] = NoGuest
	if lane == int(q.Sz)-1 {
		// The flushed lane was the tail of the occupied run: shrink so
		// a later match scan doesn't see a hole as part of the prefix.
		q.Sz--
		if q.Sz == InvalidSize {
			q.Dirty = false
			q.MIPSVec = NoGuest
		}
	}
	if c.validGuest(g) {
		gr := &c.guestRegs[g]
		gr.Location = InMemory
		gr.HostReg = InvalidHostScalar
		gr.Lane = NoLane
	}
}

// flushQuadTail writes back (if dirty) and clears quad lanes [from,to),
// the run a shrinking QMapReg drops off the tail of an existing
// mapping. Lanes 2-3 are an aligned pair addressable through the
// quad's upper double alias, so dropping exactly that pair combines
// into one vector store instead of two lane stores, the same
// fewest-stores rule QFlush applies from lane 0.
func (c *Cache) flushQuadTail(q, from, to int) {
	quad := &c.quads[q]
	if quad.Dirty && from == 2 && to == 4 {
		c.emit.VecStore(QuadAsDoubleHigh(q), c.addrOf(quad.Lanes[from]), 2)
		for lane := from; lane < to; lane++ {
			g := quad.Lanes[lane]
			quad.Lanes[lane] = NoGuest
			if c.validGuest(g) {
				gr := &c.guestRegs[g]
				gr.Location = InMemory
				gr.HostReg = InvalidHostScalar
				gr.Lane = NoLane
			}
		}
		return
	}
	for lane := from; lane < to; lane++ {
		c.flushQuadLane(q, lane)
	}
}

// QFlush writes the live lanes of quad q back to memory, choosing the
// fewest stores possible. It is a no-op if q is not mappable or not
// dirty.
func (c *Cache) QFlush(q int) {
	if q < 0 || q >= len(c.quads) {
		return
	}
	if !MappableQuad(q, c.caps) {
		return
	}
	quad := &c.quads[q]
	if !quad.Dirty {
		return
	}

	n := int(quad.Sz)
	live := quad.Lanes[:n]
	switch {
	case n == 0:
		// nothing to do
	case n == 3 && live[1] == live[0]+1:
		// No hardware vector store moves exactly 3 lanes: split into one
		// pair store for the contiguous head and one lane store for the
		// tail.
		c.emit.VecStore(QuadAsDouble(q), c.addrOf(live[0]), 2)
		c.emit.LaneStore(q, c.addrOf(live[2]), 2)
	case n != 3 && consecutive(live):
		c.emit.VecStore(QuadAsDouble(q), c.addrOf(live[0]), n)
	default:
		for i := 0; i < n; i++ {
			if live[i] == NoGuest {
				continue
			}
			c.emit.LaneStore(q, c.addrOf(live[i]), i)
		}
	}

	for i := 0; i < n; i++ {
		g := quad.Lanes[i]
		quad.Lanes[i] = NoGuest
		if c.validGuest(g) {
			gr := &c.guestRegs[g]
			gr.Location = InMemory
			gr.HostReg = InvalidHostScalar
			gr.Lane = NoLane
		}
	}
	quad.Dirty = false
	quad.MIPSVec = NoGuest
	quad.Sz = InvalidSize
}

// QMapReg maps a guest vector's lanes into a host quad, matching or
// extending an existing mapping, shrinking a superset mapping, or
// allocating a fresh quad.
func (c *Cache) QMapReg(vec int, size Size, flags ...MapFlags) int {
	f := combine(flags)
	if !c.caps.HasSIMD {
		c.log.Errorf("QMapReg: host has no SIMD support, cannot map vector %d", vec)
		return InvalidQuad
	}
	lanes := vectorLanes(vec, size)
	c.age++

	if q := c.findQuadMatch(lanes); q != InvalidQuad {
		return c.completeMatch(q, vec, size, lanes, f)
	}

	q, ok := c.allocateQuad()
	if !ok {
		c.log.Errorf("QMapReg: out of spillable quads mapping vector %d", vec)
		return InvalidQuad
	}

	if f.has(Dirty) {
		for _, g := range lanes {
			c.FlushGuest(g)
		}
	}
	c.QFlush(q)

	if !f.has(NoInit) {
		c.loadQuad(q, lanes, size)
	}

	quad := &c.quads[q]
	quad.MIPSVec = vec
	quad.Sz = size
	quad.Dirty = f.has(Dirty)
	quad.Age = c.age
	for i, g := range lanes {
		quad.Lanes[i] = g
		if c.validGuest(g) {
			gr := &c.guestRegs[g]
			gr.Location = InHostReg
			gr.HostReg = q
			gr.Lane = Lane(i)
		}
	}
	return c.quadResult(q, size)
}

// findQuadMatch returns the first mappable quad whose leading lanes
// match a non-empty prefix of lanes, or InvalidQuad if none match at
// all (a zero-length prefix does not count as a match).
func (c *Cache) findQuadMatch(lanes []int) int {
	for q, quad := range c.quads {
		if !MappableQuad(q, c.caps) || quad.MIPSVec == NoGuest {
			continue
		}
		k := 0
		for k < len(lanes) && k < int(quad.Sz) && quad.Lanes[k] == lanes[k] {
			k++
		}
		if k > 0 {
			return q
		}
	}
	return InvalidQuad
}

// completeMatch finishes mapping against an existing quad match: it
// shrinks a superset mapping, extends a partial one with lane-loads,
// or does neither when the match is already exact, then updates the
// dirty bit and size and returns the tagged result.
func (c *Cache) completeMatch(q, vec int, size Size, lanes []int, f MapFlags) int {
	quad := &c.quads[q]
	k := 0
	for k < len(lanes) && k < int(quad.Sz) && quad.Lanes[k] == lanes[k] {
		k++
	}
	n := len(lanes)

	if k == n && int(quad.Sz) > n {
		c.flushQuadTail(q, n, int(quad.Sz))
		quad.Sz = size
	} else if k < n {
		for i := k; i < n; i++ {
			g := lanes[i]
			if c.validGuest(g) && c.guestRegs[g].onHostReg() {
				// g is already mapped elsewhere (a scalar, or a lane of a
				// different quad): clear that mapping first so it doesn't
				// leave a stale cross-reference once this quad also
				// claims g.
				c.FlushGuest(g)
			}
			c.emit.LaneLoad(q, c.addrOf(g), i)
			quad.Lanes[i] = g
			if c.validGuest(g) {
				gr := &c.guestRegs[g]
				gr.Location = InHostReg
				gr.HostReg = q
				gr.Lane = Lane(i)
			}
		}
		quad.Sz = size
	}

	if f.has(Dirty) {
		quad.Dirty = true
	}
	quad.MIPSVec = vec
	quad.Age = c.age
	return c.quadResult(q, size)
}

func (c *Cache) quadResult(q int, size Size) int {
	if size <= Pair {
		return QuadAsDouble(q)
	}
	return QuadAsQuadReg(q)
}

// allocateQuad finds a free mappable quad, evicting the
// least-recently-mapped mappable quad (lowest Age) per retry when none
// are free. No quad ever carries a lock, so this cannot deadlock.
func (c *Cache) allocateQuad() (int, bool) {
	for {
		for _, q := range c.quadOrder {
			if c.quads[q].free() {
				return q, true
			}
		}

		lru := -1
		for _, q := range c.quadOrder {
			if lru == -1 || c.quads[q].Age < c.quads[lru].Age {
				lru = q
			}
		}
		if lru == -1 {
			return InvalidQuad, false
		}
		c.trace("allocateQuad: evicting quad %d (age %d) holding vector %d", lru, c.quads[lru].Age, c.quads[lru].MIPSVec)
		c.FlushHostReg(HostRegRef{Kind: HostRegQuad, Index: lru})
		c.quads[lru].MIPSVec = NoGuest
	}
}

// loadQuad emits the minimal set of loads for n consecutive-or-not
// guest lanes, exploiting column contiguity of the guest vector
// layout.
func (c *Cache) loadQuad(q int, lanes []int, size Size) {
	n := len(lanes)
	switch {
	case n == 0:
	case size == Triple && lanes[1] == lanes[0]+1:
		// No hardware vector load moves exactly 3 lanes: split into one
		// pair load for the contiguous head and one lane load for the
		// tail.
		c.emit.VecLoad(QuadAsDouble(q), c.addrOf(lanes[0]), 2)
		c.emit.LaneLoad(q, c.addrOf(lanes[2]), 2)
	case consecutive(lanes):
		c.emit.VecLoad(QuadAsDouble(q), c.addrOf(lanes[0]), n)
	default:
		for i := 0; i < n; i++ {
			c.emit.LaneLoad(q, c.addrOf(lanes[i]), i)
		}
	}
}

// QAge returns the age counter of quad q that allocateQuad's LRU
// eviction reads, exposed read-only for diagnostics; see DESIGN.md
// "Quad LRU".
func (c *Cache) QAge(q int) uint64 {
	if q < 0 || q >= len(c.quads) {
		return 0
	}
	return c.quads[q].Age
}
