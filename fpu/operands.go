package fpu

// SpillLock marks guest registers as ineligible for eviction until
// ReleaseSpillLock(s) runs; used by the operand-tuple helpers below so
// mapping operand N can never evict operand M<N.
func (c *Cache) SpillLock(regs ...int) {
	for _, g := range regs {
		if c.validGuest(g) {
			c.guestRegs[g].SpillLock = true
		}
	}
}

// ReleaseSpillLock clears the spill lock on the given guest registers.
func (c *Cache) ReleaseSpillLock(regs ...int) {
	for _, g := range regs {
		if c.validGuest(g) {
			c.guestRegs[g].SpillLock = false
		}
	}
}

// MapInIn maps two read-only operands, spill-locking both first so
// mapping rs can never evict rd (or vice versa).
func (c *Cache) MapInIn(rd, rs int) {
	c.SpillLock(rd, rs)
	c.MapReg(rd)
	c.MapReg(rs)
	c.ReleaseSpillLock(rd, rs)
}

// MapDirtyIn maps a dirty output rd and a read-only input rs. When
// avoidLoad is set and rd aliases rs, rd is mapped without NoInit so
// the existing value survives for the in-place read; otherwise rd is
// mapped NoInit|Dirty since the caller is about to overwrite it
// unconditionally.
func (c *Cache) MapDirtyIn(rd, rs int, avoidLoad bool) {
	c.SpillLock(rd, rs)
	overlap := avoidLoad && rd == rs
	if overlap {
		c.MapReg(rd, Dirty)
	} else {
		c.MapReg(rd, Dirty, NoInit)
	}
	c.MapReg(rs)
	c.ReleaseSpillLock(rd, rs)
}

// MapDirtyInIn maps a dirty output rd and two read-only inputs rs, rt.
func (c *Cache) MapDirtyInIn(rd, rs, rt int, avoidLoad bool) {
	c.SpillLock(rd, rs, rt)
	overlap := avoidLoad && (rd == rs || rd == rt)
	if overlap {
		c.MapReg(rd, Dirty)
	} else {
		c.MapReg(rd, Dirty, NoInit)
	}
	c.MapReg(rt)
	c.MapReg(rs)
	c.ReleaseSpillLock(rd, rs, rt)
}

// SpillLockVector spill-locks every lane of a size-sz VFPU vector, for
// the per-lane scalar-mapping operand helpers below.
func (c *Cache) SpillLockVector(vec int, sz Size) {
	c.SpillLock(vectorLanes(vec, sz)...)
}

// MapRegVector scalar-maps every lane of a size-sz VFPU vector,
// returning one host scalar register per lane in lane order. This is
// the per-lane counterpart to QMapReg: it never packs the lanes into a
// single quad.
func (c *Cache) MapRegVector(vec int, sz Size, flags ...MapFlags) []int {
	lanes := vectorLanes(vec, sz)
	hosts := make([]int, len(lanes))
	for i, g := range lanes {
		hosts[i] = c.MapReg(g, flags...)
	}
	return hosts
}

// MapInInVector maps two read-only vector operands lane-by-lane.
func (c *Cache) MapInInVector(vs, vt int, sz Size) {
	c.SpillLockVector(vs, sz)
	c.SpillLockVector(vt, sz)
	c.MapRegVector(vs, sz)
	c.MapRegVector(vt, sz)
	c.ReleaseSpillLock(vectorLanes(vs, sz)...)
	c.ReleaseSpillLock(vectorLanes(vt, sz)...)
}

// MapDirtyInVector maps a dirty output vector vd and a read-only input
// vs, lane-by-lane.
func (c *Cache) MapDirtyInVector(vd, vs int, sz Size, avoidLoad bool) {
	overlap := avoidLoad && vd == vs
	c.SpillLockVector(vd, sz)
	c.SpillLockVector(vs, sz)
	if overlap {
		c.MapRegVector(vd, sz, Dirty)
	} else {
		c.MapRegVector(vd, sz, Dirty, NoInit)
	}
	c.MapRegVector(vs, sz)
	c.ReleaseSpillLock(vectorLanes(vd, sz)...)
	c.ReleaseSpillLock(vectorLanes(vs, sz)...)
}

// MapDirtyInInVector maps a dirty output vector vd and two read-only
// input vectors vs, vt, lane-by-lane.
func (c *Cache) MapDirtyInInVector(vd, vs, vt int, sz Size, avoidLoad bool) {
	overlap := avoidLoad && (vd == vs || vd == vt)
	c.SpillLockVector(vd, sz)
	c.SpillLockVector(vs, sz)
	c.SpillLockVector(vt, sz)
	if overlap {
		c.MapRegVector(vd, sz, Dirty)
	} else {
		c.MapRegVector(vd, sz, Dirty, NoInit)
	}
	c.MapRegVector(vs, sz)
	c.MapRegVector(vt, sz)
	c.ReleaseSpillLock(vectorLanes(vd, sz)...)
	c.ReleaseSpillLock(vectorLanes(vs, sz)...)
	c.ReleaseSpillLock(vectorLanes(vt, sz)...)
}
