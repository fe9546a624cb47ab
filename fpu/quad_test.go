package fpu

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMappableQuadGating(t *testing.T) {
	require.False(t, MappableQuad(5, noSIMD()))
	require.False(t, MappableQuad(3, withSIMD()))
	require.True(t, MappableQuad(4, withSIMD()))
	require.True(t, MappableQuad(15, withSIMD()))
}

func TestQMapRegWithoutSIMDFails(t *testing.T) {
	c, _ := newTestCache(t, noSIMD())
	got := c.QMapReg(0, Pair)
	require.Equal(t, InvalidQuad, got)
}

func TestQMapRegAllocatesAndLoads(t *testing.T) {
	c, emit := newTestCache(t, withSIMD())
	q := c.QMapReg(0, Quad, NoInit)
	require.NotEqual(t, InvalidQuad, q)
	require.Empty(t, emit.Kinds(), "NoInit must skip the load")

	lanes := vectorLanes(0, Quad)
	for i, g := range lanes {
		require.Equal(t, InHostReg, c.guestRegs[g].Location)
		require.Equal(t, Lane(i), c.guestRegs[g].Lane)
	}
}

func TestQMapRegLoadsConsecutiveLanesAsOneVecLoad(t *testing.T) {
	c, emit := newTestCache(t, withSIMD())
	c.QMapReg(1, Pair)
	require.Equal(t, []string{"addimm", "vecload"}, emit.Kinds())
}

func TestQMapRegMatchExact(t *testing.T) {
	c, emit := newTestCache(t, withSIMD())
	c.QMapReg(2, Quad, NoInit)
	emit.Reset()
	q2 := c.QMapReg(2, Quad)
	require.Empty(t, emit.Kinds(), "an exact re-map of the same vector must not emit anything")
	require.NotEqual(t, InvalidQuad, q2)
}

func TestQMapRegMatchExtend(t *testing.T) {
	c, emit := newTestCache(t, withSIMD())
	c.QMapReg(3, Pair, NoInit)
	emit.Reset()
	c.QMapReg(3, Quad)
	// Extending from Pair to Quad loads the two new lanes.
	require.Equal(t, []string{"addimm", "laneload", "addimm", "laneload"}, emit.Kinds())
}

func TestQMapRegMatchShrinkFlushesTail(t *testing.T) {
	c, emit := newTestCache(t, withSIMD())
	c.QMapReg(4, Quad, Dirty, NoInit)
	emit.Reset()
	c.QMapReg(4, Pair)
	// Shrinking from Quad to Pair drops the aligned lane-2/3 pair, which
	// combines into a single vector store since the quad was dirty.
	require.Equal(t, []string{"addimm", "vecstore"}, emit.Kinds())
}

func TestQFlushMinimalStoresConsecutive(t *testing.T) {
	c, emit := newTestCache(t, withSIMD())
	q := c.QMapReg(5, Quad, Dirty, NoInit)
	quadIndex := q // Quad-sized result is the quad index itself.
	emit.Reset()
	c.QFlush(quadIndex)
	require.Equal(t, []string{"addimm", "vecstore"}, emit.Kinds())
}

func TestQFlushTripleSpecialCase(t *testing.T) {
	c, emit := newTestCache(t, withSIMD())
	q := c.QMapReg(6, Triple, Dirty, NoInit)
	emit.Reset()
	c.QFlush(q)
	require.Equal(t, []string{"addimm", "vecstore", "addimm", "lanestore"}, emit.Kinds())
}

func TestQFlushCleanIsNoop(t *testing.T) {
	c, emit := newTestCache(t, withSIMD())
	q := c.QMapReg(7, Quad, NoInit)
	emit.Reset()
	c.QFlush(q)
	require.Empty(t, emit.Kinds())
}

func TestAllocateQuadEvictsLRU(t *testing.T) {
	c, _ := newTestCache(t, withSIMD())
	order := c.quadOrder
	require.NotEmpty(t, order)

	// Fill every mappable quad with a distinct vector.
	for i, q := range order {
		c.QMapReg(q, Single, NoInit)
		require.Equal(t, uint64(i+1), c.QAge(q))
	}

	// The quad allocated first (lowest age) must be the one evicted.
	lowestAgeQuad := order[0]
	before := c.QAge(lowestAgeQuad)

	extraVec := order[len(order)-1] + 100
	c.QMapReg(extraVec, Single, NoInit)

	require.NotEqual(t, before, c.QAge(lowestAgeQuad), "LRU-lowest-age quad should have been evicted and reused")
}

func TestFlushGuestOnSingleLaneLeavesRestMapped(t *testing.T) {
	c, emit := newTestCache(t, withSIMD())
	q := c.QMapReg(8, Pair, Dirty, NoInit)
	lanes := vectorLanes(8, Pair)
	emit.Reset()

	c.FlushGuest(lanes[0])

	require.Equal(t, []string{"addimm", "lanestore"}, emit.Kinds())
	require.Equal(t, InMemory, c.guestRegs[lanes[0]].Location)
	require.Equal(t, InHostReg, c.guestRegs[lanes[1]].Location)
	// A Pair-sized QMapReg returns the quad's double alias; HostReg
	// holds the quad index.
	require.Equal(t, q, QuadAsDouble(c.guestRegs[lanes[1]].HostReg))
}

func TestConsecutiveHelper(t *testing.T) {
	require.True(t, consecutive([]int{5, 6, 7}))
	require.False(t, consecutive([]int{5, 7}))
	require.True(t, consecutive(nil))
	require.True(t, consecutive([]int{5}))
}
