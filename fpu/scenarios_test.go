package fpu

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// The lettered cases below mirror the end-to-end seed scenarios table:
// a fixed operation sequence with an exact expected emitted-op shape.

func TestScenarioA_MapTwiceLoadsOnce(t *testing.T) {
	c, emit := newTestCache(t, noSIMD())
	c.Start()
	c.MapReg(5)
	c.MapReg(5)
	require.Equal(t, []Op{{Kind: "load", A: emit.Ops[0].A, B: ARM64ContextBase, C: 148}}, emit.Ops)
}

func TestScenarioB_DirtyThenFlushAll(t *testing.T) {
	c, emit := newTestCache(t, noSIMD())
	c.Start()
	c.MapReg(5, Dirty)
	c.FlushAll()
	require.Equal(t, []string{"load", "store"}, emit.Kinds())
	require.Equal(t, int32(148), emit.Ops[0].C)
	require.Equal(t, int32(148), emit.Ops[1].C)
}

func TestScenarioC_MapDirtyInOverlapThenFlushAll(t *testing.T) {
	c, emit := newTestCache(t, noSIMD())
	c.Start()
	c.MapDirtyIn(5, 5, true)
	c.FlushAll()
	require.Equal(t, []string{"load", "store"}, emit.Kinds())
}

func TestScenarioD_QuadConsecutiveDirtyRoundTrip(t *testing.T) {
	c, emit := newTestCache(t, withSIMD())
	c.Start()
	c.QMapReg(2, Quad, Dirty)
	require.Equal(t, []string{"addimm", "vecload"}, emit.Kinds())
	emit.Reset()
	c.FlushAll()
	require.Equal(t, []string{"addimm", "vecstore"}, emit.Kinds())
}

func TestScenarioE_RowNonConsecutiveLoadThenCleanFlush(t *testing.T) {
	// The spec's flat guest-index layout makes every vec id's four
	// lanes consecutive by construction (32 four-lane vectors), so a
	// "row" of four lanes spread across four different vectors cannot
	// be named by a single vec id through the public QMapReg API. The
	// minimal-load/store logic that would drive such a mapping is
	// exercised directly against loadQuad/QFlush instead; see
	// DESIGN.md "Row-addressed vectors".
	c, emit := newTestCache(t, withSIMD())
	c.Start()

	rowLanes := []int{
		vfpuLaneGuestIndex(0, 0),
		vfpuLaneGuestIndex(1, 0),
		vfpuLaneGuestIndex(2, 0),
		vfpuLaneGuestIndex(3, 0),
	}
	require.False(t, consecutive(rowLanes))

	c.loadQuad(4, rowLanes, Quad)
	require.Equal(t, []string{"addimm", "laneload", "addimm", "laneload", "addimm", "laneload", "addimm", "laneload"}, emit.Kinds())

	emit.Reset()
	quad := &c.quads[4]
	quad.MIPSVec, quad.Sz, quad.Dirty = 99, Quad, false
	copy(quad.Lanes[:], rowLanes)
	c.QFlush(4)
	require.Empty(t, emit.Kinds(), "clean quad must not be flushed")
}

func TestScenarioF_PairThenExtendToQuad(t *testing.T) {
	c, emit := newTestCache(t, withSIMD())
	c.Start()
	c.QMapReg(5, Pair, Dirty)
	require.Equal(t, []string{"addimm", "vecload"}, emit.Kinds())
	emit.Reset()

	c.QMapReg(5, Quad, Dirty)
	require.Equal(t, []string{"addimm", "laneload", "addimm", "laneload"}, emit.Kinds())

	emit.Reset()
	c.FlushAll()
	require.Equal(t, []string{"addimm", "vecstore"}, emit.Kinds())
}

func TestPropertyIdempotentMapping(t *testing.T) {
	c, emit := newTestCache(t, noSIMD())
	h1 := c.MapReg(9)
	h2 := c.MapReg(9)
	require.Equal(t, h1, h2)
	require.Equal(t, []string{"load"}, emit.Kinds())
}

func TestPropertyDirtyPromotion(t *testing.T) {
	c, emit := newTestCache(t, noSIMD())
	c.MapReg(9)
	c.MapReg(9, Dirty)
	require.True(t, c.hostRegs[c.R(9)].Dirty)
	require.Equal(t, []string{"load"}, emit.Kinds())
}

func TestPropertyRoundTrip(t *testing.T) {
	c, emit := newTestCache(t, noSIMD())
	c.MapReg(9, Dirty)
	c.FlushGuest(9)
	c.MapReg(9)
	require.Equal(t, []string{"load", "store", "load"}, emit.Kinds())
}

func TestPropertyDiscardErasesDirt(t *testing.T) {
	c, emit := newTestCache(t, noSIMD())
	c.MapReg(9, Dirty)
	c.DiscardGuest(9)
	c.FlushGuest(9)
	require.Equal(t, []string{"load"}, emit.Kinds())
}

func TestPropertySpillLockRespected(t *testing.T) {
	c, _ := newTestCache(t, noSIMD())
	order := c.scalarOrder
	for i := range order {
		c.MapReg(i)
		c.SpillLock(i)
	}
	got := c.MapReg(len(order))
	require.Equal(t, InvalidHostScalar, got, "every slot locked must fail rather than evict")
}

func TestPropertyQuadExtendInPlace(t *testing.T) {
	c, emit := newTestCache(t, withSIMD())
	q1 := c.QMapReg(10, Pair, NoInit)
	emit.Reset()
	q2 := c.QMapReg(10, Quad, NoInit)
	// Pair returns the double alias, Quad the quad index: same quad.
	require.Equal(t, q1, QuadAsDouble(q2))
	require.Equal(t, []string{"addimm", "laneload", "addimm", "laneload"}, emit.Kinds())
}

func TestPropertyQuadShrinkInPlace(t *testing.T) {
	c, emit := newTestCache(t, withSIMD())
	q1 := c.QMapReg(11, Quad, Dirty, NoInit)
	emit.Reset()
	q2 := c.QMapReg(11, Pair, Dirty)
	// Quad returns the quad index, Pair the double alias: same quad.
	require.Equal(t, QuadAsDouble(q1), q2)
	require.Equal(t, []string{"addimm", "vecstore"}, emit.Kinds())
}

func TestPropertyFlushAllStoresEveryDirtyOnce(t *testing.T) {
	c, emit := newTestCache(t, withSIMD())
	c.MapReg(1, Dirty)
	c.MapReg(2)
	c.QMapReg(3, Quad, Dirty)
	emit.Reset()

	c.FlushAll()

	stores := 0
	for _, op := range emit.Ops {
		if op.Kind == "store" || op.Kind == "lanestore" || op.Kind == "vecstore" {
			stores++
		}
	}
	require.Equal(t, 2, stores, "one scalar store for guest 1 plus one vector store for the quad")

	for host, hr := range c.hostRegs {
		require.Equal(t, NoGuest, hr.MappedGuest, "host scalar %d", host)
	}
	for q, quad := range c.quads {
		require.Equal(t, NoGuest, quad.MIPSVec, "quad %d", q)
	}
}
