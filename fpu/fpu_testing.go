package fpu

import "fmt"

// Op is one recorded emission from a RecordingEmitter.
type Op struct {
	Kind string
	A, B int
	C    int32
	D    int
}

func (o Op) String() string {
	switch o.Kind {
	case "load", "store":
		return fmt.Sprintf("%s s%d, [x%d+%d]", o.Kind, o.A, o.B, o.C)
	case "addimm":
		return fmt.Sprintf("add x%d, x%d, #%d (scratch x%d)", o.A, o.B, o.C, o.D)
	case "laneload", "lanestore":
		return fmt.Sprintf("%s q%d[%d], [x%d]", o.Kind, o.A, o.C, o.B)
	case "vecload", "vecstore":
		return fmt.Sprintf("%s d%d x%d, [x%d]", o.Kind, o.C, o.A, o.B)
	default:
		return o.Kind
	}
}

// RecordingEmitter is a non-functional Emitter that appends every call
// to Ops, standing in for the real ARM code generator. It is shared by
// tests and cmd/fpudump.
type RecordingEmitter struct {
	Ops []Op
}

func (r *RecordingEmitter) LoadScalar(hostScalar, baseInt int, offset int32) {
	r.Ops = append(r.Ops, Op{Kind: "load", A: hostScalar, B: baseInt, C: offset})
}

func (r *RecordingEmitter) StoreScalar(hostScalar, baseInt int, offset int32) {
	r.Ops = append(r.Ops, Op{Kind: "store", A: hostScalar, B: baseInt, C: offset})
}

func (r *RecordingEmitter) AddImmediate(dstInt, baseInt int, imm int32, scratchInt int) {
	r.Ops = append(r.Ops, Op{Kind: "addimm", A: dstInt, B: baseInt, C: imm, D: scratchInt})
}

func (r *RecordingEmitter) LaneLoad(hostQuad, baseInt, lane int) {
	r.Ops = append(r.Ops, Op{Kind: "laneload", A: hostQuad, B: baseInt, C: int32(lane)})
}

func (r *RecordingEmitter) LaneStore(hostQuad, baseInt, lane int) {
	r.Ops = append(r.Ops, Op{Kind: "lanestore", A: hostQuad, B: baseInt, C: int32(lane)})
}

func (r *RecordingEmitter) VecLoad(hostDouble, baseInt, laneCount int) {
	r.Ops = append(r.Ops, Op{Kind: "vecload", A: hostDouble, B: baseInt, C: int32(laneCount)})
}

func (r *RecordingEmitter) VecStore(hostDouble, baseInt, laneCount int) {
	r.Ops = append(r.Ops, Op{Kind: "vecstore", A: hostDouble, B: baseInt, C: int32(laneCount)})
}

// Reset clears the recorded op log without allocating a new slice.
func (r *RecordingEmitter) Reset() { r.Ops = r.Ops[:0] }

// Kinds returns just the Kind of each recorded op, for terse assertions
// against an expected op-sequence shape.
func (r *RecordingEmitter) Kinds() []string {
	kinds := make([]string, len(r.Ops))
	for i, op := range r.Ops {
		kinds[i] = op.Kind
	}
	return kinds
}

// StaticGuest is a fixed GuestDescriptor, sufficient for tests and
// cmd/fpudump where the context base register and scratch count never
// change mid-run.
type StaticGuest struct {
	Base    int
	Scratch int
}

func (g StaticGuest) ContextBase() int { return g.Base }
func (g StaticGuest) NumScratch() int  { return g.Scratch }

// RecordingLogger is a Logger that appends every message to Messages
// instead of writing to the standard logger, so tests can assert on
// failure-path diagnostics.
type RecordingLogger struct {
	Messages []string
}

func (r *RecordingLogger) Errorf(format string, args ...any) {
	r.Messages = append(r.Messages, fmt.Sprintf(format, args...))
}
