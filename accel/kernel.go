package accel

import "fmt"

// Range is a one-dimensional dispatch: Global work-items split into groups
// of Local items. Global must be a positive multiple of Local.
type Range struct {
	Global int
	Local  int
}

// NewRange covers items work-items with groups of size group, rounding the
// global size up to the next multiple of group.
func NewRange(items, group int) Range {
	if group < 1 {
		group = 1
	}
	if items < 1 {
		items = 1
	}

	return Range{Global: (items + group - 1) / group * group, Local: group}
}

// Groups returns Global / Local.
func (r Range) Groups() int { return r.Global / r.Local }

// String renders "global/local".
func (r Range) String() string { return fmt.Sprintf("%d/%d", r.Global, r.Local) }

// Kernel is a device program. Func runs once per work-item; it must only
// touch memory through the Item it is given.
type Kernel struct {
	Name string
	// Buffers and Scalars are the argument counts Dispatch checks Args against.
	Buffers int
	Scalars int
	Func    func(it *Item)
}

// Args binds kernel arguments in positional order.
type Args struct {
	Buffers []*Buffer
	Scalars []int32
}

// Item is the view of one work-item. It is reused across the items of a
// group and must not be retained by the kernel.
type Item struct {
	// Global is the work-item index within the dispatch.
	Global int
	// Local is the index within the work-group.
	Local int
	// Group is the work-group index.
	Group int

	mem     [][]int32
	scalars []int32
}

// Buffer returns the device memory bound to buffer argument i.
func (it *Item) Buffer(i int) []int32 { return it.mem[i] }

// Scalar returns scalar argument i.
func (it *Item) Scalar(i int) int32 { return it.scalars[i] }
