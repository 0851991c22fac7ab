package engine

// eligibilityIndex is the live set of sessions still eligible to win.
// A dense id slice plus an id→slot map give O(1) membership, insert and
// removal; removal swaps the victim with the last element and truncates,
// so iteration order is not preserved.
type eligibilityIndex struct {
	ids  []uint64
	slot map[uint64]int
}

func newEligibilityIndex() *eligibilityIndex {
	return &eligibilityIndex{slot: make(map[uint64]int)}
}

func (x *eligibilityIndex) Contains(id uint64) bool {
	_, ok := x.slot[id]
	return ok
}

func (x *eligibilityIndex) Len() int { return len(x.ids) }

// Add inserts id; inserting a member is a no-op.
func (x *eligibilityIndex) Add(id uint64) {
	if _, ok := x.slot[id]; ok {
		return
	}
	x.slot[id] = len(x.ids)
	x.ids = append(x.ids, id)
}

// Remove deletes id via swap-with-last; removing a non-member is a no-op.
func (x *eligibilityIndex) Remove(id uint64) {
	i, ok := x.slot[id]
	if !ok {
		return
	}
	last := len(x.ids) - 1
	moved := x.ids[last]
	x.ids[i] = moved
	x.slot[moved] = i
	x.ids = x.ids[:last]
	delete(x.slot, id)
}

// IDs returns a copy of the member set in storage order.
func (x *eligibilityIndex) IDs() []uint64 {
	out := make([]uint64, len(x.ids))
	copy(out, x.ids)
	return out
}
