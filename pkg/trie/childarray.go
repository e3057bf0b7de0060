package trie

import (
	"sync/atomic"

	"github.com/flier/lockfreetrie/internal/debug"
)

// Growth schedule (spec.md §9 "Open questions": any monotone schedule
// satisfying the Empty -> Linear(2) -> Linear(4) -> ... -> Linear(max) ->
// Hash(H) -> Hash(2H) -> ... chain is compliant; these constants are the
// one this package picked).
const (
	// linearMinCap is the capacity of the first array a node grows into.
	linearMinCap = 2

	// linearMaxCap is the largest linear capacity before switching to a
	// hash array. Beyond this point linear scans start to cost more than a
	// single probe.
	linearMaxCap = 16

	// hashMinCap is the capacity of the first hash array a node grows into
	// from a full Linear(linearMaxCap). Must be a power of two.
	hashMinCap = 32

	// hashLoadFactorNum/hashLoadFactorDen bound the fraction of occupied
	// slots a hash array tolerates before a further doubling is forced,
	// keeping average probe length low under the adversarial flat
	// workloads spec.md §8's S3/S7 exercise.
	hashLoadFactorNum = 2
	hashLoadFactorDen = 3
)

// arrayKind tags which representation a childArray uses. It is set once at
// construction and never changes — invariant 4 (spec.md §3) forbids a
// child array from changing variant in place; instead a new childArray of
// the next kind/capacity is built and published over it.
type arrayKind uint8

const (
	kindLinear arrayKind = iota
	kindHash
)

func (k arrayKind) String() string {
	switch k {
	case kindLinear:
		return "linear"
	case kindHash:
		return "hash"
	default:
		return "unknown"
	}
}

// entry is an immutable (symbol, child) pair. Once published into a slot it
// is never mutated in place — freezing a slot replaces the whole *entry
// pointer via CAS, it does not write through the old one — so any goroutine
// holding an *entry read from a slot can read its fields without further
// synchronization.
type entry struct {
	symbol Symbol
	child  *Node
}

// slot is one (symbol, child) position in a childArray. A nil e.Load()
// means the slot is unused.
type slot struct {
	e atomic.Pointer[entry]
}

// childArray is a node's set of outgoing edges, in one of two non-empty
// representations (the "Empty" representation of spec.md §3 is modeled as
// a nil *childArray on the owning [Node], not as a kind here — see
// [Node.At]).
type childArray struct {
	kind  arrayKind
	slots []slot

	// occupied is an approximate count of non-empty, non-frozen slots, used
	// only by the hash representation to decide when to grow before a
	// probe sequence degrades. It is incremented on every successful
	// insertion CAS and is never decremented (nodes are never deleted), so
	// it is exact for a hash array's own lifetime even though it is not
	// linearized with any single operation.
	occupied atomic.Int64

	// growing gates spec.md §4.3's "if two threads try to grow concurrently,
	// only one's CAS at step 4 succeeds": whichever goroutine wins this CAS
	// is the sole designated grower of this array — it alone freezes and
	// collects the array's slots and publishes the successor. Every other
	// goroutine that observes resFull on the same array loses this CAS and
	// must not call freezeAndCollect itself; freezing is not idempotent
	// across independent callers (two independent freeze passes each only
	// see the slots they personally win the freeze race on, so either pass
	// alone can miss entries the other one froze first). Losers instead wait
	// for the designated grower to publish, then retry from Node.children.
	growing atomic.Bool
}

// findResult classifies the outcome of a single attempt to find-or-insert a
// symbol into a childArray.
type findResult int

const (
	// resFound means the symbol was already present; the returned *Node is
	// the existing child.
	resFound findResult = iota
	// resInserted means the symbol was newly installed; the returned *Node
	// is the node freshly allocated for it.
	resInserted
	// resFull means no slot could be claimed; the caller must grow the
	// array and retry.
	resFull
	// resFrozen means the array (or the probed slot) is being superseded by
	// a successor; the caller must restart from the node's children
	// pointer.
	resFrozen
)

func (r findResult) String() string {
	switch r {
	case resFound:
		return "found"
	case resInserted:
		return "inserted"
	case resFull:
		return "full"
	case resFrozen:
		return "frozen"
	default:
		return "unknown"
	}
}

// findOrInsert locates sym in a, installing a node freshly allocated from
// alloc if it is not already present. It never blocks: every branch either
// completes in place or returns a result telling the caller what to do
// next. A node allocated speculatively for a CAS that ends up losing is
// released back to alloc rather than left for the GC, per spec.md §4.2's
// note that lost speculative allocations must be handleable without an
// unbounded leak.
func (a *childArray) findOrInsert(sym Symbol, alloc *allocator) (*Node, findResult, error) {
	switch a.kind {
	case kindLinear:
		return a.findOrInsertLinear(sym, alloc)
	case kindHash:
		return a.findOrInsertHash(sym, alloc)
	default:
		panic("trie: childArray with unknown kind")
	}
}

// findOrInsertLinear scans slots left-to-right, per spec.md §4.2's Linear
// bullet.
func (a *childArray) findOrInsertLinear(sym Symbol, alloc *allocator) (*Node, findResult, error) {
	for i := range a.slots {
		s := &a.slots[i]
		cur := s.e.Load()

		switch {
		case cur == nil:
			child, err := alloc.newNode()
			if err != nil {
				return nil, 0, err
			}

			cand := &entry{symbol: sym, child: child}
			if s.e.CompareAndSwap(nil, cand) {
				return child, resInserted, nil
			}
			alloc.release(child)

			// Another inserter won the race for this slot; see who.
			cur = s.e.Load()
			switch {
			case cur != nil && cur.symbol == sym:
				return cur.child, resFound, nil
			case cur != nil && cur.symbol == symbolFrozen:
				return nil, resFrozen, nil
			default:
				// Occupied by a different symbol now; keep scanning.
				continue
			}

		case cur.symbol == sym:
			return cur.child, resFound, nil

		case cur.symbol == symbolFrozen:
			return nil, resFrozen, nil

		default:
			continue
		}
	}

	return nil, resFull, nil
}

// findOrInsertHash probes from hash(sym) mod capacity with linear probing,
// per spec.md §4.2's Hash bullet.
func (a *childArray) findOrInsertHash(sym Symbol, alloc *allocator) (*Node, findResult, error) {
	cap := uint64(len(a.slots))
	start := mix(sym) % cap

	for step := uint64(0); step < cap; step++ {
		idx := (start + step) % cap
		s := &a.slots[idx]
		cur := s.e.Load()

		switch {
		case cur == nil:
			if a.overLoadFactor() {
				return nil, resFull, nil
			}

			child, err := alloc.newNode()
			if err != nil {
				return nil, 0, err
			}

			cand := &entry{symbol: sym, child: child}
			if s.e.CompareAndSwap(nil, cand) {
				a.occupied.Add(1)
				return child, resInserted, nil
			}
			alloc.release(child)

			cur = s.e.Load()
			switch {
			case cur != nil && cur.symbol == sym:
				return cur.child, resFound, nil
			case cur != nil && cur.symbol == symbolFrozen:
				return nil, resFrozen, nil
			default:
				continue // probe the next slot
			}

		case cur.symbol == sym:
			return cur.child, resFound, nil

		case cur.symbol == symbolFrozen:
			return nil, resFrozen, nil

		default:
			continue
		}
	}

	return nil, resFull, nil
}

// overLoadFactor reports whether this hash array has crossed its load
// factor bound and should be grown before accepting another insertion.
func (a *childArray) overLoadFactor() bool {
	occ := a.occupied.Load()
	cap := int64(len(a.slots))
	return occ*hashLoadFactorDen >= cap*hashLoadFactorNum
}

// freezeAndCollect freezes every slot of a, returning the (symbol, child)
// pairs that were live at the instant each was frozen. Only called by the
// goroutine that won a's growing gate (see Node.growChildren) — it is the
// sole freezer of a, so every slot here is unfrozen until this pass reaches
// it; concurrent inserters are the only other possible writer to a slot.
//
// The freeze CAS on a given slot is the linearization point for "what this
// slot's final content is": whichever entry a concurrent inserter or this
// freezer manages to install last, before the slot stops accepting nil ->
// entry CASes, is the one copied forward. Freezing before copying (rather
// than copying then freezing in bulk) is what prevents losing an insert
// that races with growth — see DESIGN.md for why the naive copy-then-freeze
// order is unsound.
func (a *childArray) freezeAndCollect() []entry {
	live := make([]entry, 0, len(a.slots))

	for i := range a.slots {
		s := &a.slots[i]

		for {
			cur := s.e.Load()
			debug.Assert(cur == nil || cur.symbol != symbolFrozen, "slot %d frozen by someone other than the designated grower", i)

			var frozen *entry
			if cur == nil {
				frozen = &entry{symbol: symbolFrozen}
			} else {
				frozen = &entry{symbol: symbolFrozen, child: cur.child}
			}

			if s.e.CompareAndSwap(cur, frozen) {
				if cur != nil {
					debug.Assert(cur.child != nil, "frozen slot %d carried a nil child at:\n%s", i, debug.Stack(0))
					live = append(live, entry{symbol: cur.symbol, child: cur.child})
				}
				break
			}
			// Lost the race against a concurrent inserter claiming this slot;
			// reload and retry the freeze with the new observed value.
		}
	}

	return live
}

// insertFresh installs (sym, child) into a that is still private to the
// calling goroutine (not yet published on any Node.children), so no CAS
// race is possible. It is used only while building a growth successor.
func (a *childArray) insertFresh(sym Symbol, child *Node) {
	switch a.kind {
	case kindLinear:
		for i := range a.slots {
			if a.slots[i].e.Load() == nil {
				a.slots[i].e.Store(&entry{symbol: sym, child: child})
				return
			}
		}
		panic("trie: linear successor array too small for its source")

	case kindHash:
		cap := uint64(len(a.slots))
		start := mix(sym) % cap
		for step := uint64(0); step < cap; step++ {
			idx := (start + step) % cap
			if a.slots[idx].e.Load() == nil {
				a.slots[idx].e.Store(&entry{symbol: sym, child: child})
				a.occupied.Add(1)
				return
			}
		}
		panic("trie: hash successor array too small for its source")
	}
}

// nextCapacityKind returns the representation old (nil meaning Empty)
// should grow into, per invariant 4 (spec.md §3): Empty -> Linear(2) ->
// Linear(4) -> ... -> Linear(max) -> Hash(H) -> Hash(2H) -> ...
func nextCapacityKind(old *childArray) (arrayKind, int) {
	if old == nil {
		return kindLinear, linearMinCap
	}

	switch old.kind {
	case kindLinear:
		next := len(old.slots) * 2
		if next > linearMaxCap {
			return kindHash, hashMinCap
		}
		return kindLinear, next
	case kindHash:
		return kindHash, len(old.slots) * 2
	default:
		panic("trie: childArray with unknown kind")
	}
}
