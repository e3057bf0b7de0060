package trie

import (
	"runtime"
	"sync/atomic"

	"github.com/flier/lockfreetrie/internal/debug"
	"github.com/flier/lockfreetrie/internal/xsync"
)

// Node is one vertex of a [Tree]: a 64-bit counter plus a set of outgoing
// edges to children, addressed by [Symbol]. Every Node reachable from a
// tree's root remains reachable, with the same identity, for the lifetime
// of the tree (spec.md §3 invariant 2) — it is never destroyed and its
// value may be freely read, written, and incremented from any number of
// goroutines concurrently.
type Node struct {
	value xsync.AtomicCell

	// children is nil for the Empty representation (spec.md §3); otherwise
	// it points at the node's current Linear or Hash child array. Growth
	// publishes a new *childArray here via CAS; it never mutates the one
	// already published.
	children atomic.Pointer[childArray]

	alloc *allocator
}

// Value returns the node's current counter, per spec.md §6.
func (n *Node) Value() int64 { return n.value.Load() }

// Get is a synonym of [Node.Value].
func (n *Node) Get() int64 { return n.value.Load() }

// SetValue overwrites the node's counter.
func (n *Node) SetValue(v int64) { n.value.Store(v) }

// IncValue atomically adds one to the node's counter.
func (n *Node) IncValue() { n.value.Add(1) }

// IncrementAndGet atomically adds one to the node's counter and returns the
// result.
func (n *Node) IncrementAndGet() int64 { return n.value.Add(1) }

// At returns the unique child of n under symbol, creating it with value 0
// if it does not already exist. symbol must be a positive value that fits
// in an int64; anything else fails with [InvalidSymbolError] and leaves the
// tree unmodified.
//
// At implements the algorithm of spec.md §4.2: load the published child
// array, dispatch on its representation, and either find an existing slot,
// claim an empty one, grow the array and retry, or restart entirely if a
// concurrent grower has frozen the array out from under the caller.
// Contended callers retry, except that a caller that needs to grow an array
// another goroutine is already growing waits (see [Node.waitForGrowth])
// until that goroutine publishes the successor. Any one caller's number of
// retries isn't bounded in the worst case by anything but the number of
// concurrent writers.
func (n *Node) At(symbol uint64) (*Node, error) {
	sym := Symbol(symbol)
	if err := sym.validate(); err != nil {
		return nil, err
	}

	// Each iteration either installs a child, observes one, or advances the
	// array's capacity class, and capacity classes are finite and strictly
	// increasing, so this loop always terminates. retries is purely a
	// development-time tripwire for catching an unexpected livelock.
	for retries := 0; ; retries++ {
		if debug.Enabled && retries > 0 && retries%(1<<20) == 0 {
			debug.Log(nil, "at", "symbol=%d stuck after %d retries", symbol, retries)
		}

		arr := n.children.Load()

		if arr == nil {
			if err := n.growChildren(nil); err != nil {
				return nil, err
			}
			continue
		}

		child, res, err := arr.findOrInsert(sym, n.alloc)
		if err != nil {
			return nil, err
		}

		switch res {
		case resFound, resInserted:
			debug.Log(nil, "at", "node=%p symbol=%d -> child=%p (%v)", n, symbol, child, res)
			return child, nil

		case resFull:
			if err := n.growChildren(arr); err != nil {
				return nil, err
			}
			continue

		case resFrozen:
			continue

		default:
			panic("trie: unreachable findResult")
		}
	}
}

// growChildren installs a successor child array one capacity class beyond
// old (old may be nil, meaning the node currently has no children at all).
// See childarray.go's freezeAndCollect for why old is frozen slot-by-slot
// before (not after) its live entries are copied forward.
//
// spec.md §4.3 anticipates several threads deciding to grow the same old
// array at once and says only one's publishing CAS succeeds — but freezing
// is not safe to run more than once independently: two goroutines each
// running their own freezeAndCollect pass over the same old array each only
// collect the slots *they* personally win the freeze race on, so either
// pass alone can miss entries the other one froze first, and a frozen slot's
// original symbol is unrecoverable once frozen. So old.growing (a CAS'd
// bool, not the final publishing CAS) is the real single-grower gate: only
// the goroutine that wins it ever calls freezeAndCollect or builds a
// successor for this old. Every other goroutine that observes resFull on
// the same old waits for that designated grower to publish, then retries
// from Node.children.
//
// old == nil (the node has no children yet) needs no such gate: there are
// no slots to freeze, so every racing goroutine's speculative empty
// successor is equally valid and a losing one is simply discarded — nothing
// beyond its own allocation is wasted.
func (n *Node) growChildren(old *childArray) error {
	if old != nil && !old.growing.CompareAndSwap(false, true) {
		n.waitForGrowth(old)
		return nil
	}

	kind, cap := nextCapacityKind(old)

	successor, err := n.alloc.newArray(kind, cap)
	if err != nil {
		if old != nil {
			// Release the gate: nothing has been frozen yet, so old is still
			// fully usable, and some other goroutine must be allowed to
			// become the designated grower on a later retry — otherwise
			// every future resFull on old would spin in waitForGrowth
			// forever, since no one would ever publish a successor.
			old.growing.Store(false)
		}
		return err
	}

	if old != nil {
		for _, e := range old.freezeAndCollect() {
			successor.insertFresh(e.symbol, e.child)
		}
	}

	if n.children.CompareAndSwap(old, successor) {
		debug.Log(nil, "grow", "node=%p %s", n, debug.Dict("childArray",
			"fromCap", oldCap(old), "toCap", cap, "toKind", kind))
		return nil
	}

	// old == nil is the only path that reaches here (the designated-grower
	// gate above makes the old != nil CAS unconditional), and a lost race
	// over an empty array has nothing to clean up beyond letting the GC
	// reclaim `successor`.
	debug.Assert(old == nil, "designated grower for node=%p lost its own publishing CAS", n)

	return nil
}

// waitForGrowth spins until old is no longer the node's published child
// array, i.e. until whichever goroutine won old.growing has published its
// successor. This is the only blocking-shaped wait in the package; it is
// still lock-free overall because the goroutine being waited on is itself
// guaranteed to make progress without needing anything from the waiter.
func (n *Node) waitForGrowth(old *childArray) {
	for spins := 0; n.children.Load() == old; spins++ {
		if debug.Enabled && spins > 0 && spins%(1<<20) == 0 {
			debug.Log(nil, "wait", "node=%p stuck waiting on designated grower after %d spins", n, spins)
		}
		runtime.Gosched()
	}
}

func oldCap(a *childArray) int {
	if a == nil {
		return 0
	}
	return len(a.slots)
}

// ChildCount returns a best-effort count of this node's current children.
// It is not linearizable with concurrent [Node.At] calls on the same node —
// it is meant for diagnostics and tests inspecting tree shape, not for
// control flow.
func (n *Node) ChildCount() int {
	arr := n.children.Load()
	if arr == nil {
		return 0
	}

	count := 0
	for i := range arr.slots {
		if e := arr.slots[i].e.Load(); e != nil && e.symbol != symbolFrozen {
			count++
		}
	}
	return count
}
