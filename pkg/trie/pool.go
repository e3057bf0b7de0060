package trie

import (
	"sync/atomic"

	"github.com/timandy/routine"

	"github.com/flier/lockfreetrie/internal/xsync"
)

// allocator is the node and child-array source backing one [Tree].
//
// spec.md §5 calls for "a per-thread bump allocator or object pool" on the
// insertion hot path, since [Node.At] speculatively allocates a node before
// every CAS attempt and throws the allocation away on a losing race. This
// allocator gives each goroutine its own freelist of recycled *Node values
// (via [xsync.Pool], the teacher's generic sync.Pool wrapper, keyed by
// goroutine through [routine.ThreadLocal] exactly as internal/debug already
// does for its testing hook) so that a CAS loser's node goes back onto a
// freelist instead of pure garbage, while still being perfectly safe to
// simply drop — Go's GC reclaims whatever isn't recycled.
//
// Child arrays are not pooled: their backing slice length varies with
// capacity class, and growth events (which is the only place arrays are
// allocated) are rare enough relative to node allocation that a generic,
// fixed-shape Pool[T] would not pay for its own bookkeeping.
type allocator struct {
	nodePools routine.ThreadLocal[*xsync.Pool[Node]]

	// failNext forces the next allocation to fail with
	// [AllocationExhaustedError], for deterministically exercising that
	// path in tests (see pkg/trie's internal allocator_test.go). It is
	// never set outside of tests and carries no cost on the hot path
	// beyond one atomic load.
	failNext atomic.Bool
}

func newAllocator() *allocator {
	return &allocator{nodePools: routine.NewThreadLocal[*xsync.Pool[Node]]()}
}

func (a *allocator) pool() *xsync.Pool[Node] {
	p := a.nodePools.Get()
	if p == nil {
		p = &xsync.Pool[Node]{Reset: resetNode}
		a.nodePools.Set(p)
	}
	return p
}

// newNode returns a zeroed *Node bound to this allocator, either recycled
// from the calling goroutine's freelist or freshly allocated.
func (a *allocator) newNode() (*Node, error) {
	if a.failNext.CompareAndSwap(true, false) {
		return nil, &AllocationExhaustedError{}
	}

	n := a.pool().Get()
	n.alloc = a
	return n, nil
}

// release returns a node that lost its publishing CAS back to the calling
// goroutine's freelist, so the next speculative allocation can reuse it
// instead of allocating anew.
func (a *allocator) release(n *Node) {
	a.pool().Put(n)
}

// newArray allocates a fresh childArray of the given kind and capacity. It
// is only called from growth (childarray.go/node.go), never on the common
// find-or-insert path, so it is not pooled — see the allocator doc comment.
func (a *allocator) newArray(kind arrayKind, capacity int) (*childArray, error) {
	if a.failNext.CompareAndSwap(true, false) {
		return nil, &AllocationExhaustedError{}
	}

	return &childArray{kind: kind, slots: make([]slot, capacity)}, nil
}

func resetNode(n *Node) {
	n.value.Store(0)
	n.children.Store(nil)
	n.alloc = nil
}
