// Package trie provides a lock-free concurrent prefix tree keyed by
// sequences of positive 64-bit integers ("symbols"), with a single 64-bit
// counter stored at each reachable node.
//
// # Overview
//
// A [Tree] exposes a single [Node] root. Traversal proceeds by repeatedly
// asking a node for its child under a given symbol via [Node.At], creating
// that child on demand. Every node reachable from the root is addressable
// by the unique symbol sequence used to reach it, and that reference is
// stable for the lifetime of the tree: once [Node.At] returns a child for a
// given symbol, every future call with that symbol on that parent — from
// any goroutine — returns the same *Node.
//
// Internally, each node's set of children is stored in one of three
// representations that are switched in place as the set grows: empty, a
// small linear array filled left-to-right, and a power-of-two hash array
// with linear probing. The transition between representations is a
// lock-free, CAS-raced "freeze then publish" protocol (see childarray.go);
// callers never observe it, only its effect on the mapping from symbol to
// child.
//
// # Concurrency
//
// A goroutine that loses a race either finds that another goroutine already
// completed the same logical step (and adopts its result), or, when the
// array it needs to grow is already being grown by another goroutine, waits
// for that goroutine to publish the successor array before retrying. No goroutine holds a lock, and none can block another's
// progress indefinitely — the tree is lock-free, not wait-free, per
// sync/atomic's usual guarantees.
//
// # Non-goals
//
// Deletion, iteration in key order, range queries, persistence, and bounded
// memory are explicitly out of scope: nodes are created on first descent
// and never destroyed for the lifetime of the tree.
//
// # Usage
//
//	tree := trie.New()
//	leaf, err := tree.Root().At(2)
//	if err != nil {
//		// symbol was zero, negative, or a reserved sentinel
//	}
//	leaf.SetValue(42)
//	leaf.IncValue()
//	fmt.Println(leaf.Value()) // 43
//
// Run the package's tests with -race; the properties this package claims
// (linearizability, lock-freedom, counter conservation under concurrent
// increments) are only meaningfully checked under the race detector.
package trie
