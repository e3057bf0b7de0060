package trie

import "github.com/dolthub/maphash"

// symbolHasher mixes a [Symbol] into a well-distributed 64-bit scramble for
// use as a slot index in a hash child array.
//
// The identity function is explicitly forbidden by spec.md §4.4/§9.6: a
// sequential workload over the identity hash clusters every key into a run
// of adjacent slots, which defeats linear probing entirely. Rather than
// hand-roll a multiplicative/xorshift mixer, this reuses the same
// dependency the teacher's open-addressed map uses to hash its generic
// keys (see pkg/arena/swiss/map.go in the reference corpus): a seeded,
// non-identity hash with good avalanche behavior, here specialized to
// uint64.
var symbolHasher = maphash.NewHasher[uint64]()

// mix returns a 64-bit scramble of s, suitable for reducing modulo a
// hash array's power-of-two capacity.
func mix(s Symbol) uint64 {
	return symbolHasher.Hash(uint64(s))
}
