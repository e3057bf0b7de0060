package trie

import "fmt"

// InvalidSymbolError is returned by [Node.At] when the caller passes zero,
// a value that would be negative as a signed 64-bit integer, or a reserved
// sentinel. The tree is left unmodified.
type InvalidSymbolError struct {
	// Symbol is the rejected value, as the caller supplied it.
	Symbol uint64
}

func (e *InvalidSymbolError) Error() string {
	return fmt.Sprintf("trie: invalid symbol %d: must be a positive int64", e.Symbol)
}

// AllocationExhaustedError is returned by [Node.At] when the backing
// allocator cannot provide a new node or child array. The tree is left
// unmodified. Callers that want this to be fatal, as spec.md §7 permits,
// can simply panic on a non-nil error of this type.
type AllocationExhaustedError struct{}

func (e *AllocationExhaustedError) Error() string {
	return "trie: allocator exhausted"
}
