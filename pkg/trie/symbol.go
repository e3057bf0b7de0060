package trie

import "math"

// Symbol is a positive 64-bit integer labeling a single edge of the tree.
//
// Valid symbols are in the range [1, math.MaxInt64]. Zero and values above
// math.MaxInt64 are reserved: zero is never a key, and [symbolFrozen] marks
// a slot whose containing array has been superseded by a larger one (see
// childarray.go). An unused slot holds no entry at all (a nil *entry). Neither can ever be passed by a caller,
// because [Symbol.validate] rejects them before they reach the tree.
type Symbol uint64

const (
	// symbolEmpty is the zero value of Symbol. It is rejected by
	// [Symbol.validate]; it is never stored in a slot.
	symbolEmpty Symbol = 0

	// symbolFrozen marks a slot of an array that is being superseded by a
	// successor array; the slot must reject further insertion. It is chosen from the sentinel
	// range above math.MaxInt64 so it can never collide with a caller-valid
	// symbol.
	symbolFrozen Symbol = math.MaxUint64
)

// validate reports an [InvalidSymbolError] if s is zero, negative when
// reinterpreted as a signed 64-bit integer, or one of the reserved
// sentinels above math.MaxInt64 (which includes [symbolFrozen]).
func (s Symbol) validate() error {
	if s == symbolEmpty || s > math.MaxInt64 {
		return &InvalidSymbolError{Symbol: uint64(s)}
	}
	return nil
}
