package trie

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

// TestSmallAlphabetSingleThread implements scenario S1 from spec.md §8.
func TestSmallAlphabetSingleThread(t *testing.T) {
	Convey("Given a fresh tree", t, func() {
		tree := New()
		root := tree.Root()

		Convey("Setting a value three levels deep", func() {
			leaf, err := descend(root, 2, 12, 18)
			So(err, ShouldBeNil)
			leaf.SetValue(42)

			again, err := descend(root, 2, 12, 18)
			So(err, ShouldBeNil)
			So(again.Value(), ShouldEqual, 42)
		})

		Convey("Siblings under the same parent keep independent values", func() {
			a, err := descend(root, 2, 12, 18)
			So(err, ShouldBeNil)
			a.SetValue(42)

			b, err := descend(root, 2, 12, 19)
			So(err, ShouldBeNil)
			b.SetValue(43)

			c, err := descend(root, 2, 12, 20)
			So(err, ShouldBeNil)
			c.SetValue(44)

			So(a.Value(), ShouldEqual, 42)
			So(b.Value(), ShouldEqual, 43)
			So(c.Value(), ShouldEqual, 44)
		})

		Convey("A separate branch does not disturb existing values", func() {
			a, _ := descend(root, 2, 12, 18)
			a.SetValue(42)
			b, _ := descend(root, 2, 12, 19)
			b.SetValue(43)

			d, err := descend(root, 3, 19)
			So(err, ShouldBeNil)
			d.SetValue(21)

			So(a.Value(), ShouldEqual, 42)
			So(b.Value(), ShouldEqual, 43)
			So(d.Value(), ShouldEqual, 21)
		})

		Convey("IncValue accumulates", func() {
			leaf, err := descend(root, 3, 19, 11)
			So(err, ShouldBeNil)

			leaf.IncValue()
			leaf.IncValue()

			So(leaf.Value(), ShouldEqual, 2)
		})

		Convey("A small fan-out of siblings all read back correctly", func() {
			for i := uint64(1); i <= 5; i++ {
				leaf, err := descend(root, 1, 2, i)
				So(err, ShouldBeNil)
				leaf.SetValue(int64(i * 10))
			}

			for i := uint64(1); i <= 5; i++ {
				leaf, err := descend(root, 1, 2, i)
				So(err, ShouldBeNil)
				So(leaf.Value(), ShouldEqual, int64(i*10))
			}
		})
	})
}

// TestNodeIdentityStability covers universal property 2 from spec.md §8:
// repeated traversal of the same path always returns the same *Node.
func TestNodeIdentityStability(t *testing.T) {
	Convey("Given a tree with an established path", t, func() {
		tree := New()
		root := tree.Root()

		first, err := descend(root, 7, 8, 9)
		So(err, ShouldBeNil)

		Convey("Re-traversing the same path returns the identical node", func() {
			for range 10 {
				again, err := descend(root, 7, 8, 9)
				So(err, ShouldBeNil)
				So(again, ShouldEqual, first)
			}
		})
	})
}

// TestValueOperations exercises Value/Get/SetValue/IncValue/IncrementAndGet
// in isolation, independent of child-array state.
func TestValueOperations(t *testing.T) {
	Convey("Given a fresh node", t, func() {
		tree := New()
		n := tree.Root()

		Convey("Value starts at zero", func() {
			So(n.Value(), ShouldEqual, 0)
			So(n.Get(), ShouldEqual, n.Value())
		})

		Convey("SetValue overwrites arbitrarily, including negative", func() {
			n.SetValue(-17)
			So(n.Value(), ShouldEqual, -17)
		})

		Convey("IncrementAndGet returns the post-increment value", func() {
			n.SetValue(9)
			So(n.IncrementAndGet(), ShouldEqual, 10)
			So(n.Value(), ShouldEqual, 10)
		})

		Convey("Value state is independent of descending into children", func() {
			n.SetValue(5)
			_, err := n.At(1)
			So(err, ShouldBeNil)
			So(n.Value(), ShouldEqual, 5)
		})
	})
}

// TestInvalidSymbolLeavesTreeUnmodified checks spec.md §7: a rejected
// symbol must not perturb the tree.
func TestInvalidSymbolLeavesTreeUnmodified(t *testing.T) {
	Convey("Given a fresh node", t, func() {
		tree := New()
		root := tree.Root()

		Convey("At(0) fails and adds no children", func() {
			_, err := root.At(0)
			So(err, ShouldNotBeNil)

			var invalid *InvalidSymbolError
			So(err, ShouldHaveSameTypeAs, invalid)
			So(root.ChildCount(), ShouldEqual, 0)
		})

		Convey("At(MaxInt64+1) fails", func() {
			_, err := root.At(1 << 63)
			So(err, ShouldNotBeNil)
		})

		Convey("A valid call after a rejected one still succeeds", func() {
			_, err := root.At(0)
			So(err, ShouldNotBeNil)

			child, err := root.At(5)
			So(err, ShouldBeNil)
			So(child, ShouldNotBeNil)
			So(root.ChildCount(), ShouldEqual, 1)
		})
	})
}

// descend walks root.At(path[0]).At(path[1])... returning the final node.
func descend(root *Node, path ...uint64) (*Node, error) {
	n := root
	for _, sym := range path {
		var err error
		n, err = n.At(sym)
		if err != nil {
			return nil, err
		}
	}
	return n, nil
}
