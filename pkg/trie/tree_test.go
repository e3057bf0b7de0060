package trie

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestNew(t *testing.T) {
	Convey("New returns an empty, usable tree", t, func() {
		tree := New()

		So(tree.Root(), ShouldNotBeNil)
		So(tree.Root().Value(), ShouldEqual, 0)
		So(tree.Root().ChildCount(), ShouldEqual, 0)
		So(tree.Depth(), ShouldEqual, 0)
	})
}

func TestRootIsStable(t *testing.T) {
	Convey("Given a tree that has grown children", t, func() {
		tree := New()
		root := tree.Root()

		for i := uint64(1); i <= 64; i++ {
			_, err := root.At(i)
			So(err, ShouldBeNil)
		}

		Convey("Root() keeps returning the same node", func() {
			So(tree.Root(), ShouldEqual, root)
		})
	})
}

func TestDepthTracksLongestPath(t *testing.T) {
	Convey("Given a tree with two branches of different depth", t, func() {
		tree := New()
		root := tree.Root()

		_, err := descend(root, 1, 2)
		So(err, ShouldBeNil)
		So(tree.Depth(), ShouldEqual, 2)

		_, err = descend(root, 3, 4, 5, 6)
		So(err, ShouldBeNil)

		Convey("Depth reports the longest root-to-leaf path", func() {
			So(tree.Depth(), ShouldEqual, 4)
		})
	})
}
