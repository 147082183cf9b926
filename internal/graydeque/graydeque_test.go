package graydeque

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmptyDeque(t *testing.T) {
	d := New[string]()
	require.True(t, d.Empty())
	require.Equal(t, 0, d.Len())
	require.Nil(t, d.PopFront())
}

func TestPushFrontPopFrontOrder(t *testing.T) {
	d := New[string]()
	a := &Node[string]{Value: "a"}
	b := &Node[string]{Value: "b"}
	c := &Node[string]{Value: "c"}

	d.PushFront(a)
	d.PushFront(b)
	d.PushFront(c)
	require.Equal(t, 3, d.Len())

	require.Same(t, c, d.PopFront())
	require.Same(t, b, d.PopFront())
	require.Same(t, a, d.PopFront())
	require.True(t, d.Empty())
}

func TestPushBackPopFrontOrder(t *testing.T) {
	d := New[int]()
	a := &Node[int]{Value: 1}
	b := &Node[int]{Value: 2}
	c := &Node[int]{Value: 3}

	d.PushBack(a)
	d.PushBack(b)
	d.PushBack(c)

	require.Same(t, a, d.PopFront())
	require.Same(t, b, d.PopFront())
	require.Same(t, c, d.PopFront())
}

func TestMixedFrontAndBack(t *testing.T) {
	d := New[int]()
	a := &Node[int]{}
	b := &Node[int]{}
	c := &Node[int]{}

	d.PushBack(a)
	d.PushFront(b) // b, a
	d.PushBack(c)  // b, a, c

	require.Same(t, b, d.PopFront())
	require.Same(t, a, d.PopFront())
	require.Same(t, c, d.PopFront())
}

func TestRemoveUnlinksNode(t *testing.T) {
	d := New[int]()
	a := &Node[int]{}
	b := &Node[int]{}
	c := &Node[int]{}
	d.PushBack(a)
	d.PushBack(b)
	d.PushBack(c)

	d.Remove(b)
	require.False(t, b.Linked())
	require.Equal(t, 2, d.Len())

	require.Same(t, a, d.PopFront())
	require.Same(t, c, d.PopFront())
}

func TestRemoveNotLinkedIsNoop(t *testing.T) {
	d := New[int]()
	n := &Node[int]{}
	d.Remove(n) // must not panic
	require.Equal(t, 0, d.Len())
}

func TestPushTwiceOnSameNodePanics(t *testing.T) {
	d := New[int]()
	n := &Node[int]{}
	d.PushBack(n)
	require.Panics(t, func() { d.PushBack(n) })
}

func TestLinked(t *testing.T) {
	d := New[int]()
	n := &Node[int]{}
	require.False(t, n.Linked())
	d.PushBack(n)
	require.True(t, n.Linked())
	d.PopFront()
	require.False(t, n.Linked())
}
