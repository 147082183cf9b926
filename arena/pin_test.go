package arena

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPinCloneIsIndependent(t *testing.T) {
	a := newTestArena(t, DefaultParams())
	pin, err := AllocateRoot[*leaf](a, &leaf{value: 9})
	require.NoError(t, err)

	clone := pin.Clone()
	pin.Drop()

	// The cell is still rooted via clone, so it must survive a cycle.
	require.NoError(t, a.CollectGarbage())
	require.Equal(t, 9, clone.Get().Value.value)

	clone.Drop()
	require.NoError(t, a.CollectGarbage())
	require.Equal(t, int64(0), a.TotalAllocated())
}

func TestRootOnAlreadyRootedCellAddsASecondPin(t *testing.T) {
	a := newTestArena(t, DefaultParams())
	p, err := Allocate[*leaf](a, &leaf{value: 3})
	require.NoError(t, err)

	pin1 := Root(a, p)
	pin2 := Root(a, p)

	pin1.Drop()
	require.NoError(t, a.CollectGarbage())
	require.Equal(t, 3, pin2.Get().Value.value) // still rooted by pin2

	pin2.Drop()
	require.NoError(t, a.CollectGarbage())
	require.Equal(t, int64(0), a.TotalAllocated())
}
