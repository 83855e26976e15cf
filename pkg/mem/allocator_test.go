package mem_test

import (
	"plvm/pkg/mem"
	"testing"

	"github.com/nalgeon/be"
)

func TestAllocatorIndices(t *testing.T) {
	a := mem.NewAllocator()

	be.Equal(t, a.NextIntIndex(), 0)
	be.Equal(t, a.NextIntIndex(), 1)
	be.Equal(t, a.NextRefIndex(), 0)
	be.Equal(t, a.NextDoubleIndex(), 0)
	be.Equal(t, a.NextIntIndex(), 2)
	be.Equal(t, a.NextIndex(mem.KindBool), 0)
	be.Equal(t, a.NextIndex(mem.KindNone), -1)

	be.Equal(t, a.Total(), mem.Total{Ints: 3, Doubles: 1, Bools: 1, Refs: 1})
}

func TestAllocatorFromOffset(t *testing.T) {
	a := mem.NewAllocatorFrom(mem.Total{Refs: 1, Longs: 2})

	be.Equal(t, a.NextRefIndex(), 1)
	be.Equal(t, a.NextLongIndex(), 2)
	be.Equal(t, a.Total(), mem.Total{Longs: 3, Refs: 2})
}

func TestAllocatorDeterministic(t *testing.T) {
	layout := func() mem.Total {
		a := mem.NewAllocator()
		for _, k := range []mem.Kind{mem.KindInt, mem.KindRef, mem.KindFloat, mem.KindInt, mem.KindLong} {
			a.NextIndex(k)
		}
		return a.Total()
	}

	be.Equal(t, layout(), layout())
}

func TestFixedProviderEquality(t *testing.T) {
	var p1 mem.Provider = mem.Fixed{Refs: 1}
	var p2 mem.Provider = mem.Fixed{Refs: 1}
	var p3 mem.Provider = mem.Fixed{Ints: 1}

	be.True(t, p1 == p2)
	be.True(t, p1 != p3)
	be.Equal(t, p1.MemoryTotal().Count(mem.KindRef), 1)
}
