package identityv1

import (
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test 1: identifiers increase strictly within a kind
func TestAllocator_Monotonic(t *testing.T) {
	a := NewAllocator()

	prev := int64(0)
	for i := 0; i < 100; i++ {
		id := a.Next(KindOrder)
		assert.Greater(t, id, prev)
		prev = id
	}
}

// Test 2: kinds are independent, values may repeat across kinds
func TestAllocator_KindsIndependent(t *testing.T) {
	a := NewAllocator()

	assert.Equal(t, int64(1), a.Next(KindOrder))
	assert.Equal(t, int64(1), a.Next(KindAsset))
	assert.Equal(t, int64(1), a.Next(KindTrade))
	assert.Equal(t, int64(2), a.Next(KindOrder))
}

// Test 3: separate allocator instances are isolated
func TestAllocator_InstanceIsolation(t *testing.T) {
	a := NewAllocator()
	b := NewAllocator()

	a.Next(KindOrder)
	a.Next(KindOrder)

	assert.Equal(t, int64(1), b.Next(KindOrder))
}

// Test 4: concurrent allocation never duplicates or skips
func TestAllocator_Concurrent(t *testing.T) {
	a := NewAllocator()

	const goroutines = 16
	const perGoroutine = 500

	results := make([][]int64, goroutines)
	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			ids := make([]int64, 0, perGoroutine)
			for i := 0; i < perGoroutine; i++ {
				ids = append(ids, a.Next(KindOrder))
			}
			results[g] = ids
		}(g)
	}
	wg.Wait()

	var all []int64
	for _, ids := range results {
		all = append(all, ids...)
	}
	sort.Slice(all, func(i, j int) bool { return all[i] < all[j] })

	require.Len(t, all, goroutines*perGoroutine)
	for i, id := range all {
		require.Equal(t, int64(i+1), id)
	}
}
