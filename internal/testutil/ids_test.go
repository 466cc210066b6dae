package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequentialIDs(t *testing.T) {
	gen := NewSequentialIDs("")

	assert.Equal(t, "doc-1", gen.Generate())
	assert.Equal(t, "doc-2", gen.Generate())

	gen.Reset()
	assert.Equal(t, "doc-1", gen.Generate())
}

func TestSequentialIDs_Prefix(t *testing.T) {
	gen := NewSequentialIDs("coupon")
	assert.Equal(t, "coupon-1", gen.Generate())
}

func TestSequentialIDs_ThreadSafe(t *testing.T) {
	gen := NewSequentialIDs("")
	const goroutines = 50
	const calls = 100

	var mu sync.Mutex
	seen := make(map[string]bool, goroutines*calls)

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < calls; j++ {
				id := gen.Generate()
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, goroutines*calls, "every id is unique")
}
