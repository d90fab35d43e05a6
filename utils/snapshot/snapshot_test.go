package snapshot_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/motion-planner-go/utils/snapshot"
)

func TestCellEmpty(t *testing.T) {
	var c snapshot.Cell[int]
	v, ok := c.Load()
	assert.False(t, ok)
	assert.Equal(t, 0, v)
}

func TestCellLastWriteWins(t *testing.T) {
	var c snapshot.Cell[map[int32]string]
	c.Store(map[int32]string{1: "a"})
	c.Store(map[int32]string{2: "b"})

	v, ok := c.Load()
	assert.True(t, ok)
	assert.Equal(t, map[int32]string{2: "b"}, v)
}

func TestCellConcurrentStore(t *testing.T) {
	var c snapshot.Cell[int]
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Store(i)
		}()
	}
	wg.Wait()

	v, ok := c.Load()
	assert.True(t, ok)
	assert.GreaterOrEqual(t, v, 0)
	assert.Less(t, v, 100)
}
