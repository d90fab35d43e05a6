package clock_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/motion-planner-go/clock"
	"github.com/tsinghua-fib-lab/motion-planner-go/utils/config"
)

func TestClockStep(t *testing.T) {
	c := clock.New(config.Planner{LoopRate: 10})
	assert.Equal(t, 0.1, c.CYCLE_TIME)
	assert.Equal(t, int32(0), c.Tick)
	assert.Equal(t, 0.0, c.T)

	c.Step()
	c.Step()
	assert.Equal(t, int32(2), c.Tick)
	assert.InDelta(t, 0.2, c.T, 1e-9)

	c.Init()
	assert.Equal(t, int32(0), c.Tick)
	assert.Equal(t, 0.0, c.T)
}
