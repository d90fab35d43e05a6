package refline_test

import (
	"testing"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/motion-planner-go/entity"
	"github.com/tsinghua-fib-lab/motion-planner-go/entity/refline"
	"github.com/tsinghua-fib-lab/motion-planner-go/utils/config"
)

func testProvider() *refline.Provider {
	return refline.NewProvider(config.Reference{
		LookaheadLength: 50,
		LookbackLength:  30,
		LaneWidth:       3.5,
	})
}

func TestProviderWindowClipping(t *testing.T) {
	p := testProvider()
	p.UpdateRoutes([][]geometry.Point{{{X: 0, Y: 0}, {X: 400, Y: 0}}})
	p.UpdateVehicleState(entity.KinoDynamicState{X: 100, Y: 0})

	lines, ok := p.GetReferenceLines()
	assert.True(t, ok)
	assert.Equal(t, 1, len(lines))
	// 窗口[100-30, 100+50]，长80米，起点x=70
	assert.InDelta(t, 80.0, lines[0].Length(), 1e-9)
	start := lines[0].GetReferencePoint(0)
	assert.InDelta(t, 70.0, start.X, 1e-9)
}

func TestProviderClampsWindowAtRouteStart(t *testing.T) {
	p := testProvider()
	p.UpdateRoutes([][]geometry.Point{{{X: 0, Y: 0}, {X: 400, Y: 0}}})
	p.UpdateVehicleState(entity.KinoDynamicState{X: 10, Y: 0})

	lines, ok := p.GetReferenceLines()
	assert.True(t, ok)
	// 后向窗口被路由起点截断：[0, 60]
	assert.InDelta(t, 60.0, lines[0].Length(), 1e-9)
}

func TestProviderNoRoutes(t *testing.T) {
	p := testProvider()
	p.UpdateVehicleState(entity.KinoDynamicState{X: 10, Y: 0})

	_, ok := p.GetReferenceLines()
	assert.False(t, ok)
}

func TestProviderNoState(t *testing.T) {
	p := testProvider()
	p.UpdateRoutes([][]geometry.Point{{{X: 0, Y: 0}, {X: 400, Y: 0}}})

	_, ok := p.GetReferenceLines()
	assert.False(t, ok)
}

func TestProviderDropsUnreachableRoute(t *testing.T) {
	p := testProvider()
	p.UpdateRoutes([][]geometry.Point{
		{{X: 0, Y: 0}, {X: 400, Y: 0}},
		{{X: 0, Y: 500}, {X: 400, Y: 500}}, // 距自车过远
	})
	p.UpdateVehicleState(entity.KinoDynamicState{X: 100, Y: 0})

	lines, ok := p.GetReferenceLines()
	assert.True(t, ok)
	assert.Equal(t, 1, len(lines))

	// 全部路由不可达时整体不可用
	p.UpdateVehicleState(entity.KinoDynamicState{X: 100, Y: 100})
	_, ok = p.GetReferenceLines()
	assert.False(t, ok)
}
