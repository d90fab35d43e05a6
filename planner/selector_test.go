package planner_test

import (
	"testing"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/motion-planner-go/entity"
	"github.com/tsinghua-fib-lab/motion-planner-go/planner"
)

func selectorInputs() (map[int32]entity.PerceivedObject, map[int32]entity.TrafficLightStatus, map[int32]entity.TrafficLightInfo) {
	objects := map[int32]entity.PerceivedObject{
		1: {ID: 1, Position: geometry.Point{X: 0, Y: 0, Z: 0}, V: 10},                // 自车
		2: {ID: 2, Position: geometry.Point{X: 10, Y: 0, Z: 0}, V: 5, Theta: 0},     // 近处动态目标
		3: {ID: 3, Position: geometry.Point{X: 100, Y: 0, Z: 0}, V: 5},              // 超出半径
		4: {ID: 4, Position: geometry.Point{X: 10, Y: 0, Z: 5}, V: 5},               // 高程差超限（高架）
		5: {ID: 5, Position: geometry.Point{X: 49, Y: 0, Z: 1}, V: 0},               // 半径边缘的静止目标
	}
	lightStatuses := map[int32]entity.TrafficLightStatus{
		10: {ID: 10, State: entity.LightStateRed},
		11: {ID: 11, State: entity.LightStateGreen},
		12: {ID: 12, State: entity.LightStateUnknown},
		13: {ID: 13, State: entity.LightStateOff},
		14: {ID: 14, State: entity.LightStateRed},
		15: {ID: 15, State: entity.LightStateRed}, // 无静态信息，不参与
	}
	lightInfos := map[int32]entity.TrafficLightInfo{
		10: {ID: 10, TriggerVolumeCenter: geometry.Point{X: 20, Y: 0, Z: 0}, TriggerVolumeSize: geometry.Point{X: 4, Y: 2}},
		11: {ID: 11, TriggerVolumeCenter: geometry.Point{X: 25, Y: 0, Z: 0}},
		12: {ID: 12, TriggerVolumeCenter: geometry.Point{X: 30, Y: 0, Z: 0}},
		13: {ID: 13, TriggerVolumeCenter: geometry.Point{X: 30, Y: 0, Z: 0}, TriggerVolumeSize: geometry.Point{X: 4, Y: 2}},
		14: {ID: 14, TriggerVolumeCenter: geometry.Point{X: 200, Y: 0, Z: 0}},
		16: {ID: 16, TriggerVolumeCenter: geometry.Point{X: 35, Y: 0, Z: 0}}, // 无灯态，跳过
	}
	return objects, lightStatuses, lightInfos
}

func TestSelectorGates(t *testing.T) {
	ctx := newTestContext()
	sel := planner.NewSelector(ctx)
	objects, lightStatuses, lightInfos := selectorInputs()

	obstacles := sel.Select(objects, lightStatuses, lightInfos, entity.TrajectoryPoint{X: 0, Y: 0}, 1)
	ids := lo.Map(obstacles, func(o entity.IObstacle, _ int) int32 { return o.ID() })
	// 先目标后信号灯，各自按ID升序
	assert.Equal(t, []int32{2, 5, 10, 13}, ids)
}

func TestSelectorPredictsTrajectories(t *testing.T) {
	ctx := newTestContext()
	sel := planner.NewSelector(ctx)
	objects, lightStatuses, lightInfos := selectorInputs()

	obstacles := sel.Select(objects, lightStatuses, lightInfos, entity.TrajectoryPoint{X: 0, Y: 0}, 1)
	for _, o := range obstacles {
		assert.NotNil(t, o.Trajectory())
		assert.NotEmpty(t, o.Trajectory().Points)
	}
	// 动态目标沿航向匀速前推
	dynamic := obstacles[0]
	assert.False(t, dynamic.IsStatic())
	x, _ := dynamic.PositionAt(2)
	assert.InDelta(t, 20.0, x, 1e-9)
	// 信号灯障碍物恒为静态且原地不动
	light := obstacles[2]
	assert.True(t, light.IsStatic())
	x, y := light.PositionAt(5)
	assert.Equal(t, 20.0, x)
	assert.Equal(t, 0.0, y)
}

func TestSelectorMissingEgo(t *testing.T) {
	ctx := newTestContext()
	sel := planner.NewSelector(ctx)
	objects, lightStatuses, lightInfos := selectorInputs()

	obstacles := sel.Select(objects, lightStatuses, lightInfos, entity.TrajectoryPoint{}, 99)
	assert.Nil(t, obstacles)
}
