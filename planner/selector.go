package planner

import (
	"math"
	"sort"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/motion-planner-go/entity"
	"github.com/tsinghua-fib-lab/motion-planner-go/entity/obstacle"
)

const (
	obstacleRadius = 50.0 // 障碍物筛选半径（米），限制优化器输入规模
	maxHeightDiff  = 1.5  // 高程差门限（米），排除立体道路上的伪邻近目标
)

// Selector 障碍物选择器
// 功能：把感知目标与非绿信号灯过滤为有界障碍物列表，并为每个障碍物生成预测轨迹
type Selector struct {
	horizon float64 // 预测时域（秒）
	step    float64 // 预测步长（秒）
}

// NewSelector 创建障碍物选择器
func NewSelector(ctx entity.ITaskContext) *Selector {
	p := ctx.RuntimeConfig().P
	return &Selector{
		horizon: p.MaxLookaheadTime,
		step:    p.DeltaT,
	}
}

// Select 筛选本周期障碍物
// 功能：非自车目标在初始点半径50米内且与自车高程差小于1.5米时入选；
// 同时出现在灯态与信息表中、灯态既非绿也非未知的信号灯，
// 以其触发区中心作为静态障碍物，按相同的距离/高程门限筛选
// 参数：objects-感知目标表，lightStatuses/lightInfos-信号灯灯态/信息表，
// initPoint-本周期初始点，egoID-自车ID
// 返回：障碍物列表，顺序为先目标后信号灯（各自按ID升序，保证可复现）
// 说明：每个入选障碍物调用自身预测器生成[0, horizon]上的预测轨迹；
// 障碍物由本列表独占持有，不跨周期保存
func (sel *Selector) Select(
	objects map[int32]entity.PerceivedObject,
	lightStatuses map[int32]entity.TrafficLightStatus,
	lightInfos map[int32]entity.TrafficLightInfo,
	initPoint entity.TrajectoryPoint,
	egoID int32,
) []entity.IObstacle {
	ego, ok := objects[egoID]
	if !ok {
		log.Errorf("selector: ego %d not in objects", egoID)
		return nil
	}

	obstacles := make([]entity.IObstacle, 0)

	objectIDs := lo.Keys(objects)
	sort.Slice(objectIDs, func(i, j int) bool { return objectIDs[i] < objectIDs[j] })
	for _, id := range objectIDs {
		if id == egoID {
			continue
		}
		obj := objects[id]
		dist := math.Hypot(initPoint.X-obj.Position.X, initPoint.Y-obj.Position.Y)
		heightDiff := math.Abs(obj.Position.Z - ego.Position.Z)
		if dist < obstacleRadius && heightDiff < maxHeightDiff {
			o := obstacle.NewFromObject(obj)
			o.PredictTrajectory(sel.horizon, sel.step)
			obstacles = append(obstacles, o)
		}
	}

	lightIDs := lo.Keys(lightInfos)
	sort.Slice(lightIDs, func(i, j int) bool { return lightIDs[i] < lightIDs[j] })
	for _, id := range lightIDs {
		status, ok := lightStatuses[id]
		if !ok {
			continue
		}
		if status.State == entity.LightStateGreen || status.State == entity.LightStateUnknown {
			continue
		}
		info := lightInfos[id]
		center := info.TriggerVolumeCenter
		dist := math.Hypot(initPoint.X-center.X, initPoint.Y-center.Y)
		heightDiff := math.Abs(center.Z - ego.Position.Z)
		if dist < obstacleRadius && heightDiff < maxHeightDiff {
			o := obstacle.NewFromTrafficLight(info, status)
			o.PredictTrajectory(sel.horizon, sel.step)
			obstacles = append(obstacles, o)
		}
	}
	return obstacles
}
