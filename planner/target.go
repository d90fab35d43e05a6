package planner

import (
	"math"

	"git.fiblab.net/general/common/v2/mathutil"
	"github.com/tsinghua-fib-lab/motion-planner-go/entity"
)

const (
	stopDistance = 50.0   // 距参考线终点的停车判定距离（米）
	kappaEps     = 1.0e-4 // 曲率正则项，避免直线段期望速度发散
)

// TargetBuilder 规划目标构建器
// 功能：把候选参考线与本周期初始点转化为带停车约束与期望速度的规划目标
type TargetBuilder struct {
	cruiseV   float64 // 巡航速度上限（米/秒）
	maxLatAcc float64 // 最大横向加速度（米/秒²）
}

// NewTargetBuilder 创建规划目标构建器
func NewTargetBuilder(ctx entity.ITaskContext) *TargetBuilder {
	p := ctx.RuntimeConfig().P
	return &TargetBuilder{
		cruiseV:   p.DesiredVelocity,
		maxLatAcc: p.MaxLatAcc,
	}
}

// Build 构建本周期的规划目标
// 功能：逐条参考线投影初始点，生成规划目标；投影失败的参考线静默跳过
// 参数：lines-候选参考线，initPoint-本周期初始点
// 返回：规划目标列表（可能为空），每周期重新生成、不跨周期保存
// 算法说明：
// 1. 剩余里程不足50米时设置停车点于参考线终点，否则停车里程取无穷大
// 2. 期望速度=min(巡航速度, maxLatAcc/(|κ|+1e-4))，κ为投影点处曲率
// 3. 自车位于车道范围内的参考线标记为首选
func (tb *TargetBuilder) Build(lines []entity.IReferenceLine, initPoint entity.TrajectoryPoint) []entity.PlanningTarget {
	targets := make([]entity.PlanningTarget, 0, len(lines))
	for _, line := range lines {
		sl, ok := line.XYToSL(initPoint.X, initPoint.Y)
		if !ok {
			continue
		}
		target := entity.PlanningTarget{
			RefLine: line,
			StopS:   mathutil.INF,
			IsBest:  line.IsOnLane(sl),
		}
		if line.Length()-sl.S < stopDistance {
			target.HasStopPoint = true
			target.StopS = line.Length()
		}
		kappa := line.GetReferencePoint(sl.S).Kappa
		target.DesiredV = math.Min(tb.cruiseV, tb.maxLatAcc/(math.Abs(kappa)+kappaEps))
		targets = append(targets, target)
	}
	return targets
}
