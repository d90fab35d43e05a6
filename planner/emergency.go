package planner

import (
	"math"

	"github.com/tsinghua-fib-lab/motion-planner-go/entity"
)

// EmergencyStopGenerator 紧急停车轨迹生成器
// 功能：规划失败时的回退策略，从初始点沿当前航向以最大减速度匀减速刹停
// 说明：生成必定成功且不依赖参考线与障碍物，保证每周期总能发布一条轨迹
type EmergencyStopGenerator struct {
	maxDecel float64 // 减速度幅值（米/秒²）
	deltaT   float64 // 轨迹点时间间隔（秒）
	horizon  float64 // 轨迹时域（秒）
}

// NewEmergencyStopGenerator 创建紧急停车轨迹生成器
func NewEmergencyStopGenerator(ctx entity.ITaskContext) *EmergencyStopGenerator {
	p := ctx.RuntimeConfig().P
	return &EmergencyStopGenerator{
		maxDecel: p.MaxLonAcc,
		deltaT:   p.DeltaT,
		horizon:  p.MaxLookaheadTime,
	}
}

// Generate 生成紧急停车轨迹
// 功能：沿初始点航向直线减速刹停，刹停后原地保持到时域结束
// 参数：now-当前时刻（作为轨迹时间戳），initPoint-本周期初始点
// 返回：状态为EMERGENCY_STOP的轨迹，点数恒为floor(horizon/deltaT)
// 算法说明：
// 1. 刹停时刻stopTime=v0/maxDecel，此前加速度取-maxDecel，此后取0
// 2. 速度与弧长用上一点的v、a积分：Δs=v·Δt+a·Δt²/2，速度钳到非负
// 3. 航向、曲率、曲率变化率与方向盘转角全程冻结为初始点取值，
//    坐标沿冻结航向前推
func (eg *EmergencyStopGenerator) Generate(now float64, initPoint entity.TrajectoryPoint) *entity.Trajectory {
	n := int(eg.horizon / eg.deltaT)
	stopTime := initPoint.V / eg.maxDecel
	sinTheta, cosTheta := math.Sin(initPoint.Theta), math.Cos(initPoint.Theta)

	points := make([]entity.TrajectoryPoint, 0, n)
	x, y := initPoint.X, initPoint.Y
	s, v := initPoint.S, initPoint.V
	for i := 0; i < n; i++ {
		elapsed := float64(i) * eg.deltaT
		if i > 0 {
			prev := points[i-1]
			ds := prev.V*eg.deltaT + prev.A*eg.deltaT*eg.deltaT/2
			if ds < 0 {
				ds = 0
			}
			s += ds
			x += ds * cosTheta
			y += ds * sinTheta
			v = math.Max(0, prev.V+prev.A*eg.deltaT)
		}
		a := 0.0
		if elapsed <= stopTime {
			a = -eg.maxDecel
		}
		points = append(points, entity.TrajectoryPoint{
			X:            x,
			Y:            y,
			Theta:        initPoint.Theta,
			Kappa:        initPoint.Kappa,
			DKappa:       initPoint.DKappa,
			S:            s,
			V:            v,
			A:            a,
			RelativeTime: initPoint.RelativeTime + elapsed,
			SteerAngle:   initPoint.SteerAngle,
		})
	}
	return &entity.Trajectory{
		Points: points,
		Stamp:  now,
		Status: entity.TrajectoryStatusEmergencyStop,
	}
}
