package obstacle

import (
	"math"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/tsinghua-fib-lab/motion-planner-go/entity"
)

// Obstacle 障碍物
// 功能：将一个感知目标或一个非绿信号灯包装为动/静态危险物，携带预测轨迹
// 说明：障碍物由每周期的选择器独占创建与持有，不跨周期保存、不共享
type Obstacle struct {
	id       int32
	position geometry.Point
	theta    float64
	v        float64
	length   float64
	width    float64
	isStatic bool

	trajectory *entity.Trajectory // PredictTrajectory之后有效
}

// NewFromObject 由感知目标创建障碍物
// 说明：速度低于静止阈值的目标按静态处理
func NewFromObject(obj entity.PerceivedObject) *Obstacle {
	return &Obstacle{
		id:       obj.ID,
		position: obj.Position,
		theta:    obj.Theta,
		v:        obj.V,
		length:   obj.Length,
		width:    obj.Width,
		isStatic: math.Abs(obj.V) < 0.1,
	}
}

// NewFromTrafficLight 由非绿信号灯创建静态障碍物
// 功能：以触发区中心为位置、触发区尺寸为外形的静止障碍物
func NewFromTrafficLight(info entity.TrafficLightInfo, status entity.TrafficLightStatus) *Obstacle {
	return &Obstacle{
		id:       info.ID,
		position: info.TriggerVolumeCenter,
		length:   info.TriggerVolumeSize.X,
		width:    info.TriggerVolumeSize.Y,
		isStatic: true,
	}
}

func (o *Obstacle) ID() int32      { return o.id }
func (o *Obstacle) X() float64     { return o.position.X }
func (o *Obstacle) Y() float64     { return o.position.Y }
func (o *Obstacle) Z() float64     { return o.position.Z }
func (o *Obstacle) IsStatic() bool { return o.isStatic }

// Trajectory 预测轨迹
func (o *Obstacle) Trajectory() *entity.Trajectory {
	return o.trajectory
}

// PredictTrajectory 生成预测轨迹
// 功能：在[0, horizon]上按step步长前推障碍物未来位置
// 参数：horizon-预测时域（秒），step-时间步长（秒）
// 算法说明：动态障碍物按匀速直线模型沿当前航向前推，
// 静态障碍物在原地重复；预测轨迹写入自身，供优化器按时间对齐查询
func (o *Obstacle) PredictTrajectory(horizon, step float64) {
	n := int(horizon / step)
	points := make([]entity.TrajectoryPoint, 0, n+1)
	for i := 0; i <= n; i++ {
		t := float64(i) * step
		ds := 0.0
		if !o.isStatic {
			ds = o.v * t
		}
		points = append(points, entity.TrajectoryPoint{
			X:            o.position.X + ds*math.Cos(o.theta),
			Y:            o.position.Y + ds*math.Sin(o.theta),
			Theta:        o.theta,
			S:            ds,
			V:            o.v,
			RelativeTime: t,
		})
	}
	o.trajectory = &entity.Trajectory{
		Points: points,
		Status: entity.TrajectoryStatusNormal,
	}
}

// PositionAt 查询相对时间t处的预测位置
// 功能：在预测轨迹上按时间线性查找，超出时域时取末点
// 说明：未调用PredictTrajectory时返回当前位置
func (o *Obstacle) PositionAt(t float64) (x, y float64) {
	if o.trajectory == nil || len(o.trajectory.Points) == 0 {
		return o.position.X, o.position.Y
	}
	points := o.trajectory.Points
	if t <= points[0].RelativeTime {
		return points[0].X, points[0].Y
	}
	last := points[len(points)-1]
	if t >= last.RelativeTime {
		return last.X, last.Y
	}
	for i := 1; i < len(points); i++ {
		if points[i].RelativeTime >= t {
			k := (t - points[i-1].RelativeTime) / (points[i].RelativeTime - points[i-1].RelativeTime)
			return points[i-1].X + k*(points[i].X-points[i-1].X),
				points[i-1].Y + k*(points[i].Y-points[i-1].Y)
		}
	}
	return last.X, last.Y
}

// BoundingRadius 外接圆半径
// 功能：用于优化器的快速碰撞间隙检查
func (o *Obstacle) BoundingRadius() float64 {
	return math.Hypot(o.length, o.width) / 2
}
