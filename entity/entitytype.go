package entity

import (
	"fmt"
	"math"

	"git.fiblab.net/general/common/v2/geometry"
)

// TrajectoryStatus 轨迹状态标签
// 功能：标识发布轨迹的生成方式，是下游控制器唯一的故障信号通道
type TrajectoryStatus int32

const (
	TrajectoryStatusNormal        TrajectoryStatus = iota // 正常规划结果
	TrajectoryStatusEmpty                                 // 拼接后为空
	TrajectoryStatusEmergencyStop                         // 紧急停车回退轨迹
)

// String 获取轨迹状态的字符串表示
func (s TrajectoryStatus) String() string {
	switch s {
	case TrajectoryStatusNormal:
		return "NORMAL"
	case TrajectoryStatusEmpty:
		return "EMPTY"
	case TrajectoryStatusEmergencyStop:
		return "EMERGENCY_STOP"
	default:
		return fmt.Sprintf("TrajectoryStatus(%d)", s)
	}
}

// LightState 信号灯灯态
// 功能：感知侧上报的信号灯状态，OFF按非绿处理
type LightState int32

const (
	LightStateUnknown LightState = iota // 未知
	LightStateRed                       // 红灯
	LightStateYellow                    // 黄灯
	LightStateGreen                     // 绿灯
	LightStateOff                       // 熄灭
)

// TrajectoryPoint 轨迹点
// 功能：规划输出轨迹的基本单元，一旦产生即不可修改
// 说明：S为沿轨迹的弧长，RelativeTime为相对轨迹时间戳的时间
type TrajectoryPoint struct {
	X            float64 // 坐标x
	Y            float64 // 坐标y
	Theta        float64 // 航向角
	Kappa        float64 // 曲率
	DKappa       float64 // 曲率变化率
	S            float64 // 弧长
	V            float64 // 速度
	A            float64 // 加速度
	Jerk         float64 // 加加速度
	RelativeTime float64 // 相对时间（秒）
	SteerAngle   float64 // 方向盘转角
}

// Trajectory 规划轨迹
// 功能：一次规划周期发布的轨迹，点序列按RelativeTime严格递增
type Trajectory struct {
	Points []TrajectoryPoint // 轨迹点序列
	Stamp  float64           // 生成时刻（规划时钟，秒）
	Status TrajectoryStatus  // 状态标签
}

// KinoDynamicState 车辆运动学-动力学状态快照
// 功能：由车辆状态估计器维护的即时状态，规划核心只读
type KinoDynamicState struct {
	X     float64 // 坐标x
	Y     float64 // 坐标y
	Z     float64 // 坐标z（高程）
	Theta float64 // 航向角
	Kappa float64 // 曲率
	V     float64 // 速度
	A     float64 // 加速度
}

// NextStateAfterTime 解析前推状态
// 功能：按匀加速度、匀曲率假设将状态前推dt秒
// 参数：dt-前推时间（秒）
// 返回：前推后的状态
// 算法说明：
// 1. 速度按v+a*dt更新，减速到0后保持静止（不允许倒车）
// 2. 位移按ds=(v+a*dt/2)*dt计算，刹停时截断为v²/(2|a|)
// 3. 曲率不为零时沿圆弧前推航向与坐标，否则直线前推
func (s KinoDynamicState) NextStateAfterTime(dt float64) KinoDynamicState {
	v := s.V + s.A*dt
	ds := (s.V + s.A*dt/2) * dt
	if v < 0 {
		// 刹车到停止
		v = 0
		ds = s.V * s.V / 2 / -s.A
	}
	next := s
	next.V = v
	if math.Abs(s.Kappa) > 1e-6 {
		theta := s.Theta + ds*s.Kappa
		next.X += (math.Sin(theta) - math.Sin(s.Theta)) / s.Kappa
		next.Y += (math.Cos(s.Theta) - math.Cos(theta)) / s.Kappa
		next.Theta = theta
	} else {
		next.X += ds * math.Cos(s.Theta)
		next.Y += ds * math.Sin(s.Theta)
	}
	return next
}

// PerceivedObject 感知目标
// 功能：感知侧上报的单个目标的最新值快照
type PerceivedObject struct {
	ID       int32          // 目标ID
	Position geometry.Point // 位置（含高程）
	Theta    float64        // 航向角
	V        float64        // 速度
	A        float64        // 加速度
	Length   float64        // 长度
	Width    float64        // 宽度
}

// EgoStatus 自车底盘状态
// 功能：自车上报的底盘量测，供状态估计器融合
type EgoStatus struct {
	V          float64 // 车速
	A          float64 // 纵向加速度
	SteerAngle float64 // 方向盘转角（弧度）
}

// TrafficLightStatus 信号灯灯态快照
type TrafficLightStatus struct {
	ID    int32      // 信号灯ID
	State LightState // 灯态
}

// TrafficLightInfo 信号灯静态信息
// 说明：TriggerVolume为停车触发区，其中心作为静态障碍物位置
type TrafficLightInfo struct {
	ID                  int32          // 信号灯ID
	TriggerVolumeCenter geometry.Point // 触发区中心
	TriggerVolumeSize   geometry.Point // 触发区尺寸
}

// SLPoint 曲线坐标点
// 功能：参考线坐标系下的位置，S为里程，L为横向偏移
type SLPoint struct {
	S float64 // 里程（弧长）
	L float64 // 横向偏移
}

// ReferencePoint 参考线上一点
type ReferencePoint struct {
	X     float64 // 坐标x
	Y     float64 // 坐标y
	Theta float64 // 切向角
	Kappa float64 // 曲率
}

// PlanningTarget 规划目标
// 功能：由候选参考线投影得到的可优化目标，每个周期重新生成、不跨周期保存
type PlanningTarget struct {
	RefLine      IReferenceLine // 参考线
	HasStopPoint bool           // 是否存在停车点
	StopS        float64        // 停车点里程，无停车约束时为mathutil.INF
	IsBest       bool           // 自车是否位于该参考线车道内（首选标志）
	DesiredV     float64        // 期望巡航速度
}

// entity/refline/refline.go的依赖倒置
type IReferenceLine interface {
	Length() float64                            // 参考线总长
	GetReferencePoint(s float64) ReferencePoint // 里程s处的参考点
	XYToSL(x, y float64) (SLPoint, bool)        // 笛卡尔坐标投影到曲线坐标，失败返回false
	IsOnLane(sl SLPoint) bool                   // 判断曲线坐标是否位于车道范围内
}

// entity/obstacle/obstacle.go的依赖倒置
type IObstacle interface {
	ID() int32                               // 障碍物ID
	X() float64                              // 位置x
	Y() float64                              // 位置y
	Z() float64                              // 高程
	IsStatic() bool                          // 是否静态（信号灯障碍物恒为静态）
	Trajectory() *Trajectory                 // 预测轨迹（PredictTrajectory之后有效）
	PredictTrajectory(horizon, step float64) // 生成预测轨迹（按自身运动模型前推）
	PositionAt(t float64) (x, y float64)     // 查询相对时间t处的预测位置
	BoundingRadius() float64                 // 外接圆半径，用于间隙检查
}

// entity/vehiclestate/vehiclestate.go的依赖倒置
type IVehicleStateEstimator interface {
	Update(ego PerceivedObject, status EgoStatus) // 融合最新快照
	CurrentState() KinoDynamicState               // 当前状态估计
}

// entity/refline/provider.go的依赖倒置
type IReferenceLineProvider interface {
	UpdateRoutes(routes [][]geometry.Point)      // 更新候选路由（导航结果）
	UpdateVehicleState(state KinoDynamicState)   // 推送自车状态
	GetReferenceLines() ([]IReferenceLine, bool) // 获取候选参考线，无可用参考线时返回false
}

// 轨迹优化器接口（planner/lattice等策略的依赖倒置）
type ITrajectoryOptimizer interface {
	Process(obstacles []IObstacle, initPoint TrajectoryPoint, targets []PlanningTarget) (*Trajectory, error)
}
