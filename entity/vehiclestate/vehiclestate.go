package vehiclestate

import (
	"math"

	"github.com/tsinghua-fib-lab/motion-planner-go/entity"
)

const (
	wheelBase = 2.875 // 轴距（米）
)

// Estimator 车辆状态估计器
// 功能：融合自车感知目标与底盘量测，维护规划核心只读的KinoDynamicState
// 说明：每个周期开始时由编排器写入一次，周期内不再变化
type Estimator struct {
	state entity.KinoDynamicState
}

// New 创建车辆状态估计器
func New() *Estimator {
	return &Estimator{}
}

// Update 融合最新快照
// 功能：由自车感知目标取位姿，由底盘量测取速度、加速度与转角
// 参数：ego-自车感知目标，status-底盘状态
// 算法说明：曲率由自行车模型近似：kappa = tan(delta) / L
func (e *Estimator) Update(ego entity.PerceivedObject, status entity.EgoStatus) {
	e.state = entity.KinoDynamicState{
		X:     ego.Position.X,
		Y:     ego.Position.Y,
		Z:     ego.Position.Z,
		Theta: ego.Theta,
		Kappa: math.Tan(status.SteerAngle) / wheelBase,
		V:     status.V,
		A:     status.A,
	}
}

// CurrentState 当前状态估计
func (e *Estimator) CurrentState() entity.KinoDynamicState {
	return e.state
}
