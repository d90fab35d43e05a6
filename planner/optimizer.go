package planner

import (
	"fmt"

	"github.com/tsinghua-fib-lab/motion-planner-go/entity"
	"github.com/tsinghua-fib-lab/motion-planner-go/planner/lattice"
)

// OptimizerType 轨迹优化器类型
type OptimizerType string

const (
	// OptimizerFrenetLattice Frenet坐标系多项式采样优化器
	OptimizerFrenetLattice OptimizerType = "frenet_lattice"
)

// ErrUnknownOptimizer 未知优化器类型配置错误
// 说明：初始化阶段返回，进程应直接退出而不是回退到默认策略
type ErrUnknownOptimizer struct {
	Type string
}

func (e *ErrUnknownOptimizer) Error() string {
	return fmt.Sprintf("unknown trajectory optimizer type %q (supported: %s)",
		e.Type, OptimizerFrenetLattice)
}

// NewOptimizer 按配置创建轨迹优化器
// 功能：解析planner.type并实例化对应策略
// 返回：优化器实例；类型不在支持集合内时返回*ErrUnknownOptimizer
func NewOptimizer(ctx entity.ITaskContext) (entity.ITrajectoryOptimizer, error) {
	switch t := OptimizerType(ctx.RuntimeConfig().P.Type); t {
	case OptimizerFrenetLattice:
		return lattice.New(ctx), nil
	default:
		return nil, &ErrUnknownOptimizer{Type: string(t)}
	}
}
