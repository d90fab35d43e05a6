package task

import (
	"sync/atomic"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/tsinghua-fib-lab/motion-planner-go/clock"
	"github.com/tsinghua-fib-lab/motion-planner-go/entity"
	"github.com/tsinghua-fib-lab/motion-planner-go/entity/refline"
	"github.com/tsinghua-fib-lab/motion-planner-go/entity/vehiclestate"
	"github.com/tsinghua-fib-lab/motion-planner-go/planner"
	"github.com/tsinghua-fib-lab/motion-planner-go/utils/config"
	"github.com/tsinghua-fib-lab/motion-planner-go/utils/snapshot"
)

// Context 规划任务上下文
// 功能：持有时钟、配置、输入快照与全部规划组件，驱动周期规划循环
// 说明：输入侧（感知、底盘、信号灯、导航）通过Update*方法异步写入快照单元，
// 规划循环在每个周期开始时读取一次；发布侧通过注册的回调扇出
type Context struct {
	clock         *clock.Clock
	runtimeConfig *config.RuntimeConfig

	// 输入快照
	objects       snapshot.Cell[map[int32]entity.PerceivedObject]
	egoID         snapshot.Cell[int32]
	egoStatus     snapshot.Cell[entity.EgoStatus]
	lightStatuses snapshot.Cell[map[int32]entity.TrafficLightStatus]
	lightInfos    snapshot.Cell[map[int32]entity.TrafficLightInfo]

	// 规划组件
	estimator entity.IVehicleStateEstimator
	provider  entity.IReferenceLineProvider
	history   *planner.History
	stitcher  *planner.Stitcher
	selector  *planner.Selector
	builder   *planner.TargetBuilder
	emergency *planner.EmergencyStopGenerator
	optimizer entity.ITrajectoryOptimizer

	handlers []func(*entity.Trajectory) // 轨迹发布回调
	closed   atomic.Bool
}

// NewContext 创建规划任务上下文
// 功能：按配置组装时钟与全部规划组件
// 返回：上下文实例；优化器类型不受支持时返回配置错误
func NewContext(cfg *config.RuntimeConfig) (*Context, error) {
	ctx := &Context{
		clock:         clock.New(cfg.P),
		runtimeConfig: cfg,
	}
	ctx.estimator = vehiclestate.New()
	ctx.provider = refline.NewProvider(cfg.R)
	ctx.history = planner.NewHistory()
	ctx.stitcher = planner.NewStitcher(ctx, ctx.estimator, ctx.history)
	ctx.selector = planner.NewSelector(ctx)
	ctx.builder = planner.NewTargetBuilder(ctx)
	ctx.emergency = planner.NewEmergencyStopGenerator(ctx)

	optimizer, err := planner.NewOptimizer(ctx)
	if err != nil {
		return nil, err
	}
	ctx.optimizer = optimizer
	return ctx, nil
}

// Clock 规划时钟
func (ctx *Context) Clock() *clock.Clock {
	return ctx.clock
}

// RuntimeConfig 运行时配置
func (ctx *Context) RuntimeConfig() *config.RuntimeConfig {
	return ctx.runtimeConfig
}

// UpdateObjects 写入感知目标表快照
func (ctx *Context) UpdateObjects(objects map[int32]entity.PerceivedObject) {
	ctx.objects.Store(objects)
}

// UpdateEgoID 写入自车目标ID
func (ctx *Context) UpdateEgoID(id int32) {
	ctx.egoID.Store(id)
}

// UpdateEgoStatus 写入自车底盘状态快照
func (ctx *Context) UpdateEgoStatus(status entity.EgoStatus) {
	ctx.egoStatus.Store(status)
}

// UpdateLightStatuses 写入信号灯灯态表快照
func (ctx *Context) UpdateLightStatuses(statuses map[int32]entity.TrafficLightStatus) {
	ctx.lightStatuses.Store(statuses)
}

// UpdateLightInfos 写入信号灯静态信息表快照
func (ctx *Context) UpdateLightInfos(infos map[int32]entity.TrafficLightInfo) {
	ctx.lightInfos.Store(infos)
}

// UpdateRoutes 更新候选路由（导航结果）
func (ctx *Context) UpdateRoutes(routes [][]geometry.Point) {
	ctx.provider.UpdateRoutes(routes)
}

// RegisterTrajectoryHandler 注册轨迹发布回调
// 说明：回调在规划循环协程内同步调用，须在Run之前注册完毕
func (ctx *Context) RegisterTrajectoryHandler(handler func(*entity.Trajectory)) {
	ctx.handlers = append(ctx.handlers, handler)
}

// Close 请求停止规划循环
// 说明：当前周期执行完后退出，可从任意协程调用
func (ctx *Context) Close() {
	ctx.closed.Store(true)
}
