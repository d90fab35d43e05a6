package task

import (
	"time"

	"github.com/tsinghua-fib-lab/motion-planner-go/entity"
)

// Run 启动规划循环
// 功能：按配置频率驱动周期规划，每周期先馈送输入、再执行一次规划并发布
// 参数：feed-周期开始时的输入馈送回调（场景回放或在线接入层），
// 返回false表示输入结束；传nil则只依赖异步写入的快照
// 说明：单个周期超时不做抢占，只顺延下一周期并记日志
func (ctx *Context) Run(feed func(t float64) bool) {
	log.Infof("planning loop starts at %.1fHz", ctx.clock.LOOP_RATE)
	period := time.Duration(ctx.clock.CYCLE_TIME * float64(time.Second))
	for !ctx.closed.Load() {
		if feed != nil && !feed(ctx.clock.T) {
			log.Infof("input finished at %s", ctx.clock)
			return
		}
		start := time.Now()
		ctx.runOnce()
		ctx.clock.Step()
		if elapsed := time.Since(start); elapsed < period {
			time.Sleep(period - elapsed)
		} else {
			log.Warnf("cycle overrun: %v > %v", elapsed, period)
		}
	}
	log.Infof("planning loop closed at %s", ctx.clock)
}

// runOnce 执行一个规划周期
// 算法说明：
// 1. 读取全部输入快照，自车不可知（无ID、无目标表或目标表中无自车）时
//    跳过本周期，不发布任何轨迹
// 2. 更新状态估计并推送给参考线提供器
// 3. 轨迹拼接得到种子轨迹，末点为本周期初始点
// 4. 获取候选参考线，无可用参考线时发布紧急停车轨迹并作废历史
// 5. 筛选障碍物
// 6. 构建规划目标并运行优化器，失败时同样回退紧急停车
// 7. 成功时把种子轨迹除末点外的前缀拼到优化结果之前，发布并存为历史
func (ctx *Context) runOnce() {
	objects, okObjects := ctx.objects.Load()
	egoID, okEgoID := ctx.egoID.Load()
	egoStatus, _ := ctx.egoStatus.Load()
	lightStatuses, _ := ctx.lightStatuses.Load()
	lightInfos, _ := ctx.lightInfos.Load()

	if !okObjects || !okEgoID {
		log.Warnf("%s: ego state unavailable, skip", ctx.clock)
		return
	}
	ego, ok := objects[egoID]
	if !ok {
		log.Warnf("%s: ego %d not perceived, skip", ctx.clock, egoID)
		return
	}
	ctx.estimator.Update(ego, egoStatus)
	ctx.provider.UpdateVehicleState(ctx.estimator.CurrentState())

	now := ctx.clock.T
	seed := ctx.stitcher.Stitch(now, ctx.clock.CYCLE_TIME, ctx.runtimeConfig.P.PreserveHistoryPoints)
	if len(seed) == 0 {
		log.Errorf("%s: empty stitching trajectory", ctx.clock)
		ctx.history.Invalidate()
		ctx.publish(&entity.Trajectory{Stamp: now, Status: entity.TrajectoryStatusEmpty})
		return
	}
	initPoint := seed[len(seed)-1]

	lines, ok := ctx.provider.GetReferenceLines()
	if !ok {
		log.Warnf("%s: no reference line, emergency stop", ctx.clock)
		ctx.fallback(now, initPoint)
		return
	}
	obstacles := ctx.selector.Select(objects, lightStatuses, lightInfos, initPoint, egoID)
	targets := ctx.builder.Build(lines, initPoint)
	trajectory, err := ctx.optimizer.Process(obstacles, initPoint, targets)
	if err != nil {
		log.Warnf("%s: optimization failed (%v), emergency stop", ctx.clock, err)
		ctx.fallback(now, initPoint)
		return
	}

	points := make([]entity.TrajectoryPoint, 0, len(seed)-1+len(trajectory.Points))
	points = append(points, seed[:len(seed)-1]...)
	points = append(points, trajectory.Points...)
	trajectory.Points = points
	trajectory.Stamp = now
	ctx.history.Store(trajectory)
	ctx.publish(trajectory)
}

// fallback 规划失败回退
// 功能：发布紧急停车轨迹并作废历史，下一周期从实时状态重新初始化
func (ctx *Context) fallback(now float64, initPoint entity.TrajectoryPoint) {
	trajectory := ctx.emergency.Generate(now, initPoint)
	ctx.history.Invalidate()
	ctx.publish(trajectory)
}

// publish 向全部注册回调扇出发布轨迹
func (ctx *Context) publish(trajectory *entity.Trajectory) {
	log.Debugf("%s: publish %s trajectory with %d points",
		ctx.clock, trajectory.Status, len(trajectory.Points))
	for _, handler := range ctx.handlers {
		handler(trajectory)
	}
}
