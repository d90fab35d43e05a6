package planner

import (
	"flag"
	"math"
	"sort"

	"github.com/tsinghua-fib-lab/motion-planner-go/entity"
)

const (
	timeMatchEps = 1.0e-5 // 时间匹配容差（秒）

	// 重新初始化时的准静止判定阈值
	reinitEpsV = 0.1 // 速度阈值（米/秒）
	reinitEpsA = 0.4 // 加速度阈值（米/秒²）
)

var (
	// 旧版的纵横向偏差公式与标准曲线投影不一致（疑似缺少与航向法向分量的乘积），
	// 联调期间保留旧式用于对照输出，确认前不删除
	legacyProjection = flag.Bool("planner.legacy_projection", false,
		"use the legacy lat/lon deviation formula kept for comparison runs")
)

// Stitcher 轨迹拼接器
// 功能：每周期计算种子轨迹：跟踪良好时复用上一周期轨迹的一段（拼接），
// 历史过期、耗尽或车辆偏离超限时从实时状态重新初始化
// 说明：拼接保持连续性（加加速度无跳变），重新初始化保证锚定在实时状态上；
// 历史的过期/偏离不作为错误上报，由拼接器静默重播种
type Stitcher struct {
	cfg       stitcherConfig
	estimator entity.IVehicleStateEstimator
	history   *History
}

type stitcherConfig struct {
	maxReplanLatThreshold float64
	maxReplanLonThreshold float64
}

// NewStitcher 创建轨迹拼接器
// 参数：ctx-任务上下文（提供偏差阈值配置），estimator-状态估计器，history-历史轨迹存储
func NewStitcher(ctx entity.ITaskContext, estimator entity.IVehicleStateEstimator, history *History) *Stitcher {
	p := ctx.RuntimeConfig().P
	return &Stitcher{
		cfg: stitcherConfig{
			maxReplanLatThreshold: p.MaxReplanLatThreshold,
			maxReplanLonThreshold: p.MaxReplanLonThreshold,
		},
		estimator: estimator,
		history:   history,
	}
}

// Stitch 计算本周期的种子轨迹
// 功能：决定拼接或重新初始化，返回非空点序列，末点即交给优化器的初始点
// 参数：now-当前时刻（规划时钟），cycleTime-规划周期，preserveCount-向后保留的历史点数
// 算法说明：
// 1. 历史无效或为空 → 重新初始化
// 2. 当前时刻早于历史首点的相对时间 → 重新初始化
// 3. 时间匹配索引已是历史末点（历史耗尽） → 重新初始化
// 4. 实时位置相对位置匹配点的纵/横向偏差超过阈值 → 重新初始化
// 5. 否则截取历史[max(0, min(posIdx,timeIdx)-preserveCount), timeMatch(rel+cycle)]，
//    相对时间整体平移(historyStamp-now)，弧长平移使末点弧长为0
func (st *Stitcher) Stitch(now, cycleTime float64, preserveCount int) []entity.TrajectoryPoint {
	state := st.estimator.CurrentState()
	history, valid := st.history.Load()
	if !valid || history == nil || len(history.Points) == 0 {
		return computeReinitStitchingTrajectory(cycleTime, state)
	}
	points := history.Points

	relativeTime := now - history.Stamp
	timeIdx := timeMatchIndex(relativeTime, timeMatchEps, points)
	if timeIdx == 0 && relativeTime < points[0].RelativeTime {
		// 当前时刻早于历史首点
		log.Debugf("stitcher: now %.4f precedes history start, reinit", now)
		return computeReinitStitchingTrajectory(cycleTime, state)
	}
	if timeIdx >= len(points)-1 {
		// 历史已耗尽
		log.Debugf("stitcher: history exhausted at %.4f, reinit", relativeTime)
		return computeReinitStitchingTrajectory(cycleTime, state)
	}

	timeMatched := points[timeIdx]
	posIdx := positionMatchIndex(state.X, state.Y, points)
	posMatched := points[posIdx]
	lon, lat := latLonDistFromRefPoint(state.X, state.Y, posMatched)
	lonDiff := timeMatched.S - lon
	latDiff := lat
	if math.Abs(latDiff) > st.cfg.maxReplanLatThreshold {
		log.Infof("stitcher: lateral deviation %.3f beyond threshold, reinit", latDiff)
		return computeReinitStitchingTrajectory(cycleTime, state)
	}
	if math.Abs(lonDiff) > st.cfg.maxReplanLonThreshold {
		log.Infof("stitcher: longitudinal deviation %.3f beyond threshold, reinit", lonDiff)
		return computeReinitStitchingTrajectory(cycleTime, state)
	}

	forwardIdx := timeMatchIndex(relativeTime+cycleTime, timeMatchEps, points)
	matched := min(posIdx, timeIdx)
	start := max(0, matched-preserveCount)
	stitching := make([]entity.TrajectoryPoint, forwardIdx+1-start)
	copy(stitching, points[start:forwardIdx+1])

	// 时间基与弧长基换到本周期：末点（衔接点）弧长归零
	zeroS := stitching[len(stitching)-1].S
	for i := range stitching {
		stitching[i].RelativeTime += history.Stamp - now
		stitching[i].S -= zeroS
	}
	return stitching
}

// timeMatchIndex 时间匹配
// 功能：返回首个满足RelativeTime+eps≥t的点的索引，t超出末点时钳到末点
// 说明：点序列按RelativeTime严格递增，用二分查找
func timeMatchIndex(t, eps float64, points []entity.TrajectoryPoint) int {
	if t > points[len(points)-1].RelativeTime {
		return len(points) - 1
	}
	return sort.Search(len(points), func(i int) bool {
		return points[i].RelativeTime+eps >= t
	})
}

// positionMatchIndex 位置匹配
// 功能：返回到(x,y)欧氏距离最小的点的索引
// 说明：旧版以dist²<min+ε作比较，最小值永不收紧、会向后漂移，
// 按设计评审结论改为严格小于
func positionMatchIndex(x, y float64, points []entity.TrajectoryPoint) int {
	minDistSqr := math.Inf(0)
	minIndex := 0
	for i, p := range points {
		distSqr := (p.X-x)*(p.X-x) + (p.Y-y)*(p.Y-y)
		if distSqr < minDistSqr {
			minDistSqr = distSqr
			minIndex = i
		}
	}
	return minIndex
}

// latLonDistFromRefPoint 纵横向偏差
// 功能：将(x,y)相对参考点的位移投影到参考点航向坐标系
// 返回：lon-纵向分量（含参考点弧长），lat-横向分量（右正）
func latLonDistFromRefPoint(x, y float64, p entity.TrajectoryPoint) (lon, lat float64) {
	vx, vy := x-p.X, y-p.Y
	nx, ny := math.Cos(p.Theta), math.Sin(p.Theta)
	if *legacyProjection {
		return vx*nx + ny + vy + p.S, vx*ny - vy*nx
	}
	return vx*nx + vy*ny + p.S, vx*ny - vy*nx
}

// computeTrajectoryPointFromState 由车辆状态构造轨迹点
// 说明：弧长基于本周期种子轨迹，恒为0
func computeTrajectoryPointFromState(cycleTime float64, state entity.KinoDynamicState) entity.TrajectoryPoint {
	return entity.TrajectoryPoint{
		X:            state.X,
		Y:            state.Y,
		Theta:        state.Theta,
		Kappa:        state.Kappa,
		S:            0,
		V:            state.V,
		A:            state.A,
		RelativeTime: cycleTime,
	}
}

// computeReinitStitchingTrajectory 重新初始化种子轨迹
// 功能：丢弃历史，从实时状态生成单点种子
// 算法说明：接近静止（|a|<0.4且|v|<0.1）时直接取当前状态，
// 否则先将状态解析前推一个周期再取点，补偿规划计算时延
func computeReinitStitchingTrajectory(cycleTime float64, state entity.KinoDynamicState) []entity.TrajectoryPoint {
	var point entity.TrajectoryPoint
	if math.Abs(state.A) < reinitEpsA && math.Abs(state.V) < reinitEpsV {
		point = computeTrajectoryPointFromState(cycleTime, state)
	} else {
		point = computeTrajectoryPointFromState(cycleTime, state.NextStateAfterTime(cycleTime))
	}
	return []entity.TrajectoryPoint{point}
}
