package lattice

import (
	"errors"
	"math"
	"runtime"
	"sync"

	"github.com/tsinghua-fib-lab/motion-planner-go/entity"
	"github.com/tsinghua-fib-lab/motion-planner-go/utils/container"
	"golang.org/x/sync/errgroup"
)

const (
	egoRadius    = 1.5 // 自车外接圆半径（米），碰撞检查用
	speedEps     = 0.1 // 航向合成时的最小纵向速度（米/秒）
	accelMargin  = 0.5 // 纵向加速度可行性检查的放宽量（米/秒²）
	stopOverrunS = 0.5 // 允许越过停车点的里程（米）

	// 代价权重
	weightVelocity = 1.0  // 速度偏差
	weightLateral  = 1.5  // 横向偏移
	weightJerk     = 0.1  // 纵向加加速度
	weightProgress = 0.05 // 终点里程（奖励，取负）
	offLaneCost    = 10.0 // 非首选参考线的固定惩罚
)

// ErrNoFeasibleTrajectory 所有候选轨迹均被拒绝
var ErrNoFeasibleTrajectory = errors.New("lattice: all trajectory candidates rejected")

// 巡航候选的终点速度采样比例（相对期望速度）
var cruiseEndVRatios = []float64{0.25, 0.5, 0.75, 1.0}

// Optimizer Frenet多项式采样优化器
// 功能：逐规划目标并行采样纵向剖面，拒绝碰撞与不可行候选，
// 按代价取最优并转换为笛卡尔轨迹
type Optimizer struct {
	deltaT    float64 // 轨迹点时间间隔（秒）
	horizon   float64 // 规划时域（秒）
	maxLonAcc float64 // 纵向加速度幅值上限（米/秒²）
	workers   int     // 并行规划目标数上限
}

// New 创建Frenet多项式采样优化器
func New(ctx entity.ITaskContext) *Optimizer {
	p := ctx.RuntimeConfig().P
	return &Optimizer{
		deltaT:    p.DeltaT,
		horizon:   p.MaxLookaheadTime,
		maxLonAcc: p.MaxLonAcc,
		workers:   runtime.NumCPU(),
	}
}

// candidate 单条候选轨迹及其代价
type candidate struct {
	points []entity.TrajectoryPoint
	cost   float64
}

// Process 运行一次轨迹优化
// 功能：对每个规划目标采样候选轨迹，经碰撞与可行性筛选后按代价取最优
// 参数：obstacles-本周期障碍物（带预测轨迹），initPoint-初始点，targets-规划目标
// 返回：最优轨迹（状态NORMAL，时间戳由调用方填写）；无可行候选时返回错误
// 算法说明：
// 1. 目标间用有界工作池并行，单个目标的采样在工作协程内串行
// 2. 纵向剖面：巡航用四次多项式（终点约束速度/加速度），
//    存在停车点时另采样五次多项式刹停剖面（终点约束位置）
// 3. 横向剖面：五次多项式在时域内回正到参考线中心
// 4. 候选逐点与每个障碍物的预测位置做圆形间隙检查，碰撞即拒绝；
//    越过停车点或纵向加速度超限的候选同样拒绝
// 5. 代价=速度偏差+横向偏移+加加速度-终点里程，非首选参考线加固定惩罚
func (o *Optimizer) Process(
	obstacles []entity.IObstacle,
	initPoint entity.TrajectoryPoint,
	targets []entity.PlanningTarget,
) (*entity.Trajectory, error) {
	if len(targets) == 0 {
		return nil, ErrNoFeasibleTrajectory
	}

	queue := container.NewPriorityQueue[*candidate]()
	var mu sync.Mutex
	var eg errgroup.Group
	eg.SetLimit(o.workers)
	for _, target := range targets {
		eg.Go(func() error {
			for _, c := range o.planTarget(obstacles, initPoint, target) {
				mu.Lock()
				queue.HeapPush(c, c.cost)
				mu.Unlock()
			}
			return nil
		})
	}
	// 工作函数不返回错误，目标级失败表现为零候选
	_ = eg.Wait()

	if queue.Len() == 0 {
		return nil, ErrNoFeasibleTrajectory
	}
	best, cost := queue.HeapPop()
	log.Debugf("pick trajectory with cost %.3f from %d candidates", cost, queue.Len()+1)
	return &entity.Trajectory{
		Points: best.points,
		Status: entity.TrajectoryStatusNormal,
	}, nil
}

// lonProfile 纵向剖面：s及其各阶导数关于时间的函数
type lonProfile interface {
	Eval(order int, t float64) float64
}

// planTarget 对单个规划目标采样候选轨迹
// 返回：通过碰撞与可行性筛选的候选集合（可能为空）
func (o *Optimizer) planTarget(
	obstacles []entity.IObstacle,
	initPoint entity.TrajectoryPoint,
	target entity.PlanningTarget,
) []*candidate {
	line := target.RefLine
	sl, ok := line.XYToSL(initPoint.X, initPoint.Y)
	if !ok {
		return nil
	}
	ref := line.GetReferencePoint(sl.S)
	dTheta := wrapAngle(initPoint.Theta - ref.Theta)
	ds0 := initPoint.V * math.Cos(dTheta)
	dl0 := initPoint.V * math.Sin(dTheta)

	// 横向剖面对同一目标的所有纵向候选共用
	lat := newQuinticPolynomial(sl.L, dl0, 0, 0, 0, 0, o.horizon)

	profiles := make([]lonProfile, 0, len(cruiseEndVRatios)+1)
	for _, ratio := range cruiseEndVRatios {
		profiles = append(profiles,
			newQuarticPolynomial(0, ds0, initPoint.A, target.DesiredV*ratio, 0, o.horizon))
	}
	if target.HasStopPoint {
		stopS := target.StopS - sl.S
		if stopS >= 0 {
			profiles = append(profiles,
				newQuinticPolynomial(0, ds0, initPoint.A, stopS, 0, 0, o.horizon))
		}
	}

	candidates := make([]*candidate, 0, len(profiles))
	for _, lon := range profiles {
		if c := o.evaluate(obstacles, initPoint, target, sl.S, lon, lat); c != nil {
			candidates = append(candidates, c)
		}
	}
	return candidates
}

// evaluate 合成一条候选轨迹并计算代价
// 功能：按deltaT离散纵横向剖面、转换到笛卡尔坐标并做逐点检查
// 返回：可行候选；碰撞、越过停车点或加速度超限时返回nil
func (o *Optimizer) evaluate(
	obstacles []entity.IObstacle,
	initPoint entity.TrajectoryPoint,
	target entity.PlanningTarget,
	s0 float64,
	lon lonProfile,
	lat *quinticPolynomial,
) *candidate {
	n := int(o.horizon / o.deltaT)
	line := target.RefLine
	points := make([]entity.TrajectoryPoint, 0, n)
	var costV, costL, costJ float64
	for i := 0; i < n; i++ {
		t := float64(i) * o.deltaT
		s := lon.Eval(0, t)
		v := math.Max(0, lon.Eval(1, t))
		a := lon.Eval(2, t)
		jerk := lon.Eval(3, t)
		if math.Abs(a) > o.maxLonAcc+accelMargin {
			return nil
		}
		if target.HasStopPoint && s0+s > target.StopS+stopOverrunS {
			return nil
		}
		l := lat.Eval(0, t)
		dl := lat.Eval(1, t)

		ref := line.GetReferencePoint(s0 + s)
		x := ref.X - l*math.Sin(ref.Theta)
		y := ref.Y + l*math.Cos(ref.Theta)
		theta := wrapAngle(ref.Theta + math.Atan2(dl, math.Max(v, speedEps)))
		for _, ob := range obstacles {
			ox, oy := ob.PositionAt(t)
			if math.Hypot(x-ox, y-oy) < ob.BoundingRadius()+egoRadius {
				return nil
			}
		}
		points = append(points, entity.TrajectoryPoint{
			X:            x,
			Y:            y,
			Theta:        theta,
			Kappa:        ref.Kappa,
			S:            s,
			V:            v,
			A:            a,
			Jerk:         jerk,
			RelativeTime: initPoint.RelativeTime + t,
		})

		dv := target.DesiredV - v
		costV += dv * dv
		costL += l * l
		costJ += jerk * jerk
	}
	fn := float64(n)
	cost := weightVelocity*costV/fn + weightLateral*costL/fn + weightJerk*costJ/fn -
		weightProgress*points[len(points)-1].S
	if !target.IsBest {
		cost += offLaneCost
	}
	return &candidate{points: points, cost: cost}
}

// wrapAngle 将角度规范化到(-π, π]
func wrapAngle(a float64) float64 {
	return math.Atan2(math.Sin(a), math.Cos(a))
}
