package planner_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/motion-planner-go/clock"
	"github.com/tsinghua-fib-lab/motion-planner-go/entity"
	"github.com/tsinghua-fib-lab/motion-planner-go/planner"
	"github.com/tsinghua-fib-lab/motion-planner-go/utils/config"
)

// testContext 测试用任务上下文
type testContext struct {
	clock *clock.Clock
	cfg   *config.RuntimeConfig
}

func newTestContext() *testContext {
	cfg := config.NewRuntimeConfig(config.Config{
		Planner: config.Planner{
			Type:                  "frenet_lattice",
			LoopRate:              10,
			DeltaT:                0.1,
			MaxLookaheadTime:      8,
			DesiredVelocity:       10,
			MaxLatAcc:             1.5,
			MaxLonAcc:             2,
			PreserveHistoryPoints: 2,
			MaxReplanLatThreshold: 0.5,
			MaxReplanLonThreshold: 2.5,
		},
		Reference: config.Reference{
			LookaheadLength: 300,
			LookbackLength:  30,
			LaneWidth:       3.5,
		},
	})
	return &testContext{clock: clock.New(cfg.P), cfg: cfg}
}

func (c *testContext) Clock() *clock.Clock                 { return c.clock }
func (c *testContext) RuntimeConfig() *config.RuntimeConfig { return c.cfg }

// fakeEstimator 固定状态的估计器
type fakeEstimator struct {
	state entity.KinoDynamicState
}

func (e *fakeEstimator) Update(entity.PerceivedObject, entity.EgoStatus) {}
func (e *fakeEstimator) CurrentState() entity.KinoDynamicState           { return e.state }

// straightHistory 沿x轴、每0.1秒前进1米的历史轨迹
func straightHistory(n int, stamp float64) *entity.Trajectory {
	points := make([]entity.TrajectoryPoint, n)
	for i := range points {
		points[i] = entity.TrajectoryPoint{
			X:            float64(i),
			Y:            0,
			S:            float64(i),
			V:            10,
			RelativeTime: float64(i) * 0.1,
		}
	}
	return &entity.Trajectory{Points: points, Stamp: stamp, Status: entity.TrajectoryStatusNormal}
}

func TestStitchReinitWithoutHistory(t *testing.T) {
	ctx := newTestContext()
	history := planner.NewHistory()
	estimator := &fakeEstimator{state: entity.KinoDynamicState{X: 3, Y: 4}}
	st := planner.NewStitcher(ctx, estimator, history)

	seed := st.Stitch(0, 0.1, 2)
	assert.Equal(t, 1, len(seed))
	// 准静止：直接取当前状态
	assert.Equal(t, 3.0, seed[0].X)
	assert.Equal(t, 4.0, seed[0].Y)
	assert.Equal(t, 0.1, seed[0].RelativeTime)
	assert.Equal(t, 0.0, seed[0].S)
}

func TestStitchReinitPropagatesMovingState(t *testing.T) {
	ctx := newTestContext()
	history := planner.NewHistory()
	estimator := &fakeEstimator{state: entity.KinoDynamicState{X: 0, V: 2}}
	st := planner.NewStitcher(ctx, estimator, history)

	seed := st.Stitch(0, 0.1, 2)
	assert.Equal(t, 1, len(seed))
	// 非静止：状态先前推一个周期
	assert.InDelta(t, 0.2, seed[0].X, 1e-9)
	assert.InDelta(t, 2.0, seed[0].V, 1e-9)
}

func TestStitchFollowsHistory(t *testing.T) {
	ctx := newTestContext()
	history := planner.NewHistory()
	history.Store(straightHistory(50, 0))
	estimator := &fakeEstimator{state: entity.KinoDynamicState{X: 2, Y: 0, V: 10}}
	st := planner.NewStitcher(ctx, estimator, history)

	seed := st.Stitch(0.2, 0.1, 2)
	// 时间匹配点索引2，保留2点，前向到索引3
	assert.Equal(t, 4, len(seed))
	last := seed[len(seed)-1]
	// 衔接点：相对时间平移到下一周期，弧长归零
	assert.InDelta(t, 0.1, last.RelativeTime, 1e-9)
	assert.InDelta(t, 0.0, last.S, 1e-9)
	assert.InDelta(t, 3.0, last.X, 1e-9)
	assert.InDelta(t, -3.0, seed[0].S, 1e-9)
	assert.InDelta(t, -0.2, seed[0].RelativeTime, 1e-9)
}

func TestStitchReinitWhenHistoryExhausted(t *testing.T) {
	ctx := newTestContext()
	history := planner.NewHistory()
	history.Store(straightHistory(5, 0))
	estimator := &fakeEstimator{state: entity.KinoDynamicState{X: 4}}
	st := planner.NewStitcher(ctx, estimator, history)

	// 当前时刻已越过历史末点
	seed := st.Stitch(10, 0.1, 2)
	assert.Equal(t, 1, len(seed))
}

func TestStitchReinitWhenNowPrecedesHistory(t *testing.T) {
	ctx := newTestContext()
	history := planner.NewHistory()
	history.Store(straightHistory(50, 5))
	estimator := &fakeEstimator{state: entity.KinoDynamicState{X: 0}}
	st := planner.NewStitcher(ctx, estimator, history)

	seed := st.Stitch(4, 0.1, 2)
	assert.Equal(t, 1, len(seed))
}

func TestStitchReinitOnLateralDeviation(t *testing.T) {
	ctx := newTestContext()
	history := planner.NewHistory()
	history.Store(straightHistory(50, 0))
	// 横向偏离1米，超过0.5米阈值
	estimator := &fakeEstimator{state: entity.KinoDynamicState{X: 2, Y: 1, V: 10}}
	st := planner.NewStitcher(ctx, estimator, history)

	seed := st.Stitch(0.2, 0.1, 2)
	assert.Equal(t, 1, len(seed))
}

func TestStitchReinitOnLongitudinalDeviation(t *testing.T) {
	ctx := newTestContext()
	history := planner.NewHistory()
	history.Store(straightHistory(50, 0))
	// 实车落后时间匹配点4米，超过2.5米阈值
	estimator := &fakeEstimator{state: entity.KinoDynamicState{X: 0, Y: 0, V: 10}}
	st := planner.NewStitcher(ctx, estimator, history)

	seed := st.Stitch(0.4, 0.1, 2)
	assert.Equal(t, 1, len(seed))
}

func TestStitchReinitAfterInvalidate(t *testing.T) {
	ctx := newTestContext()
	history := planner.NewHistory()
	history.Store(straightHistory(50, 0))
	history.Invalidate()
	estimator := &fakeEstimator{state: entity.KinoDynamicState{X: 2, V: 10}}
	st := planner.NewStitcher(ctx, estimator, history)

	seed := st.Stitch(0.2, 0.1, 2)
	assert.Equal(t, 1, len(seed))
}

func TestStitchZeroDeviationKeepsWindow(t *testing.T) {
	ctx := newTestContext()
	history := planner.NewHistory()
	history.Store(straightHistory(50, 0))
	// 完美跟踪：实车恰好位于时间匹配点上
	estimator := &fakeEstimator{state: entity.KinoDynamicState{X: 3, Y: 0, V: 10}}
	st := planner.NewStitcher(ctx, estimator, history)

	seed := st.Stitch(0.3, 0.1, 2)
	assert.Equal(t, 4, len(seed))
	for i := 1; i < len(seed); i++ {
		assert.Greater(t, seed[i].RelativeTime, seed[i-1].RelativeTime)
		assert.Greater(t, seed[i].S, seed[i-1].S)
	}
}

func TestPositionMatchTieBreak(t *testing.T) {
	ctx := newTestContext()
	history := planner.NewHistory()
	// 两点到实车位置等距，取更早的点
	trajectory := &entity.Trajectory{
		Points: []entity.TrajectoryPoint{
			{X: 0, S: 0, RelativeTime: 0},
			{X: 2, S: 2, RelativeTime: 0.1},
			{X: 4, S: 4, RelativeTime: 0.2},
		},
		Stamp: 0,
	}
	history.Store(trajectory)
	estimator := &fakeEstimator{state: entity.KinoDynamicState{X: 1, Y: 0}}
	st := planner.NewStitcher(ctx, estimator, history)

	// timeIdx=1，posIdx=0（等距取先），窗口从min(0,1)-2截断到0
	seed := st.Stitch(0.1, 0.1, 2)
	assert.Equal(t, 3, len(seed))
	assert.InDelta(t, -0.1, seed[0].RelativeTime, 1e-9)
}
