package refline

import (
	"sort"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/motion-planner-go/entity"
	"github.com/tsinghua-fib-lab/motion-planner-go/utils/config"
	"github.com/tsinghua-fib-lab/motion-planner-go/utils/snapshot"
)

// Provider 参考线提供器
// 功能：保存候选路由（导航折线），按自车位置截取前后窗口生成候选参考线
// 说明：路由与自车状态均为最新值快照，GetReferenceLines在周期内调用一次
type Provider struct {
	lookahead float64 // 自车前方截取长度（米）
	lookback  float64 // 自车后方截取长度（米）
	laneWidth float64 // 车道宽度（米）

	routes snapshot.Cell[[][]geometry.Point]
	state  snapshot.Cell[entity.KinoDynamicState]
}

// NewProvider 创建参考线提供器
// 参数：c-参考线配置
func NewProvider(c config.Reference) *Provider {
	return &Provider{
		lookahead: c.LookaheadLength,
		lookback:  c.LookbackLength,
		laneWidth: c.LaneWidth,
	}
}

// UpdateRoutes 更新候选路由
// 说明：导航结果异步到达，后写覆盖先写
func (p *Provider) UpdateRoutes(routes [][]geometry.Point) {
	p.routes.Store(routes)
}

// UpdateVehicleState 推送自车状态
func (p *Provider) UpdateVehicleState(state entity.KinoDynamicState) {
	p.state.Store(state)
}

// GetReferenceLines 获取候选参考线
// 功能：对每条路由，将自车位置投影到路由折线上，
// 截取[s-lookback, s+lookahead]窗口构造参考线
// 返回：候选参考线列表与是否可用；无路由、无状态或全部投影失败时返回false
// 说明：单条路由投影失败只做丢弃，不视为错误
func (p *Provider) GetReferenceLines() ([]entity.IReferenceLine, bool) {
	routes, ok := p.routes.Load()
	if !ok || len(routes) == 0 {
		return nil, false
	}
	state, ok := p.state.Load()
	if !ok {
		return nil, false
	}

	lines := make([]entity.IReferenceLine, 0, len(routes))
	for _, route := range routes {
		full, err := New(route, p.laneWidth)
		if err != nil {
			log.Errorf("provider: skip bad route: %v", err)
			continue
		}
		sl, ok := full.XYToSL(state.X, state.Y)
		if !ok {
			continue
		}
		window := sliceRoute(route, full.lineLengths, sl.S-p.lookback, sl.S+p.lookahead)
		line, err := New(window, p.laneWidth)
		if err != nil {
			continue
		}
		lines = append(lines, line)
	}
	return lines, len(lines) > 0
}

// sliceRoute 截取折线在弧长[s0, s1]内的部分
// 功能：窗口端点在所在折线段上插值，中间顶点原样保留
func sliceRoute(line []geometry.Point, lengths []float64, s0, s1 float64) []geometry.Point {
	total := lengths[len(lengths)-1]
	s0 = lo.Clamp(s0, 0, total)
	s1 = lo.Clamp(s1, 0, total)
	if s1 <= s0 {
		return nil
	}
	out := []geometry.Point{pointAt(line, lengths, s0)}
	lowIdx := sort.SearchFloat64s(lengths, s0)
	highIdx := sort.SearchFloat64s(lengths, s1)
	for i := lowIdx; i < highIdx; i++ {
		if lengths[i] > s0 && lengths[i] < s1 {
			out = append(out, line[i])
		}
	}
	out = append(out, pointAt(line, lengths, s1))
	return out
}

// pointAt 折线上弧长s处的坐标
func pointAt(line []geometry.Point, lengths []float64, s float64) geometry.Point {
	i := sort.SearchFloat64s(lengths, s)
	if i == 0 {
		return line[0]
	}
	k := (s - lengths[i-1]) / (lengths[i] - lengths[i-1])
	return geometry.Blend(line[i-1], line[i], k)
}
