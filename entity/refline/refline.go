package refline

import (
	"fmt"
	"math"
	"sort"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/motion-planner-go/entity"
)

const (
	// maxProjectionDistance 投影失败判定距离（米）
	// 超过该距离认为自车不在参考线附近，XYToSL返回失败
	maxProjectionDistance = 10.0
)

// ReferenceLine 参考线
// 功能：以弧长参数化的候选路径，支持笛卡尔-曲线坐标投影与参考点查询
// 说明：由折线顶点构造，长度、切向、曲率均为折线的离散量
type ReferenceLine struct {
	line           []geometry.Point             // 折线顶点
	lineLengths    []float64                    // 顶点处的累计弧长
	lineDirections []geometry.PolylineDirection // 折线段切向角
	curvatures     []float64                    // 顶点处的离散曲率
	length         float64                      // 总长
	laneWidth      float64                      // 车道宽度，用于IsOnLane判定
}

// New 由折线顶点构造参考线
// 功能：计算弧长、切向与离散曲率
// 参数：line-折线顶点（至少两个），laneWidth-车道宽度
// 返回：参考线实例，顶点不足时返回错误
// 算法说明：
// 1. 弧长与分段切向由折线直接求出
// 2. 顶点曲率取相邻两段切向角之差除以两段中点间的弧长，
//    首末顶点沿用相邻顶点的曲率
func New(line []geometry.Point, laneWidth float64) (*ReferenceLine, error) {
	if len(line) < 2 {
		return nil, fmt.Errorf("refline: need at least 2 waypoints, got %d", len(line))
	}
	r := &ReferenceLine{
		line:      line,
		laneWidth: laneWidth,
	}
	r.lineLengths = geometry.GetPolylineLengths2D(line)
	r.length = r.lineLengths[len(r.lineLengths)-1]
	r.lineDirections = geometry.GetPolylineDirections(line)

	r.curvatures = make([]float64, len(line))
	for i := 1; i < len(line)-1; i++ {
		dTheta := wrapAngle(r.lineDirections[i].Direction - r.lineDirections[i-1].Direction)
		ds := (r.lineLengths[i+1] - r.lineLengths[i-1]) / 2
		if ds > 0 {
			r.curvatures[i] = dTheta / ds
		}
	}
	if len(line) > 2 {
		r.curvatures[0] = r.curvatures[1]
		r.curvatures[len(line)-1] = r.curvatures[len(line)-2]
	}
	return r, nil
}

// Length 参考线总长
func (r *ReferenceLine) Length() float64 {
	return r.length
}

// GetReferencePoint 查询里程s处的参考点
// 功能：返回s处的坐标、切向角与曲率
// 算法说明：坐标在所在折线段上线性插值，切向取所在段方向，
// 曲率在相邻顶点之间线性插值
func (r *ReferenceLine) GetReferencePoint(s float64) entity.ReferencePoint {
	s = lo.Clamp(s, 0, r.length)
	i := sort.SearchFloat64s(r.lineLengths, s)
	if i == 0 {
		return entity.ReferencePoint{
			X:     r.line[0].X,
			Y:     r.line[0].Y,
			Theta: r.lineDirections[0].Direction,
			Kappa: r.curvatures[0],
		}
	}
	sHigh, sLow := r.lineLengths[i], r.lineLengths[i-1]
	k := (s - sLow) / (sHigh - sLow)
	pos := geometry.Blend(r.line[i-1], r.line[i], k)
	return entity.ReferencePoint{
		X:     pos.X,
		Y:     pos.Y,
		Theta: r.lineDirections[i-1].Direction,
		Kappa: r.curvatures[i-1] + k*(r.curvatures[i]-r.curvatures[i-1]),
	}
}

// XYToSL 笛卡尔坐标投影到曲线坐标
// 功能：求(x,y)在参考线上的里程与横向偏移
// 返回：曲线坐标与投影是否成功
// 算法说明：
// 1. 最近点里程由折线投影求出
// 2. 横向偏移取投影点切向的左法向分量（左正右负）
// 3. 偏离参考线超过maxProjectionDistance视为投影失败
func (r *ReferenceLine) XYToSL(x, y float64) (entity.SLPoint, bool) {
	pos := geometry.Point{X: x, Y: y}
	s := geometry.GetClosestPolylineSToPoint2D(r.line, r.lineLengths, pos)
	s = lo.Clamp(s, 0, r.length)
	ref := r.GetReferencePoint(s)
	dx := x - ref.X
	dy := y - ref.Y
	l := dy*math.Cos(ref.Theta) - dx*math.Sin(ref.Theta)
	if math.Hypot(dx, dy) > maxProjectionDistance {
		return entity.SLPoint{}, false
	}
	return entity.SLPoint{S: s, L: l}, true
}

// IsOnLane 判断曲线坐标是否位于车道范围内
func (r *ReferenceLine) IsOnLane(sl entity.SLPoint) bool {
	return sl.S >= 0 && sl.S <= r.length && math.Abs(sl.L) <= r.laneWidth/2
}

// wrapAngle 将角度规范化到(-π, π]
func wrapAngle(a float64) float64 {
	return math.Atan2(math.Sin(a), math.Cos(a))
}
