package refline_test

import (
	"math"
	"testing"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/motion-planner-go/entity/refline"
)

func TestNewRejectsShortLine(t *testing.T) {
	_, err := refline.New([]geometry.Point{{X: 0, Y: 0}}, 3.5)
	assert.NotNil(t, err)
}

func TestStraightLineProjection(t *testing.T) {
	line, err := refline.New([]geometry.Point{{X: 0, Y: 0}, {X: 100, Y: 0}}, 3.5)
	assert.Nil(t, err)
	assert.Equal(t, 100.0, line.Length())

	sl, ok := line.XYToSL(30, 1)
	assert.True(t, ok)
	assert.InDelta(t, 30.0, sl.S, 1e-9)
	// 左侧为正
	assert.InDelta(t, 1.0, sl.L, 1e-9)

	sl, ok = line.XYToSL(30, -1)
	assert.True(t, ok)
	assert.InDelta(t, -1.0, sl.L, 1e-9)

	// 距离参考线过远：投影失败
	_, ok = line.XYToSL(30, 50)
	assert.False(t, ok)
}

func TestGetReferencePointInterpolation(t *testing.T) {
	line, err := refline.New([]geometry.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}}, 3.5)
	assert.Nil(t, err)
	assert.InDelta(t, 20.0, line.Length(), 1e-9)

	p := line.GetReferencePoint(5)
	assert.InDelta(t, 5.0, p.X, 1e-9)
	assert.InDelta(t, 0.0, p.Y, 1e-9)
	assert.InDelta(t, 0.0, p.Theta, 1e-9)

	p = line.GetReferencePoint(15)
	assert.InDelta(t, 10.0, p.X, 1e-9)
	assert.InDelta(t, 5.0, p.Y, 1e-9)
	assert.InDelta(t, math.Pi/2, p.Theta, 1e-9)

	// 越界取值钳到端点
	p = line.GetReferencePoint(-5)
	assert.InDelta(t, 0.0, p.X, 1e-9)
	p = line.GetReferencePoint(100)
	assert.InDelta(t, 10.0, p.X, 1e-9)
	assert.InDelta(t, 10.0, p.Y, 1e-9)
}

func TestCurvatureOnArc(t *testing.T) {
	// 半径20米的圆弧采样
	const radius = 20.0
	points := make([]geometry.Point, 0, 21)
	for i := 0; i <= 20; i++ {
		a := float64(i) * math.Pi / 40
		points = append(points, geometry.Point{X: radius * math.Sin(a), Y: radius * (1 - math.Cos(a))})
	}
	line, err := refline.New(points, 3.5)
	assert.Nil(t, err)

	p := line.GetReferencePoint(line.Length() / 2)
	assert.InDelta(t, 1/radius, p.Kappa, 0.005)
}

func TestIsOnLane(t *testing.T) {
	line, err := refline.New([]geometry.Point{{X: 0, Y: 0}, {X: 100, Y: 0}}, 3.5)
	assert.Nil(t, err)

	sl, ok := line.XYToSL(30, 1)
	assert.True(t, ok)
	assert.True(t, line.IsOnLane(sl))

	sl, ok = line.XYToSL(30, 2)
	assert.True(t, ok)
	// 偏移2米超出半车道宽1.75米
	assert.False(t, line.IsOnLane(sl))
}
