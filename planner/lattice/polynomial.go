package lattice

// quinticPolynomial 五次多项式曲线
// 功能：以两端的位置/一阶/二阶导数为边界条件的五次样条，
// 用于带终点位置约束的纵向剖面（停车）与横向回正剖面
type quinticPolynomial struct {
	coef [6]float64
	t    float64 // 曲线参数区间[0, t]
}

// newQuinticPolynomial 由边界条件构造五次多项式
// 参数：x0/dx0/ddx0-起点的位置/一阶/二阶导数，x1/dx1/ddx1-终点取值，t-区间长度
func newQuinticPolynomial(x0, dx0, ddx0, x1, dx1, ddx1, t float64) *quinticPolynomial {
	p := &quinticPolynomial{t: t}
	p.coef[0] = x0
	p.coef[1] = dx0
	p.coef[2] = ddx0 / 2

	t2 := t * t
	t3 := t2 * t
	d := x1 - x0 - dx0*t - ddx0*t2/2
	dd := dx1 - dx0 - ddx0*t
	ddd := ddx1 - ddx0
	p.coef[3] = (10*d - 4*dd*t + ddd*t2/2) / t3
	p.coef[4] = (-15*d + 7*dd*t - ddd*t2) / (t3 * t)
	p.coef[5] = (6*d - 3*dd*t + ddd*t2/2) / (t3 * t2)
	return p
}

// Eval 求多项式在s处的order阶导数（order取0~3）
func (p *quinticPolynomial) Eval(order int, s float64) float64 {
	c := p.coef
	switch order {
	case 0:
		return ((((c[5]*s+c[4])*s+c[3])*s+c[2])*s+c[1])*s + c[0]
	case 1:
		return (((5*c[5]*s+4*c[4])*s+3*c[3])*s+2*c[2])*s + c[1]
	case 2:
		return ((20*c[5]*s+12*c[4])*s+6*c[3])*s + 2*c[2]
	default:
		return (60*c[5]*s+24*c[4])*s + 6*c[3]
	}
}

// quarticPolynomial 四次多项式曲线
// 功能：终点只约束一阶/二阶导数（不约束位置）的纵向剖面，用于巡航
type quarticPolynomial struct {
	coef [5]float64
	t    float64
}

// newQuarticPolynomial 由边界条件构造四次多项式
// 参数：x0/dx0/ddx0-起点的位置/一阶/二阶导数，dx1/ddx1-终点的一阶/二阶导数，t-区间长度
func newQuarticPolynomial(x0, dx0, ddx0, dx1, ddx1, t float64) *quarticPolynomial {
	p := &quarticPolynomial{t: t}
	p.coef[0] = x0
	p.coef[1] = dx0
	p.coef[2] = ddx0 / 2

	dd := dx1 - dx0 - ddx0*t
	ddd := ddx1 - ddx0
	p.coef[3] = dd/(t*t) - ddd/(3*t)
	p.coef[4] = ddd/(4*t*t) - dd/(2*t*t*t)
	return p
}

// Eval 求多项式在s处的order阶导数（order取0~3）
func (p *quarticPolynomial) Eval(order int, s float64) float64 {
	c := p.coef
	switch order {
	case 0:
		return (((c[4]*s+c[3])*s+c[2])*s+c[1])*s + c[0]
	case 1:
		return ((4*c[4]*s+3*c[3])*s+2*c[2])*s + c[1]
	case 2:
		return (12*c[4]*s+6*c[3])*s + 2*c[2]
	default:
		return 24*c[4]*s + 6*c[3]
	}
}
