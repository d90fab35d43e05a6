// 随机数引擎，包装了golang.org/x/exp/rand。场景回放的感知噪声使用该引擎，
// 同一种子保证同一回放序列可复现。
package randengine

import (
	"flag"

	"golang.org/x/exp/rand"
)

var (
	seedOffset = flag.Uint64("rand.seed_offset", 0, "seed offset") // 种子偏移量，用于调整随机数生成
)

// Engine 随机数引擎
// 功能：提供可复现的随机数生成功能
// 说明：基于golang.org/x/exp/rand库
type Engine struct {
	*rand.Rand // 底层随机数生成器
}

// New 创建随机数引擎
// 功能：初始化一个新的随机数引擎实例
// 参数：seed-随机数种子
// 返回：随机数引擎指针
// 说明：种子偏移量允许在不修改配置的情况下调整随机数序列
func New(seed uint64) *Engine {
	return &Engine{Rand: rand.New(rand.NewSource(seed + *seedOffset))}
}

// Gaussian 生成正态分布随机数
// 功能：按N(mean, std²)采样
// 参数：mean-均值，std-标准差
// 返回：采样值
func (e *Engine) Gaussian(mean, std float64) float64 {
	return mean + std*e.NormFloat64()
}
