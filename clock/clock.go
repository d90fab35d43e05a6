package clock

import (
	"fmt"

	"github.com/tsinghua-fib-lab/motion-planner-go/utils/config"
)

// Clock 规划时钟
// 功能：管理规划循环的时间推进，所有轨迹时间戳均取自该时钟
// 说明：规划周期由控制频率导出，T随tick单调递增，保证回放与测试的确定性
type Clock struct {
	LOOP_RATE  float64 // 控制循环频率（Hz）
	CYCLE_TIME float64 // 规划周期（秒），= 1 / LOOP_RATE

	Tick int32   // 当前周期序号
	T    float64 // 当前时间（秒）
}

// New 根据配置创建新的时钟实例
// 功能：根据规划配置初始化时钟信息
// 参数：c-规划器配置，其中LoopRate必须为正
// 返回：初始化完成的时钟实例
func New(c config.Planner) *Clock {
	clock := &Clock{
		LOOP_RATE:  c.LoopRate,
		CYCLE_TIME: 1 / c.LoopRate,
	}
	clock.Init()
	return clock
}

// Init 初始化时钟状态
// 功能：重置周期序号与当前时间
func (c *Clock) Init() {
	c.Tick = 0
	c.T = 0
}

// Step 推进一个规划周期
// 功能：周期序号加一并重新计算当前时间
func (c *Clock) Step() {
	c.Tick++
	c.T = float64(c.Tick) * c.CYCLE_TIME
}

// String 获取时钟的字符串表示
func (c *Clock) String() string {
	return fmt.Sprintf("tick %d (%.3fs)", c.Tick, c.T)
}
