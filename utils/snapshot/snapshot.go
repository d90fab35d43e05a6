// 输入流最新值快照。感知、底盘、信号灯等输入在各自通道上异步到达，
// 写入方用Store整体替换快照，规划周期开始时用Load读取一次，
// 后写覆盖先写，周期内不再变化。
package snapshot

import "sync/atomic"

// Cell 最新值快照单元
// 功能：单写者/单读者场景下的原子替换快照，无需加锁
type Cell[T any] struct {
	p atomic.Pointer[T]
}

// Store 整体替换快照
func (c *Cell[T]) Store(value T) {
	c.p.Store(&value)
}

// Load 读取当前快照
// 返回：快照值与是否已有写入
func (c *Cell[T]) Load() (T, bool) {
	if p := c.p.Load(); p != nil {
		return *p, true
	}
	var zero T
	return zero, false
}
