package planner

import "github.com/tsinghua-fib-lab/motion-planner-go/entity"

// History 历史轨迹存储
// 功能：保存上一周期发布的轨迹与有效标志
// 说明：唯一写者是周期编排器（每周期恰好写一次，成功或回退），
// 唯一读者是拼接器（下一周期开始时读一次），写为整体替换，无需加锁
type History struct {
	trajectory *entity.Trajectory
	valid      bool
}

// NewHistory 创建历史轨迹存储
func NewHistory() *History {
	return &History{}
}

// Store 写入新的有效历史轨迹
func (h *History) Store(trajectory *entity.Trajectory) {
	h.trajectory = trajectory
	h.valid = true
}

// Invalidate 将历史轨迹标记为无效
// 说明：历史无效时拼接器必须重新初始化而不能拼接
func (h *History) Invalidate() {
	h.valid = false
}

// Load 读取历史轨迹
// 返回：上一周期轨迹与有效标志
func (h *History) Load() (*entity.Trajectory, bool) {
	return h.trajectory, h.valid
}
