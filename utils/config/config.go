package config

// RuntimeConfig 运行时配置
// 功能：存储规划器运行时的配置信息，启动时构造一次后按引用传入各组件
// 说明：不使用全局可变配置单例，便于用不同参数集独立测试
type RuntimeConfig struct {
	All Config    // 全部配置
	P   Planner   // 规划器参数
	R   Reference // 参考线参数
}

// NewRuntimeConfig 根据配置初始化运行时配置
// 功能：创建运行时配置对象并补全缺省值
// 参数：config-原始配置对象
// 返回：初始化的运行时配置指针
// 说明：数值合法性（频率、步长为正）由调用方在启动时校验
func NewRuntimeConfig(config Config) *RuntimeConfig {
	rc := &RuntimeConfig{}

	rc.All = config
	rc.P = config.Planner
	rc.R = config.Reference
	if rc.R.LaneWidth <= 0 {
		rc.R.LaneWidth = 3.5
	}

	return rc
}
