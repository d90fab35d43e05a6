package config

// Planner 规划器核心参数
// 功能：定义每周期重规划逻辑的全部配置面
// 说明：参数名与planning_config配置文件保持一致
type Planner struct {
	Type                  string  `yaml:"type"`                                  // 优化器策略名
	LoopRate              float64 `yaml:"loop_rate"`                             // 控制循环频率（Hz）
	DeltaT                float64 `yaml:"delta_t"`                               // 规划轨迹时间步长（秒）
	MaxLookaheadTime      float64 `yaml:"max_lookahead_time"`                    // 规划最大前瞻时间（秒）
	DesiredVelocity       float64 `yaml:"desired_velocity"`                      // 期望巡航速度（米/秒）
	MaxLatAcc             float64 `yaml:"max_lat_acc"`                           // 最大横向加速度（米/秒²）
	MaxLonAcc             float64 `yaml:"max_lon_acc"`                           // 最大纵向加/减速度幅值（米/秒²）
	PreserveHistoryPoints int     `yaml:"preserve_history_trajectory_point_num"` // 拼接时向后保留的历史点数
	MaxReplanLatThreshold float64 `yaml:"max_replan_lat_distance_threshold"`     // 触发重新初始化的横向偏差阈值（米）
	MaxReplanLonThreshold float64 `yaml:"max_replan_lon_distance_threshold"`     // 触发重新初始化的纵向偏差阈值（米）
}

// Reference 参考线生成参数
type Reference struct {
	LookaheadLength float64 `yaml:"lookahead_length"` // 自车前方截取长度（米）
	LookbackLength  float64 `yaml:"lookback_length"`  // 自车后方截取长度（米）
	LaneWidth       float64 `yaml:"lane_width"`       // 车道宽度（米），用于IsOnLane判定
}

// Input 场景回放输入配置
// 功能：指定离线回放场景文件与感知噪声参数
// 说明：在线部署时由外部接入层直接写入快照，本配置可整体省略
type Input struct {
	Scenario string  `yaml:"scenario,omitempty"`  // 场景文件路径（YAML）
	NoiseStd float64 `yaml:"noise_std,omitempty"` // 感知位置高斯噪声标准差（米），0为无噪声
	Seed     uint64  `yaml:"seed,omitempty"`      // 噪声随机种子
}

// Output 轨迹落库配置
// 功能：将每周期发布的轨迹写入MongoDB，便于离线检查
type Output struct {
	URI string `yaml:"uri,omitempty"` // MongoDB连接字符串，为空则禁用
	DB  string `yaml:"db,omitempty"`  // 数据库名
	Col string `yaml:"col,omitempty"` // 集合名
}

// Config YAML配置文件的根结构
type Config struct {
	Planner   Planner   `yaml:"planner"`          // 规划器参数
	Reference Reference `yaml:"reference"`        // 参考线参数
	Input     Input     `yaml:"input,omitempty"`  // 回放输入
	Output    Output    `yaml:"output,omitempty"` // 轨迹落库
}
