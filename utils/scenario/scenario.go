package scenario

import (
	"fmt"
	"os"
	"sort"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/motion-planner-go/entity"
	"github.com/tsinghua-fib-lab/motion-planner-go/utils/config"
	"github.com/tsinghua-fib-lab/motion-planner-go/utils/randengine"
	"gopkg.in/yaml.v2"
)

// 场景文件的YAML结构

type pointRecord struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z,omitempty"`
}

type objectRecord struct {
	ID     int32   `yaml:"id"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Z      float64 `yaml:"z,omitempty"`
	Theta  float64 `yaml:"theta"`
	V      float64 `yaml:"v"`
	A      float64 `yaml:"a,omitempty"`
	Length float64 `yaml:"length"`
	Width  float64 `yaml:"width"`
}

type lightRecord struct {
	ID    int32  `yaml:"id"`
	State string `yaml:"state"`
}

type egoStatusRecord struct {
	V          float64 `yaml:"v"`
	A          float64 `yaml:"a,omitempty"`
	SteerAngle float64 `yaml:"steer_angle,omitempty"`
}

type frameRecord struct {
	T         float64         `yaml:"t"`
	Objects   []objectRecord  `yaml:"objects"`
	Lights    []lightRecord   `yaml:"lights,omitempty"`
	EgoStatus egoStatusRecord `yaml:"ego_status"`
}

type lightInfoRecord struct {
	ID     int32       `yaml:"id"`
	Center pointRecord `yaml:"center"`
	Size   pointRecord `yaml:"size"`
}

type scenarioFile struct {
	EgoID      int32             `yaml:"ego_id"`
	Routes     [][]pointRecord   `yaml:"routes"`
	LightInfos []lightInfoRecord `yaml:"light_infos,omitempty"`
	Frames     []frameRecord     `yaml:"frames"`
}

// 灯态字符串到枚举的映射
var lightStates = map[string]entity.LightState{
	"unknown": entity.LightStateUnknown,
	"red":     entity.LightStateRed,
	"yellow":  entity.LightStateYellow,
	"green":   entity.LightStateGreen,
	"off":     entity.LightStateOff,
}

// Frame 回放帧
// 功能：某一时刻感知侧与底盘侧的输入快照
type Frame struct {
	Objects       map[int32]entity.PerceivedObject    // 感知目标表
	LightStatuses map[int32]entity.TrafficLightStatus // 信号灯灯态表
	EgoStatus     entity.EgoStatus                    // 自车底盘状态
}

// Player 场景回放器
// 功能：从YAML录制文件回放路由与时间帧，可选对感知位置叠加高斯噪声
// 说明：帧按时间升序存放，回放按"最新不晚于当前时刻的帧"取值
type Player struct {
	egoID      int32
	routes     [][]geometry.Point
	lightInfos map[int32]entity.TrafficLightInfo
	frames     []frameRecord
	noiseStd   float64
	engine     *randengine.Engine
}

// NewPlayer 从配置加载场景回放器
// 参数：cfg-回放输入配置（场景文件路径、噪声参数）
// 返回：回放器实例；文件不可读、YAML非法或帧时间乱序时返回错误
func NewPlayer(cfg config.Input) (*Player, error) {
	data, err := os.ReadFile(cfg.Scenario)
	if err != nil {
		return nil, fmt.Errorf("scenario: read %s: %w", cfg.Scenario, err)
	}
	var file scenarioFile
	if err := yaml.UnmarshalStrict(data, &file); err != nil {
		return nil, fmt.Errorf("scenario: parse %s: %w", cfg.Scenario, err)
	}
	if len(file.Frames) == 0 {
		return nil, fmt.Errorf("scenario: %s has no frames", cfg.Scenario)
	}
	for i := 1; i < len(file.Frames); i++ {
		if file.Frames[i].T < file.Frames[i-1].T {
			return nil, fmt.Errorf("scenario: frame %d out of order (t=%.3f after %.3f)",
				i, file.Frames[i].T, file.Frames[i-1].T)
		}
	}
	for _, frame := range file.Frames {
		for _, light := range frame.Lights {
			if _, ok := lightStates[light.State]; !ok {
				return nil, fmt.Errorf("scenario: unknown light state %q", light.State)
			}
		}
	}

	p := &Player{
		egoID: file.EgoID,
		routes: lo.Map(file.Routes, func(route []pointRecord, _ int) []geometry.Point {
			return lo.Map(route, func(r pointRecord, _ int) geometry.Point {
				return geometry.Point{X: r.X, Y: r.Y, Z: r.Z}
			})
		}),
		lightInfos: make(map[int32]entity.TrafficLightInfo),
		frames:     file.Frames,
		noiseStd:   cfg.NoiseStd,
	}
	for _, info := range file.LightInfos {
		p.lightInfos[info.ID] = entity.TrafficLightInfo{
			ID:                  info.ID,
			TriggerVolumeCenter: geometry.Point{X: info.Center.X, Y: info.Center.Y, Z: info.Center.Z},
			TriggerVolumeSize:   geometry.Point{X: info.Size.X, Y: info.Size.Y, Z: info.Size.Z},
		}
	}
	if cfg.NoiseStd > 0 {
		p.engine = randengine.New(cfg.Seed)
	}
	return p, nil
}

// EgoID 自车目标ID
func (p *Player) EgoID() int32 {
	return p.egoID
}

// Routes 候选路由折线
func (p *Player) Routes() [][]geometry.Point {
	return p.routes
}

// LightInfos 信号灯静态信息表
func (p *Player) LightInfos() map[int32]entity.TrafficLightInfo {
	return p.lightInfos
}

// FrameAt 取时刻t生效的回放帧
// 功能：返回最新的、时间不晚于t的帧；配置了噪声时对目标位置叠加高斯扰动
// 返回：帧快照与是否存在（t早于首帧时返回false）
// 说明：噪声按目标在文件中的出现顺序施加，保证同一种子下回放可复现
func (p *Player) FrameAt(t float64) (Frame, bool) {
	i := sort.Search(len(p.frames), func(i int) bool {
		return p.frames[i].T > t
	})
	if i == 0 {
		return Frame{}, false
	}
	record := p.frames[i-1]

	frame := Frame{
		Objects:       make(map[int32]entity.PerceivedObject, len(record.Objects)),
		LightStatuses: make(map[int32]entity.TrafficLightStatus, len(record.Lights)),
		EgoStatus: entity.EgoStatus{
			V:          record.EgoStatus.V,
			A:          record.EgoStatus.A,
			SteerAngle: record.EgoStatus.SteerAngle,
		},
	}
	for _, r := range record.Objects {
		pos := geometry.Point{X: r.X, Y: r.Y, Z: r.Z}
		if p.engine != nil {
			pos.X += p.engine.Gaussian(0, p.noiseStd)
			pos.Y += p.engine.Gaussian(0, p.noiseStd)
		}
		frame.Objects[r.ID] = entity.PerceivedObject{
			ID:       r.ID,
			Position: pos,
			Theta:    r.Theta,
			V:        r.V,
			A:        r.A,
			Length:   r.Length,
			Width:    r.Width,
		}
	}
	for _, r := range record.Lights {
		frame.LightStatuses[r.ID] = entity.TrafficLightStatus{
			ID:    r.ID,
			State: lightStates[r.State],
		}
	}
	return frame, true
}

// Finished 判断回放是否结束
// 返回：t越过末帧时间时为true
func (p *Player) Finished(t float64) bool {
	return t > p.frames[len(p.frames)-1].T
}
