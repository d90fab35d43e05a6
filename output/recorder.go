package output

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/motion-planner-go/entity"
	"github.com/tsinghua-fib-lab/motion-planner-go/utils/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// pointDoc 轨迹点的落库结构
type pointDoc struct {
	X            float64 `bson:"x"`
	Y            float64 `bson:"y"`
	Theta        float64 `bson:"theta"`
	Kappa        float64 `bson:"kappa"`
	S            float64 `bson:"s"`
	V            float64 `bson:"v"`
	A            float64 `bson:"a"`
	RelativeTime float64 `bson:"relative_time"`
}

// trajectoryDoc 单周期发布轨迹的落库结构（一周期一条文档）
type trajectoryDoc struct {
	Stamp  float64    `bson:"stamp"`  // 生成时刻（规划时钟，秒）
	Status string     `bson:"status"` // 轨迹状态标签
	Points []pointDoc `bson:"points"` // 轨迹点序列
}

// newTrajectoryDoc 由发布轨迹构造落库文档
func newTrajectoryDoc(trajectory *entity.Trajectory) trajectoryDoc {
	return trajectoryDoc{
		Stamp:  trajectory.Stamp,
		Status: trajectory.Status.String(),
		Points: lo.Map(trajectory.Points, func(p entity.TrajectoryPoint, _ int) pointDoc {
			return pointDoc{
				X:            p.X,
				Y:            p.Y,
				Theta:        p.Theta,
				Kappa:        p.Kappa,
				S:            p.S,
				V:            p.V,
				A:            p.A,
				RelativeTime: p.RelativeTime,
			}
		}),
	}
}

// Recorder 轨迹落库器
// 功能：把每周期发布的轨迹写入MongoDB，便于离线检查规划结果
type Recorder struct {
	client *mongo.Client
	col    *mongo.Collection
}

// NewRecorder 创建轨迹落库器并建立数据库连接
// 参数：ctx-连接超时控制，cfg-落库配置
// 返回：落库器实例，连接失败时返回错误
func NewRecorder(ctx context.Context, cfg config.Output) (*Recorder, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("output: connect %s: %w", cfg.URI, err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("output: ping %s: %w", cfg.URI, err)
	}
	return &Recorder{
		client: client,
		col:    client.Database(cfg.DB).Collection(cfg.Col),
	}, nil
}

// Write 写入一条发布轨迹
// 说明：落库失败只记日志不中断规划循环
func (r *Recorder) Write(ctx context.Context, trajectory *entity.Trajectory) {
	if _, err := r.col.InsertOne(ctx, newTrajectoryDoc(trajectory)); err != nil {
		log.Errorf("insert trajectory at %.3f: %v", trajectory.Stamp, err)
	}
}

// Close 断开数据库连接
func (r *Recorder) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
