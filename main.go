package main

import (
	"context"
	"encoding/base64"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	easy "git.fiblab.net/utils/logrus-easy-formatter"
	"github.com/sirupsen/logrus"
	"github.com/tsinghua-fib-lab/motion-planner-go/entity"
	"github.com/tsinghua-fib-lab/motion-planner-go/output"
	"github.com/tsinghua-fib-lab/motion-planner-go/task"
	"github.com/tsinghua-fib-lab/motion-planner-go/utils/config"
	"github.com/tsinghua-fib-lab/motion-planner-go/utils/scenario"
	"gopkg.in/yaml.v2"
)

var (
	// 配置文件路径
	configPath = flag.String("config", "", "config file path")
	// 配置文件Base64编码后的数据
	configData = flag.String("config-data", "", "config file base64 encoded data")

	// log
	logLevels = map[string]logrus.Level{
		"trace":    logrus.TraceLevel,
		"debug":    logrus.DebugLevel,
		"info":     logrus.InfoLevel,
		"warn":     logrus.WarnLevel,
		"error":    logrus.ErrorLevel,
		"critical": logrus.FatalLevel,
		"off":      logrus.PanicLevel,
	}
	logLevel = flag.String("log.level", "info", "日志级别（可选项：trace debug info warn error critical off）")

	log = logrus.WithField("module", "motion-planner")
)

func main() {
	flag.Parse()
	logrus.SetFormatter(&easy.Formatter{
		TimestampFormat: "2006-01-02 15:04:05.0000",
		LogFormat:       "[%module%] [%time%] [%lvl%] %msg%\n",
	})
	// log: 运行时才修改
	if level, ok := logLevels[*logLevel]; ok {
		logrus.SetLevel(level)
	} else {
		log.Panicf("log.level must be one of %v", logLevels)
	}
	// 获取配置
	var c config.Config
	var file []byte
	var err error
	if *configPath != "" {
		file, err = os.ReadFile(*configPath)
		if err != nil {
			log.Panicf("config file load err: %v", err)
		}
	} else if *configData != "" {
		file, err = base64.StdEncoding.DecodeString(*configData)
		if err != nil {
			log.Panicf("config data load err: %v", err)
		}
	} else {
		log.Panic("config file or config data must be specified")
	}
	if err := yaml.UnmarshalStrict(file, &c); err != nil {
		log.Panicf("config file load err: %v", err)
	}
	if c.Planner.LoopRate <= 0 || c.Planner.DeltaT <= 0 || c.Planner.MaxLookaheadTime <= 0 {
		log.Panicf("loop_rate, delta_t and max_lookahead_time must be positive: %+v", c.Planner)
	}
	log.Infof("%+v", c)

	t, err := task.NewContext(config.NewRuntimeConfig(c))
	if err != nil {
		log.Panicf("task init err: %v", err)
	}

	// 可选：轨迹落库
	if c.Output.URI != "" {
		connectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		recorder, err := output.NewRecorder(connectCtx, c.Output)
		cancel()
		if err != nil {
			log.Panicf("recorder init err: %v", err)
		}
		defer func() {
			if err := recorder.Close(context.Background()); err != nil {
				log.Errorf("recorder close err: %v", err)
			}
		}()
		t.RegisterTrajectoryHandler(func(trajectory *entity.Trajectory) {
			recorder.Write(context.Background(), trajectory)
		})
	}

	// 可选：场景回放馈送
	var feed func(t float64) bool
	if c.Input.Scenario != "" {
		player, err := scenario.NewPlayer(c.Input)
		if err != nil {
			log.Panicf("scenario load err: %v", err)
		}
		t.UpdateEgoID(player.EgoID())
		t.UpdateLightInfos(player.LightInfos())
		t.UpdateRoutes(player.Routes())
		feed = func(now float64) bool {
			if player.Finished(now) {
				return false
			}
			if frame, ok := player.FrameAt(now); ok {
				t.UpdateObjects(frame.Objects)
				t.UpdateEgoStatus(frame.EgoStatus)
				t.UpdateLightStatuses(frame.LightStatuses)
			}
			return true
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Infof("receive %v, closing", sig)
		t.Close()
	}()

	t.Run(feed)
}
