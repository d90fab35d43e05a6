package entity

import (
	"github.com/tsinghua-fib-lab/motion-planner-go/clock"
	"github.com/tsinghua-fib-lab/motion-planner-go/utils/config"
)

type ITaskContext interface {
	Clock() *clock.Clock
	RuntimeConfig() *config.RuntimeConfig
}
