package task

import "github.com/sirupsen/logrus"

// log 任务编排模块的日志记录器
var log = logrus.WithField("module", "task")
