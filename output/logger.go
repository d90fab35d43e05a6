package output

import "github.com/sirupsen/logrus"

// log 轨迹落库模块的日志记录器
var log = logrus.WithField("module", "output")
