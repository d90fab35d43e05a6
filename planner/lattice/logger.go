package lattice

import "github.com/sirupsen/logrus"

// log 采样优化器模块的日志记录器
var log = logrus.WithField("module", "lattice")
