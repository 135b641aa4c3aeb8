package fiberlog

import "github.com/sirupsen/logrus"

// Config настройки логирования запросов api
type Config struct {
	Logger    *logrus.Logger // nil - стандартный логгер logrus
	Tags      []string       // поля записи лога
	SkipPaths []string       // префиксы путей, запросы по которым не логируются
}

var ConfigDefault = Config{
	Tags: []string{
		TagStatus,
		TagLatency,
		TagMethod,
		TagPath,
	},
}
