package initializers

import (
	"procurement-backend/fiberlog"

	log "github.com/sirupsen/logrus"
)

var apiLogger = log.New()

func jsonFormatter() *log.JSONFormatter {
	return &log.JSONFormatter{
		FieldMap: log.FieldMap{
			log.FieldKeyTime: "@timestamp",
			log.FieldKeyMsg:  "message",
		},
	}
}

// InitLogger до загрузки конфигурации, уровень выставляется позже в SetLogLevel
func InitLogger() *fiberlog.Config {
	log.SetFormatter(jsonFormatter())
	log.SetLevel(log.InfoLevel)
	apiLogger.SetFormatter(jsonFormatter())
	apiLogger.SetLevel(log.InfoLevel)
	return &fiberlog.Config{
		Logger: apiLogger,
		Tags: []string{
			fiberlog.TagBody,
			fiberlog.TagResBody,
			fiberlog.TagMethod,
			fiberlog.TagPath,
			fiberlog.TagStatus,
			fiberlog.TagLatency,
			fiberlog.TagUserID,
			fiberlog.TagError,
			fiberlog.RequestID,
		},
		// websocket живёт всё время подключения
		SkipPaths: []string{"/api/v1/ws"},
	}
}

func SetLogLevel(value string) {
	level, err := log.ParseLevel(value)
	if err != nil {
		log.WithError(err).Warnf("неизвестный уровень логирования %v, используется info", value)
		return
	}
	log.SetLevel(level)
	apiLogger.SetLevel(level)
}
