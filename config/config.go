package config

import (
	"github.com/gotify/configor"
)

var Conf *Configuration

type Configuration struct {
	App struct {
		ListenAddr        string `default:"" env:"APP_HOST"`
		Port              int    `default:"8080"  env:"APP_PORT"`
		MaxAttachmentSize int64  `default:"20971520" env:"APP_MAX_ATTACHMENT_SIZE"`
		ExportLimit       int    `default:"5000" env:"APP_EXPORT_LIMIT"`
		ErrNotifyAddr     string `default:"" env:"APP_ERR_NOTIFY_ADDR"`
		FontDir           string `default:"static/font/" env:"APP_FONT_DIR"`
		LogLevel          string `default:"info" env:"APP_LOG_LEVEL"`
	}
	Database struct {
		Host           string `default:"127.0.0.1" env:"DB_HOST"`
		Port           string `default:"5432" env:"DB_PORT"`
		Name           string `default:"procurement" env:"DB_NAME"`
		User           string `default:"postgres" env:"DB_USER"`
		Password       string `default:"postgres" env:"DB_PASSWORD"`
		MigrateOnStart *bool  `default:"true" env:"DB_MIGRATE_ON_START"`
		DebugMode      *bool  `default:"false" env:"DB_DEBUG_MODE"`
	}
	Auth struct {
		JWTSecret      string `default:"secret" env:"AUTH_JWT_SECRET"`
		JWTExpireInSec int64  `default:"36000" env:"AUTH_JWT_EXPIRE_IN_SEC"`
	}
	S3 struct {
		Endpoint        string `default:"127.0.0.1:9000" env:"S3_ENDPOINT"`
		AccessKeyID     string `default:"minioadmin" env:"S3_ACCESS_KEY_ID"`
		SecretAccessKey string `default:"minioadmin" env:"S3_SECRET_ACCESS_KEY"`
		UseSSL          *bool  `default:"false" env:"S3_USE_SSL"`
		BucketName      string `default:"procurement" env:"S3_BUCKET_NAME"`
	}
	Smtp struct {
		User       string `default:"" env:"SMTP_USER"`
		Password   string `default:"" env:"SMTP_PASSWORD"`
		Host       string `default:"" env:"SMTP_HOST"`
		Port       string `default:"" env:"SMTP_PORT"`
		TLSEnabled *bool  `default:"true" env:"SMTP_TLS_ENABLED"`
		From       string `default:"" env:"SMTP_FROM"`
	}
	Notify struct {
		EmailEnabled      *bool  `default:"true" env:"NOTIFY_EMAIL_ENABLED"`
		FrontendURL       string `default:"http://localhost:8000" env:"NOTIFY_FRONTEND_URL"`
		PushRetentionDays int    `default:"30" env:"NOTIFY_PUSH_RETENTION_DAYS"` // срок хранения недоставленных уведомлений, дней
	}
}

func configFiles() []string {
	return []string{"config.yml"}
}

func InitConfig() {
	if Conf != nil {
		return
	}
	conf := new(Configuration)
	err := configor.New(&configor.Config{}).Load(conf, configFiles()...)
	if err != nil {
		panic(err)
	}
	Conf = conf
}
