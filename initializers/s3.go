package initializers

import (
	"context"
	s3client "procurement-backend/s3"

	log "github.com/sirupsen/logrus"
)

func InitS3(ctx context.Context) {
	client, err := s3client.NewClient()
	if err != nil {
		log.WithError(err).Error("Ошибка инициализации клиента S3")
		return
	}
	// проверка соединения
	if err = client.MakeBucket(ctx); err != nil {
		log.WithError(err).Error("S3 соединение не удалось, бакет вложений недоступен")
	}
	s3client.Instance = client
	log.Info("S3 клиент успешно инициализирован")
}
