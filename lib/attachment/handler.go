package attachmenthandler

import (
	"context"
	"fmt"
	"path/filepath"
	"procurement-backend/config"
	"procurement-backend/db"
	attachmentstore "procurement-backend/lib/attachment/store"
	purchasereqhandler "procurement-backend/lib/purchase-req"
	"procurement-backend/models"
	purchaseapimodels "procurement-backend/models/api/purchase"
	dbmodels "procurement-backend/models/db"
	s3client "procurement-backend/s3"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// File загружаемый файл
type File struct {
	Name string
	Body []byte
}

type Provider interface {
	Save(ctx context.Context, actor models.Actor, requestID string, file File) (ref purchaseapimodels.AttachmentView, err error)
	Get(ctx context.Context, actor models.Actor, requestID, attachmentID string) (ref purchaseapimodels.AttachmentView, body []byte, err error)
}

var Instance Provider

func NewHandler() {
	Instance = impl{
		store:         attachmentstore.NewInstance(db.DB),
		requests:      purchasereqhandler.Instance,
		storage:       s3client.Instance,
		maxSize:       config.Conf.App.MaxAttachmentSize,
		newObjectName: uuid.NewString,
	}
}

type impl struct {
	store         attachmentstore.Provider
	requests      purchasereqhandler.Provider
	storage       s3client.Provider
	maxSize       int64
	newObjectName func() string
}

func (i impl) Save(ctx context.Context, actor models.Actor, requestID string, file File) (ref purchaseapimodels.AttachmentView, err error) {
	logger := log.
		WithField("request_id", requestID).
		WithField("user_id", actor.ID)
	// права и статус заявки проверяем до загрузки файла в хранилище
	if err = i.requests.CheckAttach(actor, requestID); err != nil {
		return purchaseapimodels.AttachmentView{}, err
	}
	name := cleanFileName(file.Name)
	if name == "" {
		return purchaseapimodels.AttachmentView{}, models.NewValidationError("file", "не указано имя файла")
	}
	if len(file.Body) == 0 {
		return purchaseapimodels.AttachmentView{}, models.NewValidationError("file", "файл пустой")
	}
	if i.maxSize > 0 && int64(len(file.Body)) > i.maxSize {
		return purchaseapimodels.AttachmentView{}, models.NewValidationError("file", "размер файла превышает допустимый: %d байт", i.maxSize)
	}
	if i.storage == nil {
		return purchaseapimodels.AttachmentView{}, errors.New("хранилище файлов не настроено")
	}
	contentType := mimetype.Detect(file.Body).String()
	objectKey := fmt.Sprintf("requests/%s/%s-%s", requestID, i.newObjectName(), name)
	if err = i.storage.PutObject(ctx, objectKey, file.Body, contentType); err != nil {
		logger.WithError(err).Error("ошибка загрузки вложения")
		return purchaseapimodels.AttachmentView{}, err
	}
	rec := dbmodels.Attachment{
		Name:        name,
		Size:        int64(len(file.Body)),
		ContentType: contentType,
		ObjectKey:   objectKey,
	}
	id, err := i.requests.Attach(ctx, actor, requestID, rec)
	if err != nil {
		// заявка изменилась во время загрузки
		if rmErr := i.storage.RemoveObject(ctx, objectKey); rmErr != nil {
			logger.WithError(rmErr).Warn("не удалось удалить загруженный файл")
		}
		return purchaseapimodels.AttachmentView{}, err
	}
	saved, err := i.store.GetByID(requestID, id)
	if err != nil {
		return purchaseapimodels.AttachmentView{}, err
	}
	if saved == nil {
		return purchaseapimodels.AttachmentView{}, models.NotFound("вложение не найдено")
	}
	logger.
		WithField("attachment_id", id).
		Info("добавлено вложение к заявке")
	return purchaseapimodels.AttachmentConvert(*saved), nil
}

func (i impl) Get(ctx context.Context, actor models.Actor, requestID, attachmentID string) (ref purchaseapimodels.AttachmentView, body []byte, err error) {
	// проверка доступа к заявке
	if _, err = i.requests.GetByID(actor, requestID); err != nil {
		return purchaseapimodels.AttachmentView{}, nil, err
	}
	rec, err := i.store.GetByID(requestID, attachmentID)
	if err != nil {
		log.
			WithField("attachment_id", attachmentID).
			WithError(err).
			Error("ошибка получения вложения")
		return purchaseapimodels.AttachmentView{}, nil, err
	}
	if rec == nil {
		return purchaseapimodels.AttachmentView{}, nil, models.NotFound("вложение не найдено")
	}
	if i.storage == nil {
		return purchaseapimodels.AttachmentView{}, nil, errors.New("хранилище файлов не настроено")
	}
	body, err = i.storage.GetObject(ctx, rec.ObjectKey)
	if err != nil {
		return purchaseapimodels.AttachmentView{}, nil, err
	}
	return purchaseapimodels.AttachmentConvert(*rec), body, nil
}

func cleanFileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if name == "." || name == "/" {
		return ""
	}
	return name
}
