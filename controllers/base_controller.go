package controllers

import (
	"procurement-backend/fiberlog"
	"procurement-backend/middleware"
	"procurement-backend/models"
	apimodels "procurement-backend/models/api"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type BaseAPIController struct{}

func (c *BaseAPIController) BodyParser(ctx *fiber.Ctx, out interface{}) error {
	if err := ctx.BodyParser(out); err != nil {
		log.WithError(err).Error("ошибка распознавания запроса")
		return errors.New("не удалось получить данные из запроса")
	}
	return nil
}

func (c *BaseAPIController) GetActor(ctx *fiber.Ctx) models.Actor {
	return middleware.GetActor(ctx)
}

func (c *BaseAPIController) GetID(ctx *fiber.Ctx) (string, error) {
	return c.GetParam(ctx, "id")
}

func (c *BaseAPIController) GetParam(ctx *fiber.Ctx, name string) (string, error) {
	value := strings.TrimSpace(ctx.Params(name))
	if value == "" {
		return "", errors.Errorf("не указан параметр %v", name)
	}
	return value, nil
}

func (c *BaseAPIController) GetLogger(ctx *fiber.Ctx) *log.Entry {
	entry := log.
		WithField("method", ctx.Method()).
		WithField("path", ctx.Path())
	if requestID := ctx.GetRespHeader(fiber.HeaderXRequestID); requestID != "" {
		entry = entry.WithField(fiberlog.RequestID, requestID)
	}
	if userID := middleware.GetUserID(ctx); userID != "" {
		entry = entry.WithField("user_id", userID)
	}
	return entry
}

// SendError ответ по типу ошибки. Текст внутренних ошибок клиенту не отдаём, только message
func (c *BaseAPIController) SendError(ctx *fiber.Ctx, logger *log.Entry, err error, message string) error {
	ctx.Locals(fiberlog.ErrorLocal, err)
	status := ErrorStatus(err)
	if status == fiber.StatusInternalServerError {
		logger.WithError(err).Error(message)
		return ctx.Status(status).JSON(apimodels.NewError(message))
	}
	logger.WithError(err).Info(message)
	return ctx.Status(status).JSON(apimodels.NewError(err.Error()))
}

func ErrorStatus(err error) int {
	switch {
	case models.IsValidationError(err):
		return fiber.StatusBadRequest
	case errors.Is(err, models.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, models.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, models.ErrInvalidTransition):
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}
