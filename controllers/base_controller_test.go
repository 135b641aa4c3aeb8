package controllers

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"procurement-backend/models"
	apimodels "procurement-backend/models/api"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestErrorStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"валидация", models.NewValidationError("title", "обязательное поле"), fiber.StatusBadRequest},
		{"валидация с обёрткой", errors.Wrap(models.NewValidationError("cost", "больше нуля"), "шаг 4"), fiber.StatusBadRequest},
		{"нет прав", models.Forbidden("заявку может изменить только автор"), fiber.StatusForbidden},
		{"не найдено", models.NotFound("заявка не найдена"), fiber.StatusNotFound},
		{"переход", models.InvalidTransition(models.PRStatusApproved, models.PRActionApprove), fiber.StatusConflict},
		{"внутренняя", errors.New("connection refused"), fiber.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ErrorStatus(tc.err))
		})
	}
}

type testController struct {
	BaseAPIController
	err error
}

func (c *testController) handle(ctx *fiber.Ctx) error {
	if _, err := c.GetID(ctx); err != nil {
		return c.SendError(ctx, log.NewEntry(log.StandardLogger()), err, "ошибка запроса")
	}
	return c.SendError(ctx, c.GetLogger(ctx), c.err, "ошибка обработки заявки")
}

func sendTestError(t *testing.T, err error) (int, apimodels.Response) {
	app := fiber.New()
	ctrl := &testController{err: err}
	app.Get("/request/:id", ctrl.handle)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/request/pr-1", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	result := apimodels.Response{}
	require.NoError(t, json.Unmarshal(body, &result))
	return resp.StatusCode, result
}

func TestSendError(t *testing.T) {
	t.Run("ошибка пользователя отдаётся как есть", func(t *testing.T) {
		status, resp := sendTestError(t, models.NewValidationError("title", "обязательное поле"))
		require.Equal(t, fiber.StatusBadRequest, status)
		require.Equal(t, "fail", resp.Status)
		require.Equal(t, "title: обязательное поле", resp.Message)
	})
	t.Run("конфликт перехода", func(t *testing.T) {
		status, resp := sendTestError(t, models.InvalidTransition(models.PRStatusRejected, models.PRActionWithdraw))
		require.Equal(t, fiber.StatusConflict, status)
		require.Contains(t, resp.Message, models.ErrInvalidTransition.Error())
	})
	t.Run("внутренняя ошибка скрывается", func(t *testing.T) {
		status, resp := sendTestError(t, errors.New("pq: password authentication failed"))
		require.Equal(t, fiber.StatusInternalServerError, status)
		require.Equal(t, "ошибка обработки заявки", resp.Message)
	})
}
