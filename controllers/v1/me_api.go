package apiv1

import (
	"procurement-backend/controllers"
	"procurement-backend/lib/rbac"
	"procurement-backend/models"
	apimodels "procurement-backend/models/api"

	"github.com/gofiber/fiber/v2"
)

type MeView struct {
	models.Actor
	RoleName    string                                `json:"role_name"`
	Permissions map[models.Module][]models.Permission `json:"permissions"` // подсказки интерфейсу, права проверяются в операциях
}

type meApiController struct {
	controllers.BaseAPIController
}

func InitMeApiRouters(app *fiber.App) {
	controller := meApiController{}
	app.Get("me", controller.me)
}

// @Summary Текущий пользователь
// @Tags Пользователь
// @Description Данные пользователя из токена и доступные разделы
// @Param   Authorization		header		string	true	"Authorization token"
// @Success 200 {object} apimodels.Response{data=MeView}
// @Failure 401 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/me [get]
func (c *meApiController) me(ctx *fiber.Ctx) error {
	actor := c.GetActor(ctx)
	permissions := rbac.Instance.GetPermissions(actor.Role)
	if permissions == nil {
		permissions = map[models.Module][]models.Permission{}
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(MeView{
		Actor:       actor,
		RoleName:    actor.Role.ToHuman(),
		Permissions: permissions,
	}))
}
