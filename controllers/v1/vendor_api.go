package apiv1

import (
	"procurement-backend/controllers"
	vendorhandler "procurement-backend/lib/dicts/vendors"
	apimodels "procurement-backend/models/api"
	vendorapimodels "procurement-backend/models/api/vendor"

	"github.com/gofiber/fiber/v2"
)

type vendorApiController struct {
	controllers.BaseAPIController
}

func InitVendorApiRouters(app *fiber.App) {
	controller := vendorApiController{}
	app.Route("vendor", func(router fiber.Router) {
		router.Post("list", controller.list)
		router.Post("", controller.create)
		router.Get(":id", controller.get)
	})
}

// @Summary Список
// @Tags Поставщик
// @Description Справочник поставщиков
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	 vendorapimodels.VendorFilter	true	"request body"
// @Success 200 {object} apimodels.ScrollerResponse{data=[]vendorapimodels.VendorView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/vendor/list [post]
func (c *vendorApiController) list(ctx *fiber.Ctx) error {
	var payload vendorapimodels.VendorFilter
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err := payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	list, rowCount, err := vendorhandler.Instance.List(payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения списка поставщиков")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewScrollerResponse(list, rowCount))
}

// @Summary Создание
// @Tags Поставщик
// @Description Добавление поставщика в справочник, только согласующий
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	 vendorapimodels.VendorData	true	"request body"
// @Success 200 {object} apimodels.Response{data=string}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/vendor [post]
func (c *vendorApiController) create(ctx *fiber.Ctx) error {
	var payload vendorapimodels.VendorData
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	id, err := vendorhandler.Instance.Create(c.GetActor(ctx), payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка создания поставщика")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(id))
}

// @Summary Получение по ИД
// @Tags Поставщик
// @Description Получение по ИД
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "rec ID"
// @Success 200 {object} apimodels.Response{data=vendorapimodels.VendorView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/vendor/{id} [get]
func (c *vendorApiController) get(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	resp, err := vendorhandler.Instance.GetByID(id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения поставщика")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}
