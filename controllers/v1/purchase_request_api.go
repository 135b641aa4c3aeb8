package apiv1

import (
	"fmt"
	"io"
	"net/url"
	"procurement-backend/config"
	"procurement-backend/controllers"
	attachmenthandler "procurement-backend/lib/attachment"
	pdfexport "procurement-backend/lib/export/pdf"
	xlsexport "procurement-backend/lib/export/xls"
	purchasereqhandler "procurement-backend/lib/purchase-req"
	requestwizard "procurement-backend/lib/request-wizard"
	"procurement-backend/lib/utils/lock"
	"procurement-backend/middleware"
	apimodels "procurement-backend/models/api"
	purchaseapimodels "procurement-backend/models/api/purchase"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// запас на служебные части multipart запроса
const multipartOverhead = 1024 * 1024

type purchaseReqApiController struct {
	controllers.BaseAPIController
}

func InitPurchaseRequestApiRouters(app *fiber.App) {
	controller := purchaseReqApiController{}
	app.Route("purchase_request", func(router fiber.Router) {
		router.Post("list", controller.list)
		router.Post("", controller.create)
		router.Post("draft/validate", controller.validateDraft)
		router.Post("export", controller.export)
		router.Route(":id", func(idRoute fiber.Router) {
			idRoute.Get("", controller.get)
			idRoute.Put("", controller.update)
			idRoute.Get("draft", controller.draft)
			idRoute.Get("history", controller.history)
			idRoute.Get("pdf", controller.pdf)
			idRoute.Put("approve", controller.approve)             // согласовать
			idRoute.Put("reject", controller.reject)               // отклонить
			idRoute.Put("clarification", controller.clarification) // запросить уточнение
			idRoute.Put("reply", controller.reply)                 // ответить на уточнение
			idRoute.Put("withdraw", controller.withdraw)           // отозвать
			idRoute.Post("attachments", middleware.WithBodyLimit(config.Conf.App.MaxAttachmentSize+multipartOverhead), controller.uploadAttachment)
			idRoute.Get("attachments/:attachmentId", controller.getAttachment)
		})
	})
}

// @Summary Список
// @Tags Заявка на закупку
// @Description Список заявок. Согласующий видит все заявки, остальные только свои
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	 purchaseapimodels.PrFilter	true	"request body"
// @Success 200 {object} apimodels.ScrollerResponse{data=[]purchaseapimodels.PurchaseRequestView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/purchase_request/list [post]
func (c *purchaseReqApiController) list(ctx *fiber.Ctx) error {
	var payload purchaseapimodels.PrFilter
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	list, rowCount, err := purchasereqhandler.Instance.List(c.GetActor(ctx), payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения списка заявок")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewScrollerResponse(list, rowCount))
}

// @Summary Подача заявки
// @Tags Заявка на закупку
// @Description Подача заявки из мастера, все шаги проверяются повторно
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	 purchaseapimodels.PurchaseRequestData	true	"request body"
// @Success 200 {object} apimodels.Response{data=string}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/purchase_request [post]
func (c *purchaseReqApiController) create(ctx *fiber.Ctx) error {
	var payload purchaseapimodels.PurchaseRequestData
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	id, err := requestwizard.Instance.Submit(ctx.UserContext(), c.GetActor(ctx), payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка создания заявки")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(id))
}

// @Summary Проверка шага мастера
// @Tags Заявка на закупку
// @Description Проверка шага мастера (1-5). Для шага проверки (5) возвращается сводка
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	step				query		int		true	"номер шага"
// @Param	body body	 purchaseapimodels.PurchaseRequestData	true	"request body"
// @Success 200 {object} apimodels.Response{data=purchaseapimodels.DraftSummary}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/purchase_request/draft/validate [post]
func (c *purchaseReqApiController) validateDraft(ctx *fiber.Ctx) error {
	var payload purchaseapimodels.PurchaseRequestData
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	step := requestwizard.Step(ctx.QueryInt("step", 0))
	if step == requestwizard.StepReview {
		summary, err := requestwizard.Instance.Summary(payload)
		if err != nil {
			return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка проверки заявки")
		}
		return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(summary))
	}
	if err := requestwizard.Instance.ValidateStep(payload, step); err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка проверки шага заявки")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(nil))
}

// @Summary Выгрузить в Excel
// @Tags Заявка на закупку
// @Description Выгрузка списка заявок по фильтру
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	 purchaseapimodels.PrFilter	true	"request body"
// @Success 200
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/purchase_request/export [post]
func (c *purchaseReqApiController) export(ctx *fiber.Ctx) error {
	var payload purchaseapimodels.PrFilter
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	list, err := purchasereqhandler.Instance.ListForExport(c.GetActor(ctx), payload, config.Conf.App.ExportLimit)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения заявок для выгрузки в Excel")
	}
	holder := uuid.NewString()
	if !lock.Export.Acquire(ctx.UserContext(), holder) {
		return ctx.Status(fiber.StatusServiceUnavailable).JSON(apimodels.NewError("Выгрузка временно недоступна"))
	}
	data, err := xlsexport.Instance.ExportRequestList(list)
	lock.Export.Release(holder)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка формирования файла Excel")
	}
	fileName := fmt.Sprintf("purchase-requests-%v.xlsx", time.Now().Format("20060102-150405"))
	ctx.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set(fiber.HeaderContentDisposition, `attachment; filename="`+fileName+`"`)
	return ctx.SendStream(data)
}

// @Summary Получение по ИД
// @Tags Заявка на закупку
// @Description Получение по ИД
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "rec ID"
// @Success 200 {object} apimodels.Response{data=purchaseapimodels.PurchaseRequestView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/purchase_request/{id} [get]
func (c *purchaseReqApiController) get(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	resp, err := purchasereqhandler.Instance.GetByID(c.GetActor(ctx), id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения заявки")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary Редактирование
// @Tags Заявка на закупку
// @Description Редактирование заявки из мастера, только автор и только в статусе Pending
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	 purchaseapimodels.PurchaseRequestData	true	"request body"
// @Param   id          		path    string  				    	true         "rec ID"
// @Success 200 {object} apimodels.Response{data=purchaseapimodels.PurchaseRequestView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 409 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/purchase_request/{id} [put]
func (c *purchaseReqApiController) update(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	var payload purchaseapimodels.PurchaseRequestData
	if err = c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	resp, err := requestwizard.Instance.SubmitEdit(ctx.UserContext(), c.GetActor(ctx), id, payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка обновления заявки")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary Черновик для редактирования
// @Tags Заявка на закупку
// @Description Данные заявки для мастера в режиме редактирования
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "rec ID"
// @Success 200 {object} apimodels.Response{data=purchaseapimodels.PurchaseRequestData}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 409 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/purchase_request/{id}/draft [get]
func (c *purchaseReqApiController) draft(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	resp, err := requestwizard.Instance.EditDraft(c.GetActor(ctx), id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения черновика заявки")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary История
// @Tags Заявка на закупку
// @Description История изменений статуса заявки
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "rec ID"
// @Success 200 {object} apimodels.Response{data=[]purchaseapimodels.HistoryView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/purchase_request/{id}/history [get]
func (c *purchaseReqApiController) history(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	resp, err := purchasereqhandler.Instance.History(c.GetActor(ctx), id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения истории заявки")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary Печатная форма
// @Tags Заявка на закупку
// @Description Сводка по заявке в PDF
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "rec ID"
// @Success 200
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/purchase_request/{id}/pdf [get]
func (c *purchaseReqApiController) pdf(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	actor := c.GetActor(ctx)
	item, err := purchasereqhandler.Instance.GetByID(actor, id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения заявки")
	}
	history, err := purchasereqhandler.Instance.History(actor, id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения истории заявки")
	}
	holder := uuid.NewString()
	if !lock.Export.Acquire(ctx.UserContext(), holder) {
		return ctx.Status(fiber.StatusServiceUnavailable).JSON(apimodels.NewError("Выгрузка временно недоступна"))
	}
	body, err := pdfexport.Instance.RequestSummary(item, history)
	lock.Export.Release(holder)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка формирования PDF")
	}
	ctx.Set(fiber.HeaderContentType, "application/pdf")
	ctx.Set(fiber.HeaderContentDisposition, `inline; filename="purchase-request-`+id+`.pdf"`)
	return ctx.Send(body)
}

// @Summary Согласовать
// @Tags Заявка на закупку
// @Description Согласовать заявку (Pending, In Review -> Approved)
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "rec ID"
// @Success 200 {object} apimodels.Response{data=purchaseapimodels.PurchaseRequestView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 409 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/purchase_request/{id}/approve [put]
func (c *purchaseReqApiController) approve(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	resp, err := purchasereqhandler.Instance.Approve(ctx.UserContext(), c.GetActor(ctx), id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка согласования заявки")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary Отклонить
// @Tags Заявка на закупку
// @Description Отклонить заявку (Pending, In Review -> Rejected), причина необязательна
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	 purchaseapimodels.RejectData	false	"request body"
// @Param   id          		path    string  				    	true         "rec ID"
// @Success 200 {object} apimodels.Response{data=purchaseapimodels.PurchaseRequestView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 409 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/purchase_request/{id}/reject [put]
func (c *purchaseReqApiController) reject(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	var payload purchaseapimodels.RejectData
	if len(ctx.Body()) != 0 {
		if err = c.BodyParser(ctx, &payload); err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
		}
	}
	resp, err := purchasereqhandler.Instance.Reject(ctx.UserContext(), c.GetActor(ctx), id, payload.Reason)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка отклонения заявки")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary Запросить уточнение
// @Tags Заявка на закупку
// @Description Запросить уточнение у автора (Pending, In Review -> Clarification Needed)
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	 purchaseapimodels.ClarificationData	true	"request body"
// @Param   id          		path    string  				    	true         "rec ID"
// @Success 200 {object} apimodels.Response{data=purchaseapimodels.PurchaseRequestView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 409 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/purchase_request/{id}/clarification [put]
func (c *purchaseReqApiController) clarification(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	var payload purchaseapimodels.ClarificationData
	if err = c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	resp, err := purchasereqhandler.Instance.RequestClarification(ctx.UserContext(), c.GetActor(ctx), id, payload.Notes)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка запроса уточнения")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary Ответить на уточнение
// @Tags Заявка на закупку
// @Description Ответ автора на запрос уточнения (Clarification Needed -> In Review)
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	 purchaseapimodels.ReplyData	true	"request body"
// @Param   id          		path    string  				    	true         "rec ID"
// @Success 200 {object} apimodels.Response{data=purchaseapimodels.PurchaseRequestView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 409 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/purchase_request/{id}/reply [put]
func (c *purchaseReqApiController) reply(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	var payload purchaseapimodels.ReplyData
	if err = c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	resp, err := purchasereqhandler.Instance.Reply(ctx.UserContext(), c.GetActor(ctx), id, payload.Reply)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка ответа на уточнение")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary Отозвать
// @Tags Заявка на закупку
// @Description Отзыв заявки автором (Pending, In Review, Clarification Needed -> Withdrawn)
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "rec ID"
// @Success 200 {object} apimodels.Response{data=purchaseapimodels.PurchaseRequestView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 409 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/purchase_request/{id}/withdraw [put]
func (c *purchaseReqApiController) withdraw(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	resp, err := purchasereqhandler.Instance.Withdraw(ctx.UserContext(), c.GetActor(ctx), id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка отзыва заявки")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary Загрузить вложение
// @Tags Заявка на закупку
// @Description Загрузить вложение, только автор и только в статусе Pending
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    	string  true    "rec ID"
// @Param   file				formData	file 	true 	"Файл"
// @Success 200 {object} apimodels.Response{data=purchaseapimodels.AttachmentView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 409 {object} apimodels.Response
// @Failure 413 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/purchase_request/{id}/attachments [post]
func (c *purchaseReqApiController) uploadAttachment(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	file, err := ctx.FormFile("file")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	buffer, err := file.Open()
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка при получении файла")
	}
	defer buffer.Close()
	fileBody, err := io.ReadAll(buffer)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка при загрузке файла")
	}
	resp, err := attachmenthandler.Instance.Save(ctx.UserContext(), c.GetActor(ctx), id, attachmenthandler.File{
		Name: file.Filename,
		Body: fileBody,
	})
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка сохранения вложения")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary Скачать вложение
// @Tags Заявка на закупку
// @Description Скачать вложение
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "rec ID"
// @Param   attachmentId   		path    string  				    	true         "attachment ID"
// @Success 200
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/purchase_request/{id}/attachments/{attachmentId} [get]
func (c *purchaseReqApiController) getAttachment(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	attachmentID, err := c.GetParam(ctx, "attachmentId")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	ref, body, err := attachmenthandler.Instance.Get(ctx.UserContext(), c.GetActor(ctx), id, attachmentID)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения вложения")
	}
	if ref.ContentType != "" {
		ctx.Set(fiber.HeaderContentType, ref.ContentType)
	}
	ctx.Set(fiber.HeaderContentDisposition, `attachment; filename*=UTF-8''`+url.PathEscape(ref.Name))
	return ctx.Send(body)
}
