package ws

import (
	wsclient "procurement-backend/lib/ws/client"
	connectionhub "procurement-backend/lib/ws/hub/connection-hub"
	"procurement-backend/middleware"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

func InitWs(app *fiber.App) {
	app.Use("", func(ctx *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(ctx) {
			return fiber.ErrUpgradeRequired
		}
		ctx.Locals("userID", middleware.GetUserID(ctx))
		return ctx.Next()
	})
	app.Get("/", websocket.New(notificationHandler))
}

// @Summary Уведомления по заявкам
// @Tags Websocket
// @Description Уведомления о смене статуса заявок
// @Param   Authorization		header		string		true		"Authorization token"
// @Success 200 {object} wsmodels.ServerMessage
// @Failure 400
// @Failure 403
// @Failure 500
// @Param   token				query		string		false		"токен, если заголовок передать нельзя"
// @router /api/v1/ws [get]
func notificationHandler(c *websocket.Conn) {
	userID, _ := c.Locals("userID").(string)
	connectionhub.Instance.AddClient(userID, c)
	defer connectionhub.Instance.DeleteClient(userID, c)
	wsclient.NewReader(userID, c).Run()
}
