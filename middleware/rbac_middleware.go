package middleware

import (
	"procurement-backend/lib/rbac"
	apimodels "procurement-backend/models/api"

	"github.com/gofiber/fiber/v2"
)

func RbacMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		actor := GetActor(ctx)
		if actor.IsEmpty() || actor.Role == "" {
			return ctx.Status(fiber.StatusForbidden).JSON(apimodels.NewError("RBAC_FORBIDDEN"))
		}
		// маршруты без правила доступны всем авторизованным
		allowed, found := rbac.Instance.Check(actor, ctx.Method(), ctx.Path())
		if found && !allowed {
			return ctx.Status(fiber.StatusForbidden).JSON(apimodels.NewError("RBAC_FORBIDDEN"))
		}
		return ctx.Next()
	}
}
