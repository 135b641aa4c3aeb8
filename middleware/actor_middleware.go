package middleware

import (
	authutils "procurement-backend/lib/utils/auth-utils"
	"procurement-backend/models"

	"github.com/gofiber/fiber/v2"
)

// GetActor текущий пользователь из проверенного токена
func GetActor(ctx *fiber.Ctx) models.Actor {
	return authutils.ActorFromClaims(authutils.GetClaims(ctx))
}

func GetUserID(ctx *fiber.Ctx) string {
	return GetActor(ctx).ID
}
