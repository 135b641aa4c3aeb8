package middleware

import (
	"procurement-backend/config"
	"procurement-backend/fiberlog"
	authutils "procurement-backend/lib/utils/auth-utils"
	apimodels "procurement-backend/models/api"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

func AuthorizationRequired() fiber.Handler {
	return jwtware.New(jwtware.Config{
		Claims: jwt.MapClaims{},
		// браузер не передаёт заголовки при подключении websocket
		TokenLookup: "header:Authorization,query:token",
		SigningKey: jwtware.SigningKey{
			JWTAlg: jwtware.HS256,
			Key:    []byte(config.Conf.Auth.JWTSecret),
		},
		SuccessHandler: func(ctx *fiber.Ctx) error {
			actor := authutils.ActorFromClaims(authutils.GetClaims(ctx))
			if actor.IsEmpty() {
				return ctx.Status(fiber.StatusUnauthorized).JSON(apimodels.NewError("в токене отсутствует пользователь"))
			}
			ctx.Locals(fiberlog.UserIDLocal, actor.ID)
			return ctx.Next()
		},
		ErrorHandler: func(ctx *fiber.Ctx, err error) error {
			return ctx.Status(fiber.StatusUnauthorized).JSON(apimodels.NewError("требуется авторизация"))
		},
	})
}
