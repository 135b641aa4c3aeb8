package authutils

import (
	"procurement-backend/config"
	"procurement-backend/models"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// GetToken токен с данными пользователя, выпускается внешним сервисом авторизации
// с тем же секретом, здесь используется в тестах цепочки авторизации
func GetToken(actor models.Actor) (tokenString string, err error) {
	claims := jwt.MapClaims{
		"sub":        actor.ID,
		"name":       actor.Name,
		"email":      actor.Email,
		"department": actor.Department,
		"role":       string(actor.Role),
		"exp":        time.Now().Add(time.Second * time.Duration(config.Conf.Auth.JWTExpireInSec)).Unix(),
		"iat":        time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.Conf.Auth.JWTSecret))
}

func GetClaims(ctx *fiber.Ctx) jwt.MapClaims {
	token, ok := ctx.Locals("user").(*jwt.Token)
	if !ok {
		return jwt.MapClaims{}
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return jwt.MapClaims{}
	}
	return claims
}

func ActorFromClaims(claims jwt.MapClaims) models.Actor {
	return models.Actor{
		ID:         claimString(claims, "sub"),
		Name:       claimString(claims, "name"),
		Email:      claimString(claims, "email"),
		Department: claimString(claims, "department"),
		Role:       models.UserRole(claimString(claims, "role")),
	}
}

func claimString(claims jwt.MapClaims, key string) string {
	if value, exist := claims[key]; exist {
		if str, ok := value.(string); ok {
			return str
		}
	}
	return ""
}
