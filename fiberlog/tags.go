package fiberlog

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	TagPid      = "pid"
	TagLatency  = "latency"
	TagStatus   = "status"
	TagMethod   = "method"
	TagPath     = "path"
	TagIP       = "ip"
	TagBody     = "body"
	TagResBody  = "resBody"
	TagError    = "error"
	TagUserID   = "user_id"
	RequestID   = "requestid"
	maxBodySize = 4096
)

// FuncTag значение поля лога для тега
type FuncTag func(c *fiber.Ctx, d *data) interface{}

type data struct {
	pid   int
	start time.Time
	end   time.Time
	err   error
}

const (
	// UserIDLocal ключ fiber.Locals с ид пользователя, заполняется middleware авторизации
	UserIDLocal = "log_user_id"
	// ErrorLocal ключ fiber.Locals с ошибкой обработчика
	ErrorLocal = "log_error"
)

func getFuncTagMap(cfg Config) map[string]FuncTag {
	all := map[string]FuncTag{
		TagPid: func(c *fiber.Ctx, d *data) interface{} {
			return d.pid
		},
		TagLatency: func(c *fiber.Ctx, d *data) interface{} {
			return d.end.Sub(d.start).String()
		},
		TagStatus: func(c *fiber.Ctx, d *data) interface{} {
			return c.Response().StatusCode()
		},
		TagMethod: func(c *fiber.Ctx, d *data) interface{} {
			return c.Method()
		},
		TagPath: func(c *fiber.Ctx, d *data) interface{} {
			return c.Path()
		},
		TagIP: func(c *fiber.Ctx, d *data) interface{} {
			return c.IP()
		},
		TagBody: func(c *fiber.Ctx, d *data) interface{} {
			if strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm) {
				return ""
			}
			return cut(c.Body())
		},
		TagResBody: func(c *fiber.Ctx, d *data) interface{} {
			if !strings.HasPrefix(string(c.Response().Header.ContentType()), fiber.MIMEApplicationJSON) {
				return ""
			}
			return cut(c.Response().Body())
		},
		TagError: func(c *fiber.Ctx, d *data) interface{} {
			if d.err != nil {
				return d.err.Error()
			}
			// ошибка обработчика, уже отданная клиентом ответом
			if err, ok := c.Locals(ErrorLocal).(error); ok && err != nil {
				return err.Error()
			}
			return ""
		},
		TagUserID: func(c *fiber.Ctx, d *data) interface{} {
			userID, _ := c.Locals(UserIDLocal).(string)
			return userID
		},
		RequestID: func(c *fiber.Ctx, d *data) interface{} {
			return string(c.Response().Header.Peek(fiber.HeaderXRequestID))
		},
	}
	result := make(map[string]FuncTag, len(cfg.Tags))
	for _, tag := range cfg.Tags {
		if ft, ok := all[tag]; ok {
			result[tag] = ft
		}
	}
	return result
}

func cut(body []byte) string {
	if len(body) > maxBodySize {
		return string(body[:maxBodySize]) + "..."
	}
	return string(body)
}
