package notify

import (
	"context"
	"fmt"
	"procurement-backend/config"
	"procurement-backend/db"
	pushdatastore "procurement-backend/lib/notify/push-store"
	"procurement-backend/lib/smtp"
	connectionhub "procurement-backend/lib/ws/hub/connection-hub"
	"procurement-backend/models"
	dbmodels "procurement-backend/models/db"
	wsmodels "procurement-backend/models/ws"
	"time"

	log "github.com/sirupsen/logrus"
)

// Event зафиксированный переход заявки
type Event struct {
	Action  models.PRAction
	Request dbmodels.PurchaseRequest // состояние после перехода
	Actor   models.Actor
	Comment string
}

type Provider interface {
	SendTransition(ctx context.Context, event Event)
}

var Instance Provider

func NewHandler() {
	Instance = impl{
		hub:          connectionhub.Instance,
		pushStore:    pushdatastore.NewInstance(db.DB),
		mailer:       smtp.Instance,
		emailEnabled: config.Conf.Notify.EmailEnabled == nil || *config.Conf.Notify.EmailEnabled,
		frontendURL:  config.Conf.Notify.FrontendURL,
		async:        func(fn func()) { go fn() },
		now:          time.Now,
	}
}

type impl struct {
	hub          connectionhub.Provider
	pushStore    pushdatastore.Provider
	mailer       smtp.Provider
	emailEnabled bool
	frontendURL  string
	async        func(fn func())
	now          func() time.Time
}

// Recipient кому адресовано уведомление о переходе, пустая строка - некому
func Recipient(event Event) string {
	var userID string
	switch event.Action {
	case models.PRActionApprove, models.PRActionReject, models.PRActionClarification:
		userID = event.Request.RequesterID
	case models.PRActionReply, models.PRActionWithdraw:
		if event.Request.ReviewerID != nil {
			userID = *event.Request.ReviewerID
		}
	}
	// себя не уведомляем
	if userID == event.Actor.ID {
		return ""
	}
	return userID
}

func (i impl) SendTransition(ctx context.Context, event Event) {
	code := models.PushCodeByAction(event.Action)
	userID := Recipient(event)
	if code == "" || userID == "" {
		return
	}
	logger := log.
		WithField("request_id", event.Request.ID).
		WithField("recipient_id", userID).
		WithField("event_code", code)
	tpl := models.PushCodeMap[code]
	msg := buildMsg(tpl, event)

	pushMsg := wsmodels.ServerMessage{
		ToUserID:  userID,
		Time:      i.now().Format("02.01.2006 15:04:05"),
		Code:      string(code),
		Title:     tpl.Title,
		Msg:       msg,
		RequestID: event.Request.ID,
	}
	if i.hub == nil || !i.hub.IsConnected(userID) || !i.hub.SendMessage(pushMsg) {
		err := i.pushStore.Create(dbmodels.PushData{
			UserID:    userID,
			Code:      code,
			RequestID: event.Request.ID,
			Title:     tpl.Title,
			Msg:       msg,
		})
		if err != nil {
			logger.WithError(err).Error("ошибка сохранения отложенного уведомления")
		}
	}

	if userID == event.Request.RequesterID && event.Request.RequesterEmail != "" {
		i.sendEmail(logger, event.Request.RequesterEmail, tpl.Title, msg, event.Request.ID)
	}
}

func (i impl) sendEmail(logger *log.Entry, to, subject, msg, requestID string) {
	if !i.emailEnabled || i.mailer == nil || !i.mailer.IsConfigured() {
		return
	}
	body := msg
	if i.frontendURL != "" {
		body = fmt.Sprintf("%s\r\n\r\nЗаявка: %s/purchase_request/%s", msg, i.frontendURL, requestID)
	}
	i.async(func() {
		if err := i.mailer.SendEMail(to, subject, body); err != nil {
			logger.WithError(err).Warn("уведомление по почте не отправлено")
		}
	})
}

func buildMsg(tpl models.PushTpl, event Event) string {
	actorName := event.Actor.GetName()
	switch event.Action {
	case models.PRActionClarification, models.PRActionReply:
		return fmt.Sprintf(tpl.Msg, event.Request.Title, actorName, event.Comment)
	case models.PRActionReject:
		msg := fmt.Sprintf(tpl.Msg, event.Request.Title, actorName)
		if event.Comment != "" {
			msg = fmt.Sprintf("%s Причина: %s", msg, event.Comment)
		}
		return msg
	}
	return fmt.Sprintf(tpl.Msg, event.Request.Title, actorName)
}
