package wsclient

import (
	"time"

	"github.com/gofiber/contrib/websocket"
	log "github.com/sirupsen/logrus"
)

const (
	maxMessageSize = 512
	// больше интервала ping сервера, иначе живое соединение закроется по таймауту
	readTimeout = 75 * time.Second
)

// Reader читает входящие сообщения до закрытия соединения.
// Клиент только получает уведомления, чтение нужно для обработки pong и close
type Reader struct {
	conn   *websocket.Conn
	userID string
}

func NewReader(userID string, conn *websocket.Conn) *Reader {
	return &Reader{
		conn:   conn,
		userID: userID,
	}
}

func (r *Reader) Run() {
	if r.conn == nil || r.conn.Conn == nil {
		return
	}
	logger := log.WithField("user_id", r.userID)
	r.conn.SetReadLimit(maxMessageSize)
	r.extendDeadline(logger)
	r.conn.SetPongHandler(func(string) error {
		r.extendDeadline(logger)
		return nil
	})
	for {
		_, data, err := r.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				logger.WithError(err).Warn("соединение websocket закрыто с ошибкой")
			} else {
				logger.WithError(err).Debug("соединение websocket закрыто")
			}
			return
		}
		r.extendDeadline(logger)
		logger.WithField("ws_message", string(data)).Debug("сообщение клиента websocket")
	}
}

func (r *Reader) extendDeadline(logger *log.Entry) {
	if err := r.conn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
		logger.WithError(err).Debug("ошибка установки таймаута чтения")
	}
}
