package connectionhub

import (
	"context"
	"time"

	"github.com/gofiber/contrib/websocket"
	log "github.com/sirupsen/logrus"
)

const (
	sendBufferSize = 16
	// интервал ping, клиент отвечает pong и продлевает чтение на своей стороне
	pingPeriod = 30 * time.Second
	writeWait  = 10 * time.Second
)

// outgoing сообщение в очереди, sent вызывается только после успешной записи в соединение
type outgoing struct {
	msg  any
	sent func()
}

type clientSession struct {
	conn  *websocket.Conn
	write func(msg any) error

	// исходящие сообщения, пишет только горутина startSend
	sendCh chan outgoing
	ctx    context.Context
	stop   func()
}

func newSession(conn *websocket.Conn) *clientSession {
	ctx, cancelFn := context.WithCancel(context.Background())
	sess := &clientSession{
		conn:   conn,
		sendCh: make(chan outgoing, sendBufferSize),
		ctx:    ctx,
		stop:   cancelFn,
	}
	sess.write = sess.send
	go sess.startSend()
	return sess
}

func (s *clientSession) isAlive() bool {
	return s.ctx.Err() == nil && s.conn != nil && s.conn.Conn != nil
}

// enqueue не блокирует отправителя: при переполнении буфера сообщение не доставляется
func (s *clientSession) enqueue(msg any, sent func()) bool {
	if s.ctx.Err() != nil {
		return false
	}
	select {
	case s.sendCh <- outgoing{msg: msg, sent: sent}:
		return true
	default:
		log.Warn("очередь сообщений websocket переполнена")
		return false
	}
}

func (s *clientSession) startSend() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-s.ctx.Done():
			s.close()
			return
		case out := <-s.sendCh:
			if err := s.write(out.msg); err != nil {
				log.WithError(err).Error("ошибка отправки сообщения")
				continue
			}
			if out.sent != nil {
				out.sent()
			}
		case <-ticker.C:
			if err := s.ping(); err != nil {
				log.WithError(err).Debug("ошибка отправки ping")
			}
		}
	}
}

func (s *clientSession) ping() error {
	if s.conn == nil || s.conn.Conn == nil {
		return nil
	}
	return s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

func (s *clientSession) send(msg interface{}) error {
	if s.conn == nil || s.conn.Conn == nil {
		return nil
	}
	return s.conn.WriteJSON(msg)
}

func (s *clientSession) close() {
	if s.conn == nil || s.conn.Conn == nil {
		return
	}
	err := s.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	if err != nil {
		log.WithError(err).Debug("ошибка закрытия websocket")
	}
}
