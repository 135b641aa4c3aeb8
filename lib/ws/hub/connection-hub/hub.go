package connectionhub

import (
	"procurement-backend/db"
	pushdatastore "procurement-backend/lib/notify/push-store"
	wsmodels "procurement-backend/models/ws"
	"sync"

	"github.com/gofiber/contrib/websocket"
	log "github.com/sirupsen/logrus"
)

type Provider interface {
	AddClient(userID string, conn *websocket.Conn)
	DeleteClient(userID string, conn *websocket.Conn)
	// SendMessage false если у пользователя нет активного подключения
	SendMessage(msg wsmodels.ServerMessage) bool
	IsConnected(userID string) bool
}

var Instance Provider

func Init() {
	Instance = newHub(pushdatastore.NewInstance(db.DB))
}

func newHub(store pushdatastore.Provider) *impl {
	return &impl{
		clients: map[string]*clientSession{},
		store:   store,
	}
}

type impl struct {
	mu      sync.Mutex
	clients map[string]*clientSession //map[userID]
	store   pushdatastore.Provider
}

func (i *impl) DeleteClient(userID string, conn *websocket.Conn) {
	i.mu.Lock()
	defer i.mu.Unlock()
	sess, ok := i.clients[userID]
	// сессия могла быть заменена новым подключением
	if !ok || sess.conn != conn {
		return
	}
	delete(i.clients, userID)
	sess.stop()
}

func (i *impl) AddClient(userID string, conn *websocket.Conn) {
	i.mu.Lock()
	oldSess, ok := i.clients[userID]
	if ok {
		oldSess.stop()
	}
	i.clients[userID] = newSession(conn)
	i.mu.Unlock()
	go i.sendDelayedMessages(userID)
}

func (i *impl) SendMessage(msg wsmodels.ServerMessage) bool {
	return i.enqueue(msg, nil)
}

func (i *impl) enqueue(msg wsmodels.ServerMessage, sent func()) bool {
	i.mu.Lock()
	sess, ok := i.clients[msg.ToUserID]
	i.mu.Unlock()
	if !ok {
		return false
	}
	return sess.enqueue(msg, sent)
}

func (i *impl) IsConnected(userID string) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	sess, ok := i.clients[userID]
	return ok && sess.isAlive()
}

func (i *impl) sendDelayedMessages(userID string) {
	logger := log.WithField("user_id", userID)
	list, err := i.store.List(userID)
	if err != nil {
		logger.WithError(err).Error("ошибка получения списка не отправленных событий")
		return
	}
	for _, item := range list {
		msg := wsmodels.ServerMessage{
			ToUserID:  userID,
			Time:      item.CreatedAt.Format("02.01.2006 15:04:05"),
			Code:      string(item.Code),
			Title:     item.Title,
			Msg:       item.Msg,
			RequestID: item.RequestID,
		}
		id := item.ID
		// запись удаляется после доставки, недоставленные уйдут при следующем подключении
		if !i.enqueue(msg, func() { i.deleteDelivered(userID, id) }) {
			break
		}
	}
}

func (i *impl) deleteDelivered(userID, id string) {
	if err := i.store.Delete([]string{id}); err != nil {
		log.
			WithField("user_id", userID).
			WithField("push_id", id).
			WithError(err).
			Error("ошибка удаления отправленного события")
	}
}
