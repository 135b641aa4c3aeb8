package models

type PushCode string

type PushTpl struct {
	Name  string
	Title string
	Msg   string
}

var PushCodeMap = map[PushCode]PushTpl{
	PushPRApproved:      {Name: "Согласование заявки", Title: "Заявка согласована", Msg: "Заявка «%v» согласована пользователем %v."},
	PushPRRejected:      {Name: "Отклонение заявки", Title: "Заявка отклонена", Msg: "Заявка «%v» отклонена пользователем %v."},
	PushPRClarification: {Name: "Запрос уточнения по заявке", Title: "Требуется уточнение", Msg: "По заявке «%v» пользователь %v запросил уточнение: %v"},
	PushPRReplied:       {Name: "Ответ автора заявки", Title: "Получен ответ на уточнение", Msg: "Автор заявки «%v» %v ответил на уточнение: %v"},
	PushPRWithdrawn:     {Name: "Отзыв заявки", Title: "Заявка отозвана", Msg: "Заявка «%v» отозвана автором %v."},
}

const (
	PushPRApproved      PushCode = "PushPRApproved"
	PushPRRejected      PushCode = "PushPRRejected"
	PushPRClarification PushCode = "PushPRClarification"
	PushPRReplied       PushCode = "PushPRReplied"
	PushPRWithdrawn     PushCode = "PushPRWithdrawn"
)

// PushCodeByAction код уведомления для перехода, пустая строка - уведомлять не нужно
func PushCodeByAction(action PRAction) PushCode {
	switch action {
	case PRActionApprove:
		return PushPRApproved
	case PRActionReject:
		return PushPRRejected
	case PRActionClarification:
		return PushPRClarification
	case PRActionReply:
		return PushPRReplied
	case PRActionWithdraw:
		return PushPRWithdrawn
	}
	return ""
}
