package models

import "github.com/pkg/errors"

type PRStatus string

const (
	PRStatusPending             PRStatus = "Pending"
	PRStatusInReview            PRStatus = "In Review"
	PRStatusClarificationNeeded PRStatus = "Clarification Needed"
	PRStatusApproved            PRStatus = "Approved"
	PRStatusRejected            PRStatus = "Rejected"
	PRStatusWithdrawn           PRStatus = "Withdrawn"
)

var PRStatuses = []PRStatus{
	PRStatusPending,
	PRStatusInReview,
	PRStatusClarificationNeeded,
	PRStatusApproved,
	PRStatusRejected,
	PRStatusWithdrawn,
}

func (s PRStatus) Validate() error {
	for _, status := range PRStatuses {
		if s == status {
			return nil
		}
	}
	return NewValidationError("status", "неизвестный статус заявки: %v", s)
}

func (s PRStatus) IsTerminal() bool {
	switch s {
	case PRStatusApproved, PRStatusRejected, PRStatusWithdrawn:
		return true
	}
	return false
}

// AllowEdit поля заявки можно менять только до начала рассмотрения
func (s PRStatus) AllowEdit() bool {
	return s == PRStatusPending
}

type PRAction string

const (
	PRActionSubmit        PRAction = "submit"
	PRActionApprove       PRAction = "approve"
	PRActionReject        PRAction = "reject"
	PRActionClarification PRAction = "request_clarification"
	PRActionReply         PRAction = "reply"
	PRActionEdit          PRAction = "edit"
	PRActionWithdraw      PRAction = "withdraw"
	PRActionAttach        PRAction = "attach"
)

var prActionHumanName = map[PRAction]string{
	PRActionSubmit:        "Создание заявки",
	PRActionApprove:       "Согласование",
	PRActionReject:        "Отклонение",
	PRActionClarification: "Запрос уточнения",
	PRActionReply:         "Ответ на уточнение",
	PRActionEdit:          "Редактирование",
	PRActionWithdraw:      "Отзыв заявки",
	PRActionAttach:        "Добавление вложения",
}

func (a PRAction) ToHuman() string {
	if human, exist := prActionHumanName[a]; exist {
		return human
	}
	return string(a)
}

// ByApprover действие выполняется согласующим, иначе автором заявки
func (a PRAction) ByApprover() bool {
	switch a {
	case PRActionApprove, PRActionReject, PRActionClarification:
		return true
	}
	return false
}

// Next единственная таблица переходов статусов заявки
func (s PRStatus) Next(action PRAction) (PRStatus, bool) {
	switch action {
	case PRActionSubmit:
		if s == "" {
			return PRStatusPending, true
		}
	case PRActionApprove:
		if s == PRStatusPending || s == PRStatusInReview {
			return PRStatusApproved, true
		}
	case PRActionReject:
		if s == PRStatusPending || s == PRStatusInReview {
			return PRStatusRejected, true
		}
	case PRActionClarification:
		if s == PRStatusPending || s == PRStatusInReview {
			return PRStatusClarificationNeeded, true
		}
	case PRActionReply:
		if s == PRStatusClarificationNeeded {
			return PRStatusInReview, true
		}
	case PRActionEdit, PRActionAttach:
		if s == PRStatusPending {
			return PRStatusPending, true
		}
	case PRActionWithdraw:
		if s == PRStatusPending || s == PRStatusInReview || s == PRStatusClarificationNeeded {
			return PRStatusWithdrawn, true
		}
	}
	return s, false
}

// AllowedActions список действий, доступных из текущего статуса (для подсказок интерфейсу)
func (s PRStatus) AllowedActions() []PRAction {
	result := []PRAction{}
	for _, action := range []PRAction{PRActionApprove, PRActionReject, PRActionClarification, PRActionReply, PRActionEdit, PRActionWithdraw} {
		if _, ok := s.Next(action); ok {
			result = append(result, action)
		}
	}
	return result
}

func InvalidTransition(status PRStatus, action PRAction) error {
	return errors.Wrapf(ErrInvalidTransition, "действие «%v» недопустимо в статусе «%v»", action.ToHuman(), status)
}

type VendorRefType string

const (
	VendorRefNone     VendorRefType = "none"
	VendorRefExisting VendorRefType = "existing"
	VendorRefProposed VendorRefType = "proposed"
)

func (t VendorRefType) Validate() error {
	switch t {
	case "", VendorRefNone, VendorRefExisting, VendorRefProposed:
		return nil
	}
	return NewValidationError("vendor.type", "неизвестный тип поставщика: %v", t)
}
