package apimodels

import "procurement-backend/models"

const (
	ResponseSuccess = "success"
	ResponseFail    = "fail"
)

type Response struct {
	Status  string      `json:"status"`            //результат обработки fail/success
	Message string      `json:"message,omitempty"` //сообщение ошибки
	Data    interface{} `json:"data,omitempty"`    //данные ответа
}

type ScrollerResponse struct {
	Response
	RowCount int64 `json:"row_count"` //для списков, общее кол-во записей с учётом фильтра
}

func NewError(message string) Response {
	return Response{
		Status:  ResponseFail,
		Message: message,
	}
}

func NewResponse(data interface{}) Response {
	return Response{
		Status: ResponseSuccess,
		Data:   data,
	}
}

func NewScrollerResponse(data interface{}, rowCount int64) ScrollerResponse {
	return ScrollerResponse{
		Response: NewResponse(data),
		RowCount: rowCount,
	}
}

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

type Pagination struct {
	Limit int `json:"limit"` // Записей на странице, не больше 100
	Page  int `json:"page"`  // Страница (1,2,3..)
}

func (r Pagination) Validate() error {
	if r.Limit < 0 {
		return models.NewValidationError("limit", "размер страницы не может быть отрицательным")
	}
	if r.Page < 0 {
		return models.NewValidationError("page", "номер страницы не может быть отрицательным")
	}
	return nil
}

// GetPage страница и размер страницы с подстановкой значений по умолчанию
func (r Pagination) GetPage() (page, limit int) {
	page, limit = 1, defaultPageSize
	if r.Page > 0 {
		page = r.Page
	}
	if r.Limit > 0 {
		limit = min(r.Limit, maxPageSize)
	}
	return page, limit
}

func (r Pagination) Offset() int {
	page, limit := r.GetPage()
	return (page - 1) * limit
}
