package xlsexport

import (
	"bytes"
	purchaseapimodels "procurement-backend/models/api/purchase"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

type Provider interface {
	ExportRequestList(list []purchaseapimodels.PurchaseRequestView) (*bytes.Buffer, error)
}

var Instance Provider

func NewHandler() {
	Instance = impl{}
}

type impl struct{}

const (
	sheetName = "Заявки"
	// номер колонки "Стоимость"
	costColumn = 6
)

var requestHeaders = []string{"Наименование", "Подразделение", "Автор", "Статус", "Поставщик", "Стоимость", "Кол-во лицензий", "Дата создания", "Дата согласования"}

func (i impl) ExportRequestList(list []purchaseapimodels.PurchaseRequestView) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.WithError(err).Error("ошибка закрытия файла")
		}
	}()
	sheet := "Sheet1"
	row, err := writeHeader(f, sheet, 0, requestHeaders)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка формирования заголовка в xlsx")
	}
	if len(list) != 0 {
		_, err = writeRequestData(f, sheet, list, row)
		if err != nil {
			return nil, errors.Wrap(err, "ошибка формирования таблицы с данными в xlsx")
		}
	}
	if err = f.SetSheetName(sheet, sheetName); err != nil {
		return nil, errors.Wrap(err, "ошибка переименования листа xlsx")
	}
	return f.WriteToBuffer()
}

func writeRequestData(f *excelize.File, sheet string, list []purchaseapimodels.PurchaseRequestView, row int) (int, error) {
	if err := applyDataCellStyle(f, sheet, 1, row+1, len(requestHeaders), row+len(list)); err != nil {
		return row, err
	}
	if err := applyMoneyCellStyle(f, sheet, costColumn, row+1, row+len(list)); err != nil {
		return row, err
	}
	for _, item := range list {
		row++
		values := []interface{}{
			item.Title,
			item.Department,
			item.Requester.Name,
			string(item.Status),
			VendorTitle(item),
			item.Cost.InexactFloat64(),
			"",
			item.CreatedAt.Format("02.01.2006"),
			"",
		}
		if item.NumLicenses != nil {
			values[6] = *item.NumLicenses
		}
		if item.ApprovalDate != nil {
			values[8] = item.ApprovalDate.Format("02.01.2006")
		}
		for idx, value := range values {
			if err := writeColumn(f, sheet, idx+1, row, value); err != nil {
				return row, err
			}
		}
	}
	return row, nil
}

// VendorTitle название поставщика для вывода: из справочника или предложенный автором
func VendorTitle(item purchaseapimodels.PurchaseRequestView) string {
	if item.VendorName != "" {
		return item.VendorName
	}
	if item.Vendor.Proposed != nil {
		return item.Vendor.Proposed.VendorName + " (предложен)"
	}
	return ""
}
