package pdfexport

import (
	"bytes"
	"fmt"
	"procurement-backend/config"
	xlsexport "procurement-backend/lib/export/xls"
	purchaseapimodels "procurement-backend/models/api/purchase"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/pkg/errors"
)

type Provider interface {
	RequestSummary(item purchaseapimodels.PurchaseRequestView, history []purchaseapimodels.HistoryView) (pdfFile []byte, err error)
}

var Instance Provider

func NewHandler() {
	Instance = impl{
		fontDir: config.Conf.App.FontDir,
	}
}

type impl struct {
	fontDir string
}

const (
	fontName   = "Arial"
	labelWidth = 55
	lineHeight = 7
)

type summaryLine struct {
	Label string
	Value string
}

func (i impl) RequestSummary(item purchaseapimodels.PurchaseRequestView, history []purchaseapimodels.HistoryView) (pdfFile []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("RequestSummary panic recover: %v", r)
		}
	}()
	pdf := fpdf.New("P", "mm", "A4", i.fontDir)
	pdf.AddUTF8Font(fontName, "", "Arial.ttf")
	pdf.AddUTF8Font(fontName, "B", "Arial Bold.ttf")
	if pdf.Error() != nil {
		return nil, errors.Wrap(pdf.Error(), "ошибка загрузки шрифтов")
	}
	pdf.SetTitle(item.Title, true)
	pdf.AddPage()

	pdf.SetFont(fontName, "B", 16)
	pdf.MultiCell(0, 9, fmt.Sprintf("Заявка на закупку: %s", item.Title), "", "L", false)
	pdf.Ln(4)

	writeLines(pdf, summaryLines(item))

	if item.ReviewerNotes != "" || item.RequesterReply != "" {
		writeSection(pdf, "Уточнение")
		writeLines(pdf, []summaryLine{
			{Label: "Вопрос согласующего", Value: item.ReviewerNotes},
			{Label: "Ответ автора", Value: item.RequesterReply},
		})
	}
	if item.Description != "" {
		writeSection(pdf, "Обоснование")
		pdf.SetFont(fontName, "", 11)
		pdf.MultiCell(0, lineHeight, item.Description, "", "L", false)
	}
	if len(item.Attachments) != 0 {
		writeSection(pdf, "Вложения")
		lines := make([]summaryLine, 0, len(item.Attachments))
		for _, att := range item.Attachments {
			lines = append(lines, summaryLine{
				Label: att.CreatedAt.Format("02.01.2006 15:04"),
				Value: fmt.Sprintf("%s (%s, %s)", att.Name, humanSize(att.Size), att.UploaderName),
			})
		}
		writeLines(pdf, lines)
	}
	if len(history) != 0 {
		writeSection(pdf, "История")
		writeLines(pdf, historyLines(history))
	}

	buf := new(bytes.Buffer)
	if err = pdf.Output(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeSection(pdf *fpdf.Fpdf, title string) {
	pdf.Ln(4)
	pdf.SetFont(fontName, "B", 13)
	pdf.CellFormat(0, 8, title, "B", 1, "L", false, 0, "")
	pdf.Ln(2)
}

func writeLines(pdf *fpdf.Fpdf, lines []summaryLine) {
	for _, line := range lines {
		if line.Value == "" {
			continue
		}
		pdf.SetFont(fontName, "B", 11)
		pdf.CellFormat(labelWidth, lineHeight, line.Label, "", 0, "L", false, 0, "")
		pdf.SetFont(fontName, "", 11)
		pdf.MultiCell(0, lineHeight, line.Value, "", "L", false)
	}
}

func summaryLines(item purchaseapimodels.PurchaseRequestView) []summaryLine {
	lines := []summaryLine{
		{Label: "Статус", Value: string(item.Status)},
		{Label: "Подразделение", Value: item.Department},
		{Label: "Автор", Value: strings.TrimSpace(fmt.Sprintf("%s %s", item.Requester.Name, item.Requester.Email))},
		{Label: "Дата создания", Value: item.CreatedAt.Format("02.01.2006")},
		{Label: "Поставщик", Value: xlsexport.VendorTitle(item)},
		{Label: "Стоимость", Value: item.Cost.StringFixed(2)},
	}
	if item.CostPerLicense != nil {
		lines = append(lines, summaryLine{Label: "Стоимость лицензии", Value: item.CostPerLicense.StringFixed(2)})
	}
	if item.NumLicenses != nil {
		lines = append(lines, summaryLine{Label: "Кол-во лицензий", Value: fmt.Sprint(*item.NumLicenses)})
	}
	if item.Vendor.Proposed != nil {
		lines = append(lines,
			summaryLine{Label: "Сайт поставщика", Value: item.Vendor.Proposed.Website},
			summaryLine{Label: "Почта поставщика", Value: item.Vendor.Proposed.ContactEmail},
		)
	}
	if item.ReviewerName != "" {
		lines = append(lines, summaryLine{Label: "Согласующий", Value: item.ReviewerName})
	}
	if item.ApprovalDate != nil {
		lines = append(lines, summaryLine{Label: "Дата согласования", Value: item.ApprovalDate.Format("02.01.2006")})
	}
	return lines
}

func historyLines(history []purchaseapimodels.HistoryView) []summaryLine {
	lines := make([]summaryLine, 0, len(history))
	for _, rec := range history {
		value := fmt.Sprintf("%s: %s", rec.ActorName, rec.ActionName)
		if rec.Comment != "" {
			value += fmt.Sprintf(" (%s)", rec.Comment)
		}
		lines = append(lines, summaryLine{
			Label: rec.CreatedAt.Format("02.01.2006 15:04"),
			Value: value,
		})
	}
	return lines
}

func humanSize(size int64) string {
	switch {
	case size >= 1<<20:
		return fmt.Sprintf("%.1f МБ", float64(size)/(1<<20))
	case size >= 1<<10:
		return fmt.Sprintf("%.1f КБ", float64(size)/(1<<10))
	}
	return fmt.Sprintf("%d Б", size)
}
