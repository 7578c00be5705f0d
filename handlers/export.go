package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"azv-admin-api/models"
	"azv-admin-api/pkg/listview"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// column is one exported spreadsheet column.
type column[T any] struct {
	Header string
	Width  float64
	Value  func(T) any
}

// buildWorkbook writes rows under a bold header row on a single sheet.
func buildWorkbook[T any](sheet string, cols []column[T], rows []T) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if sheet != "Sheet1" {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return nil, fmt.Errorf("delete default sheet: %w", err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#F3E9DC"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for i, col := range cols {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, col.Header); err != nil {
			return nil, fmt.Errorf("set header %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("style header %s: %w", cell, err)
		}
		if col.Width > 0 {
			name, err := excelize.ColumnNumberToName(i + 1)
			if err != nil {
				return nil, err
			}
			if err := f.SetColWidth(sheet, name, name, col.Width); err != nil {
				return nil, fmt.Errorf("set width %s: %w", name, err)
			}
		}
	}

	for r, row := range rows {
		values := make([]any, len(cols))
		for i, col := range cols {
			values[i] = col.Value(row)
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", r+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return bytes.Clone(buf.Bytes()), nil
}

// serveExport loads the full collection, filters and sorts it the same way the list
// endpoint does and sends it as an xlsx attachment without paging.
func serveExport[T any](c *gin.Context, req listRequest, schema *listview.Schema[T], cols []column[T], fetch fetchFunc[T]) {
	session := currentSession(c)
	records, err := fetch(c.Request.Context(), session.Credential)
	if err != nil {
		respondError(c, err)
		return
	}
	ordered := schema.Ordered(records, req.State)
	data, err := buildWorkbook(string(req.Section), cols, ordered)
	if err != nil {
		respondError(c, err)
		return
	}
	name := fmt.Sprintf("%s-%s.xlsx", req.Section, time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, xlsxContentType, data)
}

var branchColumns = []column[models.Branch]{
	{Header: "Название", Width: 28, Value: func(b models.Branch) any { return b.Name }},
	{Header: "Адрес", Width: 40, Value: func(b models.Branch) any { return b.Address }},
	{Header: "Сотрудники", Width: 12, Value: func(b models.Branch) any { return b.EmployeesCount }},
	{Header: "Контактное лицо", Width: 24, Value: func(b models.Branch) any { return b.ContactPerson }},
	{Header: "Телефон старшего", Width: 18, Value: func(b models.Branch) any { return derefString(b.ResponsiblePhone) }},
	{Header: "Бонусы", Width: 12, Value: func(b models.Branch) any { return b.Bonuses }},
}

var employeeColumns = []column[models.Employee]{
	{Header: "Имя", Width: 28, Value: func(e models.Employee) any { return e.Name }},
	{Header: "Кофейня", Width: 28, Value: func(e models.Employee) any { return e.Company }},
	{Header: "Телефон", Width: 18, Value: func(e models.Employee) any { return e.Phone }},
	{Header: "Роль", Width: 14, Value: func(e models.Employee) any { return e.RoleLabel }},
}

var guestColumns = []column[models.Guest]{
	{Header: "Имя", Width: 28, Value: func(g models.Guest) any { return g.FullName() }},
	{Header: "Телефон", Width: 18, Value: func(g models.Guest) any { return g.Phone }},
	{Header: "Ранг", Width: 14, Value: func(g models.Guest) any { return g.Rank }},
	{Header: "Баллы", Width: 10, Value: func(g models.Guest) any { return g.Points }},
	{Header: "Кофе", Width: 10, Value: func(g models.Guest) any { return g.CoffeeCount }},
	{Header: "Потрачено", Width: 12, Value: func(g models.Guest) any { return g.TotalSpent }},
	{Header: "Регистрация", Width: 20, Value: func(g models.Guest) any { return g.RegistrationDate }},
	{Header: "Последний визит", Width: 20, Value: func(g models.Guest) any { return g.LastVisit }},
}

var feedbackColumns = []column[models.Feedback]{
	{Header: "Дата", Width: 20, Value: func(f models.Feedback) any { return f.CreatedAt.Format("2006-01-02 15:04") }},
	{Header: "Тип", Width: 10, Value: func(f models.Feedback) any { return string(f.Type) }},
	{Header: "Гость", Width: 24, Value: func(f models.Feedback) any { return f.User.DisplayName() }},
	{Header: "Телефон", Width: 18, Value: func(f models.Feedback) any { return f.User.Phone }},
	{Header: "Кофейня", Width: 24, Value: func(f models.Feedback) any { return f.CoffeeShop.Name }},
	{Header: "Текст", Width: 60, Value: func(f models.Feedback) any { return f.Text }},
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
