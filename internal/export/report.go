package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"mamacare-sync/internal/cache"
	"mamacare-sync/internal/models"
	"mamacare-sync/internal/views"
)

// Sheet names of the child report.
const (
	SheetSummary      = "Resumo"
	SheetGrowth       = "Crescimento"
	SheetVaccinations = "Vacinas"
	SheetReminders    = "Lembretes"
)

const dateFormat = "02/01/2006"

type sheet struct {
	name    string
	headers []string
	widths  []float64
	rows    [][]interface{}
}

// GenerateChildReport writes the growth series, vaccination records and
// reminder partitions of child into an xlsx workbook.
func GenerateChildReport(snap cache.Snapshot, child models.Child, catalog []models.Vaccine, now time.Time) ([]byte, error) {
	f := excelize.NewFile()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	sheets := []sheet{
		summarySheet(snap, child, catalog, now),
		growthSheet(snap, child.ID),
		vaccinationSheet(snap, child.ID),
		reminderSheet(snap, child.ID, now),
	}
	for i, s := range sheets {
		if err := writeSheet(f, s, headerStyle); err != nil {
			f.Close()
			return nil, err
		}
		if i == 0 {
			index, err := f.GetSheetIndex(s.name)
			if err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to find sheet: %w", err)
			}
			f.SetActiveSheet(index)
		}
	}

	// remove the default sheet once another exists
	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to delete default sheet: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write to buffer: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close file: %w", err)
	}
	return buf.Bytes(), nil
}

func summarySheet(snap cache.Snapshot, child models.Child, catalog []models.Vaccine, now time.Time) sheet {
	series := views.GrowthSeriesFor(snap, child.ID)
	partitions := views.ReminderPartitionsFor(snap, child.ID, now)

	rows := [][]interface{}{
		{"Nome", child.Name},
		{"Data de nascimento", formatDate(child.DateOfBirth.Time)},
		{"Idade", views.ChildAgeLabel(child.DateOfBirth.Time, now)},
		{"Medições", len(series)},
	}
	if latest, ok := views.LatestGrowth(series); ok {
		rows = append(rows,
			[]interface{}{"Último peso (kg)", latest.Weight},
			[]interface{}{"Última altura (cm)", latest.Height},
		)
	}
	rows = append(rows,
		[]interface{}{"Vacinas concluídas", fmt.Sprintf("%d/%d", views.CompletedVaccinationsFor(snap, child.ID), len(catalog))},
		[]interface{}{"Progresso vacinal (%)", views.VaccinationProgressFor(snap, child.ID, catalog)},
		[]interface{}{"Prescrições ativas", len(views.ActivePrescriptionsFor(snap, child.ID))},
		[]interface{}{"Lembretes em atraso", len(partitions.Overdue)},
		[]interface{}{"Lembretes próximos", len(partitions.Upcoming)},
		[]interface{}{"Recomendações por ler", views.UnreadRecommendationCountFor(snap, child.ID)},
		[]interface{}{"Gerado em", now.Format(dateFormat + " 15:04")},
	)
	return sheet{
		name:    SheetSummary,
		headers: []string{"Campo", "Valor"},
		widths:  []float64{28, 30},
		rows:    rows,
	}
}

func growthSheet(snap cache.Snapshot, childID string) sheet {
	s := sheet{
		name:    SheetGrowth,
		headers: []string{"Data", "Peso (kg)", "Altura (cm)", "Perímetro cefálico (cm)", "Notas"},
		widths:  []float64{14, 12, 12, 24, 40},
	}
	for _, r := range views.GrowthSeriesFor(snap, childID) {
		var head interface{}
		if r.HeadCircumference != nil {
			head = *r.HeadCircumference
		}
		s.rows = append(s.rows, []interface{}{formatDate(r.Date.Time), r.Weight, r.Height, head, r.Notes})
	}
	return s
}

func vaccinationSheet(snap cache.Snapshot, childID string) sheet {
	s := sheet{
		name:    SheetVaccinations,
		headers: []string{"Vacina", "Estado", "Data de administração", "Próxima dose", "Notas"},
		widths:  []float64{28, 12, 22, 16, 40},
	}
	for _, v := range views.VaccinationsFor(snap, childID) {
		s.rows = append(s.rows, []interface{}{
			v.VaccineName,
			string(v.Status),
			formatOptionalDate(v.DateAdministered),
			formatOptionalDate(v.NextDoseDate),
			v.Notes,
		})
	}
	return s
}

func reminderSheet(snap cache.Snapshot, childID string, now time.Time) sheet {
	s := sheet{
		name:    SheetReminders,
		headers: []string{"Estado", "Título", "Tipo", "Quando", "Recorrente"},
		widths:  []float64{12, 30, 14, 26, 12},
	}
	p := views.ReminderPartitionsFor(snap, childID, now)
	groups := []struct {
		label string
		items []models.Reminder
	}{
		{"Em atraso", p.Overdue},
		{"Próximo", p.Upcoming},
		{"Concluído", p.Completed},
	}
	for _, g := range groups {
		for _, r := range g.items {
			recurring := "Não"
			if r.IsRecurring && r.RecurringPattern != nil {
				recurring = string(*r.RecurringPattern)
			}
			s.rows = append(s.rows, []interface{}{
				g.label, r.Title, string(r.Type), views.ReminderWhenLabel(r.DateTime, now), recurring,
			})
		}
	}
	return s
}

func writeSheet(f *excelize.File, s sheet, headerStyle int) error {
	if _, err := f.NewSheet(s.name); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", s.name, err)
	}

	for col, header := range s.headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(s.name, cell, header); err != nil {
			return fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(s.name, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("failed to set header style: %w", err)
		}
	}

	for i, width := range s.widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(s.name, col, col, width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for rowIdx, row := range s.rows {
		for colIdx, value := range row {
			if value == nil || value == "" {
				continue
			}
			if err := setCellValue(f, s.name, colIdx+1, rowIdx+2, value); err != nil {
				return fmt.Errorf("failed to set cell value at row %d, col %d: %w", rowIdx+2, colIdx+1, err)
			}
		}
	}

	if err := f.SetPanes(s.name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze panes: %w", err)
	}
	return nil
}

func setCellValue(f *excelize.File, sheet string, col, row int, value interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(sheet, cell, value)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateFormat)
}

func formatOptionalDate(d *models.Date) string {
	if d == nil {
		return ""
	}
	return formatDate(d.Time)
}
