package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/alimgiray/peoplebase/internal/models"
	"github.com/xuri/excelize/v2"
)

// ExportSheet is the worksheet name used in exported workbooks
const ExportSheet = "People"

var exportHeader = []interface{}{"ID", "Name", "Email", "Phone Number", "Created At", "Updated At"}

type peopleLister interface {
	ListPeople(ctx context.Context) ([]*models.Person, error)
}

// ExportService writes the people table as an xlsx workbook
type ExportService struct {
	people peopleLister
}

func NewExportService(people peopleLister) *ExportService {
	return &ExportService{people: people}
}

// WriteXLSX writes every person, ordered by name, to w
func (s *ExportService) WriteXLSX(ctx context.Context, w io.Writer) error {
	people, err := s.people.ListPeople(ctx)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ExportSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := f.SetSheetRow(ExportSheet, "A1", &exportHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, p := range people {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			p.ID,
			p.Name,
			p.Email,
			p.PhoneNumber,
			p.CreatedAt.Format(time.RFC3339),
			p.UpdatedAt.Format(time.RFC3339),
		}
		if err := f.SetSheetRow(ExportSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(ExportSheet, "A", "A", 38); err != nil {
		return err
	}
	if err := f.SetColWidth(ExportSheet, "B", "F", 24); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
