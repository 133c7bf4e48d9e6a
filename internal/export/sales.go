// Package export renders reports as spreadsheets.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/BruksfildServices01/salon-booking/internal/usecase/sales"
)

const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type sheet struct {
	f    *excelize.File
	name string
	row  int
	bold int
}

func (s *sheet) header(cols ...any) error {
	if err := s.write(cols...); err != nil {
		return err
	}
	from, _ := excelize.CoordinatesToCellName(1, s.row-1)
	to, _ := excelize.CoordinatesToCellName(len(cols), s.row-1)
	return s.f.SetCellStyle(s.name, from, to, s.bold)
}

func (s *sheet) write(vals ...any) error {
	cell, err := excelize.CoordinatesToCellName(1, s.row)
	if err != nil {
		return err
	}
	if err := s.f.SetSheetRow(s.name, cell, &vals); err != nil {
		return fmt.Errorf("write %s row %d: %w", s.name, s.row, err)
	}
	s.row++
	return nil
}

// SalesWorkbook lays out a summary on four sheets: totals, daily series,
// workers and services. Money cells are numbers with two decimals.
func SalesWorkbook(sum *sales.Summary) (*excelize.File, error) {
	f := excelize.NewFile()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}

	newSheet := func(name string) (*sheet, error) {
		if name == "Summary" {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return nil, err
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}
		return &sheet{f: f, name: name, row: 1, bold: bold}, nil
	}

	build := func() error {
		s, err := newSheet("Summary")
		if err != nil {
			return err
		}
		rows := [][]any{
			{"From", sum.From},
			{"To", sum.To},
			{"Timezone", sum.Timezone},
			{"Bookings", sum.Bookings},
			{"Paid", sum.Paid},
			{"Revenue", sum.Revenue.Round(2).InexactFloat64()},
			{"Average ticket", sum.Average.Round(2).InexactFloat64()},
		}
		for _, r := range rows {
			if err := s.write(r...); err != nil {
				return err
			}
		}

		d, err := newSheet("Daily")
		if err != nil {
			return err
		}
		if err := d.header("Date", "Bookings", "Paid", "Revenue"); err != nil {
			return err
		}
		for _, day := range sum.Daily {
			if err := d.write(day.Date, day.Bookings, day.Paid, day.Revenue.Round(2).InexactFloat64()); err != nil {
				return err
			}
		}

		for _, part := range []struct {
			name  string
			lines []sales.Line
		}{
			{"Workers", sum.Workers},
			{"Services", sum.Services},
		} {
			ws, err := newSheet(part.name)
			if err != nil {
				return err
			}
			if err := ws.header("ID", "Name", "Bookings", "Paid", "Revenue"); err != nil {
				return err
			}
			for _, l := range part.lines {
				if err := ws.write(l.ID, l.Name, l.Bookings, l.Paid, l.Revenue.Round(2).InexactFloat64()); err != nil {
					return err
				}
			}
		}
		return nil
	}

	if err := build(); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// WriteSales streams the workbook for sum to w.
func WriteSales(w io.Writer, sum *sales.Summary) error {
	f, err := SalesWorkbook(sum)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}
