// Package export writes tables as csv files and xlsx workbooks.
package export

import (
	"math"
	"os"
	"path/filepath"
	"time"

	d "github.com/invertedv/nicsdf"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// Sheet is a table written to the named worksheet.
type Sheet struct {
	Name  string
	Table *d.Table
}

// WriteCSV writes t to fileName, creating the directory if needed.
func WriteCSV(t *d.Table, fileName string) error {
	if err := makeDir(fileName); err != nil {
		return err
	}

	if err := d.NewFiles().Save(fileName, t); err != nil {
		return errors.Wrapf(err, "failed to write %s", fileName)
	}

	return nil
}

// WriteXLSX writes one worksheet per sheet, in order. Missing values are empty cells and dates are
// written in df.DateFormat.
func WriteXLSX(fileName string, sheets ...Sheet) (err error) {
	if len(sheets) == 0 {
		return errors.New("no sheets to write")
	}

	if err = makeDir(fileName); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer func() {
		if e := f.Close(); e != nil && err == nil {
			err = e
		}
	}()

	for ind, s := range sheets {
		var idx int
		if idx, err = f.NewSheet(s.Name); err != nil {
			return errors.Wrapf(err, "failed to add sheet %s", s.Name)
		}

		if ind == 0 {
			f.SetActiveSheet(idx)
		}

		if err = writeSheet(f, s); err != nil {
			return errors.Wrapf(err, "failed to write sheet %s", s.Name)
		}
	}

	if !hasSheet(sheets, "Sheet1") {
		if err = f.DeleteSheet("Sheet1"); err != nil {
			return err
		}
	}

	if err = f.SaveAs(fileName); err != nil {
		return errors.Wrapf(err, "failed to save %s", fileName)
	}

	return nil
}

func writeSheet(f *excelize.File, s Sheet) error {
	var header []any
	for _, name := range s.Table.ColumnNames() {
		header = append(header, name)
	}

	if err := f.SetSheetRow(s.Name, "A1", &header); err != nil {
		return err
	}

	for r := 0; r < s.Table.RowCount(); r++ {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}

		row := s.Table.Row(r)
		for ind, el := range row {
			switch x := el.(type) {
			case float64:
				if math.IsNaN(x) {
					row[ind] = nil
				}
			case time.Time:
				row[ind] = x.Format(d.DateFormat)
			}
		}

		if err := f.SetSheetRow(s.Name, cell, &row); err != nil {
			return err
		}
	}

	return nil
}

func hasSheet(sheets []Sheet, name string) bool {
	for _, s := range sheets {
		if s.Name == name {
			return true
		}
	}

	return false
}

func makeDir(fileName string) error {
	dir := filepath.Dir(fileName)
	if dir == "" {
		return nil
	}

	return errors.Wrapf(os.MkdirAll(dir, os.ModePerm), "failed to create %s", dir)
}
