// Package load reads a delimited or xlsx table from any afs location into a *df.Table.
package load

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	d "github.com/invertedv/nicsdf"
	perrors "github.com/pkg/errors"
	"github.com/viant/afs"
	"github.com/xuri/excelize/v2"
)

// DefaultMissing are the cell values treated as missing.
var DefaultMissing = []string{"", "NA", "N/A", "NaN", "nan", "null", "NULL", "#N/A"}

type loader struct {
	fs      afs.Service
	sep     rune
	sheet   string
	missing []string
}

// Opt sets an option of Load
type Opt func(l *loader)

// WithService sets the storage service. The default is afs.New().
func WithService(fs afs.Service) Opt {
	return func(l *loader) { l.fs = fs }
}

// WithSeparator sets the field separator of delimited sources.
func WithSeparator(sep rune) Opt {
	return func(l *loader) { l.sep = sep }
}

// WithSheet selects the sheet of an xlsx source. The default is the first sheet.
func WithSheet(sheet string) Opt {
	return func(l *loader) { l.sheet = sheet }
}

// WithMissing replaces DefaultMissing.
func WithMissing(missing ...string) Opt {
	return func(l *loader) { l.missing = missing }
}

// Load reads the table at URL. Any failure is returned as a *df.LoadError.
func Load(ctx context.Context, URL string, opts ...Opt) (*d.Table, error) {
	l := &loader{sep: rune(d.NewFiles().Sep), missing: DefaultMissing}
	for _, opt := range opts {
		opt(l)
	}

	if l.fs == nil {
		l.fs = afs.New()
	}

	var (
		records [][]string
		e       error
	)
	if records, e = l.read(ctx, URL); e != nil {
		return nil, toLoadError(URL, e)
	}

	var t *d.Table
	if t, e = l.build(records); e != nil {
		return nil, toLoadError(URL, e)
	}

	return t, nil
}

func toLoadError(URL string, e error) error {
	var le *d.LoadError
	if errors.As(e, &le) {
		return le
	}

	return d.NewLoadError(URL, e)
}

func (l *loader) read(ctx context.Context, URL string) ([][]string, error) {
	exists, e := l.fs.Exists(ctx, URL)
	if e != nil {
		return nil, perrors.Wrapf(e, "failed to check %v", URL)
	}

	if !exists {
		return nil, d.ErrNotFound
	}

	reader, e := l.fs.OpenURL(ctx, URL)
	if e != nil {
		return nil, perrors.Wrapf(e, "failed to open %v", URL)
	}
	defer reader.Close()

	data, e := io.ReadAll(reader)
	if e != nil {
		return nil, perrors.Wrapf(e, "failed to read %v", URL)
	}

	if strings.HasSuffix(strings.ToLower(URL), ".xlsx") {
		return l.readXLSX(data)
	}

	return l.readDelimited(data)
}

func (l *loader) readDelimited(data []byte) ([][]string, error) {
	rdr := csv.NewReader(bytes.NewReader(data))
	rdr.Comma = l.sep
	rdr.FieldsPerRecord = 0

	records, e := rdr.ReadAll()
	if e != nil {
		if errors.Is(e, csv.ErrFieldCount) {
			return nil, fmt.Errorf("%w: %v", d.ErrRagged, e)
		}

		return nil, e
	}

	return records, nil
}

// readXLSX pads short rows since xlsx drops trailing empty cells.
func (l *loader) readXLSX(data []byte) ([][]string, error) {
	f, e := excelize.OpenReader(bytes.NewReader(data))
	if e != nil {
		return nil, perrors.Wrap(e, "failed to open workbook")
	}
	defer func() { _ = f.Close() }()

	sheet := l.sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, d.ErrEmpty
		}

		sheet = sheets[0]
	}

	rows, e := f.GetRows(sheet)
	if e != nil {
		return nil, perrors.Wrapf(e, "failed to read sheet %s", sheet)
	}

	if len(rows) == 0 {
		return nil, d.ErrEmpty
	}

	width := len(rows[0])
	for ind, row := range rows {
		if len(row) > width {
			return nil, fmt.Errorf("%w: row %d has %d fields, header has %d", d.ErrRagged, ind+1, len(row), width)
		}

		for len(row) < width {
			row = append(row, "")
		}

		rows[ind] = row
	}

	return rows, nil
}

// build makes a table from a header row and data rows, inferring a type for each column.
func (l *loader) build(records [][]string) (*d.Table, error) {
	if len(records) < 2 {
		return nil, d.ErrEmpty
	}

	header := records[0]
	var cols []*d.Col
	for c := range header {
		name := strings.TrimSpace(strings.TrimPrefix(header[c], "\ufeff"))
		if name == "" {
			return nil, fmt.Errorf("blank header in column %d", c+1)
		}

		cells := make([]string, len(records)-1)
		for r := 1; r < len(records); r++ {
			cells[r-1] = strings.TrimSpace(records[r][c])
		}

		var (
			col *d.Col
			e   error
		)
		if col, e = d.NewCol(l.infer(cells), d.ColName(name)); e != nil {
			return nil, e
		}

		cols = append(cols, col)
	}

	return d.NewTable(cols...)
}

// infer returns []float64 if every non-missing cell is a number and []string otherwise.
// Missing cells become NaN or "".
func (l *loader) infer(cells []string) any {
	floats := make([]float64, len(cells))
	for ind, cell := range cells {
		if l.isMissing(cell) {
			floats[ind] = math.NaN()
			continue
		}

		f, e := strconv.ParseFloat(cell, 64)
		if e != nil {
			return l.asStrings(cells)
		}

		floats[ind] = f
	}

	return floats
}

func (l *loader) asStrings(cells []string) []string {
	out := make([]string, len(cells))
	for ind, cell := range cells {
		if !l.isMissing(cell) {
			out[ind] = cell
		}
	}

	return out
}

func (l *loader) isMissing(cell string) bool {
	for _, m := range l.missing {
		if cell == m {
			return true
		}
	}

	return false
}
