package df

import (
	"fmt"
	"math"
	"os"
	"strings"
	"time"
)

// All code writing delimited files is here

const (
	Sep         = ','
	EOL         = '\n'
	StringDelim = '"'
	DateFormat  = "2006-01-02"
	FloatFormat = "%.2f"
	Header      = true
)

// Files holds the settings for reading and writing delimited files.
type Files struct {
	FieldNames  []string
	EOL         byte
	Sep         byte
	StringDelim byte
	DateFormat  string
	FloatFormat string
	Header      bool

	file *os.File
}

func NewFiles() *Files {
	f := &Files{
		EOL:         byte(EOL),
		Sep:         byte(Sep),
		StringDelim: byte(StringDelim),
		DateFormat:  DateFormat,
		FloatFormat: FloatFormat,
		Header:      Header,
	}

	return f
}

func (f *Files) Create(fileName string) error {
	var e error
	f.file, e = os.Create(fileName)

	return e
}

func (f *Files) Close() error {
	if f.file != nil {
		e := f.file.Close()
		f.file = nil
		return e
	}

	return fmt.Errorf("no open files")
}

func (f *Files) quote(s string) []byte {
	delim := string(f.StringDelim)
	s = strings.ReplaceAll(s, delim, delim+delim)

	return []byte(delim + s + delim)
}

// WriteLine writes one row. Missing floats are written as empty fields.
func (f *Files) WriteLine(v []any) error {
	var line []byte
	for ind := 0; ind < len(v); ind++ {
		var lx []byte
		switch d := v[ind].(type) {
		case float64:
			if !math.IsNaN(d) {
				lx = []byte(fmt.Sprintf(f.FloatFormat, d))
			}
		case int:
			lx = []byte(fmt.Sprintf("%v", d))
		case time.Time:
			lx = []byte(d.Format(f.DateFormat))
		case string:
			lx = f.quote(d)
		default:
			lx = []byte("#err#")
		}
		line = append(line, lx...)
		if ind < len(v)-1 {
			line = append(line, f.Sep)
		}
	}
	if _, e := f.file.Write(line); e != nil {
		return e
	}
	_, e := f.file.Write([]byte{f.EOL})

	return e
}

func (f *Files) WriteHeader() error {
	if !f.Header {
		return nil
	}

	if f.FieldNames == nil {
		return fmt.Errorf("field names not set in *Files")
	}

	var names []string
	for _, fn := range f.FieldNames {
		names = append(names, string(f.quote(fn)))
	}

	_, e := f.file.WriteString(strings.Join(names, string(rune(f.Sep))) + string(rune(f.EOL)))

	return e
}

// Save writes t to fileName and closes the file.
func (f *Files) Save(fileName string, t *Table) (err error) {
	if e := f.Create(fileName); e != nil {
		return e
	}
	defer func() {
		if e := f.Close(); e != nil && err == nil {
			err = e
		}
	}()

	f.FieldNames = t.ColumnNames()
	if e := f.WriteHeader(); e != nil {
		return e
	}

	for ind := 0; ind < t.RowCount(); ind++ {
		if e := f.WriteLine(t.Row(ind)); e != nil {
			return e
		}
	}

	return nil
}
