package load

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	d "github.com/invertedv/nicsdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeFile(t *testing.T, name, content string) string {
	fileName := filepath.Join(t.TempDir(), name)
	require.Nil(t, os.WriteFile(fileName, []byte(content), 0o644))

	return fileName
}

func TestLoad(t *testing.T) {
	fileName := writeFile(t, "checks.csv", "\ufeffmonth,state,handgun,\"Fact Note\"\n2017-09,Alabama,5734,\n2017-09,Guam,NA,(a)\n")

	tab, e := Load(context.Background(), fileName)
	require.Nil(t, e)
	assert.Equal(t, []string{"month", "state", "handgun", "Fact Note"}, tab.ColumnNames())
	assert.Equal(t, 2, tab.RowCount())

	assert.Equal(t, d.DTstring, tab.Column("month").DataType())
	assert.Equal(t, d.DTfloat, tab.Column("handgun").DataType())
	hg, _ := tab.Floats("handgun")
	assert.Equal(t, 5734.0, hg[0])
	assert.True(t, math.IsNaN(hg[1]))

	notes, _ := tab.Strings("Fact Note")
	assert.Equal(t, []string{"", "(a)"}, notes)
}

func TestLoad_Separator(t *testing.T) {
	fileName := writeFile(t, "checks.txt", "state|totals\nOhio|1,000\n")
	tab, e := Load(context.Background(), fileName, WithSeparator('|'))
	require.Nil(t, e)
	tot, _ := tab.Strings("totals")
	assert.Equal(t, []string{"1,000"}, tot)
}

func TestLoad_Errors(t *testing.T) {
	ctx := context.Background()
	var le *d.LoadError

	_, e := Load(ctx, filepath.Join(t.TempDir(), "nope.csv"))
	require.ErrorAs(t, e, &le)
	assert.ErrorIs(t, e, d.ErrNotFound)

	_, e = Load(ctx, writeFile(t, "ragged.csv", "a,b\n1,2\n3\n"))
	assert.ErrorAs(t, e, &le)
	assert.ErrorIs(t, e, d.ErrRagged)

	_, e = Load(ctx, writeFile(t, "empty.csv", ""))
	assert.ErrorIs(t, e, d.ErrEmpty)

	_, e = Load(ctx, writeFile(t, "header.csv", "a,b\n"))
	assert.ErrorIs(t, e, d.ErrEmpty)

	_, e = Load(ctx, writeFile(t, "dup.csv", "a,a\n1,2\n"))
	assert.ErrorAs(t, e, &le)

	_, e = Load(ctx, writeFile(t, "blank.csv", "a, \n1,2\n"))
	assert.ErrorAs(t, e, &le)
}

func TestLoad_XLSX(t *testing.T) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	require.Nil(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Fact", "Ohio", "Utah"}))
	require.Nil(t, f.SetSheetRow("Sheet1", "A2", &[]any{"Land area in square miles, 2010", "40,860.69", "82,169.62"}))
	// trailing empty cell is dropped by the writer
	require.Nil(t, f.SetSheetRow("Sheet1", "A3", &[]any{"FIPS Code", "39"}))

	fileName := filepath.Join(t.TempDir(), "census.xlsx")
	require.Nil(t, f.SaveAs(fileName))

	tab, e := Load(context.Background(), fileName)
	require.Nil(t, e)
	assert.Equal(t, []string{"Fact", "Ohio", "Utah"}, tab.ColumnNames())
	utah, _ := tab.Strings("Utah")
	assert.Equal(t, []string{"82,169.62", ""}, utah)

	_, e = Load(context.Background(), fileName, WithSheet("Sheet9"))
	var le *d.LoadError
	assert.ErrorAs(t, e, &le)
}
