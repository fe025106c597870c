// Package fixtures builds raw NICS and census tables, in the layout of the public files, for tests.
package fixtures

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	d "github.com/invertedv/nicsdf"
	"github.com/invertedv/nicsdf/census"
	"github.com/invertedv/nicsdf/nics"
)

// Check is one month of checks for a region. Counters not named here are 0.
type Check struct {
	Month   string
	State   string
	Handgun float64
	LongGun float64
	Totals  float64
}

// Nics returns a raw NICS table with a row for each check, in the column order of the public file.
func Nics(checks ...Check) *d.Table {
	month := make([]string, len(checks))
	state := make([]string, len(checks))
	for ind, c := range checks {
		month[ind], state[ind] = c.Month, c.State
	}

	cols := []*d.Col{mustCol(month, nics.PeriodColumn), mustCol(state, nics.RegionColumn)}
	for _, name := range nics.Counters {
		x := make([]float64, len(checks))
		for ind, c := range checks {
			switch name {
			case "handgun":
				x[ind] = c.Handgun
			case "long_gun":
				x[ind] = c.LongGun
			case nics.TotalsColumn:
				x[ind] = c.Totals
			}
		}

		cols = append(cols, mustCol(x, name))
	}

	return mustTable(cols...)
}

// NicsCSV is Nics as the text of a csv file. Missing counts are empty fields.
func NicsCSV(checks ...Check) string {
	return csvText(Nics(checks...))
}

// StatesChecks returns one check per state for each month, with totals equal to base plus the
// index of the state.
func StatesChecks(base float64, months ...string) []Check {
	var checks []Check
	for _, m := range months {
		for ind, s := range d.USStates {
			checks = append(checks, Check{Month: m, State: TitleCase(s), Handgun: 1, LongGun: 1, Totals: base + float64(ind)})
		}
	}

	return checks
}

// Cell overrides the raw text of one census attribute of one state.
type Cell struct {
	State string
	Attr  string
	Value string
}

// Census returns a raw census facts table: a Fact column, a sparse Fact Note column and a column
// for each state, plus rows the cleaner must discard (an unused fact, an exact duplicate, notes and
// blank rows). The fractional states carry their percent facts as fractions.
func Census(cells ...Cell) *d.Table {
	override := make(map[string]string)
	for _, c := range cells {
		override[strings.ToLower(c.State)+"|"+c.Attr] = c.Value
	}

	var facts, notes []string
	values := make([][]string, len(d.USStates))
	addRow := func(fact, note string, val func(state int) string) {
		facts = append(facts, fact)
		notes = append(notes, note)
		for s := range d.USStates {
			values[s] = append(values[s], val(s))
		}
	}

	for ind, f := range census.DefaultFacts {
		name := f.Name
		note := ""
		if ind == 2 {
			note = "(a)"
		}

		addRow(f.Label, note, func(s int) string {
			if v, ok := override[d.USStates[s]+"|"+name]; ok {
				return v
			}

			return defaultValue(name, s)
		})

		if ind == 0 {
			addRow("White alone, percent, July 1, 2016,  (V2016)", "", func(int) string { return "70.0%" })
			// exact duplicate
			addRow(f.Label, "", func(s int) string {
				if v, ok := override[d.USStates[s]+"|"+name]; ok {
					return v
				}

				return defaultValue(name, s)
			})
		}
	}

	addRow("FIPS Code", "", func(s int) string { return fmt.Sprintf("%02d", s+1) })
	addRow("NOTE: FIPS Code values are enclosed in quotes", "", func(int) string { return "" })
	addRow("", "", func(int) string { return "" })
	addRow("Value Notes", "", func(int) string { return "" })

	cols := []*d.Col{mustCol(facts, census.FactColumn), mustCol(notes, census.NoteColumn)}
	for s, st := range d.USStates {
		cols = append(cols, mustCol(values[s], TitleCase(st)))
	}

	return mustTable(cols...)
}

// CensusCSV is Census as the text of a csv file.
func CensusCSV(cells ...Cell) string {
	return csvText(Census(cells...))
}

func defaultValue(name string, state int) string {
	fractional := false
	for _, fs := range census.FractionalStates {
		if fs == d.USStates[state] {
			fractional = true
		}
	}

	pct := func(v float64) string {
		if fractional {
			return fmt.Sprintf("%g", v/100)
		}

		return fmt.Sprintf("%.1f%%", v)
	}

	switch name {
	case "population_2016":
		return commas(1000000 + 1000*state)
	case "population_2010":
		return commas(900000 + 1000*state)
	case "percent_change_population":
		return pct(5)
	case "percent_over_65_2016":
		return "15.0%"
	case "percent_over_65_2010":
		return "13.0%"
	case "hs_diploma_percentage":
		return pct(88)
	case "bachelors_degree_percentage":
		return pct(30)
	case "uninsured_percentage":
		return "9.0%"
	case "total_employment_percentage":
		return pct(63)
	case "female_employment_percentage":
		return pct(58)
	case "median_income":
		return "$" + commas(50000+100*state)
	case "income_per_capita":
		return "$" + commas(27000+50*state)
	case "poverty_percentage":
		return pct(12)
	case "number_of_employers":
		return commas(100000 + 10*state)
	case "population_density":
		return "100.5"
	case "land_area":
		return "50,000.25"
	}

	return ""
}

func commas(n int) string {
	s := fmt.Sprintf("%d", n)
	var out []byte
	for ind := range s {
		if ind > 0 && (len(s)-ind)%3 == 0 {
			out = append(out, ',')
		}

		out = append(out, s[ind])
	}

	return string(out)
}

// TitleCase capitalizes each word: "new hampshire" becomes "New Hampshire".
func TitleCase(s string) string {
	words := strings.Fields(s)
	for ind, w := range words {
		words[ind] = strings.ToUpper(w[:1]) + w[1:]
	}

	return strings.Join(words, " ")
}

func csvText(t *d.Table) string {
	var sb strings.Builder
	sb.WriteString(strings.Join(quoteAll(t.ColumnNames()), ",") + "\n")
	for r := 0; r < t.RowCount(); r++ {
		var fields []string
		for _, el := range t.Row(r) {
			switch x := el.(type) {
			case float64:
				if math.IsNaN(x) {
					fields = append(fields, "")
					continue
				}

				fields = append(fields, strconv.FormatFloat(x, 'f', -1, 64))
			case string:
				fields = append(fields, quote(x))
			default:
				fields = append(fields, fmt.Sprintf("%v", x))
			}
		}

		sb.WriteString(strings.Join(fields, ",") + "\n")
	}

	return sb.String()
}

func quoteAll(s []string) []string {
	out := make([]string, len(s))
	for ind, x := range s {
		out[ind] = quote(x)
	}

	return out
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func mustCol(data any, name string) *d.Col {
	c, e := d.NewCol(data, d.ColName(name))
	if e != nil {
		panic(e)
	}

	return c
}

func mustTable(cols ...*d.Col) *d.Table {
	t, e := d.NewTable(cols...)
	if e != nil {
		panic(e)
	}

	return t
}
