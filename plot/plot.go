// Package plot draws line, scatter and bar charts of table columns as plotly HTML.
package plot

import (
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	grob "github.com/MetalBlueberry/go-plotly/graph_objects"
	"github.com/MetalBlueberry/go-plotly/offline"
	d "github.com/invertedv/nicsdf"
	"github.com/invertedv/nicsdf/stats"
	"gonum.org/v1/gonum/stat"
)

type Plot struct {
	Fig *grob.Fig
	Lay *grob.Layout
}

type Opt func(plot *Plot) *Plot

func NewPlot(opt ...Opt) *Plot {
	fig := &grob.Fig{}
	lay := &grob.Layout{}
	fig.Layout = lay
	p := &Plot{Fig: fig, Lay: lay}
	for _, o := range opt {
		o(p)
	}

	return p
}

func WithWidth(w float64) Opt {
	if w < 0.0 {
		panic(fmt.Errorf("negative width"))
	}
	return func(p *Plot) *Plot {
		p.Lay.Width = w
		return p
	}
}

func WithHeight(h float64) Opt {
	if h < 0.0 {
		panic(fmt.Errorf("negative height"))
	}
	return func(p *Plot) *Plot {
		p.Lay.Height = h
		return p
	}
}

func WithTitle(title string) Opt {
	return func(p *Plot) *Plot { p.Lay.Title = &grob.LayoutTitle{Text: title}; return p }
}

// WithSubtitle adds a line below the x-axis label
func WithSubtitle(subTitle string) Opt {
	return func(p *Plot) *Plot {
		xAxis := p.xAxis()
		xAxis.Title.Text = axisText(xAxis.Title.Text) + "<br>" + subTitle
		return p
	}
}

func WithLegend(show bool) Opt {
	return func(p *Plot) *Plot {
		if show {
			p.Lay.Showlegend = grob.True
		} else {
			p.Lay.Showlegend = grob.False
		}

		return p
	}
}

func WithXlabel(label string) Opt {
	return func(p *Plot) *Plot {
		xAxis := p.xAxis()

		subTitle := ""
		xLabel := axisText(xAxis.Title.Text)
		if ind := strings.Index(xLabel, "<br>"); ind >= 0 {
			subTitle = xLabel[ind:]
		}

		xAxis.Title.Text = label + subTitle
		return p
	}
}

func WithYlabel(label string) Opt {
	return func(p *Plot) *Plot {
		if p.Lay.Yaxis == nil {
			p.Lay.Yaxis = &grob.LayoutYaxis{}
		}
		if p.Lay.Yaxis.Title == nil {
			p.Lay.Yaxis.Title = &grob.LayoutYaxisTitle{}
		}

		p.Lay.Yaxis.Title.Text = label
		return p
	}
}

func (p *Plot) xAxis() *grob.LayoutXaxis {
	if p.Lay.Xaxis == nil {
		p.Lay.Xaxis = &grob.LayoutXaxis{}
	}

	if p.Lay.Xaxis.Title == nil {
		p.Lay.Xaxis.Title = &grob.LayoutXaxisTitle{Text: ""}
	}

	return p.Lay.Xaxis
}

func axisText(text any) string {
	if s, ok := text.(string); ok {
		return s
	}

	return ""
}

// PlotXY adds a line of y against x. x may be a float, int or date column; y must be numeric.
// Rows where either value is missing are skipped.
func (p *Plot) PlotXY(x, y *d.Col, seriesName, color string) error {
	xv, yv, e := points(x, y)
	if e != nil {
		return e
	}

	tr := &grob.Scatter{Name: seriesName, X: xv, Y: yv,
		Mode: grob.ScatterModeLines, Line: &grob.ScatterLine{Color: color}}

	p.Fig.AddTraces(tr)

	return nil
}

// Scatter adds the points of y against x. If fit is true the least squares line is added too.
func (p *Plot) Scatter(x, y *d.Col, seriesName, color string, fit bool) error {
	if x.DataType() == d.DTstring || x.DataType() == d.DTdate {
		return fmt.Errorf("scatter plots require a numeric x, got %s", x.DataType())
	}

	xs, ys, e := floatPairs(x, y)
	if e != nil {
		return e
	}

	p.Fig.AddTraces(&grob.Scatter{Name: seriesName, X: xs, Y: ys, Mode: grob.ScatterModeMarkers})

	if !fit || len(xs) < 2 {
		return nil
	}

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	if !finite(alpha) || !finite(beta) {
		return nil
	}

	lo, hi := xs[0], xs[0]
	for _, xv := range xs {
		lo, hi = min(lo, xv), max(hi, xv)
	}

	p.Fig.AddTraces(&grob.Scatter{Name: seriesName + " fit", X: []float64{lo, hi},
		Y: []float64{alpha + beta*lo, alpha + beta*hi}, Mode: grob.ScatterModeLines, Line: &grob.ScatterLine{Color: color}})

	return nil
}

// Bar adds a bar for each row. x is usually a string column.
func (p *Plot) Bar(x, y *d.Col, seriesName string) error {
	xv, yv, e := points(x, y)
	if e != nil {
		return e
	}

	p.Fig.AddTraces(&grob.Bar{Name: seriesName, X: xv, Y: yv})

	return nil
}

// Save writes the figure as a self-contained HTML page.
func (p *Plot) Save(fileName string) error {
	if dir := filepath.Dir(fileName); dir != "" {
		if e := os.MkdirAll(dir, os.ModePerm); e != nil {
			return e
		}
	}

	offline.ToHtml(p.Fig, fileName)

	if _, e := os.Stat(fileName); e != nil {
		return fmt.Errorf("plot not written to %s: %w", fileName, e)
	}

	return nil
}

// Show opens the figure in browser. If fileName is empty the figure is written to a temp file that
// is removed once the browser has loaded it.
func (p *Plot) Show(browser, fileName string) error {
	const nameLength = 8

	if browser == "" {
		browser = "xdg-open"
	}

	tmpFile := false
	if fileName == "" {
		fileName = tempFile("html", nameLength)
		tmpFile = true
	}

	if e := p.Save(fileName); e != nil {
		return e
	}

	cmd := exec.Command(browser, fileName)
	if e := cmd.Start(); e != nil {
		return e
	}

	time.Sleep(time.Second) // need to pause while browser loads graph

	if tmpFile {
		if e := os.Remove(fileName); e != nil {
			return e
		}
	}

	return nil
}

// *********** Helpers ***********

// points returns the x values as floats, ints, strings or dates formatted as in df.DateFormat, and
// the y values, dropping rows where either is missing.
func points(x, y *d.Col) (xOut, yOut any, err error) {
	if x.Len() != y.Len() {
		return nil, nil, fmt.Errorf("x has %d rows, y has %d", x.Len(), y.Len())
	}

	yv, e := y.AsFloat()
	if e != nil {
		return nil, nil, fmt.Errorf("y must be numeric: %w", e)
	}

	var (
		xs []any
		ys []float64
	)
	for ind := 0; ind < x.Len(); ind++ {
		if x.Missing(ind) || !finite(yv[ind]) {
			continue
		}

		el := x.Element(ind)
		if dt, ok := el.(time.Time); ok {
			el = dt.Format(d.DateFormat)
		}

		xs = append(xs, el)
		ys = append(ys, yv[ind])
	}

	return xs, ys, nil
}

func floatPairs(x, y *d.Col) (xs, ys []float64, err error) {
	var xv, yv []float64
	if xv, err = x.AsFloat(); err != nil {
		return nil, nil, err
	}

	if yv, err = y.AsFloat(); err != nil {
		return nil, nil, err
	}

	if len(xv) != len(yv) {
		return nil, nil, fmt.Errorf("x has %d rows, y has %d", len(xv), len(yv))
	}

	// xv may share the column's data
	xc := make([]float64, len(xv))
	for ind := range xv {
		xc[ind] = xv[ind]
		if !finite(xv[ind]) || !finite(yv[ind]) {
			xc[ind] = math.NaN()
		}
	}

	xs, ys = stats.Pairs(xc, yv)

	return xs, ys, nil
}

// finite values are the only ones plotly's JSON can carry.
func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// tempFile produces a random temp file name in the system's tmp location.
// The file has extension "ext". The file name begins with "tmp" has length 3 + length.
func tempFile(ext string, length int) string {
	return d.Slash(os.TempDir()) + "tmp" + d.RandomLetters(length) + "." + ext
}
