// Package charts renders spending visualizations to PNG images.
package charts

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/wcharczuk/go-chart/v2"

	"wealthpulse/internal/core"
)

var (
	ErrNoData        = errors.New("no data to chart")
	ErrTooFewPoints  = errors.New("timeline needs at least two days of data")
	ErrTooManySlices = errors.New("too many categories to chart")
)

const maxSlices = 24

// DailyTotal is one day of aggregated spending for timeline charts.
type DailyTotal struct {
	Day   core.Date
	Total core.Money
}

// Pie renders spending by category as a pie chart. Slice labels carry
// the category name and its share of the total.
func Pie(title string, byCategory []core.CategoryAmount) ([]byte, error) {
	if len(byCategory) == 0 {
		return nil, ErrNoData
	}
	if len(byCategory) > maxSlices {
		return nil, ErrTooManySlices
	}

	var total int64
	for _, ca := range byCategory {
		total += ca.Amount.Cents
	}
	if total <= 0 {
		return nil, ErrNoData
	}

	values := make([]chart.Value, 0, len(byCategory))
	for _, ca := range byCategory {
		if ca.Amount.Cents <= 0 {
			continue
		}
		share := float64(ca.Amount.Cents) / float64(total) * 100
		values = append(values, chart.Value{
			Value: float64(ca.Amount.Cents) / 100,
			Label: fmt.Sprintf("%s %.1f%%", ca.Name, share),
		})
	}
	if len(values) == 0 {
		return nil, ErrNoData
	}

	pie := chart.PieChart{
		Title:  title,
		Width:  640,
		Height: 640,
		Values: values,
	}
	return render(pie.Render)
}

// Timeline renders daily spending totals as a line chart. Points must be
// in ascending day order.
func Timeline(title string, points []DailyTotal) ([]byte, error) {
	if len(points) == 0 {
		return nil, ErrNoData
	}
	if len(points) < 2 {
		return nil, ErrTooFewPoints
	}

	xs := make([]time.Time, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.Day.Time
		ys[i] = float64(p.Total.Cents) / 100
	}

	graph := chart.Chart{
		Title:  title,
		Width:  960,
		Height: 480,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "daily total",
				XValues: xs,
				YValues: ys,
			},
		},
	}
	return render(graph.Render)
}

// Bar renders category totals side by side for comparison.
func Bar(title string, byCategory []core.CategoryAmount) ([]byte, error) {
	if len(byCategory) == 0 {
		return nil, ErrNoData
	}
	if len(byCategory) > maxSlices {
		return nil, ErrTooManySlices
	}

	bars := make([]chart.Value, 0, len(byCategory))
	for _, ca := range byCategory {
		bars = append(bars, chart.Value{
			Value: float64(ca.Amount.Cents) / 100,
			Label: ca.Name,
		})
	}

	graph := chart.BarChart{
		Title:    title,
		Width:    960,
		Height:   480,
		BarWidth: 48,
		Bars:     bars,
	}
	return render(graph.Render)
}

func render(fn func(chart.RendererProvider, io.Writer) error) ([]byte, error) {
	var buf bytes.Buffer
	if err := fn(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	return buf.Bytes(), nil
}
