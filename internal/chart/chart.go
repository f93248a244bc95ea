package chart

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"cryptodash/internal/types"
	"cryptodash/lib/format"
)

var seriesColor = drawing.Color{R: 0, G: 122, B: 255, A: 255}

// Render draws the price-history line chart of the detail view as a PNG.
func Render(name, symbol string, days int, points []types.PricePoint) ([]byte, error) {
	if len(points) < 2 {
		return nil, errors.New("not enough data points to render chart")
	}

	xValues := make([]time.Time, len(points))
	yValues := make([]float64, len(points))
	for i, p := range points {
		xValues[i] = time.UnixMilli(p.Timestamp)
		yValues[i] = p.Price
	}

	minPrice, maxPrice := minMax(yValues)
	padding := (maxPrice - minPrice) * 0.1

	graph := chart.Chart{
		Title:  fmt.Sprintf("%s (%s) %d days price chart", name, strings.ToUpper(symbol), days),
		Width:  1200,
		Height: 500,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat("02-Jan"),
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{
				Min: minPrice - padding,
				Max: maxPrice + padding,
			},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return format.Price(f)
				}
				return ""
			},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    strings.ToUpper(symbol),
				XValues: xValues,
				YValues: yValues,
				Style: chart.Style{
					StrokeColor: seriesColor,
					FillColor:   seriesColor.WithAlpha(35),
				},
			},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, errors.Wrap(err, "failed to render chart")
	}
	return buf.Bytes(), nil
}

func minMax(values []float64) (min, max float64) {
	min, max = values[0], values[0]
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}
