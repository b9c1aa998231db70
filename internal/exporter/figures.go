package exporter

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Kalmbyy/retail-dashboard/pkg/contracts/domain"
)

// ChartKind names one figure of the static report
type ChartKind string

const (
	ChartRanking ChartKind = "ranking"
	ChartTreemap ChartKind = "treemap"
	ChartTrend   ChartKind = "trend"
	ChartHeatmap ChartKind = "heatmap"
)

// Figure is a Plotly figure specification
type Figure struct {
	Kind   ChartKind        `json:"kind"`
	Title  string           `json:"title"`
	Data   []map[string]any `json:"data"`
	Layout map[string]any   `json:"layout"`
}

// FigureBuilder turns the report input into one figure
type FigureBuilder func(ctx context.Context, in ReportInput) (Figure, error)

// DefaultFigures returns the builders of the four dashboard charts in display order
func DefaultFigures() []NamedFigure {
	return []NamedFigure{
		{Kind: ChartRanking, Build: rankingFigure},
		{Kind: ChartTreemap, Build: treemapFigure},
		{Kind: ChartTrend, Build: trendFigure},
		{Kind: ChartHeatmap, Build: heatmapFigure},
	}
}

// NamedFigure binds a builder to its chart kind
type NamedFigure struct {
	Kind  ChartKind
	Build FigureBuilder
}

func layout(title string) map[string]any {
	return map[string]any{
		"title":    map[string]any{"text": title},
		"template": "plotly_white",
		"margin":   map[string]any{"l": 140, "r": 20, "t": 60, "b": 40},
	}
}

func rankingFigure(_ context.Context, in ReportInput) (Figure, error) {
	metric := in.Charts.Metric
	if metric == "" {
		metric = domain.MetricRetail
	}

	var order []int
	traces := map[int]map[string]any{}
	for _, row := range in.Charts.Ranking {
		tr, ok := traces[row.Year]
		if !ok {
			tr = map[string]any{
				"type":        "bar",
				"orientation": "h",
				"name":        formatYear(row.Year),
				"x":           []domain.NullFloat64{},
				"y":           []string{},
			}
			traces[row.Year] = tr
			order = append(order, row.Year)
		}
		tr["x"] = append(tr["x"].([]domain.NullFloat64), row.Value)
		tr["y"] = append(tr["y"].([]string), row.Brand)
	}

	data := make([]map[string]any, 0, len(order))
	for _, y := range order {
		data = append(data, traces[y])
	}

	title := "Brand ranking by " + metric.Label()
	l := layout(title)
	l["barmode"] = "group"
	l["xaxis"] = map[string]any{"title": map[string]any{"text": metric.Label()}}
	l["yaxis"] = map[string]any{"categoryorder": "total ascending"}
	l["legend"] = map[string]any{"title": map[string]any{"text": "Year"}}
	return Figure{Kind: ChartRanking, Title: title, Data: data, Layout: l}, nil
}

func treemapFigure(_ context.Context, in ReportInput) (Figure, error) {
	n := len(in.Charts.Treemap)
	labels := make([]string, 0, n)
	parents := make([]string, 0, n)
	values := make([]float64, 0, n)
	shares := make([]domain.NullFloat64, 0, n)
	for _, s := range in.Charts.Treemap {
		labels = append(labels, s.Brand)
		parents = append(parents, "")
		values = append(values, s.Retail)
		shares = append(shares, s.Share)
	}

	title := fmt.Sprintf("Top brands market share - %d", in.Charts.KPIYear)
	return Figure{
		Kind:  ChartTreemap,
		Title: title,
		Data: []map[string]any{{
			"type":          "treemap",
			"labels":        labels,
			"parents":       parents,
			"values":        values,
			"customdata":    shares,
			"hovertemplate": "%{label}<br>Retail: %{value:,.0f}<br>Share: %{customdata:.2f}%<extra></extra>",
		}},
		Layout: layout(title),
	}, nil
}

func trendFigure(_ context.Context, in ReportInput) (Figure, error) {
	data := make([]map[string]any, 0, len(in.Charts.Lines))
	for _, s := range in.Charts.Lines {
		x := make([]string, 0, len(s.Points))
		y := make([]float64, 0, len(s.Points))
		for _, p := range s.Points {
			x = append(x, formatYear(p.Year))
			y = append(y, p.Retail)
		}
		data = append(data, map[string]any{
			"type": "scatter",
			"mode": "lines+markers",
			"name": s.Brand,
			"x":    x,
			"y":    y,
		})
	}

	title := fmt.Sprintf("Trend: Retail (Units) - Top %d brands", len(in.Charts.Lines))
	l := layout(title)
	l["xaxis"] = map[string]any{"type": "category", "title": map[string]any{"text": "Year"}}
	l["yaxis"] = map[string]any{"title": map[string]any{"text": "Retail (Units)"}}
	return Figure{Kind: ChartTrend, Title: title, Data: data, Layout: l}, nil
}

func heatmapFigure(_ context.Context, in ReportInput) (Figure, error) {
	grid := in.Charts.Heatmap
	if len(grid.Values) != len(grid.Brands) {
		return Figure{}, fmt.Errorf("heatmap has %d rows for %d brands", len(grid.Values), len(grid.Brands))
	}
	for i, row := range grid.Values {
		if len(row) != len(grid.Years) {
			return Figure{}, fmt.Errorf("heatmap row %q has %d cells for %d years", grid.Brands[i], len(row), len(grid.Years))
		}
	}

	x := make([]string, 0, len(grid.Years))
	for _, y := range grid.Years {
		x = append(x, strconv.Itoa(y))
	}

	title := "Heatmap: Retail units"
	colorTitle := "Units"
	switch grid.Scale {
	case domain.HeatmapLog:
		title += " (log scale)"
		colorTitle = "log(1+units)"
	case domain.HeatmapNormalized:
		title += " (row-normalized)"
		colorTitle = "relative"
	}

	l := layout(title)
	l["xaxis"] = map[string]any{"type": "category", "title": map[string]any{"text": "Year"}}
	l["yaxis"] = map[string]any{"autorange": "reversed", "title": map[string]any{"text": "Brand"}}
	return Figure{
		Kind:  ChartHeatmap,
		Title: title,
		Data: []map[string]any{{
			"type":       "heatmap",
			"z":          grid.Values,
			"x":          x,
			"y":          grid.Brands,
			"colorscale": "Viridis",
			"colorbar":   map[string]any{"title": map[string]any{"text": colorTitle}},
		}},
		Layout: l,
	}, nil
}
