package gameservice

import (
	"bytes"
	"fmt"
	"io"

	gamedomain "github.com/Black-And-White-Club/crownkeeper/app/modules/game/domain"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ChartPalette holds the colours used for score charts.
type ChartPalette struct {
	Background drawing.Color
	TextColor  drawing.Color
	Lines      []drawing.Color
}

// DefaultPalette is a dark table-felt theme with gold for the first line.
var DefaultPalette = ChartPalette{
	Background: drawing.ColorFromHex("0f2a1d"),
	TextColor:  drawing.ColorFromHex("e8e2c9"),
	Lines: []drawing.Color{
		drawing.ColorFromHex("d4af37"),
		drawing.ColorFromHex("6fb1fc"),
		drawing.ColorFromHex("f27059"),
		drawing.ColorFromHex("9ee493"),
		drawing.ColorFromHex("c792ea"),
		drawing.ColorFromHex("f7b267"),
		drawing.ColorFromHex("4dd0e1"),
		drawing.ColorFromHex("ef9a9a"),
	},
}

// RenderScoreChart writes a PNG of the current game's running totals.
func (s *GameService) RenderScoreChart(w io.Writer) error {
	png, err := GenerateScoreChart(s.Snapshot(), DefaultPalette)
	if err != nil {
		return err
	}
	_, err = w.Write(png)
	return err
}

// GenerateScoreChart plots every player's cumulative score by round. Each
// line starts at zero before round one.
func GenerateScoreChart(g gamedomain.GameState, palette ChartPalette) ([]byte, error) {
	if len(g.Players) == 0 || len(g.Rounds) == 0 {
		return renderNoDataPlaceholder(palette)
	}

	cumulative := CumulativeScores(g)
	maxTotal := 10.0
	series := make([]chart.Series, 0, len(g.Players))

	for i, p := range g.Players {
		totals := cumulative[p.ID]
		xValues := make([]float64, len(totals)+1)
		yValues := make([]float64, len(totals)+1)
		for r, total := range totals {
			xValues[r+1] = float64(r + 1)
			yValues[r+1] = float64(total)
			if float64(total) > maxTotal {
				maxTotal = float64(total)
			}
		}

		color := palette.Lines[i%len(palette.Lines)]
		series = append(series, chart.ContinuousSeries{
			Name:    p.Name,
			XValues: xValues,
			YValues: yValues,
			Style: chart.Style{
				StrokeColor: color,
				StrokeWidth: 2,
				DotColor:    color,
				DotWidth:    3,
			},
		})
	}

	ticks := make([]chart.Tick, 0, len(g.Rounds)+1)
	for r := 0; r <= len(g.Rounds); r++ {
		label := ""
		if r > 0 {
			label = gamedomain.CardLabel(r)
		}
		ticks = append(ticks, chart.Tick{Value: float64(r), Label: label})
	}

	graph := chart.Chart{
		Width:  900,
		Height: 450,
		Background: chart.Style{
			FillColor: palette.Background,
			Padding:   chart.Box{Top: 20, Left: 20, Right: 20, Bottom: 20},
		},
		Canvas: chart.Style{
			FillColor: palette.Background,
		},
		XAxis: chart.XAxis{
			Name:  "Round (wild card)",
			Ticks: ticks,
			Range: &chart.ContinuousRange{Min: 0, Max: float64(len(g.Rounds))},
			Style: chart.Style{FontColor: palette.TextColor},
			NameStyle: chart.Style{
				FontColor: palette.TextColor,
			},
		},
		YAxis: chart.YAxis{
			Name:  "Total score",
			Range: &chart.ContinuousRange{Min: 0, Max: maxTotal},
			Style: chart.Style{FontColor: palette.TextColor},
			NameStyle: chart.Style{
				FontColor: palette.TextColor,
			},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render score chart: %w", err)
	}
	return buffer.Bytes(), nil
}

func renderNoDataPlaceholder(palette ChartPalette) ([]byte, error) {
	const (
		width  = 400
		height = 200
		msg    = "No rounds played yet"
	)

	graph := chart.Chart{
		Width:  width,
		Height: height,
		Background: chart.Style{
			FillColor: palette.Background,
		},
		Canvas: chart.Style{
			FillColor: palette.Background,
		},
		// Render refuses a chart without series.
		Series: []chart.Series{chart.ContinuousSeries{
			XValues: []float64{0, 1},
			YValues: []float64{0, 1},
			Style:   chart.Style{Hidden: true},
		}},
		Elements: []chart.Renderable{
			func(r chart.Renderer, cb chart.Box, chartDefaults chart.Style) {
				r.SetFontColor(palette.TextColor)
				r.SetFontSize(12.0)
				tb := r.MeasureText(msg)
				x := (cb.Width() - tb.Width()) / 2
				y := (cb.Height() + tb.Height()) / 2
				r.Text(msg, x, y)
			},
		},
	}
	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
