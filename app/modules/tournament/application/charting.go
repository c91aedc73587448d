package tournamentservice

import (
	"bytes"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	tournamentdomain "github.com/axi1912/Easy-Customs/app/modules/tournament/domain"
)

// ChartPalette holds the colors used for rendering the standings chart.
type ChartPalette struct {
	Background drawing.Color
	Bar        drawing.Color
	Leader     drawing.Color
	Text       drawing.Color
}

// DefaultChartPalette is a dark theme that reads well inside chat embeds.
var DefaultChartPalette = ChartPalette{
	Background: drawing.ColorFromHex("1e1f22"),
	Bar:        drawing.ColorFromHex("5865f2"),
	Leader:     drawing.ColorFromHex("f0b232"),
	Text:       drawing.ColorFromHex("dbdee1"),
}

const noResultsLabel = "No results yet"

// RenderStandingsChart produces a PNG bar chart of total scores in rank order.
func RenderStandingsChart(standings []tournamentdomain.TeamStanding, palette ChartPalette) ([]byte, error) {
	title := "Standings"
	if len(standings) == 0 {
		// go-chart cannot render a chart without series, so show one empty bar
		title = "Standings (no results yet)"
		standings = []tournamentdomain.TeamStanding{{TeamName: noResultsLabel}}
	}

	bars := make([]chart.Value, 0, len(standings))
	for i, st := range standings {
		fill := palette.Bar
		if i == 0 {
			fill = palette.Leader
		}
		bars = append(bars, chart.Value{
			Label: st.TeamName,
			Value: float64(st.TotalScore),
			Style: chart.Style{
				FillColor:   fill,
				StrokeColor: fill,
			},
		})
	}

	graph := chart.BarChart{
		Title:  title,
		Width:  max(400, 90*len(bars)),
		Height: 400,
		TitleStyle: chart.Style{
			FontColor: palette.Text,
		},
		Background: chart.Style{
			FillColor: palette.Background,
			Padding:   chart.Box{Top: 40},
		},
		Canvas: chart.Style{
			FillColor: palette.Background,
		},
		XAxis: chart.Style{
			FontColor: palette.Text,
		},
		YAxis: chart.YAxis{
			Style: chart.Style{
				FontColor: palette.Text,
			},
		},
		BarWidth: 50,
		Bars:     bars,
	}
	if allEqual(standings) {
		// a constant series has no range to draw
		graph.YAxis.Range = &chart.ContinuousRange{Min: 0, Max: float64(max(standings[0].TotalScore, 0)) + 1}
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func allEqual(standings []tournamentdomain.TeamStanding) bool {
	for _, st := range standings {
		if st.TotalScore != standings[0].TotalScore {
			return false
		}
	}
	return true
}
