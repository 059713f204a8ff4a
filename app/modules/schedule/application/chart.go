package scheduleservice

import (
	"bytes"
	"context"
	"fmt"

	scheduledomain "github.com/Black-And-White-Club/marathon-manager/app/modules/schedule/domain"
	"github.com/Black-And-White-Club/marathon-manager/app/shared/results"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	chartBarWidth   = 40
	chartBarSpacing = 12
	chartMinWidth   = 800
	chartHeight     = 400
)

// ScheduleChart renders a PNG bar chart of run estimates, in minutes, in
// schedule order.
func (s *ScheduleService) ScheduleChart(ctx context.Context, eventID string) ([]byte, error) {
	event, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	result, err := withTelemetry(s, ctx, "ScheduleChart", eventID, func(ctx context.Context) (results.OperationResult[[]byte, error], error) {
		if len(event.Runs) == 0 {
			return results.FailureResult[[]byte, error](ErrNoRuns), nil
		}
		png, err := renderEstimateChart(event)
		if err != nil {
			return results.OperationResult[[]byte, error]{}, err
		}
		return results.SuccessResult[[]byte, error](png), nil
	})
	return unwrap(result, err)
}

func renderEstimateChart(event *scheduledomain.Event) ([]byte, error) {
	bars := make([]chart.Value, len(event.Runs))
	longest := 1.0
	for i, run := range event.Runs {
		d, err := run.EstimateDuration()
		if err != nil {
			return nil, fmt.Errorf("run %q: %w", run.ID, err)
		}
		minutes := d.Minutes()
		if minutes > longest {
			longest = minutes
		}
		bars[i] = chart.Value{
			Value: minutes,
			Label: run.Game,
			Style: chart.Style{
				FillColor:   drawing.ColorFromHex("6441a5"),
				StrokeColor: drawing.ColorFromHex("392e5c"),
				StrokeWidth: 1,
			},
		}
	}

	width := len(bars)*(chartBarWidth+chartBarSpacing) + 200
	if width < chartMinWidth {
		width = chartMinWidth
	}

	graph := chart.BarChart{
		Title:  event.Name,
		Width:  width,
		Height: chartHeight,
		Background: chart.Style{
			Padding:   chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
			FillColor: drawing.ColorWhite,
		},
		BarWidth:   chartBarWidth,
		BarSpacing: chartBarSpacing,
		YAxis: chart.YAxis{
			Name:  "Minutes",
			Range: &chart.ContinuousRange{Min: 0, Max: longest},
		},
		Bars: bars,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
