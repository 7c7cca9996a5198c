// Package report renders post-run artifacts: an interactive 3D view of the
// planned vs tracked trajectory and a PNG of the tracking error over time.
// Both are plain files; the engine has no live rendering surface.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/golang/geo/r3"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// TrajectoryData is everything the 3D chart shows. Arc may be empty when the
// landmarks never produced a valid reconstruction.
type TrajectoryData struct {
	Planned []r3.Vector
	Actual  []r3.Vector
	Arc     []r3.Vector
}

// WriteTrajectoryHTML renders the 3D trajectory chart to path, creating
// parent directories as needed.
func WriteTrajectoryHTML(path string, data TrajectoryData) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("report: create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: create %s: %w", path, err)
	}
	defer f.Close()
	return RenderTrajectory(f, data)
}

// RenderTrajectory writes the chart HTML to w.
func RenderTrajectory(w io.Writer, data TrajectoryData) error {
	line := charts.NewLine3D()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Trajectory Replay",
			Width:     "1000px",
			Height:    "800px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Trajectory Following",
			Subtitle: fmt.Sprintf("planned=%d actual=%d", len(data.Planned), len(data.Actual)),
		}),
		charts.WithXAxis3DOpts(opts.XAxis3D{Name: "X", Show: opts.Bool(true)}),
		charts.WithYAxis3DOpts(opts.YAxis3D{Name: "Y", Show: opts.Bool(true)}),
		charts.WithZAxis3DOpts(opts.ZAxis3D{Name: "Z", Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	line.AddSeries("planned", toChart3DData(data.Planned))
	line.AddSeries("actual", toChart3DData(data.Actual))
	if len(data.Arc) > 0 {
		line.AddSeries("bending arc", toChart3DData(data.Arc))
	}

	if err := line.Render(w); err != nil {
		return fmt.Errorf("report: render trajectory chart: %w", err)
	}
	return nil
}

func toChart3DData(points []r3.Vector) []opts.Chart3DData {
	data := make([]opts.Chart3DData, len(points))
	for i, p := range points {
		data[i] = opts.Chart3DData{Value: []interface{}{p.X, p.Y, p.Z}}
	}
	return data
}

// WriteErrorPNG plots the tracking-error history against observation ticks.
func WriteErrorPNG(path string, errs []float64) error {
	if len(errs) == 0 {
		return fmt.Errorf("report: no error history to plot")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("report: create output dir: %w", err)
	}

	p := plot.New()
	p.Title.Text = "Tracking Error"
	p.X.Label.Text = "Observation tick"
	p.Y.Label.Text = "Error"

	pts := make(plotter.XYs, len(errs))
	for i, e := range errs {
		pts[i].X = float64(i)
		pts[i].Y = e
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("report: build error line: %w", err)
	}
	line.Width = vg.Points(1)
	p.Add(line)

	if err := p.Save(10*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("report: save %s: %w", path, err)
	}
	return nil
}
