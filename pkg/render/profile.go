package render

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"math"

	"github.com/yumyai/protclass/pkg/embedding"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// ErrNoEmbedding is returned when a profile is requested for a result
// classified without an embedding.
var ErrNoEmbedding = errors.New("result has no embedding features")

type regionTicks struct{}

func (regionTicks) Ticks(min, max float64) []plot.Tick {
	var ticks []plot.Tick
	for i := int(math.Ceil(min)); i <= int(math.Floor(max)); i++ {
		ticks = append(ticks, plot.Tick{Value: float64(i), Label: fmt.Sprintf("R%d", i)})
	}
	return ticks
}

// ProfileSVG plots the per-region embedding means with the global mean as a
// dashed reference line.
func ProfileSVG(title string, f *embedding.Features) ([]byte, error) {
	if f == nil || len(f.Regions) == 0 {
		return nil, ErrNoEmbedding
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Embedding region"
	p.Y.Label.Text = "Mean activation"
	p.X.Tick.Marker = regionTicks{}
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(f.Regions))
	mean := make(plotter.XYs, len(f.Regions))
	for i, v := range f.Regions {
		pts[i].X = float64(i + 1)
		pts[i].Y = v
		mean[i].X = float64(i + 1)
		mean[i].Y = f.Mean
	}

	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return nil, err
	}
	line.LineStyle.Color = color.RGBA{R: 50, G: 100, B: 200, A: 255}
	line.LineStyle.Width = vg.Points(2)
	points.Color = line.LineStyle.Color

	meanLine, err := plotter.NewLine(mean)
	if err != nil {
		return nil, err
	}
	meanLine.Color = color.RGBA{R: 200, G: 50, B: 50, A: 255}
	meanLine.Width = vg.Points(1)
	meanLine.Dashes = []vg.Length{vg.Points(3), vg.Points(3)}

	p.Add(line, points, meanLine)
	p.Legend.Add("Region mean", line, points)
	p.Legend.Add("Global mean", meanLine)
	p.Legend.Top = true

	var buf bytes.Buffer
	writer, err := p.WriterTo(8*vg.Inch, 3*vg.Inch, "svg")
	if err != nil {
		return nil, err
	}
	if _, err := writer.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
