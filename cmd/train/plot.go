package main

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/keystone-data/landrate/internal/regressor"
)

// writeTrainingCurve renders per-epoch training and validation loss to a PNG.
func writeTrainingCurve(path string, hist regressor.History) error {
	p := plot.New()
	p.Title.Text = "Training curve"
	p.X.Label.Text = "epoch"
	p.Y.Label.Text = "MSE (rate units)"

	trainPts := make(plotter.XYs, len(hist.TrainLoss))
	for i, v := range hist.TrainLoss {
		trainPts[i] = plotter.XY{X: float64(i), Y: v}
	}
	trainLine, err := plotter.NewLine(trainPts)
	if err != nil {
		return fmt.Errorf("train line: %w", err)
	}
	trainLine.Width = vg.Points(1)
	trainLine.Color = color.RGBA{B: 255, A: 255}
	p.Add(trainLine)
	p.Legend.Add("train", trainLine)

	if len(hist.ValLoss) > 0 {
		valPts := make(plotter.XYs, len(hist.ValLoss))
		for i, v := range hist.ValLoss {
			valPts[i] = plotter.XY{X: float64(i), Y: v}
		}
		valLine, err := plotter.NewLine(valPts)
		if err != nil {
			return fmt.Errorf("validation line: %w", err)
		}
		valLine.Width = vg.Points(1)
		valLine.Color = color.RGBA{R: 255, A: 255}
		p.Add(valLine)
		p.Legend.Add("validation", valLine)
	}

	return p.Save(10*vg.Inch, 5*vg.Inch, path)
}
