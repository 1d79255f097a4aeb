// Command rou-figures regenerates the study's figures: OU and reflected OU
// sample paths, the boundary local-time process, the empirical terminal
// distribution against the closed-form stationary law, the sample
// autocorrelation against its exponential decay, and a reflected 2D
// trajectory in the nonnegative orthant.
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/stochlab/rou-engine/internal/engine"
	"github.com/stochlab/rou-engine/internal/models"
	"github.com/stochlab/rou-engine/internal/utils"
)

var (
	signedColor    = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	reflectedColor = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	theoryColor    = color.RGBA{R: 44, G: 160, B: 44, A: 255}
)

func main() {
	var (
		outDir string
		seed   uint64
	)
	flag.StringVar(&outDir, "out", "figures", "Output directory for generated figures")
	flag.Uint64Var(&seed, "seed", 20240501, "Base seed for all simulations")
	flag.Parse()

	logger := utils.NewLogger("info", false)

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		logger.Error("failed to create output directory", slog.Any("error", err))
		os.Exit(1)
	}

	steps := []struct {
		name string
		run  func(dir string, seed uint64) error
	}{
		{"ou_path.png", ouPathFigure},
		{"rou_local_time.png", localTimeFigure},
		{"stationary_density.png", stationaryDensityFigure},
		{"acf.png", acfFigure},
		{"rou_2d.png", orthantFigure},
	}
	for _, step := range steps {
		if err := step.run(outDir, seed); err != nil {
			logger.Error("figure generation failed", slog.String("figure", step.name), slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("figure written", slog.String("path", filepath.Join(outDir, step.name)))
	}
}

// ouPathFigure overlays one signed OU path with its absolute-value
// reflection.
func ouPathFigure(dir string, seed uint64) error {
	params := models.NewScalarParameters(0.7, 0, 0.3)
	grid := models.SimulationGrid{T: 20, N: 4000}

	integrator, err := engine.NewIntegrator(params, grid, seed)
	if err != nil {
		return err
	}
	path, err := integrator.Integrate([]float64{-1})
	if err != nil {
		return err
	}
	reflected := engine.Reflect(path)

	p := plot.New()
	p.Title.Text = "OU path and absolute-value reflection"
	p.X.Label.Text = "t"
	p.Y.Label.Text = "X(t)"
	p.Add(plotter.NewGrid())

	times := grid.Times()
	signedLine, err := plotter.NewLine(seriesXY(times, path, 0))
	if err != nil {
		return err
	}
	signedLine.Color = signedColor
	reflectedLine, err := plotter.NewLine(seriesXY(times, models.Path(reflected), 0))
	if err != nil {
		return err
	}
	reflectedLine.Color = reflectedColor

	p.Add(signedLine, reflectedLine)
	p.Legend.Add("signed", signedLine)
	p.Legend.Add("|X|", reflectedLine)
	p.Legend.Top = true

	return p.Save(7*vg.Inch, 4*vg.Inch, filepath.Join(dir, "ou_path.png"))
}

// localTimeFigure plots the negative-excursion local-time proxy accumulated
// along one signed path.
func localTimeFigure(dir string, seed uint64) error {
	params := models.NewScalarParameters(0.7, 0, 0.3)
	grid := models.SimulationGrid{T: 20, N: 4000}

	integrator, err := engine.NewIntegrator(params, grid, seed+1)
	if err != nil {
		return err
	}
	path, err := integrator.Integrate([]float64{-1})
	if err != nil {
		return err
	}
	localTime, err := engine.AccumulateLocalTime(path, grid.Dt())
	if err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = "Boundary local time (negative-excursion proxy)"
	p.X.Label.Text = "t"
	p.Y.Label.Text = "L(t)"
	p.Add(plotter.NewGrid())

	times := grid.Times()
	xys := make(plotter.XYs, len(localTime))
	for i, v := range localTime {
		xys[i].X = times[i]
		xys[i].Y = v
	}
	line, err := plotter.NewLine(xys)
	if err != nil {
		return err
	}
	line.Color = signedColor
	p.Add(line)

	return p.Save(7*vg.Inch, 4*vg.Inch, filepath.Join(dir, "rou_local_time.png"))
}

// stationaryDensityFigure compares the empirical terminal density of a
// 10,000-path ensemble with the closed-form stationary normal law.
func stationaryDensityFigure(dir string, seed uint64) error {
	const (
		theta = 0.7
		mu    = 0.0
		sigma = 0.3
	)
	params := models.NewScalarParameters(theta, mu, sigma)
	grid := models.SimulationGrid{T: 50, N: 2500}

	ensemble, err := engine.RunEnsemble(params, grid, []float64{mu}, 10000, true, seed+2)
	if err != nil {
		return err
	}
	sample, err := engine.TerminalComponent(ensemble, 0)
	if err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Terminal distribution at T=%g vs stationary law", grid.T)
	p.X.Label.Text = "x"
	p.Y.Label.Text = "density"

	hist, err := plotter.NewHist(plotter.Values(sample), 40)
	if err != nil {
		return err
	}
	hist.Normalize(1)
	p.Add(hist)

	stationary, err := engine.StationaryNormal(theta, mu, sigma)
	if err != nil {
		return err
	}
	pdf := plotter.NewFunction(stationary.Prob)
	pdf.Samples = 250
	pdf.Color = theoryColor
	p.Add(pdf)
	p.Legend.Add("N(mu, sigma^2/2theta)", pdf)
	p.Legend.Top = true

	return p.Save(7*vg.Inch, 4*vg.Inch, filepath.Join(dir, "stationary_density.png"))
}

// acfFigure plots the sample autocorrelation of one long path against the
// theoretical decay e^{-theta tau}.
func acfFigure(dir string, seed uint64) error {
	const (
		theta = 0.7
		dt    = 0.02
	)
	params := models.NewScalarParameters(theta, 0, 0.3)
	grid := models.SimulationGrid{T: 2000, N: 100000}

	integrator, err := engine.NewIntegrator(params, grid, seed+3)
	if err != nil {
		return err
	}
	path, err := integrator.Integrate([]float64{0})
	if err != nil {
		return err
	}

	maxLag := int(6 / dt)
	acf, err := engine.Autocorrelation(path.Component(0), maxLag)
	if err != nil {
		return err
	}
	theory, err := engine.TheoreticalACF(theta, dt, maxLag)
	if err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = "Sample autocorrelation vs exp(-theta tau)"
	p.X.Label.Text = "tau"
	p.Y.Label.Text = "rho(tau)"
	p.Add(plotter.NewGrid())

	empirical := make(plotter.XYs, len(acf))
	theoretical := make(plotter.XYs, len(theory))
	for i := range acf {
		empirical[i].X = float64(acf[i].Lag) * dt
		empirical[i].Y = acf[i].Rho
		theoretical[i].X = float64(theory[i].Lag) * dt
		theoretical[i].Y = theory[i].Rho
	}

	empiricalLine, err := plotter.NewLine(empirical)
	if err != nil {
		return err
	}
	empiricalLine.Color = signedColor
	theoryLine, err := plotter.NewLine(theoretical)
	if err != nil {
		return err
	}
	theoryLine.Color = theoryColor
	theoryLine.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}

	p.Add(empiricalLine, theoryLine)
	p.Legend.Add("empirical", empiricalLine)
	p.Legend.Add("theoretical", theoryLine)
	p.Legend.Top = true

	return p.Save(7*vg.Inch, 4*vg.Inch, filepath.Join(dir, "acf.png"))
}

// orthantFigure traces a 2D reflected trajectory in the nonnegative orthant.
func orthantFigure(dir string, seed uint64) error {
	params, err := models.NewParameters(
		[][]float64{{1.0, 0.3}, {0.2, 0.8}},
		[]float64{1, 1.5},
		[][]float64{{0.5, 0}, {0, 0.5}},
	)
	if err != nil {
		return err
	}
	grid := models.SimulationGrid{T: 10, N: 4000}

	integrator, err := engine.NewIntegrator(params, grid, seed+4)
	if err != nil {
		return err
	}
	path, err := integrator.Integrate([]float64{-1, -2})
	if err != nil {
		return err
	}
	reflected := engine.Reflect(path)

	p := plot.New()
	p.Title.Text = "Reflected 2D OU trajectory"
	p.X.Label.Text = "X1"
	p.Y.Label.Text = "X2"
	p.Add(plotter.NewGrid())

	xys := make(plotter.XYs, len(reflected))
	for i, row := range reflected {
		xys[i].X = row[0]
		xys[i].Y = row[1]
	}
	line, err := plotter.NewLine(xys)
	if err != nil {
		return err
	}
	line.Color = reflectedColor
	p.Add(line)

	return p.Save(6*vg.Inch, 6*vg.Inch, filepath.Join(dir, "rou_2d.png"))
}

func seriesXY(times []float64, path models.Path, component int) plotter.XYs {
	xys := make(plotter.XYs, len(path))
	for i, row := range path {
		xys[i].X = times[i]
		xys[i].Y = row[component]
	}
	return xys
}
