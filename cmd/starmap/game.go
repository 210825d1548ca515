package main

import (
	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/stellarmaps/starmap"
)

// game adapts a starmap.View to the ebiten game loop and adds demo
// keyboard shortcuts: R resets the view, digits jump to clusters, +/-
// zoom, P screenshots, F toggles the perf overlay.
type game struct {
	view       *starmap.View
	cfg        config
	log        *log.Logger
	perf       *starmap.PerfOverlay
	clusterMax int
}

func (g *game) Update() error {
	dt := 1.0 / float64(ebiten.TPS())
	g.view.Advance(dt)
	if g.perf != nil {
		g.perf.Update(dt, g.view)
	}
	g.handleKeys()
	return nil
}

func (g *game) handleKeys() {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		g.view.ResetView()
	case inpututil.IsKeyJustPressed(ebiten.KeyEqual):
		g.view.ZoomBy(1.3)
	case inpututil.IsKeyJustPressed(ebiten.KeyMinus):
		g.view.ZoomBy(1 / 1.3)
	case inpututil.IsKeyJustPressed(ebiten.KeyF):
		if g.perf == nil {
			g.perf = starmap.NewPerfOverlay()
		} else {
			g.perf = nil
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyP):
		path, err := g.view.SaveCapture(g.cfg.CaptureDir, "starmap")
		if err != nil {
			g.log.Error("capture failed", "err", err)
		} else {
			g.log.Info("captured", "path", path)
		}
	}

	for i := 0; i < g.clusterMax && i < 9; i++ {
		if inpututil.IsKeyJustPressed(ebiten.Key1 + ebiten.Key(i)) {
			g.view.ZoomToCluster(i)
		}
	}
}

func (g *game) Draw(screen *ebiten.Image) {
	g.view.Draw(screen)
	if g.perf != nil {
		g.perf.Draw(screen)
	}
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.cfg.WindowWidth, g.cfg.WindowHeight
}
