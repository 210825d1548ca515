package starmap

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// PerfOverlay is a small debug widget showing frame rates and scene counts.
// It refreshes its text every ~0.5 seconds to stay readable.
type PerfOverlay struct {
	img        *ebiten.Image
	lastUpdate float64
}

// NewPerfOverlay creates the overlay with its backing image.
func NewPerfOverlay() *PerfOverlay {
	// 150x48 fits four short lines of DebugPrint text.
	return &PerfOverlay{img: ebiten.NewImage(150, 48)}
}

// Update advances the refresh timer and regenerates the text when due.
func (o *PerfOverlay) Update(dt float64, v *View) {
	o.lastUpdate += dt
	if o.lastUpdate < 0.5 {
		return
	}
	o.lastUpdate = 0

	o.img.Clear()
	// Semi-transparent background for readability
	o.img.Fill(color.RGBA{0, 0, 0, 128})

	g := v.Graph()
	nodes, links := 0, 0
	if g != nil {
		nodes, links = len(g.Nodes), len(g.Links)
	}
	ebitenutil.DebugPrint(o.img, fmt.Sprintf(
		"FPS: %.1f\nTPS: %.1f\nnodes: %d links: %d\nscale: %.2f",
		ebiten.ActualFPS(), ebiten.ActualTPS(), nodes, links, v.State().Transform.Scale))
}

// Draw blits the overlay into the top-left corner of dst.
func (o *PerfOverlay) Draw(dst *ebiten.Image) {
	var op ebiten.DrawImageOptions
	op.GeoM.Translate(8, 8)
	dst.DrawImage(o.img, &op)
}
