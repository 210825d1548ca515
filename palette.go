package starmap

import (
	"image/color"
	"math"
	"strings"
)

// genreHues maps genre substrings to hues in degrees. The first matching
// substring wins; order matters (more specific entries first).
var genreHues = []struct {
	substr string
	hue    float64
}{
	{"black metal", 260},
	{"death metal", 0},
	{"metal", 10},
	{"punk", 20},
	{"hardcore", 15},
	{"indie", 165},
	{"folk", 95},
	{"country", 80},
	{"blues", 225},
	{"jazz", 45},
	{"soul", 35},
	{"funk", 40},
	{"hip hop", 300},
	{"rap", 290},
	{"trap", 280},
	{"house", 190},
	{"techno", 185},
	{"trance", 200},
	{"electro", 195},
	{"ambient", 210},
	{"synth", 175},
	{"pop", 320},
	{"rock", 140},
	{"classical", 55},
	{"reggae", 110},
	{"latin", 25},
	{"r&b", 330},
}

// defaultHue is used when no genre substring matches.
const defaultHue = 215

// hueForGenres returns the hue for the first matching genre substring.
func hueForGenres(genres []string) float64 {
	for _, g := range genres {
		lower := strings.ToLower(g)
		for _, entry := range genreHues {
			if strings.Contains(lower, entry.substr) {
				return entry.hue
			}
		}
	}
	return defaultHue
}

// Tier override hues. Hidden gems render teal, drift nodes coral, both
// blended by node brightness. Seeds use a fixed gold palette regardless of
// score.
const (
	hiddenGemHue = 172 // teal
	driftHue     = 12  // coral
	seedHue      = 46  // gold
)

// hslToColor converts HSL (h in degrees, s and l in [0,1]) to a Color.
func hslToColor(h, s, l float64) Color {
	h = math.Mod(math.Mod(h, 360)+360, 360) / 360

	if s == 0 {
		return Color{R: l, G: l, B: l, A: 1}
	}

	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q

	return Color{
		R: hueToChannel(p, q, h+1.0/3.0),
		G: hueToChannel(p, q, h),
		B: hueToChannel(p, q, h-1.0/3.0),
		A: 1,
	}
}

func hueToChannel(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6.0:
		return p + (q-p)*6*t
	case t < 1.0/2.0:
		return q
	case t < 2.0/3.0:
		return p + (q-p)*(2.0/3.0-t)*6
	default:
		return p
	}
}

// nodePalette derives body and glow colors for a node from its genres, tier
// and brightness. Seed nodes ignore genre and score entirely.
func nodePalette(kind NodeKind, tier NodeTier, genres []string, brightness float64) (body, glow Color) {
	if kind == KindSeed {
		body = hslToColor(seedHue, 0.92, 0.62)
		glow = hslToColor(seedHue, 1.0, 0.72)
		return body, glow
	}

	switch tier {
	case TierHiddenGem:
		l := lerp(0.38, 0.62, brightness)
		body = hslToColor(hiddenGemHue, 0.75, l)
		glow = hslToColor(hiddenGemHue, 0.85, l+0.12)
	case TierDrift:
		l := lerp(0.30, 0.52, brightness)
		body = hslToColor(driftHue, 0.65, l)
		glow = hslToColor(driftHue, 0.70, l+0.10)
	default:
		hue := hueForGenres(genres)
		l := lerp(0.42, 0.66, brightness)
		body = hslToColor(hue, 0.70, l)
		glow = hslToColor(hue, 0.80, l+0.14)
	}
	return body, glow
}

// clusterColor assigns a hue to a cluster by index when the aggregation
// service supplied none (zero-value color).
func clusterColor(index int) Color {
	// Golden-angle spacing keeps adjacent clusters visually distinct.
	hue := math.Mod(float64(index)*137.5, 360)
	return hslToColor(hue, 0.60, 0.55)
}

// toRGBA converts a Color to a premultiplied color.RGBA.
func (c Color) toRGBA() color.RGBA {
	a := clamp(c.A, 0, 1)
	return color.RGBA{
		R: uint8(clamp(c.R, 0, 1) * a * 255),
		G: uint8(clamp(c.G, 0, 1) * a * 255),
		B: uint8(clamp(c.B, 0, 1) * a * 255),
		A: uint8(a * 255),
	}
}
