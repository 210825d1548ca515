package starmap

import (
	"math"
	"testing"
)

func TestHueForGenres(t *testing.T) {
	tests := []struct {
		name   string
		genres []string
		want   float64
	}{
		{"exact match", []string{"jazz"}, 45},
		{"substring match", []string{"acid jazz fusion"}, 45},
		{"first entry wins", []string{"black metal"}, 260},
		{"specific beats general", []string{"death metal"}, 0},
		{"case insensitive", []string{"Dream POP"}, 320},
		{"first genre wins", []string{"techno", "jazz"}, 185},
		{"no match", []string{"sea shanty"}, defaultHue},
		{"empty", nil, defaultHue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hueForGenres(tt.genres); got != tt.want {
				t.Errorf("hueForGenres(%v) = %v, want %v", tt.genres, got, tt.want)
			}
		})
	}
}

func TestHslToColorRange(t *testing.T) {
	for h := 0.0; h < 720; h += 37 {
		c := hslToColor(h, 0.8, 0.5)
		for _, v := range []float64{c.R, c.G, c.B} {
			if v < 0 || v > 1 {
				t.Fatalf("hslToColor(%v) channel %v out of range", h, v)
			}
		}
		if c.A != 1 {
			t.Fatalf("alpha = %v, want 1", c.A)
		}
	}

	gray := hslToColor(123, 0, 0.5)
	if gray.R != 0.5 || gray.G != 0.5 || gray.B != 0.5 {
		t.Errorf("zero saturation should be gray, got %+v", gray)
	}
}

func TestNodePaletteSeedIgnoresGenres(t *testing.T) {
	a, _ := nodePalette(KindSeed, TierNormal, []string{"jazz"}, 0.2)
	b, _ := nodePalette(KindSeed, TierNormal, []string{"techno"}, 0.9)
	if a != b {
		t.Error("seed palette must not vary with genre or brightness")
	}
}

func TestNodePaletteBrightnessLightens(t *testing.T) {
	dim, _ := nodePalette(KindRecommendation, TierNormal, []string{"jazz"}, 0.1)
	bright, _ := nodePalette(KindRecommendation, TierNormal, []string{"jazz"}, 0.9)

	lum := func(c Color) float64 { return c.R + c.G + c.B }
	if lum(bright) <= lum(dim) {
		t.Errorf("brighter node should be lighter: %v vs %v", lum(bright), lum(dim))
	}
}

func TestClusterColorsDistinct(t *testing.T) {
	seen := map[Color]bool{}
	for i := 0; i < 8; i++ {
		c := clusterColor(i)
		if seen[c] {
			t.Fatalf("cluster %d repeats an earlier color", i)
		}
		seen[c] = true
	}
}

func TestToRGBAPremultiplies(t *testing.T) {
	c := Color{R: 1, G: 0.5, B: 0, A: 0.5}
	rgba := c.toRGBA()
	if rgba.A != 127 {
		t.Errorf("A = %d, want 127", rgba.A)
	}
	if math.Abs(float64(rgba.R)-127) > 1 {
		t.Errorf("R = %d, want ~127 (premultiplied)", rgba.R)
	}
	if math.Abs(float64(rgba.G)-63) > 1 {
		t.Errorf("G = %d, want ~63", rgba.G)
	}
}
