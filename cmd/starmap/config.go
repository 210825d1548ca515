package main

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// config is the viewer configuration, loadable from a TOML file. Every
// field has a sensible default so running with no file just works.
type config struct {
	WindowWidth  int    `toml:"window_width"`
	WindowHeight int    `toml:"window_height"`
	LowPower     bool   `toml:"low_power"`
	Seed         uint64 `toml:"seed"`

	// PreSettleTicks > 0 settles the layout before the first frame; 0
	// animates the settling on screen.
	PreSettleTicks int `toml:"pre_settle_ticks"`

	Watermark  string `toml:"watermark"`
	ShowPerf   bool   `toml:"show_perf"`
	CaptureDir string `toml:"capture_dir"`
}

func defaultConfig() config {
	return config{
		WindowWidth:  1280,
		WindowHeight: 800,
		Seed:         0x57a6,
		Watermark:    "starmap demo",
		CaptureDir:   "captures",
	}
}

// loadConfig returns defaults overlaid with the TOML file at path, when one
// is given.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}
	if cfg.WindowWidth <= 0 || cfg.WindowHeight <= 0 {
		return cfg, fmt.Errorf("load config %s: window size must be positive", path)
	}
	return cfg, nil
}
