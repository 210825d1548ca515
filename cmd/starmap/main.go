// Command starmap opens an explorable artist map over a synthetic demo
// universe. It exists to exercise the library end to end: scoring, graph
// building, layout, camera, input and rendering.
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/cobra"

	"github.com/stellarmaps/starmap"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	if err := rootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	var (
		configPath string
		verbose    bool
		lowPower   bool
		seed       uint64
	)

	root := &cobra.Command{
		Use:          "starmap",
		Short:        "Explore a map of artists as a navigable star field",
		Version:      fmt.Sprintf("%s (%s)", version, commit),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			level := log.InfoLevel
			if verbose {
				level = log.DebugLevel
			}
			logger := log.NewWithOptions(os.Stderr, log.Options{
				ReportTimestamp: true,
				TimeFormat:      "15:04:05.00",
				Level:           level,
			})

			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("low-power") {
				cfg.LowPower = lowPower
			}
			if cmd.Flags().Changed("seed") {
				cfg.Seed = seed
			}

			return runViewer(cfg, logger)
		},
	}

	root.Flags().StringVarP(&configPath, "config", "c", "", "path to a TOML config file")
	root.Flags().BoolVar(&lowPower, "low-power", false, "throttle to the low-power frame rate")
	root.Flags().Uint64Var(&seed, "seed", 0, "procedural generation seed")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	return root
}

func runViewer(cfg config, logger *log.Logger) error {
	graph := demoUniverse(logger)

	view := starmap.NewView(graph, starmap.ViewOptions{
		ViewportW:      float64(cfg.WindowWidth),
		ViewportH:      float64(cfg.WindowHeight),
		LowPower:       cfg.LowPower,
		Seed:           cfg.Seed,
		PreSettleTicks: cfg.PreSettleTicks,
		Watermark:      cfg.Watermark,
		Logger:         logger,
	})
	view.SetStatus(demoStatus())
	view.OnSelectNode = func(n *starmap.Node) {
		if n != nil {
			logger.Info("selected", "name", n.Name, "score", fmt.Sprintf("%.2f", n.Score))
		}
	}
	view.Start()

	g := &game{
		view:       view,
		cfg:        cfg,
		log:        logger,
		clusterMax: len(graph.Clusters),
	}
	if cfg.ShowPerf {
		g.perf = starmap.NewPerfOverlay()
	}

	ebiten.SetWindowSize(cfg.WindowWidth, cfg.WindowHeight)
	ebiten.SetWindowTitle("starmap")
	return ebiten.RunGame(g)
}
