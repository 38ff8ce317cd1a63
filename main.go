package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/flapneat/assets"
	"github.com/pthm-cable/flapneat/audio"
	"github.com/pthm-cable/flapneat/config"
	"github.com/pthm-cable/flapneat/game"
	"github.com/pthm-cable/flapneat/neural"
	"github.com/pthm-cable/flapneat/renderer"
	"github.com/pthm-cable/flapneat/systems"
	"github.com/pthm-cable/flapneat/telemetry"
)

// options holds the parsed command line.
type options struct {
	headless  bool
	tui       bool
	seed      int64
	outputDir string
	replay    string
	rounds    int
}

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics, unthrottled")
	tui := flag.Bool("tui", false, "Draw in the terminal instead of a window")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	generations := flag.Int("generations", 0, "Generation budget (0 = use config)")
	maxTicks := flag.Int("max-ticks", -1, "Tick cap per generation (-1 = use config, 0 = unlimited)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs, config snapshot and champion")
	replay := flag.String("replay", "", "Fly a saved champion.json instead of evolving")
	rounds := flag.Int("rounds", 0, "Replay rounds (0 = until quit)")
	logFormat := flag.String("log-format", "json", "Log format: json or text")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, nil)
	if *logFormat == "text" {
		handler = slog.NewTextHandler(os.Stdout, nil)
	}
	if *tui {
		// stdout belongs to the terminal renderer
		handler = slog.NewTextHandler(os.Stderr, nil)
	}
	slog.SetDefault(slog.New(handler))

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if *generations > 0 {
		cfg.NEAT.Generations = *generations
	}
	if *maxTicks >= 0 {
		cfg.Run.MaxTicks = *maxTicks
	}
	if *outputDir != "" {
		cfg.Telemetry.OutputDir = *outputDir
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := options{
		headless:  *headless,
		tui:       *tui,
		seed:      rngSeed,
		outputDir: cfg.Telemetry.OutputDir,
		replay:    *replay,
		rounds:    *rounds,
	}
	if err := run(ctx, cfg, opts); err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, opts options) error {
	sheet := assets.NewSheet()
	masks := systems.NewMaskSet(sheet)
	rng := rand.New(rand.NewSource(opts.seed))

	fe, closeFrontend, err := openFrontend(cfg, sheet, opts)
	if err != nil {
		return err
	}
	defer closeFrontend()

	if cfg.Audio.Enabled && !opts.headless {
		spk, err := audio.NewSpeaker()
		if err != nil {
			slog.Warn("audio disabled", "error", err)
		} else {
			defer spk.Close()
			fe = audio.NewCues(cfg.Audio, spk, fe)
		}
	}

	if opts.replay != "" {
		return replay(ctx, cfg, masks, rng, fe, opts)
	}
	return evolve(ctx, cfg, masks, rng, fe, opts)
}

// openFrontend picks the presenter. Headless runs get a nil frontend.
func openFrontend(cfg *config.Config, sheet *assets.Sheet, opts options) (game.Frontend, func(), error) {
	switch {
	case opts.headless:
		return nil, func() {}, nil
	case opts.tui:
		screen, err := tcell.NewScreen()
		if err != nil {
			return nil, nil, fmt.Errorf("open terminal: %w", err)
		}
		term, err := renderer.NewTerminal(cfg, screen)
		if err != nil {
			return nil, nil, err
		}
		return term, term.Close, nil
	default:
		win := renderer.OpenWindow(cfg, sheet, "Flappy NEAT")
		return win, win.Close, nil
	}
}

func evolve(ctx context.Context, cfg *config.Config, masks *systems.MaskSet, rng *rand.Rand, fe game.Frontend, opts options) error {
	out, err := telemetry.NewOutputManager(opts.outputDir)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := out.WriteConfig(cfg); err != nil {
		return err
	}

	pop, err := neural.NewPopulation(cfg.NEAT, rng)
	if err != nil {
		return fmt.Errorf("create population: %w", err)
	}
	rep := telemetry.NewReporter(out, 10, max(cfg.NEAT.MaxStagnation, 2))
	pop.AddReporter(rep)

	ev := &game.Evaluator{
		Config:   cfg,
		Masks:    masks,
		Rng:      rng,
		Frontend: fe,
		Colors:   pop.Species().GetSpeciesColor,
	}

	slog.Info("starting evolution",
		"seed", opts.seed,
		"population", cfg.NEAT.PopulationSize,
		"generations", cfg.NEAT.Generations,
		"max_score", cfg.Run.MaxScore,
		"max_ticks", cfg.Run.MaxTicks,
	)

	res, runErr := pop.Run(ctx, ev.Evaluate)
	slog.Info("evolution finished",
		"generations", res.Generations,
		"solved", res.Solved,
		"halted", res.Halted,
		"champion_fitness", res.ChampionFitness,
	)

	// Keep whatever was learned even if the run failed part-way.
	if err := saveChampion(cfg, rep.HallOfFame(), opts); err != nil {
		slog.Warn("champion not saved", "error", err)
	}
	return errors.Join(runErr, rep.Err())
}

func saveChampion(cfg *config.Config, hof *telemetry.HallOfFame, opts options) error {
	best := hof.Best()
	if best == nil || cfg.Telemetry.ChampionFile == "" {
		return nil
	}
	path := cfg.Telemetry.ChampionFile
	if opts.outputDir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(opts.outputDir, path)
	}
	if err := telemetry.SaveChampion(telemetry.NewChampion(*best, opts.seed), path); err != nil {
		return err
	}
	slog.Info("champion saved", "path", path, "generation", best.Generation, "fitness", best.Fitness)
	return nil
}

func replay(ctx context.Context, cfg *config.Config, masks *systems.MaskSet, rng *rand.Rand, fe game.Frontend, opts options) error {
	champ, genome, err := telemetry.LoadChampion(opts.replay)
	if err != nil {
		return err
	}
	slog.Info("replaying champion",
		"path", opts.replay,
		"generation", champ.Generation,
		"fitness", champ.Fitness,
		"rounds", opts.rounds,
	)

	results, err := game.Replay(ctx, cfg, genome, masks, rng, fe, opts.rounds)
	for i, r := range results {
		slog.Info("round finished", "round", i, "outcome", r.Outcome.String(), "score", r.Score, "ticks", r.Ticks)
	}
	return err
}
