package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/woodcut/treehouse/internal/audio"
	"github.com/woodcut/treehouse/internal/config"
	"github.com/woodcut/treehouse/internal/core/event"
	coresys "github.com/woodcut/treehouse/internal/core/system"
	"github.com/woodcut/treehouse/internal/data"
	"github.com/woodcut/treehouse/internal/effect"
	"github.com/woodcut/treehouse/internal/persist"
	"github.com/woodcut/treehouse/internal/physics"
	"github.com/woodcut/treehouse/internal/physics/b2world"
	"github.com/woodcut/treehouse/internal/render"
	"github.com/woodcut/treehouse/internal/scripting"
	"github.com/woodcut/treehouse/internal/system"
	"github.com/woodcut/treehouse/internal/world"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(scene string, seed int64) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m             treehouse  v0.1.0             \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m       cut the tree, drop the cabin        \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mscene:\033[0m %s \033[90m(seed: %d)\033[0m\n\n", scene, seed)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Scene ──────────────────────────────────────────────────────────

func run() error {
	cfgPath := "config/treehouse.toml"
	if p := os.Getenv("TREEHOUSE_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Scene.Name, cfg.Scene.Seed)

	printSection("data")
	layout, err := data.LoadLayout(cfg.Data.Layout)
	if err != nil {
		return fmt.Errorf("layout: %w", err)
	}
	applyOverrides(layout, cfg)
	if err := layout.Validate(); err != nil {
		return fmt.Errorf("layout: %w", err)
	}
	debris, err := data.LoadDebris(cfg.Data.Debris)
	if err != nil {
		return fmt.Errorf("debris: %w", err)
	}
	printStat("trunk segments", layout.Tree.Segments)
	printStat("debris pieces", len(debris.Pieces))

	engine, err := scripting.NewEngine(cfg.Data.Scripts, log.Named("lua"))
	if err != nil {
		return fmt.Errorf("scripts: %w", err)
	}
	defer engine.Close()
	rules := &scripting.SceneRules{Engine: engine, Scale: cfg.Cutting.ImpulseScale}
	printOK("Lua rules loaded")
	fmt.Println()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var journal persist.Journal = persist.NopJournal{}
	if cfg.Database.Enabled {
		printSection("database")
		db, err := persist.Open(ctx, cfg.Database, log.Named("db"))
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		printOK("PostgreSQL connected, journal schema up to date")
		journal = persist.NewJournalRepo(db)
		fmt.Println()
	}
	runID, err := journal.StartRun(ctx, cfg.Scene.Name, cfg.Scene.Seed)
	if err != nil {
		return fmt.Errorf("start run: %w", err)
	}

	printSection("scene")
	pw := b2world.New(b2world.Options{
		Gravity:            cfg.Physics.Gravity,
		VelocityIterations: cfg.Physics.VelocityIterations,
		PositionIterations: cfg.Physics.PositionIterations,
		MaxReleaseSpeed:    cfg.Physics.MaxReleaseSpeed,
	}, log.Named("physics"))

	state, err := world.Build(pw, layout, debris, world.Options{
		Seed:         cfg.Scene.Seed,
		BreakImpulse: cfg.Cutting.BreakImpulse,
		PlayerStep:   cfg.Player.Step,
	}, log.Named("world"))
	if err != nil {
		return fmt.Errorf("build scene: %w", err)
	}
	printStat("actors", state.Actors.Pool().Live())

	var sound system.SoundPlayer
	if cfg.Audio.Enabled {
		eng, err := audio.Open(cfg.Audio, log.Named("audio"))
		if err != nil {
			log.Warn("audio unavailable, continuing without sound", zap.Error(err))
		} else {
			defer eng.Close()
			sound = eng
			printOK("audio ready")
		}
	}

	var screen tcell.Screen
	var drawer system.Drawer
	if cfg.Render.Enabled {
		screen, err = tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("screen: %w", err)
		}
		if err := screen.Init(); err != nil {
			return fmt.Errorf("screen: %w", err)
		}
		defer screen.Fini()
		drawer = render.NewRenderer(screen, cfg.Render.Scale)
	}

	runner := coresys.NewRunner()
	bus := event.NewBus()
	scene, err := system.RegisterScene(runner, system.Deps{
		Bus:     bus,
		State:   state,
		Physics: pw,
		Rules:   rules,
		Effects: effect.Config{
			Rate:         cfg.Emitter.Rate,
			MaxParticles: cfg.Emitter.MaxParticles,
			LifeSpan:     cfg.Emitter.LifeSpan,
			Decay:        cfg.Emitter.Decay,
			Spread:       cfg.Emitter.Spread,
		},
		Rand:               rand.New(rand.NewSource(cfg.Scene.Seed)),
		ReleaseOnTouchLost: cfg.Cutting.ReleaseOnTouchLost,
		Drawer:             drawer,
		Sound:              sound,
		Journal:            journal,
		RunID:              runID,
		FlushTicks:         cfg.Database.FlushTicks,
		MaxBuffered:        cfg.Database.MaxBuffered,
		Log:                log.Named("scene"),
	})
	if err != nil {
		return fmt.Errorf("register systems: %w", err)
	}

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	// Key events come from tcell's own goroutine; the bus is only touched
	// from the loop below.
	keys := make(chan tcell.Event, 16)
	done := make(chan struct{})
	defer close(done)
	if screen != nil {
		go pollScreen(screen, keys, done)
	}

	ticker := time.NewTicker(cfg.Scene.TickRate)
	defer ticker.Stop()

	if screen == nil {
		printSection("ready")
		printReady(fmt.Sprintf("headless loop started (tick: %s)", cfg.Scene.TickRate))
		fmt.Println()
	}

	defer finish(scene, journal, runID, runner, log)

	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Scene.TickRate)
			if screen == nil && cfg.Scene.HeadlessTicks > 0 && runner.Ticks() >= uint64(cfg.Scene.HeadlessTicks) {
				log.Info("headless run complete", zap.Uint64("ticks", runner.Ticks()))
				return nil
			}
		case ev := <-keys:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				cmd, dir := render.KeyCommand(ev)
				switch cmd {
				case render.CommandMove:
					event.Emit(bus, event.PlayerMoveRequested{Dir: dir})
				case render.CommandQuit:
					log.Info("quit requested")
					return nil
				}
			case *tcell.EventResize:
				screen.Sync()
			}
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			return nil
		}
	}
}

// applyOverrides lets the config file move the player and the sawdust
// emitter without editing the layout YAML.
func applyOverrides(layout *data.Layout, cfg *config.Config) {
	if cfg.Player.Height > 0 {
		layout.Player.Height = cfg.Player.Height
	}
	if s := cfg.Player.Start; len(s) == 3 {
		layout.Player.Start = physics.Vec3{s[0], s[1], s[2]}
	}
	if o := cfg.Cutting.EmitterOffset; len(o) == 3 {
		layout.EmitterOffset = physics.Vec3{o[0], o[1], o[2]}
	}
}

// pollScreen forwards screen events until the screen is finalized or the
// loop has stopped reading.
func pollScreen(screen tcell.Screen, out chan<- tcell.Event, done <-chan struct{}) {
	for {
		ev := screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case out <- ev:
		case <-done:
			return
		}
	}
}

// finish delivers the last tick's events, flushes what the journal still
// holds and closes the run. It gets
// its own deadline since the startup context may have expired long ago.
func finish(scene *system.Scene, journal persist.Journal, runID int64, runner *coresys.Runner, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if n := scene.Drain(); n > 0 {
		log.Debug("delivered last tick's events", zap.Int("events", n))
	}
	if scene.Journal != nil {
		if err := scene.Journal.Flush(ctx); err != nil {
			log.Warn("final journal flush failed", zap.Int("dropped", scene.Journal.Buffered()), zap.Error(err))
		}
	}
	if err := journal.FinishRun(ctx, runID, runner.Ticks()); err != nil {
		log.Warn("finish run failed", zap.Int64("run", runID), zap.Error(err))
	}
	log.Info("scene stopped", zap.Uint64("ticks", runner.Ticks()))
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	if cfg.File != "" {
		zapCfg.OutputPaths = []string{cfg.File}
		zapCfg.ErrorOutputPaths = []string{cfg.File}
		if cfg.Format != "json" {
			zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		}
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
