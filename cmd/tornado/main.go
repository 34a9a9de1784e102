package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/tornadoscript/tornado/internal/config"
	"github.com/tornadoscript/tornado/internal/core/event"
	coresys "github.com/tornadoscript/tornado/internal/core/system"
	"github.com/tornadoscript/tornado/internal/data"
	gonet "github.com/tornadoscript/tornado/internal/net"
	"github.com/tornadoscript/tornado/internal/param"
	"github.com/tornadoscript/tornado/internal/sandbox"
	"github.com/tornadoscript/tornado/internal/scripting"
	"github.com/tornadoscript/tornado/internal/system"
	"github.com/tornadoscript/tornado/internal/tornado"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printSection(title string) {
	lineLen := max(46-len(title)-1, 3)
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := max(42-len(label)-len(numStr), 3)
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

// ── Main loop ──────────────────────────────────────────────────────

func run() error {
	// 1. Load config; a missing file means defaults
	cfgPath := "config.toml"
	if p := os.Getenv("TORNADO_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if errors.Is(err, fs.ErrNotExist) {
		cfg, err = config.Defaults(), nil
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	params := param.NewStore()
	config.RegisterParams(cfg, params)

	// 3. Load scene and presets
	printSection("Data")
	scene, err := data.LoadScene(cfg.Host.Scene)
	if err != nil {
		return fmt.Errorf("load scene: %w", err)
	}
	printStat("Scene entities", scene.EntityCount())

	presets, err := data.LoadParticlePresets(cfg.Host.Presets)
	if err != nil {
		return fmt.Errorf("load particle presets: %w", err)
	}
	printOK("Particle presets loaded")

	// 4. Host world, factory and console
	w := sandbox.New(scene, log)
	bus := event.NewBus()

	seed := cfg.Host.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	env := &tornado.Env{
		World:   w,
		Effects: w,
		Params:  params,
		Presets: presets,
		Bus:     bus,
		Dice:    tornado.NewDice(seed),
		Log:     log,
	}
	factory := tornado.NewFactory(env)

	ctl := scripting.Controls{Factory: factory, Params: params, World: w, Weather: w}
	luaEngine, err := scripting.NewEngine(cfg.Host.ScriptsDir, ctl, log)
	if err != nil {
		return fmt.Errorf("lua engine: %w", err)
	}
	defer luaEngine.Close()
	printStat("Script commands", len(luaEngine.Commands()))
	console := scripting.NewConsole(luaEngine, ctl, log)

	system.NewNotifier(bus, os.Stdout, params, log)

	// 5. Systems
	lines := make(chan string, cfg.Host.ConsoleQueue)
	runner := coresys.NewRunner(log)
	defer runner.Close()
	runner.Register(coresys.KindConsole, system.NewConsoleSystem(lines, console, bus, cfg.Host.MaxCommandsPerTick, log))
	runner.Register(coresys.KindEvents, system.NewEventDispatchSystem(bus))
	runner.Register(coresys.KindTornado, system.NewTornadoSystem(factory))
	runner.Register(coresys.KindPhysics, system.NewPhysicsSystem(w))
	runner.Register(coresys.KindCleanup, system.NewCleanupSystem(w))

	var remote *gonet.Server
	if cfg.Host.ConsoleAddr != "" {
		remote, err = gonet.NewServer(cfg.Host.ConsoleAddr, cfg.Host.ConsoleQueue, cfg.Host.ConsoleQueue, log)
		if err != nil {
			return fmt.Errorf("remote console: %w", err)
		}
		runner.Register(coresys.KindRemoteConsole, system.NewRemoteConsoleSystem(remote, console, cfg.Host.MaxCommandsPerTick, log))
		printOK("Remote console on " + remote.Addr().String())
	}
	fmt.Println()

	// 6. Run until a signal arrives
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return readConsole(ctx, os.Stdin, lines) })
	g.Go(func() error { return loop(ctx, runner, cfg.Host.TickRate) })
	if remote != nil {
		go remote.AcceptLoop()
		g.Go(func() error {
			<-ctx.Done()
			remote.Shutdown()
			return nil
		})
	}

	log.Info("simulation running", zap.String("scene", scene.Name), zap.Duration("tick", cfg.Host.TickRate), zap.Int64("seed", seed))
	err = g.Wait()
	log.Info("simulation stopped", zap.Int("vortices", factory.ActiveCount()))
	return err
}

// loop ticks the runner at a fixed rate until ctx is done.
func loop(ctx context.Context, runner *coresys.Runner, rate time.Duration) error {
	ticker := time.NewTicker(rate)
	defer ticker.Stop()

	start := time.Now()
	last := start
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			runner.Tick(coresys.Frame{
				GameTime: now.Sub(start).Milliseconds(),
				Delta:    float32(now.Sub(last).Seconds()),
			})
			last = now
		}
	}
}

// readConsole forwards input lines to the console system. End of input is
// not an error; the simulation keeps running without a console.
func readConsole(ctx context.Context, in io.ReadCloser, lines chan<- string) error {
	unblock := context.AfterFunc(ctx, func() { _ = in.Close() })
	defer unblock()

	sc := bufio.NewScanner(in)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		select {
		case lines <- line:
		case <-ctx.Done():
			return nil
		}
	}
	if err := sc.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("read console: %w", err)
	}
	return nil
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
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
