package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/comalice/spawnhooks"
	"github.com/comalice/spawnhooks/hooks"
	"github.com/comalice/spawnhooks/internal/config"
	"github.com/comalice/spawnhooks/internal/console"
	"github.com/comalice/spawnhooks/internal/sim"
	"github.com/comalice/spawnhooks/internal/source"
	"github.com/comalice/spawnhooks/realtime"
)

var (
	watchConfig bool
	runFor      time.Duration
	tickRate    time.Duration
	spawnEvery  time.Duration
	seed        uint64
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the tracker against a simulated world",
	Long: `Runs a simulated world that spawns and retires entities, tracks the
configured categories, and prints every hook as it fires.

Console commands are read from stdin: spawns, spawns.find NAME,
spawns.debug, spawns.reload.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	runCmd.Flags().BoolVar(&watchConfig, "watch", false, "reload when the config file changes")
	runCmd.Flags().DurationVar(&runFor, "duration", 0, "stop after this long (0 runs until interrupted)")
	runCmd.Flags().DurationVar(&tickRate, "tick", 50*time.Millisecond, "loop tick rate")
	runCmd.Flags().DurationVar(&spawnEvery, "spawn-every", 2*time.Second, "simulated spawn rate")
	runCmd.Flags().Uint64Var(&seed, "seed", uint64(time.Now().UnixNano()), "simulation seed")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.Logger
	out := cmd.OutOrStdout()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if runFor > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, runFor)
		defer cancel()
	}

	loop := realtime.NewLoop(realtime.Config{TickRate: tickRate, Logger: log.Named("loop")})
	world := sim.NewWorld()

	dispatcher := hooks.NewDispatcher(log.Named("hooks"))
	table := cfg.Table()
	announce(dispatcher, table, out)

	reg, err := spawnhooks.NewRegistry(world, table,
		spawnhooks.WithScheduler(loop),
		spawnhooks.WithSink(hooks.NewLoggingSink(dispatcher, log.Named("hooks"))),
		spawnhooks.WithLogger(log.Named("registry")),
	)
	if err != nil {
		return err
	}
	con := console.New(reg, world, logger, log.Named("console"))

	feed := source.NewChannelSource(256)
	world.Subscribe(func(obj spawnhooks.Object) {
		if !feed.Notify(obj) {
			log.Warn("spawn feed full, notification dropped", zap.String("type", obj.TypeName()))
		}
	})
	pump := source.NewPump(feed.Events(), loop, reg, log.Named("source"))
	driver := sim.NewDriver(world, loop, sim.DriverConfig{
		SpawnEvery: spawnEvery,
		Seed:       seed,
		Logger:     log.Named("sim"),
	})

	var watcher *config.Watcher
	if watchConfig {
		watcher, err = config.NewWatcher(configPath, 0, log.Named("config"))
		if err != nil {
			return err
		}
	}

	if err := loop.Start(ctx); err != nil {
		return err
	}
	defer loop.Stop()

	checkOnInit := cfg.CheckSpawnsOnInit
	if err := loop.Post(func() {
		reg.Initialize(checkOnInit)
		driver.Start()
	}); err != nil {
		return err
	}
	log.Info("spawnhooks running",
		zap.Int("categories", table.Len()),
		zap.Duration("tick", tickRate),
		zap.Uint64("seed", seed))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return pump.Run(gctx) })
	g.Go(func() error { return serveConsole(gctx, loop, con, cmd.InOrStdin(), out) })

	if watcher != nil {
		g.Go(func() error { return watcher.Run(gctx) })
		g.Go(func() error { return applyChanges(gctx, loop, reg, dispatcher, watcher.Changes(), out) })
	}

	err = g.Wait()
	_ = loop.Stop()
	driver.Stop()

	printSummary(out, reg, driver)
	if errors.Is(err, realtime.ErrStopped) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// serveConsole executes stdin lines on the loop as the server console.
func serveConsole(ctx context.Context, loop *realtime.Loop, con *console.Console, in io.Reader, out io.Writer) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if strings.TrimSpace(line) == "" {
				continue
			}
			var (
				reply   string
				handled bool
			)
			if err := loop.Do(ctx, func() { reply, handled = con.Exec(nil, line) }); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			if !handled {
				reply = fmt.Sprintf("Unknown command: %s", strings.Fields(line)[0])
			}
			fmt.Fprintln(out, reply)
		}
	}
}

// applyChanges swaps in each reloaded table and runs the reload command.
func applyChanges(ctx context.Context, loop *realtime.Loop, reg *spawnhooks.Registry, d *hooks.Dispatcher, changes <-chan *config.Config, out io.Writer) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case next := <-changes:
			table := next.Table()
			var n int
			err := loop.Do(ctx, func() {
				reg.SetTable(table)
				n = reg.Reload()
			})
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			announce(d, table, out)
			fmt.Fprintf(out, "config reloaded: %d categories, %d tracked\n", table.Len(), n)
		}
	}
}

// announce registers a printing listener for every hook name table uses
// that has no listener yet.
func announce(d *hooks.Dispatcher, table *spawnhooks.Table, out io.Writer) {
	for _, p := range table.Policies() {
		for _, k := range []spawnhooks.HookKind{spawnhooks.HookAdded, spawnhooks.HookRemoved, spawnhooks.HookGroupExhausted} {
			name := p.HookName(k)
			if d.Has(name) {
				continue
			}
			d.On(name, func(call spawnhooks.HookCall) (string, error) {
				switch call.Kind {
				case spawnhooks.HookAdded:
					fmt.Fprintf(out, "%s: '%s' was spawned %s\n", name, call.Category, location(call.Object))
				case spawnhooks.HookRemoved:
					fmt.Fprintf(out, "%s: '%s' was removed (%s: %d left)\n", name, call.Category, call.Tag, call.Counts[call.Tag])
				case spawnhooks.HookGroupExhausted:
					fmt.Fprintf(out, "%s: all '%s' were removed\n", name, call.Tag)
				}
				return "", nil
			})
		}
	}
}

func location(obj spawnhooks.Object) string {
	if l, ok := obj.(spawnhooks.Locator); ok {
		return l.Location()
	}
	return ""
}

func printSummary(out io.Writer, reg *spawnhooks.Registry, driver *sim.Driver) {
	counts := reg.TagCounts()
	parts := make([]string, 0, len(counts))
	for _, tag := range counts.Tags() {
		parts = append(parts, fmt.Sprintf("%s=%d", tag, counts[tag]))
	}
	fmt.Fprintf(out, "spawned %d, tracking %d [%s]\n", driver.Spawned(), reg.Len(), strings.Join(parts, " "))
}
