package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/l1jgo/mobsim/internal/config"
	"github.com/l1jgo/mobsim/internal/core/cooldown"
	"github.com/l1jgo/mobsim/internal/core/event"
	"github.com/l1jgo/mobsim/internal/core/ident"
	"github.com/l1jgo/mobsim/internal/core/partition"
	"github.com/l1jgo/mobsim/internal/core/rng"
	coresys "github.com/l1jgo/mobsim/internal/core/system"
	"github.com/l1jgo/mobsim/internal/data"
	"github.com/l1jgo/mobsim/internal/intent"
	"github.com/l1jgo/mobsim/internal/net/packet"
	"github.com/l1jgo/mobsim/internal/persist"
	"github.com/l1jgo/mobsim/internal/scripting"
	"github.com/l1jgo/mobsim/internal/system"
	"github.com/l1jgo/mobsim/internal/world"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(serverName string, serverID int) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m               mobsim  v0.1.0              \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m        monster simulation core            \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mserver:\033[0m %s \033[90m(id: %d)\033[0m\n\n", serverName, serverID)
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

// ── Main simulation logic ─────────────────────────────────────────

func run() error {
	replayPath := flag.String("replay", "", "print the intents of a recording and exit")
	flag.Parse()

	// 1. Load config
	cfgPath := "config/server.toml"
	if p := os.Getenv("MOBSIM_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	if *replayPath != "" {
		return replay(*replayPath, cfg.Record, log)
	}

	printBanner(cfg.Server.Name, cfg.Server.ID)

	// 3. Load data tables
	printSection("data")
	mobs, err := data.LoadMobTable(cfg.Data.MobList)
	if err != nil {
		return fmt.Errorf("mob list: %w", err)
	}
	printStat("mob templates", mobs.Count())

	skills, err := data.LoadMobSkillTable(cfg.Data.MobSkillList)
	if err != nil {
		return fmt.Errorf("mob skills: %w", err)
	}
	printStat("mob skills", skills.Count())

	groups, err := data.LoadSpawnList(cfg.Data.SpawnList)
	if err != nil {
		return fmt.Errorf("spawn list: %w", err)
	}
	printStat("spawn groups", len(groups))

	maps, err := data.LoadMapData(cfg.Data.MapList, cfg.Data.TileDir)
	if err != nil {
		return fmt.Errorf("maps: %w", err)
	}
	printStat("maps", maps.Count())
	fmt.Println()

	// 4. World state and dummies
	ws := world.NewState(maps)
	for _, d := range cfg.Simulation.Dummies {
		if err := ws.Enter(newDummy(d)); err != nil {
			return fmt.Errorf("dummy %d: %w", d.ID, err)
		}
	}

	seed := cfg.Simulation.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	clock := cooldown.SystemClock{}
	bus := event.NewBus()
	pool := ident.NewPool(int32(world.MonsterIDBase), int32(world.MonsterIDLimit))

	// 5. One partition, brain and Lua VM per map
	printSection("partitions")
	sched := partition.NewScheduler(cfg.Simulation.MailboxSize, log)
	shards := system.NewShards()
	defer shards.Close()

	shardCfg := system.ShardConfig{
		World:   ws,
		Skills:  skills,
		AI:      cfg.AI,
		Seed:    seed,
		Clock:   clock,
		Log:     log,
		Observe: observeStage(log),
	}
	for _, mapID := range maps.MapIDs() {
		var scripts *scripting.Engine
		if cfg.Scripting.Dir != "" {
			scripts, err = scripting.NewEngine(cfg.Scripting.Dir, log.With(zap.Int16("map", mapID)))
			if err != nil {
				return fmt.Errorf("scripting map %d: %w", mapID, err)
			}
		}
		shards.Add(system.NewShard(mapID, sched.Add(mapID), scripts, shardCfg))
	}
	printStat("partitions", sched.Len())
	printStat("dummies", len(cfg.Simulation.Dummies))
	if cfg.Scripting.Dir != "" {
		printOK("lua scripts loaded from " + cfg.Scripting.Dir)
	}
	fmt.Println()

	// 6. Optional spawn ledger
	printSection("database")
	var ledger *system.LedgerSystem
	var ledgerRepo *persist.LedgerRepo
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	db, err := persist.NewDB(ctx, cfg.Database, log)
	switch {
	case errors.Is(err, persist.ErrDisabled):
		printOK("spawn ledger disabled")
	case err != nil:
		cancel()
		return fmt.Errorf("database: %w", err)
	default:
		defer db.Close()
		version, err := persist.RunMigrations(ctx, db.Pool, log)
		if err != nil {
			cancel()
			return fmt.Errorf("migrations: %w", err)
		}
		printOK(fmt.Sprintf("migrations at version %d", version))
		interval := int(cfg.Database.FlushInterval / cfg.Simulation.TickRate)
		ledgerRepo = persist.NewLedgerRepo(db, cfg.Server.ID)
		ledger = system.NewLedgerSystem(bus, ledgerRepo, interval, cfg.Database.FlushTimeout, log)
	}
	cancel()
	fmt.Println()

	// 7. Intent output
	var sink intent.Sink = intent.NewLogSink(log)
	var recorder *intent.FrameSink
	var recordBuf *bufio.Writer
	if cfg.Record.Path != "" {
		cs, err := packet.LookupCharset(cfg.Record.Charset)
		if err != nil {
			return fmt.Errorf("record charset: %w", err)
		}
		f, err := os.Create(cfg.Record.Path)
		if err != nil {
			return fmt.Errorf("record file: %w", err)
		}
		defer f.Close()
		recordBuf = bufio.NewWriter(f)
		recorder = intent.NewFrameSink(recordBuf, cs)
		sink = intent.Multi{sink, recorder}
	}

	// 8. Systems
	spawns := system.NewSpawnSystem(ws, shards, groups, mobs, pool, bus, clock, rng.New(seed), log)
	runner := coresys.NewRunner()
	runner.Register(system.NewEventDispatchSystem(bus))
	runner.Register(system.NewMonsterAISystem(ws, shards, sched, log))
	runner.Register(system.NewCombatSystem(ws, shards, sched, clock, log))
	runner.Register(spawns)
	output := system.NewOutputSystem(shards, sink, recorder, log)
	runner.Register(output)
	if ledger != nil {
		runner.Register(ledger)
	}
	cleanup := system.NewCleanupSystem(ws, shards, spawns, pool, bus, clock, cfg.AI.DeathTimeout)
	runner.Register(cleanup)

	if ledgerRepo != nil {
		actx, acancel := context.WithTimeout(context.Background(), 30*time.Second)
		stale, err := system.AuditLedger(actx, ledgerRepo, spawns.Generators(), log)
		acancel()
		if err != nil {
			log.Warn("spawn ledger audit failed", zap.Error(err))
		} else if stale > 0 {
			log.Warn("previous run did not close out the spawn ledger", zap.Int("groups", stale))
		}
	}

	event.Subscribe(bus, func(ev event.MonsterSpawned) {
		log.Debug("monster spawned", zap.Int32("id", ev.ObjectID), zap.Int32("mob", ev.TemplateID), zap.Int16("map", ev.MapID))
	})
	event.Subscribe(bus, func(ev event.MonsterDespawned) {
		log.Debug("monster despawned", zap.Int32("id", ev.ObjectID), zap.Int32("mob", ev.TemplateID), zap.Bool("killed", ev.Killed))
	})

	// 9. Start partitions and the tick loop
	runCtx, stop := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error { return sched.Run(gctx) })

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Simulation.TickRate)
	defer ticker.Stop()

	printSection("ready")
	printReady(fmt.Sprintf("simulation loop started (tick: %s, seed: %d)", cfg.Simulation.TickRate, seed))
	fmt.Println()

	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Simulation.TickRate)
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			population := spawns.Population()
			stop()
			if err := g.Wait(); err != nil {
				log.Error("partition stopped with error", zap.Error(err))
			}
			unloaded := system.Shutdown(runner, cleanup, ledger, cfg.Simulation.TickRate)
			if recordBuf != nil {
				if err := recordBuf.Flush(); err != nil {
					log.Error("flush recording", zap.Error(err))
				}
			}
			log.Info("simulation stopped",
				zap.Int("population", population),
				zap.Int("unloaded", unloaded),
				zap.Int("intents", output.Emitted()),
			)
			return nil
		case <-gctx.Done():
			stop()
			if err := g.Wait(); err != nil {
				return fmt.Errorf("partitions: %w", err)
			}
			return nil
		}
	}
}

func newDummy(d config.DummyConfig) *world.Player {
	hp := d.HP
	if hp <= 0 {
		hp = 100
	}
	p := &world.Player{
		Base: world.Base{
			OID:   world.ObjectID(d.ID),
			Map:   d.MapID,
			X:     d.X,
			Y:     d.Y,
			HP:    hp,
			MaxHP: hp,
			Lvl:   d.Level,
		},
		Name:    d.Name,
		Lawful:  d.Lawful,
		PKCount: d.PKCount,
	}
	if d.Wanted {
		p.WantedTicks = 1
	}
	return p
}

// observeStage logs stage transitions at debug level. Runs on partition
// goroutines.
func observeStage(log *zap.Logger) func(m *world.Monster, from, to world.Stage) {
	return func(m *world.Monster, from, to world.Stage) {
		if ce := log.Check(zap.DebugLevel, "stage"); ce != nil {
			ce.Write(
				zap.Int32("id", int32(m.ID())),
				zap.Stringer("from", from),
				zap.Stringer("to", to),
			)
		}
	}
}

// replay dumps a recorded intent file through the log sink.
func replay(path string, rec config.RecordConfig, log *zap.Logger) error {
	cs, err := packet.LookupCharset(rec.Charset)
	if err != nil {
		return fmt.Errorf("record charset: %w", err)
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open recording: %w", err)
	}
	defer f.Close()

	out := intent.NewLogSink(log)
	ticks := 0
	reg := packet.NewRegistry(cs, log)
	intent.RegisterDecoders(reg,
		func(tick int64) {
			ticks++
			log.Debug("tick", zap.Int64("tick", tick))
		},
		out.Emit,
	)
	n, err := intent.Replay(bufio.NewReader(f), reg)
	if err != nil {
		return fmt.Errorf("replay %s: %w", path, err)
	}
	log.Info("replay finished", zap.Int("frames", n), zap.Int("ticks", ticks))
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
