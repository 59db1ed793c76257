// Package main provides the game server binary: it restores the creature
// engine from PostgreSQL, wires Lua hooks, and runs the persistence
// services until interrupted.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/horde/internal/config"
	"github.com/cory-johannsen/horde/internal/game/horde"
	"github.com/cory-johannsen/horde/internal/game/rules"
	"github.com/cory-johannsen/horde/internal/observability"
	"github.com/cory-johannsen/horde/internal/scripting"
	"github.com/cory-johannsen/horde/internal/server"
	"github.com/cory-johannsen/horde/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	// Load the rule set.
	r := rules.Default()
	if cfg.Game.RulesPath != "" {
		r, err = rules.LoadFile(cfg.Game.RulesPath)
		if err != nil {
			logger.Fatal("loading rules", zap.String("path", cfg.Game.RulesPath), zap.Error(err))
		}
	} else if err := r.Validate(); err != nil {
		logger.Fatal("validating default rules", zap.Error(err))
	}
	logger.Info("rules loaded",
		zap.String("path", cfg.Game.RulesPath),
		zap.Duration("cooldown", r.CooldownDuration()),
		zap.Uint64("win_probability", r.AttackWinProbability),
	)

	// Connect to PostgreSQL.
	dbStart := time.Now()
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("connecting to database", zap.Error(err))
	}
	logger.Info("database connected",
		zap.String("host", cfg.Database.Host),
		zap.Duration("elapsed", time.Since(dbStart)),
	)
	creatureRepo := postgres.NewCreatureRepository(pool.DB())
	journal := postgres.NewEventJournal(pool.DB())

	// Build the engine and warm-start it from the last snapshot.
	keeper := horde.NewKeeper(r, observability.Component(logger, "horde"),
		horde.WithAdmin(horde.Address(cfg.Game.AdminAddress)))

	snapshot, err := creatureRepo.LoadAll(ctx)
	if err != nil {
		logger.Fatal("loading creature snapshot", zap.Error(err))
	}
	if err := keeper.Restore(snapshot); err != nil {
		logger.Fatal("restoring creature snapshot", zap.Error(err))
	}

	// Resume the event sequence past what the journal already holds;
	// otherwise post-restart appends collide with persisted rows and
	// the idempotent journal writer drops them.
	lastSeq, err := journal.MaxSeq(ctx)
	if err != nil {
		logger.Fatal("reading journal position", zap.Error(err))
	}
	keeper.Events().Advance(lastSeq)
	logger.Info("engine restored",
		zap.Int("creatures", keeper.Count()),
		zap.Uint64("journal_seq", lastSeq),
	)

	// Initialise hook scripting.
	var scriptMgr *scripting.Manager
	if cfg.Game.ScriptDir != "" {
		if info, statErr := os.Stat(cfg.Game.ScriptDir); statErr == nil && info.IsDir() {
			scriptMgr = scripting.NewManager(observability.Component(logger, "scripting"))
			if err := scriptMgr.LoadDir(cfg.Game.ScriptDir, 0); err != nil {
				logger.Fatal("loading hook scripts",
					zap.String("dir", cfg.Game.ScriptDir), zap.Error(err))
			}
			defer scriptMgr.Close()
		} else {
			logger.Warn("script_dir not found, scripting disabled",
				zap.String("dir", cfg.Game.ScriptDir))
		}
	}

	if scriptMgr != nil {
		scriptMgr.GetCreature = func(id uint64) *scripting.CreatureInfo {
			c, err := keeper.Get(horde.ID(id))
			if err != nil {
				return nil
			}
			info := creatureInfo(c)
			return &info
		}
		keeper.OnBattleResolved = func(attacker, defender horde.Creature, outcome horde.BattleOutcome) {
			scriptMgr.BattleResolved(creatureInfo(attacker), creatureInfo(defender), outcome.Won, outcome.Roll)
		}
		keeper.OnCreatureCreated = func(c horde.Creature, owner horde.Address) {
			scriptMgr.CreatureCreated(creatureInfo(c), string(owner))
		}
	}

	lifecycle := server.NewLifecycle(logger)

	// Journal writer: stream engine events into the database. The journal
	// tolerates replays, so a failed append is retried on the next event
	// flush rather than crashing the server.
	journalCh := make(chan horde.Event, cfg.Game.JournalBuffer)
	journalStop := make(chan struct{})
	keeper.Events().Subscribe(journalCh)
	lifecycle.Add("journal", &server.FuncService{
		StartFn: func() error {
			for {
				select {
				case ev := <-journalCh:
					if err := journal.Append(ctx, ev); err != nil {
						logger.Warn("journal append failed",
							zap.Uint64("seq", ev.Seq), zap.Error(err))
					}
				case <-journalStop:
					return nil
				}
			}
		},
		StopFn: func() {
			keeper.Events().Unsubscribe(journalCh)
			close(journalStop)
		},
	})

	// Snapshot writer: periodically persist full creature state. A zero
	// interval disables periodic snapshots; the shutdown snapshot still runs.
	if cfg.Game.SnapshotInterval > 0 {
		snapshotStop := make(chan struct{})
		lifecycle.Add("snapshot", &server.FuncService{
			StartFn: func() error {
				ticker := time.NewTicker(cfg.Game.SnapshotInterval)
				defer ticker.Stop()
				for {
					select {
					case <-ticker.C:
						snap := keeper.Snapshot()
						if err := creatureRepo.SaveAll(ctx, snap); err != nil {
							logger.Warn("snapshot save failed", zap.Error(err))
							continue
						}
						logger.Debug("snapshot saved", zap.Int("creatures", len(snap)))
					case <-snapshotStop:
						return nil
					}
				}
			},
			StopFn: func() {
				close(snapshotStop)
			},
		})
	}

	lifecycle.Add("postgres", &server.FuncService{
		StartFn: func() error {
			for {
				time.Sleep(30 * time.Second)
				if err := pool.Health(ctx, 5*time.Second); err != nil {
					logger.Warn("database health check failed", zap.Error(err))
				}
			}
		},
		StopFn: func() {
			// Final snapshot so a clean shutdown loses nothing.
			if err := creatureRepo.SaveAll(ctx, keeper.Snapshot()); err != nil {
				logger.Warn("final snapshot save failed", zap.Error(err))
			}
			pool.Close()
		},
	})

	logger.Info("game server initialized",
		zap.Duration("startup", time.Since(start)),
		zap.Int("creatures", keeper.Count()),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func creatureInfo(c horde.Creature) scripting.CreatureInfo {
	return scripting.CreatureInfo{
		ID:        uint64(c.ID),
		Name:      c.Name,
		DNA:       c.DNA,
		Level:     c.Level,
		WinCount:  c.WinCount,
		LossCount: c.LossCount,
	}
}
