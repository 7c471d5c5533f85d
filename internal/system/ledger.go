package system

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/l1jgo/mobsim/internal/core/event"
	coresys "github.com/l1jgo/mobsim/internal/core/system"
	"github.com/l1jgo/mobsim/internal/persist"
)

// LedgerWriter stores a batch of lifecycle rows.
type LedgerWriter interface {
	WriteBatch(ctx context.Context, entries []persist.LedgerEntry) error
}

// LedgerSystem collects monster lifecycle events and writes them to the
// spawn ledger every interval ticks. A failed batch is logged and dropped.
// Phase 4 (Persist).
type LedgerSystem struct {
	writer   LedgerWriter
	log      *zap.Logger
	timeout  time.Duration
	interval int // flush every N ticks

	tickCount int
	pending   []persist.LedgerEntry
	written   int
}

func NewLedgerSystem(bus *event.Bus, writer LedgerWriter, intervalTicks int, timeout time.Duration, log *zap.Logger) *LedgerSystem {
	if intervalTicks < 1 {
		intervalTicks = 1
	}
	s := &LedgerSystem{
		writer:   writer,
		log:      log,
		timeout:  timeout,
		interval: intervalTicks,
	}
	event.Subscribe(bus, func(ev event.MonsterSpawned) {
		s.pending = append(s.pending, persist.LedgerEntry{
			Event:      persist.LedgerSpawn,
			ObjectID:   ev.ObjectID,
			TemplateID: ev.TemplateID,
			GroupID:    ev.GroupID,
			MapID:      ev.MapID,
			X:          ev.X,
			Y:          ev.Y,
			At:         ev.At,
		})
	})
	event.Subscribe(bus, func(ev event.MonsterDespawned) {
		s.pending = append(s.pending, persist.LedgerEntry{
			Event:      persist.LedgerDespawn,
			ObjectID:   ev.ObjectID,
			TemplateID: ev.TemplateID,
			GroupID:    ev.GroupID,
			MapID:      ev.MapID,
			X:          ev.X,
			Y:          ev.Y,
			Killed:     ev.Killed,
			At:         ev.At,
		})
	})
	return s
}

func (s *LedgerSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *LedgerSystem) Update(_ time.Duration) {
	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0
	s.Flush()
}

// Flush writes everything collected so far. Called for graceful shutdown too.
func (s *LedgerSystem) Flush() {
	if len(s.pending) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	n := len(s.pending)
	if err := s.writer.WriteBatch(ctx, s.pending); err != nil {
		s.log.Error("ledger flush failed, batch dropped", zap.Int("rows", n), zap.Error(err))
	} else {
		s.written += n
		s.log.Debug("ledger flushed", zap.Int("rows", n))
	}
	s.pending = s.pending[:0]
}

// Pending returns the number of rows waiting for the next flush.
func (s *LedgerSystem) Pending() int { return len(s.pending) }

// Written returns the number of rows stored so far.
func (s *LedgerSystem) Written() int { return s.written }

// LiveCounter reports how many members of a spawn group the ledger still
// considers alive.
type LiveCounter interface {
	CountLive(ctx context.Context, groupID int32) (int, error)
}

// AuditLedger runs before the first tick, when no monster is alive yet.
// A group with live rows left over was not closed out by the previous
// run. Each such group is logged and the count of them returned.
func AuditLedger(ctx context.Context, counter LiveCounter, gens []*Generator, log *zap.Logger) (int, error) {
	stale := 0
	for _, g := range gens {
		n, err := counter.CountLive(ctx, g.Group.GroupID)
		if err != nil {
			return stale, fmt.Errorf("audit group %d: %w", g.Group.GroupID, err)
		}
		if n != 0 {
			stale++
			log.Warn("spawn ledger out of step with fresh world",
				zap.Int32("group", g.Group.GroupID),
				zap.Int("ledger_live", n),
			)
		}
	}
	return stale, nil
}
