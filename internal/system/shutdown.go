package system

import (
	"time"

	coresys "github.com/l1jgo/mobsim/internal/core/system"
)

// Shutdown closes out the simulation once the partitions have stopped.
// Every monster is unloaded first. Queued events and buffered intents are
// then delivered, and the ledger is flushed last. ledger may be nil.
// Returns the number of monsters unloaded.
func Shutdown(r *coresys.Runner, cleanup *CleanupSystem, ledger *LedgerSystem, dt time.Duration) int {
	n := cleanup.Unload()
	r.TickPhase(coresys.PhasePreUpdate, dt)
	r.TickPhase(coresys.PhaseOutput, dt)
	if ledger != nil {
		ledger.Flush()
	}
	return n
}
