package persist

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// Ledger event kinds.
const (
	LedgerSpawn   = "spawn"
	LedgerDespawn = "despawn"
)

// LedgerEntry is one monster lifecycle row.
type LedgerEntry struct {
	Event      string
	ObjectID   int32
	TemplateID int32
	GroupID    int32
	MapID      int16
	X, Y       int32
	Killed     bool
	At         time.Time
}

type LedgerRepo struct {
	db       *DB
	serverID int
}

func NewLedgerRepo(db *DB, serverID int) *LedgerRepo {
	return &LedgerRepo{db: db, serverID: serverID}
}

// WriteBatch inserts entries in one round trip inside a transaction. Either
// every row lands or none does.
func (r *LedgerRepo) WriteBatch(ctx context.Context, entries []LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ledger begin: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(
			`INSERT INTO actor_ledger (event, object_id, template_id, group_id, map_id, x, y, killed, at, server_id)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			e.Event, e.ObjectID, e.TemplateID, e.GroupID, e.MapID, e.X, e.Y, e.Killed, e.At, r.serverID,
		)
	}
	br := tx.SendBatch(ctx, batch)
	for range entries {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("ledger insert: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("ledger batch: %w", err)
	}
	return tx.Commit(ctx)
}

// CountLive returns how many objects of a spawn group were spawned and not
// yet despawned according to the ledger.
func (r *LedgerRepo) CountLive(ctx context.Context, groupID int32) (int, error) {
	var n int
	err := r.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FILTER (WHERE event = $2) - COUNT(*) FILTER (WHERE event = $3)
		 FROM actor_ledger WHERE group_id = $1 AND server_id = $4`,
		groupID, LedgerSpawn, LedgerDespawn, r.serverID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("ledger count: %w", err)
	}
	return n, nil
}
