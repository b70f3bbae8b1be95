package persist

import (
	"context"
	"fmt"
)

// Entry is one narrative event of a run.
type Entry struct {
	Tick uint64
	Kind string
	Data map[string]any
}

// Journal records a scene run. The scene keeps running when it fails.
type Journal interface {
	StartRun(ctx context.Context, scene string, seed int64) (int64, error)
	Append(ctx context.Context, runID int64, entries []Entry) error
	FinishRun(ctx context.Context, runID int64, ticks uint64) error
}

type JournalRepo struct {
	db *DB
}

func NewJournalRepo(db *DB) *JournalRepo {
	return &JournalRepo{db: db}
}

func (r *JournalRepo) StartRun(ctx context.Context, scene string, seed int64) (int64, error) {
	var id int64
	err := r.db.Pool.QueryRow(ctx,
		`INSERT INTO scene_runs (scene, seed) VALUES ($1, $2) RETURNING id`,
		scene, seed,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("start run: %w", err)
	}
	return id, nil
}

// Append writes a batch of entries in a single transaction. Either all of
// them are stored or none is.
func (r *JournalRepo) Append(ctx context.Context, runID int64, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("journal begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, e := range entries {
		data := e.Data
		if data == nil {
			data = map[string]any{}
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO scene_events (run_id, tick, kind, data) VALUES ($1, $2, $3, $4)`,
			runID, int64(e.Tick), e.Kind, data,
		); err != nil {
			return fmt.Errorf("journal insert %s: %w", e.Kind, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("journal commit: %w", err)
	}
	return nil
}

func (r *JournalRepo) FinishRun(ctx context.Context, runID int64, ticks uint64) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE scene_runs SET finished_at = now(), ticks = $2 WHERE id = $1`,
		runID, int64(ticks),
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// NopJournal is used when the database is disabled.
type NopJournal struct{}

func (NopJournal) StartRun(context.Context, string, int64) (int64, error) { return 0, nil }
func (NopJournal) Append(context.Context, int64, []Entry) error           { return nil }
func (NopJournal) FinishRun(context.Context, int64, uint64) error         { return nil }

var (
	_ Journal = (*JournalRepo)(nil)
	_ Journal = NopJournal{}
)
