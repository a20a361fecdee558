package syncx

import (
	"context"
	"database/sql"
	"time"
)

const (
	EventMaterialCreated  = "material_created"
	EventAttemptSubmitted = "attempt_submitted"
)

type Event struct {
	Offset    int64
	Type      string
	Key       string
	DataJSON  string
	CreatedAt int64
}

type EventRepo struct{ db *sql.DB }

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

func (r *EventRepo) Append(ctx context.Context, e Event) error {
	return AppendTx(ctx, r.db, e)
}

// AppendTx writes an event using the caller's tx (or db) so domain writes
// and their events commit together.
func AppendTx(ctx context.Context, ex Execer, e Event) error {
	_, err := ex.ExecContext(ctx,
		`INSERT INTO event_log (typ, key, data, created_at)
		 VALUES ($1,$2,$3,$4)`,
		e.Type, e.Key, e.DataJSON, time.Now().Unix())
	return err
}

type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}
