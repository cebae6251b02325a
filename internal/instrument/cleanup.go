package instrument

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strconv"
	"time"

	"notion-forms/internal/store"
)

// CleanupOldEvents deletes events older than retentionDays from the _events table.
func CleanupOldEvents(ctx context.Context, db *sql.DB, dialect store.Dialect, retentionDays int) (int64, error) {
	pb := dialect.NewParamBuilder()
	whereExpr := dialect.IntervalDeleteExpr("created_at", pb, strconv.Itoa(retentionDays))
	n, err := store.Exec(ctx, db, fmt.Sprintf("DELETE FROM _events WHERE %s", whereExpr), pb.Params()...)
	if err != nil {
		return 0, fmt.Errorf("event cleanup: %w", err)
	}
	return n, nil
}

// Janitor periodically removes expired events.
type Janitor struct {
	db            *sql.DB
	dialect       store.Dialect
	retentionDays int
	interval      time.Duration
	ticker        *time.Ticker
	done          chan struct{}
}

func NewJanitor(db *sql.DB, dialect store.Dialect, retentionDays int, interval time.Duration) *Janitor {
	return &Janitor{db: db, dialect: dialect, retentionDays: retentionDays, interval: interval}
}

// Start runs a cleanup immediately and then on every tick.
func (j *Janitor) Start() {
	j.done = make(chan struct{})
	j.ticker = time.NewTicker(j.interval)
	go j.run()
	log.Printf("Event janitor started (retention: %d days, every %s)", j.retentionDays, j.interval)
}

// Stop halts the background ticker.
func (j *Janitor) Stop() {
	if j.ticker != nil {
		j.ticker.Stop()
	}
	if j.done != nil {
		close(j.done)
	}
}

func (j *Janitor) run() {
	j.cleanup()
	for {
		select {
		case <-j.done:
			return
		case <-j.ticker.C:
			j.cleanup()
		}
	}
}

func (j *Janitor) cleanup() {
	n, err := CleanupOldEvents(context.Background(), j.db, j.dialect, j.retentionDays)
	if err != nil {
		log.Printf("ERROR: %v", err)
		return
	}
	if n > 0 {
		log.Printf("Event cleanup: deleted %d old events", n)
	}
}
