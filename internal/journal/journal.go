package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/melvorminer/melvorminer/internal/event"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS mining_events (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	supervisor  TEXT NOT NULL,
	kind        TEXT NOT NULL,
	ore_id      TEXT NOT NULL DEFAULT '',
	hp          INTEGER NOT NULL DEFAULT 0,
	detail      TEXT NOT NULL DEFAULT '',
	occurred_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_mining_events_ore ON mining_events(ore_id, occurred_at);
`

// Journal keeps a sqlite history of mining events.
type Journal struct {
	conn *sql.DB
}

type Entry struct {
	ID         int64
	Supervisor string
	Kind       string
	OreID      string
	HP         int
	Detail     string
	OccurredAt time.Time
}

func Open(dbPath string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping journal: %w", err)
	}

	// SQLite works best with a single connection
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create journal schema: %w", err)
	}

	return &Journal{conn: conn}, nil
}

func (j *Journal) Close() error {
	if j.conn != nil {
		return j.conn.Close()
	}
	return nil
}

func (j *Journal) Record(ctx context.Context, e Entry) error {
	_, err := j.conn.ExecContext(ctx, `
		INSERT INTO mining_events (supervisor, kind, ore_id, hp, detail, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.Supervisor, e.Kind, e.OreID, e.HP, e.Detail, e.OccurredAt)
	if err != nil {
		return fmt.Errorf("failed to insert journal entry: %w", err)
	}

	return nil
}

// Handle is an event.Handler that journals every mining event.
func (j *Journal) Handle(ctx context.Context, e event.Event) error {
	entry := Entry{
		Supervisor: e.Supervisor(),
		Detail:     e.Message(),
		OccurredAt: e.OccurredAt(),
	}

	switch evt := e.(type) {
	case event.MiningStartedEvent:
		entry.Kind = "mining_started"
		entry.OreID = evt.OreID
		entry.HP = evt.InitialHP
	case event.GlovesSwitchedEvent:
		entry.Kind = "gloves_switched"
		entry.OreID = evt.OreID
	case event.OreDepletedEvent:
		entry.Kind = "ore_depleted"
		entry.OreID = evt.OreID
	case event.MiningStoppedEvent:
		entry.Kind = "mining_stopped"
		if evt.Err != nil {
			entry.Detail = fmt.Sprintf("%s: %v", evt.Message(), evt.Err)
		}
	default:
		entry.Kind = "message"
	}

	return j.Record(ctx, entry)
}

// Recent returns the last n entries, newest first.
func (j *Journal) Recent(ctx context.Context, n int) ([]Entry, error) {
	rows, err := j.conn.QueryContext(ctx, `
		SELECT id, supervisor, kind, ore_id, hp, detail, occurred_at
		FROM mining_events
		ORDER BY id DESC
		LIMIT ?
	`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Supervisor, &e.Kind, &e.OreID, &e.HP, &e.Detail, &e.OccurredAt); err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// CountByOre returns how many times mining started on each ore.
func (j *Journal) CountByOre(ctx context.Context) (map[string]int, error) {
	rows, err := j.conn.QueryContext(ctx, `
		SELECT ore_id, COUNT(*) FROM mining_events
		WHERE kind = 'mining_started'
		GROUP BY ore_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var ore string
		var n int
		if err := rows.Scan(&ore, &n); err != nil {
			return nil, err
		}
		counts[ore] = n
	}

	return counts, rows.Err()
}
