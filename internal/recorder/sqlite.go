package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists records to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so external readers can query while the bot writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS analysis_log (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			symbol      TEXT NOT NULL,
			price       REAL,
			action      TEXT,
			confidence  REAL,
			entry       REAL,
			stop_loss   REAL,
			target_cash REAL,
			reason      TEXT,
			raw_snippet TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analysis_ts ON analysis_log(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_analysis_symbol ON analysis_log(symbol)`,

		`CREATE TABLE IF NOT EXISTS order_log (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			symbol    TEXT NOT NULL,
			side      TEXT,
			qty       INTEGER,
			spend     REAL,
			order_id  TEXT,
			simulated INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_order_ts ON order_log(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordAnalysis(rec *AnalysisRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO analysis_log
		(timestamp, symbol, price, action, confidence, entry, stop_loss, target_cash, reason, raw_snippet)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), rec.Symbol, rec.Price, string(rec.Action), rec.Confidence,
		rec.Entry, rec.StopLoss, rec.TargetCash, rec.Reason, rec.RawSnippet,
	)
	return err
}

func (r *SQLiteRecorder) RecordOrder(rec *OrderRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	simulated := 0
	if rec.Simulated {
		simulated = 1
	}
	_, err := r.db.Exec(`INSERT INTO order_log
		(timestamp, symbol, side, qty, spend, order_id, simulated)
		VALUES (?,?,?,?,?,?,?)`,
		time.Now().Unix(), rec.Symbol, rec.Side, rec.Qty, rec.Spend, rec.OrderID, simulated,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
