package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/abhisek/adaptprep/internal/bkt"
	"github.com/abhisek/adaptprep/internal/catalog"
	"github.com/abhisek/adaptprep/internal/diagnostic"
	"github.com/abhisek/adaptprep/internal/irt"
	"github.com/abhisek/adaptprep/internal/practice"
	"github.com/abhisek/adaptprep/internal/session"
	"github.com/abhisek/adaptprep/internal/spacedrep"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// migrations is the versioned, append-only list of schema statements
// executed in order at Open, in place of ent's generated migrator (see
// DESIGN.md for why this package does not use entgo.io/ent). One attempt
// per row (append-only), one mastery-state row per (learner, subskill)
// keyed for upsert, one row per diagnostic completion, one flashcard row
// per (learner, word).
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS mastery_states (
		learner_id    TEXT NOT NULL,
		subskill_id   TEXT NOT NULL,
		theta         REAL NOT NULL,
		se            REAL NOT NULL,
		p_known       REAL NOT NULL,
		p_learn       REAL NOT NULL,
		p_forget      REAL NOT NULL,
		attempt_count INTEGER NOT NULL,
		correct_count INTEGER NOT NULL,
		last_practiced TEXT,
		PRIMARY KEY (learner_id, subskill_id)
	)`,
	`CREATE TABLE IF NOT EXISTS attempts (
		id               TEXT PRIMARY KEY,
		learner_id       TEXT NOT NULL,
		session_id       TEXT NOT NULL,
		item_id          TEXT NOT NULL,
		selected_choice  INTEGER,
		correct          INTEGER NOT NULL,
		response_time_ms INTEGER NOT NULL,
		hints_used       INTEGER NOT NULL DEFAULT 0,
		primary_subskill TEXT NOT NULL,
		theta_before     REAL NOT NULL,
		theta_after      REAL NOT NULL,
		p_known_before   REAL NOT NULL,
		p_known_after    REAL NOT NULL,
		created_at       TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_attempts_learner ON attempts(learner_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS error_logs (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		learner_id TEXT NOT NULL,
		attempt_id TEXT NOT NULL,
		item_id    TEXT NOT NULL,
		category   TEXT NOT NULL,
		created_at TEXT NOT NULL DEFAULT (datetime('now'))
	)`,
	`CREATE TABLE IF NOT EXISTS diagnostic_results (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		learner_id   TEXT NOT NULL,
		payload_json TEXT NOT NULL,
		created_at   TEXT NOT NULL DEFAULT (datetime('now'))
	)`,
	`CREATE INDEX IF NOT EXISTS idx_diagnostic_results_learner ON diagnostic_results(learner_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS flashcards (
		learner_id     TEXT NOT NULL,
		word           TEXT NOT NULL,
		stability_days REAL NOT NULL,
		difficulty     REAL NOT NULL,
		ease           REAL NOT NULL,
		repetitions    INTEGER NOT NULL,
		lapse_count    INTEGER NOT NULL,
		last_review    TEXT,
		next_review    TEXT,
		interval_hours REAL NOT NULL,
		PRIMARY KEY (learner_id, word)
	)`,
}

// SQLiteStore is the StateStore implementation backed by database/sql and
// modernc.org/sqlite (WAL journal, busy timeout, foreign keys on,
// synchronous NORMAL).
type SQLiteStore struct {
	db *sql.DB
}

var _ StateStore = (*SQLiteStore)(nil)

// Open connects to the SQLite database at dsn, applies the recommended
// pragmas, and runs every migration in order.
func Open(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: apply pragmas: %w", err)
	}

	for _, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: migrate: %w", err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// DefaultDBPath resolves the database file path in priority order:
// 1. ADAPTPREP_DB environment variable
// 2. $XDG_DATA_HOME/adaptprep/adaptprep.db
// 3. ~/.local/share/adaptprep/adaptprep.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("ADAPTPREP_DB"); p != "" {
		return p, ensureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("store: resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "adaptprep", "adaptprep.db")
	return p, ensureDir(p)
}

func ensureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}

func formatTime(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(time.RFC3339Nano), Valid: true}
}

func parseTime(s sql.NullString) time.Time {
	if !s.Valid || s.String == "" {
		return time.Time{}
	}
	t, _ := time.Parse(time.RFC3339Nano, s.String)
	return t
}

// GetMastery returns the persisted mastery record for (learnerID,
// subskillID), or ok=false if none exists yet.
func (s *SQLiteStore) GetMastery(ctx context.Context, learnerID, subskillID string) (bkt.MasteryState, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT theta, se, p_known, p_learn, p_forget, attempt_count, correct_count, last_practiced
		FROM mastery_states WHERE learner_id = ? AND subskill_id = ?
	`, learnerID, subskillID)

	var m bkt.MasteryState
	m.SubskillID = subskillID
	var lastPracticed sql.NullString
	err := row.Scan(&m.Theta, &m.SE, &m.State.PKnown, &m.State.PLearn, &m.State.PForget,
		&m.State.AttemptCount, &m.State.CorrectCount, &lastPracticed)
	if err == sql.ErrNoRows {
		return bkt.MasteryState{}, false, nil
	}
	if err != nil {
		return bkt.MasteryState{}, false, fmt.Errorf("%w: get mastery: %v", ErrWriteFailed, err)
	}
	m.State.LastPracticed = parseTime(lastPracticed)
	return m, true, nil
}

// UpsertMastery durably writes a mastery record, replacing any prior row
// for the same (learner, subskill).
func (s *SQLiteStore) UpsertMastery(ctx context.Context, learnerID string, state bkt.MasteryState) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO mastery_states (learner_id, subskill_id, theta, se, p_known, p_learn, p_forget, attempt_count, correct_count, last_practiced)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(learner_id, subskill_id) DO UPDATE SET
			theta = excluded.theta, se = excluded.se,
			p_known = excluded.p_known, p_learn = excluded.p_learn, p_forget = excluded.p_forget,
			attempt_count = excluded.attempt_count, correct_count = excluded.correct_count,
			last_practiced = excluded.last_practiced
	`, learnerID, state.SubskillID, state.Theta, state.SE, state.State.PKnown, state.State.PLearn, state.State.PForget,
		state.State.AttemptCount, state.State.CorrectCount, formatTime(state.State.LastPracticed))
	if err != nil {
		return fmt.Errorf("%w: upsert mastery: %v", ErrWriteFailed, err)
	}
	return nil
}

// AppendAttempt writes an immutable attempt row.
func (s *SQLiteStore) AppendAttempt(ctx context.Context, learnerID string, a session.Attempt) error {
	var choice sql.NullInt64
	if a.SelectedChoice != nil {
		choice = sql.NullInt64{Int64: int64(*a.SelectedChoice), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO attempts (id, learner_id, session_id, item_id, selected_choice, correct, response_time_ms,
			hints_used, primary_subskill, theta_before, theta_after, p_known_before, p_known_after, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, learnerID, a.SessionID, a.ItemID, choice, boolToInt(a.Correct), a.ResponseTimeMs,
		a.HintsUsed, a.PrimarySubskill, a.ThetaBefore, a.ThetaAfter, a.PKnownBefore, a.PKnownAfter,
		a.Timestamp.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("%w: append attempt: %v", ErrWriteFailed, err)
	}
	return nil
}

// AppendErrorLog writes an error-log row alongside an incorrect attempt.
func (s *SQLiteStore) AppendErrorLog(ctx context.Context, learnerID string, e practice.ErrorLog) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO error_logs (learner_id, attempt_id, item_id, category) VALUES (?, ?, ?, ?)
	`, learnerID, e.AttemptID, e.ItemID, string(e.Category))
	if err != nil {
		return fmt.Errorf("%w: append error log: %v", ErrWriteFailed, err)
	}
	return nil
}

// diagnosticResultRow is the JSON-serializable shape of diagnostic.Result
// stored in diagnostic_results.payload_json — one row per completed
// diagnostic session, since its shape (a slice plus a map keyed by a
// non-string-like type) doesn't map cleanly onto a flat relational row.
type diagnosticResultRow struct {
	PerSubskill           []diagnostic.SubskillEstimate `json:"per_subskill"`
	SectionMeans          map[catalog.Section]float64   `json:"section_means"`
	RecommendedFocusAreas []string                      `json:"recommended_focus_areas"`
	TotalWallClockSeconds float64                       `json:"total_wall_clock_seconds"`
	ScaledScores          map[catalog.Section]irt.ScaledScore `json:"scaled_scores"`
}

// InsertDiagnosticResult persists a completed diagnostic's Result.
func (s *SQLiteStore) InsertDiagnosticResult(ctx context.Context, learnerID string, r diagnostic.Result) error {
	row := diagnosticResultRow{r.PerSubskill, r.SectionMeans, r.RecommendedFocusAreas, r.TotalWallClockSeconds, r.ScaledScores}
	payload, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("%w: marshal diagnostic result: %v", ErrWriteFailed, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO diagnostic_results (learner_id, payload_json) VALUES (?, ?)
	`, learnerID, string(payload))
	if err != nil {
		return fmt.Errorf("%w: insert diagnostic result: %v", ErrWriteFailed, err)
	}
	return nil
}

// LatestDiagnosticResult returns the most recently inserted diagnostic
// Result for learnerID, or ok=false if none exists.
func (s *SQLiteStore) LatestDiagnosticResult(ctx context.Context, learnerID string) (diagnostic.Result, bool, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `
		SELECT payload_json FROM diagnostic_results WHERE learner_id = ? ORDER BY created_at DESC, id DESC LIMIT 1
	`, learnerID).Scan(&payload)
	if err == sql.ErrNoRows {
		return diagnostic.Result{}, false, nil
	}
	if err != nil {
		return diagnostic.Result{}, false, fmt.Errorf("%w: latest diagnostic result: %v", ErrWriteFailed, err)
	}
	var row diagnosticResultRow
	if err := json.Unmarshal([]byte(payload), &row); err != nil {
		return diagnostic.Result{}, false, fmt.Errorf("%w: unmarshal diagnostic result: %v", ErrWriteFailed, err)
	}
	return diagnostic.Result{
		PerSubskill:           row.PerSubskill,
		SectionMeans:          row.SectionMeans,
		RecommendedFocusAreas: row.RecommendedFocusAreas,
		TotalWallClockSeconds: row.TotalWallClockSeconds,
		ScaledScores:          row.ScaledScores,
	}, true, nil
}

// GetFlashcard returns the persisted flashcard for (learnerID, word), or
// ok=false if none exists yet.
func (s *SQLiteStore) GetFlashcard(ctx context.Context, learnerID, word string) (spacedrep.Flashcard, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT stability_days, difficulty, ease, repetitions, lapse_count, last_review, next_review, interval_hours
		FROM flashcards WHERE learner_id = ? AND word = ?
	`, learnerID, word)

	var card spacedrep.Flashcard
	card.Word = word
	var lastReview, nextReview sql.NullString
	err := row.Scan(&card.StabilityDays, &card.Difficulty, &card.Ease, &card.Repetitions, &card.LapseCount,
		&lastReview, &nextReview, &card.IntervalHours)
	if err == sql.ErrNoRows {
		return spacedrep.Flashcard{}, false, nil
	}
	if err != nil {
		return spacedrep.Flashcard{}, false, fmt.Errorf("%w: get flashcard: %v", ErrWriteFailed, err)
	}
	card.LastReview = parseTime(lastReview)
	card.NextReview = parseTime(nextReview)
	return card, true, nil
}

// UpsertFlashcard durably writes a flashcard row, replacing any prior row
// for the same (learner, word).
func (s *SQLiteStore) UpsertFlashcard(ctx context.Context, learnerID string, card spacedrep.Flashcard) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO flashcards (learner_id, word, stability_days, difficulty, ease, repetitions, lapse_count, last_review, next_review, interval_hours)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(learner_id, word) DO UPDATE SET
			stability_days = excluded.stability_days, difficulty = excluded.difficulty, ease = excluded.ease,
			repetitions = excluded.repetitions, lapse_count = excluded.lapse_count,
			last_review = excluded.last_review, next_review = excluded.next_review, interval_hours = excluded.interval_hours
	`, learnerID, card.Word, card.StabilityDays, card.Difficulty, card.Ease, card.Repetitions, card.LapseCount,
		formatTime(card.LastReview), formatTime(card.NextReview), card.IntervalHours)
	if err != nil {
		return fmt.Errorf("%w: upsert flashcard: %v", ErrWriteFailed, err)
	}
	return nil
}

// DueFlashcards returns every flashcard for learnerID whose next_review is
// at or before now, or never scheduled; ordering is the caller's job via
// spacedrep.SelectDue.
func (s *SQLiteStore) DueFlashcards(ctx context.Context, learnerID string) ([]spacedrep.Flashcard, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT word, stability_days, difficulty, ease, repetitions, lapse_count, last_review, next_review, interval_hours
		FROM flashcards WHERE learner_id = ? AND (next_review IS NULL OR next_review <= ?)
	`, learnerID, time.Now().Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("%w: due flashcards: %v", ErrWriteFailed, err)
	}
	defer rows.Close()

	var out []spacedrep.Flashcard
	for rows.Next() {
		var card spacedrep.Flashcard
		var lastReview, nextReview sql.NullString
		if err := rows.Scan(&card.Word, &card.StabilityDays, &card.Difficulty, &card.Ease, &card.Repetitions,
			&card.LapseCount, &lastReview, &nextReview, &card.IntervalHours); err != nil {
			return nil, fmt.Errorf("%w: scan flashcard: %v", ErrWriteFailed, err)
		}
		card.LastReview = parseTime(lastReview)
		card.NextReview = parseTime(nextReview)
		out = append(out, card)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
