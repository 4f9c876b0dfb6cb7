package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/tatianab/integrity-trail/internal/errors"
	"github.com/tatianab/integrity-trail/internal/models"

	_ "modernc.org/sqlite" // Enable sqlite driver
)

//go:embed schema.sql
var schemaDefinition string

// SQLiteStore keeps each slot's serialized session in one row of the sessions table. The decision log is
// mirrored into the decisions table so that playthroughs can be queried without decoding the blob.
type SQLiteStore struct {
	db     *sqlx.DB
	slot   string
	logger *slog.Logger
}

type sessionRow struct {
	Slot          string `db:"slot"`
	PlaythroughID string `db:"playthrough_id"`
	SchemaVersion int    `db:"schema_version"`
	State         []byte `db:"state"`
	UpdatedAt     string `db:"updated_at"`
}

type decisionRow struct {
	Slot       string `db:"slot"`
	Seq        int    `db:"seq"`
	ScenarioID int    `db:"scenario_id"`
	ChoiceID   int    `db:"choice_id"`
	DecidedAt  string `db:"decided_at"`
	Integrity  int    `db:"integrity"`
	Money      int    `db:"money"`
	Power      int    `db:"power"`
	Reputation int    `db:"reputation"`
}

// NewSQLiteStore opens the database at url and synchronizes the schema.
//
// The url parameter is the path to the SQLite database file or ":memory:" for an in-memory database.
func NewSQLiteStore(ctx context.Context, url, slot string, logger *slog.Logger) (*SQLiteStore, error) {
	// Every in-memory store gets its own named database so parallel tests do not share data.
	// See https://www.sqlite.org/inmemorydb.html.
	inMemoryConfig := ""
	if strings.Contains(url, ":memory:") {
		url = uuid.NewString()
		inMemoryConfig = "&mode=memory&cache=shared"
	}
	pragmas := strings.Join([]string{
		"_pragma=journal_mode(wal)",
		"_pragma=busy_timeout(5000)",
		"_pragma=synchronous(normal)",
		"_pragma=foreign_keys(1)",
		"_txlock=immediate",
	}, "&")
	dsn := fmt.Sprintf("file:%s?%s%s", url, pragmas, inMemoryConfig)

	db, err := sqlx.ConnectContext(ctx, "sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open database", slog.String("url", url))
	}

	// A single writer avoids SQLITE_BUSY and keeps an in-memory database alive.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if _, err = db.ExecContext(ctx, schemaDefinition); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "synchronize schema")
	}

	return &SQLiteStore{
		db:     db,
		slot:   slot,
		logger: logger.With(slog.String("source", "SQLiteStore"), slog.String("slot", slot)),
	}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Save(ctx context.Context, state *models.SessionState) (err error) {
	data, err := models.EncodeState(state)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin save")
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				s.logger.LogAttrs(ctx, slog.LevelError, "rollback save", errors.SlogError(rollbackErr))
			}
		}
	}()

	row := sessionRow{
		Slot:          s.slot,
		PlaythroughID: state.PlaythroughID,
		SchemaVersion: state.SchemaVersion,
		State:         data,
		UpdatedAt:     time.Now().UTC().Format(time.RFC3339Nano),
	}
	const upsert = `INSERT INTO sessions (slot, playthrough_id, schema_version, state, updated_at)
VALUES (:slot, :playthrough_id, :schema_version, :state, :updated_at)
ON CONFLICT (slot) DO UPDATE SET playthrough_id = excluded.playthrough_id,
                                 schema_version = excluded.schema_version,
                                 state          = excluded.state,
                                 updated_at     = excluded.updated_at`
	if _, err = tx.NamedExecContext(ctx, upsert, row); err != nil {
		return errors.Wrap(err, "upsert session")
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM decisions WHERE slot = ?`, s.slot); err != nil {
		return errors.Wrap(err, "clear decisions")
	}
	const insertDecision = `INSERT INTO decisions (slot, seq, scenario_id, choice_id, decided_at, integrity, money, power, reputation)
VALUES (:slot, :seq, :scenario_id, :choice_id, :decided_at, :integrity, :money, :power, :reputation)`
	for _, d := range state.Decisions {
		if _, err = tx.NamedExecContext(ctx, insertDecision, decisionRow{
			Slot:       s.slot,
			Seq:        d.Seq,
			ScenarioID: d.ScenarioID,
			ChoiceID:   d.ChoiceID,
			DecidedAt:  d.Timestamp.UTC().Format(time.RFC3339Nano),
			Integrity:  d.Stats.Integrity,
			Money:      d.Stats.Money,
			Power:      d.Stats.Power,
			Reputation: d.Stats.Reputation,
		}); err != nil {
			return errors.Wrap(err, "insert decision", slog.Int("seq", d.Seq))
		}
	}

	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "commit save")
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context) (*models.SessionState, error) {
	var row sessionRow
	err := s.db.GetContext(ctx, &row,
		`SELECT slot, playthrough_id, schema_version, state, updated_at FROM sessions WHERE slot = ?`, s.slot)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "select session")
	}
	state, err := models.DecodeState(row.State)
	if err != nil {
		return nil, errors.Wrap(err, "decode session", slog.String("playthrough_id", row.PlaythroughID))
	}
	return state, nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE slot = ?`, s.slot); err != nil {
		return errors.Wrap(err, "delete session")
	}
	return nil
}

// Decisions returns the decision log of the slot from the decisions table, in sequence order.
func (s *SQLiteStore) Decisions(ctx context.Context) ([]models.Decision, error) {
	var rows []decisionRow
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT slot, seq, scenario_id, choice_id, decided_at, integrity, money, power, reputation
FROM decisions WHERE slot = ? ORDER BY seq`, s.slot); err != nil {
		return nil, errors.Wrap(err, "select decisions")
	}

	decisions := make([]models.Decision, 0, len(rows))
	for _, row := range rows {
		decidedAt, err := time.Parse(time.RFC3339Nano, row.DecidedAt)
		if err != nil {
			return nil, errors.Wrap(err, "parse decision time", slog.Int("seq", row.Seq))
		}
		decisions = append(decisions, models.Decision{
			Seq:        row.Seq,
			ScenarioID: row.ScenarioID,
			ChoiceID:   row.ChoiceID,
			Timestamp:  decidedAt,
			Stats: models.Stats{
				Integrity:  row.Integrity,
				Money:      row.Money,
				Power:      row.Power,
				Reputation: row.Reputation,
			},
		})
	}
	return decisions, nil
}
