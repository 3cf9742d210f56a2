// Package storage provides the two persistence backends: the relational
// store holding messages, facts and runtime config, and the qdrant vector
// index holding the derived embedding projection.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"mailfacts/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"       // PostgreSQL driver for server deployments
	_ "modernc.org/sqlite"      // CGO-free SQLite driver, the local default
)

const (
	driverSQLite   = "sqlite"
	driverPostgres = "postgres"
)

// ErrMessageNotFound is returned when a lookup by id matches no row
var ErrMessageNotFound = errors.New("message not found")

// Store is the relational store for messages, extracted facts and app config
type Store struct {
	db     *sqlx.DB
	driver string
}

// New opens a relational store. A postgres:// URL selects the PostgreSQL
// driver; anything else is treated as a SQLite database file path.
func New(databaseURL string) (*Store, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}

	driver := driverSQLite
	if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
		driver = driverPostgres
	}

	db, err := sqlx.Open(driver, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool settings
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db, driver: driver}, nil
}

// NewFromDB wraps an existing connection, used by tests
func NewFromDB(db *sqlx.DB) *Store {
	return &Store{db: db, driver: db.DriverName()}
}

// DB exposes the underlying connection for health checks
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Close closes the underlying connection pool
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates the schema if it does not exist yet
func (s *Store) Migrate(ctx context.Context) error {
	idColumn := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if s.driver == driverPostgres {
		idColumn = "BIGSERIAL PRIMARY KEY"
	}

	statements := []string{
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS messages (
			id %s,
			store_id TEXT NOT NULL,
			entry_id TEXT NOT NULL,
			folder TEXT NOT NULL,
			subject TEXT NOT NULL,
			sender TEXT NOT NULL,
			to_addr TEXT NOT NULL DEFAULT '',
			cc_addr TEXT,
			sent_at TIMESTAMP NOT NULL,
			received_at TIMESTAMP NOT NULL,
			body_text TEXT NOT NULL,
			body_html TEXT,
			content_hash TEXT NOT NULL,
			last_indexed_at TIMESTAMP NOT NULL,
			UNIQUE (store_id, entry_id)
		)`, idColumn),
		`
		CREATE TABLE IF NOT EXISTS message_facts (
			message_id BIGINT PRIMARY KEY,
			primary_type TEXT NOT NULL,
			intent TEXT NOT NULL,
			urgency TEXT NOT NULL,
			sentiment TEXT NOT NULL,
			waiting_on TEXT NOT NULL,
			due_by TIMESTAMP,
			needs_response BOOLEAN NOT NULL,
			summary TEXT NOT NULL,
			key_points_json TEXT NOT NULL,
			risks_json TEXT NOT NULL,
			issues_json TEXT NOT NULL,
			blockers_json TEXT NOT NULL,
			open_questions_json TEXT NOT NULL,
			answered_questions_json TEXT NOT NULL,
			confidence REAL NOT NULL,
			provenance_json TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`
		CREATE TABLE IF NOT EXISTS app_config (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// SaveMessage upserts a message keyed by its unique (store_id, entry_id)
// pair and returns the durable row id. A conflict updates the mutable fields
// and keeps the existing id, which makes reprocessing idempotent.
func (s *Store) SaveMessage(ctx context.Context, msg *models.Message) (int64, error) {
	query := s.db.Rebind(`
		INSERT INTO messages (
			store_id, entry_id, folder, subject, sender, to_addr, cc_addr,
			sent_at, received_at, body_text, body_html, content_hash, last_indexed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (store_id, entry_id) DO UPDATE SET
			folder = excluded.folder,
			subject = excluded.subject,
			received_at = excluded.received_at,
			body_text = excluded.body_text,
			body_html = excluded.body_html,
			content_hash = excluded.content_hash,
			last_indexed_at = excluded.last_indexed_at
		RETURNING id`)

	var id int64
	err := s.db.GetContext(ctx, &id, query,
		msg.StoreID, msg.EntryID, msg.Folder, msg.Subject, msg.Sender,
		msg.To, msg.Cc, msg.SentAt, msg.ReceivedAt, msg.BodyText,
		msg.BodyHTML, msg.ContentHash, msg.LastIndexedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to save message: %w", err)
	}

	return id, nil
}

// SaveFacts upserts the extracted facts for a message, keyed by its row id.
// Reprocessing never produces duplicate fact rows for one message.
func (s *Store) SaveFacts(ctx context.Context, facts *models.ExtractedFact) error {
	keyPoints, err := json.Marshal(facts.KeyPoints)
	if err != nil {
		return fmt.Errorf("failed to marshal key points: %w", err)
	}
	risks, err := json.Marshal(facts.Risks)
	if err != nil {
		return fmt.Errorf("failed to marshal risks: %w", err)
	}
	issues, err := json.Marshal(facts.Issues)
	if err != nil {
		return fmt.Errorf("failed to marshal issues: %w", err)
	}
	blockers, err := json.Marshal(facts.Blockers)
	if err != nil {
		return fmt.Errorf("failed to marshal blockers: %w", err)
	}
	openQuestions, err := json.Marshal(facts.OpenQuestions)
	if err != nil {
		return fmt.Errorf("failed to marshal open questions: %w", err)
	}
	answeredQuestions, err := json.Marshal(facts.AnsweredQuestions)
	if err != nil {
		return fmt.Errorf("failed to marshal answered questions: %w", err)
	}
	provenance, err := json.Marshal(facts.Provenance)
	if err != nil {
		return fmt.Errorf("failed to marshal provenance: %w", err)
	}

	query := s.db.Rebind(`
		INSERT INTO message_facts (
			message_id, primary_type, intent, urgency, sentiment, waiting_on,
			due_by, needs_response, summary, key_points_json, risks_json,
			issues_json, blockers_json, open_questions_json,
			answered_questions_json, confidence, provenance_json, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (message_id) DO UPDATE SET
			primary_type = excluded.primary_type,
			intent = excluded.intent,
			urgency = excluded.urgency,
			sentiment = excluded.sentiment,
			waiting_on = excluded.waiting_on,
			due_by = excluded.due_by,
			needs_response = excluded.needs_response,
			summary = excluded.summary,
			key_points_json = excluded.key_points_json,
			risks_json = excluded.risks_json,
			issues_json = excluded.issues_json,
			blockers_json = excluded.blockers_json,
			open_questions_json = excluded.open_questions_json,
			answered_questions_json = excluded.answered_questions_json,
			confidence = excluded.confidence,
			provenance_json = excluded.provenance_json`)

	_, err = s.db.ExecContext(ctx, query,
		facts.MessageID, facts.PrimaryType, facts.Intent, facts.Urgency,
		facts.Sentiment, facts.WaitingOn, facts.DueBy, facts.NeedsResponse,
		facts.Summary, string(keyPoints), string(risks), string(issues),
		string(blockers), string(openQuestions), string(answeredQuestions),
		facts.Confidence, string(provenance), facts.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save facts: %w", err)
	}

	return nil
}

// GetConfig reads one app_config value; the second return reports presence
func (s *Store) GetConfig(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.GetContext(ctx, &value, s.db.Rebind("SELECT value FROM app_config WHERE key = ?"), key)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read config %q: %w", key, err)
	}
	return value, true, nil
}

// SetConfig upserts one app_config value
func (s *Store) SetConfig(ctx context.Context, key, value string) error {
	query := s.db.Rebind(`
		INSERT INTO app_config (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at`)

	_, err := s.db.ExecContext(ctx, query, key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to write config %q: %w", key, err)
	}
	return nil
}

const messageWithFactsColumns = `
	m.id, m.subject, m.sender, m.folder, m.received_at, m.body_text,
	f.primary_type, f.intent, f.urgency, f.sentiment, f.waiting_on,
	f.needs_response, f.due_by, f.summary, f.risks_json, f.blockers_json`

// RecentMessages returns the most recently received messages joined with
// their facts. Messages that failed extraction appear without facts.
func (s *Store) RecentMessages(ctx context.Context, limit int) ([]models.MessageWithFacts, error) {
	query := s.db.Rebind(`
		SELECT ` + messageWithFactsColumns + `
		FROM messages m
		LEFT JOIN message_facts f ON f.message_id = m.id
		ORDER BY m.received_at DESC
		LIMIT ?`)

	var rows []models.MessageWithFacts
	if err := s.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("failed to load recent messages: %w", err)
	}

	decodeFactLists(rows)
	return rows, nil
}

// MessagesByIDs returns messages with facts for the given row ids, in the
// order the ids were supplied
func (s *Store) MessagesByIDs(ctx context.Context, ids []int64) ([]models.MessageWithFacts, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`
		SELECT `+messageWithFactsColumns+`
		FROM messages m
		LEFT JOIN message_facts f ON f.message_id = m.id
		WHERE m.id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build id query: %w", err)
	}

	var rows []models.MessageWithFacts
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to load messages by id: %w", err)
	}

	decodeFactLists(rows)

	byID := make(map[int64]models.MessageWithFacts, len(rows))
	for _, r := range rows {
		byID[r.ID] = r
	}
	ordered := make([]models.MessageWithFacts, 0, len(rows))
	for _, id := range ids {
		if r, ok := byID[id]; ok {
			ordered = append(ordered, r)
		}
	}
	return ordered, nil
}

// MessageByID returns one message row by id
func (s *Store) MessageByID(ctx context.Context, id int64) (*models.MessageWithFacts, error) {
	rows, err := s.MessagesByIDs(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrMessageNotFound
	}
	return &rows[0], nil
}

// Stats returns aggregate counts for the dashboard surface
func (s *Store) Stats(ctx context.Context) (*models.StatsResponse, error) {
	var total int64
	if err := s.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM messages"); err != nil {
		return nil, fmt.Errorf("failed to count messages: %w", err)
	}

	var sentiments []models.SentimentCount
	err := s.db.SelectContext(ctx, &sentiments,
		"SELECT sentiment, COUNT(*) AS count FROM message_facts GROUP BY sentiment")
	if err != nil {
		return nil, fmt.Errorf("failed to load sentiment breakdown: %w", err)
	}

	return &models.StatsResponse{TotalMessages: total, Sentiments: sentiments}, nil
}

// decodeFactLists inflates the JSON list columns carried alongside each row
func decodeFactLists(rows []models.MessageWithFacts) {
	for i := range rows {
		if rows[i].RisksJSON != nil {
			_ = json.Unmarshal([]byte(*rows[i].RisksJSON), &rows[i].Risks)
		}
		if rows[i].BlockersJSON != nil {
			_ = json.Unmarshal([]byte(*rows[i].BlockersJSON), &rows[i].Blockers)
		}
	}
}
