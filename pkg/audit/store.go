package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"strconv"
	"time"
)

// Store handles audit message persistence to the messages table
type Store struct {
	db       *sql.DB
	hostname string
	pid      string
}

// Message represents an audit message for database persistence
type Message struct {
	Facility  int            `json:"facility"`
	Severity  int            `json:"severity"`
	Timestamp time.Time      `json:"timestamp"`
	Hostname  string         `json:"hostname"`
	Appname   string         `json:"appname"`
	Procid    string         `json:"procid"`
	Msgid     string         `json:"msgid"`
	Sdata     map[string]any `json:"sdata"`
	Message   string         `json:"message"`
}

// NewStore creates a store on an existing database connection
func NewStore(db *sql.DB) *Store {
	hostname, _ := os.Hostname()
	return &Store{
		db:       db,
		hostname: hostname,
		pid:      strconv.Itoa(os.Getpid()),
	}
}

// Save persists an audit event
func (s *Store) Save(ctx context.Context, event Event) error {
	if s == nil || s.db == nil {
		return nil
	}

	sdataJSON, err := json.Marshal(event.StructuredData())
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO messages (facility, severity, timestamp, hostname, appname, procid, msgid, sdata, message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		event.Facility(),
		int(event.Severity()),
		time.Now().UTC(),
		s.hostname,
		AppName,
		s.pid,
		event.MessageID(),
		string(sdataJSON),
		event.Message(),
	)

	return err
}

// Recent returns the newest audit messages, newest first
func (s *Store) Recent(ctx context.Context, limit int) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT facility, severity, timestamp, COALESCE(hostname, ''), COALESCE(appname, ''),
		       COALESCE(procid, ''), COALESCE(msgid, ''), COALESCE(sdata, '{}'::jsonb), message
		FROM messages
		ORDER BY timestamp DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var messages []Message
	for rows.Next() {
		var m Message
		var sdata []byte
		if err := rows.Scan(&m.Facility, &m.Severity, &m.Timestamp, &m.Hostname, &m.Appname, &m.Procid, &m.Msgid, &sdata, &m.Message); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(sdata, &m.Sdata); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
