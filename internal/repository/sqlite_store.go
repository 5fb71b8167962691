package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"project_healthbot/internal/entities"
)

// SQLiteStore keeps subscribers, broadcast history and admin users in one
// SQLite database. It is the default backend when no Postgres URL is set.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db, now: time.Now}
}

func (s *SQLiteStore) UpsertSubscriber(ctx context.Context, sub entities.Subscriber) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO subscribers (phone, language) VALUES (?, ?)
		ON CONFLICT(phone) DO UPDATE SET language = excluded.language
	`, sub.Phone, string(sub.Language))
	if err != nil {
		return fmt.Errorf("upsert subscriber: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteSubscriber(ctx context.Context, phone string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM subscribers WHERE phone = ?", phone); err != nil {
		return fmt.Errorf("delete subscriber: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListSubscribers(ctx context.Context) ([]entities.Subscriber, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT phone, language FROM subscribers ORDER BY phone")
	if err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}
	defer rows.Close()

	subs := []entities.Subscriber{}
	for rows.Next() {
		var sub entities.Subscriber
		var lang string
		if err := rows.Scan(&sub.Phone, &lang); err != nil {
			return nil, fmt.Errorf("scan subscriber: %w", err)
		}
		sub.Language = entities.Language(lang)
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// SaveBroadcast stamps the record with the current UTC time.
func (s *SQLiteStore) SaveBroadcast(ctx context.Context, message, channel string) (*entities.Broadcast, error) {
	ts := s.now().UTC()
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO broadcasts (message, channel, timestamp) VALUES (?, ?, ?)",
		message, channel, ts.Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("insert broadcast: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("broadcast id: %w", err)
	}
	return &entities.Broadcast{ID: id, Message: message, Channel: channel, Timestamp: ts}, nil
}

// ListBroadcasts returns the history newest first.
func (s *SQLiteStore) ListBroadcasts(ctx context.Context) ([]entities.Broadcast, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, message, channel, timestamp FROM broadcasts ORDER BY id DESC")
	if err != nil {
		return nil, fmt.Errorf("list broadcasts: %w", err)
	}
	defer rows.Close()

	history := []entities.Broadcast{}
	for rows.Next() {
		var b entities.Broadcast
		var ts string
		if err := rows.Scan(&b.ID, &b.Message, &b.Channel, &ts); err != nil {
			return nil, fmt.Errorf("scan broadcast: %w", err)
		}
		if b.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("broadcast %d timestamp: %w", b.ID, err)
		}
		history = append(history, b)
	}
	return history, rows.Err()
}

func (s *SQLiteStore) CreateUser(ctx context.Context, user *entities.User) error {
	created := s.now().UTC()
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO users (username, password_hash, role, created_at) VALUES (?, ?, ?, ?)",
		user.Username, user.PasswordHash, user.Role, created.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("user id: %w", err)
	}
	user.ID = int(id)
	user.CreatedAt = created
	return nil
}

// GetByUsername returns nil, nil when no such user exists.
func (s *SQLiteStore) GetByUsername(ctx context.Context, username string) (*entities.User, error) {
	var user entities.User
	var created string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, username, password_hash, role, created_at FROM users WHERE username = ?",
		username).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Role, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	user.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return &user, nil
}
