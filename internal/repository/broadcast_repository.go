package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"project_healthbot/internal/entities"
)

type BroadcastRepository struct {
	db *pgxpool.Pool
}

func NewBroadcastRepository(db *pgxpool.Pool) *BroadcastRepository {
	return &BroadcastRepository{db: db}
}

// SaveBroadcast appends one record; the database assigns id and timestamp.
func (r *BroadcastRepository) SaveBroadcast(ctx context.Context, message, channel string) (*entities.Broadcast, error) {
	b := &entities.Broadcast{Message: message, Channel: channel}
	err := r.db.QueryRow(ctx,
		"INSERT INTO broadcasts (message, channel) VALUES ($1, $2) RETURNING id, timestamp",
		message, channel).Scan(&b.ID, &b.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("insert broadcast: %w", err)
	}
	return b, nil
}

// ListBroadcasts returns the history newest first.
func (r *BroadcastRepository) ListBroadcasts(ctx context.Context) ([]entities.Broadcast, error) {
	rows, err := r.db.Query(ctx, "SELECT id, message, channel, timestamp FROM broadcasts ORDER BY timestamp DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("list broadcasts: %w", err)
	}
	defer rows.Close()

	history := []entities.Broadcast{}
	for rows.Next() {
		var b entities.Broadcast
		if err := rows.Scan(&b.ID, &b.Message, &b.Channel, &b.Timestamp); err != nil {
			return nil, fmt.Errorf("scan broadcast: %w", err)
		}
		history = append(history, b)
	}
	return history, rows.Err()
}
