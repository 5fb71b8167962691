package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"project_healthbot/internal/entities"
)

type SubscriberRepository struct {
	db *pgxpool.Pool
}

func NewSubscriberRepository(db *pgxpool.Pool) *SubscriberRepository {
	return &SubscriberRepository{db: db}
}

// UpsertSubscriber inserts the subscriber or replaces its language.
func (r *SubscriberRepository) UpsertSubscriber(ctx context.Context, s entities.Subscriber) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO subscribers (phone, language) VALUES ($1, $2)
		ON CONFLICT (phone) DO UPDATE SET language = EXCLUDED.language
	`, s.Phone, string(s.Language))
	if err != nil {
		return fmt.Errorf("upsert subscriber: %w", err)
	}
	return nil
}

// DeleteSubscriber is a no-op for unknown phones.
func (r *SubscriberRepository) DeleteSubscriber(ctx context.Context, phone string) error {
	if _, err := r.db.Exec(ctx, "DELETE FROM subscribers WHERE phone = $1", phone); err != nil {
		return fmt.Errorf("delete subscriber: %w", err)
	}
	return nil
}

func (r *SubscriberRepository) ListSubscribers(ctx context.Context) ([]entities.Subscriber, error) {
	rows, err := r.db.Query(ctx, "SELECT phone, language FROM subscribers ORDER BY phone")
	if err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}
	defer rows.Close()

	subs := []entities.Subscriber{}
	for rows.Next() {
		var s entities.Subscriber
		var lang string
		if err := rows.Scan(&s.Phone, &lang); err != nil {
			return nil, fmt.Errorf("scan subscriber: %w", err)
		}
		s.Language = entities.Language(lang)
		subs = append(subs, s)
	}
	return subs, rows.Err()
}
