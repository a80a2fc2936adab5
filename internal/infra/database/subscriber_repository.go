package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"launch_notifier/internal/domain/subscriber"
)

type SubscriberRepository struct {
	db *DB
}

func NewSubscriberRepository(db *DB) *SubscriberRepository {
	return &SubscriberRepository{db: db}
}

func (r *SubscriberRepository) Create(ctx context.Context, s *subscriber.Subscriber) error {
	query := r.db.rebind(`INSERT INTO subscribers (id, telegram_id, first_name, is_active, created_at, updated_at)
               VALUES ($1, $2, $3, $4, $5, $6)`)
	_, err := r.db.ExecContext(ctx, query, s.ID, s.TelegramID, s.FirstName, s.IsActive, s.CreatedAt.UTC(), s.UpdatedAt.UTC())
	if err != nil {
		if isUniqueViolation(err, "subscribers_telegram_id_unique") {
			return subscriber.ErrDuplicateTelegramID
		}
		return fmt.Errorf("error creating subscriber: %w", err)
	}
	return nil
}

func (r *SubscriberRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*subscriber.Subscriber, error) {
	query := r.db.rebind(`SELECT id, telegram_id, first_name, is_active, created_at, updated_at
               FROM subscribers WHERE telegram_id = $1`)
	s := &subscriber.Subscriber{}
	err := r.db.QueryRowContext(ctx, query, telegramID).Scan(&s.ID, &s.TelegramID, &s.FirstName, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, subscriber.ErrSubscriberNotFound
		}
		return nil, fmt.Errorf("error getting subscriber by Telegram ID: %w", err)
	}
	return s, nil
}

func (r *SubscriberRepository) Update(ctx context.Context, s *subscriber.Subscriber) error {
	query := r.db.rebind(`UPDATE subscribers
               SET first_name = $1, is_active = $2, updated_at = $3
               WHERE id = $4`)
	result, err := r.db.ExecContext(ctx, query, s.FirstName, s.IsActive, s.UpdatedAt.UTC(), s.ID)
	if err != nil {
		return fmt.Errorf("error updating subscriber: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected for subscriber update: %w", err)
	}
	if rowsAffected == 0 {
		return subscriber.ErrSubscriberNotFound
	}
	return nil
}

func (r *SubscriberRepository) ListActive(ctx context.Context) ([]*subscriber.Subscriber, error) {
	query := r.db.rebind(`SELECT id, telegram_id, first_name, is_active, created_at, updated_at
               FROM subscribers WHERE is_active = $1 ORDER BY created_at ASC, telegram_id ASC`)
	rows, err := r.db.QueryContext(ctx, query, true)
	if err != nil {
		return nil, fmt.Errorf("error listing active subscribers: %w", err)
	}
	defer rows.Close()

	var subscribers []*subscriber.Subscriber
	for rows.Next() {
		s := &subscriber.Subscriber{}
		if err := rows.Scan(&s.ID, &s.TelegramID, &s.FirstName, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning subscriber row: %w", err)
		}
		subscribers = append(subscribers, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subscriber rows: %w", err)
	}
	return subscribers, nil
}
