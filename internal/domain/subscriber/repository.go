package subscriber

import (
	"context"
	"errors"
)

var (
	ErrSubscriberNotFound  = errors.New("subscriber not found")
	ErrDuplicateTelegramID = errors.New("subscriber with this Telegram ID already exists")
)

// Repository defines the operations for persisting and retrieving Subscriber entities.
type Repository interface {
	Create(ctx context.Context, s *Subscriber) error
	GetByTelegramID(ctx context.Context, telegramID int64) (*Subscriber, error)
	Update(ctx context.Context, s *Subscriber) error // FirstName and IsActive
	ListActive(ctx context.Context) ([]*Subscriber, error)
}
