package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"launch_notifier/internal/domain/subscriber"

	"github.com/google/uuid"
)

// Application-level errors for subscriptions
var ErrAlreadySubscribed = errors.New("chat is already subscribed")
var ErrNotSubscribed = errors.New("chat is not subscribed")

type SubscriptionService struct {
	repo subscriber.Repository
	now  func() time.Time
}

func NewSubscriptionService(repo subscriber.Repository) *SubscriptionService {
	return &SubscriptionService{repo: repo, now: time.Now}
}

// Subscribe registers a Telegram user for launch updates, reactivating a
// previously unsubscribed one.
func (s *SubscriptionService) Subscribe(ctx context.Context, telegramID int64, firstName string) (*subscriber.Subscriber, error) {
	existing, err := s.repo.GetByTelegramID(ctx, telegramID)
	if err == nil {
		if existing.IsActive {
			return existing, ErrAlreadySubscribed
		}
		existing.IsActive = true
		if firstName != "" {
			existing.FirstName = firstName
		}
		existing.UpdatedAt = s.now().UTC()
		if err := s.repo.Update(ctx, existing); err != nil {
			return nil, fmt.Errorf("failed to reactivate subscriber: %w", err)
		}
		return existing, nil
	}
	if !errors.Is(err, subscriber.ErrSubscriberNotFound) {
		return nil, fmt.Errorf("failed to check existing subscriber: %w", err)
	}

	ts := s.now().UTC()
	sub := &subscriber.Subscriber{
		ID:         uuid.NewString(),
		TelegramID: telegramID,
		FirstName:  firstName,
		IsActive:   true,
		CreatedAt:  ts,
		UpdatedAt:  ts,
	}
	if err := s.repo.Create(ctx, sub); err != nil {
		if errors.Is(err, subscriber.ErrDuplicateTelegramID) {
			return nil, ErrAlreadySubscribed
		}
		return nil, fmt.Errorf("failed to create subscriber in repository: %w", err)
	}
	return sub, nil
}

// Unsubscribe deactivates a subscriber. The record is kept.
func (s *SubscriptionService) Unsubscribe(ctx context.Context, telegramID int64) (*subscriber.Subscriber, error) {
	existing, err := s.repo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		if errors.Is(err, subscriber.ErrSubscriberNotFound) {
			return nil, ErrNotSubscribed
		}
		return nil, fmt.Errorf("failed to get subscriber for removal: %w", err)
	}
	if !existing.IsActive {
		return existing, ErrNotSubscribed
	}

	existing.IsActive = false
	existing.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, fmt.Errorf("failed to deactivate subscriber: %w", err)
	}
	return existing, nil
}

// ActiveSubscribers lists everyone who should receive launch updates.
func (s *SubscriptionService) ActiveSubscribers(ctx context.Context) ([]*subscriber.Subscriber, error) {
	return s.repo.ListActive(ctx)
}
