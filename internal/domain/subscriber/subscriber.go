package subscriber

import (
	"time"
)

// Subscriber is a Telegram user who receives launch updates.
type Subscriber struct {
	ID         string
	TelegramID int64
	FirstName  string
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
