// internal/domain/launch/repository.go
package launch

import (
	"context"
	"errors"
)

var (
	ErrWindowNotFound  = errors.New("window not found")
	ErrDuplicateWindow = errors.New("window already exists for week and year")
	ErrLaunchNotFound  = errors.New("launch not found")
	ErrDuplicateLaunch = errors.New("launch already stored in window")
	ErrInvalidArgument = errors.New("invalid argument")
)

// Repository defines persistence for windows and their launches.
// Every write is applied atomically: a failed call leaves no partial state.
type Repository interface {
	// GetWindow returns the window with its launches, or ErrWindowNotFound.
	GetWindow(ctx context.Context, weekNumber, year int) (*Window, error)
	// CreateWindow stores the window together with all of its launches.
	CreateWindow(ctx context.Context, w *Window) error
	// UpdateWindow persists the window's boundaries and NotifiedAt.
	UpdateWindow(ctx context.Context, w *Window) error

	AddLaunches(ctx context.Context, launches []*Launch) error
	UpdateLaunches(ctx context.Context, launches []*Launch) error
}
