// internal/infra/database/window_repository.go
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"launch_notifier/internal/domain/launch"
)

type WindowRepository struct {
	db *DB
}

func NewWindowRepository(db *DB) *WindowRepository {
	return &WindowRepository{db: db}
}

func (r *WindowRepository) GetWindow(ctx context.Context, weekNumber, year int) (*launch.Window, error) {
	query := r.db.rebind(`SELECT id, week_number, year, week_start, week_end, notified_at
               FROM windows WHERE week_number = $1 AND year = $2`)
	w := &launch.Window{}
	err := r.db.QueryRowContext(ctx, query, weekNumber, year).Scan(
		&w.ID, &w.WeekNumber, &w.Year, &w.Start, &w.End, &w.NotifiedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, launch.ErrWindowNotFound
		}
		return nil, fmt.Errorf("error getting window for week %d/%d: %w", weekNumber, year, err)
	}
	w.Start, w.End, w.NotifiedAt = w.Start.UTC(), w.End.UTC(), w.NotifiedAt.UTC()

	launches, err := r.listLaunches(ctx, w.ID)
	if err != nil {
		return nil, err
	}
	w.Launches = launches
	return w, nil
}

func (r *WindowRepository) listLaunches(ctx context.Context, windowID string) ([]*launch.Launch, error) {
	query := r.db.rebind(`SELECT id, subject_id, window_id, name, status, scheduled_at, last_updated
               FROM launches WHERE window_id = $1
               ORDER BY scheduled_at ASC, subject_id ASC`)
	rows, err := r.db.QueryContext(ctx, query, windowID)
	if err != nil {
		return nil, fmt.Errorf("error listing launches for window %s: %w", windowID, err)
	}
	defer rows.Close()

	var launches []*launch.Launch
	for rows.Next() {
		l := &launch.Launch{}
		if err := rows.Scan(&l.ID, &l.SubjectID, &l.WindowID, &l.Name, &l.Status, &l.ScheduledAt, &l.LastUpdated); err != nil {
			return nil, fmt.Errorf("error scanning launch row: %w", err)
		}
		l.ScheduledAt, l.LastUpdated = l.ScheduledAt.UTC(), l.LastUpdated.UTC()
		launches = append(launches, l)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating launch rows: %w", err)
	}
	return launches, nil
}

// CreateWindow inserts the window row and all of its launches in one transaction.
func (r *WindowRepository) CreateWindow(ctx context.Context, w *launch.Window) error {
	if w == nil || w.ID == "" {
		return fmt.Errorf("create window: %w", launch.ErrInvalidArgument)
	}
	for _, l := range w.Launches {
		if err := validateLaunch(l); err != nil {
			return err
		}
		if l.WindowID != w.ID {
			return fmt.Errorf("launch %s belongs to window %q, not %q: %w", l.SubjectID, l.WindowID, w.ID, launch.ErrInvalidArgument)
		}
	}

	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for window create: %w", err)
	}
	defer txn.Rollback() // Rollback if not committed

	_, err = txn.ExecContext(ctx, r.db.rebind(`INSERT INTO windows (id, week_number, year, week_start, week_end, notified_at)
               VALUES ($1, $2, $3, $4, $5, $6)`),
		w.ID, w.WeekNumber, w.Year, w.Start.UTC(), w.End.UTC(), w.NotifiedAt.UTC())
	if err != nil {
		if isUniqueViolation(err, "") {
			return fmt.Errorf("week %d/%d: %w", w.WeekNumber, w.Year, launch.ErrDuplicateWindow)
		}
		return fmt.Errorf("error creating window: %w", err)
	}

	if err := r.insertLaunches(ctx, txn, w.Launches); err != nil {
		return err
	}
	return txn.Commit()
}

func (r *WindowRepository) UpdateWindow(ctx context.Context, w *launch.Window) error {
	if w == nil || w.ID == "" {
		return fmt.Errorf("update window: %w", launch.ErrInvalidArgument)
	}
	query := r.db.rebind(`UPDATE windows
               SET week_start = $1, week_end = $2, notified_at = $3
               WHERE id = $4`)
	result, err := r.db.ExecContext(ctx, query, w.Start.UTC(), w.End.UTC(), w.NotifiedAt.UTC(), w.ID)
	if err != nil {
		return fmt.Errorf("error updating window: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected for window update: %w", err)
	}
	if rowsAffected == 0 {
		return launch.ErrWindowNotFound
	}
	return nil
}

// AddLaunches inserts launches into windows that already exist.
func (r *WindowRepository) AddLaunches(ctx context.Context, launches []*launch.Launch) error {
	if len(launches) == 0 {
		return fmt.Errorf("add launches: empty batch: %w", launch.ErrInvalidArgument)
	}
	for _, l := range launches {
		if err := validateLaunch(l); err != nil {
			return err
		}
	}

	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for launch insert: %w", err)
	}
	defer txn.Rollback()

	if err := r.insertLaunches(ctx, txn, launches); err != nil {
		return err
	}
	return txn.Commit()
}

func (r *WindowRepository) insertLaunches(ctx context.Context, txn *sql.Tx, launches []*launch.Launch) error {
	if len(launches) == 0 {
		return nil
	}
	stmt, err := txn.PrepareContext(ctx, r.db.rebind(`INSERT INTO launches (id, subject_id, window_id, name, status, scheduled_at, last_updated)
                                         VALUES ($1, $2, $3, $4, $5, $6, $7)`))
	if err != nil {
		return fmt.Errorf("failed to prepare statement for launch insert: %w", err)
	}
	defer stmt.Close()

	for _, l := range launches {
		_, err := stmt.ExecContext(ctx, l.ID, l.SubjectID, l.WindowID, l.Name, int(l.Status), l.ScheduledAt.UTC(), l.LastUpdated.UTC())
		if err != nil {
			if isUniqueViolation(err, "") {
				return fmt.Errorf("launch %s in window %s: %w", l.SubjectID, l.WindowID, launch.ErrDuplicateLaunch)
			}
			return fmt.Errorf("error inserting launch %s: %w", l.SubjectID, err)
		}
	}
	return nil
}

// UpdateLaunches rewrites the mutable fields of stored launches. Identity
// fields (ID, SubjectID, WindowID) are never changed.
func (r *WindowRepository) UpdateLaunches(ctx context.Context, launches []*launch.Launch) error {
	if len(launches) == 0 {
		return fmt.Errorf("update launches: empty batch: %w", launch.ErrInvalidArgument)
	}
	for _, l := range launches {
		if err := validateLaunch(l); err != nil {
			return err
		}
	}

	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for launch update: %w", err)
	}
	defer txn.Rollback()

	stmt, err := txn.PrepareContext(ctx, r.db.rebind(`UPDATE launches
               SET name = $1, status = $2, scheduled_at = $3, last_updated = $4
               WHERE id = $5 AND subject_id = $6`))
	if err != nil {
		return fmt.Errorf("failed to prepare statement for launch update: %w", err)
	}
	defer stmt.Close()

	for _, l := range launches {
		result, err := stmt.ExecContext(ctx, l.Name, int(l.Status), l.ScheduledAt.UTC(), l.LastUpdated.UTC(), l.ID, l.SubjectID)
		if err != nil {
			return fmt.Errorf("error updating launch %s: %w", l.SubjectID, err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("error getting rows affected for launch update: %w", err)
		}
		if rowsAffected == 0 {
			return fmt.Errorf("launch %s (%s): %w", l.SubjectID, l.ID, launch.ErrLaunchNotFound)
		}
	}
	return txn.Commit()
}

func validateLaunch(l *launch.Launch) error {
	if l == nil {
		return fmt.Errorf("nil launch: %w", launch.ErrInvalidArgument)
	}
	if l.ID == "" || l.SubjectID == "" || l.WindowID == "" {
		return fmt.Errorf("launch %q is missing an identifier: %w", l.SubjectID, launch.ErrInvalidArgument)
	}
	return nil
}
