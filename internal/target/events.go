package target

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Event is one scheduled gathering with its participant roster.
type Event struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Date         string   `json:"date"`
	Venue        string   `json:"venue,omitempty"`
	Cancelled    bool     `json:"cancelled"`
	Participants []string `json:"participants"`
}

// CreateEvent inserts a new event. The (name, date) pair must be unique;
// a duplicate returns ErrAlreadyExists.
func (s *Store) CreateEvent(ctx context.Context, name, date, venue string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO events (name, date, venue) VALUES (?, ?, ?)`,
		name, date, venue,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrAlreadyExists
		}
		return 0, fmt.Errorf("create event: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("create event: %w", err)
	}
	return id, nil
}

// JoinEvent adds a participant to an event. Joining twice is a no-op.
func (s *Store) JoinEvent(ctx context.Context, eventID int64, participant string) error {
	var cancelled bool
	err := s.db.QueryRowContext(ctx,
		`SELECT cancelled FROM events WHERE id = ?`, eventID,
	).Scan(&cancelled)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("join event: %w", err)
	}
	if cancelled {
		return ErrEventClosed
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO event_participants (event_id, participant) VALUES (?, ?)`,
		eventID, participant,
	)
	if err != nil {
		return fmt.Errorf("join event: %w", err)
	}
	return nil
}

// CancelEvent marks an event cancelled. Cancelling twice is a no-op.
func (s *Store) CancelEvent(ctx context.Context, eventID int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE events SET cancelled = 1 WHERE id = ?`, eventID,
	)
	if err != nil {
		return fmt.Errorf("cancel event: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("cancel event: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetEvent returns one event with its participants.
func (s *Store) GetEvent(ctx context.Context, eventID int64) (Event, error) {
	var ev Event
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, date, venue, cancelled FROM events WHERE id = ?`, eventID,
	).Scan(&ev.ID, &ev.Name, &ev.Date, &ev.Venue, &ev.Cancelled)
	if errors.Is(err, sql.ErrNoRows) {
		return Event{}, ErrNotFound
	}
	if err != nil {
		return Event{}, fmt.Errorf("get event: %w", err)
	}

	ev.Participants, err = s.eventParticipants(ctx, eventID)
	if err != nil {
		return Event{}, err
	}
	return ev, nil
}

// ListEvents returns all events with their participants, oldest first.
func (s *Store) ListEvents(ctx context.Context) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, date, venue, cancelled FROM events ORDER BY id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events := make([]Event, 0)
	for rows.Next() {
		var ev Event
		if err := rows.Scan(&ev.ID, &ev.Name, &ev.Date, &ev.Venue, &ev.Cancelled); err != nil {
			return nil, fmt.Errorf("list events: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	for i := range events {
		events[i].Participants, err = s.eventParticipants(ctx, events[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return events, nil
}

func (s *Store) eventParticipants(ctx context.Context, eventID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT participant FROM event_participants WHERE event_id = ? ORDER BY rowid ASC`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("event participants: %w", err)
	}
	defer rows.Close()

	participants := make([]string, 0)
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("event participants: %w", err)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("event participants: %w", err)
	}
	return participants, nil
}
