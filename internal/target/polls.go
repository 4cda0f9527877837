package target

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Poll choices. A vote lands in exactly one counter.
const (
	PollChoiceApprove = "approve"
	PollChoiceReject  = "reject"
	PollChoicePass    = "pass"
)

// Poll is one tallied question owned by its creator.
type Poll struct {
	ID          int64  `json:"id"`
	Description string `json:"description"`
	Owner       string `json:"owner"`
	Approve     int64  `json:"approve"`
	Reject      int64  `json:"reject"`
	Pass        int64  `json:"pass"`
	Active      bool   `json:"active"`
}

// CreatePoll inserts a new active poll.
func (s *Store) CreatePoll(ctx context.Context, description, owner string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO polls (description, owner) VALUES (?, ?)`,
		description, owner,
	)
	if err != nil {
		return 0, fmt.Errorf("create poll: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("create poll: %w", err)
	}
	return id, nil
}

// VotePoll records one vote per voter on an active poll and returns the
// updated tallies.
func (s *Store) VotePoll(ctx context.Context, pollID int64, voter, choice string) (Poll, error) {
	var column string
	switch choice {
	case PollChoiceApprove:
		column = "approve"
	case PollChoiceReject:
		column = "reject"
	case PollChoicePass:
		column = "pass"
	default:
		return Poll{}, fmt.Errorf("vote poll: unknown choice %q", choice)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Poll{}, fmt.Errorf("vote poll: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var active bool
	err = tx.QueryRowContext(ctx, `SELECT active FROM polls WHERE id = ?`, pollID).Scan(&active)
	if errors.Is(err, sql.ErrNoRows) {
		return Poll{}, ErrNotFound
	}
	if err != nil {
		return Poll{}, fmt.Errorf("vote poll: %w", err)
	}
	if !active {
		return Poll{}, ErrPollClosed
	}

	res, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO poll_votes (poll_id, voter, choice) VALUES (?, ?, ?)`,
		pollID, voter, choice,
	)
	if err != nil {
		return Poll{}, fmt.Errorf("vote poll: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Poll{}, fmt.Errorf("vote poll: %w", err)
	}
	if n == 0 {
		return Poll{}, ErrAlreadyVoted
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE polls SET `+column+` = `+column+` + 1 WHERE id = ?`, pollID,
	); err != nil {
		return Poll{}, fmt.Errorf("vote poll: %w", err)
	}

	var poll Poll
	err = tx.QueryRowContext(ctx,
		`SELECT id, description, owner, approve, reject, pass, active FROM polls WHERE id = ?`,
		pollID,
	).Scan(&poll.ID, &poll.Description, &poll.Owner, &poll.Approve, &poll.Reject, &poll.Pass, &poll.Active)
	if err != nil {
		return Poll{}, fmt.Errorf("vote poll: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Poll{}, fmt.Errorf("vote poll: %w", err)
	}
	return poll, nil
}

// EndPoll deactivates a poll. Only the owner may end it; ending twice is a
// no-op.
func (s *Store) EndPoll(ctx context.Context, pollID int64, owner string) error {
	var actual string
	err := s.db.QueryRowContext(ctx, `SELECT owner FROM polls WHERE id = ?`, pollID).Scan(&actual)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("end poll: %w", err)
	}
	if actual != owner {
		return ErrNotOwner
	}

	if _, err := s.db.ExecContext(ctx, `UPDATE polls SET active = 0 WHERE id = ?`, pollID); err != nil {
		return fmt.Errorf("end poll: %w", err)
	}
	return nil
}

// GetPoll returns one poll by id.
func (s *Store) GetPoll(ctx context.Context, pollID int64) (Poll, error) {
	var poll Poll
	err := s.db.QueryRowContext(ctx,
		`SELECT id, description, owner, approve, reject, pass, active FROM polls WHERE id = ?`,
		pollID,
	).Scan(&poll.ID, &poll.Description, &poll.Owner, &poll.Approve, &poll.Reject, &poll.Pass, &poll.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return Poll{}, ErrNotFound
	}
	if err != nil {
		return Poll{}, fmt.Errorf("get poll: %w", err)
	}
	return poll, nil
}
