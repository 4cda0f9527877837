package target

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Exam is one graded exam record, keyed by (course, group).
type Exam struct {
	Course string `json:"course"`
	Group  string `json:"group"`
	OutOf  int64  `json:"out_of"`
	Curve  int64  `json:"curve"`
}

// InsertExam upserts an exam record.
func (s *Store) InsertExam(ctx context.Context, exam Exam) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO exams (course, "group", out_of, curve) VALUES (?, ?, ?, ?)
		 ON CONFLICT (course, "group") DO UPDATE SET out_of = excluded.out_of, curve = excluded.curve`,
		exam.Course, exam.Group, exam.OutOf, exam.Curve,
	)
	if err != nil {
		return fmt.Errorf("insert exam: %w", err)
	}
	return nil
}

// InsertParticipation upserts the participation percentage for a group.
func (s *Store) InsertParticipation(ctx context.Context, group string, percent int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO participation ("group", percent) VALUES (?, ?)
		 ON CONFLICT ("group") DO UPDATE SET percent = excluded.percent`,
		group, percent,
	)
	if err != nil {
		return fmt.Errorf("insert participation: %w", err)
	}
	return nil
}

// GetExam returns the exam record for (course, group).
func (s *Store) GetExam(ctx context.Context, course, group string) (Exam, error) {
	var exam Exam
	err := s.db.QueryRowContext(ctx,
		`SELECT course, "group", out_of, curve FROM exams WHERE course = ? AND "group" = ?`,
		course, group,
	).Scan(&exam.Course, &exam.Group, &exam.OutOf, &exam.Curve)
	if errors.Is(err, sql.ErrNoRows) {
		return Exam{}, ErrNotFound
	}
	if err != nil {
		return Exam{}, fmt.Errorf("get exam: %w", err)
	}
	return exam, nil
}

// GetParticipation returns the participation percentage for a group.
func (s *Store) GetParticipation(ctx context.Context, group string) (int64, error) {
	var percent int64
	err := s.db.QueryRowContext(ctx,
		`SELECT percent FROM participation WHERE "group" = ?`, group,
	).Scan(&percent)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get participation: %w", err)
	}
	return percent, nil
}
