package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pavelanni/prepcoach/internal/model"
)

// SaveProblem persists a generated problem for the learner it was issued to.
func (s *Store) SaveProblem(ctx context.Context, learnerID string, p model.Problem) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO problems (id, learner_id, topic, difficulty, content, generated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, learnerID, p.Topic, p.Difficulty, p.Content, p.GeneratedAt,
	)
	if err != nil {
		return fmt.Errorf("save problem: %w", err)
	}
	return nil
}

// GetProblem returns a problem previously issued to the learner.
// Returns ErrNotFound if the problem does not exist or belongs to a
// different learner.
func (s *Store) GetProblem(ctx context.Context, learnerID, problemID string) (model.Problem, error) {
	var p model.Problem
	err := s.db.QueryRowContext(ctx,
		`SELECT id, topic, difficulty, content, generated_at
		 FROM problems WHERE id = ? AND learner_id = ?`, problemID, learnerID,
	).Scan(&p.ID, &p.Topic, &p.Difficulty, &p.Content, &p.GeneratedAt)
	if err == sql.ErrNoRows {
		return model.Problem{}, fmt.Errorf("%w: problem %s", ErrNotFound, problemID)
	}
	if err != nil {
		return model.Problem{}, fmt.Errorf("get problem: %w", err)
	}
	return p, nil
}
