package store

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/pavelanni/prepcoach/internal/model"
)

// RecordAttempt appends an attempt to the learner's history and returns the
// resulting summary. Input is validated before any write; a rejected call
// leaves the store untouched. Concurrent calls for the same learner are
// serialized and both reflected.
func (s *Store) RecordAttempt(ctx context.Context, learnerID, problemID string, topic model.Topic, difficulty model.Difficulty, solved bool) (model.ProgressSummary, error) {
	if learnerID == "" {
		return model.ProgressSummary{}, fmt.Errorf("%w: empty learner id", ErrInvalidInput)
	}
	if problemID == "" {
		return model.ProgressSummary{}, fmt.Errorf("%w: empty problem id", ErrInvalidInput)
	}
	if !model.ValidTopic(topic) {
		return model.ProgressSummary{}, fmt.Errorf("%w: unknown topic %q", ErrInvalidInput, topic)
	}
	if !model.ValidDifficulty(difficulty) {
		return model.ProgressSummary{}, fmt.Errorf("%w: unknown difficulty %q", ErrInvalidInput, difficulty)
	}

	lock := s.learnerLock(learnerID)
	lock.Lock()
	defer lock.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO attempts (learner_id, problem_id, topic, difficulty, solved, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		learnerID, problemID, topic, difficulty, solved, time.Now(),
	)
	if err != nil {
		return model.ProgressSummary{}, fmt.Errorf("append attempt: %w", err)
	}

	return s.summaryLocked(ctx, learnerID)
}

// GetSummary returns the learner's derived progress summary. Unknown
// learners get an empty summary, not an error. The summary reflects every
// RecordAttempt that completed before this call.
func (s *Store) GetSummary(ctx context.Context, learnerID string) (model.ProgressSummary, error) {
	if learnerID == "" {
		return model.ProgressSummary{}, fmt.Errorf("%w: empty learner id", ErrInvalidInput)
	}
	return s.summaryLocked(ctx, learnerID)
}

// summaryLocked derives the summary from the attempt log in insertion order.
// Safe to call without the learner lock: a plain read sees some prefix of
// the serialized history, which is itself a valid summary.
func (s *Store) summaryLocked(ctx context.Context, learnerID string) (model.ProgressSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT topic, solved FROM attempts WHERE learner_id = ? ORDER BY id`, learnerID,
	)
	if err != nil {
		return model.ProgressSummary{}, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	summary := model.ProgressSummary{
		TopicsCovered: []model.Topic{},
		WeakAreas:     []model.Topic{},
	}
	covered := make(map[model.Topic]bool)
	weak := make(map[model.Topic]bool)

	for rows.Next() {
		var topic model.Topic
		var solved bool
		if err := rows.Scan(&topic, &solved); err != nil {
			return model.ProgressSummary{}, fmt.Errorf("scan attempt: %w", err)
		}
		summary.TotalProblems++
		if solved {
			summary.SolvedCount++
		}
		if !covered[topic] {
			covered[topic] = true
			summary.TopicsCovered = append(summary.TopicsCovered, topic)
		}
		if !solved && !weak[topic] {
			weak[topic] = true
			summary.WeakAreas = append(summary.WeakAreas, topic)
		}
	}
	if err := rows.Err(); err != nil {
		return model.ProgressSummary{}, fmt.Errorf("iterate attempts: %w", err)
	}

	summary.Accuracy = accuracy(summary.SolvedCount, summary.TotalProblems)
	return summary, nil
}

// GetAttempts returns the learner's full attempt history in insertion order.
func (s *Store) GetAttempts(ctx context.Context, learnerID string) ([]model.Attempt, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, learner_id, problem_id, topic, difficulty, solved, created_at
		 FROM attempts WHERE learner_id = ? ORDER BY id`, learnerID,
	)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	var attempts []model.Attempt
	for rows.Next() {
		var a model.Attempt
		if err := rows.Scan(&a.ID, &a.LearnerID, &a.ProblemID, &a.Topic, &a.Difficulty, &a.Solved, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// ResetProgress deletes a learner's entire attempt history. This is the
// only path by which progress state shrinks; it is admin-only at the API
// layer.
func (s *Store) ResetProgress(ctx context.Context, learnerID string) error {
	if learnerID == "" {
		return fmt.Errorf("%w: empty learner id", ErrInvalidInput)
	}
	lock := s.learnerLock(learnerID)
	lock.Lock()
	defer lock.Unlock()

	_, err := s.db.ExecContext(ctx, `DELETE FROM attempts WHERE learner_id = ?`, learnerID)
	if err != nil {
		return fmt.Errorf("reset progress: %w", err)
	}
	return nil
}

// LearnerIDs returns the distinct learner identities with recorded attempts.
func (s *Store) LearnerIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT learner_id FROM attempts ORDER BY learner_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("query learners: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// accuracy returns the solve rate as a percentage rounded to two decimal
// places. Zero attempts means zero accuracy, not an error.
func accuracy(solved, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(solved)/float64(total)*100*100) / 100
}
