package store

import (
	"context"
	"fmt"
	"time"

	"github.com/pavelanni/prepcoach/internal/model"
)

// ExportAllProgress builds an export-ready progress dump for every learner
// with recorded attempts.
func (s *Store) ExportAllProgress(ctx context.Context) (*model.ProgressExport, error) {
	ids, err := s.LearnerIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list learners: %w", err)
	}

	export := &model.ProgressExport{
		ExportedAt: time.Now(),
		Catalog:    model.TopicCatalog,
	}

	for _, id := range ids {
		summary, err := s.GetSummary(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("summary for %s: %w", id, err)
		}
		attempts, err := s.GetAttempts(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("attempts for %s: %w", id, err)
		}

		var displayName string
		user, err := s.GetUserByUsername(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("user %s: %w", id, err)
		}
		if user != nil {
			displayName = user.DisplayName
		}

		var records []model.AttemptRecord
		for _, a := range attempts {
			records = append(records, model.AttemptRecord{
				ProblemID:  a.ProblemID,
				Topic:      a.Topic,
				Difficulty: a.Difficulty,
				Solved:     a.Solved,
				At:         a.CreatedAt,
			})
		}

		export.Learners = append(export.Learners, model.LearnerResult{
			LearnerID:   id,
			DisplayName: displayName,
			Summary:     summary,
			Attempts:    records,
		})
	}

	return export, nil
}
