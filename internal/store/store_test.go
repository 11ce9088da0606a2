package store

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/pavelanni/prepcoach/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("newTestStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func recordTestAttempt(t *testing.T, s *Store, learner string, topic model.Topic, solved bool) model.ProgressSummary {
	t.Helper()
	summary, err := s.RecordAttempt(context.Background(), learner, "p-"+string(topic), topic, model.DifficultyMedium, solved)
	if err != nil {
		t.Fatalf("recordTestAttempt: %v", err)
	}
	return summary
}

func TestRecordAttemptValidation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name       string
		learnerID  string
		problemID  string
		topic      model.Topic
		difficulty model.Difficulty
	}{
		{"empty learner", "", "p1", "Arrays", model.DifficultyEasy},
		{"empty problem", "alice", "", "Arrays", model.DifficultyEasy},
		{"unknown topic", "alice", "p1", "Quantum Computing", model.DifficultyEasy},
		{"unknown difficulty", "alice", "p1", "Arrays", "Impossible"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.RecordAttempt(ctx, tt.learnerID, tt.problemID, tt.topic, tt.difficulty, true)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}

	// Rejected calls must not have mutated anything.
	summary, err := s.GetSummary(ctx, "alice")
	if err != nil {
		t.Fatalf("GetSummary: %v", err)
	}
	if summary.TotalProblems != 0 {
		t.Errorf("expected no attempts after rejected calls, got %d", summary.TotalProblems)
	}
}

func TestRecordAttemptAggregates(t *testing.T) {
	s := newTestStore(t)

	// Unsolved Arrays: covered, weak.
	summary := recordTestAttempt(t, s, "alice", "Arrays", false)
	if summary.TotalProblems != 1 || summary.SolvedCount != 0 {
		t.Errorf("after 1 unsolved: total=%d solved=%d", summary.TotalProblems, summary.SolvedCount)
	}
	if len(summary.WeakAreas) != 1 || summary.WeakAreas[0] != "Arrays" {
		t.Errorf("expected weak areas [Arrays], got %v", summary.WeakAreas)
	}

	// Solved Trees, then unsolved Graphs and a second unsolved Arrays.
	recordTestAttempt(t, s, "alice", "Trees", true)
	recordTestAttempt(t, s, "alice", "Graphs", false)
	summary = recordTestAttempt(t, s, "alice", "Arrays", false)

	if summary.TotalProblems != 4 {
		t.Errorf("expected 4 attempts, got %d", summary.TotalProblems)
	}
	if summary.SolvedCount != 1 {
		t.Errorf("expected 1 solved, got %d", summary.SolvedCount)
	}
	// 1/4 = 25.00
	if summary.Accuracy != 25.00 {
		t.Errorf("expected accuracy 25.00, got %v", summary.Accuracy)
	}

	// Topics covered in first-seen order.
	wantCovered := []model.Topic{"Arrays", "Trees", "Graphs"}
	if len(summary.TopicsCovered) != len(wantCovered) {
		t.Fatalf("expected covered %v, got %v", wantCovered, summary.TopicsCovered)
	}
	for i, topic := range wantCovered {
		if summary.TopicsCovered[i] != topic {
			t.Errorf("covered[%d] = %q, want %q", i, summary.TopicsCovered[i], topic)
		}
	}

	// Weak areas stay unique, in first-failure order, and within covered.
	wantWeak := []model.Topic{"Arrays", "Graphs"}
	if len(summary.WeakAreas) != len(wantWeak) {
		t.Fatalf("expected weak areas %v, got %v", wantWeak, summary.WeakAreas)
	}
	for i, topic := range wantWeak {
		if summary.WeakAreas[i] != topic {
			t.Errorf("weak[%d] = %q, want %q", i, summary.WeakAreas[i], topic)
		}
		if !summary.Covered(topic) {
			t.Errorf("weak area %q not in topics covered", topic)
		}
	}
}

func TestAccuracyRounding(t *testing.T) {
	s := newTestStore(t)

	recordTestAttempt(t, s, "bob", "Arrays", true)
	recordTestAttempt(t, s, "bob", "Trees", false)
	summary := recordTestAttempt(t, s, "bob", "Graphs", false)

	// 1/3 rounds to 33.33.
	if summary.Accuracy != 33.33 {
		t.Errorf("expected accuracy 33.33, got %v", summary.Accuracy)
	}
	if summary.Accuracy < 0 || summary.Accuracy > 100 {
		t.Errorf("accuracy out of range: %v", summary.Accuracy)
	}
}

func TestGetSummaryEmpty(t *testing.T) {
	s := newTestStore(t)

	summary, err := s.GetSummary(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("GetSummary: %v", err)
	}
	if summary.TotalProblems != 0 || summary.SolvedCount != 0 {
		t.Errorf("expected empty summary, got %+v", summary)
	}
	// Zero attempts means zero accuracy, not an error.
	if summary.Accuracy != 0 {
		t.Errorf("expected accuracy 0 for empty history, got %v", summary.Accuracy)
	}
}

func TestGetSummaryIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	recordTestAttempt(t, s, "alice", "Arrays", false)
	recordTestAttempt(t, s, "alice", "Trees", true)

	first, err := s.GetSummary(ctx, "alice")
	if err != nil {
		t.Fatalf("GetSummary: %v", err)
	}
	second, err := s.GetSummary(ctx, "alice")
	if err != nil {
		t.Fatalf("GetSummary: %v", err)
	}

	if first.TotalProblems != second.TotalProblems ||
		first.SolvedCount != second.SolvedCount ||
		first.Accuracy != second.Accuracy ||
		len(first.TopicsCovered) != len(second.TopicsCovered) ||
		len(first.WeakAreas) != len(second.WeakAreas) {
		t.Errorf("summaries differ with no intervening writes:\n%+v\n%+v", first, second)
	}
}

func TestLearnerIsolation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	recordTestAttempt(t, s, "alice", "Arrays", false)
	recordTestAttempt(t, s, "bob", "Trees", true)

	alice, _ := s.GetSummary(ctx, "alice")
	bob, _ := s.GetSummary(ctx, "bob")

	if alice.TotalProblems != 1 || bob.TotalProblems != 1 {
		t.Errorf("learner histories bled: alice=%d bob=%d", alice.TotalProblems, bob.TotalProblems)
	}
	if len(bob.WeakAreas) != 0 {
		t.Errorf("bob should have no weak areas, got %v", bob.WeakAreas)
	}
}

func TestConcurrentRecordAttempts(t *testing.T) {
	// File-backed store: concurrent writers exercise real connections.
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		solved := i%2 == 0
		go func() {
			defer wg.Done()
			_, err := s.RecordAttempt(context.Background(), "alice", "p1", "Arrays", model.DifficultyMedium, solved)
			if err != nil {
				t.Errorf("RecordAttempt: %v", err)
			}
		}()
	}
	wg.Wait()

	summary, err := s.GetSummary(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetSummary: %v", err)
	}
	if summary.TotalProblems != workers {
		t.Errorf("expected %d attempts, got %d", workers, summary.TotalProblems)
	}
	if summary.SolvedCount != workers/2 {
		t.Errorf("expected %d solved, got %d", workers/2, summary.SolvedCount)
	}
}

func TestResetProgress(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	recordTestAttempt(t, s, "alice", "Arrays", false)
	recordTestAttempt(t, s, "bob", "Trees", false)

	if err := s.ResetProgress(ctx, "alice"); err != nil {
		t.Fatalf("ResetProgress: %v", err)
	}

	alice, _ := s.GetSummary(ctx, "alice")
	if alice.TotalProblems != 0 {
		t.Errorf("expected empty history after reset, got %d", alice.TotalProblems)
	}
	// Other learners untouched.
	bob, _ := s.GetSummary(ctx, "bob")
	if bob.TotalProblems != 1 {
		t.Errorf("reset leaked into bob's history: %d", bob.TotalProblems)
	}
}

func TestProblemRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := model.Problem{
		ID:          "arrays-123",
		Topic:       "Arrays",
		Difficulty:  model.DifficultyMedium,
		Content:     `{"title":"Two Sum"}`,
		GeneratedAt: time.Now(),
	}
	if err := s.SaveProblem(ctx, "alice", p); err != nil {
		t.Fatalf("SaveProblem: %v", err)
	}

	got, err := s.GetProblem(ctx, "alice", "arrays-123")
	if err != nil {
		t.Fatalf("GetProblem: %v", err)
	}
	if got.Topic != p.Topic || got.Content != p.Content {
		t.Errorf("problem round trip mismatch: %+v", got)
	}

	// Unknown problem.
	_, err = s.GetProblem(ctx, "alice", "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	// Problems are scoped to the learner they were issued to.
	_, err = s.GetProblem(ctx, "bob", "arrays-123")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for other learner, got %v", err)
	}
}

func TestUserCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.CreateUser(ctx, model.User{
		Username:     "alice",
		DisplayName:  "Alice",
		PasswordHash: "hash",
		Role:         model.UserRoleLearner,
		Active:       true,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	u, err := s.GetUserByID(ctx, id)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if u == nil || u.Username != "alice" {
		t.Fatalf("expected alice, got %+v", u)
	}
	if u.LearnerID() != "alice" {
		t.Errorf("LearnerID() = %q, want alice", u.LearnerID())
	}

	// Absent user is nil, not an error.
	missing, err := s.GetUserByUsername(ctx, "nobody")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for missing user, got %+v", missing)
	}

	if err := s.ToggleUserActive(ctx, id); err != nil {
		t.Fatalf("ToggleUserActive: %v", err)
	}
	u, _ = s.GetUserByID(ctx, id)
	if u.Active {
		t.Error("expected user inactive after toggle")
	}

	count, err := s.UserCount(ctx)
	if err != nil {
		t.Fatalf("UserCount: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 user, got %d", count)
	}
}

func TestAuthSessionLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, _ := s.CreateUser(ctx, model.User{
		Username: "alice", PasswordHash: "hash", Role: model.UserRoleLearner, Active: true,
	})

	token, err := s.CreateAuthSession(ctx, id, time.Hour)
	if err != nil {
		t.Fatalf("CreateAuthSession: %v", err)
	}

	sess, err := s.GetAuthSession(ctx, token)
	if err != nil {
		t.Fatalf("GetAuthSession: %v", err)
	}
	if sess == nil || sess.UserID != id {
		t.Fatalf("expected session for user %d, got %+v", id, sess)
	}

	if err := s.DeleteAuthSession(ctx, token); err != nil {
		t.Fatalf("DeleteAuthSession: %v", err)
	}
	sess, _ = s.GetAuthSession(ctx, token)
	if sess != nil {
		t.Error("expected nil after delete")
	}

	// Expired sessions are treated as absent.
	expired, err := s.CreateAuthSession(ctx, id, -time.Minute)
	if err != nil {
		t.Fatalf("CreateAuthSession expired: %v", err)
	}
	sess, err = s.GetAuthSession(ctx, expired)
	if err != nil {
		t.Fatalf("GetAuthSession expired: %v", err)
	}
	if sess != nil {
		t.Error("expected expired session to be nil")
	}
}

func TestMetadata(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Missing keys read as empty.
	v, err := s.GetMetadata(ctx, MetaSchemaVersion)
	if err != nil {
		t.Fatalf("GetMetadata: %v", err)
	}
	if v != "" {
		t.Errorf("expected empty value, got %q", v)
	}

	if err := s.SetMetadata(ctx, MetaSchemaVersion, "1"); err != nil {
		t.Fatalf("SetMetadata: %v", err)
	}
	if err := s.SetMetadata(ctx, MetaSchemaVersion, "2"); err != nil {
		t.Fatalf("SetMetadata upsert: %v", err)
	}
	v, _ = s.GetMetadata(ctx, MetaSchemaVersion)
	if v != "2" {
		t.Errorf("expected upserted value 2, got %q", v)
	}
}

func TestExportAllProgress(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateUser(ctx, model.User{
		Username: "alice", DisplayName: "Alice", PasswordHash: "hash",
		Role: model.UserRoleLearner, Active: true,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	recordTestAttempt(t, s, "alice", "Arrays", true)
	recordTestAttempt(t, s, "alice", "Trees", false)

	export, err := s.ExportAllProgress(ctx)
	if err != nil {
		t.Fatalf("ExportAllProgress: %v", err)
	}
	if len(export.Learners) != 1 {
		t.Fatalf("expected 1 learner, got %d", len(export.Learners))
	}
	lr := export.Learners[0]
	if lr.LearnerID != "alice" || lr.DisplayName != "Alice" {
		t.Errorf("unexpected learner result: %+v", lr)
	}
	if len(lr.Attempts) != 2 {
		t.Errorf("expected 2 attempts, got %d", len(lr.Attempts))
	}
	if lr.Summary.TotalProblems != 2 || lr.Summary.SolvedCount != 1 {
		t.Errorf("unexpected summary: %+v", lr.Summary)
	}
}
