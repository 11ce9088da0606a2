// Package coach orchestrates a learner's practice session: it reads the
// progress summary, picks the next topic, sequences the external
// generation and evaluation calls, and records verified attempts.
package coach

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pavelanni/prepcoach/internal/model"
	"github.com/pavelanni/prepcoach/internal/recommend"
	"github.com/pavelanni/prepcoach/internal/store"
)

// ProblemGenerator is the external problem-generation capability.
type ProblemGenerator interface {
	GenerateProblem(ctx context.Context, topic model.Topic, difficulty model.Difficulty, skillLevel model.SkillLevel) (*model.Problem, error)
}

// SolutionEvaluator is the external solution-evaluation capability.
type SolutionEvaluator interface {
	EvaluateSolution(ctx context.Context, problem model.Problem, code, language string) (*model.Evaluation, error)
}

// ProgressStore is the persistence the coach depends on.
type ProgressStore interface {
	RecordAttempt(ctx context.Context, learnerID, problemID string, topic model.Topic, difficulty model.Difficulty, solved bool) (model.ProgressSummary, error)
	GetSummary(ctx context.Context, learnerID string) (model.ProgressSummary, error)
	SaveProblem(ctx context.Context, learnerID string, p model.Problem) error
	GetProblem(ctx context.Context, learnerID, problemID string) (model.Problem, error)
}

// Phase is the per-learner session state.
type Phase string

const (
	PhaseIdle               Phase = "idle"
	PhaseAwaitingProblem    Phase = "awaiting_problem"
	PhaseProblemIssued      Phase = "problem_issued"
	PhaseAwaitingEvaluation Phase = "awaiting_evaluation"
)

// session tracks one learner's state machine. The mutex serializes that
// learner's operations; different learners never contend.
type session struct {
	mu    sync.Mutex
	phase Phase
}

// Coach sequences practice sessions. Ports and store are
// constructor-supplied collaborators so tests can substitute doubles.
type Coach struct {
	store     ProgressStore
	generator ProblemGenerator
	evaluator SolutionEvaluator
	cfg       model.CoachConfig

	mu       sync.Mutex
	sessions map[string]*session
}

// New creates a Coach. Zero timeouts in cfg disable the time box for the
// corresponding port.
func New(st ProgressStore, gen ProblemGenerator, eval SolutionEvaluator, cfg model.CoachConfig) *Coach {
	if cfg.Difficulty == "" {
		cfg.Difficulty = model.DifficultyMedium
	}
	return &Coach{
		store:     st,
		generator: gen,
		evaluator: eval,
		cfg:       cfg,
		sessions:  make(map[string]*session),
	}
}

// SessionStart is the result of StartSession.
type SessionStart struct {
	Problem *model.Problem        `json:"problem"`
	Summary model.ProgressSummary `json:"progress"`
}

// SubmitResult is the result of SubmitSolution.
type SubmitResult struct {
	Evaluation *model.Evaluation     `json:"evaluation"`
	Summary    model.ProgressSummary `json:"progress"`
}

// StudyPlan is the aggregate read-only view: current progress, the next
// recommended topic, and the matched suggestion rules (localized to
// strings at the API edge).
type StudyPlan struct {
	Summary          model.ProgressSummary
	RecommendedTopic model.Topic
	Suggestions      []recommend.Suggestion
}

func (c *Coach) session(learnerID string) *session {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sessions[learnerID]
	if !ok {
		s = &session{phase: PhaseIdle}
		c.sessions[learnerID] = s
	}
	return s
}

// SessionPhase reports the learner's current session phase.
func (c *Coach) SessionPhase(learnerID string) Phase {
	s := c.session(learnerID)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// StartSession recommends a topic from the learner's current summary,
// generates a problem for it, and issues the problem. A generation failure
// returns the session to idle and leaves progress untouched.
func (c *Coach) StartSession(ctx context.Context, learnerID string, skillLevel model.SkillLevel) (*SessionStart, error) {
	if learnerID == "" {
		return nil, fmt.Errorf("%w: empty learner id", ErrInvalidInput)
	}
	if skillLevel == "" {
		skillLevel = model.SkillIntermediate
	}
	if !model.ValidSkillLevel(skillLevel) {
		return nil, fmt.Errorf("%w: unknown skill level %q", ErrInvalidInput, skillLevel)
	}

	sess := c.session(learnerID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	summary, err := c.store.GetSummary(ctx, learnerID)
	if err != nil {
		return nil, classifyStoreErr(err)
	}
	topic := recommend.NextTopic(summary)

	sess.phase = PhaseAwaitingProblem

	gctx := ctx
	if c.cfg.GenerateTimeout > 0 {
		var cancel context.CancelFunc
		gctx, cancel = context.WithTimeout(ctx, c.cfg.GenerateTimeout)
		defer cancel()
	}
	problem, err := c.generator.GenerateProblem(gctx, topic, c.cfg.Difficulty, skillLevel)
	if err != nil {
		sess.phase = PhaseIdle
		if gctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", ErrGenerationTimeout, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	if err := c.store.SaveProblem(ctx, learnerID, *problem); err != nil {
		sess.phase = PhaseIdle
		return nil, classifyStoreErr(err)
	}

	sess.phase = PhaseProblemIssued
	slog.Info("session started",
		"learner", learnerID, "topic", topic, "problem", problem.ID, "skill_level", skillLevel)

	return &SessionStart{Problem: problem, Summary: summary}, nil
}

// SubmitSolution evaluates the submitted code against the issued problem
// and, only when the evaluator returns a verdict, records the attempt.
// An evaluator failure records nothing: progress is all-or-nothing.
func (c *Coach) SubmitSolution(ctx context.Context, learnerID, problemID, code, language string) (*SubmitResult, error) {
	if learnerID == "" {
		return nil, fmt.Errorf("%w: empty learner id", ErrInvalidInput)
	}
	if problemID == "" {
		return nil, fmt.Errorf("%w: empty problem id", ErrInvalidInput)
	}
	if language == "" {
		language = "python"
	}

	sess := c.session(learnerID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	problem, err := c.store.GetProblem(ctx, learnerID, problemID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		return nil, classifyStoreErr(err)
	}

	sess.phase = PhaseAwaitingEvaluation

	ectx := ctx
	if c.cfg.EvaluateTimeout > 0 {
		var cancel context.CancelFunc
		ectx, cancel = context.WithTimeout(ctx, c.cfg.EvaluateTimeout)
		defer cancel()
	}
	evaluation, err := c.evaluator.EvaluateSolution(ectx, problem, code, language)
	sess.phase = PhaseIdle
	if err != nil {
		if ectx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", ErrEvaluationTimeout, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrEvaluationFailed, err)
	}

	summary, err := c.store.RecordAttempt(ctx, learnerID, problem.ID, problem.Topic, problem.Difficulty, evaluation.Solved)
	if err != nil {
		return nil, classifyStoreErr(err)
	}

	slog.Info("solution evaluated",
		"learner", learnerID, "problem", problem.ID, "solved", evaluation.Solved, "score", evaluation.Score)

	return &SubmitResult{Evaluation: evaluation, Summary: summary}, nil
}

// GetStudyPlan returns the learner's progress, recommended next topic, and
// matched suggestion rules. Read-only: valid in any session phase and
// transitions nothing.
func (c *Coach) GetStudyPlan(ctx context.Context, learnerID string) (*StudyPlan, error) {
	if learnerID == "" {
		return nil, fmt.Errorf("%w: empty learner id", ErrInvalidInput)
	}

	summary, err := c.store.GetSummary(ctx, learnerID)
	if err != nil {
		return nil, classifyStoreErr(err)
	}

	return &StudyPlan{
		Summary:          summary,
		RecommendedTopic: recommend.NextTopic(summary),
		Suggestions:      recommend.Suggestions(summary, c.cfg.DailyGoal),
	}, nil
}

// classifyStoreErr maps store failures onto the coach taxonomy, keeping
// validation rejections distinct from backend unavailability.
func classifyStoreErr(err error) error {
	if errors.Is(err, store.ErrInvalidInput) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}
