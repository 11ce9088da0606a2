package model

import (
	"context"
	"time"
)

// UserRole represents a user's access level.
type UserRole string

const (
	// UserRoleLearner is a regular learner account.
	UserRoleLearner UserRole = "learner"
	// UserRoleAdmin is an admin account.
	UserRoleAdmin UserRole = "admin"
)

// User represents a system user. A learner's progress is keyed by the
// user's LearnerID.
type User struct {
	ID           int64
	Username     string
	DisplayName  string
	PasswordHash string
	Role         UserRole
	Active       bool
	CreatedAt    time.Time
}

// LearnerID returns the identity under which this user's progress is stored.
func (u *User) LearnerID() string {
	return u.Username
}

// AuthSession represents an authentication session.
type AuthSession struct {
	ID        string
	UserID    int64
	CreatedAt time.Time
	ExpiresAt time.Time
}

type userCtxKey struct{}

// ContextWithUser stores a user in the request context.
func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, u)
}

// UserFromContext retrieves the authenticated user from context, or nil.
func UserFromContext(ctx context.Context) *User {
	u, _ := ctx.Value(userCtxKey{}).(*User)
	return u
}

// Topic is a fixed category of algorithmic subject matter.
type Topic string

// TopicCatalog is the canonical ordered list of study topics. The order
// matters: uncovered topics are recommended in catalog order.
var TopicCatalog = []Topic{
	"Arrays",
	"Linked Lists",
	"Trees",
	"Graphs",
	"Dynamic Programming",
	"Backtracking",
	"Greedy",
	"Sorting",
	"Searching",
	"Strings",
}

// ValidTopic reports whether t is in the topic catalog.
func ValidTopic(t Topic) bool {
	for _, c := range TopicCatalog {
		if c == t {
			return true
		}
	}
	return false
}

// Difficulty represents problem difficulty level.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// ValidDifficulty reports whether d is a known difficulty.
func ValidDifficulty(d Difficulty) bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// SkillLevel describes the learner's self-assessed experience, used to
// calibrate generated problems.
type SkillLevel string

const (
	SkillBeginner     SkillLevel = "beginner"
	SkillIntermediate SkillLevel = "intermediate"
	SkillAdvanced     SkillLevel = "advanced"
)

// ValidSkillLevel reports whether s is a known skill level.
func ValidSkillLevel(s SkillLevel) bool {
	switch s {
	case SkillBeginner, SkillIntermediate, SkillAdvanced:
		return true
	}
	return false
}

// Attempt is one historical record of a learner tackling one problem.
// Attempts are append-only: once recorded they are never mutated or deleted
// (except by a wholesale admin reset).
type Attempt struct {
	ID         int64      `json:"id"`
	LearnerID  string     `json:"learner_id"`
	ProblemID  string     `json:"problem_id"`
	Topic      Topic      `json:"topic"`
	Difficulty Difficulty `json:"difficulty"`
	Solved     bool       `json:"solved"`
	CreatedAt  time.Time  `json:"created_at"`
}

// ProgressSummary is the derived aggregate view of a learner's history.
// TopicsCovered preserves first-seen order; WeakAreas lists topics in the
// order a first unsolved attempt was recorded and never shrinks.
type ProgressSummary struct {
	TotalProblems int     `json:"total_problems"`
	SolvedCount   int     `json:"solved_count"`
	Accuracy      float64 `json:"accuracy"`
	TopicsCovered []Topic `json:"topics_covered"`
	WeakAreas     []Topic `json:"weak_areas"`
}

// Covered reports whether t appears in TopicsCovered.
func (s ProgressSummary) Covered(t Topic) bool {
	for _, c := range s.TopicsCovered {
		if c == t {
			return true
		}
	}
	return false
}

// Problem is a generated practice problem. Content is opaque structured
// text produced by the generator; the core never parses it.
type Problem struct {
	ID          string     `json:"id"`
	Topic       Topic      `json:"topic"`
	Difficulty  Difficulty `json:"difficulty"`
	Content     string     `json:"content"`
	GeneratedAt time.Time  `json:"generated_at"`
}

// Evaluation is the evaluator's structured feedback on a submission.
// Solved is the verdict that drives the recorded attempt; Score is the
// evaluator's 0-100 assessment, surfaced but not part of progress state.
type Evaluation struct {
	ProblemID   string    `json:"problem_id"`
	Solved      bool      `json:"solved"`
	Score       float64   `json:"score"`
	Feedback    string    `json:"feedback"`
	EvaluatedAt time.Time `json:"evaluated_at"`
}

// StudyPlan is the aggregate read-only view returned to the learner.
type StudyPlan struct {
	Summary          ProgressSummary `json:"summary"`
	RecommendedTopic Topic           `json:"recommended_topic"`
	Suggestions      []string        `json:"suggestions"`
}

// CoachConfig holds runtime coaching parameters set via CLI flags.
type CoachConfig struct {
	Difficulty      Difficulty    // difficulty for generated problems
	DailyGoal       int           // problems-per-day used by the consistency suggestion
	GenerateTimeout time.Duration // time box for problem generation calls
	EvaluateTimeout time.Duration // time box for evaluation calls
	PromptVariant   string        // evaluation prompt variant (strict, standard, lenient)
	SecureCookies   bool          // Set Secure flag on session cookies (disable for local dev)
	SessionTTL      time.Duration // auth session lifetime
}
