package session

import (
	"context"
	"errors"
	"time"

	"skillverify_backend/internal/model"
)

// ErrNotFound covers every terminal session failure: missing id, expired
// TTL, or an id that was already consumed by a grading call. Callers must
// not distinguish between these cases.
var ErrNotFound = errors.New("assessment session expired or not found")

// Question is one multiple-choice item. CorrectAnswer never leaves the
// server; client-facing views are built by stripping it.
type Question struct {
	Prompt        string   `json:"prompt"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation,omitempty"`
}

// TestCase is one hidden (input, expected output) pair for a code
// challenge. Inputs are JSON-encoded values; outputs are compared as
// trimmed strings.
type TestCase struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expectedOutput"`
}

type Challenge struct {
	Problem     string     `json:"problem"`
	Example     string     `json:"example,omitempty"`
	Hint        string     `json:"hint,omitempty"`
	StarterCode string     `json:"starterCode,omitempty"`
	TestCases   []TestCase `json:"testCases"`
}

// Content holds exactly one of the two generated payloads.
type Content struct {
	Questions []Question `json:"questions,omitempty"`
	Challenge *Challenge `json:"challenge,omitempty"`
}

// Session is the server-held record of what was asked. Single-use: grading
// consumes it atomically and a second attempt against the same id fails
// with ErrNotFound.
type Session struct {
	ID         string               `json:"id"`
	UserID     uint                 `json:"userId"`
	Skill      string               `json:"skill"`
	Difficulty string               `json:"difficulty"`
	Kind       model.AssessmentKind `json:"kind"`
	Content    Content              `json:"content"`
	CreatedAt  time.Time            `json:"createdAt"`
	ExpiresAt  time.Time            `json:"expiresAt"`
}

func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Store is the session store contract. Create assigns the id and the
// TTL-bound expiry; Consume is an atomic read-then-delete.
type Store interface {
	Create(ctx context.Context, userID uint, skill, difficulty string, kind model.AssessmentKind, content Content) (*Session, error)
	Get(ctx context.Context, id string) (*Session, error)
	Consume(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}
