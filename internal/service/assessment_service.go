package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"skillverify_backend/internal/model"
	"skillverify_backend/internal/sandbox"
	"skillverify_backend/internal/session"
	"skillverify_backend/internal/util"
	"skillverify_backend/pkg/logger"
	"skillverify_backend/pkg/monitoring"

	"go.uber.org/zap"
)

type contentProvider interface {
	MultipleChoice(ctx context.Context, skill, difficulty string) []session.Question
	CodeChallenge(ctx context.Context, skill, difficulty string) *session.Challenge
}

type codeRunner interface {
	Run(ctx context.Context, code string, cases []session.TestCase) *sandbox.Report
}

type attemptStore interface {
	CreateAttempt(a *model.AssessmentAttempt) error
	ListAttemptsByUser(userID uint, page, limit int) ([]model.AssessmentAttempt, int64, error)
}

type credentialIssuer interface {
	Issue(ctx context.Context, userID uint, userName, skill, difficulty string, kind model.AssessmentKind, finalScore int) (*model.Credential, error)
}

// AssessmentService drives the full assessment lifecycle: content into a
// server-held session, grading strictly against that session, anti-cheat
// adjustment, durable attempt history and credential issuance.
type AssessmentService struct {
	sessions    session.Store
	content     contentProvider
	runner      codeRunner
	attempts    attemptStore
	credentials credentialIssuer
}

func NewAssessmentService(sessions session.Store, content contentProvider, runner codeRunner, attempts attemptStore, credentials credentialIssuer) *AssessmentService {
	return &AssessmentService{
		sessions:    sessions,
		content:     content,
		runner:      runner,
		attempts:    attempts,
		credentials: credentials,
	}
}

// Identity is the authenticated caller, passed explicitly into every
// operation; the engine never reaches into ambient request state.
type Identity struct {
	UserID uint
	Name   string
}

type StartRequest struct {
	Skill      string `json:"skill" binding:"required"`
	Difficulty string `json:"difficulty"`
	Kind       string `json:"kind"`
}

// ClientQuestion is the candidate-facing view of a question: the correct
// answer is stripped before anything leaves the server.
type ClientQuestion struct {
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
}

// ClientChallenge withholds the hidden test cases.
type ClientChallenge struct {
	Problem     string `json:"problem"`
	Example     string `json:"example,omitempty"`
	Hint        string `json:"hint,omitempty"`
	StarterCode string `json:"starterCode,omitempty"`
}

type StartResponse struct {
	SessionID  string               `json:"sessionId"`
	Skill      string               `json:"skill"`
	Difficulty string               `json:"difficulty"`
	Kind       model.AssessmentKind `json:"kind"`
	ExpiresAt  time.Time            `json:"expiresAt"`
	Questions  []ClientQuestion     `json:"questions,omitempty"`
	Challenge  *ClientChallenge     `json:"challenge,omitempty"`
}

// Start generates assessment content, stores it server-side and returns
// only the client-safe view plus the opaque session id.
func (s *AssessmentService) Start(ctx context.Context, who Identity, req StartRequest) (*StartResponse, error) {
	skill := strings.TrimSpace(req.Skill)
	if skill == "" {
		return nil, util.ErrMalformedSubmission
	}

	difficulty := req.Difficulty
	if !model.ValidDifficulty(difficulty) {
		difficulty = string(model.Beginner)
	}

	kind := model.AssessmentKind(req.Kind)
	if !model.ValidKind(req.Kind) {
		kind = model.KindMultipleChoice
	}

	var content session.Content
	switch kind {
	case model.KindMultipleChoice:
		content.Questions = s.content.MultipleChoice(ctx, skill, difficulty)
	case model.KindCodeChallenge:
		content.Challenge = s.content.CodeChallenge(ctx, skill, difficulty)
	}

	sess, err := s.sessions.Create(ctx, who.UserID, skill, difficulty, kind, content)
	if err != nil {
		return nil, err
	}

	resp := &StartResponse{
		SessionID:  sess.ID,
		Skill:      sess.Skill,
		Difficulty: sess.Difficulty,
		Kind:       sess.Kind,
		ExpiresAt:  sess.ExpiresAt,
	}
	for _, q := range sess.Content.Questions {
		resp.Questions = append(resp.Questions, ClientQuestion{Prompt: q.Prompt, Options: q.Options})
	}
	if ch := sess.Content.Challenge; ch != nil {
		resp.Challenge = &ClientChallenge{
			Problem:     ch.Problem,
			Example:     ch.Example,
			Hint:        ch.Hint,
			StarterCode: ch.StarterCode,
		}
	}
	return resp, nil
}

type SubmitRequest struct {
	SessionID string    `json:"sessionId" binding:"required"`
	Answers   []string  `json:"answers"`
	Code      string    `json:"code"`
	AntiCheat Telemetry `json:"antiCheat"`
	TimeSpent int       `json:"timeSpent"`
}

type CredentialSummary struct {
	CredentialID string           `json:"credentialId"`
	Skill        string           `json:"skill"`
	Level        model.SkillLevel `json:"level"`
	Score        int              `json:"score"`
	VerifyURL    string           `json:"verifyUrl"`
}

type SubmissionResult struct {
	Score       int                  `json:"score"`
	RawScore    int                  `json:"rawScore"`
	Level       model.SkillLevel     `json:"level"`
	Passed      bool                 `json:"passed"`
	Suspicious  bool                 `json:"suspicious"`
	ItemResults []bool               `json:"itemResults,omitempty"`
	CaseResults []sandbox.CaseResult `json:"caseResults,omitempty"`
	Credential  *CredentialSummary   `json:"credential,omitempty"`
	Message     string               `json:"message"`
}

// Submit grades one submission against its server-held session. The
// session is consumed atomically first: a missing, expired or already
// graded session fails the submission outright, before any scoring.
func (s *AssessmentService) Submit(ctx context.Context, who Identity, req SubmitRequest) (*SubmissionResult, error) {
	if strings.TrimSpace(req.SessionID) == "" {
		return nil, util.ErrMalformedSubmission
	}

	sess, err := s.sessions.Consume(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}

	// A session started by another candidate is indistinguishable from a
	// missing one.
	if sess.UserID != who.UserID {
		return nil, session.ErrNotFound
	}

	if sess.Kind == model.KindCodeChallenge && strings.TrimSpace(req.Code) == "" {
		return nil, util.ErrMalformedSubmission
	}

	result := &SubmissionResult{}
	var report *sandbox.Report

	switch sess.Kind {
	case model.KindCodeChallenge:
		var cases []session.TestCase
		if sess.Content.Challenge != nil {
			cases = sess.Content.Challenge.TestCases
		}
		report = s.runner.Run(ctx, req.Code, cases)
		result.RawScore = ScoreCode(report)
		result.CaseResults = report.Results
	default:
		result.RawScore, result.ItemResults = ScoreMultipleChoice(req.Answers, sess.Content.Questions)
	}

	verdict := EvaluateTelemetry(req.AntiCheat)
	result.Suspicious = verdict.Suspicious
	result.Score = ApplyPenalty(result.RawScore, verdict)
	result.Level = model.LevelForScore(result.Score)
	result.Passed = result.Score >= model.PassThreshold

	if result.Passed {
		cred, err := s.credentials.Issue(ctx, who.UserID, who.Name, sess.Skill, sess.Difficulty, sess.Kind, result.Score)
		if err != nil {
			return nil, err
		}
		result.Credential = &CredentialSummary{
			CredentialID: cred.CredentialID,
			Skill:        cred.Skill,
			Level:        cred.Level,
			Score:        cred.Score,
			VerifyURL:    "/api/credentials/verify/" + cred.CredentialID,
		}
		result.Message = fmt.Sprintf("You passed! %s credential issued for %s.", result.Level, sess.Skill)
	} else {
		result.Message = fmt.Sprintf("Score: %d/100. You need %d+ to pass. Keep practicing!", result.Score, model.PassThreshold)
	}

	s.recordAttempt(who, sess, req, result)

	verdictLabel := "failed"
	if result.Passed {
		verdictLabel = "passed"
	}
	monitoring.SubmissionsGraded.WithLabelValues(string(sess.Kind), verdictLabel).Inc()

	return result, nil
}

// recordAttempt appends the durable history row. History is analytics, not
// the verdict: a write failure is logged, never surfaced.
func (s *AssessmentService) recordAttempt(who Identity, sess *session.Session, req SubmitRequest, result *SubmissionResult) {
	var items json.RawMessage
	if result.CaseResults != nil {
		items, _ = json.Marshal(result.CaseResults)
	} else if result.ItemResults != nil {
		items, _ = json.Marshal(result.ItemResults)
	}

	attempt := &model.AssessmentAttempt{
		UserID:      who.UserID,
		Skill:       sess.Skill,
		Difficulty:  sess.Difficulty,
		Kind:        sess.Kind,
		RawScore:    result.RawScore,
		FinalScore:  result.Score,
		Level:       result.Level,
		Passed:      result.Passed,
		Suspicious:  result.Suspicious,
		PasteCount:  req.AntiCheat.PasteCount,
		TabSwitches: req.AntiCheat.TabSwitches,
		TimeSpent:   req.TimeSpent,
		ItemResults: items,
	}
	if result.Credential != nil {
		attempt.CredentialID = result.Credential.CredentialID
	}

	if err := s.attempts.CreateAttempt(attempt); err != nil {
		logger.Log.Error("failed to record assessment attempt",
			zap.Uint("userId", who.UserID), zap.String("skill", sess.Skill), zap.Error(err))
	}
}

func (s *AssessmentService) History(userID uint, page, limit int) ([]model.AssessmentAttempt, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.attempts.ListAttemptsByUser(userID, page, limit)
}
