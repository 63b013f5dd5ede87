package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"skillverify_backend/internal/model"
	"skillverify_backend/internal/sandbox"
	"skillverify_backend/internal/session"
	"skillverify_backend/internal/util"
)

type fakeContent struct {
	questions []session.Question
	challenge *session.Challenge
}

func (f *fakeContent) MultipleChoice(ctx context.Context, skill, difficulty string) []session.Question {
	return f.questions
}

func (f *fakeContent) CodeChallenge(ctx context.Context, skill, difficulty string) *session.Challenge {
	return f.challenge
}

type fakeAttempts struct {
	created   []*model.AssessmentAttempt
	createErr error
}

func (f *fakeAttempts) CreateAttempt(a *model.AssessmentAttempt) error {
	f.created = append(f.created, a)
	return f.createErr
}

func (f *fakeAttempts) ListAttemptsByUser(userID uint, page, limit int) ([]model.AssessmentAttempt, int64, error) {
	return nil, 0, nil
}

type fakeIssuer struct {
	calls []int // final scores passed in
	err   error
}

func (f *fakeIssuer) Issue(ctx context.Context, userID uint, userName, skill, difficulty string, kind model.AssessmentKind, finalScore int) (*model.Credential, error) {
	f.calls = append(f.calls, finalScore)
	if f.err != nil {
		return nil, f.err
	}
	return &model.Credential{
		CredentialID: "cred-123",
		UserID:       userID,
		UserName:     userName,
		Skill:        skill,
		Level:        model.LevelForScore(finalScore),
		Score:        finalScore,
		Kind:         kind,
	}, nil
}

func fiveQuestions() []session.Question {
	out := make([]session.Question, 5)
	answers := []string{"a", "b", "c", "d", "e"}
	for i, a := range answers {
		out[i] = session.Question{
			Prompt:        "q" + a,
			Options:       []string{a, "x", "y"},
			CorrectAnswer: a,
		}
	}
	return out
}

func newTestService(content *fakeContent) (*AssessmentService, *fakeAttempts, *fakeIssuer) {
	attempts := &fakeAttempts{}
	issuer := &fakeIssuer{}
	svc := NewAssessmentService(
		session.NewMemoryStore(30*time.Minute),
		content,
		sandbox.NewRunner(2*time.Second),
		attempts,
		issuer,
	)
	return svc, attempts, issuer
}

func TestStartStripsAnswerKey(t *testing.T) {
	svc, _, _ := newTestService(&fakeContent{questions: fiveQuestions()})
	ctx := context.Background()

	resp, err := svc.Start(ctx, Identity{UserID: 1}, StartRequest{Skill: "javascript", Difficulty: "Intermediate", Kind: "mcq"})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	if resp.SessionID == "" {
		t.Fatal("no session id returned")
	}
	if len(resp.Questions) != 5 {
		t.Fatalf("got %d questions, want 5", len(resp.Questions))
	}
	for i, q := range resp.Questions {
		if q.Prompt == "" || len(q.Options) == 0 {
			t.Errorf("question %d lost its prompt or options", i)
		}
	}
	if resp.ExpiresAt.Before(time.Now()) {
		t.Fatal("session already expired at start")
	}
}

func TestStartDefaultsInvalidInputs(t *testing.T) {
	svc, _, _ := newTestService(&fakeContent{questions: fiveQuestions()})
	ctx := context.Background()

	resp, err := svc.Start(ctx, Identity{UserID: 1}, StartRequest{Skill: "go", Difficulty: "legendary", Kind: "essay"})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if resp.Difficulty != string(model.Beginner) {
		t.Errorf("difficulty = %q, want default %q", resp.Difficulty, model.Beginner)
	}
	if resp.Kind != model.KindMultipleChoice {
		t.Errorf("kind = %q, want default %q", resp.Kind, model.KindMultipleChoice)
	}
}

func TestStartRejectsBlankSkill(t *testing.T) {
	svc, _, _ := newTestService(&fakeContent{questions: fiveQuestions()})
	if _, err := svc.Start(context.Background(), Identity{UserID: 1}, StartRequest{Skill: "   "}); !errors.Is(err, util.ErrMalformedSubmission) {
		t.Fatalf("expected ErrMalformedSubmission, got %v", err)
	}
}

func TestStartHidesTestCases(t *testing.T) {
	svc, _, _ := newTestService(&fakeContent{challenge: &session.Challenge{
		Problem:     "sum the array",
		StarterCode: "function solve(input) {}",
		TestCases: []session.TestCase{
			{Input: "[1]", ExpectedOutput: "1"},
		},
	}})

	resp, err := svc.Start(context.Background(), Identity{UserID: 1}, StartRequest{Skill: "js", Kind: "code"})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if resp.Challenge == nil {
		t.Fatal("no challenge returned")
	}
	if resp.Challenge.Problem != "sum the array" || resp.Challenge.StarterCode == "" {
		t.Fatalf("challenge view incomplete: %+v", resp.Challenge)
	}
}

func TestSubmitMultipleChoiceIssuesCredential(t *testing.T) {
	svc, attempts, issuer := newTestService(&fakeContent{questions: fiveQuestions()})
	ctx := context.Background()
	who := Identity{UserID: 1, Name: "Ada"}

	start, err := svc.Start(ctx, who, StartRequest{Skill: "javascript", Difficulty: "Intermediate", Kind: "mcq"})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	// Four of five correct.
	result, err := svc.Submit(ctx, who, SubmitRequest{
		SessionID: start.SessionID,
		Answers:   []string{"a", "b", "c", "d", "wrong"},
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if result.RawScore != 80 || result.Score != 80 {
		t.Fatalf("score = %d (raw %d), want 80", result.Score, result.RawScore)
	}
	if result.Level != model.Advanced {
		t.Errorf("level = %q, want Advanced", result.Level)
	}
	if !result.Passed || result.Suspicious {
		t.Fatalf("passed=%v suspicious=%v, want passed clean", result.Passed, result.Suspicious)
	}
	if result.Credential == nil {
		t.Fatal("passing submission must carry a credential")
	}
	if result.Credential.VerifyURL != "/api/credentials/verify/cred-123" {
		t.Errorf("verify url = %q", result.Credential.VerifyURL)
	}
	if len(issuer.calls) != 1 || issuer.calls[0] != 80 {
		t.Fatalf("issuer calls = %v, want one call with 80", issuer.calls)
	}
	if len(attempts.created) != 1 {
		t.Fatalf("attempt history rows = %d, want 1", len(attempts.created))
	}
	if attempts.created[0].CredentialID != "cred-123" {
		t.Errorf("attempt not linked to credential: %+v", attempts.created[0])
	}
}

func TestSubmitSessionIsSingleUse(t *testing.T) {
	svc, _, _ := newTestService(&fakeContent{questions: fiveQuestions()})
	ctx := context.Background()
	who := Identity{UserID: 1}

	start, _ := svc.Start(ctx, who, StartRequest{Skill: "js", Kind: "mcq"})

	req := SubmitRequest{SessionID: start.SessionID, Answers: []string{"a", "b", "c", "d", "e"}}
	if _, err := svc.Submit(ctx, who, req); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if _, err := svc.Submit(ctx, who, req); !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("second submit should fail with ErrNotFound, got %v", err)
	}
}

func TestSubmitUnknownSession(t *testing.T) {
	svc, attempts, _ := newTestService(&fakeContent{questions: fiveQuestions()})

	_, err := svc.Submit(context.Background(), Identity{UserID: 1}, SubmitRequest{SessionID: "ghost"})
	if !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(attempts.created) != 0 {
		t.Fatal("failed submission must not be recorded")
	}
}

func TestSubmitForeignSessionLooksMissing(t *testing.T) {
	svc, _, _ := newTestService(&fakeContent{questions: fiveQuestions()})
	ctx := context.Background()

	start, _ := svc.Start(ctx, Identity{UserID: 1}, StartRequest{Skill: "js", Kind: "mcq"})

	_, err := svc.Submit(ctx, Identity{UserID: 2}, SubmitRequest{
		SessionID: start.SessionID,
		Answers:   []string{"a", "b", "c", "d", "e"},
	})
	if !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("foreign session must look missing, got %v", err)
	}
}

func TestSubmitSuspiciousTelemetryPenalizes(t *testing.T) {
	svc, attempts, _ := newTestService(&fakeContent{questions: fiveQuestions()})
	ctx := context.Background()
	who := Identity{UserID: 1}

	start, _ := svc.Start(ctx, who, StartRequest{Skill: "js", Kind: "mcq"})

	result, err := svc.Submit(ctx, who, SubmitRequest{
		SessionID: start.SessionID,
		Answers:   []string{"a", "b", "c", "d", "wrong"},
		AntiCheat: Telemetry{PasteCount: 5, TabSwitches: 1},
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if result.RawScore != 80 {
		t.Fatalf("raw score = %d, want 80", result.RawScore)
	}
	if result.Score != 56 {
		t.Fatalf("penalized score = %d, want 56", result.Score)
	}
	if !result.Suspicious {
		t.Fatal("verdict should be suspicious")
	}
	if result.Level != model.Intermediate {
		t.Errorf("level derived from penalized score should be Intermediate, got %q", result.Level)
	}
	row := attempts.created[0]
	if !row.Suspicious || row.RawScore != 80 || row.FinalScore != 56 {
		t.Fatalf("history row wrong: %+v", row)
	}
}

func TestSubmitFailingScoreEarnsNoCredential(t *testing.T) {
	svc, attempts, issuer := newTestService(&fakeContent{questions: fiveQuestions()})
	ctx := context.Background()
	who := Identity{UserID: 1}

	start, _ := svc.Start(ctx, who, StartRequest{Skill: "js", Kind: "mcq"})

	result, err := svc.Submit(ctx, who, SubmitRequest{
		SessionID: start.SessionID,
		Answers:   []string{"a", "x", "x", "x", "x"},
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if result.Score != 20 || result.Passed {
		t.Fatalf("score=%d passed=%v, want 20 failed", result.Score, result.Passed)
	}
	if result.Credential != nil {
		t.Fatal("failing submission must not carry a credential")
	}
	if len(issuer.calls) != 0 {
		t.Fatal("issuer must not be called on a failing submission")
	}
	// Failed attempts still land in history.
	if len(attempts.created) != 1 || attempts.created[0].Passed {
		t.Fatalf("failed attempt should be recorded as failed: %+v", attempts.created)
	}
}

func TestSubmitCodeChallengeRunsSandbox(t *testing.T) {
	challenge := &session.Challenge{
		Problem: "sum the array",
		TestCases: []session.TestCase{
			{Input: "[1, 2, 3]", ExpectedOutput: "6"},
			{Input: "[]", ExpectedOutput: "0"},
			{Input: "[-1, 1]", ExpectedOutput: "0"},
			{Input: "[10, 20]", ExpectedOutput: "30"},
		},
	}
	svc, _, _ := newTestService(&fakeContent{challenge: challenge})
	ctx := context.Background()
	who := Identity{UserID: 1, Name: "Ada"}

	start, _ := svc.Start(ctx, who, StartRequest{Skill: "js", Kind: "code"})

	// Wrong for the empty array only: 3 of 4 cases.
	code := `function solve(input) {
		if (input.length === 0) { return 1; }
		return input.reduce(function(a, b) { return a + b; }, 0);
	}`

	result, err := svc.Submit(ctx, who, SubmitRequest{SessionID: start.SessionID, Code: code})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.RawScore != 75 {
		t.Fatalf("raw score = %d, want 75", result.RawScore)
	}
	if len(result.CaseResults) != 4 {
		t.Fatalf("got %d case results, want 4", len(result.CaseResults))
	}
	if !result.Passed || result.Level != model.Advanced {
		t.Fatalf("passed=%v level=%q, want passed Advanced", result.Passed, result.Level)
	}
}

func TestSubmitCodeChallengeRequiresCode(t *testing.T) {
	svc, _, _ := newTestService(&fakeContent{challenge: &session.Challenge{
		Problem:   "p",
		TestCases: []session.TestCase{{Input: "1", ExpectedOutput: "1"}},
	}})
	ctx := context.Background()
	who := Identity{UserID: 1}

	start, _ := svc.Start(ctx, who, StartRequest{Skill: "js", Kind: "code"})

	_, err := svc.Submit(ctx, who, SubmitRequest{SessionID: start.SessionID, Code: "   "})
	if !errors.Is(err, util.ErrMalformedSubmission) {
		t.Fatalf("expected ErrMalformedSubmission, got %v", err)
	}
}

func TestSubmitBlankSessionID(t *testing.T) {
	svc, _, _ := newTestService(&fakeContent{})
	_, err := svc.Submit(context.Background(), Identity{UserID: 1}, SubmitRequest{SessionID: "  "})
	if !errors.Is(err, util.ErrMalformedSubmission) {
		t.Fatalf("expected ErrMalformedSubmission, got %v", err)
	}
}

func TestSubmitIssuerFailureIsFatal(t *testing.T) {
	svc, attempts, issuer := newTestService(&fakeContent{questions: fiveQuestions()})
	issuer.err = errors.New("db down")
	ctx := context.Background()
	who := Identity{UserID: 1}

	start, _ := svc.Start(ctx, who, StartRequest{Skill: "js", Kind: "mcq"})

	_, err := svc.Submit(ctx, who, SubmitRequest{
		SessionID: start.SessionID,
		Answers:   []string{"a", "b", "c", "d", "e"},
	})
	if err == nil {
		t.Fatal("issuance failure must surface")
	}
	if len(attempts.created) != 0 {
		t.Fatal("no history row when the verdict could not be completed")
	}
}

func TestSubmitHistoryWriteFailureIsNotFatal(t *testing.T) {
	svc, attempts, _ := newTestService(&fakeContent{questions: fiveQuestions()})
	attempts.createErr = errors.New("db down")
	ctx := context.Background()
	who := Identity{UserID: 1}

	start, _ := svc.Start(ctx, who, StartRequest{Skill: "js", Kind: "mcq"})

	result, err := svc.Submit(ctx, who, SubmitRequest{
		SessionID: start.SessionID,
		Answers:   []string{"a", "b", "c", "d", "e"},
	})
	if err != nil {
		t.Fatalf("history failure should not fail the submission: %v", err)
	}
	if result.Score != 100 {
		t.Fatalf("score = %d, want 100", result.Score)
	}
}
