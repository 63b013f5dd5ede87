package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"skillverify_backend/internal/config"
	"skillverify_backend/internal/session"
	"skillverify_backend/pkg/logger"

	"go.uber.org/zap"
)

// ContentService asks an OpenAI-compatible generator for assessment
// content and validates everything it returns before any of it is allowed
// near a session. A generator failure never fails the request: the
// deterministic local fallback bank takes over.
type ContentService struct {
	mu            sync.RWMutex
	cfg           config.GeneratorConfig
	client        *http.Client
	questionCount int
}

func NewContentService(cfg config.GeneratorConfig, questionCount int) *ContentService {
	if questionCount <= 0 {
		questionCount = 5
	}
	return &ContentService{
		cfg:           cfg,
		client:        &http.Client{Timeout: 30 * time.Second},
		questionCount: questionCount,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// generatedQuestion is the typed intermediate the raw response must parse
// into; nothing untyped flows past this point.
type generatedQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

type generatedQuestionSet struct {
	Questions []generatedQuestion `json:"questions"`
}

type generatedChallenge struct {
	Problem     string `json:"problem"`
	Example     string `json:"example"`
	Hint        string `json:"hint"`
	StarterCode string `json:"starterCode"`
	TestCases   []struct {
		Input          string `json:"input"`
		ExpectedOutput string `json:"expectedOutput"`
	} `json:"testCases"`
}

// MultipleChoice returns a validated question set for the skill. On any
// generator failure or an under-sized validated set it falls back to the
// local bank.
func (s *ContentService) MultipleChoice(ctx context.Context, skill, difficulty string) []session.Question {
	raw, err := s.chat(ctx, mcqPrompt(skill, difficulty, s.questionCount))
	if err != nil {
		logger.Log.Warn("content generator unavailable, using fallback bank",
			zap.String("skill", skill), zap.Error(err))
		return FallbackQuestions(skill, s.questionCount)
	}

	var set generatedQuestionSet
	if err := json.Unmarshal(extractJSON(raw), &set); err != nil {
		logger.Log.Warn("content generator returned unparseable questions, using fallback bank",
			zap.String("skill", skill), zap.Error(err))
		return FallbackQuestions(skill, s.questionCount)
	}

	questions := validateQuestions(set.Questions)
	if len(questions) < s.questionCount {
		logger.Log.Warn("content generator returned too few valid questions, using fallback bank",
			zap.String("skill", skill), zap.Int("valid", len(questions)))
		return FallbackQuestions(skill, s.questionCount)
	}
	return questions[:s.questionCount]
}

// CodeChallenge returns a validated code challenge with at least one hidden
// test case, falling back to the local bank on failure.
func (s *ContentService) CodeChallenge(ctx context.Context, skill, difficulty string) *session.Challenge {
	raw, err := s.chat(ctx, codePrompt(skill, difficulty))
	if err != nil {
		logger.Log.Warn("content generator unavailable, using fallback challenge",
			zap.String("skill", skill), zap.Error(err))
		return FallbackChallenge(skill)
	}

	var gen generatedChallenge
	if err := json.Unmarshal(extractJSON(raw), &gen); err != nil {
		logger.Log.Warn("content generator returned unparseable challenge, using fallback",
			zap.String("skill", skill), zap.Error(err))
		return FallbackChallenge(skill)
	}

	challenge := validateChallenge(gen)
	if challenge == nil {
		logger.Log.Warn("content generator returned invalid challenge, using fallback",
			zap.String("skill", skill))
		return FallbackChallenge(skill)
	}
	return challenge
}

// UpdateGenerator swaps the generator endpoint settings at runtime; used
// by the config watcher.
func (s *ContentService) UpdateGenerator(cfg config.GeneratorConfig) {
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
}

func (s *ContentService) chat(ctx context.Context, prompt string) (string, error) {
	s.mu.RLock()
	cfg := s.cfg
	s.mu.RUnlock()

	reqBody := chatCompletionRequest{
		Model: cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: "You generate skill-assessment content. Respond with the requested JSON document and nothing else."},
			{Role: "user", Content: prompt},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.BaseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generator API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result chatCompletionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", err
	}
	if result.Error != nil {
		return "", fmt.Errorf("generator API error: %s", result.Error.Message)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("generator returned no choices")
	}

	return result.Choices[0].Message.Content, nil
}

// validateQuestions drops malformed items: empty prompt, fewer than two
// options, or a correct answer that is not among the options.
func validateQuestions(items []generatedQuestion) []session.Question {
	out := make([]session.Question, 0, len(items))
	for _, item := range items {
		prompt := strings.TrimSpace(item.Question)
		answer := strings.TrimSpace(item.CorrectAnswer)
		if prompt == "" || answer == "" || len(item.Options) < 2 {
			continue
		}

		options := make([]string, 0, len(item.Options))
		answerPresent := false
		for _, opt := range item.Options {
			opt = strings.TrimSpace(opt)
			if opt == "" {
				continue
			}
			if opt == answer {
				answerPresent = true
			}
			options = append(options, opt)
		}
		if !answerPresent || len(options) < 2 {
			continue
		}

		out = append(out, session.Question{
			Prompt:        prompt,
			Options:       options,
			CorrectAnswer: answer,
			Explanation:   strings.TrimSpace(item.Explanation),
		})
	}
	return out
}

func validateChallenge(gen generatedChallenge) *session.Challenge {
	if strings.TrimSpace(gen.Problem) == "" {
		return nil
	}

	cases := make([]session.TestCase, 0, len(gen.TestCases))
	for _, tc := range gen.TestCases {
		if strings.TrimSpace(tc.Input) == "" || strings.TrimSpace(tc.ExpectedOutput) == "" {
			continue
		}
		cases = append(cases, session.TestCase{
			Input:          strings.TrimSpace(tc.Input),
			ExpectedOutput: strings.TrimSpace(tc.ExpectedOutput),
		})
	}
	if len(cases) == 0 {
		return nil
	}

	return &session.Challenge{
		Problem:     strings.TrimSpace(gen.Problem),
		Example:     strings.TrimSpace(gen.Example),
		Hint:        strings.TrimSpace(gen.Hint),
		StarterCode: gen.StarterCode,
		TestCases:   cases,
	}
}

// extractJSON cuts the first JSON document out of a completion that may be
// wrapped in prose or markdown fences.
func extractJSON(raw string) []byte {
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end <= start {
		return []byte(raw)
	}
	return []byte(raw[start : end+1])
}

func mcqPrompt(skill, difficulty string, count int) string {
	return fmt.Sprintf(`Generate exactly %d multiple choice questions to test "%s" knowledge at "%s" level.

Each question must test practical understanding, not just definitions.

Return ONLY this JSON format, nothing else:
{
  "questions": [
    {
      "question": "question text here",
      "options": ["option A", "option B", "option C", "option D"],
      "correctAnswer": "option A",
      "explanation": "why this is correct"
    }
  ]
}`, count, skill, difficulty)
}

func codePrompt(skill, difficulty string) string {
	return fmt.Sprintf(`Generate ONE simple coding challenge for "%s" at "%s" level.

The challenge must:
- Be solvable by writing a single function named "solve" taking one input value
- Not require any imports or external libraries
- Be testable with simple JSON-encodable inputs and outputs

Return ONLY this JSON format:
{
  "problem": "Write a function called solve that ...",
  "example": "solve(5) should return 25",
  "hint": "one short hint",
  "testCases": [
    { "input": "5", "expectedOutput": "25" }
  ],
  "starterCode": "function solve(input) {\n  // write your code here\n}"
}`, skill, difficulty)
}
