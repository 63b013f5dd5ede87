package service

import (
	"fmt"

	"skillverify_backend/internal/session"
)

// The fallback bank keeps assessment creation working when the content
// generator is down or returns garbage. Deterministic: the same skill
// always yields the same content.

func FallbackQuestions(skill string, count int) []session.Question {
	bank := []session.Question{
		{
			Prompt: fmt.Sprintf("In the context of %s, what is the main benefit of writing small, single-purpose functions?", skill),
			Options: []string{
				"They are easier to test and reuse",
				"They always run faster",
				"They use less memory",
				"They avoid the need for version control",
			},
			CorrectAnswer: "They are easier to test and reuse",
			Explanation:   "Small units with one responsibility are simpler to reason about, test and compose.",
		},
		{
			Prompt: fmt.Sprintf("A %s program produces the wrong output for one specific input. What is the most systematic first step?", skill),
			Options: []string{
				"Reproduce the failure with a minimal test case",
				"Rewrite the whole module from scratch",
				"Add more features so the bug matters less",
				"Increase the server's memory",
			},
			CorrectAnswer: "Reproduce the failure with a minimal test case",
			Explanation:   "A minimal reproduction isolates the defect and guards against regressions.",
		},
		{
			Prompt: "What does it mean for a function to be deterministic?",
			Options: []string{
				"It returns the same output for the same input every time",
				"It never returns an error",
				"It finishes within a fixed time limit",
				"It does not use loops",
			},
			CorrectAnswer: "It returns the same output for the same input every time",
			Explanation:   "Determinism is about output depending only on input, not timing or errors.",
		},
		{
			Prompt: fmt.Sprintf("When handling user-supplied input in %s, which practice is essential?", skill),
			Options: []string{
				"Validate and sanitize it before use",
				"Store it unchanged for auditing only",
				"Trust it if the request is authenticated",
				"Log it and continue",
			},
			CorrectAnswer: "Validate and sanitize it before use",
			Explanation:   "Untrusted input must be validated regardless of who sent it.",
		},
		{
			Prompt: "Which statement about algorithmic complexity is correct?",
			Options: []string{
				"An O(n) algorithm scales linearly with input size",
				"An O(1) algorithm is always the fastest in practice",
				"O(n^2) is faster than O(n log n) for large inputs",
				"Complexity measures memory usage only",
			},
			CorrectAnswer: "An O(n) algorithm scales linearly with input size",
			Explanation:   "Big-O describes growth of running time (or space) as input grows.",
		},
		{
			Prompt: fmt.Sprintf("Why are code reviews valuable on a %s project?", skill),
			Options: []string{
				"They catch defects and spread knowledge across the team",
				"They make the build pipeline faster",
				"They remove the need for automated tests",
				"They guarantee zero bugs in production",
			},
			CorrectAnswer: "They catch defects and spread knowledge across the team",
			Explanation:   "Reviews are a quality and knowledge-sharing practice, not a correctness proof.",
		},
	}

	if count <= 0 || count > len(bank) {
		count = len(bank)
	}
	return bank[:count]
}

func FallbackChallenge(skill string) *session.Challenge {
	return &session.Challenge{
		Problem:     fmt.Sprintf("(%s) Write a function called solve that takes an array of numbers and returns their sum.", skill),
		Example:     "solve([1, 2, 3]) should return 6",
		Hint:        "Iterate over the array and accumulate a total.",
		StarterCode: "function solve(input) {\n  // write your code here\n}",
		TestCases: []session.TestCase{
			{Input: "[1, 2, 3]", ExpectedOutput: "6"},
			{Input: "[]", ExpectedOutput: "0"},
			{Input: "[-1, 1]", ExpectedOutput: "0"},
			{Input: "[10, 20, 30, 40]", ExpectedOutput: "100"},
		},
	}
}
