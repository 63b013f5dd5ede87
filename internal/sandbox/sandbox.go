// Package sandbox executes candidate-submitted code against hidden test
// cases. Each case runs in a fresh interpreter with no host capabilities:
// goja exposes only the ECMAScript builtins, so filesystem, network,
// process and environment access simply do not exist inside the guest.
// Timeouts are enforced by the host via vm.Interrupt, not by anything the
// guest cooperates with, so a busy loop cannot outlive its budget.
package sandbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"skillverify_backend/internal/session"
	"skillverify_backend/pkg/monitoring"

	"github.com/dop251/goja"
)

// EntryPoint is the function name candidate code must define.
const EntryPoint = "solve"

// DefaultCaseTimeout bounds one test-case invocation.
const DefaultCaseTimeout = 5 * time.Second

type CaseResult struct {
	Index    int    `json:"index"`
	Input    string `json:"input"`
	Expected string `json:"expected"`
	Actual   string `json:"actual,omitempty"`
	Passed   bool   `json:"passed"`
	Error    string `json:"error,omitempty"`
}

// Report aggregates one submission's run. SetupError is set when the code
// never became callable (syntax error, missing entry point); in that case
// every case is failed and the cause is reported once.
type Report struct {
	PassedCount int          `json:"passedCount"`
	TotalCount  int          `json:"totalCount"`
	Results     []CaseResult `json:"results"`
	SetupError  string       `json:"setupError,omitempty"`
}

type Runner struct {
	caseTimeout time.Duration
}

func NewRunner(caseTimeout time.Duration) *Runner {
	if caseTimeout <= 0 {
		caseTimeout = DefaultCaseTimeout
	}
	return &Runner{caseTimeout: caseTimeout}
}

// Run executes code once per test case. Cases run sequentially; one case
// failing, throwing or timing out never aborts the rest of the batch.
func (r *Runner) Run(ctx context.Context, code string, cases []session.TestCase) *Report {
	report := &Report{
		TotalCount: len(cases),
		Results:    make([]CaseResult, 0, len(cases)),
	}

	program, err := goja.Compile("candidate.js", code, false)
	if err != nil {
		report.SetupError = "syntax error: " + compactError(err)
		r.failAll(report, cases)
		return report
	}

	for i, tc := range cases {
		start := time.Now()
		result := r.runCase(ctx, program, i, tc)
		monitoring.SandboxCaseDuration.Observe(time.Since(start).Seconds())

		if result.Passed {
			report.PassedCount++
		}
		report.Results = append(report.Results, result)
	}
	return report
}

func (r *Runner) runCase(ctx context.Context, program *goja.Program, index int, tc session.TestCase) (result CaseResult) {
	result = CaseResult{
		Index:    index,
		Input:    tc.Input,
		Expected: strings.TrimSpace(tc.ExpectedOutput),
	}

	// goja panics on stack exhaustion; that is a per-case failure, not
	// a grading failure.
	defer func() {
		if rec := recover(); rec != nil {
			result.Passed = false
			result.Error = fmt.Sprintf("runtime error: %v", rec)
		}
	}()

	vm := goja.New()

	done := make(chan struct{})
	timer := time.AfterFunc(r.caseTimeout, func() {
		vm.Interrupt("timeout")
	})
	go func() {
		select {
		case <-ctx.Done():
			vm.Interrupt("cancelled")
		case <-done:
		}
	}()
	defer func() {
		timer.Stop()
		close(done)
	}()

	if _, err := vm.RunProgram(program); err != nil {
		result.Error = classifyError(err)
		return result
	}

	fn, ok := goja.AssertFunction(vm.Get(EntryPoint))
	if !ok {
		result.Error = fmt.Sprintf("function %q is not defined", EntryPoint)
		return result
	}

	value, err := fn(goja.Undefined(), vm.ToValue(parseInput(tc.Input)))
	if err != nil {
		result.Error = classifyError(err)
		return result
	}

	result.Actual = strings.TrimSpace(serialize(vm, value))
	result.Passed = result.Actual == result.Expected
	return result
}

func (r *Runner) failAll(report *Report, cases []session.TestCase) {
	for i, tc := range cases {
		report.Results = append(report.Results, CaseResult{
			Index:    i,
			Input:    tc.Input,
			Expected: strings.TrimSpace(tc.ExpectedOutput),
			Passed:   false,
			Error:    report.SetupError,
		})
	}
}

// parseInput decodes the stored input as JSON where possible and falls
// back to the raw string. Test-case authors control the format.
func parseInput(input string) interface{} {
	var v interface{}
	if err := json.Unmarshal([]byte(input), &v); err != nil {
		return input
	}
	return v
}

// serialize renders a guest value deterministically: JSON for objects and
// arrays, ECMAScript ToString for primitives.
func serialize(vm *goja.Runtime, v goja.Value) string {
	if v == nil || goja.IsUndefined(v) {
		return "undefined"
	}
	if goja.IsNull(v) {
		return "null"
	}
	if _, isObj := v.(*goja.Object); isObj {
		jsonObj := vm.Get("JSON").ToObject(vm)
		if stringify, ok := goja.AssertFunction(jsonObj.Get("stringify")); ok {
			if out, err := stringify(goja.Undefined(), v); err == nil && !goja.IsUndefined(out) {
				return out.String()
			}
		}
	}
	return v.String()
}

func classifyError(err error) string {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		return "timeout"
	}
	var exception *goja.Exception
	if errors.As(err, &exception) {
		return "runtime error: " + compactError(exception)
	}
	return "runtime error: " + compactError(err)
}

// compactError keeps only the first line so guest stack traces never reach
// the client.
func compactError(err error) string {
	msg := err.Error()
	if idx := strings.IndexByte(msg, '\n'); idx >= 0 {
		msg = msg[:idx]
	}
	return strings.TrimSpace(msg)
}
