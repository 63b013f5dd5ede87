package service

import "math"

// Anti-cheat thresholds are fixed by design, not configurable per
// assessment, so every verdict stays explainable to the candidate.
const (
	maxCleanPastes      = 2
	maxCleanTabSwitches = 3
	suspicionMultiplier = 0.7
)

// Telemetry carries the client-reported behavioral counters attached to
// one submission. Client-controlled, so it can only ever lower a score.
type Telemetry struct {
	PasteCount  int      `json:"pasteCount"`
	TabSwitches int      `json:"tabSwitches"`
	Flags       []string `json:"flags,omitempty"`
}

type CheatVerdict struct {
	Suspicious bool    `json:"suspicious"`
	Multiplier float64 `json:"multiplier"`
}

// EvaluateTelemetry applies the fixed suspicion heuristic. The penalty is
// flat regardless of how far past the threshold the counters are.
func EvaluateTelemetry(t Telemetry) CheatVerdict {
	if t.PasteCount > maxCleanPastes || t.TabSwitches > maxCleanTabSwitches {
		return CheatVerdict{Suspicious: true, Multiplier: suspicionMultiplier}
	}
	return CheatVerdict{Suspicious: false, Multiplier: 1.0}
}

// ApplyPenalty folds the verdict into a raw score. Applied after raw
// scoring, never before.
func ApplyPenalty(rawScore int, v CheatVerdict) int {
	if !v.Suspicious {
		return rawScore
	}
	return int(math.Floor(float64(rawScore) * v.Multiplier))
}
