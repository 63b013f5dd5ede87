package model

import "encoding/json"

type SkillLevel string

const (
	Beginner     SkillLevel = "Beginner"
	Intermediate SkillLevel = "Intermediate"
	Advanced     SkillLevel = "Advanced"
	Expert       SkillLevel = "Expert"
)

// ValidDifficulty reports whether d is one of the four accepted difficulty
// labels (same value set as SkillLevel).
func ValidDifficulty(d string) bool {
	switch SkillLevel(d) {
	case Beginner, Intermediate, Advanced, Expert:
		return true
	}
	return false
}

type AssessmentKind string

const (
	KindMultipleChoice AssessmentKind = "mcq"
	KindCodeChallenge  AssessmentKind = "code"
)

func ValidKind(k string) bool {
	switch AssessmentKind(k) {
	case KindMultipleChoice, KindCodeChallenge:
		return true
	}
	return false
}

// LevelForScore maps a final score to its credential level. Breakpoints are
// applied to the post-anti-cheat score.
func LevelForScore(score int) SkillLevel {
	switch {
	case score >= 86:
		return Expert
	case score >= 66:
		return Advanced
	case score >= 41:
		return Intermediate
	default:
		return Beginner
	}
}

// PassThreshold is the minimum final score that earns a credential.
const PassThreshold = 40

// AssessmentAttempt is the durable record of one graded submission, kept
// for history and analytics whether or not the attempt passed.
// swagger:model AssessmentAttempt
type AssessmentAttempt struct {
	BaseModel
	UserID       uint            `gorm:"index;type:bigint unsigned" json:"userId"`
	User         *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Skill        string          `gorm:"size:100;not null" json:"skill"`
	Difficulty   string          `gorm:"size:20;not null" json:"difficulty"`
	Kind         AssessmentKind  `gorm:"size:10;not null" json:"kind"`
	RawScore     int             `json:"rawScore"`
	FinalScore   int             `json:"finalScore"`
	Level        SkillLevel      `gorm:"size:20" json:"level"`
	Passed       bool            `json:"passed"`
	Suspicious   bool            `json:"suspicious"`
	PasteCount   int             `json:"pasteCount"`
	TabSwitches  int             `json:"tabSwitches"`
	TimeSpent    int             `json:"timeSpent"` // seconds
	ItemResults  json.RawMessage `gorm:"type:json" json:"itemResults,omitempty"`
	CredentialID string          `gorm:"size:36;index" json:"credentialId,omitempty"`
}

func (AssessmentAttempt) TableName() string {
	return "assessment_attempts"
}
