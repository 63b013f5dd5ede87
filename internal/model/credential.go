package model

import "time"

type CredentialStatus string

const (
	CredentialActive  CredentialStatus = "active"
	CredentialRevoked CredentialStatus = "revoked"
)

// Credential is the durable, publicly resolvable proof of a passed
// assessment. Immutable once issued except for status and share count.
// swagger:model Credential
type Credential struct {
	BaseModel
	CredentialID string           `gorm:"size:36;uniqueIndex;not null" json:"credentialId"`
	UserID       uint             `gorm:"index;type:bigint unsigned" json:"userId"`
	UserName     string           `gorm:"size:100;not null" json:"userName"`
	Skill        string           `gorm:"size:100;not null" json:"skill"`
	Level        SkillLevel       `gorm:"size:20;not null" json:"level"`
	Score        int              `gorm:"not null" json:"score"`
	Kind         AssessmentKind   `gorm:"size:10;not null" json:"kind"`
	Difficulty   string           `gorm:"size:20;not null" json:"difficulty"`
	Status       CredentialStatus `gorm:"size:10;default:'active'" json:"status"`
	ShareCount   int              `gorm:"default:0" json:"shareCount"`
	IssuedAt     time.Time        `json:"issuedAt"`
}

func (Credential) TableName() string {
	return "credentials"
}

// PublicCredential is the unauthenticated verification view. It carries the
// owner's public display name and nothing else about the owner.
type PublicCredential struct {
	CredentialID string           `json:"credentialId"`
	UserName     string           `json:"userName"`
	Skill        string           `json:"skill"`
	Level        SkillLevel       `json:"level"`
	Score        int              `json:"score"`
	Kind         AssessmentKind   `json:"kind"`
	Difficulty   string           `json:"difficulty"`
	Status       CredentialStatus `json:"status"`
	ShareCount   int              `json:"shareCount"`
	IssuedAt     time.Time        `json:"issuedAt"`
}

func (c *Credential) Public() *PublicCredential {
	return &PublicCredential{
		CredentialID: c.CredentialID,
		UserName:     c.UserName,
		Skill:        c.Skill,
		Level:        c.Level,
		Score:        c.Score,
		Kind:         c.Kind,
		Difficulty:   c.Difficulty,
		Status:       c.Status,
		ShareCount:   c.ShareCount,
		IssuedAt:     c.IssuedAt,
	}
}
