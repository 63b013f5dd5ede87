package model

import "time"

type UserRole string

const (
	Candidate UserRole = "candidate"
	Admin     UserRole = "admin"
)

// swagger:model User
type User struct {
	BaseModel
	Name      string      `gorm:"size:100;not null" json:"name"`
	Username  string      `gorm:"size:100;unique;not null" json:"username"`
	Email     string      `gorm:"size:100;unique;not null" json:"email"`
	Password  string      `gorm:"size:100;not null" json:"-"`
	Role      UserRole    `gorm:"type:enum('candidate','admin');default:'candidate'" json:"role"`
	XP        int         `gorm:"default:0" json:"xp"`
	Skills    []UserSkill `gorm:"foreignKey:UserID" json:"skills,omitempty"`
	LastLogin time.Time   `gorm:"default:CURRENT_TIMESTAMP(3)" json:"lastLogin"`
}

func (User) TableName() string {
	return "users"
}

// UserSkill is one entry of the durable skill ledger. A skill flips to
// verified when a passing assessment issues a credential for it.
type UserSkill struct {
	BaseModel
	UserID   uint       `gorm:"index;type:bigint unsigned;uniqueIndex:idx_user_skill" json:"userId"`
	Name     string     `gorm:"size:100;not null;uniqueIndex:idx_user_skill" json:"name"`
	Level    SkillLevel `gorm:"size:20;not null" json:"level"`
	Verified bool       `gorm:"default:false" json:"verified"`
}

func (UserSkill) TableName() string {
	return "user_skills"
}
