package repository

import (
	"skillverify_backend/internal/model"

	"gorm.io/gorm"
)

type AssessmentRepository struct {
	DB *gorm.DB
}

func NewAssessmentRepository(db *gorm.DB) *AssessmentRepository {
	return &AssessmentRepository{DB: db}
}

func (r *AssessmentRepository) CreateAttempt(a *model.AssessmentAttempt) error {
	return r.DB.Create(a).Error
}

func (r *AssessmentRepository) ListAttemptsByUser(userID uint, page, limit int) ([]model.AssessmentAttempt, int64, error) {
	var attempts []model.AssessmentAttempt
	var total int64

	query := r.DB.Model(&model.AssessmentAttempt{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&attempts).Error
	return attempts, total, err
}
