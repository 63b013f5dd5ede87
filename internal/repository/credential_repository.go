package repository

import (
	"skillverify_backend/internal/model"

	"gorm.io/gorm"
)

type CredentialRepository struct {
	DB *gorm.DB
}

func NewCredentialRepository(db *gorm.DB) *CredentialRepository {
	return &CredentialRepository{DB: db}
}

func (r *CredentialRepository) Create(c *model.Credential) error {
	return r.DB.Create(c).Error
}

func (r *CredentialRepository) FindByCredentialID(credentialID string) (*model.Credential, error) {
	var c model.Credential
	err := r.DB.Where("credential_id = ?", credentialID).First(&c).Error
	return &c, err
}

func (r *CredentialRepository) ListByUser(userID uint) ([]model.Credential, error) {
	var cs []model.Credential
	err := r.DB.Where("user_id = ?", userID).Order("issued_at desc").Find(&cs).Error
	return cs, err
}

func (r *CredentialRepository) IncrementShareCount(credentialID string) error {
	return r.DB.Model(&model.Credential{}).
		Where("credential_id = ?", credentialID).
		Update("share_count", gorm.Expr("share_count + 1")).
		Error
}

func (r *CredentialRepository) UpdateStatus(credentialID string, status model.CredentialStatus) error {
	return r.DB.Model(&model.Credential{}).
		Where("credential_id = ?", credentialID).
		Update("status", status).
		Error
}
