package service

import (
	"context"
	"errors"
	"time"

	"skillverify_backend/internal/model"
	"skillverify_backend/internal/util"
	"skillverify_backend/pkg/logger"
	"skillverify_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type credentialStore interface {
	Create(c *model.Credential) error
	FindByCredentialID(credentialID string) (*model.Credential, error)
	ListByUser(userID uint) ([]model.Credential, error)
	IncrementShareCount(credentialID string) error
	UpdateStatus(credentialID string, status model.CredentialStatus) error
}

type userLedger interface {
	AddXP(userID uint, xp int) error
	UpsertSkill(skill *model.UserSkill) error
}

type certificateArchiver interface {
	ArchiveCredential(ctx context.Context, c *model.Credential) (string, error)
}

// CredentialService mints credentials on passing attempts and serves the
// public verification surface. Every passing attempt yields an independent
// credential; issuance is never deduplicated across attempts.
type CredentialService struct {
	credentials credentialStore
	users       userLedger
	archive     certificateArchiver
}

func NewCredentialService(credentials credentialStore, users userLedger, archive certificateArchiver) *CredentialService {
	return &CredentialService{
		credentials: credentials,
		users:       users,
		archive:     archive,
	}
}

// Issue mints a credential for a passing attempt: unique public id, level
// derived from the final post-anti-cheat score, skill ledger upsert and an
// XP award proportional to score.
func (s *CredentialService) Issue(ctx context.Context, userID uint, userName, skill, difficulty string, kind model.AssessmentKind, finalScore int) (*model.Credential, error) {
	level := model.LevelForScore(finalScore)

	cred := &model.Credential{
		CredentialID: model.GenerateUUID(),
		UserID:       userID,
		UserName:     userName,
		Skill:        skill,
		Level:        level,
		Score:        finalScore,
		Kind:         kind,
		Difficulty:   difficulty,
		Status:       model.CredentialActive,
		IssuedAt:     time.Now(),
	}

	if err := s.credentials.Create(cred); err != nil {
		return nil, err
	}

	if err := s.users.UpsertSkill(&model.UserSkill{
		UserID:   userID,
		Name:     skill,
		Level:    level,
		Verified: true,
	}); err != nil {
		logger.Log.Error("failed to update skill ledger",
			zap.Uint("userId", userID), zap.String("skill", skill), zap.Error(err))
	}

	if err := s.users.AddXP(userID, xpForScore(finalScore)); err != nil {
		logger.Log.Error("failed to award XP",
			zap.Uint("userId", userID), zap.Error(err))
	}

	if s.archive != nil {
		if _, err := s.archive.ArchiveCredential(ctx, cred); err != nil {
			// Archival is best-effort; the credential itself is the
			// source of truth.
			logger.Log.Warn("failed to archive certificate",
				zap.String("credentialId", cred.CredentialID), zap.Error(err))
		}
	}

	monitoring.CredentialsIssued.Inc()
	return cred, nil
}

// Resolve serves the unauthenticated public verification view. Revoked
// credentials still resolve; their status says so.
func (s *CredentialService) Resolve(credentialID string) (*model.PublicCredential, error) {
	cred, err := s.credentials.FindByCredentialID(credentialID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCredentialNotFound
		}
		return nil, err
	}
	return cred.Public(), nil
}

func (s *CredentialService) ListForUser(userID uint) ([]model.Credential, error) {
	return s.credentials.ListByUser(userID)
}

// RecordShare bumps the share counter, the only mutation besides revocation
// a credential ever sees.
func (s *CredentialService) RecordShare(credentialID string) error {
	if _, err := s.Resolve(credentialID); err != nil {
		return err
	}
	return s.credentials.IncrementShareCount(credentialID)
}

func (s *CredentialService) Revoke(credentialID string) error {
	cred, err := s.credentials.FindByCredentialID(credentialID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrCredentialNotFound
		}
		return err
	}
	if cred.Status == model.CredentialRevoked {
		return util.ErrCredentialRevoked
	}
	return s.credentials.UpdateStatus(credentialID, model.CredentialRevoked)
}

// xpForScore mirrors the platform's long-standing award curve.
func xpForScore(score int) int {
	return (score / 10) * 5
}
