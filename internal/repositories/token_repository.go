package repositories

import (
	"time"

	"github.com/mroshb/hitched/internal/models"
	"github.com/mroshb/hitched/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TokenRepository keeps the ids of redeemed or withdrawn invite tokens.
type TokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) Revoke(tokenID string, at time.Time) error {
	err := r.db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.RevokedToken{TokenID: tokenID, RevokedAt: at}).Error
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to revoke token")
	}
	return nil
}

func (r *TokenRepository) IsRevoked(tokenID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.RevokedToken{}).Where("token_id = ?", tokenID).Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeInternalError, "failed to check token")
	}
	return count > 0, nil
}

type SafetyReportRepository struct {
	db *gorm.DB
}

func NewSafetyReportRepository(db *gorm.DB) *SafetyReportRepository {
	return &SafetyReportRepository{db: db}
}

func (r *SafetyReportRepository) Create(report *models.SafetyReport) error {
	if err := r.db.Create(report).Error; err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to save safety report")
	}
	return nil
}

func (r *SafetyReportRepository) ListAll() ([]models.SafetyReport, error) {
	var reports []models.SafetyReport
	if err := r.db.Order("created_at DESC").Find(&reports).Error; err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to list safety reports")
	}
	return reports, nil
}
